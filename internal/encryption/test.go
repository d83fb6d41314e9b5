package encryption

import (
	"bytes"
	"fmt"
	"io"

	"cv-go/internal/cv"
)

var testHeader = []byte("CVSEAL\x00\x00")

// TestSealer is a deterministic stand-in for tests: it prepends a fixed
// header on Seal and strips it on Unseal.
type TestSealer struct {
	setupCalled bool
}

func NewTestSealer() *TestSealer {
	return &TestSealer{}
}

func (s *TestSealer) Setup(string) error {
	s.setupCalled = true
	return nil
}

func (s *TestSealer) Seal(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (s *TestSealer) Unlock(string) (cv.Unsealer, error) {
	return testUnsealer{}, nil
}

func (s *TestSealer) IsConfigured() bool { return true }

type testUnsealer struct{}

func (testUnsealer) Unseal(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("invalid test seal header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

// NoneSealer writes archives as plain JSON.
type NoneSealer struct{}

func (NoneSealer) Setup(string) error { return nil }

func (NoneSealer) Seal(r io.Reader, w io.Writer) error {
	_, err := io.Copy(w, r)
	return err
}

func (NoneSealer) Unlock(string) (cv.Unsealer, error) { return NoneSealer{}, nil }

func (NoneSealer) Unseal(r io.Reader, w io.Writer) error {
	_, err := io.Copy(w, r)
	return err
}

func (NoneSealer) IsConfigured() bool { return true }

var (
	_ cv.Sealer = (*TestSealer)(nil)
	_ cv.Sealer = NoneSealer{}
)
