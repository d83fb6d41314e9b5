package encryption

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"cv-go/internal/config"
)

func newTestAgeSealer(t *testing.T, armored bool) *AgeSealer {
	t.Helper()
	dir := t.TempDir()
	return NewAgeSealer(config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "keys", "cv.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "cv.key"),
		Armor:          armored,
	})
}

func TestAgeSealer_Setup(t *testing.T) {
	t.Parallel()
	s := newTestAgeSealer(t, false)

	if s.IsConfigured() {
		t.Error("IsConfigured() = true before Setup, want false")
	}
	if err := s.Setup("test-passphrase"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !s.IsConfigured() {
		t.Error("IsConfigured() = false after Setup, want true")
	}
	if err := s.Setup("other"); err == nil {
		t.Error("second Setup() expected error, keys would be replaced")
	}
}

func TestAgeSealer_SetupRejectsEmptyPassphrase(t *testing.T) {
	t.Parallel()
	if err := newTestAgeSealer(t, false).Setup(""); err == nil {
		t.Error("Setup(\"\") expected error")
	}
}

func TestAgeSealer_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   []byte
		armored bool
	}{
		{name: "json export", input: []byte(`[{"key":"personal"}]`)},
		{name: "empty", input: []byte{}},
		{name: "large", input: bytes.Repeat([]byte("abcdef"), 10000)},
		{name: "armored", input: []byte(`[{"key":"footer"}]`), armored: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			const passphrase = "test-passphrase"
			s := newTestAgeSealer(t, tt.armored)
			if err := s.Setup(passphrase); err != nil {
				t.Fatalf("Setup() error = %v", err)
			}

			var sealed bytes.Buffer
			if err := s.Seal(bytes.NewReader(tt.input), &sealed); err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			if len(tt.input) > 0 && bytes.Contains(sealed.Bytes(), tt.input) {
				t.Error("sealed output contains the plaintext")
			}
			if tt.armored && !strings.HasPrefix(sealed.String(), "-----BEGIN AGE ENCRYPTED FILE-----") {
				t.Error("armored output is missing the armor header")
			}

			u, err := s.Unlock(passphrase)
			if err != nil {
				t.Fatalf("Unlock() error = %v", err)
			}
			var plain bytes.Buffer
			if err := u.Unseal(&sealed, &plain); err != nil {
				t.Fatalf("Unseal() error = %v", err)
			}
			if !bytes.Equal(plain.Bytes(), tt.input) {
				t.Errorf("Unseal() = %q, want %q", plain.Bytes(), tt.input)
			}
		})
	}
}

func TestAgeSealer_WrongPassphrase(t *testing.T) {
	t.Parallel()
	s := newTestAgeSealer(t, false)
	if err := s.Setup("right"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if _, err := s.Unlock("wrong"); err == nil {
		t.Error("Unlock() with wrong passphrase expected error")
	}
}

func TestAgeSealer_SealWithoutKeys(t *testing.T) {
	t.Parallel()
	s := newTestAgeSealer(t, false)
	if err := s.Seal(strings.NewReader("x"), &bytes.Buffer{}); err == nil {
		t.Error("Seal() without keys expected error")
	}
}
