package encryption

import (
	"bytes"
	"testing"

	"cv-go/internal/config"
)

func TestTestSealer_RoundTrip(t *testing.T) {
	t.Parallel()

	s := NewTestSealer()
	if err := s.Setup("any"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !s.setupCalled {
		t.Error("Setup() did not record that it was called")
	}

	input := []byte(`[{"key":"personal"}]`)
	var sealed bytes.Buffer
	if err := s.Seal(bytes.NewReader(input), &sealed); err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if bytes.Equal(sealed.Bytes(), input) {
		t.Error("sealed output equals plaintext")
	}

	u, _ := s.Unlock("any")
	var plain bytes.Buffer
	if err := u.Unseal(&sealed, &plain); err != nil {
		t.Fatalf("Unseal() error = %v", err)
	}
	if !bytes.Equal(plain.Bytes(), input) {
		t.Errorf("Unseal() = %q, want %q", plain.Bytes(), input)
	}
}

func TestTestSealer_RejectsForeignData(t *testing.T) {
	t.Parallel()
	u, _ := NewTestSealer().Unlock("")
	if err := u.Unseal(bytes.NewReader([]byte("not sealed at all")), &bytes.Buffer{}); err == nil {
		t.Error("Unseal() expected error for data without the test header")
	}
}

func TestNoneSealer(t *testing.T) {
	t.Parallel()
	var s NoneSealer
	var sealed, plain bytes.Buffer
	if err := s.Seal(bytes.NewReader([]byte("x")), &sealed); err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	u, _ := s.Unlock("")
	if err := u.Unseal(&sealed, &plain); err != nil {
		t.Fatalf("Unseal() error = %v", err)
	}
	if plain.String() != "x" {
		t.Errorf("round trip = %q, want x", plain.String())
	}
}

func TestNewSealerFromConfig(t *testing.T) {
	tests := []struct {
		typ     string
		wantErr bool
	}{
		{typ: ""},
		{typ: "age"},
		{typ: "none"},
		{typ: "test"},
		{typ: "rot13", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			got, err := NewSealerFromConfig(config.EncryptionConfig{Type: tt.typ})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSealerFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got == nil {
				t.Error("NewSealerFromConfig() returned nil")
			}
		})
	}
}
