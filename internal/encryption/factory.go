package encryption

import (
	"fmt"

	"cv-go/internal/config"
	"cv-go/internal/cv"
)

// NewSealerFromConfig returns the Sealer selected by cfg.Type.
func NewSealerFromConfig(cfg config.EncryptionConfig) (cv.Sealer, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeSealer(cfg), nil
	case "none":
		return NoneSealer{}, nil
	case "test":
		return NewTestSealer(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
