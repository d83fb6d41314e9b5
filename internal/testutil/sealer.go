package testutil

import (
	"cv-go/internal/cv"
	"cv-go/internal/encryption"
)

// NewTestSealer returns a deterministic, key-less sealer.
func NewTestSealer() cv.Sealer {
	return encryption.NewTestSealer()
}
