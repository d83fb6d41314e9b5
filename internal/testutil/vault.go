package testutil

import (
	"cv-go/internal/cv"
	"cv-go/internal/vault"
)

// NewTestVault returns an in-memory vault.
func NewTestVault() cv.Vault {
	return vault.NewMemoryVault("test-vault")
}
