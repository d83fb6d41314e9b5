package vault

import (
	"context"
	"path/filepath"
	"testing"

	"cv-go/internal/config"
)

func TestNewVaultFromConfig(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "vault")

	tests := []struct {
		name    string
		cfg     config.VaultConfig
		wantErr bool
	}{
		{
			name: "memory vault",
			cfg:  config.VaultConfig{Type: "memory", Name: "test-memory"},
		},
		{
			name: "filesystem vault",
			cfg:  config.VaultConfig{Type: "filesystem", Name: "test-fs", FSVaultRoot: root},
		},
		{
			name:    "filesystem vault without root",
			cfg:     config.VaultConfig{Type: "filesystem", Name: "test-fs"},
			wantErr: true,
		},
		{
			name:    "s3 vault without bucket",
			cfg:     config.VaultConfig{Type: "s3", Name: "test-s3"},
			wantErr: true,
		},
		{
			name:    "unknown vault type",
			cfg:     config.VaultConfig{Type: "unknown", Name: "test-unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewVaultFromConfig(ctx, tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Fatalf("NewVaultFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if got != nil {
					t.Error("NewVaultFromConfig() should return nil on error")
				}
				return
			}
			if got.Name() != tt.cfg.Name {
				t.Errorf("Name() = %q, want %q", got.Name(), tt.cfg.Name)
			}
			if err := got.ValidateSetup(ctx); err != nil {
				t.Errorf("ValidateSetup() error = %v", err)
			}
		})
	}
}

func TestNewVaultFromConfig_S3(t *testing.T) {
	cfg := config.VaultConfig{
		Type:              "s3",
		Name:              "cloud",
		S3Bucket:          "cv-exports",
		S3Prefix:          "/backups/",
		S3Region:          "eu-west-1",
		S3Endpoint:        "http://127.0.0.1:9000",
		S3AccessKeyID:     "key",
		S3SecretAccessKey: "secret",
	}

	got, err := NewS3Vault(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewS3Vault() error = %v", err)
	}
	if got.Name() != "cloud" {
		t.Errorf("Name() = %q, want cloud", got.Name())
	}
	if key := got.objectKey("ws-1", "cv.json.age"); key != "backups/ws-1/cv.json.age" {
		t.Errorf("objectKey() = %q, want backups/ws-1/cv.json.age", key)
	}

	bare := NewS3VaultFromClient("bare", "bucket", "", got.client)
	if key := bare.objectKey("ws-1", "a"); key != "ws-1/a" {
		t.Errorf("objectKey() without prefix = %q, want ws-1/a", key)
	}
}
