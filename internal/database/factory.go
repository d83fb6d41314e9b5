package database

import (
	"fmt"
	"os"
	"path/filepath"

	"cv-go/internal/config"
	"cv-go/internal/cv"
)

// NewStoreFromConfig returns the record store described by cfg. A sqlite
// store lives at <data_dir>/<workspace_id>.db.
func NewStoreFromConfig(cfg config.DatabaseConfig, workspaceID string, logger cv.Logger) (*SQLiteStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if workspaceID == "" {
			return nil, fmt.Errorf("workspace_id required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, workspaceID+".db"), logger), nil
	case "memory":
		return NewSQLiteStore(":memory:", logger), nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
