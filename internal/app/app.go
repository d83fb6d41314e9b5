package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"cv-go/internal/config"
	"cv-go/internal/cv"
	"cv-go/internal/database"
	"cv-go/internal/database/migrations"
	"cv-go/internal/encryption"
	"cv-go/internal/model"
	"cv-go/internal/vault"
)

// CVApp is the application layer between the CLI and cv.Service.
// It constructs all dependencies from config, exposes the operations that
// need more than one component, and releases everything on Close.
type CVApp struct {
	cfg     *config.Config
	store   *database.SQLiteStore
	sealer  cv.Sealer
	service *cv.Service
	clock   cv.Clock
	vaults  map[string]cv.Vault
	logger  *slog.Logger
	op      *Operation
	logFile *os.File
}

// WorkspaceStatus summarizes the local workspace.
type WorkspaceStatus struct {
	WorkspaceID  string
	DatabasePath string
	Schema       migrations.Status
	Empty        bool
	Sealed       bool // a key pair for sealing archives is present
}

// NewCVApp creates a fully wired CVApp from the given config.
// operation identifies the CLI command being run (e.g. "AddEntity", "Render").
// The caller must call Close when done.
func NewCVApp(cfg *config.Config, operation string, args ...string) (*CVApp, error) {
	clock := cv.RealClock{}
	op := NewOperation(operation, FormatParameters(args...), clock.Now())

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger, logFile, err := newLogger(cfg.LogDir, op.ID, level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	adapter := &slogAdapter{l: logger}

	store, err := database.NewStoreFromConfig(cfg.Database, cfg.WorkspaceID, adapter)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating record store: %w", err)
	}

	sealer, err := encryption.NewSealerFromConfig(cfg.Encryption)
	if err != nil {
		store.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating sealer: %w", err)
	}

	svc := cv.NewService(store, adapter, clock, cv.NewClockIdentities(clock), cv.UUIDGenerator{})
	logger.Debug("operation started", "operation", op.Operation, "parameters", op.Parameters)

	return &CVApp{
		cfg:     cfg,
		store:   store,
		sealer:  sealer,
		service: svc,
		clock:   clock,
		vaults:  make(map[string]cv.Vault),
		logger:  logger,
		op:      op,
		logFile: logFile,
	}, nil
}

// Service returns the repositories.
func (a *CVApp) Service() *cv.Service { return a.service }

// Config returns the configuration the app was built from.
func (a *CVApp) Config() *config.Config { return a.cfg }

// Fail records err as the outcome of the operation.
func (a *CVApp) Fail(err error) { a.op.Fail(err) }

// Status reports the workspace's schema version and whether it holds data.
func (a *CVApp) Status(ctx context.Context) (*WorkspaceStatus, error) {
	schema, err := a.store.SchemaStatus(ctx)
	if err != nil {
		return nil, err
	}
	empty, err := a.service.Workspace.IsEmpty(ctx)
	if err != nil {
		return nil, err
	}
	return &WorkspaceStatus{
		WorkspaceID:  a.cfg.WorkspaceID,
		DatabasePath: a.store.Path(),
		Schema:       schema,
		Empty:        empty,
		Sealed:       a.sealer.IsConfigured(),
	}, nil
}

// Render resolves lang through templateID (or the selected template) and
// parses the projection's text blocks.
func (a *CVApp) Render(ctx context.Context, lang model.LanguageID, templateID string) (*RenderedCV, error) {
	p, err := a.service.Render(ctx, lang, templateID)
	if err != nil {
		return nil, err
	}
	return NewRenderedCV(p), nil
}

// ExportJSON writes the plain workspace export to w.
func (a *CVApp) ExportJSON(ctx context.Context, w io.Writer) error {
	data, err := a.service.Workspace.Export(ctx)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ImportJSON replaces the workspace with the export read from r.
func (a *CVApp) ImportJSON(ctx context.Context, r io.Reader) (cv.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return cv.ImportResult{}, fmt.Errorf("reading import: %w", err)
	}
	return a.service.Workspace.Import(ctx, data)
}

// Keygen creates the key pair used to seal archives.
func (a *CVApp) Keygen(passphrase string) error {
	if err := a.sealer.Setup(passphrase); err != nil {
		return fmt.Errorf("generating keys: %w", err)
	}
	a.logger.Info("sealing keys generated", "type", a.cfg.Encryption.Type)
	return nil
}

// ExportArchive seals the workspace into the named vault (the first vault
// when vaultName is empty) and returns the archive name.
func (a *CVApp) ExportArchive(ctx context.Context, vaultName string) (string, error) {
	arch, err := a.archiver(ctx, vaultName)
	if err != nil {
		return "", err
	}
	return arch.Export(ctx)
}

// ListArchives lists the workspace's archives in the named vault.
func (a *CVApp) ListArchives(ctx context.Context, vaultName string) ([]cv.ArchiveInfo, error) {
	arch, err := a.archiver(ctx, vaultName)
	if err != nil {
		return nil, err
	}
	return arch.List(ctx)
}

// ImportArchive restores the workspace from archive name, or from the
// newest archive when name is empty.
func (a *CVApp) ImportArchive(ctx context.Context, vaultName, name, passphrase string) (cv.ImportResult, error) {
	arch, err := a.archiver(ctx, vaultName)
	if err != nil {
		return cv.ImportResult{}, err
	}
	if name == "" {
		if name, err = arch.Latest(ctx); err != nil {
			return cv.ImportResult{}, err
		}
		if name == "" {
			return cv.ImportResult{}, fmt.Errorf("no archives in vault: %w", cv.ErrNotFound)
		}
	}

	u, err := a.sealer.Unlock(passphrase)
	if err != nil {
		return cv.ImportResult{}, fmt.Errorf("unlocking keys: %w", err)
	}
	return arch.Import(ctx, name, u)
}

// Backup copies the database file to dest.
func (a *CVApp) Backup(ctx context.Context, dest string) (string, error) {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	if err := a.store.BackupTo(ctx, abs); err != nil {
		return "", err
	}
	a.logger.Info("database backed up", "dest", abs)
	return abs, nil
}

func (a *CVApp) archiver(ctx context.Context, vaultName string) (*cv.Archiver, error) {
	vcfg, err := a.cfg.Vault(vaultName)
	if err != nil {
		return nil, err
	}
	v, ok := a.vaults[vcfg.Name]
	if !ok {
		if v, err = vault.NewVaultFromConfig(ctx, vcfg); err != nil {
			return nil, fmt.Errorf("creating vault %s: %w", vcfg.Name, err)
		}
		if err := v.ValidateSetup(ctx); err != nil {
			return nil, fmt.Errorf("vault %s: %w", vcfg.Name, err)
		}
		a.vaults[vcfg.Name] = v
	}
	return cv.NewArchiver(a.service.Workspace, v, a.sealer, a.cfg.WorkspaceID, a.clock, &slogAdapter{l: a.logger}), nil
}

// Close logs the outcome of the operation and closes all resources.
func (a *CVApp) Close() error {
	var firstErr error

	if err := a.service.Close(); err != nil {
		firstErr = fmt.Errorf("closing record store: %w", err)
	}

	d := a.op.Duration(a.clock.Now())
	if a.op.Err != nil {
		a.logger.Error("operation finished", "operation", a.op.Operation, "status", a.op.Status,
			"duration", d, "error", a.op.Err)
	} else {
		a.logger.Info("operation finished", "operation", a.op.Operation, "status", a.op.Status,
			"duration", d)
	}

	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
