package cv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// ArchiveInfo describes one export archive held by a vault.
type ArchiveInfo struct {
	Name string
	Size int64
}

// Vault stores export archives, grouped per workspace. Reads and writes are
// streamed.
type Vault interface {
	Name() string

	// PutArchive stores the size bytes read from r as workspaceID/name,
	// replacing any archive of the same name.
	PutArchive(ctx context.Context, workspaceID, name string, r io.Reader, size int64) error

	// GetArchive writes the archive workspaceID/name to w.
	GetArchive(ctx context.Context, workspaceID, name string, w io.Writer) error

	// ListArchives returns the workspace's archives ordered by name.
	ListArchives(ctx context.Context, workspaceID string) ([]ArchiveInfo, error)

	// ValidateSetup checks that the vault is reachable and usable.
	ValidateSetup(ctx context.Context) error
}

// Sealer encrypts export archives with a public key. Opening them requires
// the passphrase that protects the private key.
type Sealer interface {
	// Setup generates and stores a new key pair, protecting the private key
	// with passphrase.
	Setup(passphrase string) error

	// Seal encrypts r into w.
	Seal(r io.Reader, w io.Writer) error

	// Unlock returns an Unsealer holding the decrypted private key.
	Unlock(passphrase string) (Unsealer, error)

	// IsConfigured reports whether a key pair is present.
	IsConfigured() bool
}

// Unsealer decrypts archives for one session.
type Unsealer interface {
	Unseal(r io.Reader, w io.Writer) error
}

// Archiver moves whole-workspace exports in and out of a vault.
type Archiver struct {
	workspace   *Workspace
	vault       Vault
	sealer      Sealer
	workspaceID string
	clock       Clock
	logger      Logger
}

func NewArchiver(workspace *Workspace, vault Vault, sealer Sealer, workspaceID string, clock Clock, logger Logger) *Archiver {
	return &Archiver{
		workspace:   workspace,
		vault:       vault,
		sealer:      sealer,
		workspaceID: workspaceID,
		clock:       clock,
		logger:      logger,
	}
}

// Export seals the current workspace and stores it under a timestamped name,
// which it returns.
func (a *Archiver) Export(ctx context.Context) (string, error) {
	data, err := a.workspace.Export(ctx)
	if err != nil {
		return "", err
	}

	var sealed bytes.Buffer
	if err := a.sealer.Seal(bytes.NewReader(data), &sealed); err != nil {
		return "", fmt.Errorf("sealing export: %w", err)
	}

	name := "cv-" + a.clock.Now().UTC().Format("20060102T150405.000Z") + ".json.age"
	if err := a.vault.PutArchive(ctx, a.workspaceID, name, &sealed, int64(sealed.Len())); err != nil {
		return "", fmt.Errorf("storing export in %s: %w", a.vault.Name(), err)
	}
	a.logger.Info("export archived", "vault", a.vault.Name(), "archive", name, "bytes", len(data))
	return name, nil
}

// List returns the archives stored for this workspace.
func (a *Archiver) List(ctx context.Context) ([]ArchiveInfo, error) {
	return a.vault.ListArchives(ctx, a.workspaceID)
}

// Latest returns the name of the newest archive, or "" when there is none.
func (a *Archiver) Latest(ctx context.Context) (string, error) {
	archives, err := a.List(ctx)
	if err != nil {
		return "", err
	}
	if len(archives) == 0 {
		return "", nil
	}
	return archives[len(archives)-1].Name, nil
}

// Import fetches archive name, unseals it with u and imports it.
func (a *Archiver) Import(ctx context.Context, name string, u Unsealer) (ImportResult, error) {
	if err := ValidateArchiveName(name); err != nil {
		return ImportResult{}, err
	}

	var sealed bytes.Buffer
	if err := a.vault.GetArchive(ctx, a.workspaceID, name, &sealed); err != nil {
		return ImportResult{}, fmt.Errorf("fetching %s: %w", name, err)
	}
	var plain bytes.Buffer
	if err := u.Unseal(&sealed, &plain); err != nil {
		return ImportResult{}, fmt.Errorf("unsealing %s: %w", name, err)
	}
	return a.workspace.Import(ctx, plain.Bytes())
}

// ValidateArchiveName rejects names that could escape the workspace's
// directory in a vault.
func ValidateArchiveName(name string) error {
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid archive name %q: %w", name, ErrInvalid)
	}
	return nil
}
