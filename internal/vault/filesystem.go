package vault

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cv-go/internal/cv"
)

// FileSystemVault stores archives as files:
//
//	<root>/
//	  <workspaceID>/
//	    <archive name>
type FileSystemVault struct {
	name string
	root string
}

// NewFileSystemVault returns a vault rooted at root, creating it if needed.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create vault root: %w", err)
	}
	return &FileSystemVault{name: name, root: root}, nil
}

func (v *FileSystemVault) Name() string { return v.name }

func (v *FileSystemVault) workspaceDir(workspaceID string) (string, error) {
	if workspaceID == "" || strings.ContainsAny(workspaceID, `/\`) || strings.HasPrefix(workspaceID, ".") {
		return "", fmt.Errorf("invalid workspace id %q", workspaceID)
	}
	return filepath.Join(v.root, workspaceID), nil
}

func (v *FileSystemVault) PutArchive(_ context.Context, workspaceID, name string, r io.Reader, size int64) error {
	if err := cv.ValidateArchiveName(name); err != nil {
		return err
	}
	dir, err := v.workspaceDir(workspaceID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	return writeFile(filepath.Join(dir, name), r, size)
}

func (v *FileSystemVault) GetArchive(_ context.Context, workspaceID, name string, w io.Writer) error {
	if err := cv.ValidateArchiveName(name); err != nil {
		return err
	}
	dir, err := v.workspaceDir(workspaceID)
	if err != nil {
		return err
	}

	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("archive %s: %w", name, cv.ErrNotFound)
		}
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}
	return nil
}

func (v *FileSystemVault) ListArchives(_ context.Context, workspaceID string) ([]cv.ArchiveInfo, error) {
	dir, err := v.workspaceDir(workspaceID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing archives: %w", err)
	}

	var out []cv.ArchiveInfo
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("listing archives: %w", err)
		}
		out = append(out, cv.ArchiveInfo{Name: e.Name(), Size: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ValidateSetup checks that the root is an existing directory.
func (v *FileSystemVault) ValidateSetup(context.Context) error {
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("vault root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root is not a directory: %s", v.root)
	}
	return nil
}

// writeFile writes r to destPath through a temp file and rename.
func writeFile(destPath string, r io.Reader, expectedSize int64) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

var _ cv.Vault = (*FileSystemVault)(nil)
