package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"cv-go/internal/cv"
)

// MemoryVault keeps archives in memory. It is safe for concurrent use and
// is mostly useful in tests.
type MemoryVault struct {
	name     string
	archives map[string][]byte // "workspaceID/name" -> data
	mu       sync.RWMutex
}

func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{name: name, archives: make(map[string][]byte)}
}

func archiveKey(workspaceID, name string) string {
	return workspaceID + "/" + name
}

func (m *MemoryVault) Name() string { return m.name }

func (m *MemoryVault) PutArchive(_ context.Context, workspaceID, name string, r io.Reader, size int64) error {
	if err := cv.ValidateArchiveName(name); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.archives[archiveKey(workspaceID, name)] = data
	return nil
}

func (m *MemoryVault) GetArchive(_ context.Context, workspaceID, name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.archives[archiveKey(workspaceID, name)]
	if !ok {
		return fmt.Errorf("archive %s: %w", name, cv.ErrNotFound)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	return nil
}

func (m *MemoryVault) ListArchives(_ context.Context, workspaceID string) ([]cv.ArchiveInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := workspaceID + "/"
	var out []cv.ArchiveInfo
	for k, data := range m.archives {
		if name, ok := strings.CutPrefix(k, prefix); ok {
			out = append(out, cv.ArchiveInfo{Name: name, Size: int64(len(data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ValidateSetup always succeeds.
func (m *MemoryVault) ValidateSetup(context.Context) error {
	return nil
}

var _ cv.Vault = (*MemoryVault)(nil)
