package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/docpress/docpress/internal/logfields"
)

// Manager provisions the checkout directory a run operates in. Ephemeral
// managers mint a fresh timestamped directory under their base and remove it
// again on Cleanup; persistent managers pin a fixed directory that survives
// across runs so git pulls stay incremental.
type Manager struct {
	base  string // parent directory for minted checkouts
	fixed string // non-empty pins the manager to this reusable path
	dir   string // current checkout, set by Create
}

// NewManager returns an ephemeral manager rooted at base. An empty base
// falls back to the system temp directory.
func NewManager(base string) *Manager {
	return &Manager{base: defaultBase(base)}
}

// NewPersistentManager returns a manager pinned to base/name, with name
// defaulting to "checkout". Cleanup leaves the directory in place.
func NewPersistentManager(base, name string) *Manager {
	if name == "" {
		name = "checkout"
	}
	base = defaultBase(base)
	return &Manager{base: base, fixed: filepath.Join(base, name)}
}

func defaultBase(base string) string {
	if base == "" {
		return os.TempDir()
	}
	return base
}

// Create provisions the checkout directory. A second call on a manager that
// already holds one is a no-op, so a deferred Cleanup always pairs with a
// single directory.
func (m *Manager) Create() error {
	if m.dir != "" {
		return nil
	}

	dir := m.fixed
	if dir == "" {
		stamp := time.Now().Format("20060102-150405")
		dir = filepath.Join(m.base, fmt.Sprintf("docpress-%s-%d", stamp, os.Getpid()))
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	m.dir = dir
	slog.Info("Workspace ready", logfields.Path(dir), slog.Bool("persistent", m.fixed != ""))
	return nil
}

// GetPath returns the checkout directory, or "" before Create.
func (m *Manager) GetPath() string {
	return m.dir
}

// Cleanup deletes an ephemeral checkout. Persistent checkouts are kept so
// the next run pulls instead of recloning.
func (m *Manager) Cleanup() error {
	switch {
	case m.dir == "":
		return nil
	case m.fixed != "":
		slog.Debug("Keeping persistent workspace", logfields.Path(m.dir))
		return nil
	}

	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to remove workspace: %w", err)
	}
	slog.Info("Removed workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}

// CreateSubdir makes a named directory inside the checkout and returns its
// path.
func (m *Manager) CreateSubdir(name string) (string, error) {
	if m.dir == "" {
		return "", fmt.Errorf("workspace not created")
	}

	sub := filepath.Join(m.dir, name)
	if err := os.MkdirAll(sub, 0o750); err != nil {
		return "", fmt.Errorf("failed to create subdirectory %s: %w", name, err)
	}
	return sub, nil
}
