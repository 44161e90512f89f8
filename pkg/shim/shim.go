// Package shim maintains the per-project directory of launchers that put
// installed tools on PATH.
package shim

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/fsutil"
	"github.com/glorpus-work/frate/pkg/platform"
)

// Manager creates and removes shims in a single directory.
type Manager struct {
	dir     string
	adapter platform.Adapter
}

// NewManager returns a shim manager for dir using adapter.
func NewManager(dir string, adapter platform.Adapter) *Manager {
	if adapter == nil {
		adapter = platform.Current()
	}
	return &Manager{dir: dir, adapter: adapter}
}

// Dir returns the shim directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Path returns where the shim for stem lives.
func (m *Manager) Path(stem string) string {
	return m.adapter.ShimPath(m.dir, stem)
}

// Create points the shim named stem at target, replacing any existing shim.
func (m *Manager) Create(target, stem string) (string, error) {
	if stem == "" {
		return "", fmt.Errorf("%w: empty shim name for %s", pkgerrors.ErrShimCreation, target)
	}
	if err := fsutil.EnsureDir(m.dir); err != nil {
		return "", fmt.Errorf("%w: %w", pkgerrors.ErrShimCreation, pkgerrors.NewFileOperationError("create", m.dir, err))
	}
	shimPath := m.Path(stem)
	if err := removeIfExists(shimPath); err != nil {
		return "", fmt.Errorf("%w: %w", pkgerrors.ErrShimCreation, err)
	}
	written, err := m.adapter.MakeShim(target, shimPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s -> %s: %v", pkgerrors.ErrShimCreation, shimPath, target, err)
	}
	return written, nil
}

// Remove deletes the shim for stem. A missing shim is not an error.
func (m *Manager) Remove(stem string) error {
	if stem == "" {
		return nil
	}
	return removeIfExists(m.Path(stem))
}

// Exists reports whether a shim for stem is present.
func (m *Manager) Exists(stem string) bool {
	_, err := os.Lstat(m.Path(stem))
	return err == nil
}

// Target returns the file a symlink shim points to. Non-symlink shims return
// the shim path itself.
func (m *Manager) Target(stem string) (string, error) {
	p := m.Path(stem)
	info, err := os.Lstat(p)
	if err != nil {
		return "", err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return p, nil
	}
	return os.Readlink(p)
}

// Reset removes every shim and recreates the empty directory.
func (m *Manager) Reset() error {
	if err := fsutil.ResetDir(m.dir); err != nil {
		return pkgerrors.NewFileOperationError("reset", m.dir, err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return pkgerrors.NewFileOperationError("remove", path, err)
	}
	return nil
}
