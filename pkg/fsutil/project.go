package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
)

// Project describes the on-disk layout of a single project.
type Project struct {
	Root string
}

// NewProject returns the layout for the project rooted at root.
func NewProject(root string) Project {
	return Project{Root: root}
}

func (p Project) ManifestPath() string { return filepath.Join(p.Root, ManifestFileName) }
func (p Project) LockPath() string     { return filepath.Join(p.Root, LockFileName) }
func (p Project) StateDir() string     { return filepath.Join(p.Root, StateDirName) }
func (p Project) BinDir() string       { return filepath.Join(p.StateDir(), binDirName) }
func (p Project) ShimsDir() string     { return filepath.Join(p.StateDir(), shimsDirName) }

// ToolDir is the extraction directory of a single tool. Callers that
// remove or rewrite the directory go through SafeToolDir.
func (p Project) ToolDir(name string) string {
	return filepath.Join(p.BinDir(), name)
}

// SafeToolDir returns ToolDir after checking that name is a single path
// element and the result is a direct child of BinDir.
func (p Project) SafeToolDir(name string) (string, error) {
	if err := ValidateToolName(name); err != nil {
		return "", err
	}
	dir := p.ToolDir(name)
	rel, err := filepath.Rel(filepath.Clean(p.BinDir()), filepath.Clean(dir))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q resolves outside %s", pkgerrors.ErrInvalidToolName, name, p.BinDir())
	}
	return dir, nil
}

// ValidateToolName rejects names that are not usable as a single directory
// and shim file name: empty, "." and "..", or containing a path separator
// or volume name.
func ValidateToolName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name cannot be empty", pkgerrors.ErrInvalidToolName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", pkgerrors.ErrInvalidToolName, name)
	case strings.ContainsAny(name, `/\:`) || filepath.VolumeName(name) != "":
		return fmt.Errorf("%w: %q must not contain a path separator or volume", pkgerrors.ErrInvalidToolName, name)
	}
	return nil
}

// Ensure creates the bin and shims directories.
func (p Project) Ensure() error {
	for _, dir := range []string{p.BinDir(), p.ShimsDir()} {
		if err := EnsureDir(dir); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// FindProjectRoot walks up from start until it finds a directory containing
// the manifest file. It returns os.ErrNotExist when none is found.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ManifestFileName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in %s or any parent: %w", ManifestFileName, start, os.ErrNotExist)
		}
		dir = parent
	}
}
