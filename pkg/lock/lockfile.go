// Package lock reads, writes and regenerates frate.lock, the pinned
// resolution of every manifest dependency for the current platform.
package lock

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/glorpus-work/frate/internal/logger"
	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/fsutil"
)

// Package is one pinned tool.
type Package struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Source  string `toml:"source"`
	Hash    string `toml:"hash"`
}

// Lockfile is the parsed content of frate.lock.
type Lockfile struct {
	Packages []Package `toml:"package"`
}

// Load reads the lockfile at path.
func Load(path string) (*Lockfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.NewFileOperationError("open", path, err)
	}
	defer func() { _ = f.Close() }()
	return LoadFromReader(f)
}

// LoadFromReader decodes a lockfile and rejects package names that are
// not valid tool directory names.
func LoadFromReader(r io.Reader) (*Lockfile, error) {
	var lf Lockfile
	if _, err := toml.NewDecoder(r).Decode(&lf); err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrLockfileParse, err)
	}
	for _, pkg := range lf.Packages {
		if err := fsutil.ValidateToolName(pkg.Name); err != nil {
			return nil, fmt.Errorf("%w: %w", pkgerrors.ErrLockfileParse, err)
		}
	}
	return &lf, nil
}

// LoadOrDefault reads the lockfile at path. A missing or unparsable file
// yields an empty lockfile; the latter is logged.
func LoadOrDefault(path string) *Lockfile {
	lf, err := Load(path)
	if err == nil {
		return lf
	}
	if !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Ignoring unreadable lockfile", logger.Fields{"path": path, "error": err})
	}
	return &Lockfile{}
}

// Save rewrites the lockfile at path.
func (lf *Lockfile) Save(path string) error {
	data, err := lf.Encode()
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, fsutil.FileModeDefault, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// Encode renders the lockfile as TOML.
func (lf *Lockfile) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(lf); err != nil {
		return nil, fmt.Errorf("failed to encode lockfile: %w", err)
	}
	return buf.Bytes(), nil
}

// Find returns the entry for name.
func (lf *Lockfile) Find(name string) (Package, bool) {
	for _, p := range lf.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return Package{}, false
}

// MustFind is Find returning ErrDependencyNotLocked for unknown names.
func (lf *Lockfile) MustFind(name string) (Package, error) {
	p, ok := lf.Find(name)
	if !ok {
		return Package{}, fmt.Errorf("%w: %s", pkgerrors.ErrDependencyNotLocked, name)
	}
	return p, nil
}

// Names returns the locked names in lockfile order.
func (lf *Lockfile) Names() []string {
	names := make([]string, 0, len(lf.Packages))
	for _, p := range lf.Packages {
		names = append(names, p.Name)
	}
	return names
}
