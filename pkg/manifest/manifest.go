// Package manifest reads and writes frate.toml, the per-project list of
// required tools and their exact versions.
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-version"

	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/fsutil"
)

// DefaultProjectVersion is written by Default.
const DefaultProjectVersion = "0.1.0"

// Manifest is the parsed content of frate.toml.
type Manifest struct {
	Project      Project           `toml:"project"`
	Dependencies map[string]string `toml:"dependencies"`
	Hooks        *Hooks            `toml:"hooks,omitempty"`
}

// Project identifies the project owning the manifest.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Hooks names optional scripts, relative to the project root, that run
// around installation.
type Hooks struct {
	PostInstall   string `toml:"post_install,omitempty"`
	PostUninstall string `toml:"post_uninstall,omitempty"`
}

// Default returns the manifest written by "frate init".
func Default(projectName string) *Manifest {
	return &Manifest{
		Project:      Project{Name: projectName, Version: DefaultProjectVersion},
		Dependencies: map[string]string{},
	}
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", pkgerrors.ErrManifestNotFound, path)
		}
		return nil, pkgerrors.NewFileOperationError("open", path, err)
	}
	defer func() { _ = f.Close() }()

	m, err := LoadFromReader(f)
	if err != nil {
		return nil, pkgerrors.Wrap(err, path)
	}
	return m, nil
}

// LoadFromReader decodes and validates a manifest.
func LoadFromReader(r io.Reader) (*Manifest, error) {
	var m Manifest
	if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrManifestParse, err)
	}
	if m.Dependencies == nil {
		m.Dependencies = map[string]string{}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save validates the manifest and writes it to path.
func (m *Manifest) Save(path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := m.Encode()
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, fsutil.FileModeDefault, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// Encode renders the manifest as TOML.
func (m *Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks the project name and every dependency entry.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Project.Name) == "" {
		return fmt.Errorf("%w: project name cannot be empty", pkgerrors.ErrManifestValidation)
	}
	for _, name := range m.Names() {
		if err := ValidateName(name); err != nil {
			return err
		}
		if err := ValidateVersion(m.Dependencies[name]); err != nil {
			return fmt.Errorf("%w: %s: %w", pkgerrors.ErrManifestValidation, name, err)
		}
	}
	return nil
}

// Names returns the dependency names in lexicographic order. Sync and
// install-all process dependencies in this order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Add inserts or replaces a dependency after validating its name and version.
func (m *Manifest) Add(name, v string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ValidateVersion(v); err != nil {
		return err
	}
	if m.Dependencies == nil {
		m.Dependencies = map[string]string{}
	}
	m.Dependencies[name] = v
	return nil
}

// Remove deletes a dependency and reports whether it was present.
func (m *Manifest) Remove(name string) bool {
	if _, ok := m.Dependencies[name]; !ok {
		return false
	}
	delete(m.Dependencies, name)
	return true
}

// ValidateName checks that a dependency name can double as a directory
// under the project bin directory.
func ValidateName(name string) error {
	if err := fsutil.ValidateToolName(name); err != nil {
		return fmt.Errorf("%w: %w", pkgerrors.ErrManifestValidation, err)
	}
	return nil
}

// ValidateVersion accepts exact semantic versions only: MAJOR.MINOR.PATCH
// with optional pre-release and build metadata, no "v" prefix, no ranges.
func ValidateVersion(v string) error {
	if v == "" {
		return fmt.Errorf("%w: empty version", pkgerrors.ErrInvalidVersion)
	}
	if strings.ContainsAny(v, "^~<>=*, ") {
		return fmt.Errorf("%w: %q must be an exact version", pkgerrors.ErrInvalidVersion, v)
	}
	core := v
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	if strings.HasPrefix(core, "v") || strings.HasPrefix(core, "V") {
		return fmt.Errorf("%w: %q must not have a v prefix", pkgerrors.ErrInvalidVersion, v)
	}
	if strings.Count(core, ".") != 2 {
		return fmt.Errorf("%w: %q must have the form MAJOR.MINOR.PATCH", pkgerrors.ErrInvalidVersion, v)
	}
	if _, err := version.NewSemver(v); err != nil {
		return fmt.Errorf("%w: %q: %v", pkgerrors.ErrInvalidVersion, v, err)
	}
	return nil
}

// ParseNameAtVersion splits "name@1.2.3".
func ParseNameAtVersion(s string) (string, string, error) {
	name, v, ok := strings.Cut(s, "@")
	if !ok || name == "" || v == "" {
		return "", "", fmt.Errorf("%w: expected name@version, got %q", pkgerrors.ErrInvalidVersion, s)
	}
	if err := ValidateVersion(v); err != nil {
		return "", "", err
	}
	return name, v, nil
}
