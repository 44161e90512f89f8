// Package config provides the global frate configuration.
// It covers the registry location, the archive cache directory, network
// settings and logging. The file is YAML and every field has a default, so a
// missing file is equivalent to an empty one.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/frate/pkg/download"
	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/fsutil"
	"github.com/glorpus-work/frate/pkg/registry"
)

// Config represents the application configuration.
type Config struct {
	Registry RegistryConfig `yaml:"registry"`
	Settings Settings       `yaml:"settings"`

	paths fsutil.Paths
}

// RegistryConfig locates the tool registry.
type RegistryConfig struct {
	// URL is a template; "{name}" is replaced by the tool name.
	URL string `yaml:"url"`
}

// Settings represents general application settings.
type Settings struct {
	CacheDir string `yaml:"cache_dir,omitempty"`

	// HTTPTimeout of zero disables the client timeout.
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	UserAgent   string        `yaml:"user_agent"`

	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, json
}

// YAMLIndent is the number of spaces to use for YAML indentation.
const YAMLIndent = 2

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"text": true, "json": true}
)

// DefaultConfig returns a configuration with sensible defaults for the given paths.
func DefaultConfig(paths fsutil.Paths) *Config {
	return &Config{
		Registry: RegistryConfig{URL: registry.DefaultURLTemplate},
		Settings: Settings{
			CacheDir:    paths.CacheDir,
			HTTPTimeout: 0,
			UserAgent:   download.DefaultUserAgent,
			LogLevel:    "info",
			LogFormat:   "text",
		},
		paths: paths,
	}
}

// LoadConfig loads configuration from a file. A missing file yields DefaultConfig.
func LoadConfig(path string, paths fsutil.Paths) (*Config, error) {
	if path == "" {
		return nil, pkgerrors.ErrEmptyConfigPath
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(paths), nil
		}
		return nil, pkgerrors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file, paths)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader, paths fsutil.Paths) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read config data")
	}

	config := Config{paths: paths}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %w", pkgerrors.ErrConfigParse, err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig writes the configuration to path, replacing any existing file atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return pkgerrors.ErrEmptyConfigPath
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := fsutil.EnsureFileDir(path); err != nil {
		return fmt.Errorf("%w: %w", pkgerrors.ErrConfigDirectory, err)
	}

	return fsutil.WriteFileAtomic(path, fsutil.FileModeDefault, func(w io.Writer) error {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(YAMLIndent)
		if err := encoder.Encode(c); err != nil {
			return fmt.Errorf("%w: %w", pkgerrors.ErrConfigEncode, err)
		}
		return encoder.Close()
	})
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkgerrors.ErrConfigEncode, err)
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return pkgerrors.ErrConfigValidation
	}
	if !strings.Contains(c.Registry.URL, registry.NamePlaceholder) {
		return fmt.Errorf("%w: registry url %q must contain %s", pkgerrors.ErrConfigValidation, c.Registry.URL, registry.NamePlaceholder)
	}
	return validateSettings(c.Settings)
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return fmt.Errorf("%w: http_timeout cannot be negative", pkgerrors.ErrConfigValidation)
	}
	if !validLogLevels[strings.ToLower(s.LogLevel)] {
		return fmt.Errorf("%w: invalid log level %q (must be one of: debug, info, warn, error)", pkgerrors.ErrConfigValidation, s.LogLevel)
	}
	if !validLogFormats[strings.ToLower(s.LogFormat)] {
		return fmt.Errorf("%w: invalid log format %q (must be text or json)", pkgerrors.ErrConfigValidation, s.LogFormat)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	paths, err := fsutil.DefaultPaths()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return paths.ConfigFile(), nil
}

// GetCacheDir returns the archive cache directory.
func (c *Config) GetCacheDir() string {
	if c.Settings.CacheDir != "" {
		return c.Settings.CacheDir
	}
	return c.paths.CacheDir
}

// Paths returns the global directories the config was loaded with,
// with CacheDir replaced by the configured cache directory.
func (c *Config) Paths() fsutil.Paths {
	p := c.paths
	p.CacheDir = c.GetCacheDir()
	return p
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig(c.paths)

	if c.Registry.URL == "" {
		c.Registry.URL = defaults.Registry.URL
	}
	if c.Settings.CacheDir == "" {
		c.Settings.CacheDir = defaults.Settings.CacheDir
	} else {
		c.Settings.CacheDir = expandHome(c.Settings.CacheDir)
	}
	if c.Settings.UserAgent == "" {
		c.Settings.UserAgent = defaults.Settings.UserAgent
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
