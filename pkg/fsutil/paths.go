package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds the global per-user directories of the application.
// It is passed explicitly to the components that need it so tests can point
// everything at a temporary directory.
type Paths struct {
	ConfigDir string
	CacheDir  string
	DataDir   string
}

// DefaultPaths resolves the platform-specific directories.
// On Linux: ~/.config/frate, ~/.cache/frate, ~/.local/share/frate
// On macOS: ~/Library/Application Support/frate, ~/Library/Caches/frate
// On Windows: %AppData%\frate, %LocalAppData%\frate
func DefaultPaths() (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, err
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return Paths{}, err
	}
	dataDir, err := appDataDir()
	if err != nil {
		return Paths{}, err
	}
	return Paths{
		ConfigDir: filepath.Join(configDir, AppName),
		CacheDir:  filepath.Join(cacheDir, AppName),
		DataDir:   filepath.Join(dataDir, AppName),
	}, nil
}

// PathsAt returns a Paths rooted below root, one subdirectory per kind.
func PathsAt(root string) Paths {
	return Paths{
		ConfigDir: filepath.Join(root, "config"),
		CacheDir:  filepath.Join(root, "cache"),
		DataDir:   filepath.Join(root, "data"),
	}
}

// ConfigFile is the default location of the global config file.
func (p Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

func appDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			return "", errors.New("LOCALAPPDATA environment variable not set")
		}
		return localAppData, nil

	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil

	default:
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			return xdgDataHome, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}
