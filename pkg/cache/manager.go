// Package cache stores downloaded release archives in a flat, global directory
// keyed by the last path segment of their download URL.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/fsutil"
)

// Manager manages the archive cache directory.
type Manager struct {
	directory string
}

// NewManager creates a cache manager rooted at directory. The directory is
// created lazily on the first Store.
func NewManager(directory string) *Manager {
	return &Manager{directory: directory}
}

// NewDefaultManager creates a cache manager at the default cache location.
func NewDefaultManager(paths fsutil.Paths) (*Manager, error) {
	if paths.CacheDir == "" {
		return nil, pkgerrors.ErrCacheDirectory
	}
	return NewManager(paths.CacheDir), nil
}

// Directory returns the cache directory path.
func (cm *Manager) Directory() string {
	return cm.directory
}

// ArchiveName derives the cache file name from a download URL: the last
// '/'-separated segment, without query string or fragment.
func ArchiveName(rawURL string) (string, error) {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	name := p[strings.LastIndex(p, "/")+1:]
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", pkgerrors.ErrInvalidArchiveName, rawURL)
	}
	return name, nil
}

// Path returns where the archive for url is (or would be) cached.
func (cm *Manager) Path(rawURL string) (string, error) {
	name, err := ArchiveName(rawURL)
	if err != nil {
		return "", err
	}
	return filepath.Join(cm.directory, name), nil
}

// Lookup reports whether an archive for url is cached and where. Only
// existence is checked, the caller must verify the content.
func (cm *Manager) Lookup(rawURL string) (string, bool, error) {
	path, err := cm.Path(rawURL)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return path, false, nil
	}
	if err != nil {
		return "", false, pkgerrors.NewFileOperationError("stat", path, err)
	}
	return path, info.Mode().IsRegular(), nil
}

// Read returns the bytes of a cached archive.
func (cm *Manager) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.NewFileOperationError("read", path, err)
	}
	return data, nil
}

// Store writes data as the cached archive for url, overwriting any existing
// entry. The write is not atomic; a torn entry fails verification on next use.
func (cm *Manager) Store(rawURL string, data []byte) (string, error) {
	path, err := cm.Path(rawURL)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cm.directory, fsutil.DirModeDefault); err != nil {
		return "", pkgerrors.NewFileOperationError("create", cm.directory, err)
	}
	if err := os.WriteFile(path, data, fsutil.FileModeDefault); err != nil {
		return "", pkgerrors.NewFileOperationError("write", path, err)
	}
	return path, nil
}

// Evict removes every cached file whose path relative to the cache directory
// contains substr and returns how many were removed. A missing cache directory
// is not an error.
func (cm *Manager) Evict(substr string) (int, error) {
	matches, err := cm.match(substr)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, pkgerrors.NewFileOperationError("remove", path, err)
		}
		removed++
	}
	return removed, nil
}

// Contains reports whether any cached file name contains substr.
func (cm *Manager) Contains(substr string) (bool, error) {
	matches, err := cm.match(substr)
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

// List returns the names of all cached archives relative to the cache directory.
func (cm *Manager) List() ([]string, error) {
	matches, err := cm.match("")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, path := range matches {
		rel, err := filepath.Rel(cm.directory, path)
		if err != nil {
			return nil, err
		}
		names = append(names, filepath.ToSlash(rel))
	}
	return names, nil
}

// CleanAll removes the cache directory with its contents and recreates it
// empty. It returns the number of bytes freed.
func (cm *Manager) CleanAll() (int64, error) {
	size, _, err := getDirSizeAndFiles(cm.directory)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.ErrCacheClean, err.Error())
	}
	if err := os.RemoveAll(cm.directory); err != nil {
		return 0, pkgerrors.Wrapf(pkgerrors.ErrCacheClean, "failed to remove directory %s: %v", cm.directory, err)
	}
	if err := os.MkdirAll(cm.directory, fsutil.DirModeDefault); err != nil {
		return size, pkgerrors.Wrapf(pkgerrors.ErrCacheClean, "failed to recreate directory %s: %v", cm.directory, err)
	}
	return size, nil
}

// GetInfo returns information about the cache.
func (cm *Manager) GetInfo() (*Info, error) {
	size, files, err := getDirSizeAndFiles(cm.directory)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCacheInfo, err.Error())
	}
	return &Info{Directory: cm.directory, TotalSize: size, Files: files}, nil
}

// match walks the cache and collects regular files whose relative path contains substr.
func (cm *Manager) match(substr string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(cm.directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == cm.directory {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(cm.directory, path)
		if err != nil {
			return err
		}
		if strings.Contains(filepath.ToSlash(rel), substr) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.NewFileOperationError("walk", cm.directory, err)
	}
	return matches, nil
}

// getDirSizeAndFiles calculates directory size and file count. A missing
// directory counts as empty.
func getDirSizeAndFiles(dir string) (size int64, count int, err error) {
	if _, err = os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return 0, 0, nil
	}

	err = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		count++
		return nil
	})
	if err != nil {
		err = pkgerrors.Wrapf(err, "error walking directory %s", dir)
	}
	return size, count, err
}
