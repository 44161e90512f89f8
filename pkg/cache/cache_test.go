package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/frate/pkg/cache"
	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/fsutil"
)

const justURL = "https://github.com/casey/just/releases/download/1.40.0/just-1.40.0-x86_64-unknown-linux-musl.tar.gz"

func TestNewDefaultManager(t *testing.T) {
	paths := fsutil.PathsAt(t.TempDir())
	mgr, err := cache.NewDefaultManager(paths)
	require.NoError(t, err)
	assert.Equal(t, paths.CacheDir, mgr.Directory())

	_, err = cache.NewDefaultManager(fsutil.Paths{})
	assert.ErrorIs(t, err, pkgerrors.ErrCacheDirectory)
}

func TestArchiveName(t *testing.T) {
	tests := []struct {
		url      string
		expected string
		wantErr  bool
	}{
		{url: justURL, expected: "just-1.40.0-x86_64-unknown-linux-musl.tar.gz"},
		{url: "https://example.com/a/b/tool.zip?sig=abc#frag", expected: "tool.zip"},
		{url: "tool.tar.gz", expected: "tool.tar.gz"},
		{url: "https://example.com/dir/", wantErr: true},
		{url: "https://example.com", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			name, err := cache.ArchiveName(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, pkgerrors.ErrInvalidArchiveName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestLookupAndStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	mgr := cache.NewManager(dir)

	_, ok, err := mgr.Lookup(justURL)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache must miss")

	path, err := mgr.Store(justURL, []byte("v1"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "just-1.40.0-x86_64-unknown-linux-musl.tar.gz"), path)

	found, ok, err := mgr.Lookup(justURL)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, path, found)

	// same file name from a different host hits the same entry
	_, ok, err = mgr.Lookup("https://mirror.example.com/just-1.40.0-x86_64-unknown-linux-musl.tar.gz")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = mgr.Store(justURL, []byte("v2"))
	require.NoError(t, err)
	data, err := mgr.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestEvict(t *testing.T) {
	dir := t.TempDir()
	mgr := cache.NewManager(dir)

	for _, name := range []string{"just-1.40.0.tar.gz", "just-1.39.0.tar.gz", "ripgrep-14.1.0.zip"} {
		_, err := mgr.Store("https://example.com/"+name, []byte(name))
		require.NoError(t, err)
	}

	removed, err := mgr.Evict("just")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	names, err := mgr.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"ripgrep-14.1.0.zip"}, names)

	removed, err = mgr.Evict("just")
	require.NoError(t, err)
	assert.Zero(t, removed, "evicting twice is a no-op")
}

func TestEvict_MatchesRelativeNamesOnly(t *testing.T) {
	// the cache root itself contains "just" but must not make every file match
	dir := filepath.Join(t.TempDir(), "just-cache")
	mgr := cache.NewManager(dir)
	_, err := mgr.Store("https://example.com/ripgrep.zip", []byte("x"))
	require.NoError(t, err)

	ok, err := mgr.Contains("just")
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := mgr.Evict("just")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestEvict_MissingDirectory(t *testing.T) {
	mgr := cache.NewManager(filepath.Join(t.TempDir(), "missing"))

	removed, err := mgr.Evict("just")
	require.NoError(t, err)
	assert.Zero(t, removed)

	ok, err := mgr.Contains("just")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContains(t *testing.T) {
	mgr := cache.NewManager(t.TempDir())
	_, err := mgr.Store(justURL, []byte("x"))
	require.NoError(t, err)

	ok, err := mgr.Contains("just-1.40.0")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mgr.Contains("ripgrep")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCleanAllAndInfo(t *testing.T) {
	dir := t.TempDir()
	mgr := cache.NewManager(dir)

	_, err := mgr.Store("https://example.com/a.tar.gz", []byte("12345"))
	require.NoError(t, err)
	_, err = mgr.Store("https://example.com/b.zip", []byte("123"))
	require.NoError(t, err)

	info, err := mgr.GetInfo()
	require.NoError(t, err)
	assert.Equal(t, dir, info.Directory)
	assert.Equal(t, int64(8), info.TotalSize)
	assert.Equal(t, 2, info.Files)

	freed, err := mgr.CleanAll()
	require.NoError(t, err)
	assert.Equal(t, int64(8), freed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.DirExists(t, dir)
}
