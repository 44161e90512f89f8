package archive

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/test/testutil"
)

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name     string
		expected Format
		wantErr  bool
	}{
		{name: "https://example.com/just-1.40.0-x86_64-unknown-linux-musl.tar.gz", expected: FormatTarGz},
		{name: "https://example.com/tool.zip", expected: FormatZip},
		{name: "https://example.com/tool.zip?token=abc", expected: FormatZip},
		{name: "tool.tar.xz", wantErr: true},
		{name: "tool.tgz", wantErr: true},
		{name: "tool", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, err := FormatFor(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, pkgerrors.ErrUnsupportedArchiveType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestExtract(t *testing.T) {
	entries := map[string]testutil.Entry{
		"just-1.40.0/just":      testutil.Exec("#!/bin/sh\necho just\n"),
		"just-1.40.0/README.md": testutil.File("readme"),
	}

	tests := []struct {
		name   string
		format Format
		data   func(t *testing.T) []byte
	}{
		{
			name:   "tar.gz",
			format: FormatTarGz,
			data:   func(t *testing.T) []byte { return testutil.TarGz(t, entries) },
		},
		{
			name:   "zip",
			format: FormatZip,
			data:   func(t *testing.T) []byte { return testutil.Zip(t, entries) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "bin", "just")
			am := NewManager()

			require.NoError(t, am.Extract(context.Background(), tt.format, tt.data(t), dest))

			content, err := os.ReadFile(filepath.Join(dest, "just-1.40.0", "just"))
			require.NoError(t, err)
			assert.Equal(t, "#!/bin/sh\necho just\n", string(content))
			assert.FileExists(t, filepath.Join(dest, "just-1.40.0", "README.md"))

			if runtime.GOOS != "windows" {
				info, err := os.Stat(filepath.Join(dest, "just-1.40.0", "just"))
				require.NoError(t, err)
				assert.NotZero(t, info.Mode().Perm()&0o111, "execute bit should survive extraction")
			}
		})
	}
}

func TestExtract_Symlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	data := testutil.TarGz(t, map[string]testutil.Entry{
		"tool/bin/tool-1.0": testutil.Exec("bin"),
		"tool/bin/tool":     {Link: "tool-1.0", Mode: 0o777},
	})
	dest := t.TempDir()

	require.NoError(t, NewManager().Extract(context.Background(), FormatTarGz, data, dest))

	link, err := os.Readlink(filepath.Join(dest, "tool", "bin", "tool"))
	require.NoError(t, err)
	assert.Equal(t, "tool-1.0", link)
}

func TestExtract_RejectsTraversal(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]testutil.Entry
	}{
		{
			name:    "parent directory entry",
			entries: map[string]testutil.Entry{"../evil": testutil.File("x")},
		},
		{
			name:    "nested parent directory entry",
			entries: map[string]testutil.Entry{"a/../../evil": testutil.File("x")},
		},
		{
			name:    "symlink out of destination",
			entries: map[string]testutil.Entry{"link": {Link: "../../etc/passwd", Mode: 0o777}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			dest := filepath.Join(root, "dest")

			err := NewManager().Extract(context.Background(), FormatTarGz, testutil.TarGz(t, tt.entries), dest)
			if err != nil {
				assert.ErrorIs(t, err, pkgerrors.ErrPathTraversal)
			}
			assert.NoFileExists(t, filepath.Join(root, "evil"))
			_, statErr := os.Lstat(filepath.Join(dest, "link"))
			assert.True(t, os.IsNotExist(statErr), "escaping symlink must not be created")
		})
	}
}

func TestExtract_Corrupt(t *testing.T) {
	err := NewManager().Extract(context.Background(), FormatTarGz, []byte("not a gzip stream"), t.TempDir())
	assert.Error(t, err)

	err = NewManager().Extract(context.Background(), FormatZip, []byte("not a zip"), t.TempDir())
	assert.Error(t, err)
}

func TestExtract_UnknownFormat(t *testing.T) {
	err := NewManager().Extract(context.Background(), Format("rar"), nil, t.TempDir())
	assert.ErrorIs(t, err, pkgerrors.ErrUnsupportedArchiveType)
}

func TestSafeJoin(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dest")

	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "tool/bin/tool"},
		{name: "./tool"},
		{name: "a/../b"},
		{name: "../evil", wantErr: true},
		{name: "a/../../evil", wantErr: true},
		{name: "/etc/passwd", wantErr: true},
		{name: `..\evil`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := safeJoin(dest, tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, pkgerrors.ErrPathTraversal)
				return
			}
			require.NoError(t, err)
			assert.True(t, within(dest, target))
		})
	}
}
