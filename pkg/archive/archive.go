// Package archive unpacks downloaded release archives into a tool directory.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"

	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/fsutil"
)

// Format is a supported archive layout, selected by file name suffix.
type Format string

const (
	FormatZip   Format = "zip"
	FormatTarGz Format = "tar.gz"
)

// FormatFor picks the archive format from the suffix of a URL or file name.
// Query strings and fragments are ignored.
func FormatFor(name string) (Format, error) {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch {
	case strings.HasSuffix(name, ".zip"):
		return FormatZip, nil
	case strings.HasSuffix(name, ".tar.gz"):
		return FormatTarGz, nil
	default:
		return "", fmt.Errorf("%w: %s", pkgerrors.ErrUnsupportedArchiveType, name)
	}
}

func (f Format) extractor() archives.Extractor {
	if f == FormatZip {
		return archives.Zip{}
	}
	return archives.CompressedArchive{
		Compression: archives.Gz{},
		Extraction:  archives.Tar{},
	}
}

// Manager handles archive extraction.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// Extract unpacks data into destDir. Entries that would land outside destDir
// are rejected with ErrPathTraversal. On failure destDir may be partially populated.
func (am *Manager) Extract(ctx context.Context, format Format, data []byte, destDir string) error {
	if format != FormatZip && format != FormatTarGz {
		return fmt.Errorf("%w: %s", pkgerrors.ErrUnsupportedArchiveType, format)
	}
	if err := fsutil.EnsureDir(destDir); err != nil {
		return pkgerrors.NewFileOperationError("create", destDir, err)
	}

	handler := func(_ context.Context, f archives.FileInfo) error {
		return am.extractEntry(f, destDir)
	}
	if err := format.extractor().Extract(ctx, bytes.NewReader(data), handler); err != nil {
		return fmt.Errorf("failed to extract %s archive: %w", format, err)
	}
	return nil
}

// extractEntry processes a single archive entry and writes it to destDir.
func (am *Manager) extractEntry(f archives.FileInfo, destDir string) error {
	targetPath, err := safeJoin(destDir, f.NameInArchive)
	if err != nil {
		return err
	}
	if targetPath == filepath.Clean(destDir) {
		return nil
	}

	mode := f.Mode()
	switch {
	case f.IsDir():
		return os.MkdirAll(targetPath, fsutil.DirModeDefault)
	case mode&os.ModeSymlink != 0:
		return am.writeSymlink(f, destDir, targetPath)
	case mode.IsRegular():
		return am.writeRegularFile(f, targetPath)
	default:
		// devices, fifos and the like are not part of tool releases
		return nil
	}
}

// writeSymlink recreates a symlink entry. Links resolving outside destDir are rejected.
func (am *Manager) writeSymlink(f archives.FileInfo, destDir, targetPath string) error {
	link := f.LinkTarget
	if link == "" {
		// zip stores the link target as the entry body
		target, err := readLinkBody(f)
		if err != nil {
			return err
		}
		link = target
	}
	if link == "" || filepath.IsAbs(link) {
		return fmt.Errorf("%w: %s -> %s", pkgerrors.ErrPathTraversal, f.NameInArchive, link)
	}
	resolved := filepath.Join(filepath.Dir(targetPath), filepath.FromSlash(link))
	if !within(destDir, resolved) {
		return fmt.Errorf("%w: %s -> %s", pkgerrors.ErrPathTraversal, f.NameInArchive, link)
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), fsutil.DirModeDefault); err != nil {
		return pkgerrors.NewFileOperationError("create parent directory for", targetPath, err)
	}
	_ = os.Remove(targetPath)
	if err := os.Symlink(filepath.FromSlash(link), targetPath); err != nil {
		return pkgerrors.NewFileOperationError("symlink", targetPath, err)
	}
	return nil
}

func readLinkBody(f archives.FileInfo) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failed to read symlink %s: %w", f.NameInArchive, err)
	}
	defer func() { _ = rc.Close() }()
	body, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read symlink target %s: %w", f.NameInArchive, err)
	}
	return strings.TrimSpace(string(body)), nil
}

// writeRegularFile writes a regular file entry and preserves its mode and mtime.
func (am *Manager) writeRegularFile(f archives.FileInfo, targetPath string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", f.NameInArchive, err)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(filepath.Dir(targetPath), fsutil.DirModeDefault); err != nil {
		return pkgerrors.NewFileOperationError("create parent directory for", targetPath, err)
	}

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = fsutil.FileModeDefault
	}
	dst, err := fsutil.CreateFilePerm(targetPath, perm)
	if err != nil {
		return pkgerrors.NewFileOperationError("create", targetPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return pkgerrors.NewFileOperationError("write", targetPath, err)
	}
	if err := dst.Close(); err != nil {
		return pkgerrors.NewFileOperationError("close", targetPath, err)
	}

	if err := os.Chmod(targetPath, perm); err != nil {
		return pkgerrors.NewFileOperationError("chmod", targetPath, err)
	}
	if mtime := f.ModTime(); !mtime.IsZero() {
		_ = os.Chtimes(targetPath, mtime, mtime)
	}
	return nil
}

// safeJoin resolves an archive entry name below destDir.
func safeJoin(destDir, name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("%w: %s", pkgerrors.ErrPathTraversal, name)
	}
	target := filepath.Join(destDir, filepath.FromSlash(clean))
	if !within(destDir, target) {
		return "", fmt.Errorf("%w: %s", pkgerrors.ErrPathTraversal, name)
	}
	return target, nil
}

func within(root, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
