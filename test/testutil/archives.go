// Package testutil builds release archives and fake registries for tests.
package testutil

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"sort"
	"testing"
	"time"
)

// Entry is one file inside a test archive.
type Entry struct {
	Body string
	Mode os.FileMode
	// Link makes the entry a symlink to the given target.
	Link string
}

// Exec is a shorthand for an executable entry.
func Exec(body string) Entry { return Entry{Body: body, Mode: 0o755} }

// File is a shorthand for a plain entry.
func File(body string) Entry { return Entry{Body: body, Mode: 0o644} }

func sortedNames(entries map[string]Entry) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TarGz returns a gzip-compressed tarball containing entries.
func TarGz(t *testing.T, entries map[string]Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, name := range sortedNames(entries) {
		e := entries[name]
		hdr := &tar.Header{
			Name:    name,
			Mode:    int64(e.Mode),
			Size:    int64(len(e.Body)),
			ModTime: time.Unix(1700000000, 0),
		}
		if e.Link != "" {
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Link
			hdr.Size = 0
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing tar header %s: %v", name, err)
		}
		if e.Link == "" {
			if _, err := tw.Write([]byte(e.Body)); err != nil {
				t.Fatalf("writing tar entry %s: %v", name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
	return buf.Bytes()
}

// Zip returns a zip archive containing entries.
func Zip(t *testing.T, entries map[string]Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range sortedNames(entries) {
		e := entries[name]
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
		hdr.SetMode(e.Mode)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(e.Body)); err != nil {
			t.Fatalf("writing zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}
	return buf.Bytes()
}
