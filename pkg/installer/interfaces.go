//go:generate mockgen -destination=./mocks/installer.go -package=mocks . Downloader,ArchiveCache,Extractor

package installer

import (
	"context"

	"github.com/glorpus-work/frate/pkg/archive"
	"github.com/glorpus-work/frate/pkg/download"
)

// Downloader fetches and verifies a release archive.
type Downloader interface {
	Fetch(ctx context.Context, item download.Item) ([]byte, error)
}

// ArchiveCache is the subset of the cache manager used by the installer.
type ArchiveCache interface {
	Lookup(url string) (string, bool, error)
	Read(path string) ([]byte, error)
	Store(url string, data []byte) (string, error)
}

// Extractor unpacks archive bytes into a directory.
type Extractor interface {
	Extract(ctx context.Context, format archive.Format, data []byte, destDir string) error
}
