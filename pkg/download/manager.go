// Package download fetches release archives over HTTP and verifies them
// against the hash pinned in the lockfile.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/glorpus-work/frate/pkg/checksum"
	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "frate/0.1.0"

// Item is one remote archive to download.
type Item struct {
	URL      string
	Checksum string // hex SHA-256, optionally prefixed with "sha256:"
}

// Manager is a plain HTTP downloader. Bodies are held in memory.
type Manager struct {
	client    *http.Client
	userAgent string
}

// NewManager creates a download manager. A zero timeout means no timeout.
func NewManager(timeout time.Duration, userAgent string) *Manager {
	return NewManagerWithClient(&http.Client{Timeout: timeout}, userAgent)
}

// NewManagerWithClient creates a download manager around an existing client.
func NewManagerWithClient(client *http.Client, userAgent string) *Manager {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Manager{client: client, userAgent: userAgent}
}

// Get downloads url and returns the body. Transport failures and non-2xx
// statuses are reported as ErrDownload.
func (m *Manager) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := m.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %v: %w", url, err, pkgerrors.ErrDownload)
	}
	return data, nil
}

// Fetch downloads the item and verifies its checksum. A mismatch returns an
// *errors.IntegrityError whose Path is the URL; nothing is written to disk.
func (m *Manager) Fetch(ctx context.Context, item Item) ([]byte, error) {
	data, err := m.Get(ctx, item.URL)
	if err != nil {
		return nil, err
	}
	if err := checksum.Verify(data, item.Checksum, item.URL); err != nil {
		return nil, err
	}
	return data, nil
}

func (m *Manager) doRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %v: %w", url, err, pkgerrors.ErrDownload)
	}
	req.Header.Set("User-Agent", m.userAgent)
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w: %w", url, pkgerrors.ErrDownload, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code %d for %s: %w", resp.StatusCode, url, pkgerrors.ErrDownload)
	}
	return resp, nil
}
