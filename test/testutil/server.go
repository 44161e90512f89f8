package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/glorpus-work/frate/pkg/checksum"
)

// Release is one downloadable archive served by a RegistryServer.
type Release struct {
	Key      string // release key, e.g. "1.0.0-x86_64-unknown-linux-gnu"
	FileName string // archive name in the download URL
	Data     []byte
	// Hash overrides the advertised hash; defaults to the SHA-256 of Data.
	Hash string
}

// RegistryServer serves per-tool JSON documents under /tools/{name}.json and
// release archives under /dl/{name}/{file}. It counts downloads per file.
type RegistryServer struct {
	*httptest.Server

	mu        sync.Mutex
	tools     map[string][]Release
	downloads map[string]int
}

// NewRegistryServer starts a server and registers its shutdown with t.
func NewRegistryServer(t *testing.T) *RegistryServer {
	t.Helper()
	rs := &RegistryServer{
		tools:     make(map[string][]Release),
		downloads: make(map[string]int),
	}
	rs.Server = httptest.NewServer(http.HandlerFunc(rs.serve))
	t.Cleanup(rs.Close)
	return rs
}

// AddTool registers releases for a tool.
func (rs *RegistryServer) AddTool(name string, releases ...Release) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.tools[name] = append(rs.tools[name], releases...)
}

// URLTemplate is the registry URL with a "{name}" placeholder.
func (rs *RegistryServer) URLTemplate() string {
	return rs.URL + "/tools/{name}.json"
}

// DownloadURL is where a release archive is served.
func (rs *RegistryServer) DownloadURL(tool, file string) string {
	return rs.URL + "/dl/" + tool + "/" + file
}

// Downloads returns how often a release archive was fetched.
func (rs *RegistryServer) Downloads(tool, file string) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.downloads[tool+"/"+file]
}

type releaseDoc struct {
	URL  string `json:"url"`
	Hash string `json:"hash"`
}

type toolDoc struct {
	Name     string                `json:"name"`
	Repo     string                `json:"repo"`
	Releases map[string]releaseDoc `json:"releases"`
}

func (rs *RegistryServer) serve(w http.ResponseWriter, r *http.Request) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	switch {
	case strings.HasPrefix(r.URL.Path, "/tools/"):
		name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/tools/"), ".json")
		releases, ok := rs.tools[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		doc := toolDoc{Name: name, Repo: "https://github.com/example/" + name, Releases: map[string]releaseDoc{}}
		for _, rel := range releases {
			hash := rel.Hash
			if hash == "" {
				hash = "sha256:" + checksum.Sum(rel.Data)
			}
			doc.Releases[rel.Key] = releaseDoc{URL: rs.DownloadURL(name, rel.FileName), Hash: hash}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)

	case strings.HasPrefix(r.URL.Path, "/dl/"):
		rest := strings.TrimPrefix(r.URL.Path, "/dl/")
		tool, file, _ := strings.Cut(rest, "/")
		for _, rel := range rs.tools[tool] {
			if rel.FileName == file {
				rs.downloads[rest]++
				_, _ = w.Write(rel.Data)
				return
			}
		}
		http.NotFound(w, r)

	default:
		http.NotFound(w, r)
	}
}
