// Package registry fetches tool documents from the remote registry and
// resolves manifest entries to concrete, platform-specific releases.
package registry

// Tool is the registry document describing one tool.
type Tool struct {
	Name     string                 `json:"name"`
	Repo     string                 `json:"repo"`
	Releases map[string]ReleaseInfo `json:"releases"`
}

// ReleaseInfo is one downloadable release, keyed by "<version>-<triple>".
type ReleaseInfo struct {
	URL  string `json:"url"`
	Hash string `json:"hash"`
}

// ResolvedDependency is a manifest entry pinned to a concrete release.
type ResolvedDependency struct {
	// Name is the tool name as requested in the manifest.
	Name string
	// Version is the bare requested version, without triple.
	Version string
	// Key is the release key that matched, after any musl/gnu fallback.
	Key  string
	URL  string
	Hash string
}

// Release is a single entry of a tool's release list.
type Release struct {
	Key     string
	Version string
	URL     string
	Hash    string
}
