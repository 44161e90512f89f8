package registry

import (
	"context"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"

	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/platform"
)

// Resolver maps (name, version) to a release for a fixed target triple.
type Resolver struct {
	client Client
	triple string
}

// NewResolver creates a resolver. An empty triple selects the host triple.
func NewResolver(client Client, triple string) *Resolver {
	if triple == "" {
		triple = platform.HostTriple()
	}
	return &Resolver{client: client, triple: triple}
}

// Triple returns the target triple releases are resolved for.
func (r *Resolver) Triple() string {
	return r.triple
}

// ExpandVersion builds the release key for a version and triple.
func ExpandVersion(v, triple string) string {
	return v + "-" + triple
}

// FallbackKey returns the libc alternative of a release key: musl keys fall
// back to gnu and gnu keys to musl. Every occurrence is replaced.
func FallbackKey(key string) (string, bool) {
	switch {
	case strings.Contains(key, "musl"):
		return strings.ReplaceAll(key, "musl", "gnu"), true
	case strings.Contains(key, "gnu"):
		return strings.ReplaceAll(key, "gnu", "musl"), true
	default:
		return "", false
	}
}

// Resolve fetches the tool and picks the release for the requested version
// on the resolver's triple, trying the musl/gnu alternative when the exact
// key is missing.
func (r *Resolver) Resolve(ctx context.Context, name, v string) (*ResolvedDependency, error) {
	tool, err := r.client.FetchTool(ctx, name)
	if err != nil {
		return nil, err
	}

	key := ExpandVersion(v, r.triple)
	tried := []string{key}
	rel, ok := tool.Releases[key]
	if !ok {
		if alt, hasAlt := FallbackKey(key); hasAlt {
			tried = append(tried, alt)
			if rel, ok = tool.Releases[alt]; ok {
				key = alt
			}
		}
	}
	if !ok {
		return nil, pkgerrors.ErrVersionNotFoundWithKey(name, tried...)
	}

	return &ResolvedDependency{
		Name:    name,
		Version: v,
		Key:     key,
		URL:     rel.URL,
		Hash:    rel.Hash,
	}, nil
}

// Versions lists every release of a tool, ordered by semantic version of the
// key prefix before the first '-'. Keys whose prefix does not parse sort last.
func (r *Resolver) Versions(ctx context.Context, name string) ([]Release, error) {
	tool, err := r.client.FetchTool(ctx, name)
	if err != nil {
		return nil, err
	}

	releases := make([]Release, 0, len(tool.Releases))
	for key, info := range tool.Releases {
		bare, _, _ := strings.Cut(key, "-")
		releases = append(releases, Release{Key: key, Version: bare, URL: info.URL, Hash: info.Hash})
	}
	SortReleases(releases)
	return releases, nil
}

// SortReleases orders releases ascending by version, then by key.
func SortReleases(releases []Release) {
	parsed := make(map[string]*version.Version, len(releases))
	for _, rel := range releases {
		if v, err := version.NewVersion(rel.Version); err == nil {
			parsed[rel.Version] = v
		}
	}
	sort.SliceStable(releases, func(i, j int) bool {
		vi, iok := parsed[releases[i].Version]
		vj, jok := parsed[releases[j].Version]
		switch {
		case iok && jok && !vi.Equal(vj):
			return vi.LessThan(vj)
		case iok != jok:
			return iok
		default:
			return releases[i].Key < releases[j].Key
		}
	})
}

// ForTriple reports whether a release key targets triple.
func (rel Release) ForTriple(triple string) bool {
	return strings.HasSuffix(rel.Key, "-"+triple)
}
