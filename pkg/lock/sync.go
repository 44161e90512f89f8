package lock

import (
	"context"

	"github.com/glorpus-work/frate/internal/logger"
	"github.com/glorpus-work/frate/pkg/manifest"
	"github.com/glorpus-work/frate/pkg/registry"
)

//go:generate mockgen -destination=./mocks/resolver.go -package=mocks . Resolver

// Resolver turns a manifest entry into a concrete release.
type Resolver interface {
	Resolve(ctx context.Context, name, version string) (*registry.ResolvedDependency, error)
}

// SyncFailure records a dependency that could not be resolved.
type SyncFailure struct {
	Name    string
	Version string
	Err     error
}

// SyncResult summarizes a Sync run.
type SyncResult struct {
	Locked []string
	Failed []SyncFailure
}

// OK reports whether every dependency was locked.
func (r SyncResult) OK() bool {
	return len(r.Failed) == 0
}

// Sync rebuilds the lockfile from the manifest. Entries are replaced
// wholesale, so removed dependencies and stale pins disappear. A dependency
// that fails to resolve is logged, reported in the result and skipped; the
// rest are still locked. Saving is left to the caller.
func (lf *Lockfile) Sync(ctx context.Context, m *manifest.Manifest, r Resolver) SyncResult {
	var result SyncResult
	lf.Packages = nil

	for _, name := range m.Names() {
		version := m.Dependencies[name]

		if err := ctx.Err(); err != nil {
			logger.Warn("Failed to resolve dependency", logger.Fields{
				"tool":    name,
				"version": version,
				"error":   err,
			})
			result.Failed = append(result.Failed, SyncFailure{Name: name, Version: version, Err: err})
			continue
		}

		resolved, err := r.Resolve(ctx, name, version)
		if err != nil {
			logger.Warn("Failed to resolve dependency", logger.Fields{
				"tool":    name,
				"version": version,
				"error":   err,
			})
			result.Failed = append(result.Failed, SyncFailure{Name: name, Version: version, Err: err})
			continue
		}

		if _, exists := lf.Find(resolved.Name); exists {
			continue
		}
		lf.Packages = append(lf.Packages, Package{
			Name:    resolved.Name,
			Version: resolved.Version,
			Source:  resolved.URL,
			Hash:    resolved.Hash,
		})
		result.Locked = append(result.Locked, resolved.Name)
	}

	return result
}
