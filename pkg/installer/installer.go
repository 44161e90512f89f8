// Package installer materializes locked tools into a project: it fetches and
// verifies release archives, unpacks them under .frate/bin and links the main
// executable into .frate/shims.
package installer

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/glorpus-work/frate/internal/logger"
	"github.com/glorpus-work/frate/pkg/archive"
	"github.com/glorpus-work/frate/pkg/cache"
	"github.com/glorpus-work/frate/pkg/checksum"
	"github.com/glorpus-work/frate/pkg/download"
	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/fsutil"
	"github.com/glorpus-work/frate/pkg/hooks"
	"github.com/glorpus-work/frate/pkg/lock"
	"github.com/glorpus-work/frate/pkg/platform"
	"github.com/glorpus-work/frate/pkg/shim"
)

// Installer installs and removes the tools of a single project.
type Installer struct {
	project    fsutil.Project
	downloader Downloader
	cache      ArchiveCache
	extractor  Extractor
	adapter    platform.Adapter
	shims      *shim.Manager
	hookRunner hooks.Runner
	events     Hooks
}

// Option configures an Installer.
type Option func(*Installer)

// WithDownloader replaces the default HTTP downloader.
func WithDownloader(d Downloader) Option {
	return func(i *Installer) { i.downloader = d }
}

// WithCache sets the archive cache.
func WithCache(c ArchiveCache) Option {
	return func(i *Installer) { i.cache = c }
}

// WithExtractor replaces the default archive extractor.
func WithExtractor(e Extractor) Option {
	return func(i *Installer) { i.extractor = e }
}

// WithAdapter selects the platform adapter used for executable detection and shims.
func WithAdapter(a platform.Adapter) Option {
	return func(i *Installer) { i.adapter = a }
}

// WithHookRunner enables post-install and post-uninstall hooks.
func WithHookRunner(r hooks.Runner) Option {
	return func(i *Installer) { i.hookRunner = r }
}

// WithEvents registers progress callbacks.
func WithEvents(h Hooks) Option {
	return func(i *Installer) { i.events = h }
}

// New creates an installer for project. Without WithCache the global archive
// cache is used, falling back to .frate/cache when the user cache directory
// cannot be determined.
func New(project fsutil.Project, opts ...Option) *Installer {
	i := &Installer{project: project}
	for _, opt := range opts {
		opt(i)
	}

	if i.downloader == nil {
		i.downloader = download.NewManager(0, download.DefaultUserAgent)
	}
	if i.extractor == nil {
		i.extractor = archive.NewManager()
	}
	if i.adapter == nil {
		i.adapter = platform.Current()
	}
	if i.cache == nil {
		i.cache = defaultCache(project)
	}
	i.shims = shim.NewManager(project.ShimsDir(), i.adapter)
	return i
}

func defaultCache(project fsutil.Project) ArchiveCache {
	if paths, err := fsutil.DefaultPaths(); err == nil {
		if mgr, err := cache.NewDefaultManager(paths); err == nil {
			return mgr
		}
	}
	return cache.NewManager(filepath.Join(project.StateDir(), "cache"))
}

// Project returns the project the installer works on.
func (i *Installer) Project() fsutil.Project {
	return i.project
}

// Install fetches, verifies and unpacks pkg, then creates its shim. An
// existing installation of the same tool is replaced.
func (i *Installer) Install(ctx context.Context, pkg lock.Package) error {
	toolDir, err := i.project.SafeToolDir(pkg.Name)
	if err != nil {
		return err
	}

	format, err := archive.FormatFor(pkg.Source)
	if err != nil {
		return pkgerrors.Wrapf(err, "installing %s", pkg.Name)
	}

	data, err := i.obtain(ctx, pkg)
	if err != nil {
		return pkgerrors.Wrapf(err, "installing %s", pkg.Name)
	}

	if err := fsutil.ResetDir(toolDir); err != nil {
		return pkgerrors.Wrapf(pkgerrors.NewFileOperationError("reset", toolDir, err), "installing %s", pkg.Name)
	}

	i.events.emit(Event{Phase: PhaseExtracting, Tool: pkg.Name, Msg: toolDir})
	if err := i.extractor.Extract(ctx, format, data, toolDir); err != nil {
		return pkgerrors.Wrapf(err, "installing %s", pkg.Name)
	}

	exe, err := LocateExecutable(toolDir, pkg.Name, i.adapter)
	if err != nil {
		return pkgerrors.Wrapf(err, "installing %s", pkg.Name)
	}

	i.events.emit(Event{Phase: PhaseLinking, Tool: pkg.Name, Msg: exe})
	shimPath, err := i.shims.Create(exe, ShimStem(exe))
	if err != nil {
		return pkgerrors.Wrapf(err, "installing %s", pkg.Name)
	}

	i.runHook(ctx, hooks.PostInstall, hooks.HookContext{
		ToolName:    pkg.Name,
		Version:     pkg.Version,
		ToolDir:     toolDir,
		Executable:  exe,
		ShimPath:    shimPath,
		ProjectRoot: i.project.Root,
	})

	i.events.emit(Event{Phase: PhaseDone, Tool: pkg.Name, Msg: pkg.Version})
	logger.Debug("Installed tool", logger.Fields{"tool": pkg.Name, "version": pkg.Version, "executable": exe, "shim": shimPath})
	return nil
}

// obtain returns the verified archive bytes for pkg, from the cache when
// possible. Freshly downloaded archives are stored in the cache; a failing
// cache write only logs a warning.
func (i *Installer) obtain(ctx context.Context, pkg lock.Package) ([]byte, error) {
	cachedPath, ok, err := i.cache.Lookup(pkg.Source)
	if err != nil {
		return nil, err
	}

	if ok {
		i.events.emit(Event{Phase: PhaseCached, Tool: pkg.Name, Msg: cachedPath})
		data, err := i.cache.Read(cachedPath)
		if err != nil {
			return nil, err
		}
		i.events.emit(Event{Phase: PhaseVerifying, Tool: pkg.Name, Msg: pkg.Hash})
		if err := checksum.Verify(data, pkg.Hash, cachedPath); err != nil {
			return nil, err
		}
		return data, nil
	}

	i.events.emit(Event{Phase: PhaseDownloading, Tool: pkg.Name, Msg: pkg.Source})
	data, err := i.downloader.Fetch(ctx, download.Item{URL: pkg.Source, Checksum: pkg.Hash})
	if err != nil {
		return nil, err
	}
	if _, err := i.cache.Store(pkg.Source, data); err != nil {
		logger.Warn("Failed to cache archive", logger.Fields{"tool": pkg.Name, "url": pkg.Source, "error": err.Error()})
	}
	return data, nil
}

// InstallAll installs every locked package in lockfile order. The first
// failure aborts the batch; tools installed before it stay installed.
func (i *Installer) InstallAll(ctx context.Context, lf *lock.Lockfile) error {
	if err := i.project.Ensure(); err != nil {
		return pkgerrors.NewFileOperationError("prepare", i.project.StateDir(), err)
	}
	for idx, pkg := range lf.Packages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := i.Install(ctx, pkg); err != nil {
			logger.Error("Install aborted", logger.Fields{
				"tool":      pkg.Name,
				"installed": idx,
				"skipped":   len(lf.Packages) - idx - 1,
			})
			return err
		}
	}
	return nil
}

// Uninstall removes a tool directory and its shims. Uninstalling a tool that
// is not installed is a no-op.
func (i *Installer) Uninstall(ctx context.Context, name string) error {
	toolDir, err := i.project.SafeToolDir(name)
	if err != nil {
		return err
	}
	installed, err := fsutil.Exists(toolDir)
	if err != nil {
		return pkgerrors.NewFileOperationError("stat", toolDir, err)
	}

	stem := name
	exe, err := LocateExecutable(toolDir, name, i.adapter)
	if err == nil {
		stem = ShimStem(exe)
	}

	i.events.emit(Event{Phase: PhaseUninstalling, Tool: name, Msg: toolDir})
	if err := os.RemoveAll(toolDir); err != nil {
		return pkgerrors.NewFileOperationError("remove", toolDir, err)
	}
	for _, s := range []string{name, stem} {
		if err := i.shims.Remove(s); err != nil {
			return err
		}
	}

	if installed {
		i.runHook(ctx, hooks.PostUninstall, hooks.HookContext{
			ToolName:    name,
			ToolDir:     toolDir,
			Executable:  exe,
			ProjectRoot: i.project.Root,
		})
	}
	i.events.emit(Event{Phase: PhaseDone, Tool: name})
	return nil
}

// UninstallAll removes every installed tool and shim of the project.
func (i *Installer) UninstallAll() error {
	binDir := i.project.BinDir()
	if err := fsutil.ResetDir(binDir); err != nil {
		return pkgerrors.NewFileOperationError("reset", binDir, err)
	}
	return i.shims.Reset()
}

// Location is where an installed tool's executable and shim live. Empty
// fields mean the file is absent.
type Location struct {
	Executable string
	Shim       string
	// ShimTarget is the file a symlink shim points to, or Shim itself for
	// launcher scripts.
	ShimTarget string
}

// Which reports the executable and shim of an installed tool.
func (i *Installer) Which(name string) (Location, error) {
	toolDir, err := i.project.SafeToolDir(name)
	if err != nil {
		return Location{}, err
	}

	var loc Location
	stem := name

	exe, err := LocateExecutable(toolDir, name, i.adapter)
	switch {
	case err == nil:
		loc.Executable = exe
		stem = ShimStem(exe)
	case errors.Is(err, pkgerrors.ErrBinaryNotFound), errors.Is(err, fs.ErrNotExist):
	default:
		return Location{}, err
	}

	for _, s := range []string{stem, name} {
		if i.shims.Exists(s) {
			loc.Shim = i.shims.Path(s)
			if target, err := i.shims.Target(s); err == nil {
				loc.ShimTarget = target
			}
			break
		}
	}
	return loc, nil
}

// IsInstalled reports whether an executable for name is present.
func (i *Installer) IsInstalled(name string) bool {
	loc, err := i.Which(name)
	return err == nil && loc.Executable != ""
}

func (i *Installer) runHook(ctx context.Context, hookType hooks.HookType, hc hooks.HookContext) {
	if i.hookRunner == nil {
		return
	}
	if err := i.hookRunner.Run(ctx, hookType, hc); err != nil {
		logger.Warn("Hook failed", logger.Fields{"hook": string(hookType), "tool": hc.ToolName, "error": err.Error()})
	}
}
