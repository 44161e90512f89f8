package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/glorpus-work/frate/internal/logger"
	"github.com/glorpus-work/frate/pkg/cache"
	"github.com/glorpus-work/frate/pkg/config"
	"github.com/glorpus-work/frate/pkg/download"
	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/fsutil"
	"github.com/glorpus-work/frate/pkg/hooks"
	"github.com/glorpus-work/frate/pkg/installer"
	"github.com/glorpus-work/frate/pkg/manifest"
	"github.com/glorpus-work/frate/pkg/registry"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	ProjectDir *string
)

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// an empty path makes LoadConfig report ErrEmptyConfigPath
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

// loadConfig reads the global config and initializes the logger from it.
func loadConfig() (*config.Config, error) {
	paths, err := fsutil.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to determine user directories: %w", err)
	}

	cfg, err := config.LoadConfig(getConfigPath(), paths)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		level = "debug"
	}
	logger.InitLogger(level, logger.OutputFormat(cfg.Settings.LogFormat))
	return cfg, nil
}

// workingDir is where project discovery starts: --project or the current directory.
func workingDir() (string, error) {
	if ProjectDir != nil && *ProjectDir != "" {
		return *ProjectDir, nil
	}
	return os.Getwd()
}

// loadProject finds the enclosing project and parses its manifest.
func loadProject() (fsutil.Project, *manifest.Manifest, error) {
	start, err := workingDir()
	if err != nil {
		return fsutil.Project{}, nil, err
	}
	root, err := fsutil.FindProjectRoot(start)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fsutil.Project{}, nil, fmt.Errorf("%w: run `frate init` to create one", pkgerrors.ErrManifestNotFound)
		}
		return fsutil.Project{}, nil, err
	}

	project := fsutil.NewProject(root)
	m, err := manifest.Load(project.ManifestPath())
	if err != nil {
		return fsutil.Project{}, nil, err
	}
	logger.Debug("Loaded project", logger.Fields{"root": root, "dependencies": len(m.Dependencies)})
	return project, m, nil
}

func loadDownloadManager(cfg *config.Config) *download.Manager {
	return download.NewManager(cfg.Settings.HTTPTimeout, cfg.Settings.UserAgent)
}

func loadResolver(cfg *config.Config) *registry.Resolver {
	client := registry.NewHTTPClient(cfg.Registry.URL, loadDownloadManager(cfg))
	return registry.NewResolver(client, "")
}

func loadCacheManager(cfg *config.Config) (*cache.Manager, error) {
	return cache.NewDefaultManager(cfg.Paths())
}

// loadInstaller wires the installer for project, including manifest hooks.
func loadInstaller(cfg *config.Config, project fsutil.Project, m *manifest.Manifest, out io.Writer) (*installer.Installer, error) {
	runner, err := hooks.LoadFromManifest(project.Root, m.Hooks)
	if err != nil {
		return nil, err
	}
	archives, err := loadCacheManager(cfg)
	if err != nil {
		return nil, err
	}
	return installer.New(project,
		installer.WithDownloader(loadDownloadManager(cfg)),
		installer.WithCache(archives),
		installer.WithHookRunner(runner),
		installer.WithEvents(progressHooks(out)),
	), nil
}

// progressHooks prints finished tools and leaves the intermediate phases to debug logging.
func progressHooks(out io.Writer) installer.Hooks {
	return installer.Hooks{OnEvent: func(e installer.Event) {
		if e.Phase == installer.PhaseDone {
			if e.Msg != "" {
				_, _ = fmt.Fprintf(out, "%s: %s %s\n", e.Phase, e.Tool, e.Msg)
			} else {
				_, _ = fmt.Fprintf(out, "%s: %s\n", e.Phase, e.Tool)
			}
			return
		}
		logger.Debug(e.Phase, logger.Fields{"tool": e.Tool, "detail": e.Msg})
	}}
}
