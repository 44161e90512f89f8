package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/frate/internal/logger"
	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/fsutil"
	"github.com/glorpus-work/frate/pkg/hooks"
	"github.com/glorpus-work/frate/pkg/manifest"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	var (
		name      string
		withHooks bool
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create frate.toml in the current directory",
		Long: `Create a default frate.toml and the .frate/bin and .frate/shims directories.
The project name defaults to the directory name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), name, withHooks, force)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name (defaults to the directory name)")
	cmd.Flags().BoolVar(&withHooks, "with-hooks", false, "Create post-install and post-uninstall hook templates")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing frate.toml")

	return cmd
}

func runInit(out io.Writer, name string, withHooks, force bool) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	dir, err := workingDir()
	if err != nil {
		return err
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return err
	}
	project := fsutil.NewProject(dir)

	exists, err := fsutil.Exists(project.ManifestPath())
	if err != nil {
		return err
	}
	if exists && !force {
		return fmt.Errorf("%s (use --force to overwrite): %w", project.ManifestPath(), pkgerrors.ErrManifestExists)
	}

	if name == "" {
		name = filepath.Base(dir)
	}
	m := manifest.Default(name)

	if withHooks {
		m.Hooks = &manifest.Hooks{}
		for _, hookType := range []hooks.HookType{hooks.PostInstall, hooks.PostUninstall} {
			rel := hooks.DefaultScriptPath(hookType)
			if err := writeHookTemplate(filepath.Join(dir, rel), hookType); err != nil {
				return err
			}
			switch hookType {
			case hooks.PostInstall:
				m.Hooks.PostInstall = filepath.ToSlash(rel)
			case hooks.PostUninstall:
				m.Hooks.PostUninstall = filepath.ToSlash(rel)
			}
		}
	}

	if err := project.Ensure(); err != nil {
		return err
	}
	if err := m.Save(project.ManifestPath()); err != nil {
		return err
	}

	logger.Success("Project initialized", logger.Fields{"name": name, "manifest": project.ManifestPath()})
	_, _ = fmt.Fprintf(out, "Created %s\n", project.ManifestPath())
	return nil
}

// writeHookTemplate leaves existing scripts untouched.
func writeHookTemplate(path string, hookType hooks.HookType) error {
	if exists, err := fsutil.Exists(path); err != nil || exists {
		return err
	}
	if err := fsutil.EnsureFileDir(path); err != nil {
		return pkgerrors.NewFileOperationError("create parent directory for", path, err)
	}
	if err := os.WriteFile(path, []byte(hooks.HookTemplate(hookType)), fsutil.FileModeDefault); err != nil {
		return pkgerrors.NewFileOperationError("write", path, err)
	}
	return nil
}
