package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/frate/internal/logger"
	"github.com/glorpus-work/frate/pkg/lock"
)

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the tools pinned in frate.lock",
		Long: `Download, verify and extract every tool in frate.lock and create its shim
in .frate/shims. Archives are served from the cache when present.
Use --name to install a single locked tool.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			project, m, err := loadProject()
			if err != nil {
				return err
			}
			lf, err := lock.Load(project.LockPath())
			if err != nil {
				return fmt.Errorf("%w (run `frate sync` first)", err)
			}

			inst, err := loadInstaller(cfg, project, m, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if name == "" {
				if err := inst.InstallAll(cmd.Context(), lf); err != nil {
					return err
				}
				logger.Success("Installed tools", logger.Fields{"count": len(lf.Packages)})
				return nil
			}

			pkg, err := lf.MustFind(name)
			if err != nil {
				return err
			}
			if err := project.Ensure(); err != nil {
				return err
			}
			return inst.Install(cmd.Context(), pkg)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Install only this tool")

	return cmd
}

// NewUninstallCmd creates the uninstall command.
func NewUninstallCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove installed tools and their shims",
		Long: `Remove installed tools from .frate/bin together with their shims.
frate.toml and frate.lock are left untouched; use 'frate remove' to drop a dependency.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			project, m, err := loadProject()
			if err != nil {
				return err
			}
			inst, err := loadInstaller(cfg, project, m, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if name == "" {
				if err := inst.UninstallAll(); err != nil {
					return err
				}
				logger.Success("Uninstalled all tools")
				return nil
			}
			return inst.Uninstall(cmd.Context(), name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Uninstall only this tool")

	return cmd
}
