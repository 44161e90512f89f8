package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/frate/internal/logger"
	"github.com/glorpus-work/frate/pkg/manifest"
)

// NewAddCmd creates the add command.
func NewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add NAME@VERSION",
		Short: "Add a tool to frate.toml and sync frate.lock",
		Long: `Add or update a dependency in frate.toml and regenerate frate.lock.
The version must be exact (e.g. 1.2.3, no leading v, no ranges).
The tool is not installed; run 'frate install' afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, version, err := manifest.ParseNameAtVersion(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			project, m, err := loadProject()
			if err != nil {
				return err
			}

			if err := m.Add(name, version); err != nil {
				return err
			}
			if err := m.Save(project.ManifestPath()); err != nil {
				return err
			}
			logger.Success("Dependency added", logger.Fields{"tool": name, "version": version})

			_, err = syncLockfile(cmd.Context(), cmd.OutOrStdout(), cfg, project, m)
			return err
		},
	}

	return cmd
}

// NewRemoveCmd creates the remove command.
func NewRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a tool from frate.toml, uninstall it and sync frate.lock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			project, m, err := loadProject()
			if err != nil {
				return err
			}

			if !m.Remove(name) {
				return fmt.Errorf("%s is not a dependency of %s", name, project.ManifestPath())
			}
			if err := m.Save(project.ManifestPath()); err != nil {
				return err
			}

			inst, err := loadInstaller(cfg, project, m, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := inst.Uninstall(cmd.Context(), name); err != nil {
				return err
			}
			logger.Success("Dependency removed", logger.Fields{"tool": name})

			_, err = syncLockfile(cmd.Context(), cmd.OutOrStdout(), cfg, project, m)
			return err
		},
	}

	return cmd
}
