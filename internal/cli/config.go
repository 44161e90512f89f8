package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/frate/internal/logger"
	"github.com/glorpus-work/frate/pkg/config"
	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/fsutil"
)

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the global configuration",
		Long: `Inspect and edit the per-user configuration file that holds the registry
URL template, cache directory, HTTP settings and log settings.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print every setting",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return showConfig(cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print one setting",
			Long:  "Print one setting. Valid keys are listed by 'frate config show'.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				value, err := cfg.GetValue(args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Change one setting and save the file",
			Args:  cobra.ExactArgs(setCommandArgs),
			RunE: func(_ *cobra.Command, args []string) error {
				return setConfigValue(args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), getConfigPath())
				return nil
			},
		},
		newConfigInitCmd(),
	)

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := getConfigPath()
			exists, err := fsutil.Exists(path)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("%s (use --force to overwrite): %w", path, pkgerrors.ErrConfigFileExists)
			}

			paths, err := fsutil.DefaultPaths()
			if err != nil {
				return fmt.Errorf("failed to determine user directories: %w", err)
			}
			if err := config.DefaultConfig(paths).SaveConfig(path); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			logger.Success("Configuration file created", logger.Fields{"path": path})
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing configuration file")

	return cmd
}

func showConfig(out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Config file: %s\n\n", getConfigPath())
	tw := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SETTING\tVALUE")
	values := cfg.ToMap()
	for _, key := range config.Keys() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", key, values[key])
	}
	return tw.Flush()
}

// setConfigValue rejects values that would leave the file invalid.
func setConfigValue(key, value string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.SetValue(key, value); err != nil {
		return err
	}

	path := getConfigPath()
	if err := cfg.SaveConfig(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	logger.Success("Configuration updated", logger.Fields{"key": key, "value": value})
	return nil
}
