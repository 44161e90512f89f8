package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/frate/internal/logger"
	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
)

// NewWhichCmd creates the which command.
func NewWhichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "which NAME",
		Short: "Show where an installed tool lives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			project, m, err := loadProject()
			if err != nil {
				return err
			}
			inst, err := loadInstaller(cfg, project, m, io.Discard)
			if err != nil {
				return err
			}

			loc, err := inst.Which(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if loc.Executable == "" && loc.Shim == "" {
				_, _ = fmt.Fprintln(out, "No installed paths found")
				return nil
			}
			if loc.Executable != "" {
				_, _ = fmt.Fprintf(out, "Found executable at: %s\n", loc.Executable)
			}
			if loc.Shim != "" {
				_, _ = fmt.Fprintf(out, "Found shim at: %s\n", loc.Shim)
			}
			if loc.ShimTarget != "" && loc.ShimTarget != loc.Shim && loc.ShimTarget != loc.Executable {
				_, _ = fmt.Fprintf(out, "Shim points to: %s (stale, run `frate install`)\n", loc.ShimTarget)
			}
			return nil
		},
	}

	return cmd
}

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run NAME [ARGS...]",
		Short: "Run an installed tool",
		Long: `Run an installed tool through its shim, passing the remaining arguments.
Flags after NAME are handed to the tool.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			project, m, err := loadProject()
			if err != nil {
				return err
			}
			inst, err := loadInstaller(cfg, project, m, io.Discard)
			if err != nil {
				return err
			}

			loc, err := inst.Which(args[0])
			if err != nil {
				return err
			}
			target := loc.Shim
			if target == "" {
				target = loc.Executable
			}
			if target == "" {
				return fmt.Errorf("%w: %s (run `frate install`)", pkgerrors.ErrNotInstalled, args[0])
			}

			logger.Debug("Running tool", logger.Fields{"tool": args[0], "path": target})
			tool := exec.CommandContext(cmd.Context(), target, args[1:]...)
			tool.Stdin = os.Stdin
			tool.Stdout = cmd.OutOrStdout()
			tool.Stderr = cmd.ErrOrStderr()
			return tool.Run()
		},
	}
	cmd.Flags().SetInterspersed(false)

	return cmd
}
