package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/frate/internal/cli"
)

var (
	configPath string
	verbose    bool
	projectDir string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frate",
		Short: "A per-project tool manager",
		Long: `frate pins the command-line tools a project needs and installs them
into the project:
- frate.toml lists the tools and exact versions
- frate.lock pins the resolved download URL and SHA-256 per tool
- .frate/shims holds one launcher per installed tool`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&projectDir, "project", "C", "", "project directory (default: current directory)")

	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.ProjectDir = &projectDir

	cmd.AddCommand(
		cli.NewInitCmd(),
		cli.NewAddCmd(),
		cli.NewRemoveCmd(),
		cli.NewSyncCmd(),
		cli.NewInstallCmd(),
		cli.NewUninstallCmd(),
		cli.NewListCmd(),
		cli.NewWhichCmd(),
		cli.NewRunCmd(),
		cli.NewSearchCmd(),
		cli.NewConfigCmd(),
		cli.NewCacheCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
