package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/frate/internal/logger"
	"github.com/glorpus-work/frate/pkg/config"
	"github.com/glorpus-work/frate/pkg/fsutil"
	"github.com/glorpus-work/frate/pkg/lock"
	"github.com/glorpus-work/frate/pkg/manifest"
)

// NewSyncCmd creates the sync command.
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Regenerate frate.lock from frate.toml",
		Long: `Resolve every dependency of frate.toml against the registry for the
current platform and rewrite frate.lock. Dependencies that cannot be
resolved are reported and left out; the others are still locked.`,
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
			_, err = syncLockfile(cmd.Context(), cmd.OutOrStdout(), cfg, project, m)
			return err
		},
	}

	return cmd
}

// syncLockfile rebuilds and saves the lockfile. Resolution failures are
// printed but do not fail the command.
func syncLockfile(ctx context.Context, out io.Writer, cfg *config.Config, project fsutil.Project, m *manifest.Manifest) (*lock.Lockfile, error) {
	lf := lock.LoadOrDefault(project.LockPath())
	result := lf.Sync(ctx, m, loadResolver(cfg))
	if err := lf.Save(project.LockPath()); err != nil {
		return nil, fmt.Errorf("failed to save lockfile: %w", err)
	}

	for _, failure := range result.Failed {
		_, _ = fmt.Fprintf(out, "failed: %s@%s: %v\n", failure.Name, failure.Version, failure.Err)
	}
	_, _ = fmt.Fprintf(out, "Locked %d of %d dependencies\n", len(result.Locked), len(m.Dependencies))
	logger.Info("Lockfile written", logger.Fields{"path": project.LockPath(), "locked": len(result.Locked)})
	return lf, nil
}
