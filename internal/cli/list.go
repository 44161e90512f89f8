package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/frate/pkg/installer"
	"github.com/glorpus-work/frate/pkg/lock"
	"github.com/glorpus-work/frate/pkg/manifest"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the project's dependencies",
		Long: `List the dependencies of frate.toml with their lock and install status.
With --verbose the locked release key, hash and source are shown as well.`,
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
			inst, err := loadInstaller(cfg, project, m, io.Discard)
			if err != nil {
				return err
			}
			lf := lock.LoadOrDefault(project.LockPath())
			return runList(cmd.OutOrStdout(), m, lf, inst, Verbose != nil && *Verbose)
		},
	}

	return cmd
}

func runList(out io.Writer, m *manifest.Manifest, lf *lock.Lockfile, inst *installer.Installer, details bool) error {
	names := m.Names()
	if len(names) == 0 {
		_, _ = fmt.Fprintln(out, "No dependencies")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tVERSION\tLOCKED\tINSTALLED")
	for _, name := range names {
		locked := "no"
		pkg, ok := lf.Find(name)
		if ok {
			locked = pkg.Version
		}
		installed := "no"
		if inst.IsInstalled(name) {
			installed = "yes"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, m.Dependencies[name], locked, installed)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !details {
		return nil
	}
	for _, name := range names {
		pkg, ok := lf.Find(name)
		if !ok {
			continue
		}
		_, _ = fmt.Fprintf(out, "\n%s\n  version: %s\n  hash:    %s\n  source:  %s\n", pkg.Name, pkg.Version, pkg.Hash, pkg.Source)
	}
	return nil
}
