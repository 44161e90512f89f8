package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "search NAME",
		Short: "List the registry releases of a tool",
		Long: `List the releases a tool publishes in the registry, oldest first.
Only releases for the current platform are shown unless --all is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			resolver := loadResolver(cfg)
			releases, err := resolver.Versions(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			triple := resolver.Triple()
			tw := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
			_, _ = fmt.Fprintln(tw, "VERSION\tKEY\tURL")
			shown := 0
			for _, rel := range releases {
				host := rel.ForTriple(triple)
				if !all && !host {
					continue
				}
				marker := ""
				if all && host {
					marker = " *"
				}
				_, _ = fmt.Fprintf(tw, "%s%s\t%s\t%s\n", rel.Version, marker, rel.Key, rel.URL)
				shown++
			}
			if shown == 0 {
				_, _ = fmt.Fprintf(out, "No releases of %s for %s\n", args[0], triple)
				return nil
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Show releases for every platform (* marks this one)")

	return cmd
}
