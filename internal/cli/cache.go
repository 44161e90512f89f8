package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/frate/internal/logger"
)

// NewCacheCmd creates the cache command with subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the archive cache",
		Long:  "Clean, inspect and evict entries of the shared download cache",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheEvictCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
		newCacheListCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove every cached archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			archives, err := loadCacheManager(cfg)
			if err != nil {
				return err
			}
			freed, err := archives.CleanAll()
			if err != nil {
				return err
			}
			logger.Success("Cache cleaning completed", logger.Fields{"total_freed": humanize.Bytes(uint64(freed))})
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Freed %s\n", humanize.Bytes(uint64(freed)))
			return nil
		},
	}
}

func newCacheEvictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evict NAME",
		Short: "Remove cached archives whose name contains NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			archives, err := loadCacheManager(cfg)
			if err != nil {
				return err
			}
			removed, err := archives.Evict(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Evicted %d archive(s)\n", removed)
			return nil
		},
	}
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			archives, err := loadCacheManager(cfg)
			if err != nil {
				return err
			}
			info, err := archives.GetInfo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Cache Directory: %s\n", info.Directory)
			_, _ = fmt.Fprintf(out, "Total Size: %s\n", humanize.Bytes(uint64(info.TotalSize)))
			_, _ = fmt.Fprintf(out, "Archives: %d\n", info.Files)
			return nil
		},
	}
}

func newCacheDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			archives, err := loadCacheManager(cfg)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), archives.Directory())
			return nil
		},
	}
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached archives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			archives, err := loadCacheManager(cfg)
			if err != nil {
				return err
			}
			names, err := archives.List()
			if err != nil {
				return err
			}
			for _, name := range names {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
