package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the graph and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand. It clears the
// Redis prefix when --redis is set, otherwise the cache directory.
// With --expired only stale file entries are removed.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var expired bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached graphs and renders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.redisAddr() == "" {
				dir, err := cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					printInfo("Cache is empty")
					return nil
				}
			}

			store, err := c.newCache()
			if err != nil {
				return err
			}
			defer store.Close()

			if expired {
				fc, ok := store.(*cache.FileCache)
				if !ok {
					return fmt.Errorf("--expired needs the file cache, got %T", store)
				}
				n, err := fc.Prune(cmd.Context())
				if err != nil {
					return fmt.Errorf("prune cache: %w", err)
				}
				printSuccess("Removed %d expired entries", n)
				return nil
			}

			clearer, ok := store.(cache.Clearer)
			if !ok {
				return fmt.Errorf("cache backend %T cannot be cleared", store)
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cache cleared")
			switch s := store.(type) {
			case *cache.FileCache:
				printKeyValue("Directory", s.Dir())
			case *cache.RedisCache:
				printKeyValue("Redis prefix", s.Prefix())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&expired, "expired", false, "only remove expired entries")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
