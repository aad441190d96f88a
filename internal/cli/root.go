package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Persistent flags:
//   - --config: TOML file with styles and parameter defaults
//   - --no-cache: disable result caching
//   - --redis: cache in Redis instead of files (also FLOWTOWER_REDIS_URL)
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Flowtower turns bank ledgers into layered flow graphs",
		Long: `Flowtower reads bank-transaction ledgers and builds a weighted directed graph
of the money flowing between accounts or entities, with each node assigned a
level so the graph can be drawn in tiers.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/flowtower/flowtower.toml)")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable caching")
	pf.StringVar(&c.redisURL, "redis", "", "redis URL for a shared cache, e.g. redis://localhost:6379/0")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.entitiesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	values := flowFlagValues()
	for _, sub := range root.Commands() {
		completeValues(sub, values)
	}
	return root
}
