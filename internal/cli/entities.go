package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/identity"
	"github.com/matzehuels/flowtower/pkg/pipeline"
)

// entitiesOpts holds the command-line flags for the entities command.
type entitiesOpts struct {
	mode           string
	kinds          []string
	allKinds       bool
	search         string
	counterparties string // list the counterparties of this entity instead
	asJSON         bool
}

// entitiesCommand lists the entities in a ledger. Thresholds do not apply:
// the list is what an entity selector would offer.
func (c *CLI) entitiesCommand() *cobra.Command {
	var opts entitiesOpts

	cmd := &cobra.Command{
		Use:   "entities <ledger.csv>",
		Short: "List the accounts or entities in a ledger",
		Long: `List the accounts or entities in a ledger.

Examples:
  flowtower entities mutasi.csv --search mandiri
  flowtower entities mutasi.csv --counterparties-of "BCA|1"
  flowtower entities mutasi.csv --mode entity`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEntities(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", "", "identity mode: account (default), entity")
	cmd.Flags().StringSliceVar(&opts.kinds, "kinds", nil, "transaction kinds that become edges (comma-separated)")
	cmd.Flags().BoolVar(&opts.allKinds, "all-kinds", false, "use every row regardless of kind")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "only entities containing this text")
	cmd.Flags().StringVar(&opts.counterparties, "counterparties-of", "", "list the counterparties of this entity")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print as a JSON array")

	return cmd
}

func (c *CLI) runEntities(cmd *cobra.Command, input string, opts *entitiesOpts) error {
	ctx := cmd.Context()
	popts := pipeline.Options{
		Path:     input,
		Mode:     opts.mode,
		Kinds:    opts.kinds,
		AllKinds: opts.allKinds,
		Logger:   c.Logger,
	}
	if cfg, err := c.loadConfig(); err != nil {
		return err
	} else if cfg != nil {
		if opts.mode == "" {
			popts.Mode = cfg.Defaults.Mode
		}
		if len(opts.kinds) == 0 {
			popts.Kinds = cfg.Defaults.Kinds
		}
	}

	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	records, err := runner.Load(ctx, popts)
	if err != nil {
		return err
	}
	dir, err := pipeline.NewDirectory(records, popts)
	if err != nil {
		return err
	}

	var ids []identity.ID
	title := "Entities"
	if opts.counterparties != "" {
		ids = dir.Counterparties(opts.counterparties)
		title = "Counterparties of " + dir.Resolve(opts.counterparties).String()
	} else {
		ids = dir.Search(opts.search)
	}

	if opts.asJSON {
		if ids == nil {
			ids = []identity.ID{}
		}
		return writeJSON(cmd, ids)
	}

	if len(ids) == 0 {
		needle := opts.search
		if opts.counterparties != "" {
			needle = opts.counterparties
			printWarning("No counterparties for %s", strconv.Quote(needle))
		} else {
			printWarning("No entity matches %s", strconv.Quote(needle))
		}
		if s := dir.Suggest(needle, pipeline.DefaultSuggestions); len(s) > 0 {
			printDetail("Did you mean: %s", joinIDs(s))
		}
		return nil
	}

	printInfo("%s %s", StyleTitle.Render(title), StyleDim.Render(fmt.Sprintf("(%d)", len(ids))))
	rows := make([][]string, len(ids))
	for i, id := range ids {
		rows[i] = []string{id.String(), strconv.Itoa(len(dir.Counterparties(id.String())))}
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Entity", "Counterparties"}, rows))
	return nil
}
