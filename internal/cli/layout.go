package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/flow/layering"
	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/pipeline"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	flowFlags
	all    bool // compare every strategy side by side
	asJSON bool // print levels as JSON instead of a table
}

// layoutCommand creates the layout command, which prints the level of every
// node under one strategy or, with --all, under each strategy.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOpts{flowFlags: defaultFlowFlags()}

	cmd := &cobra.Command{
		Use:   "layout <ledger.csv>",
		Short: "Print the level assigned to each node",
		Long: `Print the level each node of the flow graph is assigned.

With --all every strategy (topdown, leftright, timeline) runs concurrently
on the same filtered edge set and the levels are printed side by side.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.all, "all", false, "compare all layout strategies")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print levels as JSON")

	return cmd
}

func (c *CLI) runLayout(cmd *cobra.Command, input string, opts *layoutOpts) error {
	ctx := cmd.Context()
	popts, err := c.options(cmd, &opts.flowFlags)
	if err != nil {
		return err
	}
	popts.Path = input

	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	records, err := runner.Load(ctx, popts)
	if err != nil {
		return err
	}

	if opts.all {
		cmp, err := runner.Compare(ctx, records, popts, nil)
		if err != nil {
			return err
		}
		if cmp.Status != pipeline.StatusOK {
			printWarning("%s", cmp.Status.Message())
			return nil
		}
		if opts.asJSON {
			return writeJSON(cmd, cmp.Levels)
		}
		fmt.Fprintln(cmd.OutOrStdout(), comparisonTable(cmp))
		return nil
	}

	result, err := c.build(ctx, runner, records, popts)
	if err != nil || result.Status != pipeline.StatusOK {
		return err
	}
	if opts.asJSON {
		return writeJSON(cmd, result.Levels())
	}
	fmt.Fprintln(cmd.OutOrStdout(), levelTable(result.Export))
	printStats(statsOf(result))
	return nil
}

// levelTable lists nodes by level, then by ID.
func levelTable(g graph.Graph) string {
	nodes := slices.Clone(g.Nodes)
	slices.SortStableFunc(nodes, func(a, b graph.Node) int {
		return levelOf(a) - levelOf(b)
	})
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		level := "-"
		if n.Level != nil {
			level = strconv.Itoa(*n.Level)
		}
		rows[i] = []string{n.ID, level, graph.FormatAmount(n.Weight)}
	}
	return renderTable([]string{"Node", "Level", "Outgoing"}, rows)
}

func levelOf(n graph.Node) int {
	if n.Level == nil {
		return -1
	}
	return *n.Level
}

// comparisonTable has one row per node and one column per strategy.
func comparisonTable(cmp *pipeline.Comparison) string {
	strategies := make([]layering.Strategy, 0, len(cmp.Levels))
	for _, s := range layering.Strategies() {
		if _, ok := cmp.Levels[s]; ok {
			strategies = append(strategies, s)
		}
	}

	headers := []string{"Node"}
	for _, s := range strategies {
		headers = append(headers, s.String())
	}
	rows := make([][]string, len(cmp.Nodes))
	for i, id := range cmp.Nodes {
		row := []string{id.String()}
		for _, s := range strategies {
			level, ok := cmp.Levels[s][id]
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, strconv.Itoa(level))
		}
		rows[i] = row
	}
	return renderTable(headers, rows)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
