package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/ledger"
	"github.com/matzehuels/flowtower/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	flowFlags
	output string // output file path (stdout if empty)
	pick   bool   // choose the focus entity interactively
}

// buildCommand creates the build command, which writes the exported graph
// as JSON.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOpts{flowFlags: defaultFlowFlags()}

	cmd := &cobra.Command{
		Use:   "build <ledger.csv>",
		Short: "Build a flow graph from a ledger and write it as JSON",
		Long: `Build a flow graph from a semicolon-separated ledger export.

Rows whose transaction kind is an outgoing transfer become edges. Edges
below --min-value are dropped, the rest are aggregated per account pair and
every node is assigned a level by the --layout strategy.

Examples:
  flowtower build mutasi.csv -o graph.json
  flowtower build mutasi.csv --search mandiri --min-value 0
  flowtower build mutasi.csv --pick --itemized --counterparty "BNI|3"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd, args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose the focus entity interactively")

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, input string, opts *buildOpts) error {
	ctx := cmd.Context()
	popts, err := c.options(cmd, &opts.flowFlags)
	if err != nil {
		return err
	}
	popts.Path = input
	popts.Formats = []string{pipeline.FormatJSON}

	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	records, err := runner.Load(ctx, popts)
	if err != nil {
		return err
	}

	if opts.pick {
		dir, err := pipeline.NewDirectory(records, popts)
		if err != nil {
			return err
		}
		id, ok, err := pickEntity(ctx, dir)
		if err != nil {
			return err
		}
		if !ok {
			printInfo("No entity selected")
			return nil
		}
		popts.Focus = id.String()
		c.Logger.Info("focus selected", "entity", popts.Focus)
	}

	result, err := c.build(ctx, runner, records, popts)
	if err != nil || result.Status != pipeline.StatusOK {
		return err
	}

	artifacts, _, err := runner.RenderWithCacheInfo(ctx, result, popts)
	if err != nil {
		return err
	}
	data := artifacts[pipeline.FormatJSON]

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Graph built")
	printStats(statsOf(result))
	printFile(opts.output)
	printNextStep("Draw it", fmt.Sprintf("%s render %s -f svg", appName, input))
	return nil
}

// build runs the pipeline on records and logs why an empty graph is empty.
// The Result is returned in every case; callers check its Status.
func (c *CLI) build(ctx context.Context, runner *pipeline.Runner, records []ledger.Record, opts pipeline.Options) (*pipeline.Result, error) {
	prog := newProgress(c.Logger)
	result, err := runner.Run(ctx, records, opts)
	if err != nil {
		return nil, err
	}
	if result.Status != pipeline.StatusOK {
		reportEmpty(result)
		return result, nil
	}
	prog.done("Graph ready", "nodes", len(result.Export.Nodes), "edges", len(result.Export.Edges), "cached", result.CacheInfo.GraphHit)
	return result, nil
}

// reportEmpty explains a result without edges.
func reportEmpty(result *pipeline.Result) {
	printWarning("%s", result.Status.Message())
	printDetail("%d rows read, %d excluded by kind", result.Report.Rows, result.Report.Excluded)
	if len(result.Suggestions) > 0 {
		printDetail("Did you mean: %s", joinIDs(result.Suggestions))
	}
}

func statsOf(result *pipeline.Result) graphStats {
	return graphStats{
		nodes:   len(result.Export.Nodes),
		edges:   len(result.Export.Edges),
		skipped: result.Stats.Skipped,
		cached:  result.CacheInfo.GraphHit,
	}
}
