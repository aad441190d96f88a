package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	flowFlags
	output   string   // output file (single format) or base path
	formats  []string // output formats: "svg", "png", "dot", "json"
	detailed bool     // add weight and level lines to node labels
}

// renderCommand creates the render command for drawing a flow graph.
//
// Default settings:
//   - format: svg
//   - output: the input path with the format's extension
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{flowFlags: defaultFlowFlags()}

	cmd := &cobra.Command{
		Use:   "render <ledger.csv>",
		Short: "Render a flow graph to SVG, PNG or DOT",
		Long: `Render a flow graph with Graphviz. Nodes on the same level share a rank.

Examples:
  flowtower render mutasi.csv
  flowtower render mutasi.csv -f svg,dot -o out/flows
  flowtower render mutasi.csv --focus "BCA|1" --direction LR --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node weight and level in labels")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	popts, err := c.options(cmd, &opts.flowFlags)
	if err != nil {
		return err
	}
	popts.Path = input
	popts.Formats = opts.formats
	popts.Detailed = opts.detailed

	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	records, err := runner.Load(ctx, popts)
	if err != nil {
		return err
	}
	result, err := c.build(ctx, runner, records, popts)
	if err != nil || result.Status != pipeline.StatusOK {
		return err
	}

	spinner := newSpinner(ctx, "Rendering "+strings.Join(opts.formats, ", "))
	spinner.Start()
	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, result, popts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Rendered %d file(s)", len(artifacts)))

	base := basePath(opts.output, input)
	single := len(opts.formats) == 1 && opts.output != "" && filepath.Ext(opts.output) != ""

	stats := statsOf(result)
	stats.cached = stats.cached && renderHit
	printStats(stats)

	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	for _, format := range formats {
		path := base + "." + format
		if single {
			path = opts.output
		}
		if err := writeArtifact(path, artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// basePath derives the output path without extension. An empty output
// uses the input path; a known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
