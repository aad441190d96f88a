package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/internal/metrics"
	"github.com/matzehuels/flowtower/pkg/ledger"
)

const shutdownTimeout = 10 * time.Second

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	flowFlags
	addr      string
	maxUpload int64
}

// serveCommand creates the serve command, which exposes the pipeline over
// HTTP. The optional ledger is the default dataset; uploads add more.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{flowFlags: defaultFlowFlags()}

	cmd := &cobra.Command{
		Use:   "serve [ledger.csv]",
		Short: "Serve flow graphs over HTTP",
		Long: `Serve flow graphs over HTTP.

Routes:
  GET  /healthz                            liveness
  GET  /metrics                            Prometheus metrics
  GET  /v1/graph                           graph of the default or an uploaded dataset
  POST /v1/graph                           upload a ledger (form field "file")
  GET  /v1/entities                        entity list (?search=)
  GET  /v1/entities/{id}/counterparties    counterparties of one entity

Flags set the defaults; query parameters override them per request.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, args, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().Int64Var(&opts.maxUpload, "max-upload", defaultMaxUpload, "maximum upload size in bytes")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, args []string, opts *serveOpts) error {
	ctx := cmd.Context()
	popts, err := c.options(cmd, &opts.flowFlags)
	if err != nil {
		return err
	}

	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	var records []ledger.Record
	if path := inputPath(args); path != "" {
		popts.Path = path
		if records, err = runner.Load(ctx, popts); err != nil {
			return err
		}
		popts.Path = ""
	}

	m := metrics.New()
	m.Register()

	srv := &server{
		runner:    runner,
		defaults:  popts,
		records:   records,
		logger:    c.Logger,
		metrics:   m.Handler(),
		maxUpload: opts.maxUpload,
	}
	return c.listen(ctx, opts.addr, srv)
}

// listen serves until ctx is cancelled, then shuts down gracefully.
func (c *CLI) listen(ctx context.Context, addr string, srv *server) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr, "dataset", srv.describe())
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
