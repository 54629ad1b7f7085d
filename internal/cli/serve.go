package cli

import (
	"context"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridpath/internal/server"
	"github.com/matzehuels/gridpath/pkg/observability"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	timeout time.Duration
	noCache bool
}

// serveCommand creates the serve command, which exposes planning and
// rendering over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: "localhost:8080", timeout: server.DefaultTimeout}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve planning, rendering and metrics over HTTP",
		Long: `Serve starts an HTTP server. POST a JSON configuration to /api/v1/plan for a
trajectory or to /api/v1/render for a drawing; omitted fields keep their
defaults. Prometheus metrics are exposed on /metrics.`,
		Example: `  gridpath serve --addr :8080
  curl -d '{"grid":{"cols":30,"rows":10}}' localhost:8080/api/v1/plan`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts, func(a net.Addr) {
				printSuccess("Listening on http://%s", a)
			})
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not reuse previously rendered drawings")

	return cmd
}

// runServe serves until ctx is cancelled. Search and planner events are
// recorded to the metrics registry while serving.
func (c *CLI) runServe(ctx context.Context, opts serveOpts, ready func(net.Addr)) error {
	store, err := c.openCache(opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	defer recordMetrics(observability.NewMetrics(reg))()

	srv := server.New(server.Options{
		Logger:   c.Logger,
		Planner:  c.newPlanner(),
		Cache:    store,
		Gatherer: reg,
		Timeout:  opts.timeout,
	})
	c.Logger.Debug("starting server", "addr", opts.addr, "timeout", opts.timeout)
	return srv.ListenAndServe(ctx, opts.addr, ready)
}
