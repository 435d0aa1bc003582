package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cyclesearch/pkg/cache"
	"github.com/matzehuels/cyclesearch/pkg/observability"
	"github.com/matzehuels/cyclesearch/pkg/server"
)

const (
	defaultAddr = ":8080"

	// serverKeyPrefix keeps server entries apart from CLI entries when
	// both share one Redis.
	serverKeyPrefix = "cyclesearch:server:"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	backendOpts
	addr          string
	maxScansLimit int
	searchTimeout time.Duration
	maxBufferMB   int
	noMetrics     bool
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API over HTTP",
		Long: `Serve the search API over HTTP.

Routes:
  POST /v1/search/{family}   run a search
  GET  /v1/count/{family}    count a search space
  GET  /v1/predict           predict a minimal cogwheel cycle
  GET  /v1/runs              list archived runs
  GET  /v1/runs/{id}         show one archived run
  GET  /healthz              liveness
  GET  /metrics              Prometheus metrics

Results are cached in Redis when --redis or the config file names one,
and in the local file cache otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadUserConfig()
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", fmt.Sprintf("listen address (default %q)", defaultAddr))
	cmd.Flags().IntVar(&opts.maxScansLimit, "max-scans-limit", 0, fmt.Sprintf("largest n_scans_max a request may ask for (default %d)", server.DefaultMaxScansLimit))
	cmd.Flags().DurationVar(&opts.searchTimeout, "search-timeout", 0, fmt.Sprintf("time limit per search (default %s)", server.DefaultSearchTimeout))
	cmd.Flags().IntVar(&opts.maxBufferMB, "max-buffer-mb", 0, fmt.Sprintf("largest candidate buffer per search in MiB (default %d)", server.DefaultMaxBufferBytes>>20))
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not serve /metrics")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable result caching")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "cache results in Redis at this address")
	cmd.Flags().StringVar(&opts.archive, "archive", "", "archive URI: a JSONL file path or mongodb:// URI")
	cmd.Flags().BoolVar(&opts.noArchive, "no-archive", false, "do not archive runs or serve /v1/runs")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg Config, opts serveOpts) error {
	scfg := server.Config{
		Logger:        c.Logger,
		MaxScansLimit: firstNonZero(opts.maxScansLimit, cfg.Server.MaxScansLimit),
		SearchTimeout: firstNonZero(opts.searchTimeout, cfg.Server.SearchTimeout.Duration),
	}
	scfg.MaxBufferBytes = firstNonZero(opts.maxBufferMB, cfg.Server.MaxBufferMB) << 20
	addr := opts.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if addr == "" {
		addr = defaultAddr
	}

	if !opts.noMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		prom := observability.NewPrometheus(reg)
		observability.SetSearchHooks(prom)
		observability.SetCacheHooks(prom)
		observability.SetServerHooks(prom)
		defer observability.Reset()
		scfg.Metrics = prom.Handler()
	}

	runner, err := c.newRunner(ctx, cfg, opts.backendOpts)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	runner.Keyer = cache.NewScopedKeyer(runner.Keyer, serverKeyPrefix)

	scfg.Runner = runner
	scfg.Archive = runner.Archive

	printInfo("Serving on %s", StyleHighlight.Render(addr))
	if err := server.New(scfg).ListenAndServe(ctx, addr); err != nil {
		return err
	}
	printSuccess("Server stopped")
	return nil
}

func firstNonZero[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
