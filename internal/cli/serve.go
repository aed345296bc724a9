package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/parsimony/internal/server"
	"github.com/matzehuels/parsimony/pkg/observability"
	"github.com/matzehuels/parsimony/pkg/store"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve accepts input trees over HTTP, searches them and keeps a record of
every run. Results are cached like the search command's, runs are kept in
the configured store and Prometheus metrics are exposed on /metrics.`,
		Example: `  parsimony serve --addr :8080
  curl --data-binary @tree.txt 'localhost:8080/v1/runs?workers=4'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetSearchHooks(hooks)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetServerHooks(hooks)

	srv := server.New(server.Config{
		Runner:        runner,
		Store:         st,
		Gatherer:      reg,
		Logger:        c.Logger,
		MaxBody:       c.Config.Server.MaxBody,
		RunTimeout:    c.Config.Server.RunTimeout.Duration,
		Workers:       c.Config.Workers,
		MaxFrontier:   c.Config.MaxFrontier,
		MaxIterations: c.Config.MaxIterations,
	})

	printInfo("Listening on %s", StyleValue.Render(addr))
	printDetail("cache: %s · store: %s", c.Config.Cache.Backend, c.Config.Store.Backend)
	return srv.ListenAndServe(ctx, addr)
}

// newStore opens the configured run store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Store
	switch cfg.Backend {
	case backendMongo:
		return store.NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
	case backendFile:
		dir := cfg.Dir
		if dir == "" {
			data, err := dataDir()
			if err != nil {
				return nil, fmt.Errorf("get data dir: %w", err)
			}
			dir = filepath.Join(data, "runs")
		}
		return store.NewFileStore(dir)
	default:
		return store.NewMemoryStore(), nil
	}
}
