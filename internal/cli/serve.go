package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/census/api"
	"github.com/tsawler/census/datasets"
	"github.com/tsawler/census/metrics"
	"github.com/tsawler/census/store"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve districts and loaded tables over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.API.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: api.addr)")
	return cmd
}

// openStore opens a store over a dataset's table, creating the table so
// the endpoints serve an empty list before the first ingest.
func (a *app) openStore(ctx context.Context, name string) (store.Store, error) {
	ds, err := datasets.Get(name)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, a.cfg.Database, ds.Schema, store.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func (a *app) serve(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	industries, err := a.openStore(ctx, datasets.TopIndustries().Name)
	if err != nil {
		return err
	}
	defer industries.Close()
	stats, err := a.openStore(ctx, datasets.AllIndiaStats().Name)
	if err != nil {
		return err
	}
	defer stats.Close()

	handler := api.New(api.Config{
		DistrictsCSV:   a.cfg.API.DistrictsCSV,
		AllowedOrigins: a.cfg.API.AllowedOrigins,
		RateLimit:      a.cfg.API.RateLimit,
		Burst:          a.cfg.API.Burst,
	},
		api.WithLogger(a.log),
		api.WithMetrics(m, reg),
		api.WithTopIndustries(industries),
		api.WithAllIndiaStats(stats),
	)

	srv := &http.Server{
		Addr:              a.cfg.API.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
