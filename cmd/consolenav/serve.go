package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/consolenav/internal/errors"
	"github.com/vango-dev/consolenav/pkg/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		address        string
		metricsAddress string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the navigation server",
		Long: `Start the HTTP and WebSocket navigation server.

Endpoints:
  GET /healthz             liveness probe
  GET /api/routes          route manifest
  GET /api/navigate?url=   resolve one URL
  GET /ws                  live navigation stream
  GET /metrics             Prometheus metrics

With --metrics-address, /metrics moves to a separate listener.

Examples:
  consolenav serve
  consolenav serve --address=127.0.0.1:9000 --metrics-address=:9100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if address != "" {
				a.cfg.Server.Address = address
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := a.serve(ctx, metricsAddress); err != nil {
				return errors.New("E312").Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "Address to listen on (default from config)")
	cmd.Flags().StringVar(&metricsAddress, "metrics-address", "", "Serve /metrics on a separate address")

	return cmd
}

// serve runs the navigation server, and the metrics listener when
// metricsAddress is set, until ctx is done or either fails.
func (a *app) serve(ctx context.Context, metricsAddress string) error {
	reg, metrics := a.newRegistry()
	nv, err := a.newNavigator(metrics)
	if err != nil {
		return err
	}

	sc := a.serverConfig()
	if metricsAddress != "" {
		sc.EnableMetrics = false
	}
	srv := server.New(nv, sc,
		server.WithLogger(a.logger),
		server.WithMetrics(metrics),
		server.WithGatherer(reg),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx)
	})
	if metricsAddress != "" && a.cfg.Metrics.Enabled {
		g.Go(func() error {
			return serveMetrics(ctx, metricsAddress, reg, a.cfg.ShutdownTimeout())
		})
	}
	return g.Wait()
}

// serveMetrics serves reg at /metrics on address until ctx is done.
func serveMetrics(ctx context.Context, address string, reg prometheus.Gatherer, shutdownTimeout time.Duration) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	hs := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(sctx)
	}
}
