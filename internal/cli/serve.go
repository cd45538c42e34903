package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aalvaropc/diagroute/internal/buildinfo"
	"github.com/aalvaropc/diagroute/internal/infra/logger"
	"github.com/aalvaropc/diagroute/internal/infra/metrics"
	"github.com/aalvaropc/diagroute/internal/mcpserver"
)

func serveCmd() *cobra.Command {
	var rulebook string
	var metricsAddr string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the classifier as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := loadEngine(rulebook)
			if err != nil {
				return err
			}

			m := metrics.New()
			s := mcpserver.New(metrics.Instrument(engine, m), buildinfo.Version)

			// Closing stdin ends the session and with it the metrics listener.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				defer cancel()
				logger.L().Info("serve.started", "rulebook", engine.Rulebook().Name)
				return mcpserver.Serve(ctx, s, os.Stdin, os.Stdout)
			})

			if addr := strings.TrimSpace(metricsAddr); addr != "" {
				srv := &http.Server{
					Addr:              addr,
					Handler:           metricsMux(m),
					ReadHeaderTimeout: 5 * time.Second,
				}
				g.Go(func() error {
					logger.L().Info("serve.metrics", "addr", addr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil
				})
				g.Go(func() error {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return srv.Shutdown(shutdownCtx)
				})
			}

			err = g.Wait()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	c.Flags().StringVar(&rulebook, "rulebook", "", "Rulebook file (default: workspace rulebook or embedded)")
	c.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9464)")
	return c
}

func metricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}
