package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ecopack-forecast/internal/api"
	"ecopack-forecast/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves POST /forecast, POST /forecast/compare, POST /forecast/compare/export,
GET /materials, GET /healthz and GET /metrics. Stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.New(reg)

	svc, err := newService(cfg, rec)
	if err != nil {
		return err
	}

	srv := api.NewServer(
		api.NewHandler(svc, Version),
		api.WithHost(cfg.Server.Host),
		api.WithPort(cfg.Server.Port),
		api.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		api.WithCORS(cfg.Server.CORS),
		api.WithMetrics(rec),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down HTTP server")
		return srv.Stop(context.Background())
	})
	return g.Wait()
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
