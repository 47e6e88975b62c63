package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/skycat"
	"github.com/hupe1980/skycat/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve lookups and positional queries over HTTP",
	Long: "serve exposes GET /v1/lookup?id=, GET /v1/nearest?ra=&dec=[&k=&radius=&wrap=&max_sep=], " +
		"/healthz and Prometheus metrics on /metrics.",
	Args:   cobra.NoArgs,
	PreRun: bindQueryFlags,
	RunE:   runServe,
}

func init() {
	addQueryFlags(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	reg := prometheus.NewRegistry()
	collector, err := observability.NewPrometheusCollector(reg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cat, cfg, err := openCatalog(ctx, skycat.WithMetricsCollector(collector))
	if err != nil {
		return err
	}
	defer cat.Close()

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           newServer(cat, cfg, collector),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Info("serving catalog", "addr", cfg.Serve.Addr, "catalog", cfg.Catalog)

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-stopCtx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
