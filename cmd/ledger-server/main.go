package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ledgerfetch/internal/backend"
	"ledgerfetch/internal/cli"
	"ledgerfetch/internal/core"
	apphttp "ledgerfetch/internal/http"
	applog "ledgerfetch/internal/log"
	"ledgerfetch/internal/services"
)

// exportingCollector hands every successful collection to the export sinks.
// Export failures are logged and never fail the page.
type exportingCollector struct {
	*services.Aggregator
	res    *backend.Result
	logger *applog.Logger
}

func (c exportingCollector) Collect(ctx context.Context) (core.Ledger, error) {
	ledger, err := c.Aggregator.Collect(ctx)
	if err != nil {
		return ledger, err
	}
	if err := c.res.Exporter.Dispatch(ctx, ledger); err != nil {
		c.logger.WarnContext(ctx, "Export failed", applog.FieldError, err.Error())
	}
	return ledger, nil
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)
	cfg := cli.LoadAndValidateServerConfig(logger)

	res, err := backend.NewFactory(logger).Create(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err.Error(), "source", cfg.Source)
		os.Exit(1)
	}

	aggregator := services.NewAggregator(res.Fetcher,
		services.WithMaxPages(cfg.MaxPages),
		services.WithLogger(logger))

	var collector apphttp.Collector = aggregator
	if res.Exporter.Len() > 0 {
		collector = exportingCollector{Aggregator: aggregator, res: res, logger: logger}
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, collector,
		apphttp.WithLogger(logger),
		apphttp.WithRateLimit(cfg.ServerRateLimitRPM))
	if err != nil {
		logger.Error("Failed to create server", applog.FieldError, err.Error())
		os.Exit(1)
	}

	// Configure server timeouts and limits. Writes cover a full upstream walk.
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 2 * time.Minute
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		if err := res.Cleanup(); err != nil {
			logger.Warn("Cleanup failed", applog.FieldError, err.Error())
		}
	})

	logger.Info("Starting ledger server",
		"port", cfg.Port,
		"source", cfg.Source,
		applog.FieldURL, cfg.BaseURL,
		"sinks", res.Exporter.Len())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
