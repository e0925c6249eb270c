// Package cli provides common initialization shared by cmd/ledger and
// cmd/ledger-server.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ledgerfetch/internal/config"
	applog "ledgerfetch/internal/log"
)

// SetupLogger initializes structured logging at the named level, writing to w.
// Returns the configured logger and sets it as the default logger.
func SetupLogger(level string, w io.Writer) *applog.Logger {
	if w == nil {
		w = os.Stdout
	}
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: applog.ComponentApp,
		Output:    w,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration, applies overrides (command-line
// flags) and validates the result. It exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger, overrides ...func(*config.Config)) *config.Config {
	return loadAndValidate(logger, (*config.Config).Validate, overrides)
}

// LoadAndValidateServerConfig is LoadAndValidateConfig for ledger-server; it
// also checks the listen port and the request rate limit.
func LoadAndValidateServerConfig(logger *applog.Logger, overrides ...func(*config.Config)) *config.Config {
	return loadAndValidate(logger, (*config.Config).ValidateServer, overrides)
}

func loadAndValidate(logger *applog.Logger, validate func(*config.Config) error, overrides []func(*config.Config)) *config.Config {
	cfg := config.Load()
	for _, o := range overrides {
		o(cfg)
	}
	if err := validate(cfg); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. When the
// signal arrives cleanup runs with a context bounded by timeout; done is
// closed once it returns.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received", "signal", sig.String())

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}
