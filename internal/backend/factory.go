// Package backend wires the configured page source and export sinks.
package backend

import (
	"context"
	"errors"
	"fmt"

	"ledgerfetch/internal/amqp"
	"ledgerfetch/internal/config"
	"ledgerfetch/internal/export"
	applog "ledgerfetch/internal/log"
	gsheet "ledgerfetch/internal/sheets/google"
	"ledgerfetch/internal/source"
	"ledgerfetch/internal/source/memory"
	"ledgerfetch/internal/source/rest"
	"ledgerfetch/internal/storage"
)

// Factory builds backends from the application config
type Factory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.NewSilent()
	}
	return &Factory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// Create builds the page source and every export sink enabled in cfg.
// On failure all sinks opened so far are closed.
func (f *Factory) Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	fetcher, err := f.CreateFetcher(cfg)
	if err != nil {
		return nil, err
	}

	sinks, err := f.createSinks(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dispatcher := export.NewDispatcher(f.logger, sinks...)
	return &Result{
		Fetcher:  fetcher,
		Exporter: dispatcher,
		Cleanup:  dispatcher.Close,
	}, nil
}

// CreateFetcher returns the page source selected by cfg.Source.
func (f *Factory) CreateFetcher(cfg *config.Config) (source.PageFetcher, error) {
	st := SourceType(cfg.Source)
	if !st.IsValid() {
		return nil, fmt.Errorf("invalid source type: %s", cfg.Source)
	}

	switch st {
	case MemorySource:
		store, err := memory.NewFromFiles(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("load memory source: %w", err)
		}
		f.logger.Info("Initialized memory source", "data_directory", cfg.DataDir)
		return store, nil
	default:
		client := rest.NewClient(cfg.BaseURL,
			rest.WithTimeout(cfg.HTTPTimeout),
			rest.WithRateLimit(cfg.RateLimit),
			rest.WithLogger(f.logger))
		f.logger.Info("Initialized REST source",
			applog.FieldURL, cfg.BaseURL,
			"timeout", cfg.HTTPTimeout.String(),
			"rate_limit_rps", cfg.RateLimit)
		return client, nil
	}
}

func (f *Factory) createSinks(ctx context.Context, cfg *config.Config) ([]export.Sink, error) {
	var sinks []export.Sink
	fail := func(err error) ([]export.Sink, error) {
		_ = export.NewDispatcher(nil, sinks...).Close()
		return nil, err
	}

	if cfg.ExportSQLitePath != "" {
		exp, err := storage.NewSQLiteExporter(cfg.ExportSQLitePath, cfg.Source)
		if err != nil {
			return fail(fmt.Errorf("initialize SQLite exporter: %w", err))
		}
		f.logger.Info("Initialized SQLite export", "db_path", cfg.ExportSQLitePath)
		sinks = append(sinks, exp)
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			return fail(fmt.Errorf("initialize AMQP client: %w", err))
		}
		f.logger.Info("Initialized AMQP export",
			"exchange", cfg.AMQPExchange,
			"routing_key", cfg.AMQPRoutingKey)
		sinks = append(sinks, client)
	}

	if cfg.GoogleSpreadsheetID != "" {
		exp, err := gsheet.NewSheetExporter(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, gsheet.Credentials{
			JSON: []byte(cfg.GoogleServiceAccountJSON),
			File: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			return fail(fmt.Errorf("initialize Google Sheets export: %w", err))
		}
		f.logger.Info("Initialized Google Sheets export", "sheet", cfg.GoogleSheetName)
		sinks = append(sinks, exp)
	}

	return sinks, nil
}
