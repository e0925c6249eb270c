package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"ledgerfetch/internal/backend"
	"ledgerfetch/internal/cli"
	"ledgerfetch/internal/config"
	applog "ledgerfetch/internal/log"
	"ledgerfetch/internal/render"
	"ledgerfetch/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ledger:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		format  = flag.String("format", "", "output format: table, json or html (default $OUTPUT_FORMAT or table)")
		baseURL = flag.String("base-url", "", "transactions endpoint, pages are fetched from {base-url}{n}.json")
		src     = flag.String("source", "", "transactions source: rest or memory")
		dataDir = flag.String("data-dir", "", "directory holding 1.json, 2.json, ... for the memory source")
	)
	flag.Parse()

	cli.LoadEnvFile()
	// stdout carries the rendered ledger
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stderr)

	cfg := cli.LoadAndValidateConfig(logger, func(c *config.Config) {
		if *format != "" {
			c.OutputFormat = *format
		}
		if *baseURL != "" {
			c.BaseURL = *baseURL
		}
		if *src != "" {
			c.Source = *src
		}
		if *dataDir != "" {
			c.DataDir = *dataDir
		}
	})

	renderer, err := render.ByName(cfg.OutputFormat)
	if err != nil {
		return err
	}

	ctx, _ := cli.GracefulShutdown(logger, 5*time.Second, nil)

	res, err := backend.NewFactory(logger).Create(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Cleanup failed", applog.FieldError, err.Error())
		}
	}()

	ledger, err := services.NewAggregator(res.Fetcher,
		services.WithMaxPages(cfg.MaxPages),
		services.WithLogger(logger)).Collect(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("interrupted")
		}
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	if err := renderer.Render(out, ledger); err != nil {
		return fmt.Errorf("render ledger: %w", err)
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if err := res.Exporter.Dispatch(ctx, ledger); err != nil {
		return err
	}
	return nil
}
