// Package export fans a finished ledger out to the configured sinks.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"ledgerfetch/internal/core"
	applog "ledgerfetch/internal/log"
)

// Sink receives a complete ledger. Sinks never feed data back into a run.
type Sink interface {
	Name() string
	Export(ctx context.Context, l core.Ledger) error
}

// Dispatcher runs every sink against the same ledger.
type Dispatcher struct {
	sinks  []Sink
	logger *applog.Logger
}

// NewDispatcher creates a dispatcher over sinks; a nil logger discards output.
func NewDispatcher(logger *applog.Logger, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = applog.NewSilent()
	}
	return &Dispatcher{sinks: sinks, logger: logger.WithComponent(applog.ComponentExport)}
}

// Len returns the number of configured sinks.
func (d *Dispatcher) Len() int {
	return len(d.sinks)
}

// Dispatch exports l to all sinks concurrently and returns the first error.
// The ledger is only read, so sinks may share it.
func (d *Dispatcher) Dispatch(ctx context.Context, l core.Ledger) error {
	if len(d.sinks) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range d.sinks {
		g.Go(func() error {
			start := time.Now()
			if err := s.Export(gctx, l); err != nil {
				d.logger.ErrorContext(gctx, "Export failed",
					applog.FieldSink, s.Name(),
					applog.FieldOperation, applog.OpExport,
					applog.FieldError, err.Error())
				return fmt.Errorf("export to %s: %w", s.Name(), err)
			}
			d.logger.InfoContext(gctx, "Ledger exported",
				applog.FieldSink, s.Name(),
				applog.FieldCollected, l.Len(),
				applog.FieldDuration, time.Since(start).Milliseconds())
			return nil
		})
	}
	return g.Wait()
}

// Close closes every sink that holds resources.
func (d *Dispatcher) Close() error {
	var errs []error
	for _, s := range d.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", s.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
