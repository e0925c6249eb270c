package services

import (
	"context"
	"errors"
	"fmt"

	"ledgerfetch/internal/core"
	applog "ledgerfetch/internal/log"
	"ledgerfetch/internal/source"
)

// DefaultMaxPages bounds the fetch loop when the server never satisfies its own count.
const DefaultMaxPages = 1000

var (
	// ErrTooManyPages means the page cap was reached before totalCount was met.
	ErrTooManyPages = errors.New("page limit reached before all transactions were collected")
	// ErrNoProgress means a page came back empty while transactions were still missing.
	ErrNoProgress = errors.New("page returned no transactions before totalCount was reached")
)

// Aggregator walks the paginated source page by page and assembles the ledger.
type Aggregator struct {
	fetcher    source.PageFetcher
	maxPages   int
	logger     *applog.Logger
	structured *applog.StructuredLogger
}

// AggregatorOption configures the aggregator
type AggregatorOption func(*Aggregator)

// WithMaxPages caps the number of pages requested in one run
func WithMaxPages(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxPages = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *applog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger.WithComponent(applog.ComponentAggregator)
		}
	}
}

// NewAggregator creates an aggregator reading pages from fetcher.
func NewAggregator(fetcher source.PageFetcher, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		fetcher:  fetcher,
		maxPages: DefaultMaxPages,
		logger:   applog.NewSilent(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.structured = applog.NewStructuredLogger(a.logger)
	return a
}

// Collect fetches pages 1, 2, ... in order until the number of collected
// transactions reaches the totalCount reported by the latest page, then
// returns them sorted by date descending with their balance.
//
// Any failure aborts the run; no partial ledger is ever returned.
func (a *Aggregator) Collect(ctx context.Context) (core.Ledger, error) {
	aggregate := make([]core.Transaction, 0)
	totalCount := 0

	for page := 1; ; page++ {
		if page > a.maxPages {
			err := fmt.Errorf("%w: %d of %d after %d pages", ErrTooManyPages, len(aggregate), totalCount, a.maxPages)
			a.logFailure(ctx, page, err)
			return core.Ledger{}, err
		}

		p, err := a.fetcher.FetchPage(ctx, page)
		if err != nil {
			a.logFailure(ctx, page, err)
			// typed fetch errors already name the page
			return core.Ledger{}, err
		}

		aggregate = append(aggregate, p.Transactions...)
		totalCount = p.TotalCount
		a.structured.LogPageFetched(ctx, page, "", len(p.Transactions), len(aggregate), p.TotalCount)

		if len(aggregate) >= p.TotalCount {
			ledger, err := core.NewLedger(aggregate, p.TotalCount, page)
			if err != nil {
				err = fmt.Errorf("compute balance: %w", err)
				a.logFailure(ctx, page, err)
				return core.Ledger{}, err
			}
			a.structured.LogLedgerCollected(ctx, ledger.Len(), page, ledger.Balance.Cents)
			return ledger, nil
		}

		if len(p.Transactions) == 0 {
			err := fmt.Errorf("%w: page %d, %d of %d collected", ErrNoProgress, page, len(aggregate), p.TotalCount)
			a.logFailure(ctx, page, err)
			return core.Ledger{}, err
		}
	}
}

func (a *Aggregator) logFailure(ctx context.Context, page int, err error) {
	a.structured.LogError(ctx, "Ledger collection failed", err,
		applog.ComponentAggregator, applog.OpCollect,
		applog.NewFields().WithPage(page, ""))
}
