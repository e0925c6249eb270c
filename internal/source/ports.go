package source

import (
	"context"

	"ledgerfetch/internal/core"
)

// Ports for inbound transaction sources.
type (
	// PageFetcher retrieves one page of transactions by its 1-based index.
	PageFetcher interface {
		FetchPage(ctx context.Context, page int) (core.Page, error)
	}
)
