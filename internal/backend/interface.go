package backend

import (
	"ledgerfetch/internal/export"
	"ledgerfetch/internal/source"
)

// CleanupFunc releases resources held by the result
type CleanupFunc func() error

// Result bundles the page source and the export sinks built from config
type Result struct {
	Fetcher  source.PageFetcher
	Exporter *export.Dispatcher
	Cleanup  CleanupFunc
}

// SourceType selects where pages come from
type SourceType string

const (
	RESTSource   SourceType = "rest"
	MemorySource SourceType = "memory"
)

// String implements fmt.Stringer
func (st SourceType) String() string {
	return string(st)
}

// IsValid returns true if the source type is known
func (st SourceType) IsValid() bool {
	switch st {
	case RESTSource, MemorySource:
		return true
	default:
		return false
	}
}
