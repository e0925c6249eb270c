package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"ledgerfetch/internal/core"
	"ledgerfetch/internal/source"
)

// ErrPageNotFound is returned for a page index the store does not hold.
var ErrPageNotFound = errors.New("page not found")

// Store serves pre-loaded pages. Page i+1 is pages[i].
type Store struct {
	mu       sync.Mutex
	pages    []core.Page
	failures map[int]error
	requests []int
}

var _ source.PageFetcher = (*Store)(nil)

func New(pages ...core.Page) *Store {
	return &Store{pages: pages, failures: map[int]error{}}
}

// NewFromFiles loads 1.json, 2.json, ... from base until the first missing file.
func NewFromFiles(base string) (*Store, error) {
	var pages []core.Page
	for n := 1; ; n++ {
		path := filepath.Join(base, strconv.Itoa(n)+".json")
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var p core.Page
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		pages = append(pages, p)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages found in %s", base)
	}
	return New(pages...), nil
}

// FailOn makes every request for page return err.
func (s *Store) FailOn(page int, err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[page] = err
	return s
}

// FetchPage returns a copy of the stored page.
func (s *Store) FetchPage(ctx context.Context, page int) (core.Page, error) {
	if err := ctx.Err(); err != nil {
		return core.Page{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, page)

	if err, ok := s.failures[page]; ok {
		return core.Page{}, err
	}
	if page < 1 || page > len(s.pages) {
		return core.Page{}, fmt.Errorf("page %d: %w", page, ErrPageNotFound)
	}
	p := s.pages[page-1]
	return core.Page{
		Transactions: append([]core.Transaction(nil), p.Transactions...),
		TotalCount:   p.TotalCount,
	}, nil
}

// Requests returns the page indices requested so far, in order.
func (s *Store) Requests() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.requests...)
}
