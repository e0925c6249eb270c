// Package rest provides a page fetcher for the paginated transactions API.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"ledgerfetch/internal/core"
	applog "ledgerfetch/internal/log"
	"ledgerfetch/internal/source"
)

const (
	DefaultTimeout = 30 * time.Second
	// bodies larger than this are rejected as malformed pages
	maxBodyBytes = 10 << 20
)

// Client fetches pages from {baseURL}{page}.json.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *applog.Logger
	limiter    *rate.Limiter
}

var _ source.PageFetcher = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client to copy. Its transport is shared; the
// caller's client itself is never modified.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *applog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.WithComponent(applog.ComponentFetcher)
		}
	}
}

// WithRateLimit paces requests to at most n per second. Zero disables pacing.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithTimeout sets the per-request HTTP timeout, regardless of option order
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// NewClient creates a fetcher rooted at baseURL. The base URL is used verbatim,
// so it normally ends with a slash.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: applog.NewSilent(),
	}

	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.httpClient = &hc

	return c
}

// BaseURL returns the endpoint pages are requested from.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PageURL returns the URL of the given page.
func (c *Client) PageURL(page int) string {
	return c.baseURL + strconv.Itoa(page) + ".json"
}

// pageResponse mirrors the wire shape. TotalCount is a pointer so a missing
// field can be told apart from an empty result set.
type pageResponse struct {
	Page         int                `json:"page"`
	TotalCount   *int               `json:"totalCount"`
	Transactions []core.Transaction `json:"transactions"`
}

// FetchPage performs one GET for the page and decodes it. It never retries.
func (c *Client) FetchPage(ctx context.Context, page int) (core.Page, error) {
	if page < 1 {
		return core.Page{}, ErrInvalidPage
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return core.Page{}, &NetworkError{Page: page, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	reqURL := c.PageURL(page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return core.Page{}, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Page request failed",
			applog.FieldPage, page,
			applog.FieldURL, reqURL,
			applog.FieldError, err.Error())
		return core.Page{}, &NetworkError{Page: page, Err: err}
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Page response received",
		applog.FieldPage, page,
		applog.FieldURL, reqURL,
		applog.FieldStatusCode, resp.StatusCode,
		applog.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused; the body carries no error detail we use
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return core.Page{}, &FetchError{Page: page, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return core.Page{}, &NetworkError{Page: page, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxBodyBytes {
		return core.Page{}, &ParseError{Page: page, Err: errors.New("response body too large")}
	}

	return decodePage(page, body)
}

func decodePage(page int, body []byte) (core.Page, error) {
	var raw pageResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return core.Page{}, &ParseError{Page: page, Err: err}
	}
	if raw.TotalCount == nil {
		return core.Page{}, &ParseError{Page: page, Err: errors.New("missing totalCount")}
	}
	if *raw.TotalCount < 0 {
		return core.Page{}, &ParseError{Page: page, Err: fmt.Errorf("negative totalCount %d", *raw.TotalCount)}
	}
	return core.Page{
		Transactions: raw.Transactions,
		TotalCount:   *raw.TotalCount,
	}, nil
}
