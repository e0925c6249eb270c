package rest

import (
	"errors"
	"fmt"
)

// ErrInvalidPage is returned for page indices below 1.
var ErrInvalidPage = errors.New("page index must be at least 1")

// FetchError reports a page request answered with a non-success status.
type FetchError struct {
	Page       int
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %d: unexpected status %d", e.Page, e.StatusCode)
}

// ParseError reports a response body that does not match the page shape.
type ParseError struct {
	Page int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse page %d: %v", e.Page, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NetworkError reports a transport failure: DNS, refused connection, timeout
// or a cancelled context.
type NetworkError struct {
	Page int
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request page %d: %v", e.Page, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the underlying transport error was a timeout.
func (e *NetworkError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}
