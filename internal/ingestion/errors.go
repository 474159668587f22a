package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrNoText is returned when a resume page yields no extractable text.
	ErrNoText = errors.New("page has no extractable text")
	// ErrNoPages is returned for a document without pages.
	ErrNoPages = errors.New("document has no pages")
)

// FetchError describes a failed job description download. It is never
// returned to callers of JobDescription: the fetch degrades to a placeholder.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: bad status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports a resume that could not be turned into text. Page is
// 1-based and zero when the document itself is unreadable.
type ParseError struct {
	Page int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("parse resume page %d: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("parse resume: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
