// Package ingestion turns the candidate's inputs into the plain text the
// interviewer works with: a job description scraped from a listing page or
// pasted by hand, and a resume extracted from a PDF.
package ingestion

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultUserAgent mimics a desktop browser; listing pages reject obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"

// DocumentSink receives the most recently ingested documents.
type DocumentSink interface {
	SetJobDescription(text string)
	SetResume(text string)
}

type Options struct {
	UserAgent string
	// Timeout bounds a job description download. Zero means no limit.
	Timeout time.Duration
}

type Ingestor struct {
	httpClient *http.Client
	userAgent  string
	cache      Cache
	// fetches collapses concurrent loads of the same URL into one download.
	fetches singleflight.Group
	logger  *zap.Logger
}

func New(cache Cache, logger *zap.Logger, opts *Options) *Ingestor {
	if opts == nil {
		opts = &Options{}
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Ingestor{
		httpClient: &http.Client{Timeout: opts.Timeout},
		userAgent:  userAgent,
		cache:      cache,
		logger:     logger,
	}
}
