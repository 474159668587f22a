package ingestion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/utils"
)

const (
	// NoJobDescription is used when neither a URL nor pasted text was supplied.
	NoJobDescription = "no JD provided"
	// JobDescriptionUnavailable replaces a listing that could not be downloaded.
	JobDescriptionUnavailable = "couldn't load JD from LinkedIn"
)

type jobField struct {
	name     string
	selector string
	missing  string
}

// Fields are concatenated in this order without separators.
var jobFields = []jobField{
	{name: "title", selector: "h1.topcard__title", missing: "Couldn't find job title on LinkedIn \n"},
	{name: "company", selector: "a.topcard__org-name-link", missing: "Couldn't find company name on LinkedIn \n"},
	{name: "description", selector: "div.description__text", missing: "Couldn't find job description on LinkedIn \n"},
}

// JobDescription resolves the job description from a listing URL or pasted
// text and stores the result in sink. A URL takes precedence even when it is
// malformed; download failures degrade to JobDescriptionUnavailable.
// Concurrent calls for the same URL share a single download, which is not
// canceled when ctx is.
func (i *Ingestor) JobDescription(ctx context.Context, sink DocumentSink, url, pasted string) string {
	var text string
	switch {
	case url != "":
		text = i.jobDescriptionFromURL(ctx, url)
	case pasted != "":
		text = pasted
	default:
		text = NoJobDescription
	}

	if sink != nil {
		sink.SetJobDescription(text)
	}

	return text
}

func (i *Ingestor) jobDescriptionFromURL(ctx context.Context, url string) string {
	// The load is shared by every caller waiting on url, so one caller going
	// away must not fail it for the others.
	ctx = context.WithoutCancel(ctx)

	text, err, shared := i.fetches.Do(url, func() (any, error) {
		return i.loadJobDescription(ctx, url)
	})
	if err != nil {
		i.logger.Warn("loading job description failed", zap.String("url", url), zap.Error(err))
		return JobDescriptionUnavailable
	}

	if shared {
		i.logger.Debug("job description load shared", zap.String("url", url))
	}
	return text.(string)
}

// loadJobDescription serves url from the cache or downloads and caches it.
// Failed downloads are not cached.
func (i *Ingestor) loadJobDescription(ctx context.Context, url string) (string, error) {
	log := i.logger.With(zap.String("url", url))

	cached, ok, err := i.cache.Get(ctx, url)
	if err != nil {
		log.Warn("job description cache lookup failed", zap.Error(err))
	}
	if ok {
		log.Info("job description cache hit")
		return cached, nil
	}

	text, err := i.scrape(ctx, url)
	if err != nil {
		return "", err
	}

	if err := i.cache.Set(ctx, url, text); err != nil {
		log.Warn("storing job description in cache failed", zap.Error(err))
	}

	log.Info("job description loaded", zap.Int("length", len(text)))
	return text, nil
}

func (i *Ingestor) scrape(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", i.userAgent)

	i.logger.Debug("make request", zap.String("url", url))
	resp, err := i.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("parse html: %w", err)}
	}

	return extractJobDescription(doc, i.logger), nil
}

func extractJobDescription(doc *goquery.Document, logger *zap.Logger) string {
	var builder strings.Builder
	for _, field := range jobFields {
		selection := doc.Find(field.selector).First()
		if selection.Length() == 0 {
			logger.Debug("job description field not found",
				zap.String("field", field.name),
				zap.String("selector", field.selector),
			)
			builder.WriteString(field.missing)
			continue
		}
		builder.WriteString(strings.TrimSpace(selection.Text()))
	}

	return utils.CollapseNewlines(builder.String())
}
