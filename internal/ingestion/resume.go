package ingestion

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/utils"
)

// Resume extracts the text of a PDF resume page by page and stores it in sink.
// The sink is left untouched when extraction fails.
func (i *Ingestor) Resume(sink DocumentSink, data []byte) (string, error) {
	text, err := extractPDFText(data)
	if err != nil {
		i.logger.Warn("loading resume failed", zap.Int("size", len(data)), zap.Error(err))
		return "", err
	}

	text = utils.CollapseNewlines(text)
	if sink != nil {
		sink.SetResume(text)
	}

	i.logger.Info("resume loaded", zap.Int("size", len(data)), zap.Int("length", len(text)))
	return text, nil
}

func extractPDFText(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", &ParseError{Err: fmt.Errorf("malformed document: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ParseError{Err: err}
	}

	pages := reader.NumPage()
	if pages == 0 {
		return "", &ParseError{Err: ErrNoPages}
	}

	var builder strings.Builder
	for n := 1; n <= pages; n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			return "", &ParseError{Page: n, Err: ErrNoText}
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ParseError{Page: n, Err: err}
		}
		if pageText == "" {
			return "", &ParseError{Page: n, Err: ErrNoText}
		}

		builder.WriteString(pageText)
	}

	return builder.String(), nil
}
