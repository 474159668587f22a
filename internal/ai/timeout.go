package ai

import (
	"context"
	"iter"
	"time"
)

type timeoutStreamer struct {
	Streamer
	timeout time.Duration
}

// WithTimeout bounds every call of s by d. A non-positive d returns s as is.
func WithTimeout(s Streamer, d time.Duration) Streamer {
	if d <= 0 {
		return s
	}
	return &timeoutStreamer{Streamer: s, timeout: d}
}

func (t *timeoutStreamer) Stream(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithTimeout(ctx, t.timeout)
		defer cancel()

		for chunk, err := range t.Streamer.Stream(ctx, req) {
			if !yield(chunk, err) {
				return
			}
		}
	}
}
