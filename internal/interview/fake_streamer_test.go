package interview

import (
	"context"
	"iter"
	"sync"

	"github.com/spigell/interview-coach/internal/ai"
)

type scriptedReply struct {
	chunks []string
	err    error
}

// scriptedStreamer plays one scripted reply per call and records every request.
type scriptedStreamer struct {
	mu       sync.Mutex
	replies  []scriptedReply
	requests []ai.Request
	ctxs     []context.Context
}

func newScriptedStreamer(replies ...scriptedReply) *scriptedStreamer {
	return &scriptedStreamer{replies: replies}
}

func (s *scriptedStreamer) Provider() string {
	return "scripted"
}

func (s *scriptedStreamer) Stream(ctx context.Context, req ai.Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		s.mu.Lock()
		call := len(s.requests)
		s.requests = append(s.requests, req)
		s.ctxs = append(s.ctxs, ctx)
		s.mu.Unlock()

		if call >= len(s.replies) {
			return
		}

		reply := s.replies[call]
		for _, chunk := range reply.chunks {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}

		if reply.err != nil {
			yield("", reply.err)
		}
	}
}

func (s *scriptedStreamer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *scriptedStreamer) request(n int) ai.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[n]
}

func (s *scriptedStreamer) context(n int) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctxs[n]
}

func collect(seq iter.Seq2[Update, error]) ([]Update, error) {
	var updates []Update
	for update, err := range seq {
		if err != nil {
			return updates, err
		}
		updates = append(updates, update)
	}
	return updates, nil
}
