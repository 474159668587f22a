package interview

import (
	"context"
	"iter"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DocumentSource provides the documents a turn is built from.
type DocumentSource interface {
	Snapshot() Documents
}

// Conversation is one candidate's interview. It owns the transcript and makes
// sure the review runs at most once. Turns are serialized.
type Conversation struct {
	mu           sync.Mutex
	orchestrator *Orchestrator
	documents    DocumentSource
	transcript   Transcript
	evaluated    bool
	report       *Report
	logger       *zap.Logger
}

func NewConversation(orchestrator *Orchestrator, documents DocumentSource, logger *zap.Logger) *Conversation {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Conversation{
		orchestrator: orchestrator,
		documents:    documents,
		logger:       logger,
	}
}

// Send runs a turn for message against the current documents. The exchange
// is recorded only when the turn completes without error; a turn the caller
// abandons leaves the transcript unchanged.
func (c *Conversation) Send(ctx context.Context, message string) iter.Seq2[Update, error] {
	return func(yield func(Update, error) bool) {
		c.mu.Lock()
		defer c.mu.Unlock()

		in := TurnInput{
			Documents: c.documents.Snapshot(),
			History:   c.transcript,
			Message:   message,
			Evaluate:  !c.evaluated,
		}

		var reply, review string
		evaluating := false

		for update, err := range c.orchestrator.Turn(ctx, in) {
			if err != nil {
				c.logger.Error("turn failed", zap.Int("turn", len(c.transcript)+1), zap.Error(err))
				yield(update, err)
				return
			}

			switch update.Phase {
			case PhaseInterviewing:
				reply = update.Visible
			case PhaseEvaluating:
				evaluating = true
				review = strings.TrimPrefix(update.Visible, reply+EvaluationSeparator)
			}

			if !yield(update, nil) {
				c.logger.Info("turn abandoned", zap.Int("turn", len(c.transcript)+1))
				return
			}
		}

		c.transcript = append(c.transcript, Exchange{Candidate: message, Interviewer: reply})

		if evaluating {
			c.evaluated = true
			c.recordReport(review)
		}
	}
}

func (c *Conversation) recordReport(raw string) {
	report, err := ParseReport(raw)
	if err != nil {
		c.logger.Warn("reviewer output is not a report", zap.Error(err))
		return
	}

	c.report = report
	c.logger.Info("interview evaluated",
		zap.Int("questions", len(report.Questions)),
		zap.String("overall_rating", report.OverallRating),
	)
}

// Transcript returns a copy of the exchanges so far.
func (c *Conversation) Transcript() Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append(Transcript(nil), c.transcript...)
}

func (c *Conversation) Evaluated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.evaluated
}

// Report returns the parsed review, or nil when there is none yet or the
// reviewer output could not be parsed.
func (c *Conversation) Report() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.report
}
