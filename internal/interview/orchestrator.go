// Package interview drives a mock interview: the interviewer persona runs a
// scripted conversation and, once it signals the end, the reviewer persona
// grades the transcript.
package interview

import (
	"context"
	"iter"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/control"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/utils"
)

type Phase string

const (
	PhaseInterviewing Phase = "interviewing"
	PhaseEvaluating   Phase = "evaluating"
)

// EvaluationSeparator sits between the interviewer's closing message and the
// reviewer's report in the combined output.
const EvaluationSeparator = "\n\n"

const defaultMaxLogLength = 200

// Update is the latest state of a turn. Each update supersedes the previous
// one; Visible always carries the full text to show.
type Update struct {
	Phase   Phase
	Visible string
	Control string
}

type TurnInput struct {
	Documents Documents
	History   Transcript
	Message   string
	// Evaluate allows the turn to continue into the review when the
	// interviewer ends the interview.
	Evaluate bool
}

type Config struct {
	Interviewer  Persona
	Reviewer     Persona
	MaxLogLength int
}

type Orchestrator struct {
	streamer    ai.Streamer
	interviewer Persona
	reviewer    Persona
	logger      *zap.Logger
	maxLogLen   int
}

func NewOrchestrator(streamer ai.Streamer, logger *zap.Logger, cfg Config) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}

	return &Orchestrator{
		streamer:    streamer,
		interviewer: cfg.Interviewer.withDefaults(DefaultInterviewer()),
		reviewer:    cfg.Reviewer.withDefaults(DefaultReviewer()),
		logger:      logger,
		maxLogLen:   cfg.MaxLogLength,
	}
}

// Turn answers one candidate message. The interviewer reply is streamed with
// control markers hidden; when it carries the end marker and in.Evaluate is
// set, the reviewer output follows in the same sequence. A model failure is
// yielded once as *ModelInvocationError and ends the turn. Stopping the
// iteration cancels the model call in flight.
func (o *Orchestrator) Turn(ctx context.Context, in TurnInput) iter.Seq2[Update, error] {
	return func(yield func(Update, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		last := Update{Phase: PhaseInterviewing}
		var buffer strings.Builder

		req := o.interviewRequest(in)
		log := o.personaLogger(o.interviewer)
		log.Debug("interviewer request", o.requestFields(req)...)

		for chunk, err := range o.streamer.Stream(ctx, req) {
			if err != nil {
				yield(Update{Phase: PhaseInterviewing}, &ModelInvocationError{Persona: o.interviewer.Name, Err: err})
				return
			}

			buffer.WriteString(chunk)
			visible, token := control.Extract(buffer.String())
			last = Update{Phase: PhaseInterviewing, Visible: visible, Control: token}
			if !yield(last, nil) {
				return
			}
		}

		log.Debug("interviewer reply",
			zap.Int("response_length", utf8.RuneCountInString(buffer.String())),
			zap.String("control", last.Control),
		)

		if !control.Ended(last.Control) {
			return
		}
		if !in.Evaluate {
			log.Info("interview ended again, evaluation already done")
			return
		}

		log.Info("interview ended, starting evaluation")

		// The reviewer grades the whole interview, closing exchange included.
		history := append(in.History[:len(in.History):len(in.History)], Exchange{Candidate: in.Message, Interviewer: last.Visible})
		o.evaluate(ctx, in.Documents, history, last.Visible, yield)
	}
}

func (o *Orchestrator) evaluate(ctx context.Context, docs Documents, history Transcript, seed string, yield func(Update, error) bool) {
	req := o.reviewRequest(docs, history)
	log := o.personaLogger(o.reviewer)
	log.Debug("reviewer request", o.requestFields(req)...)

	var combined strings.Builder
	combined.WriteString(seed)
	combined.WriteString(EvaluationSeparator)

	for chunk, err := range o.streamer.Stream(ctx, req) {
		if err != nil {
			yield(Update{Phase: PhaseEvaluating}, &ModelInvocationError{Persona: o.reviewer.Name, Err: err})
			return
		}

		combined.WriteString(chunk)
		if !yield(Update{Phase: PhaseEvaluating, Visible: combined.String()}, nil) {
			return
		}
	}

	log.Debug("reviewer reply", zap.Int("response_length", utf8.RuneCountInString(combined.String())-utf8.RuneCountInString(seed+EvaluationSeparator)))
}

func (o *Orchestrator) interviewRequest(in TurnInput) ai.Request {
	messages := append(documentMessages(o.interviewer, in.Documents), in.History.messages()...)
	messages = append(messages, ai.UserMessage(in.Message))

	return ai.Request{Params: o.interviewer.Params, Messages: messages}
}

func (o *Orchestrator) reviewRequest(docs Documents, history Transcript) ai.Request {
	messages := append(documentMessages(o.reviewer, docs), ai.SystemMessage(history.Serialize()))

	return ai.Request{Params: o.reviewer.Params, Messages: messages}
}

func documentMessages(p Persona, docs Documents) []ai.Message {
	return []ai.Message{
		ai.SystemMessage(p.Prompt),
		ai.SystemMessage("Job Description: " + docs.JobDescription),
		ai.SystemMessage("Candidate's CV: " + docs.Resume),
	}
}

func (o *Orchestrator) personaLogger(p Persona) *zap.Logger {
	return logger.WithPersona(o.logger, p.Name, o.streamer.Provider(), p.Model)
}

func (o *Orchestrator) requestFields(req ai.Request) []zap.Field {
	last := req.Messages[len(req.Messages)-1].Content
	return []zap.Field{
		zap.Int("messages", len(req.Messages)),
		zap.Float64("temperature", req.Temperature),
		zap.Int("max_tokens", req.MaxTokens),
		zap.String("last_message_preview", utils.TruncateForLog(last, o.maxLogLen)),
	}
}
