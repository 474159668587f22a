package ai

import (
	"context"
	"iter"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Params are the decoding parameters of a single completion. Exactly one
// completion is always requested.
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

type Request struct {
	Params
	Messages []Message
}

// Streamer delivers a chat completion incrementally. The sequence yields text
// fragments in order and ends after the last one; a non-nil error is yielded
// at most once and terminates the sequence. Stopping the iteration early
// cancels the underlying call.
type Streamer interface {
	Stream(ctx context.Context, req Request) iter.Seq2[string, error]
	Provider() string
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
