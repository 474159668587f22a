// Package openaichat streams chat completions from the OpenAI API.
package openaichat

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/utils"
)

const (
	provider            = "openai"
	defaultModel        = "gpt-4-0613"
	defaultMaxLogLength = 200
)

type Client struct {
	client    openai.Client
	logger    *zap.Logger
	maxLogLen int
}

// NewClient builds a client for the chat completions endpoint. The SDK's
// automatic retries are switched off: a failed call surfaces to the caller.
func NewClient(apiKey, baseURL string, logger *zap.Logger, maxLogLength int) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Client{
		client:    openai.NewClient(opts...),
		logger:    logger,
		maxLogLen: maxLogLength,
	}, nil
}

func (c *Client) Provider() string { return provider }

// Stream requests a single streamed completion and yields content deltas.
func (c *Client) Stream(ctx context.Context, req ai.Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if c == nil {
			yield("", errors.New("openai client is not initialized"))
			return
		}
		if len(req.Messages) == 0 {
			yield("", errors.New("request must contain at least one message"))
			return
		}

		model := strings.TrimSpace(req.Model)
		if model == "" {
			model = defaultModel
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		log := logger.WithCommonFields(c.logger, provider, model)
		log.Debug("openai stream request",
			zap.Int("messages", len(req.Messages)),
			zap.Float64("temperature", req.Temperature),
			zap.Int("max_tokens", req.MaxTokens),
			zap.String("last_message_preview", utils.TruncateForLog(req.Messages[len(req.Messages)-1].Content, c.maxLogLen)),
		)

		stream := c.client.Chat.Completions.NewStreaming(ctx, buildParams(model, req))
		defer stream.Close()

		received := 0
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}

			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}

			received += utf8.RuneCountInString(delta)
			if !yield(delta, nil) {
				log.Debug("openai stream abandoned by caller", zap.Int("response_length", received))
				return
			}
		}

		if err := stream.Err(); err != nil {
			yield("", fmt.Errorf("chat completion stream: %w", err))
			return
		}

		log.Debug("openai stream finished", zap.Int("response_length", received))
	}
}

func buildParams(model string, req ai.Request) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case ai.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case ai.RoleAssistant:
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    msgs,
		Temperature: openai.Float(req.Temperature),
		N:           openai.Int(1),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	return params
}
