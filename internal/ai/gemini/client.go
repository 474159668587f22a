package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/utils"
)

const (
	provider            = "gemini"
	DefaultModel        = "gemini-2.5-pro"
	defaultMaxLogLength = 200
)

type contentStreamer interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Generator streams chat completions from the Gemini API.
type Generator struct {
	models    contentStreamer
	logger    *zap.Logger
	maxLogLen int
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey string, logger *zap.Logger, maxLogLength int) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, logger, maxLogLength), nil
}

func newGenerator(models contentStreamer, logger *zap.Logger, maxLogLength int) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Generator{models: models, logger: logger, maxLogLen: maxLogLength}
}

func (g *Generator) Provider() string { return provider }

// Stream sends the conversation to Gemini and yields the reply as it arrives.
func (g *Generator) Stream(ctx context.Context, req ai.Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if g == nil || g.models == nil {
			yield("", errors.New("gemini generator is not initialized"))
			return
		}

		model := strings.TrimSpace(req.Model)
		if model == "" {
			model = DefaultModel
		}

		contents, config := buildRequest(req)
		if len(contents) == 0 {
			yield("", errors.New("request must contain at least one message"))
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		log := logger.WithCommonFields(g.logger, provider, model)
		log.Debug("gemini stream request",
			zap.Int("messages", len(req.Messages)),
			zap.Float64("temperature", req.Temperature),
			zap.Int("max_tokens", req.MaxTokens),
			zap.String("last_message_preview", utils.TruncateForLog(req.Messages[len(req.Messages)-1].Content, g.maxLogLen)),
		)

		received := 0
		for resp, err := range g.models.GenerateContentStream(ctx, model, contents, config) {
			if err != nil {
				yield("", fmt.Errorf("generate content stream: %w", err))
				return
			}

			text := responseText(resp)
			if text == "" {
				continue
			}

			received += utf8.RuneCountInString(text)
			if !yield(text, nil) {
				log.Debug("gemini stream abandoned by caller", zap.Int("response_length", received))
				return
			}
		}

		log.Debug("gemini stream finished", zap.Int("response_length", received))
	}
}

// buildRequest maps the role-tagged conversation onto Gemini contents. System
// messages become the system instruction; when nothing else is left the last
// system message is sent as the user turn, since Gemini rejects empty contents.
func buildRequest(req ai.Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{
		Temperature:    genai.Ptr(float32(req.Temperature)),
		CandidateCount: 1,
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	var system []*genai.Part
	var contents []*genai.Content
	for _, msg := range req.Messages {
		switch msg.Role {
		case ai.RoleSystem:
			system = append(system, &genai.Part{Text: msg.Content})
		case ai.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	if len(contents) == 0 && len(system) > 0 {
		last := system[len(system)-1]
		system = system[:len(system)-1]
		contents = append(contents, genai.NewContentFromParts([]*genai.Part{last}, genai.RoleUser))
	}

	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{Parts: system}
	}

	return contents, config
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		builder.WriteString(part.Text)
	}

	return builder.String()
}
