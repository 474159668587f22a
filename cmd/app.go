package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/ai/gemini"
	"github.com/spigell/interview-coach/internal/ai/openaichat"
	"github.com/spigell/interview-coach/internal/ingestion"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/secrets"
)

const (
	providerOpenAI = "openai"
	providerGemini = "gemini"

	cacheMemory = "memory"
	cacheLRU    = "lru"
	cacheRedis  = "redis"
)

// components are the pieces shared by the interactive and the HTTP surface.
type components struct {
	orchestrator *interview.Orchestrator
	ingestor     *ingestion.Ingestor
	closers      []func() error
}

func (c *components) Close(logger *zap.Logger) {
	for _, closer := range c.closers {
		if err := closer(); err != nil {
			logger.Warn("closing resources", zap.Error(err))
		}
	}
}

// setup loads the configuration and wires the components. Any error here is
// fatal: the tool must not start without a usable credential.
func setup(ctx context.Context, logger *zap.Logger) (*components, error) {
	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}
	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{Provider: providerOpenAI}
	}

	streamer, err := newStreamer(ctx, config.AI, logger)
	if err != nil {
		return nil, err
	}

	cache, closer, err := newCache(ctx, config.Cache, logger)
	if err != nil {
		return nil, err
	}

	c := &components{
		orchestrator: interview.NewOrchestrator(ai.WithTimeout(streamer, config.AI.Timeout), logger, interview.Config{
			Interviewer:  personaFromConfig(config.AI.Interviewer, config.AI.Provider),
			Reviewer:     personaFromConfig(config.AI.Reviewer, config.AI.Provider),
			MaxLogLength: config.AI.MaxLogLength,
		}),
		ingestor: ingestion.New(cache, logger, ingestionOptions(config.JobDescription)),
	}
	if closer != nil {
		c.closers = append(c.closers, closer)
	}

	return c, nil
}

func newStreamer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Streamer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = providerOpenAI
	}

	env := []string{"INTERVIEW_COACH_API_KEY", "KEY"}
	switch provider {
	case providerOpenAI:
		env = append(env, "OPENAI_API_KEY")
	case providerGemini:
		env = append(env, "GEMINI_API_KEY")
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  provider + " api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   env,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (or set ai.api-key / ai.api-key-file)", err)
	}

	if provider == providerGemini {
		return gemini.NewGenerator(ctx, apiKey, logger, cfg.MaxLogLength)
	}
	return openaichat.NewClient(apiKey, cfg.BaseURL, logger, cfg.MaxLogLength)
}

func newCache(ctx context.Context, cfg *CacheConfig, logger *zap.Logger) (ingestion.Cache, func() error, error) {
	if cfg == nil {
		return ingestion.NewMemoryCache(), nil, nil
	}

	switch strings.TrimSpace(strings.ToLower(cfg.Backend)) {
	case "", cacheMemory:
		return ingestion.NewMemoryCache(), nil, nil
	case cacheLRU:
		cache, err := ingestion.NewLRUCache(cfg.Capacity)
		if err != nil {
			return nil, nil, fmt.Errorf("creating lru cache: %w", err)
		}
		logger.Debug("using lru job description cache", zap.Int("capacity", cfg.Capacity))
		return cache, nil, nil
	case cacheRedis:
		if cfg.Redis == nil {
			return nil, nil, fmt.Errorf("cache.redis is required for the redis backend")
		}
		cache, err := ingestion.NewRedisCache(ctx, ingestion.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Debug("using redis job description cache", zap.String("address", cfg.Redis.Address))
		return cache, cache.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}

// personaFromConfig overrides the persona defaults. The default model names
// an OpenAI model, so other providers fall back to their own default.
func personaFromConfig(cfg *PersonaConfig, provider string) interview.Persona {
	if cfg == nil {
		cfg = &PersonaConfig{}
	}

	persona := interview.Persona{Params: ai.Params{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}}
	if persona.Model == "" && strings.EqualFold(strings.TrimSpace(provider), providerGemini) {
		persona.Model = gemini.DefaultModel
	}

	return persona
}

func ingestionOptions(cfg *JobDescriptionConfig) *ingestion.Options {
	if cfg == nil {
		return nil
	}

	return &ingestion.Options{UserAgent: cfg.UserAgent, Timeout: cfg.Timeout}
}
