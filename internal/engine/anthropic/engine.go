// Package anthropic generates lessons through the Anthropic Messages API
// using langchaingo.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jywlabs/lessongen/internal/engine"
	"github.com/jywlabs/lessongen/internal/prompt"
	"github.com/tmc/langchaingo/llms"
	lcanthropic "github.com/tmc/langchaingo/llms/anthropic"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

// APIKeyEnv names the environment variable holding the API key.
const APIKeyEnv = "ANTHROPIC_API_KEY"

func init() {
	engine.RegisterEngine("anthropic", func(cfg engine.Config) (engine.Engine, error) {
		return New(cfg)
	})
}

// Engine calls the Anthropic API.
type Engine struct {
	model     llms.Model
	modelName string
	maxTokens int
	timeout   time.Duration
	display   *engine.Display
	logger    *slog.Logger
}

// New creates an Anthropic engine. The API key comes from cfg.APIKey or
// ANTHROPIC_API_KEY.
func New(cfg engine.Config) (*Engine, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv(APIKeyEnv)
	}
	if key == "" {
		return nil, fmt.Errorf("anthropic engine: %s is not set", APIKeyEnv)
	}
	name := cfg.Model
	if name == "" {
		name = DefaultModel
	}

	opts := []lcanthropic.Option{
		lcanthropic.WithToken(key),
		lcanthropic.WithModel(name),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, lcanthropic.WithBaseURL(cfg.BaseURL))
	}
	llm, err := lcanthropic.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("anthropic engine: %w", err)
	}
	return NewWithModel(llm, name, cfg), nil
}

// NewWithModel wraps an existing langchaingo model.
func NewWithModel(model llms.Model, name string, cfg engine.Config) *Engine {
	return &Engine{
		model:     model,
		modelName: name,
		maxTokens: cfg.MaxTokensOrDefault(),
		timeout:   cfg.TimeoutOrDefault(),
		display:   cfg.Display,
		logger:    cfg.LoggerOrDefault(),
	}
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "anthropic"
}

// Generate implements engine.Engine.
func (e *Engine) Generate(ctx context.Context, req prompt.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System()),
		llms.TextParts(llms.ChatMessageTypeHuman, req.User()),
	}
	resp, err := e.model.GenerateContent(ctx, messages,
		llms.WithMaxTokens(e.maxTokens),
		llms.WithTemperature(0.2),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("execution timed out after %s", e.timeout)
		}
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("anthropic returned no choices")
	}

	choice := resp.Choices[0]
	tokens := tokenCount(choice.GenerationInfo)
	e.logger.Debug("anthropic response",
		"model", e.modelName,
		"stop_reason", choice.StopReason,
		"tokens", tokens,
		"duration", time.Since(start),
	)
	if e.display != nil {
		e.display.ShowEvent(&engine.Event{
			Type: engine.EventResult,
			Data: engine.EventData{Success: true, Tokens: tokens, DurationMs: float64(time.Since(start).Milliseconds())},
		})
	}
	return choice.Content, nil
}

// tokenCount sums the usage fields langchaingo reports in GenerationInfo.
func tokenCount(info map[string]any) int {
	total := 0
	for _, key := range []string{"InputTokens", "OutputTokens"} {
		if n, ok := info[key].(int); ok {
			total += n
		}
	}
	return total
}
