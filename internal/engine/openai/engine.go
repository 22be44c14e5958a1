// Package openai generates lessons through any OpenAI-compatible chat
// completions endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jywlabs/lessongen/internal/engine"
	"github.com/jywlabs/lessongen/internal/prompt"
	goopenai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Environment variables consulted when the config leaves them unset.
const (
	APIKeyEnv  = "OPENAI_API_KEY"
	BaseURLEnv = "OPENAI_BASE_URL"
)

func init() {
	engine.RegisterEngine("openai", func(cfg engine.Config) (engine.Engine, error) {
		return New(cfg)
	})
}

// chatClient is the subset of the go-openai client used here.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

// Engine calls a chat completions API.
type Engine struct {
	client    chatClient
	model     string
	maxTokens int
	timeout   time.Duration
	display   *engine.Display
	logger    *slog.Logger
}

// New creates an OpenAI engine. A base URL (config or OPENAI_BASE_URL)
// points it at a compatible server; the key may then be empty.
func New(cfg engine.Config) (*Engine, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv(APIKeyEnv)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv(BaseURLEnv)
	}
	if key == "" && baseURL == "" {
		return nil, fmt.Errorf("openai engine: %s is not set", APIKeyEnv)
	}

	clientCfg := goopenai.DefaultConfig(key)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	return newWithClient(goopenai.NewClientWithConfig(clientCfg), cfg), nil
}

func newWithClient(client chatClient, cfg engine.Config) *Engine {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Engine{
		client:    client,
		model:     model,
		maxTokens: cfg.MaxTokensOrDefault(),
		timeout:   cfg.TimeoutOrDefault(),
		display:   cfg.Display,
		logger:    cfg.LoggerOrDefault(),
	}
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "openai"
}

// Generate implements engine.Engine.
func (e *Engine) Generate(ctx context.Context, req prompt.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: e.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System()},
			{Role: goopenai.ChatMessageRoleUser, Content: req.User()},
		},
		MaxCompletionTokens: e.maxTokens,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("execution timed out after %s", e.timeout)
		}
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("OpenAI returned no choices")
	}

	e.logger.Debug("openai response",
		"model", e.model,
		"finish_reason", resp.Choices[0].FinishReason,
		"tokens", resp.Usage.TotalTokens,
		"duration", time.Since(start),
	)
	if e.display != nil {
		e.display.ShowEvent(&engine.Event{
			Type: engine.EventResult,
			Data: engine.EventData{Success: true, Tokens: resp.Usage.TotalTokens, DurationMs: float64(time.Since(start).Milliseconds())},
		})
	}
	return resp.Choices[0].Message.Content, nil
}
