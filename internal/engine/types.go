package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/jywlabs/lessongen/internal/prompt"
)

// Event represents a normalized event from any engine's output.
type Event struct {
	Type   EventType // Category of event
	Detail string    // Message excerpt, tool name, etc.
	Data   EventData // Additional structured data
}

// EventType categorizes engine output events.
type EventType string

const (
	EventInit   EventType = "init"   // Session initialization
	EventText   EventType = "text"   // Text response
	EventResult EventType = "result" // Final result
	EventError  EventType = "error"  // Error occurred
)

// EventData holds optional structured data for events.
type EventData struct {
	Model      string  // Model name (for init events)
	Success    bool    // Success status (for result events)
	Tokens     int     // Token count (for result events)
	DurationMs float64 // Duration in ms (for result events)
	Message    string  // Error or info message
}

// Engine is a text-generation capability: given a structured request it
// produces a text response.
type Engine interface {
	// Name returns the engine identifier (e.g., "claude", "openai")
	Name() string

	// Generate sends req and returns the raw response text.
	Generate(ctx context.Context, req prompt.Request) (string, error)
}

// Config carries the settings shared by every engine constructor.
// Fields an engine does not use are ignored.
type Config struct {
	Model   string
	Timeout time.Duration
	APIKey  string
	BaseURL string
	// MaxTokens caps the response length for API engines.
	MaxTokens int
	Display   *Display
	Logger    *slog.Logger
}

// DefaultTimeout for a single generation round trip.
const DefaultTimeout = 10 * time.Minute

// DefaultMaxTokens is large enough for a complete lesson file.
const DefaultMaxTokens = 8192

// TimeoutOrDefault returns c.Timeout, or DefaultTimeout when unset.
func (c Config) TimeoutOrDefault() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// MaxTokensOrDefault returns c.MaxTokens, or DefaultMaxTokens when unset.
func (c Config) MaxTokensOrDefault() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return DefaultMaxTokens
}

// LoggerOrDefault returns c.Logger, or slog.Default when unset.
func (c Config) LoggerOrDefault() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
