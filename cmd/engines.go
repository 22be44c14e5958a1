package cmd

import (
	"log/slog"

	"github.com/jywlabs/lessongen/internal/config"
	"github.com/jywlabs/lessongen/internal/engine"
	"github.com/jywlabs/lessongen/internal/retry"

	// Register available engines.
	_ "github.com/jywlabs/lessongen/internal/engine/anthropic"
	_ "github.com/jywlabs/lessongen/internal/engine/claude"
	_ "github.com/jywlabs/lessongen/internal/engine/codex"
	_ "github.com/jywlabs/lessongen/internal/engine/openai"
	_ "github.com/jywlabs/lessongen/internal/engine/pi"
)

// newEngine creates the named engine wrapped with transient-error retry.
// Flag values win over the configuration; an empty name or model falls back
// to the configured one.
func newEngine(cfg *config.Config, name, model string, display *engine.Display, logger *slog.Logger) (engine.Engine, error) {
	if name == "" {
		name = cfg.Engine
	}
	if model == "" {
		model = cfg.Model
	}
	eng, err := engine.New(name, engine.Config{
		Model:   model,
		Display: display,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	rc := retry.DefaultConfig()
	rc.Logger = logger
	return engine.WithRetry(eng, rc, display), nil
}
