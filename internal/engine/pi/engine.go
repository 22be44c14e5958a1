// Package pi generates lessons through the pi coding agent CLI in plain
// text print mode.
package pi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/jywlabs/lessongen/internal/engine"
	"github.com/jywlabs/lessongen/internal/prompt"
)

func init() {
	engine.RegisterEngine("pi", func(cfg engine.Config) (engine.Engine, error) {
		return New(cfg), nil
	})
}

// Engine executes prompts using the pi CLI.
type Engine struct {
	Timeout time.Duration
	model   string

	display *engine.Display
	logger  *slog.Logger
}

// New creates a new Pi engine.
func New(cfg engine.Config) *Engine {
	return &Engine{
		Timeout: cfg.TimeoutOrDefault(),
		model:   cfg.Model,
		display: cfg.Display,
		logger:  cfg.LoggerOrDefault(),
	}
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "pi"
}

// CLICommand returns the CLI executable name.
func (e *Engine) CLICommand() string {
	return "pi"
}

// BuildArgs returns CLI arguments for plain text output.
// The prompt is passed via stdin to avoid OS argument length limits and
// pi's silent truncation of long args.
func (e *Engine) BuildArgs() []string {
	args := []string{
		"-p",
		"--no-session",
	}
	if e.model != "" {
		args = append(args, "--model", e.model)
	}
	return args
}

// Generate implements engine.Engine. pi has no separate system prompt, so
// the request is flattened.
func (e *Engine) Generate(ctx context.Context, req prompt.Request) (string, error) {
	timeout := e.Timeout
	if timeout == 0 {
		timeout = engine.DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, e.CLICommand(), e.BuildArgs()...)
	cmd.Stdin = strings.NewReader(prompt.Text(req))
	cmd.SysProcAttr = newSysProcAttr()
	setupProcessCleanup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", fmt.Errorf("prompt timed out after %s", timeout)
		}
		return "", ctxErr
	}
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	text := stdout.String()
	e.logger.Debug("pi response", "model", e.model, "bytes", len(text), "duration", time.Since(start))
	if e.display != nil {
		e.display.ShowEvent(&engine.Event{
			Type: engine.EventResult,
			Data: engine.EventData{Success: true, DurationMs: float64(time.Since(start).Milliseconds())},
		})
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("pi returned no output")
	}
	return text, nil
}
