// Package claude generates lessons through the Claude Code CLI in print mode.
package claude

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
	engine.RegisterEngine("claude", func(cfg engine.Config) (engine.Engine, error) {
		return New(cfg), nil
	})
}

// Engine executes prompts using Claude Code CLI.
type Engine struct {
	Model   string
	Timeout time.Duration

	display *engine.Display
	logger  *slog.Logger
}

// New creates a new Claude engine.
func New(cfg engine.Config) *Engine {
	return &Engine{
		Model:   cfg.Model,
		Timeout: cfg.TimeoutOrDefault(),
		display: cfg.Display,
		logger:  cfg.LoggerOrDefault(),
	}
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "claude"
}

// CLICommand returns the CLI executable name.
func (e *Engine) CLICommand() string {
	return "claude"
}

// BuildArgs returns the CLI arguments. The user message is sent on stdin.
func (e *Engine) BuildArgs(system string) []string {
	args := []string{
		"-p",
		"--output-format", "json",
	}
	if e.Model != "" {
		args = append(args, "--model", e.Model)
	}
	return append(args, "--system-prompt", system)
}

// Generate implements engine.Engine.
func (e *Engine) Generate(ctx context.Context, req prompt.Request) (string, error) {
	timeout := e.Timeout
	if timeout == 0 {
		timeout = engine.DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, e.CLICommand(), e.BuildArgs(req.System())...)
	cmd.Stdin = strings.NewReader(req.User())
	cmd.SysProcAttr = newSysProcAttr()
	setupProcessCleanup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", fmt.Errorf("execution timed out after %s", timeout)
		}
		return "", ctxErr
	}

	res, parseErr := ParseResult(stdout.Bytes())
	if err != nil && (parseErr != nil || strings.TrimSpace(stderr.String()) != "") {
		return "", fmt.Errorf("prompt failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}
	if parseErr != nil {
		return "", parseErr
	}

	e.logger.Debug("claude response",
		"model", e.Model,
		"tokens", res.Tokens,
		"duration", time.Since(start),
	)
	if e.display != nil {
		e.display.ShowEvent(&engine.Event{
			Type: engine.EventResult,
			Data: engine.EventData{Success: !res.IsError, Tokens: res.Tokens, DurationMs: res.DurationMs},
		})
	}

	if res.IsError {
		return "", fmt.Errorf("claude returned an error: %s", res.Text)
	}
	return res.Text, nil
}
