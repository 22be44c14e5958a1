// Package codex generates lessons through the OpenAI Codex CLI.
package codex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/jywlabs/lessongen/internal/engine"
	"github.com/jywlabs/lessongen/internal/prompt"
)

func init() {
	engine.RegisterEngine("codex", func(cfg engine.Config) (engine.Engine, error) {
		return New(cfg), nil
	})
}

// Engine executes prompts using OpenAI Codex CLI.
type Engine struct {
	Model   string
	Timeout time.Duration

	display *engine.Display
	logger  *slog.Logger
}

// New creates a new Codex engine.
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
	return "codex"
}

// CLICommand returns the CLI executable name.
func (e *Engine) CLICommand() string {
	return "codex"
}

// BuildArgs returns the CLI arguments. The prompt is read from stdin ("-").
func (e *Engine) BuildArgs() []string {
	args := []string{
		"exec",
		"--json",
		"--skip-git-repo-check",
		"--sandbox", "read-only",
	}
	if e.Model != "" {
		args = append(args, "--model", e.Model)
	}
	return append(args, "-")
}

// Generate implements engine.Engine. Codex has no separate system role, so
// the flattened request is sent.
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

	parser := NewParser()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = io.MultiWriter(&lineWriter{parser: parser, display: e.display}, &stdout)
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", fmt.Errorf("execution timed out after %s", timeout)
		}
		return "", ctxErr
	}

	if failure := parser.Failure(); failure != "" {
		return "", fmt.Errorf("codex turn failed: %s", failure)
	}
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	text, ok := parser.Message()
	if !ok {
		return "", errors.New("no agent message in codex output")
	}

	e.logger.Debug("codex response",
		"model", e.Model,
		"tokens", parser.Tokens(),
		"duration", time.Since(start),
	)
	return text, nil
}

// lineWriter feeds complete JSONL lines to the parser as they arrive.
type lineWriter struct {
	parser  *Parser
	display *engine.Display
	buffer  []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buffer = append(w.buffer, p...)
	for {
		idx := bytes.IndexByte(w.buffer, '\n')
		if idx == -1 {
			break
		}
		line := w.buffer[:idx]
		w.buffer = w.buffer[idx+1:]

		event := w.parser.ParseLine(line)
		if w.display != nil {
			w.display.ShowEvent(event)
		}
	}
	return len(p), nil
}
