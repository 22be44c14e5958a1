package engine

import (
	"context"
	"time"

	"github.com/jywlabs/lessongen/internal/prompt"
	"github.com/jywlabs/lessongen/internal/retry"
)

// retrying wraps an engine so transient transport failures (rate limits,
// timeouts, overload) are retried with backoff.
type retrying struct {
	Engine
	cfg retry.Config
}

// WithRetry returns e wrapped with retry behavior. When display is set the
// backoff is shown to the user.
func WithRetry(e Engine, cfg retry.Config, display *Display) Engine {
	if display != nil && cfg.OnRetry == nil {
		cfg.OnRetry = func(delay time.Duration, attempt, max int) {
			display.ShowRetry(attempt, max, delay)
		}
	}
	return &retrying{Engine: e, cfg: cfg}
}

// Generate implements Engine.
func (r *retrying) Generate(ctx context.Context, req prompt.Request) (string, error) {
	return retry.Do(ctx, r.cfg, func(ctx context.Context) (string, error) {
		return r.Engine.Generate(ctx, req)
	})
}
