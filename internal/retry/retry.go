// Package retry re-runs generation calls that fail with transient errors.
package retry

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"time"
)

const (
	// DefaultMaxRetries is the default number of retry attempts.
	DefaultMaxRetries = 3
	// DefaultBaseDelay is the base delay for exponential backoff.
	DefaultBaseDelay = 5 * time.Second
	// DefaultMaxJitterPercent is the maximum jitter percentage (0-25%).
	DefaultMaxJitterPercent = 25
)

// Config holds retry configuration.
type Config struct {
	MaxRetries       int
	BaseDelay        time.Duration
	MaxJitterPercent int
	// Logger receives retry decisions; nil disables logging.
	Logger *slog.Logger
	// OnRetry, when set, is called before each backoff sleep.
	OnRetry func(delay time.Duration, attempt, max int)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		MaxRetries:       DefaultMaxRetries,
		BaseDelay:        DefaultBaseDelay,
		MaxJitterPercent: DefaultMaxJitterPercent,
	}
}

// Operation produces text or fails.
type Operation func(ctx context.Context) (string, error)

// Do runs op, retrying retryable errors with exponential backoff and jitter.
// It returns the last attempt's output and error.
func Do(ctx context.Context, cfg Config, op Operation) (string, error) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxJitterPercent < 0 || cfg.MaxJitterPercent > 100 {
		cfg.MaxJitterPercent = DefaultMaxJitterPercent
	}

	var (
		out string
		err error
	)
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		out, err = op(ctx)
		if err == nil {
			return out, nil
		}

		if !IsRetryable(err) {
			if cfg.Logger != nil {
				cfg.Logger.Debug("non-retryable error, stopping", "error", err)
			}
			return out, err
		}

		if attempt >= cfg.MaxRetries {
			if cfg.Logger != nil {
				cfg.Logger.Warn("retry attempts exhausted", "attempts", cfg.MaxRetries, "error", err)
			}
			return out, err
		}

		delay := CalculateDelay(cfg.BaseDelay, attempt, cfg.MaxJitterPercent)
		if cfg.OnRetry != nil {
			cfg.OnRetry(delay, attempt+1, cfg.MaxRetries)
		}
		if cfg.Logger != nil {
			cfg.Logger.Info("retrying",
				"delay", delay.Round(time.Millisecond),
				"attempt", attempt+1,
				"max", cfg.MaxRetries,
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case <-time.After(delay):
		}
	}

	return out, err
}

// CalculateDelay returns the delay for a given attempt using exponential backoff with jitter.
// Formula: base * 2^attempt + jitter (0-maxJitterPercent% of calculated delay)
func CalculateDelay(base time.Duration, attempt int, maxJitterPercent int) time.Duration {
	multiplier := 1 << attempt
	delay := base * time.Duration(multiplier)

	if maxJitterPercent > 0 {
		jitterRange := float64(delay) * float64(maxJitterPercent) / 100.0
		delay += time.Duration(rand.Float64() * jitterRange)
	}

	return delay
}

// retryablePatterns contains error message patterns that indicate retryable errors.
var retryablePatterns = []string{
	"rate limit",
	"rate_limit",
	"timeout",
	"timed out",
	"deadline exceeded",
	"network",
	"connection refused",
	"connection reset",
	"temporary failure",
	"service unavailable",
	"503",
	"502",
	"529",
	"429",
	"overloaded",
	"too many requests",
}

// nonRetryablePatterns contains error message patterns that indicate non-retryable errors.
var nonRetryablePatterns = []string{
	"invalid",
	"not found",
	"unauthorized",
	"forbidden",
	"authentication",
	"permission denied",
	"bad request",
	"400",
	"401",
	"403",
	"404",
}

// IsRetryable determines if an error is retryable.
// Rate limit, timeout, and network errors are retryable.
// Invalid requests and auth errors are not. Cancellation never is.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if err == context.Canceled {
		return false
	}

	errStr := strings.ToLower(err.Error())

	for _, pattern := range nonRetryablePatterns {
		if strings.Contains(errStr, pattern) {
			return false
		}
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	// Unknown errors are not retried.
	return false
}
