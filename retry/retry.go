// Package retry wraps arbitrary operations with classification-aware
// retries and exponential backoff. Permanent failures (validation, auth,
// authorization, not-found) abort on first occurrence; transient failures
// (network, 5xx) are retried until the attempt budget runs out.
//
// The executor keeps no state between calls and is safe for concurrent use.
// Retrying and circuit breaking are independent wrappers; callers who want
// both compose them explicitly around the same operation.
package retry

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/brevity-app/brevity-go/apperr"
	"github.com/brevity-app/brevity-go/metrics"
)

// Config controls retry behavior. The zero value of a field selects its
// default.
type Config struct {
	// MaxAttempts is the number of retries after the first try.
	// The default of 3 gives 4 total tries.
	MaxAttempts int

	// InitialDelay is the wait before the first retry. Default 1s.
	InitialDelay time.Duration

	// MaxDelay caps the backoff delay. Default 30s.
	MaxDelay time.Duration

	// BackoffMultiplier scales the delay between successive retries.
	// Default 2.0.
	BackoffMultiplier float64

	// Hooks are optional side effects. All are no-ops when unset, so the
	// retry logic stays testable without UI or reporting dependencies.
	Hooks Hooks
}

// Hooks are injected capabilities for user notification, logging and error
// reporting. Nil fields disable the corresponding effect.
type Hooks struct {
	// Notify surfaces a user-safe message (a toast in the web product).
	Notify func(message string)

	// Logger receives per-attempt structured logs.
	Logger *slog.Logger

	// Report forwards the final classified error to an external reporter.
	Report func(err *apperr.Error)
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	MaxAttempts:       3,
	InitialDelay:      1 * time.Second,
	MaxDelay:          30 * time.Second,
	BackoffMultiplier: 2.0,
}

func (c Config) normalized() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultConfig.MaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = DefaultConfig.InitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultConfig.MaxDelay
	}
	if c.BackoffMultiplier <= 0 {
		c.BackoffMultiplier = DefaultConfig.BackoffMultiplier
	}
	return c
}

// Do executes op, retrying transient failures with exponential backoff.
// The first try runs immediately; each retry n waits
// InitialDelay × BackoffMultiplier^(n-1), capped at MaxDelay. The wait is
// cooperative: it ends early when ctx is canceled.
//
// Failures are classified through apperr.Classify. A permanent failure
// returns the classified error without consuming further attempts; once
// attempts are exhausted the last classified error is returned.
func Do[T any](ctx context.Context, cfg Config, op func(context.Context) (T, error)) (T, error) {
	var zero T
	cfg = cfg.normalized()

	totalTries := cfg.MaxAttempts + 1
	var lastErr *apperr.Error

	for attempt := 1; attempt <= totalTries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			metrics.RetryAttemptsTotal.WithLabelValues("success").Inc()
			return result, nil
		}

		lastErr = apperr.Classify(err)

		if !lastErr.Retryable() {
			metrics.RetryAttemptsTotal.WithLabelValues("permanent").Inc()
			cfg.Hooks.fail(lastErr, attempt)
			return zero, lastErr
		}

		metrics.RetryAttemptsTotal.WithLabelValues("retryable").Inc()

		if attempt == totalTries {
			break
		}

		delay := backoff(attempt, cfg)
		if l := cfg.Hooks.Logger; l != nil {
			l.Warn("operation failed, retrying",
				"attempt", attempt,
				"of", totalTries,
				"code", lastErr.Code,
				"delay", delay,
			)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	metrics.RetryExhaustedTotal.Inc()
	cfg.Hooks.fail(lastErr, totalTries)
	return zero, lastErr
}

// DoVoid is Do for operations with no result.
func DoVoid(ctx context.Context, cfg Config, op func(context.Context) error) error {
	_, err := Do(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func (h Hooks) fail(err *apperr.Error, attempts int) {
	if h.Logger != nil {
		h.Logger.Error("operation failed",
			"attempts", attempts,
			"code", err.Code,
			"error", err,
		)
	}
	if h.Notify != nil {
		h.Notify(err.UserMessage())
	}
	if h.Report != nil {
		h.Report(err)
	}
}

// backoff computes the delay before retry number attempt.
func backoff(attempt int, cfg Config) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffMultiplier, float64(attempt-1))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	return time.Duration(delay)
}
