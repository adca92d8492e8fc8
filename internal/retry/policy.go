// Package retry implements the backoff schedule for retrying failed command tasks.
package retry

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

// Policy holds retry/backoff settings. It is immutable after construction.
// The zero Policy never retries.
type Policy struct {
	Mode       config.RetryBackoffMode // fixed|linear|exponential
	Initial    time.Duration           // base delay
	Max        time.Duration           // cap for growth
	MaxRetries int                     // retries after the first failure
}

// DefaultPolicy returns linear backoff from 1s capped at 30s, without retries.
func DefaultPolicy() Policy {
	return Policy{Mode: config.RetryBackoffLinear, Initial: time.Second, Max: 30 * time.Second}
}

// FromConfig builds a policy from build.retry; zero or invalid values fall
// back to DefaultPolicy.
func FromConfig(rc config.RetryConfig) Policy {
	p := DefaultPolicy()
	if rc.MaxRetries > 0 {
		p.MaxRetries = rc.MaxRetries
	}
	if rc.Initial > 0 {
		p.Initial = rc.Initial
	}
	if rc.Max > 0 {
		p.Max = rc.Max
	}
	switch rc.Backoff {
	case config.RetryBackoffFixed, config.RetryBackoffLinear, config.RetryBackoffExponential:
		p.Mode = rc.Backoff
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the wait before retry number retryCount (first retry => 1).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case config.RetryBackoffFixed:
		return p.Initial
	case config.RetryBackoffExponential:
		d = p.Initial * (1 << (retryCount - 1))
	default:
		d = time.Duration(retryCount) * p.Initial
	}
	if d > p.Max || d < 0 {
		return p.Max
	}
	return d
}

// Do calls fn until it succeeds or MaxRetries retries have failed. onRetry,
// when non-nil, is called before each wait. Cancellation of ctx stops
// retrying and is joined to the last error.
func (p Policy) Do(ctx context.Context, fn func() error, onRetry func(attempt int, delay time.Duration, err error)) error {
	err := fn()
	for attempt := 1; err != nil && attempt <= p.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%w (not retried: %w)", err, ctx.Err())
		}
		delay := p.Delay(attempt)
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w (retry aborted: %w)", err, ctx.Err())
		case <-timer.C:
		}
		err = fn()
	}
	return err
}
