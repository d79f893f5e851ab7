package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/orgball2608/reel-ranker/pkg/logger"
)

// Policy bounds an exponential retry loop.
type Policy struct {
	Attempts uint64 // retries after the first call
	Initial  time.Duration
	Max      time.Duration
	Factor   float64
	Jitter   float64
}

func DefaultPolicy() Policy {
	return Policy{
		Attempts: 3,
		Initial:  500 * time.Millisecond,
		Max:      5 * time.Second,
		Factor:   1.5,
		Jitter:   backoff.DefaultRandomizationFactor,
	}
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.Initial),
		backoff.WithMaxInterval(p.Max),
		backoff.WithMultiplier(p.Factor),
		backoff.WithRandomizationFactor(p.Jitter),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(exp, p.Attempts), ctx)
}

// Do calls fn until it succeeds, returns a Permanent error, runs out of
// attempts or ctx is done.
func Do(ctx context.Context, log logger.Logger, name string, fn func(ctx context.Context) error, p Policy) error {
	attempt := 0
	op := func() error {
		attempt++
		return fn(ctx)
	}

	return backoff.RetryNotify(op, p.backOff(ctx), func(err error, wait time.Duration) {
		log.Warn("Retrying operation",
			"operation", name,
			"attempt", attempt,
			"error", err,
			"wait", wait.Round(time.Millisecond).String(),
		)
	})
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
