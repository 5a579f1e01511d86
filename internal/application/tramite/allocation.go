package tramite

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/tramites/backend/internal/domain/radicacion"
	"go.uber.org/zap"
)

// Retry defaults for counter allocation
const (
	DefaultMaxAttempts = 3
	DefaultBaseBackoff = 50 * time.Millisecond
)

// RetryPolicy bounds how often a timed-out allocation is retried.
// Only radicacion.ErrAllocationTimeout is retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, BaseBackoff: DefaultBaseBackoff}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseBackoff < 0 {
		p.BaseBackoff = 0
	}
	return p
}

// backoff returns the wait before attempt+1: exponential in attempt with up
// to one base interval of jitter.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	if p.BaseBackoff <= 0 {
		return 0
	}
	d := p.BaseBackoff << (attempt - 1)
	return d + rand.N(p.BaseBackoff)
}

// allocator draws counter values and retries lock timeouts
type allocator struct {
	store  radicacion.CounterStore
	policy RetryPolicy
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func newAllocator(store radicacion.CounterStore, policy RetryPolicy, logger *zap.Logger) *allocator {
	return &allocator{
		store:  store,
		policy: policy.normalized(),
		logger: logger,
		sleep:  sleepContext,
	}
}

// next returns the counter value and the number of attempts it took. issue
// runs on every attempt that gets the lock; its errors are never retried.
func (a *allocator) next(ctx context.Context, key radicacion.CounterKey, issue radicacion.IssueFunc) (int64, int, error) {
	var lastErr error
	for attempt := 1; attempt <= a.policy.MaxAttempts; attempt++ {
		value, err := a.store.Next(ctx, key, issue)
		if err == nil {
			return value, attempt, nil
		}
		if !errors.Is(err, radicacion.ErrAllocationTimeout) {
			return 0, attempt, err
		}
		lastErr = err

		if attempt == a.policy.MaxAttempts {
			break
		}
		wait := a.policy.backoff(attempt)
		a.logger.Warn("Counter lock timeout, retrying",
			zap.String("counter", key.String()),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait))
		if err := a.sleep(ctx, wait); err != nil {
			return 0, attempt, lastErr
		}
	}
	return 0, a.policy.MaxAttempts, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
