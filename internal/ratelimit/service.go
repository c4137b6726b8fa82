package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	dErrors "taskhive/pkg/domain-errors"
)

// Store is the windowed-count capability the limiter needs. Implementations
// must record, purge, and count as one atomic unit per check.
type Store interface {
	// AddAndCount records now as a request timestamp under key, purges
	// timestamps older than now-window, refreshes the key's own expiry to
	// window so abandoned keys self-clean, and returns the count of
	// timestamps remaining in the window (including the one just added).
	AddAndCount(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error)
}

// Limiter throttles requests per logical key over an approximate sliding
// window. Timestamps are stored individually, so a check costs
// O(requests-in-window) - fine at the 3-5 requests/hour rates used here.
type Limiter struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// WithClock overrides the time source. Used by tests to advance the window.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

func New(store Store, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("rate limit store is required")
	}

	l := &Limiter{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l, nil
}

// Allow records the current request under key and reports whether it fits in
// the window. The request is counted even when denied, so hammering a limited
// key keeps it limited. A store error fails closed: the request is denied and
// the error returned alongside.
func (l *Limiter) Allow(ctx context.Context, key string, maxRequests int, window time.Duration) (bool, error) {
	if maxRequests <= 0 || window <= 0 {
		return false, dErrors.New(dErrors.CodeInvalidInput, "max requests and window must be positive")
	}

	count, err := l.store.AddAndCount(ctx, key, l.now(), window)
	if err != nil {
		l.logger.ErrorContext(ctx, "rate limit check failed, denying request",
			"key", key,
			"error", err,
		)
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check rate limit")
	}

	return count <= int64(maxRequests), nil
}
