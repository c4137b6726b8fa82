package lockout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	dErrors "taskhive/pkg/domain-errors"
)

const keyPrefix = "failed_login:"

// Store is the key-value capability the tracker needs. Implementations must
// make Increment atomic (native increment-with-expiry, not read-modify-write)
// so concurrent failed logins never lose updates.
type Store interface {
	// Increment adds one to the counter under key. The TTL is attached when
	// the counter is created, never extended afterwards, so an account can't
	// stay soft-locked past the window. Returns the post-increment count.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Count returns the current counter value, zero when absent.
	Count(ctx context.Context, key string) (int64, error)
	// Clear deletes the counter.
	Clear(ctx context.Context, key string) error
}

// Tracker counts failed authentication attempts per account within a rolling
// window and reports accounts that crossed the lockout threshold.
type Tracker struct {
	store     Store
	threshold int
	window    time.Duration
	logger    *slog.Logger
}

type Option func(*Tracker)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

func New(store Store, threshold int, window time.Duration, opts ...Option) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("lockout store is required")
	}
	if threshold <= 0 || window <= 0 {
		return nil, fmt.Errorf("lockout threshold and window must be positive")
	}

	t := &Tracker{
		store:     store,
		threshold: threshold,
		window:    window,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	return t, nil
}

// RecordFailure increments the account's failure counter and reports whether
// this attempt just crossed the lockout threshold.
func (t *Tracker) RecordFailure(ctx context.Context, accountID string) (bool, error) {
	count, err := t.store.Increment(ctx, keyPrefix+accountID, t.window)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record auth failure")
	}

	crossed := count == int64(t.threshold)
	if crossed {
		t.logger.InfoContext(ctx, "account locked after repeated failures",
			"account_id", accountID,
			"attempts", count,
		)
	}
	return crossed, nil
}

// IsLocked reports whether the account's failure counter reached the
// threshold. A store error fails closed: the account is reported locked and
// the error is returned alongside so callers can log it.
func (t *Tracker) IsLocked(ctx context.Context, accountID string) (bool, error) {
	count, err := t.store.Count(ctx, keyPrefix+accountID)
	if err != nil {
		return true, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check lockout state")
	}
	return count >= int64(t.threshold), nil
}

// Clear deletes the account's failure counter. Called on successful login.
func (t *Tracker) Clear(ctx context.Context, accountID string) error {
	if err := t.store.Clear(ctx, keyPrefix+accountID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear auth failures")
	}
	return nil
}
