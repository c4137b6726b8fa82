package passhistory

import (
	"context"
	"fmt"
	"time"

	dErrors "taskhive/pkg/domain-errors"
)

const keyPrefix = "password_history:"

// Store is the bounded-list capability the guard needs. Implementations keep
// the list most-recent-first and must apply push, trim, and TTL refresh as one
// unit (push-trim-list in store terms).
type Store interface {
	// PushTrim prepends hash, trims the list to depth entries, and resets the
	// whole list's TTL.
	PushTrim(ctx context.Context, key, hash string, depth int, ttl time.Duration) error
	// Recent returns up to depth entries, most recent first.
	Recent(ctx context.Context, key string, depth int) ([]string, error)
}

// Guard prevents reuse of an account's most recent password hashes. History
// beyond the configured depth is unreachable by design.
type Guard struct {
	store     Store
	depth     int
	retention time.Duration
}

func New(store Store, depth int, retention time.Duration) (*Guard, error) {
	if store == nil {
		return nil, fmt.Errorf("password history store is required")
	}
	if depth <= 0 || retention <= 0 {
		return nil, fmt.Errorf("password history depth and retention must be positive")
	}
	return &Guard{store: store, depth: depth, retention: retention}, nil
}

// CheckReuse reports whether the candidate hash may be used, i.e. it does not
// match any of the stored recent hashes. Call this against the pre-update
// history, before Record runs for the new password.
func (g *Guard) CheckReuse(ctx context.Context, accountID, candidateHash string) (bool, error) {
	recent, err := g.store.Recent(ctx, keyPrefix+accountID, g.depth)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read password history")
	}
	for _, hash := range recent {
		if hash == candidateHash {
			return false, nil
		}
	}
	return true, nil
}

// Record pushes the new hash to the front of the account's history, trims it
// to the configured depth, and resets the retention TTL on the whole list.
func (g *Guard) Record(ctx context.Context, accountID, hash string) error {
	if hash == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "password hash cannot be empty")
	}
	if err := g.store.PushTrim(ctx, keyPrefix+accountID, hash, g.depth, g.retention); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record password history")
	}
	return nil
}
