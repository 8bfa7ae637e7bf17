package domain

import (
	"context"
	"time"
)

// BookCache holds the latest raw book per token with a short TTL. The WS feed
// writes into it and the scanner reads through it before falling back to REST.
type BookCache interface {
	SetBook(ctx context.Context, book *RawBook, ttl time.Duration) error
	GetBook(ctx context.Context, tokenID string) (*RawBook, error)
}

// StreamMessage is one entry read from the signal stream.
type StreamMessage struct {
	ID     string
	Values map[string]any
}

// SignalBus publishes ranked candidates for downstream consumers.
type SignalBus interface {
	PublishCandidate(ctx context.Context, cand SignalCandidate) error
	ReadCandidates(ctx context.Context, lastID string, count int64, block time.Duration) ([]StreamMessage, error)
}

// RateLimiter bounds outbound request rates against the exchange APIs.
type RateLimiter interface {
	// Allow reports whether one more request may proceed under the limit.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	// Wait blocks until a slot is available or the context is done.
	Wait(ctx context.Context, key string, limit int, window time.Duration) error
}

// LockManager provides a distributed mutex so only one scanner instance runs
// cycles against a shared database.
type LockManager interface {
	// Acquire takes the named lock, returning a release token or ErrLockHeld.
	Acquire(ctx context.Context, name string, ttl time.Duration) (string, error)
	// Release frees the lock if the token still owns it.
	Release(ctx context.Context, name, token string) error
	// Refresh extends the TTL of a held lock.
	Refresh(ctx context.Context, name, token string, ttl time.Duration) error
}
