package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

// BookCache implements domain.BookCache by storing the latest raw book per
// token as a JSON blob with a short TTL. Books are read whole and written
// whole: the scanner only ever needs the most recent full ladder, so there is
// no per-level structure to maintain.
//
// Key schema:
//
//	book:{tokenID}  - JSON-encoded domain.RawBook, expires after the TTL
type BookCache struct {
	rdb *redis.Client
}

// NewBookCache creates a BookCache backed by the given Client.
func NewBookCache(c *Client) *BookCache {
	return &BookCache{rdb: c.Underlying()}
}

func bookKey(tokenID string) string {
	return "book:" + tokenID
}

// SetBook stores the raw book under its token ID, replacing any previous
// snapshot. A TTL of zero stores the book without expiry.
func (bc *BookCache) SetBook(ctx context.Context, book *domain.RawBook, ttl time.Duration) error {
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("redis: marshal book %s: %w", book.TokenID, err)
	}
	if err := bc.rdb.Set(ctx, bookKey(book.TokenID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set book %s: %w", book.TokenID, err)
	}
	return nil
}

// GetBook returns the latest raw book for the token, or domain.ErrNotFound
// when no unexpired snapshot exists.
func (bc *BookCache) GetBook(ctx context.Context, tokenID string) (*domain.RawBook, error) {
	data, err := bc.rdb.Get(ctx, bookKey(tokenID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get book %s: %w", tokenID, err)
	}

	var book domain.RawBook
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("redis: decode book %s: %w", tokenID, err)
	}
	return &book, nil
}

// Compile-time interface check.
var _ domain.BookCache = (*BookCache)(nil)
