// Package feed mirrors the Polymarket CLOB book channel into the shared book
// cache, so that scan cycles running elsewhere read fresh ladders without
// paying a REST round trip per token.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/platform/polymarket"
)

// MarketSource provides the set of markets whose books should be mirrored.
type MarketSource interface {
	Discover(ctx context.Context) ([]domain.Market, error)
}

// BookSubscriber is the slice of the WebSocket client the feed needs.
type BookSubscriber interface {
	Connect(ctx context.Context) error
	SubscribeBooks(ctx context.Context, tokenIDs []string) error
	OnBookUpdate(handler polymarket.BookUpdateHandler)
	Close() error
}

// BookFeed subscribes to book snapshots for the discovered markets and writes
// each one into the cache under the configured TTL. Reconnection and
// subscription restore are handled by the WebSocket client itself.
type BookFeed struct {
	source   MarketSource
	ws       BookSubscriber
	cache    domain.BookCache
	cacheTTL time.Duration
	logger   *slog.Logger

	written atomic.Int64
}

// NewBookFeed creates a new BookFeed.
func NewBookFeed(source MarketSource, ws BookSubscriber, cache domain.BookCache, cacheTTL time.Duration, logger *slog.Logger) *BookFeed {
	return &BookFeed{
		source:   source,
		ws:       ws,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With(slog.String("component", "book_feed")),
	}
}

// Run discovers the markets to mirror, subscribes to their book channels, and
// blocks until ctx is cancelled. Cache writes happen on the WebSocket client's
// read goroutine, so the handler must not block.
func (f *BookFeed) Run(ctx context.Context) error {
	markets, err := f.source.Discover(ctx)
	if err != nil {
		return fmt.Errorf("feed: discovering markets: %w", err)
	}

	var tokenIDs []string
	for _, m := range markets {
		tokenIDs = append(tokenIDs, m.TokenIDList()...)
	}
	if len(tokenIDs) == 0 {
		f.logger.Info("no tokens to mirror, exiting")
		return nil
	}

	f.ws.OnBookUpdate(func(book *domain.RawBook) {
		writeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := f.cache.SetBook(writeCtx, book, f.cacheTTL); err != nil {
			f.logger.Warn("book cache write failed",
				slog.String("token_id", book.TokenID),
				slog.String("error", err.Error()),
			)
			return
		}
		f.written.Add(1)
	})

	if err := f.ws.Connect(ctx); err != nil {
		return fmt.Errorf("feed: connect: %w", err)
	}
	defer f.ws.Close()

	if err := f.ws.SubscribeBooks(ctx, tokenIDs); err != nil {
		return fmt.Errorf("feed: subscribe: %w", err)
	}
	f.logger.Info("book feed subscribed",
		slog.Int("markets", len(markets)),
		slog.Int("tokens", len(tokenIDs)),
	)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("book feed stopped", slog.Int64("books_written", f.written.Load()))
			return ctx.Err()
		case <-ticker.C:
			f.logger.Info("book feed alive", slog.Int64("books_written", f.written.Load()))
		}
	}
}

// BooksWritten reports how many book snapshots have been cached so far.
func (f *BookFeed) BooksWritten() int64 {
	return f.written.Load()
}
