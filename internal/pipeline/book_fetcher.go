package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/config"
	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

// restLimiterKey buckets all CLOB REST book requests under one rate limit.
const restLimiterKey = "clob:book"

// BookSource retrieves a full order book ladder for one token over REST.
type BookSource interface {
	GetBook(ctx context.Context, tokenID string) (*domain.RawBook, error)
}

// BookFetcher collects the raw books for a set of markets. It reads through
// the short-TTL book cache first and falls back to rate-limited REST calls,
// writing fresh ladders back into the cache for the next cycle.
type BookFetcher struct {
	source  BookSource
	cache   domain.BookCache
	limiter domain.RateLimiter
	cfg     config.ScannerConfig
	logger  *slog.Logger
}

// NewBookFetcher creates a new BookFetcher.
func NewBookFetcher(source BookSource, cache domain.BookCache, limiter domain.RateLimiter, cfg config.ScannerConfig, logger *slog.Logger) *BookFetcher {
	return &BookFetcher{
		source:  source,
		cache:   cache,
		limiter: limiter,
		cfg:     cfg,
		logger:  logger,
	}
}

// FetchBooks fetches one raw book per token across all given markets, using a
// bounded worker pool. A token whose fetch fails is logged and skipped so a
// single bad book cannot sink the whole cycle; only context cancellation
// aborts the batch.
func (f *BookFetcher) FetchBooks(ctx context.Context, markets []domain.Market) ([]*domain.RawBook, error) {
	type tokenRef struct {
		marketID string
		tokenID  string
	}

	var refs []tokenRef
	for _, m := range markets {
		for _, tokenID := range m.TokenIDList() {
			refs = append(refs, tokenRef{marketID: m.ID, tokenID: tokenID})
		}
	}

	var (
		mu    sync.Mutex
		books []*domain.RawBook
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.FetchWorkers)

	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			book, err := f.fetchOne(ctx, ref.marketID, ref.tokenID)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				f.logger.Warn("book fetch failed",
					slog.String("market_id", ref.marketID),
					slog.String("token_id", ref.tokenID),
					slog.String("error", err.Error()),
				)
				return nil
			}
			mu.Lock()
			books = append(books, book)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching books: %w", err)
	}

	f.logger.Info("book fetch complete",
		slog.Int("tokens", len(refs)),
		slog.Int("fetched", len(books)),
	)
	return books, nil
}

// fetchOne resolves one token's book, cache first. Books served from the
// cache carry the market ID stamped at write time; REST fallbacks get it
// stamped here before the cache write.
func (f *BookFetcher) fetchOne(ctx context.Context, marketID, tokenID string) (*domain.RawBook, error) {
	if cached, err := f.cache.GetBook(ctx, tokenID); err == nil {
		if cached.MarketID == "" {
			cached.MarketID = marketID
		}
		return cached, nil
	} else if ctx.Err() != nil {
		return nil, err
	}

	if err := f.limiter.Wait(ctx, restLimiterKey, f.cfg.RequestsPerSec, time.Second); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	book, err := f.source.GetBook(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if book.MarketID == "" {
		book.MarketID = marketID
	}

	if err := f.cache.SetBook(ctx, book, f.cfg.BookCacheTTL.Duration); err != nil {
		f.logger.Warn("book cache write failed",
			slog.String("token_id", tokenID),
			slog.String("error", err.Error()),
		)
	}
	return book, nil
}
