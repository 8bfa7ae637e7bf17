package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/config"
	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

func mkBook(tokenID string, bid, ask float64) *domain.RawBook {
	return &domain.RawBook{
		TokenID:   tokenID,
		Bids:      []domain.PriceLevel{{Price: bid, Size: 100}},
		Asks:      []domain.PriceLevel{{Price: ask, Size: 100}},
		Timestamp: time.Now().UTC(),
	}
}

func newTestFetcher(source *fakeBookSource, cache *fakeBookCache, limiter *fakeRateLimiter) *BookFetcher {
	cfg := config.Defaults().Scanner
	return NewBookFetcher(source, cache, limiter, cfg, discardLogger())
}

func TestFetchBooksRESTFallbackPopulatesCache(t *testing.T) {
	source := newFakeBookSource()
	source.books["m1-yes"] = mkBook("m1-yes", 0.40, 0.45)
	source.books["m1-no"] = mkBook("m1-no", 0.55, 0.60)
	cache := newFakeBookCache()
	limiter := &fakeRateLimiter{}

	f := newTestFetcher(source, cache, limiter)
	books, err := f.FetchBooks(context.Background(), []domain.Market{mkMarket("m1", "q", 50000)})
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, 2, limiter.waits)
	assert.Equal(t, 2, cache.sets)
	for _, b := range books {
		assert.Equal(t, "m1", b.MarketID)
	}
}

func TestFetchBooksCacheHitSkipsREST(t *testing.T) {
	source := newFakeBookSource()
	cache := newFakeBookCache()
	require.NoError(t, cache.SetBook(context.Background(), mkBook("m1-yes", 0.40, 0.45), time.Minute))
	require.NoError(t, cache.SetBook(context.Background(), mkBook("m1-no", 0.55, 0.60), time.Minute))
	limiter := &fakeRateLimiter{}

	f := newTestFetcher(source, cache, limiter)
	books, err := f.FetchBooks(context.Background(), []domain.Market{mkMarket("m1", "q", 50000)})
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Empty(t, source.calls)
	assert.Equal(t, 0, limiter.waits)
}

func TestFetchBooksSkipsFailedToken(t *testing.T) {
	source := newFakeBookSource()
	source.books["m1-yes"] = mkBook("m1-yes", 0.40, 0.45)
	source.errs["m1-no"] = errors.New("502 from clob")
	cache := newFakeBookCache()

	f := newTestFetcher(source, cache, &fakeRateLimiter{})
	books, err := f.FetchBooks(context.Background(), []domain.Market{mkMarket("m1", "q", 50000)})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "m1-yes", books[0].TokenID)
}

func TestFetchBooksNoMarkets(t *testing.T) {
	f := newTestFetcher(newFakeBookSource(), newFakeBookCache(), &fakeRateLimiter{})
	books, err := f.FetchBooks(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, books)
}
