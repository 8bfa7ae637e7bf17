package feed

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/platform/polymarket"
)

type staticSource struct {
	markets []domain.Market
	err     error
}

func (s *staticSource) Discover(context.Context) ([]domain.Market, error) {
	return s.markets, s.err
}

type fakeSubscriber struct {
	mu         sync.Mutex
	handler    polymarket.BookUpdateHandler
	subscribed []string
	closed     bool
}

func (f *fakeSubscriber) Connect(context.Context) error { return nil }

func (f *fakeSubscriber) SubscribeBooks(_ context.Context, tokenIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, tokenIDs...)
	return nil
}

func (f *fakeSubscriber) OnBookUpdate(h polymarket.BookUpdateHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
}

func (f *fakeSubscriber) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSubscriber) emit(book *domain.RawBook) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(book)
	}
}

type memCache struct {
	mu    sync.Mutex
	books map[string]*domain.RawBook
}

func (c *memCache) SetBook(_ context.Context, book *domain.RawBook, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.books == nil {
		c.books = make(map[string]*domain.RawBook)
	}
	c.books[book.TokenID] = book
	return nil
}

func (c *memCache) GetBook(_ context.Context, tokenID string) (*domain.RawBook, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if book, ok := c.books[tokenID]; ok {
		return book, nil
	}
	return nil, domain.ErrNotFound
}

func TestBookFeedWritesUpdatesToCache(t *testing.T) {
	source := &staticSource{markets: []domain.Market{{
		ID:       "m1",
		TokenIDs: [2]string{"tok-yes", "tok-no"},
		Active:   true,
	}}}
	ws := &fakeSubscriber{}
	cache := &memCache{}

	f := NewBookFeed(source, ws, cache, 10*time.Second, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	// Wait for the subscription to land.
	require.Eventually(t, func() bool {
		ws.mu.Lock()
		defer ws.mu.Unlock()
		return len(ws.subscribed) == 2
	}, 2*time.Second, 10*time.Millisecond)

	ws.emit(&domain.RawBook{
		TokenID: "tok-yes",
		Bids:    []domain.PriceLevel{{Price: 0.4, Size: 10}},
		Asks:    []domain.PriceLevel{{Price: 0.45, Size: 10}},
	})

	require.Eventually(t, func() bool {
		_, err := cache.GetBook(context.Background(), "tok-yes")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 1, f.BooksWritten())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop after cancel")
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	assert.True(t, ws.closed)
}

func TestBookFeedNoTokens(t *testing.T) {
	f := NewBookFeed(&staticSource{}, &fakeSubscriber{}, &memCache{}, time.Second, slog.New(slog.DiscardHandler))
	assert.NoError(t, f.Run(context.Background()))
}
