package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/config"
	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

func mkMarket(id, question string, volume float64) domain.Market {
	return domain.Market{
		ID:        id,
		Question:  question,
		Slug:      id,
		TokenIDs:  [2]string{id + "-yes", id + "-no"},
		Volume24h: volume,
		Active:    true,
	}
}

func TestDiscoverFilters(t *testing.T) {
	closed := mkMarket("m2", "Closed market", 50000)
	closed.Closed = true
	inactive := mkMarket("m3", "Inactive market", 50000)
	inactive.Active = false

	fetcher := &fakeMarketFetcher{pages: [][]domain.Market{{
		mkMarket("m1", "Will it rain", 50000),
		closed,
		inactive,
		mkMarket("m4", "Thin market", 100),
	}}}

	cfg := config.DiscoveryConfig{MaxMarkets: 10, MinVolume24h: 10000}
	d := NewDiscovery(fetcher, cfg, discardLogger())

	markets, err := d.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "m1", markets[0].ID)
}

func TestDiscoverKeywords(t *testing.T) {
	fetcher := &fakeMarketFetcher{pages: [][]domain.Market{{
		mkMarket("m1", "Will BTC close above 100k", 50000),
		mkMarket("m2", "Will it rain in London", 50000),
		mkMarket("m3", "ETH flippening by 2027", 50000),
	}}}

	cfg := config.DiscoveryConfig{MaxMarkets: 10, Keywords: []string{"btc", "eth"}}
	d := NewDiscovery(fetcher, cfg, discardLogger())

	markets, err := d.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, "m1", markets[0].ID)
	assert.Equal(t, "m3", markets[1].ID)
}

func TestDiscoverCapsAtMaxMarkets(t *testing.T) {
	var page []domain.Market
	for i := 0; i < 100; i++ {
		page = append(page, mkMarket(string(rune('a'+i%26))+"-"+string(rune('0'+i%10)), "q", 50000))
	}
	fetcher := &fakeMarketFetcher{pages: [][]domain.Market{page, page}}

	cfg := config.DiscoveryConfig{MaxMarkets: 5}
	d := NewDiscovery(fetcher, cfg, discardLogger())

	markets, err := d.Discover(context.Background())
	require.NoError(t, err)
	assert.Len(t, markets, 5)
	assert.Equal(t, 1, fetcher.calls)
}

func TestDiscoverStopsWhenPageBelowVolumeFloor(t *testing.T) {
	fetcher := &fakeMarketFetcher{pages: make([][]domain.Market, 3)}
	var thin []domain.Market
	for i := 0; i < 100; i++ {
		thin = append(thin, mkMarket("thin", "q", 1))
	}
	fetcher.pages[0] = thin
	fetcher.pages[1] = thin
	fetcher.pages[2] = thin

	cfg := config.DiscoveryConfig{MaxMarkets: 10, MinVolume24h: 10000}
	d := NewDiscovery(fetcher, cfg, discardLogger())

	markets, err := d.Discover(context.Background())
	require.NoError(t, err)
	assert.Empty(t, markets)
	// Listing is volume-ordered, so a page entirely below the floor ends
	// pagination.
	assert.Equal(t, 1, fetcher.calls)
}

func TestDiscoverPropagatesFetchError(t *testing.T) {
	fetcher := &fakeMarketFetcher{err: errors.New("gamma down")}
	d := NewDiscovery(fetcher, config.DiscoveryConfig{MaxMarkets: 10}, discardLogger())

	_, err := d.Discover(context.Background())
	assert.ErrorContains(t, err, "gamma down")
}
