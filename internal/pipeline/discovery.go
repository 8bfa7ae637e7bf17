package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/config"
	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

// MarketFetcher retrieves markets from an external API, ordered by 24h volume
// descending.
type MarketFetcher interface {
	GetMarkets(ctx context.Context, limit, offset int) ([]domain.Market, error)
}

// Discovery selects the markets to scan each cycle: tradable, above the
// volume floor, matching the configured keywords, capped at max_markets.
type Discovery struct {
	fetcher MarketFetcher
	cfg     config.DiscoveryConfig
	logger  *slog.Logger
}

// NewDiscovery creates a new Discovery.
func NewDiscovery(fetcher MarketFetcher, cfg config.DiscoveryConfig, logger *slog.Logger) *Discovery {
	return &Discovery{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
	}
}

// Discover paginates through the market listing and returns up to max_markets
// markets that pass the discovery filters. Because the listing is ordered by
// volume descending, pagination stops early once a whole page falls below the
// volume floor.
func (d *Discovery) Discover(ctx context.Context) ([]domain.Market, error) {
	const pageSize = 100

	var selected []domain.Market
	offset := 0

	for len(selected) < d.cfg.MaxMarkets {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery context cancelled: %w", err)
		}

		markets, err := d.fetcher.GetMarkets(ctx, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("fetching markets at offset %d: %w", offset, err)
		}
		if len(markets) == 0 {
			break
		}

		pageBelowFloor := true
		for _, m := range markets {
			if m.Volume24h >= d.cfg.MinVolume24h {
				pageBelowFloor = false
			}
			if !d.accept(m) {
				continue
			}
			selected = append(selected, m)
			if len(selected) == d.cfg.MaxMarkets {
				break
			}
		}

		if pageBelowFloor || len(markets) < pageSize {
			break
		}
		offset += pageSize
	}

	d.logger.Info("market discovery complete",
		slog.Int("selected", len(selected)),
		slog.Int("max_markets", d.cfg.MaxMarkets),
	)
	return selected, nil
}

// accept applies the per-market discovery filters.
func (d *Discovery) accept(m domain.Market) bool {
	if !m.Tradable() {
		return false
	}
	if m.Volume24h < d.cfg.MinVolume24h {
		return false
	}
	return matchesKeywords(m, d.cfg.Keywords)
}

// matchesKeywords reports whether the market's question or slug contains any
// of the keywords, case-insensitively. An empty keyword list matches all
// markets.
func matchesKeywords(m domain.Market, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	question := strings.ToLower(m.Question)
	slug := strings.ToLower(m.Slug)
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(question, kw) || strings.Contains(slug, kw) {
			return true
		}
	}
	return false
}
