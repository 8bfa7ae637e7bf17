package signal

import "github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"

// Normalize derives a BookSnapshot from a raw ladder. It is total: every raw
// book maps to exactly one snapshot, with degenerate books carried through as
// snapshots tagged with a validity reason rather than dropped. Degenerate
// snapshots keep MidPrice at 0, SpreadBps nil and DepthWithin1Pct at 0.
func Normalize(raw *domain.RawBook) domain.BookSnapshot {
	snap := domain.BookSnapshot{
		MarketID:  raw.MarketID,
		TokenID:   raw.TokenID,
		Bids:      raw.Bids,
		Asks:      raw.Asks,
		BestBid:   bestLevel(raw.Bids),
		BestAsk:   bestLevel(raw.Asks),
		Timestamp: raw.Timestamp,
	}

	snap.Validity = classifyLadder(snap.BestBid, snap.BestAsk)
	if snap.Validity != domain.ValidityNone {
		return snap
	}

	mid := (*snap.BestBid + *snap.BestAsk) / 2
	if mid <= 0 {
		snap.Validity = domain.ValidityInvalidMid
		return snap
	}

	snap.MidPrice = mid
	spread := (*snap.BestAsk - *snap.BestBid) / mid * 10000
	snap.SpreadBps = &spread
	snap.DepthWithin1Pct = depthNearMid(raw.Bids, raw.Asks, mid)
	return snap
}
