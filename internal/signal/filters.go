package signal

import (
	"time"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

// missingSpreadBps stands in for an absent spread so that any positive
// max_spread_bps threshold rejects the snapshot.
const missingSpreadBps = 99999.0

// Filters is the ordered quality gate applied once per snapshot. The first
// failing check wins; checks run in a fixed order regardless of configuration.
type Filters struct {
	MaxSpreadBps float64
	MinDepthUSDC float64
	MaxStaleness time.Duration
}

// Apply returns the reason the snapshot fails the chain, or FilterNone.
// A zero now means snapshot age is unknown and the staleness check passes.
func (f Filters) Apply(snap domain.BookSnapshot, now time.Time) domain.FilterReason {
	spread := missingSpreadBps
	if snap.SpreadBps != nil {
		spread = *snap.SpreadBps
	}
	if spread > f.MaxSpreadBps {
		return domain.FilterSpreadTooWide
	}
	if snap.DepthWithin1Pct < f.MinDepthUSDC {
		return domain.FilterDepthTooThin
	}
	if !now.IsZero() && !snap.Timestamp.IsZero() && now.Sub(snap.Timestamp) > f.MaxStaleness {
		return domain.FilterSnapshotStale
	}
	return domain.FilterNone
}
