package signal

import "github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"

// defaultFairValue is the prior used for a token that has never produced a
// valid mid.
const defaultFairValue = 0.5

// FairValueEstimator tracks a per-token exponential moving average of valid
// mid prices. It is not safe for concurrent use; the pipeline owns one
// instance and feeds it snapshots in deterministic order.
type FairValueEstimator struct {
	alpha float64
	ema   map[string]float64
}

func NewFairValueEstimator(alpha float64) *FairValueEstimator {
	return &FairValueEstimator{
		alpha: alpha,
		ema:   make(map[string]float64),
	}
}

// Estimate folds the snapshot into the token's EMA and returns the fair value
// probability for it, clamped to [0, 1]. The first valid observation seeds the
// EMA with the raw mid. Invalid snapshots never mutate state: they fall back
// to the last known EMA, or to defaultFairValue when the token has no history.
func (e *FairValueEstimator) Estimate(snap domain.BookSnapshot) float64 {
	if snap.Valid() {
		prev, ok := e.ema[snap.TokenID]
		if !ok {
			e.ema[snap.TokenID] = snap.MidPrice
		} else {
			e.ema[snap.TokenID] = e.alpha*snap.MidPrice + (1-e.alpha)*prev
		}
		return clampProb(e.ema[snap.TokenID])
	}
	if prev, ok := e.ema[snap.TokenID]; ok {
		return clampProb(prev)
	}
	return defaultFairValue
}

// Reset drops all per-token history.
func (e *FairValueEstimator) Reset() {
	e.ema = make(map[string]float64)
}
