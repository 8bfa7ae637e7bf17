package domain

// Side is the direction of a signal candidate.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// SignalCandidate is one directional trading opportunity derived from a single
// book snapshot. Candidates are created fresh per snapshot per side inside one
// pipeline invocation and are immutable; a candidate that failed a filter is
// still emitted with its FilterReason set so downstream consumers can log and
// count rejections (filters annotate, they do not delete).
type SignalCandidate struct {
	CycleID          int64
	MarketID         string
	TokenID          string
	Side             Side
	FairValueProb    float64
	PImpliedMid      float64
	PImpliedExecBuy  float64
	PImpliedExecSell float64
	EdgeBps          float64
	SpreadBps        float64
	DepthWithin1Pct  *float64
	FilterReason     FilterReason
}

// Passed reports whether the candidate cleared every filter.
func (c SignalCandidate) Passed() bool {
	return c.FilterReason == FilterNone
}
