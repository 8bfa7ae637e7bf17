package domain

import "time"

// PriceLevel is a single price+size entry in an orderbook ladder.
type PriceLevel struct {
	Price float64
	Size  float64
}

// RawBook is an orderbook ladder exactly as fetched from the CLOB, before any
// validity classification. Bids are expected best-first (descending price),
// asks best-first (ascending price); index 0 is trusted as the best level.
type RawBook struct {
	MarketID  string
	TokenID   string
	Bids      []PriceLevel
	Asks      []PriceLevel
	Timestamp time.Time
}

// BookSnapshot is a fully derived orderbook snapshot for one token at one
// point in time, produced once per cycle by the normalizer and immutable
// afterwards.
//
// BestBid, BestAsk, and SpreadBps are nil when the respective value could not
// be derived. Validity is ValidityNone exactly when both best prices are
// present, finite, within [0,1], the book is not crossed or locked, and the
// resulting mid is positive; in every other case MidPrice is 0, SpreadBps is
// nil, and DepthWithin1Pct is 0.
type BookSnapshot struct {
	MarketID        string
	TokenID         string
	Bids            []PriceLevel
	Asks            []PriceLevel
	BestBid         *float64
	BestAsk         *float64
	MidPrice        float64
	SpreadBps       *float64
	DepthWithin1Pct float64
	Validity        ValidityReason
	Timestamp       time.Time
}

// Valid reports whether the snapshot carries a usable market.
func (s BookSnapshot) Valid() bool {
	return s.Validity == ValidityNone
}
