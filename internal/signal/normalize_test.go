package signal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

func rawBook(bids, asks []domain.PriceLevel) *domain.RawBook {
	return &domain.RawBook{
		MarketID:  "mkt-1",
		TokenID:   "tok-1",
		Bids:      bids,
		Asks:      asks,
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNormalizeHealthyBook(t *testing.T) {
	snap := Normalize(rawBook(
		[]domain.PriceLevel{{Price: 0.40, Size: 100}, {Price: 0.39, Size: 50}},
		[]domain.PriceLevel{{Price: 0.45, Size: 80}, {Price: 0.46, Size: 40}},
	))

	require.True(t, snap.Valid())
	require.NotNil(t, snap.BestBid)
	require.NotNil(t, snap.BestAsk)
	assert.Equal(t, 0.40, *snap.BestBid)
	assert.Equal(t, 0.45, *snap.BestAsk)
	assert.InDelta(t, 0.425, snap.MidPrice, 1e-9)
	require.NotNil(t, snap.SpreadBps)
	assert.InDelta(t, 1176.47, *snap.SpreadBps, 0.01)
}

func TestNormalizeNoBid(t *testing.T) {
	snap := Normalize(rawBook(
		nil,
		[]domain.PriceLevel{{Price: 0.45, Size: 80}},
	))

	assert.Equal(t, domain.ValidityNoBid, snap.Validity)
	assert.Nil(t, snap.BestBid)
	assert.Equal(t, 0.0, snap.MidPrice)
	assert.Nil(t, snap.SpreadBps)
	assert.Equal(t, 0.0, snap.DepthWithin1Pct)
}

func TestNormalizeNoAsk(t *testing.T) {
	snap := Normalize(rawBook(
		[]domain.PriceLevel{{Price: 0.40, Size: 100}},
		nil,
	))
	assert.Equal(t, domain.ValidityNoAsk, snap.Validity)
}

func TestNormalizeCrossedBook(t *testing.T) {
	snap := Normalize(rawBook(
		[]domain.PriceLevel{{Price: 0.50, Size: 100}},
		[]domain.PriceLevel{{Price: 0.45, Size: 80}},
	))

	assert.Equal(t, domain.ValidityCrossedOrLocked, snap.Validity)
	assert.Equal(t, 0.0, snap.MidPrice)
	assert.Nil(t, snap.SpreadBps)
}

func TestNormalizeLockedBook(t *testing.T) {
	snap := Normalize(rawBook(
		[]domain.PriceLevel{{Price: 0.45, Size: 100}},
		[]domain.PriceLevel{{Price: 0.45, Size: 80}},
	))
	assert.Equal(t, domain.ValidityCrossedOrLocked, snap.Validity)
}

func TestNormalizeOutOfRange(t *testing.T) {
	snap := Normalize(rawBook(
		[]domain.PriceLevel{{Price: 0.40, Size: 100}},
		[]domain.PriceLevel{{Price: 1.05, Size: 80}},
	))
	assert.Equal(t, domain.ValidityOutOfRange, snap.Validity)
}

func TestNormalizeNaNQuote(t *testing.T) {
	snap := Normalize(rawBook(
		[]domain.PriceLevel{{Price: math.NaN(), Size: 100}},
		[]domain.PriceLevel{{Price: 0.45, Size: 80}},
	))
	assert.Equal(t, domain.ValidityNaNOrInf, snap.Validity)
}

func TestNormalizePrecedenceNoBidBeforeOutOfRange(t *testing.T) {
	// Empty bid side and a broken ask side: no_bid wins.
	snap := Normalize(rawBook(
		nil,
		[]domain.PriceLevel{{Price: 2.0, Size: 80}},
	))
	assert.Equal(t, domain.ValidityNoBid, snap.Validity)
}

func TestNormalizeRangeCheckIsBidFloorAskCeiling(t *testing.T) {
	// The range rule looks only at bid < 0 and ask > 1. A negative ask or a
	// bid above 1 falls through to the crossed/locked rule instead.
	snap := Normalize(rawBook(
		[]domain.PriceLevel{{Price: 0.5, Size: 10}},
		[]domain.PriceLevel{{Price: -0.2, Size: 10}},
	))
	assert.Equal(t, domain.ValidityCrossedOrLocked, snap.Validity)

	snap = Normalize(rawBook(
		[]domain.PriceLevel{{Price: 1.2, Size: 10}},
		[]domain.PriceLevel{{Price: 0.9, Size: 10}},
	))
	assert.Equal(t, domain.ValidityCrossedOrLocked, snap.Validity)

	// Both sides out of bounds still hits the range rule first.
	snap = Normalize(rawBook(
		[]domain.PriceLevel{{Price: -0.1, Size: 10}},
		[]domain.PriceLevel{{Price: 1.1, Size: 10}},
	))
	assert.Equal(t, domain.ValidityOutOfRange, snap.Validity)
}

func TestNormalizeInvalidMid(t *testing.T) {
	snap := Normalize(rawBook(
		[]domain.PriceLevel{{Price: 0, Size: 100}},
		[]domain.PriceLevel{{Price: 0, Size: 80}},
	))
	// Two zero quotes pass the range check but lock the book.
	assert.Equal(t, domain.ValidityCrossedOrLocked, snap.Validity)
}

func TestDepthNearMid(t *testing.T) {
	mid := 0.50
	bids := []domain.PriceLevel{
		{Price: 0.498, Size: 100}, // within 1%
		{Price: 0.490, Size: 100}, // outside
	}
	asks := []domain.PriceLevel{
		{Price: 0.503, Size: 200}, // within 1%
		{Price: 0.520, Size: 200}, // outside
	}

	got := depthNearMid(bids, asks, mid)
	assert.InDelta(t, 0.498*100+0.503*200, got, 1e-9)
}

func TestDepthZeroWhenMidNonPositive(t *testing.T) {
	bids := []domain.PriceLevel{{Price: 0.5, Size: 100}}
	assert.Equal(t, 0.0, depthNearMid(bids, nil, 0))
	assert.Equal(t, 0.0, depthNearMid(bids, nil, -1))
}
