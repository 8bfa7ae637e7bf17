package signal

import (
	"math"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

// classifyLadder runs the pre-mid validity checks over the best quotes, in
// precedence order: a book with no bid is reported as no_bid even if its ask
// side is also broken.
func classifyLadder(bestBid, bestAsk *float64) domain.ValidityReason {
	switch {
	case bestBid == nil:
		return domain.ValidityNoBid
	case bestAsk == nil:
		return domain.ValidityNoAsk
	case !isFinite(*bestBid) || !isFinite(*bestAsk):
		return domain.ValidityNaNOrInf
	case *bestBid < 0 || *bestAsk > 1:
		return domain.ValidityOutOfRange
	case *bestBid >= *bestAsk:
		return domain.ValidityCrossedOrLocked
	default:
		return domain.ValidityNone
	}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func bestLevel(levels []domain.PriceLevel) *float64 {
	if len(levels) == 0 {
		return nil
	}
	p := levels[0].Price
	return &p
}
