package signal

import "github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"

// depthNearMid sums price*size across both sides of the ladder for every
// level priced within 1% of mid. A non-positive mid yields zero depth.
func depthNearMid(bids, asks []domain.PriceLevel, mid float64) float64 {
	if mid <= 0 {
		return 0
	}
	lo, hi := mid*0.99, mid*1.01
	var total float64
	for _, side := range [2][]domain.PriceLevel{bids, asks} {
		for _, lvl := range side {
			if lvl.Price >= lo && lvl.Price <= hi {
				total += lvl.Price * lvl.Size
			}
		}
	}
	return total
}
