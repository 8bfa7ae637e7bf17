package signal

import "github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"

// impliedPrices maps a snapshot's quotes onto the probability scale: the mid
// as the consensus probability, the best ask as the cost of buying and the
// best bid as the proceeds of selling. All three are clamped to [0, 1].
// Missing quotes map to 0, which the emission guard treats as unexecutable.
func impliedPrices(snap domain.BookSnapshot) (pMid, pExecBuy, pExecSell float64) {
	pMid = clampProb(snap.MidPrice)
	if snap.BestAsk != nil {
		pExecBuy = clampProb(*snap.BestAsk)
	}
	if snap.BestBid != nil {
		pExecSell = clampProb(*snap.BestBid)
	}
	return pMid, pExecBuy, pExecSell
}

func clampProb(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
