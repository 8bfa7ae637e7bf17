package signal

// edgeBuy is the advantage, in basis points, of buying at the executable ask
// when fair value sits above it.
func edgeBuy(fairValue, pExecBuy float64) float64 {
	return (fairValue - pExecBuy) * 10000
}

// edgeSell is the advantage, in basis points, of selling at the executable
// bid when fair value sits below it.
func edgeSell(fairValue, pExecSell float64) float64 {
	return (pExecSell - fairValue) * 10000
}
