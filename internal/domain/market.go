package domain

import "time"

// Market is a binary prediction market discovered via the Gamma API.
type Market struct {
	ID        string
	Question  string
	Slug      string
	TokenIDs  [2]string
	Outcomes  [2]string
	Volume24h float64
	Liquidity float64
	Active    bool
	Closed    bool
	EndDate   *time.Time
}

// Tradable reports whether the market should be considered for book fetching.
func (m Market) Tradable() bool {
	return m.Active && !m.Closed
}

// TokenIDList returns the market's non-empty token IDs.
func (m Market) TokenIDList() []string {
	ids := make([]string, 0, 2)
	for _, id := range m.TokenIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
