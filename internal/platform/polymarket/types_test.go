package polymarket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIMarketToDomain(t *testing.T) {
	raw := `{
		"id": "0xabc",
		"question": "Will it rain tomorrow?",
		"slug": "will-it-rain",
		"active": "true",
		"closed": false,
		"volume24hr": 125000.5,
		"clobTokenIds": "[\"111\",\"222\"]",
		"outcomes": "[\"Yes\",\"No\"]",
		"end_date_iso": "2026-12-31T00:00:00Z"
	}`

	var m APIMarket
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	dm := m.ToDomainMarket()
	assert.Equal(t, "0xabc", dm.ID)
	assert.True(t, dm.Active)
	assert.False(t, dm.Closed)
	assert.True(t, dm.Tradable())
	assert.Equal(t, 125000.5, dm.Volume24h)
	assert.Equal(t, [2]string{"111", "222"}, dm.TokenIDs)
	require.NotNil(t, dm.EndDate)
	assert.Equal(t, 2026, dm.EndDate.Year())
}

func TestAPIMarketTokensArrayWins(t *testing.T) {
	m := APIMarket{
		ID:           "m1",
		ClobTokenIDs: `["999","888"]`,
		Tokens: []Token{
			{TokenID: "111", Outcome: "Yes"},
			{TokenID: "222", Outcome: "No"},
		},
	}
	dm := m.ToDomainMarket()
	assert.Equal(t, [2]string{"111", "222"}, dm.TokenIDs)
}

func TestFlexBoolAcceptsBoolAndString(t *testing.T) {
	var f flexBool
	require.NoError(t, json.Unmarshal([]byte(`true`), &f))
	assert.True(t, bool(f))

	require.NoError(t, json.Unmarshal([]byte(`"false"`), &f))
	assert.False(t, bool(f))

	require.NoError(t, json.Unmarshal([]byte(`"1"`), &f))
	assert.True(t, bool(f))
}

func TestAPIBookToDomain(t *testing.T) {
	raw := `{
		"market": "0xdef",
		"asset_id": "111",
		"bids": [{"price": "0.40", "size": "120"}, {"price": "0.39", "size": "60"}],
		"asks": [{"price": "0.45", "size": "80"}],
		"timestamp": "1756400000000"
	}`

	var b APIBook
	require.NoError(t, json.Unmarshal([]byte(raw), &b))

	book := b.ToDomainBook()
	assert.Equal(t, "0xdef", book.MarketID)
	assert.Equal(t, "111", book.TokenID)
	require.Len(t, book.Bids, 2)
	assert.Equal(t, 0.40, book.Bids[0].Price)
	assert.Equal(t, 120.0, book.Bids[0].Size)
	require.Len(t, book.Asks, 1)
	assert.False(t, book.Timestamp.IsZero())
}

func TestAPIBookDropsUnparseableLevels(t *testing.T) {
	b := APIBook{
		Bids: []APIPriceLevel{
			{Price: "0.40", Size: "100"},
			{Price: "garbage", Size: "100"},
		},
	}
	book := b.ToDomainBook()
	require.Len(t, book.Bids, 1)
	assert.Equal(t, 0.40, book.Bids[0].Price)
}

func TestParseBookTimestamp(t *testing.T) {
	assert.True(t, parseBookTimestamp("").IsZero())
	assert.True(t, parseBookTimestamp("not-a-time").IsZero())

	ms := parseBookTimestamp("1756400000000")
	assert.Equal(t, time.UnixMilli(1756400000000), ms)

	sec := parseBookTimestamp("1756400000")
	assert.Equal(t, time.Unix(1756400000, 0), sec)

	rfc := parseBookTimestamp("2026-08-01T12:00:00Z")
	assert.Equal(t, 2026, rfc.Year())
}
