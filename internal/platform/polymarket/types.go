package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// --------------------------------------------------------------------------
// Gamma API DTOs
// --------------------------------------------------------------------------

// APIMarket represents a market as returned by the Polymarket Gamma API.
type APIMarket struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Slug     string `json:"slug"`
	// Active may arrive as a bool or as a "true"/"false" string.
	Active flexBool `json:"active"`
	Closed bool     `json:"closed"`
	// Outcomes and ClobTokenIDs are JSON-encoded arrays inside string
	// fields, e.g. "[\"Yes\",\"No\"]" and "[\"123\",\"456\"]".
	Outcomes        string  `json:"outcomes"`
	ClobTokenIDs    string  `json:"clobTokenIds"`
	Tokens          []Token `json:"tokens"`
	Volume24hr      float64 `json:"volume24hr"`
	Volume          string  `json:"volume"`
	Liquidity       string  `json:"liquidity"`
	EndDateISO      string  `json:"end_date_iso"`
	EnableOrderBook bool    `json:"enable_order_book"`
}

// Token represents a token entry inside the Gamma API market response.
type Token struct {
	TokenID string `json:"token_id"`
	Outcome string `json:"outcome"`
	Winner  bool   `json:"winner"`
}

// ToDomainMarket converts a Gamma APIMarket to a domain.Market. Token IDs are
// taken from the tokens array when present, otherwise from the JSON-encoded
// clobTokenIds field.
func (m *APIMarket) ToDomainMarket() domain.Market {
	dm := domain.Market{
		ID:        m.ID,
		Question:  m.Question,
		Slug:      m.Slug,
		Active:    bool(m.Active),
		Closed:    m.Closed,
		Volume24h: m.Volume24hr,
		Outcomes:  [2]string{"Yes", "No"},
	}

	if v, err := strconv.ParseFloat(m.Liquidity, 64); err == nil {
		dm.Liquidity = v
	}
	if dm.Volume24h == 0 {
		if v, err := strconv.ParseFloat(m.Volume, 64); err == nil {
			dm.Volume24h = v
		}
	}

	for i, tok := range m.Tokens {
		if i >= 2 {
			break
		}
		dm.TokenIDs[i] = tok.TokenID
		if tok.Outcome != "" {
			dm.Outcomes[i] = tok.Outcome
		}
	}
	if dm.TokenIDs[0] == "" && m.ClobTokenIDs != "" {
		var ids []string
		if err := json.Unmarshal([]byte(m.ClobTokenIDs), &ids); err == nil {
			for i, id := range ids {
				if i >= 2 {
					break
				}
				dm.TokenIDs[i] = id
			}
		}
	}
	if dm.Outcomes == [2]string{"Yes", "No"} && m.Outcomes != "" {
		var outs []string
		if err := json.Unmarshal([]byte(m.Outcomes), &outs); err == nil {
			for i, o := range outs {
				if i >= 2 {
					break
				}
				dm.Outcomes[i] = o
			}
		}
	}

	if m.EndDateISO != "" {
		if t, err := time.Parse(time.RFC3339, m.EndDateISO); err == nil {
			dm.EndDate = &t
		}
	}

	return dm
}

// --------------------------------------------------------------------------
// CLOB API DTOs
// --------------------------------------------------------------------------

// APIBook represents an orderbook as returned by GET /book on the CLOB API.
// Price and size come over the wire as decimal strings.
type APIBook struct {
	Market    string          `json:"market"`
	AssetID   string          `json:"asset_id"`
	Bids      []APIPriceLevel `json:"bids"`
	Asks      []APIPriceLevel `json:"asks"`
	Timestamp string          `json:"timestamp"`
	Hash      string          `json:"hash"`
}

// APIPriceLevel is a single bid/ask level in CLOB orderbook data.
type APIPriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// ToDomainBook converts an APIBook to a domain.RawBook. Levels with
// unparseable prices or sizes are dropped rather than carried through as
// zeros, since a zero price is indistinguishable from a real quote at 0.
func (b *APIBook) ToDomainBook() *domain.RawBook {
	raw := &domain.RawBook{
		MarketID:  b.Market,
		TokenID:   b.AssetID,
		Bids:      parseLevels(b.Bids),
		Asks:      parseLevels(b.Asks),
		Timestamp: parseBookTimestamp(b.Timestamp),
	}
	return raw
}

func parseLevels(levels []APIPriceLevel) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, len(levels))
	for _, lvl := range levels {
		p, perr := strconv.ParseFloat(lvl.Price, 64)
		s, serr := strconv.ParseFloat(lvl.Size, 64)
		if perr != nil || serr != nil {
			continue
		}
		out = append(out, domain.PriceLevel{Price: p, Size: s})
	}
	return out
}

// parseBookTimestamp accepts the CLOB's millisecond epoch strings as well as
// RFC3339. An unparseable timestamp yields the zero time, which downstream
// treats as unknown age.
func parseBookTimestamp(ts string) time.Time {
	if ts == "" {
		return time.Time{}
	}
	if ms, err := strconv.ParseInt(ts, 10, 64); err == nil {
		// Heuristic: values past 1e12 are milliseconds.
		if ms > 1_000_000_000_000 {
			return time.UnixMilli(ms)
		}
		return time.Unix(ms, 0)
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t
	}
	return time.Time{}
}

// --------------------------------------------------------------------------
// WebSocket DTOs
// --------------------------------------------------------------------------

// BookMessage represents a full orderbook snapshot delivered over WebSocket.
type BookMessage struct {
	EventType string          `json:"event_type"`
	AssetID   string          `json:"asset_id"`
	Market    string          `json:"market"`
	Bids      []APIPriceLevel `json:"bids"`
	Asks      []APIPriceLevel `json:"asks"`
	Timestamp string          `json:"timestamp"`
	Hash      string          `json:"hash"`
}

// ToDomainBook converts a WebSocket book snapshot to a domain.RawBook.
func (b *BookMessage) ToDomainBook() *domain.RawBook {
	return &domain.RawBook{
		MarketID:  b.Market,
		TokenID:   b.AssetID,
		Bids:      parseLevels(b.Bids),
		Asks:      parseLevels(b.Asks),
		Timestamp: parseBookTimestamp(b.Timestamp),
	}
}

// WSCommand is the JSON payload sent to the WebSocket to subscribe/unsubscribe.
type WSCommand struct {
	Type    string   `json:"type"` // "subscribe" or "unsubscribe"
	Channel string   `json:"channel,omitempty"`
	Assets  []string `json:"assets_ids,omitempty"`
}
