package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

// BookSummaryStore implements domain.BookSummaryStore using PostgreSQL.
// Summaries persist the derived fields of a snapshot, not the full ladder.
type BookSummaryStore struct {
	pool *pgxpool.Pool
}

// NewBookSummaryStore creates a new BookSummaryStore backed by the given
// connection pool.
func NewBookSummaryStore(pool *pgxpool.Pool) *BookSummaryStore {
	return &BookSummaryStore{pool: pool}
}

// SaveSummaries inserts one summary row per snapshot using a pgx Batch.
func (s *BookSummaryStore) SaveSummaries(ctx context.Context, cycleID int64, snaps []domain.BookSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	const query = `
		INSERT INTO orderbook_summaries (
			cycle_id, market_id, token_id, best_bid, best_ask,
			mid_price, spread_bps, depth_within_1pct, validity_reason, snapshot_ts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for _, snap := range snaps {
		var ts *time.Time
		if !snap.Timestamp.IsZero() {
			t := snap.Timestamp
			ts = &t
		}
		batch.Queue(query,
			cycleID, snap.MarketID, snap.TokenID, snap.BestBid, snap.BestAsk,
			snap.MidPrice, snap.SpreadBps, snap.DepthWithin1Pct,
			string(snap.Validity), ts,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range snaps {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert summary batch item %d: %w", i, err)
		}
	}
	return nil
}

// SummariesByCycle returns all summaries recorded for a cycle, ordered by
// (market_id, token_id).
func (s *BookSummaryStore) SummariesByCycle(ctx context.Context, cycleID int64) ([]domain.BookSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT market_id, token_id, best_bid, best_ask, mid_price,
			spread_bps, depth_within_1pct, validity_reason, snapshot_ts
		FROM orderbook_summaries
		WHERE cycle_id = $1
		ORDER BY market_id, token_id`,
		cycleID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: summaries by cycle %d: %w", cycleID, err)
	}
	defer rows.Close()

	var snaps []domain.BookSnapshot
	for rows.Next() {
		var (
			snap     domain.BookSnapshot
			validity string
			ts       *time.Time
		)
		if err := rows.Scan(
			&snap.MarketID, &snap.TokenID, &snap.BestBid, &snap.BestAsk,
			&snap.MidPrice, &snap.SpreadBps, &snap.DepthWithin1Pct,
			&validity, &ts,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan summary: %w", err)
		}
		snap.Validity = domain.ValidityReason(validity)
		if ts != nil {
			snap.Timestamp = *ts
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: summaries by cycle %d: %w", cycleID, err)
	}
	return snaps, nil
}

// Compile-time interface check.
var _ domain.BookSummaryStore = (*BookSummaryStore)(nil)
