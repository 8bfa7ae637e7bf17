package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

// SignalStore implements domain.SignalStore using PostgreSQL.
type SignalStore struct {
	pool *pgxpool.Pool
}

// NewSignalStore creates a new SignalStore backed by the given connection pool.
func NewSignalStore(pool *pgxpool.Pool) *SignalStore {
	return &SignalStore{pool: pool}
}

// SaveCandidates inserts candidates in ranked order using a pgx Batch.
func (s *SignalStore) SaveCandidates(ctx context.Context, cands []domain.SignalCandidate) error {
	if len(cands) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	const query = `
		INSERT INTO signals (
			cycle_id, market_id, token_id, side,
			fair_value_prob, p_implied_mid, p_implied_exec_buy, p_implied_exec_sell,
			edge_bps, spread_bps, depth_within_1pct, filter_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	for _, c := range cands {
		batch.Queue(query,
			c.CycleID, c.MarketID, c.TokenID, string(c.Side),
			c.FairValueProb, c.PImpliedMid, c.PImpliedExecBuy, c.PImpliedExecSell,
			c.EdgeBps, c.SpreadBps, c.DepthWithin1Pct, string(c.FilterReason),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range cands {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert signal batch item %d: %w", i, err)
		}
	}
	return nil
}

// CandidatesByCycle returns all candidates recorded for a cycle in their
// persisted (ranked) order.
func (s *SignalStore) CandidatesByCycle(ctx context.Context, cycleID int64) ([]domain.SignalCandidate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT cycle_id, market_id, token_id, side,
			fair_value_prob, p_implied_mid, p_implied_exec_buy, p_implied_exec_sell,
			edge_bps, spread_bps, depth_within_1pct, filter_reason
		FROM signals
		WHERE cycle_id = $1
		ORDER BY id`,
		cycleID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: candidates by cycle %d: %w", cycleID, err)
	}
	defer rows.Close()

	var cands []domain.SignalCandidate
	for rows.Next() {
		var (
			c      domain.SignalCandidate
			side   string
			reason string
		)
		if err := rows.Scan(
			&c.CycleID, &c.MarketID, &c.TokenID, &side,
			&c.FairValueProb, &c.PImpliedMid, &c.PImpliedExecBuy, &c.PImpliedExecSell,
			&c.EdgeBps, &c.SpreadBps, &c.DepthWithin1Pct, &reason,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan signal: %w", err)
		}
		c.Side = domain.Side(side)
		c.FilterReason = domain.FilterReason(reason)
		cands = append(cands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: candidates by cycle %d: %w", cycleID, err)
	}
	return cands, nil
}

// Compile-time interface check.
var _ domain.SignalStore = (*SignalStore)(nil)
