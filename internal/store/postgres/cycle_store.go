package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

// CycleStore implements domain.CycleStore using PostgreSQL.
type CycleStore struct {
	pool *pgxpool.Pool
}

// NewCycleStore creates a new CycleStore backed by the given connection pool.
func NewCycleStore(pool *pgxpool.Pool) *CycleStore {
	return &CycleStore{pool: pool}
}

// CreateCycle inserts a new cycle row in the running state and returns its ID.
func (s *CycleStore) CreateCycle(ctx context.Context, startedAt time.Time) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO cycles (started_at, status) VALUES ($1, $2) RETURNING id`,
		startedAt, string(domain.CycleStatusRunning),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: create cycle: %w", err)
	}
	return id, nil
}

// FinishCycle writes the terminal fields for a cycle.
func (s *CycleStore) FinishCycle(ctx context.Context, id int64, upd domain.CycleUpdate) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE cycles SET
			status = $2,
			markets_scanned = $3,
			books_fetched = $4,
			candidates_emitted = $5,
			error_message = $6,
			execution_time_ms = $7
		WHERE id = $1`,
		id, string(upd.Status), upd.MarketsScanned, upd.BooksFetched,
		upd.CandidatesEmitted, upd.ErrorMessage, upd.ExecutionTimeMs,
	)
	if err != nil {
		return fmt.Errorf("postgres: finish cycle %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: finish cycle %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// LastCycle returns the most recent cycle, or domain.ErrNotFound when the
// table is empty.
func (s *CycleStore) LastCycle(ctx context.Context) (*domain.Cycle, error) {
	var (
		c      domain.Cycle
		status string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, started_at, status, markets_scanned, books_fetched,
			candidates_emitted, error_message, execution_time_ms
		FROM cycles ORDER BY id DESC LIMIT 1`,
	).Scan(
		&c.ID, &c.StartedAt, &status, &c.MarketsScanned, &c.BooksFetched,
		&c.CandidatesEmitted, &c.ErrorMessage, &c.ExecutionTimeMs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: last cycle: %w", err)
	}
	c.Status = domain.CycleStatus(status)
	return &c, nil
}

// Compile-time interface check.
var _ domain.CycleStore = (*CycleStore)(nil)
