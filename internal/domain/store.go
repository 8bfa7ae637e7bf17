package domain

import (
	"context"
	"time"
)

// CycleStore persists scan cycle bookkeeping rows.
type CycleStore interface {
	// CreateCycle inserts a new cycle row and returns its assigned ID.
	CreateCycle(ctx context.Context, startedAt time.Time) (int64, error)
	// FinishCycle writes the terminal fields for a cycle.
	FinishCycle(ctx context.Context, id int64, upd CycleUpdate) error
	// LastCycle returns the most recent cycle, or ErrNotFound when the
	// table is empty.
	LastCycle(ctx context.Context) (*Cycle, error)
}

// BookSummaryStore persists one normalized snapshot summary per token per
// cycle.
type BookSummaryStore interface {
	SaveSummaries(ctx context.Context, cycleID int64, snaps []BookSnapshot) error
	SummariesByCycle(ctx context.Context, cycleID int64) ([]BookSnapshot, error)
}

// SignalStore persists ranked signal candidates.
type SignalStore interface {
	SaveCandidates(ctx context.Context, cands []SignalCandidate) error
	CandidatesByCycle(ctx context.Context, cycleID int64) ([]SignalCandidate, error)
}
