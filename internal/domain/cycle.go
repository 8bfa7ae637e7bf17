package domain

import "time"

// CycleStatus is the terminal state of one scan cycle.
type CycleStatus string

const (
	CycleStatusRunning CycleStatus = "running"
	CycleStatusSuccess CycleStatus = "success"
	CycleStatusError   CycleStatus = "error"
	CycleStatusHalted  CycleStatus = "halted"
)

// Cycle is the bookkeeping record for one scan cycle. The ID is the
// monotonically increasing cycle_id stamped unchanged onto every candidate
// generated within the cycle.
type Cycle struct {
	ID                int64
	StartedAt         time.Time
	Status            CycleStatus
	MarketsScanned    int
	BooksFetched      int
	CandidatesEmitted int
	ErrorMessage      string
	ExecutionTimeMs   float64
}

// CycleUpdate carries the fields written back when a cycle finishes.
type CycleUpdate struct {
	Status            CycleStatus
	MarketsScanned    int
	BooksFetched      int
	CandidatesEmitted int
	ErrorMessage      string
	ExecutionTimeMs   float64
}
