package domain

import (
	"context"
	"io"
)

// BlobWriter writes immutable objects to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// CycleArchiver exports a completed cycle's snapshots and candidates for
// offline analysis.
type CycleArchiver interface {
	ArchiveCycle(ctx context.Context, cycle Cycle, snaps []BookSnapshot, cands []SignalCandidate) error
}
