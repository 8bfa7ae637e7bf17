package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

// CycleArchiver implements domain.CycleArchiver by serializing a completed
// cycle's records to JSONL and uploading them under a date-partitioned prefix.
//
// Layout:
//
//	cycles/2026/08/29/cycle-42/cycle.json
//	cycles/2026/08/29/cycle-42/summaries.jsonl
//	cycles/2026/08/29/cycle-42/signals.jsonl
type CycleArchiver struct {
	writer domain.BlobWriter
}

// NewCycleArchiver creates a new CycleArchiver using the given writer.
func NewCycleArchiver(writer domain.BlobWriter) *CycleArchiver {
	return &CycleArchiver{writer: writer}
}

// ArchiveCycle uploads the cycle record, its book summaries, and its
// candidates. Empty record sets are skipped rather than written as empty
// objects.
func (a *CycleArchiver) ArchiveCycle(ctx context.Context, cycle domain.Cycle, snaps []domain.BookSnapshot, cands []domain.SignalCandidate) error {
	prefix := cyclePrefix(cycle)

	meta, err := json.Marshal(cycle)
	if err != nil {
		return fmt.Errorf("s3blob: archive cycle %d marshal: %w", cycle.ID, err)
	}
	if err := a.writer.Put(ctx, prefix+"/cycle.json", bytes.NewReader(meta), "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive cycle %d meta: %w", cycle.ID, err)
	}

	if len(snaps) > 0 {
		buf, err := marshalJSONL(snaps)
		if err != nil {
			return fmt.Errorf("s3blob: archive cycle %d summaries marshal: %w", cycle.ID, err)
		}
		if err := a.writer.Put(ctx, prefix+"/summaries.jsonl", bytes.NewReader(buf), "application/x-ndjson"); err != nil {
			return fmt.Errorf("s3blob: archive cycle %d summaries upload: %w", cycle.ID, err)
		}
	}

	if len(cands) > 0 {
		buf, err := marshalJSONL(cands)
		if err != nil {
			return fmt.Errorf("s3blob: archive cycle %d signals marshal: %w", cycle.ID, err)
		}
		if err := a.writer.Put(ctx, prefix+"/signals.jsonl", bytes.NewReader(buf), "application/x-ndjson"); err != nil {
			return fmt.Errorf("s3blob: archive cycle %d signals upload: %w", cycle.ID, err)
		}
	}

	return nil
}

// cyclePrefix builds the S3 key prefix for one cycle, partitioned by the
// cycle's start date.
func cyclePrefix(cycle domain.Cycle) string {
	return fmt.Sprintf("cycles/%s/cycle-%d", cycle.StartedAt.UTC().Format("2006/01/02"), cycle.ID)
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.CycleArchiver = (*CycleArchiver)(nil)
