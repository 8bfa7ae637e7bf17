package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

const (
	// signalChannel is the Pub/Sub channel for ephemeral candidate fan-out.
	signalChannel = "signals"

	// signalStream is the durable stream downstream consumers read from.
	signalStream = "signals:stream"

	// streamMaxLen is the approximate maximum stream length, enforced via
	// XADD MAXLEN ~.
	streamMaxLen int64 = 10000
)

// SignalBus implements domain.SignalBus using Redis Pub/Sub for ephemeral
// fan-out and a Redis Stream for durable, ordered delivery. Every candidate
// is written to both.
type SignalBus struct {
	rdb *redis.Client
}

// NewSignalBus creates a SignalBus backed by the given Client.
func NewSignalBus(c *Client) *SignalBus {
	return &SignalBus{rdb: c.Underlying()}
}

// PublishCandidate publishes one candidate to the Pub/Sub channel and appends
// it to the durable stream.
func (sb *SignalBus) PublishCandidate(ctx context.Context, cand domain.SignalCandidate) error {
	payload, err := json.Marshal(cand)
	if err != nil {
		return fmt.Errorf("redis: marshal candidate: %w", err)
	}

	if err := sb.rdb.Publish(ctx, signalChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish candidate: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: signalStream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"cycle_id":  cand.CycleID,
			"market_id": cand.MarketID,
			"token_id":  cand.TokenID,
			"side":      string(cand.Side),
			"edge_bps":  cand.EdgeBps,
			"payload":   payload,
		},
	}
	if err := sb.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redis: stream append candidate: %w", err)
	}
	return nil
}

// ReadCandidates reads up to count entries from the signal stream starting
// after lastID. Use "0" to read from the beginning or "$" to read only new
// entries. It returns an empty slice (not an error) when the block duration
// elapses with no entries.
func (sb *SignalBus) ReadCandidates(ctx context.Context, lastID string, count int64, block time.Duration) ([]domain.StreamMessage, error) {
	args := &redis.XReadArgs{
		Streams: []string{signalStream, lastID},
		Count:   count,
		Block:   block,
	}

	results, err := sb.rdb.XRead(ctx, args).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis: read candidates: %w", err)
	}

	var messages []domain.StreamMessage
	for _, s := range results {
		for _, msg := range s.Messages {
			messages = append(messages, domain.StreamMessage{
				ID:     msg.ID,
				Values: msg.Values,
			})
		}
	}
	return messages, nil
}

// Compile-time interface check.
var _ domain.SignalBus = (*SignalBus)(nil)
