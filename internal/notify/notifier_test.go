package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

type fakeSender struct {
	name    string
	sent    []string
	sendErr error
}

func (f *fakeSender) Send(_ context.Context, title, _ string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, title)
	return nil
}

func (f *fakeSender) Name() string { return f.name }

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNotifierFiltersByEvent(t *testing.T) {
	s := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{s}, []string{EventScannerHalted}, discardLogger())

	assert.NoError(t, n.Notify(context.Background(), EventSignalDetected, "sig", "body"))
	assert.Empty(t, s.sent)

	assert.NoError(t, n.Notify(context.Background(), EventScannerHalted, "halt", "body"))
	assert.Equal(t, []string{"halt"}, s.sent)
}

func TestNotifierEmptyEventsAllowsAll(t *testing.T) {
	s := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{s}, nil, discardLogger())

	assert.NoError(t, n.Notify(context.Background(), EventSignalDetected, "sig", "body"))
	assert.Equal(t, []string{"sig"}, s.sent)
}

func TestNotifierCollectsSenderErrors(t *testing.T) {
	bad := &fakeSender{name: "bad", sendErr: errors.New("boom")}
	good := &fakeSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, discardLogger())

	err := n.NotifyAll(context.Background(), "title", "body")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	// A failing sender must not block the others.
	assert.Equal(t, []string{"title"}, good.sent)
}

func TestFormatSignal(t *testing.T) {
	depth := 1234.0
	title, msg := FormatSignal(domain.SignalCandidate{
		MarketID:        "0xabc",
		TokenID:         "111",
		Side:            domain.SideBuy,
		EdgeBps:         142.5,
		FairValueProb:   0.51,
		PImpliedMid:     0.5,
		SpreadBps:       120,
		DepthWithin1Pct: &depth,
	})
	assert.Contains(t, title, "BUY")
	assert.Contains(t, msg, "edge: +142.5 bps")
	assert.Contains(t, msg, "1234 USDC")
}
