package notify

import (
	"fmt"
	"strings"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

// Well-known event types used with Notifier.Notify.
const (
	EventSignalDetected = "signal_detected"
	EventScannerHalted  = "scanner_halted"
	EventError          = "error"
)

// FormatSignal renders a title and message for a signal_detected event.
func FormatSignal(cand domain.SignalCandidate) (title, message string) {
	title = fmt.Sprintf("Signal: %s %s @ %+.0f bps", strings.ToUpper(string(cand.Side)), cand.MarketID, cand.EdgeBps)

	var b strings.Builder
	fmt.Fprintf(&b, "market: %s\n", cand.MarketID)
	fmt.Fprintf(&b, "token: %s\n", cand.TokenID)
	fmt.Fprintf(&b, "side: %s\n", cand.Side)
	fmt.Fprintf(&b, "edge: %+.1f bps\n", cand.EdgeBps)
	fmt.Fprintf(&b, "fair value: %.4f\n", cand.FairValueProb)
	fmt.Fprintf(&b, "implied mid: %.4f\n", cand.PImpliedMid)
	fmt.Fprintf(&b, "spread: %.1f bps\n", cand.SpreadBps)
	if cand.DepthWithin1Pct != nil {
		fmt.Fprintf(&b, "depth ±1%%: %.0f USDC\n", *cand.DepthWithin1Pct)
	}
	if cand.FilterReason != domain.FilterNone {
		fmt.Fprintf(&b, "filtered: %s\n", cand.FilterReason)
	}
	return title, strings.TrimRight(b.String(), "\n")
}

// FormatHalt renders a title and message for a scanner_halted event.
func FormatHalt(consecutiveErrors int, lastErr error) (title, message string) {
	title = "Scanner halted"
	message = fmt.Sprintf("consecutive errors: %d\nlast error: %v", consecutiveErrors, lastErr)
	return title, message
}
