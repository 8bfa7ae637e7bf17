package signal

import (
	"math"
	"sort"
	"time"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

// Config carries the tunables of the signal engine.
type Config struct {
	EMAAlpha     float64
	MaxSpreadBps float64
	MinDepthUSDC float64
	MaxStaleness time.Duration
	TopNToLog    int

	// Now supplies the clock for the staleness filter. Nil disables the
	// check, which then treats every snapshot as fresh.
	Now func() time.Time
}

// Report summarizes one engine run for logging and persistence. Suppressed
// counts snapshots whose candidates were withheld entirely; Filtered counts
// emitted candidates per failing filter reason.
type Report struct {
	SnapshotsIn int
	Emitted     int
	Suppressed  map[domain.FilterReason]int
	Filtered    map[domain.FilterReason]int
}

// Engine turns a batch of raw books into a ranked list of signal candidates.
// Given identical input books and a freshly reset fair value state, two runs
// produce byte-identical output: snapshots are processed in (market_id,
// token_id) order and ranking is stable.
type Engine struct {
	filters Filters
	fv      *FairValueEstimator
	topN    int
	now     func() time.Time
}

func NewEngine(cfg Config) *Engine {
	return &Engine{
		filters: Filters{
			MaxSpreadBps: cfg.MaxSpreadBps,
			MinDepthUSDC: cfg.MinDepthUSDC,
			MaxStaleness: cfg.MaxStaleness,
		},
		fv:   NewFairValueEstimator(cfg.EMAAlpha),
		topN: cfg.TopNToLog,
		now:  cfg.Now,
	}
}

// ResetFairValue drops all EMA history, as if no cycle had ever run.
func (e *Engine) ResetFairValue() {
	e.fv.Reset()
}

// Run normalizes the raw books and produces ranked candidates for one cycle.
// Candidates that fail a filter are still returned, annotated with the
// reason; only invalid books and degenerate executable prices suppress
// emission, and those show up in the report instead.
func (e *Engine) Run(cycleID int64, books []*domain.RawBook) ([]domain.BookSnapshot, []domain.SignalCandidate, Report) {
	snaps := make([]domain.BookSnapshot, 0, len(books))
	for _, b := range books {
		snaps = append(snaps, Normalize(b))
	}
	cands, report := e.generate(cycleID, snaps)
	return snaps, cands, report
}

func (e *Engine) generate(cycleID int64, snaps []domain.BookSnapshot) ([]domain.SignalCandidate, Report) {
	report := Report{
		SnapshotsIn: len(snaps),
		Suppressed:  make(map[domain.FilterReason]int),
		Filtered:    make(map[domain.FilterReason]int),
	}

	ordered := make([]domain.BookSnapshot, len(snaps))
	copy(ordered, snaps)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].MarketID != ordered[j].MarketID {
			return ordered[i].MarketID < ordered[j].MarketID
		}
		return ordered[i].TokenID < ordered[j].TokenID
	})

	var now time.Time
	if e.now != nil {
		now = e.now()
	}

	var cands []domain.SignalCandidate
	for _, snap := range ordered {
		fv := e.fv.Estimate(snap)

		if !snap.Valid() {
			report.Suppressed[domain.FilterInvalidBook]++
			continue
		}

		pMid, pBuy, pSell := impliedPrices(snap)
		filterReason := e.filters.Apply(snap, now)

		spread := missingSpreadBps
		if snap.SpreadBps != nil {
			spread = *snap.SpreadBps
		}
		depth := snap.DepthWithin1Pct

		base := domain.SignalCandidate{
			CycleID:          cycleID,
			MarketID:         snap.MarketID,
			TokenID:          snap.TokenID,
			FairValueProb:    fv,
			PImpliedMid:      pMid,
			PImpliedExecBuy:  pBuy,
			PImpliedExecSell: pSell,
			SpreadBps:        spread,
			DepthWithin1Pct:  &depth,
			FilterReason:     filterReason,
		}

		if pBuy > 0 && isFinite(pBuy) {
			buy := base
			buy.Side = domain.SideBuy
			buy.EdgeBps = edgeBuy(fv, pBuy)
			cands = append(cands, buy)
			if filterReason != domain.FilterNone {
				report.Filtered[filterReason]++
			}
		} else {
			report.Suppressed[domain.FilterZeroExecPrice]++
		}
		if pSell > 0 && isFinite(pSell) {
			sell := base
			sell.Side = domain.SideSell
			sell.EdgeBps = edgeSell(fv, pSell)
			cands = append(cands, sell)
			if filterReason != domain.FilterNone {
				report.Filtered[filterReason]++
			}
		} else {
			report.Suppressed[domain.FilterZeroExecPrice]++
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return math.Abs(cands[i].EdgeBps) > math.Abs(cands[j].EdgeBps)
	})
	if e.topN >= 0 && len(cands) > e.topN {
		cands = cands[:e.topN]
	}

	report.Emitted = len(cands)
	return cands, report
}
