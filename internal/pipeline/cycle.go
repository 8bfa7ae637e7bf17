package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/config"
	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/notify"
	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/signal"
)

// Notifier pushes human-facing events to the configured channels.
type Notifier interface {
	Notify(ctx context.Context, eventType, title, message string) error
}

// Runner executes scan cycles: discover markets, fetch books, run the signal
// engine, persist the results, and publish passing candidates downstream.
type Runner struct {
	discovery *Discovery
	fetcher   *BookFetcher
	engine    *signal.Engine
	cycles    domain.CycleStore
	summaries domain.BookSummaryStore
	signals   domain.SignalStore
	bus       domain.SignalBus
	archiver  domain.CycleArchiver
	notifier  Notifier
	cfg       config.ScannerConfig
	logger    *slog.Logger
}

// NewRunner creates a new Runner. The archiver and notifier may be nil, in
// which case archival and notifications are skipped.
func NewRunner(
	discovery *Discovery,
	fetcher *BookFetcher,
	engine *signal.Engine,
	cycles domain.CycleStore,
	summaries domain.BookSummaryStore,
	signals domain.SignalStore,
	bus domain.SignalBus,
	archiver domain.CycleArchiver,
	notifier Notifier,
	cfg config.ScannerConfig,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		discovery: discovery,
		fetcher:   fetcher,
		engine:    engine,
		cycles:    cycles,
		summaries: summaries,
		signals:   signals,
		bus:       bus,
		archiver:  archiver,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}
}

// RunOnce executes a single scan cycle end to end. The cycle row is created
// up front so a failed cycle still leaves an error record behind.
func (r *Runner) RunOnce(ctx context.Context) error {
	startedAt := time.Now().UTC()

	cycleID, err := r.cycles.CreateCycle(ctx, startedAt)
	if err != nil {
		return fmt.Errorf("creating cycle: %w", err)
	}

	logger := r.logger.With(slog.Int64("cycle_id", cycleID))

	markets, books, report, runErr := r.scan(ctx, cycleID, startedAt, logger)

	upd := domain.CycleUpdate{
		Status:            domain.CycleStatusSuccess,
		MarketsScanned:    len(markets),
		BooksFetched:      len(books),
		CandidatesEmitted: report.Emitted,
		ExecutionTimeMs:   float64(time.Since(startedAt)) / float64(time.Millisecond),
	}
	if runErr != nil {
		upd.Status = domain.CycleStatusError
		upd.ErrorMessage = runErr.Error()
	}

	if err := r.cycles.FinishCycle(ctx, cycleID, upd); err != nil {
		logger.Error("finishing cycle failed", slog.String("error", err.Error()))
		if runErr == nil {
			runErr = fmt.Errorf("finishing cycle: %w", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("cycle %d: %w", cycleID, runErr)
	}

	logger.Info("cycle complete",
		slog.Int("markets_scanned", upd.MarketsScanned),
		slog.Int("books_fetched", upd.BooksFetched),
		slog.Int("candidates_emitted", upd.CandidatesEmitted),
		slog.Float64("execution_time_ms", upd.ExecutionTimeMs),
	)
	return nil
}

// scan performs the fallible middle of a cycle and reports what it managed to
// do, so RunOnce can write the bookkeeping row either way.
func (r *Runner) scan(ctx context.Context, cycleID int64, startedAt time.Time, logger *slog.Logger) ([]domain.Market, []*domain.RawBook, signal.Report, error) {
	var report signal.Report

	markets, err := r.discovery.Discover(ctx)
	if err != nil {
		return nil, nil, report, fmt.Errorf("discovering markets: %w", err)
	}

	books, err := r.fetcher.FetchBooks(ctx, markets)
	if err != nil {
		return markets, nil, report, err
	}

	snaps, cands, report := r.engine.Run(cycleID, books)
	logReport(logger, report)

	if err := r.summaries.SaveSummaries(ctx, cycleID, snaps); err != nil {
		return markets, books, report, fmt.Errorf("saving summaries: %w", err)
	}
	if err := r.signals.SaveCandidates(ctx, cands); err != nil {
		return markets, books, report, fmt.Errorf("saving candidates: %w", err)
	}

	r.publish(ctx, cands, logger)

	if r.archiver != nil {
		cycle := domain.Cycle{
			ID:                cycleID,
			StartedAt:         startedAt,
			Status:            domain.CycleStatusSuccess,
			MarketsScanned:    len(markets),
			BooksFetched:      len(books),
			CandidatesEmitted: report.Emitted,
		}
		if err := r.archiver.ArchiveCycle(ctx, cycle, snaps, cands); err != nil {
			logger.Warn("cycle archival failed", slog.String("error", err.Error()))
		}
	}

	return markets, books, report, nil
}

// publish pushes candidates that passed every filter onto the signal bus and
// raises a notification per candidate. Both are best-effort: the cycle's
// database records are already written.
func (r *Runner) publish(ctx context.Context, cands []domain.SignalCandidate, logger *slog.Logger) {
	for _, cand := range cands {
		if !cand.Passed() {
			continue
		}
		if err := r.bus.PublishCandidate(ctx, cand); err != nil {
			logger.Warn("publishing candidate failed",
				slog.String("token_id", cand.TokenID),
				slog.String("error", err.Error()),
			)
		}
		if r.notifier != nil {
			title, msg := notify.FormatSignal(cand)
			if err := r.notifier.Notify(ctx, notify.EventSignalDetected, title, msg); err != nil {
				logger.Warn("signal notification failed", slog.String("error", err.Error()))
			}
		}
	}
}

// RunLoop runs scan cycles on a repeating interval with jitter until the
// context is cancelled. Consecutive failures up to max_error_burst are logged
// and retried; at the burst limit the loop halts and returns an error.
func (r *Runner) RunLoop(ctx context.Context) error {
	consecutive := 0

	runCycle := func() error {
		if err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			consecutive++
			r.logger.Error("scan cycle failed",
				slog.Int("consecutive_errors", consecutive),
				slog.String("error", err.Error()),
			)
			if consecutive >= r.cfg.MaxErrorBurst {
				return r.halt(ctx, consecutive, err)
			}
			return nil
		}
		consecutive = 0
		return nil
	}

	// Run immediately on start.
	if err := runCycle(); err != nil {
		return err
	}

	for {
		timer := time.NewTimer(r.nextDelay())
		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("scan loop stopped")
			return ctx.Err()
		case <-timer.C:
			if err := runCycle(); err != nil {
				return err
			}
		}
	}
}

// halt marks the latest cycle as halted and raises a scanner_halted event.
func (r *Runner) halt(ctx context.Context, consecutive int, lastErr error) error {
	r.logger.Error("error burst limit reached, halting scanner",
		slog.Int("consecutive_errors", consecutive),
	)

	if last, err := r.cycles.LastCycle(ctx); err == nil {
		upd := domain.CycleUpdate{
			Status:            domain.CycleStatusHalted,
			MarketsScanned:    last.MarketsScanned,
			BooksFetched:      last.BooksFetched,
			CandidatesEmitted: last.CandidatesEmitted,
			ErrorMessage:      lastErr.Error(),
			ExecutionTimeMs:   last.ExecutionTimeMs,
		}
		if ferr := r.cycles.FinishCycle(ctx, last.ID, upd); ferr != nil {
			r.logger.Warn("marking cycle halted failed", slog.String("error", ferr.Error()))
		}
	}

	if r.notifier != nil {
		title, msg := notify.FormatHalt(consecutive, lastErr)
		if err := r.notifier.Notify(ctx, notify.EventScannerHalted, title, msg); err != nil {
			r.logger.Warn("halt notification failed", slog.String("error", err.Error()))
		}
	}

	return fmt.Errorf("scanner halted after %d consecutive errors: %w", consecutive, lastErr)
}

// nextDelay returns the base interval plus a uniform random jitter, which
// spreads load when several environments share the same API quota.
func (r *Runner) nextDelay() time.Duration {
	delay := r.cfg.Interval.Duration
	if j := r.cfg.Jitter.Duration; j > 0 {
		delay += time.Duration(rand.Int63n(int64(j)))
	}
	return delay
}

// logReport emits one structured line summarizing an engine run.
func logReport(logger *slog.Logger, report signal.Report) {
	attrs := []any{
		slog.Int("snapshots_in", report.SnapshotsIn),
		slog.Int("emitted", report.Emitted),
	}
	for reason, n := range report.Suppressed {
		attrs = append(attrs, slog.Int("suppressed_"+string(reason), n))
	}
	for reason, n := range report.Filtered {
		attrs = append(attrs, slog.Int("filtered_"+string(reason), n))
	}
	logger.Info("signal engine run", attrs...)
}
