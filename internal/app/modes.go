package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/feed"
	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/pipeline"
	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/platform/polymarket"
	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/signal"
)

// buildRunner assembles the scan-cycle runner shared by the scan and once
// modes.
func (a *App) buildRunner(deps *Dependencies) *pipeline.Runner {
	discovery := pipeline.NewDiscovery(deps.Gamma, a.cfg.Discovery, a.logger)
	fetcher := pipeline.NewBookFetcher(deps.Clob, deps.BookCache, deps.RateLimiter, a.cfg.Scanner, a.logger)

	engine := signal.NewEngine(signal.Config{
		EMAAlpha:     a.cfg.Signals.EMAAlpha,
		MaxSpreadBps: a.cfg.Signals.MaxSpreadBps,
		MinDepthUSDC: a.cfg.Signals.MinDepthUSDC,
		MaxStaleness: a.cfg.Signals.MaxStaleness.Duration,
		TopNToLog:    a.cfg.Signals.TopNToLog,
		Now:          time.Now,
	})

	return pipeline.NewRunner(
		discovery,
		fetcher,
		engine,
		deps.CycleStore,
		deps.BookSummaryStore,
		deps.SignalStore,
		deps.SignalBus,
		deps.Archiver,
		deps.Notifier,
		a.cfg.Scanner,
		a.logger,
	)
}

// ScanMode runs scan cycles on the configured interval under the distributed
// scanner lock until the context is cancelled. The WebSocket book feed runs
// alongside the loop so most book fetches hit the cache.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	runner := a.buildRunner(deps)
	orchestrator := pipeline.NewOrchestrator(runner, deps.LockManager, a.logger, a.buildFeed(deps))

	if err := orchestrator.Run(ctx); err != nil {
		return fmt.Errorf("app: scan mode: %w", err)
	}
	return nil
}

// OnceMode runs a single scan cycle and exits. Useful for cron-style
// deployments and smoke testing a new configuration.
func (a *App) OnceMode(ctx context.Context, deps *Dependencies) error {
	runner := a.buildRunner(deps)

	if err := runner.RunOnce(ctx); err != nil {
		return fmt.Errorf("app: once mode: %w", err)
	}
	return nil
}

// buildFeed assembles the WebSocket book feed used by the scan and feed modes.
func (a *App) buildFeed(deps *Dependencies) *feed.BookFeed {
	discovery := pipeline.NewDiscovery(deps.Gamma, a.cfg.Discovery, a.logger)
	ws := polymarket.NewWSClient(a.cfg.Polymarket.WsHost + "/ws/market")
	return feed.NewBookFeed(discovery, ws, deps.BookCache, a.cfg.Scanner.BookCacheTTL.Duration, a.logger)
}

// FeedMode mirrors the WebSocket book channel for the discovered markets into
// the book cache until the context is cancelled.
func (a *App) FeedMode(ctx context.Context, deps *Dependencies) error {
	bookFeed := a.buildFeed(deps)

	if err := bookFeed.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return context.Canceled
		}
		return fmt.Errorf("app: feed mode: %w", err)
	}
	return nil
}
