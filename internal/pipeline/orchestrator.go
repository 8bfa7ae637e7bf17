package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

const (
	// scannerLockName is the distributed lock guarding the scan loop. Only
	// one instance may run cycles against a shared database.
	scannerLockName = "polyagent:scanner"

	lockTTL = 60 * time.Second
)

// BackgroundTask is a long-running companion to the scan loop, such as the
// WebSocket book feed. It runs until its context is cancelled.
type BackgroundTask interface {
	Run(ctx context.Context) error
}

// Orchestrator wraps the scan loop with a distributed lock so that exactly
// one scanner instance is active at a time. Optional background tasks run in
// the same group and share the scanner's lifetime.
type Orchestrator struct {
	runner     *Runner
	locks      domain.LockManager
	background []BackgroundTask
	logger     *slog.Logger
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(runner *Runner, locks domain.LockManager, logger *slog.Logger, background ...BackgroundTask) *Orchestrator {
	return &Orchestrator{
		runner:     runner,
		locks:      locks,
		background: background,
		logger:     logger,
	}
}

// Run acquires the scanner lock, then runs the scan loop and a lock refresh
// loop as concurrent goroutines. If either returns a non-context error the
// shared context is cancelled and Run returns that error. The lock is
// released on the way out.
func (o *Orchestrator) Run(ctx context.Context) error {
	token, err := o.locks.Acquire(ctx, scannerLockName, lockTTL)
	if err != nil {
		return fmt.Errorf("acquiring scanner lock: %w", err)
	}
	o.logger.Info("scanner lock acquired", slog.String("lock", scannerLockName))

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.locks.Release(releaseCtx, scannerLockName, token); err != nil {
			o.logger.Warn("releasing scanner lock failed", slog.String("error", err.Error()))
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := o.runner.RunLoop(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("scan loop: %w", err)
	})

	g.Go(func() error {
		err := o.refreshLoop(ctx, token)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("lock refresh: %w", err)
	})

	for _, task := range o.background {
		task := task
		g.Go(func() error {
			err := task.Run(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("background task: %w", err)
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.Error("orchestrator stopped with error", slog.String("error", err.Error()))
		return err
	}

	o.logger.Info("orchestrator stopped cleanly")
	return nil
}

// refreshLoop extends the scanner lock's TTL at a third of its lifetime. A
// failed refresh means another instance may take over, so the loop returns
// and brings the whole group down.
func (o *Orchestrator) refreshLoop(ctx context.Context, token string) error {
	ticker := time.NewTicker(lockTTL / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := o.locks.Refresh(ctx, scannerLockName, token, lockTTL); err != nil {
				return fmt.Errorf("refreshing %s: %w", scannerLockName, err)
			}
		}
	}
}
