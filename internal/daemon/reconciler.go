// Package daemon holds background maintenance that runs next to the window
// manager's event loop.
package daemon

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper drops window records whose client surface has gone away without
// the backend seeing a destroy event. wm.Remote implements it.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks for state drift and corrects it.
type Reconciler struct {
	interval time.Duration
	sweeper  Sweeper
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, sweeper Sweeper) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		sweeper:  sweeper,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile(ctx context.Context) int {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()

	removed, err := r.sweeper.Sweep(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("reconciler: sweep failed", "error", err)
		}
		return 0
	}
	if removed > 0 {
		r.logger.Info("reconciler: dropped stale windows", "count", removed)
	}
	return removed
}

// ReconcileNow triggers an immediate reconciliation pass and returns how
// many records were dropped.
func (r *Reconciler) ReconcileNow(ctx context.Context) int {
	return r.reconcile(ctx)
}
