package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls   atomic.Int32
	removed int
	err     error
	panics  bool
}

func (s *countingSweeper) Sweep(context.Context) (int, error) {
	s.calls.Add(1)
	if s.panics {
		panic("boom")
	}
	return s.removed, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReconcileNow(t *testing.T) {
	s := &countingSweeper{removed: 2}
	r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, s)
	if got := r.ReconcileNow(context.Background()); got != 2 {
		t.Fatalf("expected 2 removed, got %d", got)
	}

	s.err = errors.New("loop stopped")
	if got := r.ReconcileNow(context.Background()); got != 0 {
		t.Fatalf("expected 0 on error, got %d", got)
	}
}

func TestReconcileRecoversPanic(t *testing.T) {
	s := &countingSweeper{panics: true}
	r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, s)
	if got := r.ReconcileNow(context.Background()); got != 0 {
		t.Fatalf("expected 0 after panic, got %d", got)
	}
}

func TestRunTicksUntilCancelled(t *testing.T) {
	s := &countingSweeper{}
	r := NewReconciler(ReconcilerConfig{Interval: 5 * time.Millisecond, Logger: quietLogger()}, s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for s.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 sweeps, got %d", s.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
