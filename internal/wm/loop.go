package wm

import (
	"context"
	"errors"
)

// ErrLoopStopped is returned by Do once the loop no longer accepts calls.
var ErrLoopStopped = errors.New("event loop stopped")

// Loop carries function calls from other goroutines onto the goroutine that
// owns the manager. The backend drains Calls from its event loop; Run is a
// standalone drain for headless use.
type Loop struct {
	calls chan func()
	done  chan struct{}
}

// NewLoop creates a loop with a small call buffer.
func NewLoop() *Loop {
	return &Loop{
		calls: make(chan func(), 16),
		done:  make(chan struct{}),
	}
}

// Calls is the channel the owning goroutine reads pending calls from.
func (l *Loop) Calls() <-chan func() { return l.calls }

// Stop makes further Do calls fail. Calls already queued are abandoned.
func (l *Loop) Stop() {
	select {
	case <-l.done:
	default:
		close(l.done)
	}
}

// Do runs fn on the owning goroutine and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	call := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.calls <- call:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// doResult runs fn through l.Do and returns its result. The result travels
// over a buffered channel, so a call abandoned after ctx expired may still
// run later without touching anything the caller reads.
func doResult[T any](ctx context.Context, l *Loop, fn func() T) (T, error) {
	res := make(chan T, 1)
	if err := l.Do(ctx, func() { res <- fn() }); err != nil {
		var zero T
		return zero, err
	}
	return <-res, nil
}

// Run executes queued calls until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case call := <-l.calls:
			call()
		}
	}
}
