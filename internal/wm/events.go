package wm

import (
	"slices"
	"sync"

	"github.com/spiralwm/spiral/internal/workspace"
)

// EventKind names a state change published by the manager.
type EventKind string

const (
	EventActiveWorkspace    EventKind = "active_workspace"
	EventOccupiedWorkspaces EventKind = "occupied_workspaces"
	EventWindowAdded        EventKind = "window_added"
	EventWindowRemoved      EventKind = "window_removed"
	EventLayoutChanged      EventKind = "layout_changed"
)

// Event is delivered to subscribers after the change it describes.
type Event struct {
	Kind      EventKind        `json:"kind"`
	Workspace int              `json:"workspace"`
	Occupied  []int            `json:"occupied,omitempty"`
	Window    workspace.Handle `json:"window,omitempty"`
}

// bus fans events out to subscribers. Subscribe and cancel may be called
// from any goroutine; publish runs on the event loop.
type bus struct {
	mu   sync.Mutex
	next int
	byID map[int]func(Event)
}

func (b *bus) subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.byID == nil {
		b.byID = make(map[int]func(Event))
	}
	id := b.next
	b.next++
	b.byID[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.byID, id)
		b.mu.Unlock()
	}
}

func (b *bus) publish(ev Event) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.byID))
	for id := range b.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.byID[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
