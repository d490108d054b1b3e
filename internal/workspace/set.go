package workspace

import (
	"iter"
	"log/slog"

	"github.com/spiralwm/spiral/internal/geometry"
	"github.com/spiralwm/spiral/internal/tiling"
)

// Set is the fixed collection of workspaces plus the index of the one being
// shown.
type Set struct {
	workspaces []*Workspace
	current    int
	logger     *slog.Logger
}

// NewSet creates n empty workspaces with the first one current. n is raised
// to 1 if smaller so there is always a current workspace.
func NewSet(n int, opts Options) *Set {
	opts = opts.withDefaults()
	n = max(n, 1)
	s := &Set{
		workspaces: make([]*Workspace, n),
		logger:     opts.Logger,
	}
	for i := range s.workspaces {
		s.workspaces[i] = New(i, opts)
	}
	return s
}

// Len returns the number of workspaces.
func (s *Set) Len() int { return len(s.workspaces) }

// CurrentID returns the index of the visible workspace.
func (s *Set) CurrentID() int { return s.current }

// Current returns the visible workspace.
func (s *Set) Current() *Workspace { return s.workspaces[s.current] }

// Workspace returns the workspace with the given id.
func (s *Set) Workspace(id int) (*Workspace, error) {
	if err := s.check(id); err != nil {
		return nil, err
	}
	return s.workspaces[id], nil
}

// All yields every workspace in index order.
func (s *Set) All() iter.Seq[*Workspace] {
	return func(yield func(*Workspace) bool) {
		for _, ws := range s.workspaces {
			if !yield(ws) {
				return
			}
		}
	}
}

func (s *Set) check(id int) error {
	if id < 0 || id >= len(s.workspaces) {
		return &OutOfRangeError{ID: id, Count: len(s.workspaces)}
	}
	return nil
}

// Activate makes id the visible workspace. An id outside the set returns an
// error matching ErrOutOfRange and leaves the current workspace unchanged.
func (s *Set) Activate(id int) error {
	if err := s.check(id); err != nil {
		return err
	}
	if id != s.current {
		s.logger.Debug("workspace activated", "from", s.current, "to", id)
	}
	s.current = id
	return nil
}

// AddWindow places w on the current workspace, dropping any registration it
// has elsewhere.
func (s *Set) AddWindow(w *Window, initial geometry.Rect) Layer {
	for _, ws := range s.workspaces {
		if ws != s.Current() {
			ws.RemoveWindow(w.Handle)
		}
	}
	return s.Current().AddWindow(w, initial)
}

// RemoveWindow forgets h on whichever workspace holds it.
func (s *Set) RemoveWindow(h Handle) (*Window, bool) {
	ws, ok := s.WorkspaceOf(h)
	if !ok {
		return nil, false
	}
	return ws.RemoveWindow(h)
}

// WorkspaceOf returns the workspace holding h.
func (s *Set) WorkspaceOf(h Handle) (*Workspace, bool) {
	for _, ws := range s.workspaces {
		if ws.Contains(h) {
			return ws, true
		}
	}
	return nil, false
}

// Window looks h up across all workspaces.
func (s *Set) Window(h Handle) (*Window, bool) {
	ws, ok := s.WorkspaceOf(h)
	if !ok {
		return nil, false
	}
	return ws.Window(h)
}

// MoveWindowToWorkspace transfers h to workspace id. The window is removed
// from its workspace (recomputing that layout) and added to the target as if
// new, so it is classified again and may change between tiled and floating.
// An unknown handle is a no-op; an invalid id is an error and nothing moves.
func (s *Set) MoveWindowToWorkspace(h Handle, id int) error {
	target, err := s.Workspace(id)
	if err != nil {
		return err
	}
	src, ok := s.WorkspaceOf(h)
	if !ok {
		return nil
	}
	w, _ := src.RemoveWindow(h)
	target.AddWindow(w, w.Rect)

	s.logger.Debug("window moved", "window", h, "from", src.ID(), "to", id)
	return nil
}

// ToggleFloating flips h between tiled and floating on its workspace.
func (s *Set) ToggleFloating(h Handle) bool {
	ws, ok := s.WorkspaceOf(h)
	if !ok {
		return false
	}
	return ws.ToggleFloating(h)
}

// AdjustRatio resizes the split that decides h's region on its workspace. A
// zero handle addresses the root split of the current workspace.
func (s *Set) AdjustRatio(h Handle, value float64, mode tiling.RatioMode) (float64, bool) {
	ws := s.Current()
	if h != 0 {
		var ok bool
		if ws, ok = s.WorkspaceOf(h); !ok {
			return 0, false
		}
	}
	return ws.AdjustRatio(h, value, mode)
}

// WindowUnder hit-tests the current workspace.
func (s *Set) WindowUnder(p geometry.PointF) (*Window, geometry.Point, bool) {
	return s.Current().WindowUnder(p)
}

// AllWindows yields the windows of every workspace in index order.
func (s *Set) AllWindows() iter.Seq[*Window] {
	return func(yield func(*Window) bool) {
		for _, ws := range s.workspaces {
			for w := range ws.Windows() {
				if !yield(w) {
					return
				}
			}
		}
	}
}

// Outputs yields the output assignments of every workspace. An output shown
// by several workspaces appears once per workspace.
func (s *Set) Outputs() iter.Seq[*Output] {
	return func(yield func(*Output) bool) {
		for _, ws := range s.workspaces {
			for o := range ws.Outputs() {
				if !yield(o) {
					return
				}
			}
		}
	}
}

// AddOutput assigns o to every workspace so any of them can be shown on it.
// An output already known by name is updated in place.
func (s *Set) AddOutput(o *Output) {
	for _, ws := range s.workspaces {
		ws.AddOutput(o)
	}
	s.logger.Debug("output added", "output", o.Name, "usable", o.Usable())
}

// RemoveOutput unassigns the named output everywhere.
func (s *Set) RemoveOutput(name string) {
	for _, ws := range s.workspaces {
		ws.RemoveOutput(name)
	}
	s.logger.Debug("output removed", "output", name)
}

// Occupied returns the ids of workspaces that hold at least one window.
func (s *Set) Occupied() []int {
	ids := make([]int, 0, len(s.workspaces))
	for _, ws := range s.workspaces {
		if !ws.IsEmpty() {
			ids = append(ids, ws.ID())
		}
	}
	return ids
}

// WindowCount returns the number of windows across all workspaces.
func (s *Set) WindowCount() int {
	n := 0
	for _, ws := range s.workspaces {
		n += ws.Len()
	}
	return n
}
