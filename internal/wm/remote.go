package wm

import (
	"context"
	"fmt"
	"time"

	"github.com/spiralwm/spiral/internal/tiling"
	"github.com/spiralwm/spiral/internal/workspace"
)

// Status summarises the manager for status queries.
type Status struct {
	CurrentWorkspace int              `json:"current_workspace"`
	Workspaces       int              `json:"workspaces"`
	Occupied         []int            `json:"occupied"`
	Windows          int              `json:"windows"`
	Focused          workspace.Handle `json:"focused,omitempty"`
	Outputs          []OutputInfo     `json:"outputs"`
	UptimeSeconds    int64            `json:"uptime_seconds"`
}

// OutputInfo describes a registered output.
type OutputInfo struct {
	Name      string  `json:"name"`
	Geometry  string  `json:"geometry"`
	Usable    string  `json:"usable"`
	Scale     float64 `json:"scale"`
	Transform string  `json:"transform"`
}

// WindowInfo describes one window of a workspace.
type WindowInfo struct {
	Handle   workspace.Handle `json:"handle"`
	AppID    string           `json:"app_id,omitempty"`
	Title    string           `json:"title,omitempty"`
	Floating bool             `json:"floating"`
	Focused  bool             `json:"focused,omitempty"`
	X        int              `json:"x"`
	Y        int              `json:"y"`
	Width    int              `json:"width"`
	Height   int              `json:"height"`
}

// WorkspaceInfo describes one workspace.
type WorkspaceInfo struct {
	ID      int          `json:"id"`
	Current bool         `json:"current"`
	Windows []WindowInfo `json:"windows"`
}

// Status reports the current state.
func (m *Manager) Status() Status {
	st := Status{
		CurrentWorkspace: m.set.CurrentID(),
		Workspaces:       m.set.Len(),
		Occupied:         m.set.Occupied(),
		Windows:          m.set.WindowCount(),
		Focused:          m.focused,
		UptimeSeconds:    int64(time.Since(m.started).Seconds()),
	}
	for o := range m.set.Current().Outputs() {
		st.Outputs = append(st.Outputs, OutputInfo{
			Name:      o.Name,
			Geometry:  o.Geometry().String(),
			Usable:    o.Usable().String(),
			Scale:     o.Scale,
			Transform: o.Transform.String(),
		})
	}
	return st
}

// ListWorkspaces describes every workspace and its windows in stacking
// order.
func (m *Manager) ListWorkspaces() []WorkspaceInfo {
	out := make([]WorkspaceInfo, 0, m.set.Len())
	for ws := range m.set.All() {
		info := WorkspaceInfo{ID: ws.ID(), Current: ws.ID() == m.set.CurrentID(), Windows: []WindowInfo{}}
		for w := range ws.Windows() {
			info.Windows = append(info.Windows, WindowInfo{
				Handle:   w.Handle,
				AppID:    w.Surface.AppID(),
				Title:    w.Surface.Title(),
				Floating: ws.IsFloating(w.Handle),
				Focused:  w.Handle == m.focused,
				X:        w.Rect.X,
				Y:        w.Rect.Y,
				Width:    w.Rect.Width,
				Height:   w.Rect.Height,
			})
		}
		out = append(out, info)
	}
	return out
}

// TreeSnapshot returns the layout tree of workspace id.
func (m *Manager) TreeSnapshot(id int) (*tiling.NodeSnapshot, error) {
	ws, err := m.set.Workspace(id)
	if err != nil {
		return nil, err
	}
	return ws.Tree().Snapshot(), nil
}

// Remote gives other goroutines access to a Manager by running every call
// on its Loop.
type Remote struct {
	m    *Manager
	loop *Loop
}

// NewRemote wraps m; loop must be drained by the goroutine that owns m.
func NewRemote(m *Manager, loop *Loop) *Remote {
	return &Remote{m: m, loop: loop}
}

func (r *Remote) Status(ctx context.Context) (Status, error) {
	return doResult(ctx, r.loop, r.m.Status)
}

func (r *Remote) ListWorkspaces(ctx context.Context) ([]WorkspaceInfo, error) {
	return doResult(ctx, r.loop, r.m.ListWorkspaces)
}

// result pairs a value with the error of the manager call that produced it.
type result[T any] struct {
	val T
	err error
}

func (r *Remote) Tree(ctx context.Context, id int) (*tiling.NodeSnapshot, error) {
	res, err := doResult(ctx, r.loop, func() result[*tiling.NodeSnapshot] {
		snap, err := r.m.TreeSnapshot(id)
		return result[*tiling.NodeSnapshot]{snap, err}
	})
	if err != nil {
		return nil, err
	}
	return res.val, res.err
}

func (r *Remote) ActivateWorkspace(ctx context.Context, id int) error {
	res, err := doResult(ctx, r.loop, func() error { return r.m.ActivateWorkspace(id) })
	if err != nil {
		return err
	}
	return res
}

func (r *Remote) MoveWindow(ctx context.Context, h workspace.Handle, id int, follow bool) error {
	res, err := doResult(ctx, r.loop, func() error { return r.m.MoveWindow(h, id, follow) })
	if err != nil {
		return err
	}
	return res
}

func (r *Remote) ToggleFloating(ctx context.Context, h workspace.Handle) (bool, error) {
	res, err := doResult(ctx, r.loop, func() result[bool] {
		floating, err := r.m.ToggleFloating(h)
		return result[bool]{floating, err}
	})
	if err != nil {
		return false, err
	}
	return res.val, res.err
}

func (r *Remote) AdjustRatio(ctx context.Context, h workspace.Handle, value float64, mode tiling.RatioMode) (float64, error) {
	res, err := doResult(ctx, r.loop, func() result[float64] {
		ratio, err := r.m.AdjustRatio(h, value, mode)
		return result[float64]{ratio, err}
	})
	if err != nil {
		return 0, err
	}
	return res.val, res.err
}

// Subscribe registers fn for manager events. Events are delivered on the
// event loop goroutine; fn must hand them off without blocking.
func (r *Remote) Subscribe(fn func(Event)) func() {
	return r.m.Subscribe(fn)
}

// Sweep runs Manager.Sweep on the loop.
func (r *Remote) Sweep(ctx context.Context) (int, error) {
	n, err := doResult(ctx, r.loop, r.m.Sweep)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}
	return n, nil
}
