// Package wm ties the workspace registry to a display backend: it allocates
// window handles, follows the pointer for focus, runs keybinding actions and
// publishes state changes to subscribers.
//
// A Manager is not safe for concurrent use. The backend calls it from its
// event loop, and other goroutines go through a Loop.
package wm

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spiralwm/spiral/internal/config"
	"github.com/spiralwm/spiral/internal/geometry"
	"github.com/spiralwm/spiral/internal/tiling"
	"github.com/spiralwm/spiral/internal/workspace"
)

// Visibility is implemented by surfaces that can be hidden while their
// workspace is not shown.
type Visibility interface {
	SetVisible(visible bool)
}

// Stacker is implemented by surfaces whose stacking order the backend
// controls.
type Stacker interface {
	Raise()
}

// Options configure a Manager.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// Spawn starts a shell command. Defaults to running it under sh -c.
	Spawn func(command string) error
	// VTSwitch changes virtual terminal. Backends without VT control leave
	// it nil and the action is logged and ignored.
	VTSwitch func(vt int) error
}

// Manager is the window manager state shared by the backend, keybindings
// and IPC.
type Manager struct {
	cfg      *config.Config
	logger   *slog.Logger
	set      *workspace.Set
	spawn    func(string) error
	vtSwitch func(int) error

	next     workspace.Handle
	handles  map[workspace.Surface]workspace.Handle
	focused  workspace.Handle
	pointer  geometry.PointF
	started  time.Time
	events   bus
	quit     chan struct{}
	quitting bool
}

// New creates a manager with the configured number of empty workspaces.
func New(opts Options) *Manager {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cfg:      cfg,
		logger:   logger,
		spawn:    opts.Spawn,
		vtSwitch: opts.VTSwitch,
		handles:  make(map[workspace.Surface]workspace.Handle),
		started:  time.Now(),
		quit:     make(chan struct{}),
	}
	if m.spawn == nil {
		m.spawn = func(command string) error { return Spawn(command, cfg.Display) }
	}
	m.set = workspace.NewSet(cfg.Workspaces, workspace.Options{
		Gaps:         tiling.Gaps{Outer: cfg.Gaps.Outer, Inner: cfg.Gaps.Inner},
		DefaultRatio: cfg.DefaultRatio,
		Logger:       logger,
	})
	return m
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config { return m.cfg }

// Workspaces exposes the underlying set for read access.
func (m *Manager) Workspaces() *workspace.Set { return m.set }

// Subscribe registers fn for every published event. The returned function
// removes it. fn runs on the event loop and must not block.
func (m *Manager) Subscribe(fn func(Event)) (cancel func()) {
	return m.events.subscribe(fn)
}

// Done is closed once a quit action has run.
func (m *Manager) Done() <-chan struct{} { return m.quit }

// Quit asks the backend to shut down.
func (m *Manager) Quit() {
	if m.quitting {
		return
	}
	m.quitting = true
	m.logger.Info("quit requested")
	close(m.quit)
}

// HandleOf returns the handle allocated for s.
func (m *Manager) HandleOf(s workspace.Surface) (workspace.Handle, bool) {
	h, ok := m.handles[s]
	return h, ok
}

// Focused returns the focused window handle, zero when none.
func (m *Manager) Focused() workspace.Handle { return m.focused }

// NewToplevel registers a freshly mapped surface on the current workspace
// and focuses it. initial is where the client asked to be; floating windows
// keep its size.
func (m *Manager) NewToplevel(s workspace.Surface, initial geometry.Rect) workspace.Handle {
	if h, ok := m.handles[s]; ok {
		return h
	}
	m.next++
	h := m.next
	m.handles[s] = h

	w := workspace.NewWindow(h, s)
	layer := m.set.AddWindow(w, initial)
	setVisible(w, true)
	m.logger.Info("window added",
		"window", h,
		"workspace", m.set.CurrentID(),
		"layer", layer,
		"app_id", s.AppID(),
		"title", s.Title())

	m.Focus(h)
	m.publish(Event{Kind: EventWindowAdded, Workspace: m.set.CurrentID(), Window: h})
	m.publishOccupied()
	return h
}

// SurfaceDestroyed forgets the window backed by s. Unknown surfaces are
// ignored.
func (m *Manager) SurfaceDestroyed(s workspace.Surface) {
	h, ok := m.handles[s]
	if !ok {
		return
	}
	m.removeHandle(h, s)
}

func (m *Manager) removeHandle(h workspace.Handle, s workspace.Surface) {
	delete(m.handles, s)
	ws, ok := m.set.WorkspaceOf(h)
	if !ok {
		return
	}
	ws.RemoveWindow(h)
	m.logger.Info("window removed", "window", h, "workspace", ws.ID())

	if m.focused == h {
		m.focused = 0
		m.refocus()
	}
	m.publish(Event{Kind: EventWindowRemoved, Workspace: ws.ID(), Window: h})
	m.publishOccupied()
}

// Sweep drops every record whose surface is no longer alive and returns how
// many were removed.
func (m *Manager) Sweep() int {
	var dead []workspace.Surface
	for s := range m.handles {
		if !s.Alive() {
			dead = append(dead, s)
		}
	}
	for _, s := range dead {
		m.logger.Warn("dropping window with dead surface", "window", m.handles[s])
		m.removeHandle(m.handles[s], s)
	}
	return len(dead)
}

// AddOutput registers or updates an output. Configured scale and transform
// overrides and screen padding are applied first.
func (m *Manager) AddOutput(o *workspace.Output) {
	if oc, ok := m.cfg.Outputs[o.Name]; ok {
		if oc.Scale > 0 {
			o.Scale = oc.Scale
		}
		if oc.Transform != "" {
			if t, err := workspace.ParseTransform(oc.Transform); err == nil {
				o.Transform = t
			}
		}
	}
	pad := m.cfg.ScreenPadding
	o.Reserved.Top += pad.Top
	o.Reserved.Bottom += pad.Bottom
	o.Reserved.Left += pad.Left
	o.Reserved.Right += pad.Right

	m.set.AddOutput(o)
	m.logger.Info("output configured",
		"output", o.Name,
		"geometry", o.Geometry(),
		"usable", o.Usable(),
		"scale", o.Scale,
		"transform", o.Transform)
	m.publish(Event{Kind: EventLayoutChanged, Workspace: m.set.CurrentID()})
}

// RemoveOutput unregisters an output.
func (m *Manager) RemoveOutput(name string) {
	m.set.RemoveOutput(name)
	m.logger.Info("output removed", "output", name)
}

// PointerMoved records the pointer position and, when focus follows the
// mouse, focuses the window under it.
func (m *Manager) PointerMoved(p geometry.PointF) {
	m.pointer = p
	if !m.cfg.FocusFollowsMouse {
		return
	}
	if w, _, ok := m.set.WindowUnder(p); ok && w.Handle != m.focused {
		m.Focus(w.Handle)
	}
}

// Pointer returns the last recorded pointer position.
func (m *Manager) Pointer() geometry.PointF { return m.pointer }

// Focus activates h and deactivates the previous focus. Floating windows are
// raised. A zero or unknown handle only clears focus.
func (m *Manager) Focus(h workspace.Handle) {
	if prev, ok := m.set.Window(m.focused); ok && m.focused != h {
		prev.Surface.SetActivated(false)
	}
	w, ok := m.set.Window(h)
	if !ok {
		m.focused = 0
		return
	}
	m.focused = h
	w.Surface.SetActivated(true)
	if ws, ok := m.set.WorkspaceOf(h); ok && ws.Raise(h) {
		if st, ok := w.Surface.(Stacker); ok {
			st.Raise()
		}
	}
}

// refocus picks a new focus on the current workspace: the window under the
// pointer, else the first window in stacking order.
func (m *Manager) refocus() {
	if w, _, ok := m.set.WindowUnder(m.pointer); ok {
		m.Focus(w.Handle)
		return
	}
	for w := range m.set.Current().Windows() {
		m.Focus(w.Handle)
		return
	}
	m.Focus(0)
}

// ActivateWorkspace shows workspace id, hiding the windows of the previous
// one.
func (m *Manager) ActivateWorkspace(id int) error {
	prev := m.set.Current()
	if err := m.set.Activate(id); err != nil {
		return err
	}
	next := m.set.Current()
	if prev == next {
		return nil
	}
	for w := range prev.Windows() {
		setVisible(w, false)
	}
	for w := range next.Windows() {
		setVisible(w, true)
	}
	m.refocus()
	m.logger.Info("workspace activated", "workspace", id)
	m.publish(Event{Kind: EventActiveWorkspace, Workspace: id, Occupied: m.set.Occupied()})
	return nil
}

// MoveWindow sends h (the focused window when zero) to workspace id and
// optionally follows it there.
func (m *Manager) MoveWindow(h workspace.Handle, id int, follow bool) error {
	if h == 0 {
		h = m.focused
	}
	src, ok := m.set.WorkspaceOf(h)
	if err := m.set.MoveWindowToWorkspace(h, id); err != nil {
		return err
	}
	if !ok {
		if follow {
			return m.ActivateWorkspace(id)
		}
		return nil
	}

	if w, ok := m.set.Window(h); ok && id != m.set.CurrentID() {
		setVisible(w, false)
	}
	if src.ID() != id {
		m.publishOccupied()
	}
	if follow {
		if err := m.ActivateWorkspace(id); err != nil {
			return err
		}
		m.Focus(h)
		return nil
	}
	if m.focused == h && id != m.set.CurrentID() {
		m.refocus()
	}
	return nil
}

// ToggleFloating flips h (the focused window when zero) between layers.
func (m *Manager) ToggleFloating(h workspace.Handle) (bool, error) {
	if h == 0 {
		h = m.focused
	}
	if !m.set.ToggleFloating(h) {
		return false, fmt.Errorf("no such window: %d", h)
	}
	ws, _ := m.set.WorkspaceOf(h)
	m.publish(Event{Kind: EventLayoutChanged, Workspace: ws.ID(), Window: h})
	return ws.IsFloating(h), nil
}

// AdjustRatio resizes the split deciding h's region. A zero handle uses the
// focused window, falling back to the root split of the current workspace.
func (m *Manager) AdjustRatio(h workspace.Handle, value float64, mode tiling.RatioMode) (float64, error) {
	if h == 0 {
		h = m.focused
	}
	ratio, ok := m.set.AdjustRatio(h, value, mode)
	if !ok && h == m.focused && h != 0 {
		// Floating or lone focused windows have no split; use the root.
		ratio, ok = m.set.AdjustRatio(0, value, mode)
	}
	if !ok {
		return 0, fmt.Errorf("no split to adjust")
	}
	m.publish(Event{Kind: EventLayoutChanged, Workspace: m.set.CurrentID(), Window: h})
	return ratio, nil
}

// CloseFocused asks the focused window to close.
func (m *Manager) CloseFocused() {
	if w, ok := m.set.Window(m.focused); ok {
		m.logger.Debug("closing window", "window", w.Handle)
		w.Surface.Close()
	}
}

// Autostart spawns the configured startup commands.
func (m *Manager) Autostart() {
	for _, cmd := range m.cfg.Autostart {
		if err := m.spawn(cmd); err != nil {
			m.logger.Error("autostart failed", "command", cmd, "error", err)
			continue
		}
		m.logger.Info("autostarted", "command", cmd)
	}
}

// DumpTrees logs every workspace tree at info level.
func (m *Manager) DumpTrees() {
	for ws := range m.set.All() {
		m.logger.Info("workspace tree",
			"workspace", ws.ID(),
			"current", ws.ID() == m.set.CurrentID(),
			"windows", ws.Len(),
			"tree", "\n"+ws.Tree().String())
	}
}

func (m *Manager) publish(ev Event) {
	m.events.publish(ev)
}

func (m *Manager) publishOccupied() {
	m.publish(Event{
		Kind:      EventOccupiedWorkspaces,
		Workspace: m.set.CurrentID(),
		Occupied:  m.set.Occupied(),
	})
}

func setVisible(w *workspace.Window, visible bool) {
	if v, ok := w.Surface.(Visibility); ok {
		v.SetVisible(visible)
	}
}
