package x11

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/spiralwm/spiral/internal/config"
	"github.com/spiralwm/spiral/internal/geometry"
	"github.com/spiralwm/spiral/internal/wm"
	"github.com/spiralwm/spiral/internal/workspace"
)

// ErrEventLoopStopped is returned by Run when the X connection goes away.
var ErrEventLoopStopped = errors.New("X event loop stopped")

type borderStyle struct {
	width    int
	active   uint32
	inactive uint32
}

func newBorderStyle(b config.Borders) (borderStyle, error) {
	active, err := parsePixel(b.ActiveColor)
	if err != nil {
		return borderStyle{}, fmt.Errorf("borders.active_color: %w", err)
	}
	inactive, err := parsePixel(b.InactiveColor)
	if err != nil {
		return borderStyle{}, fmt.Errorf("borders.inactive_color: %w", err)
	}
	return borderStyle{width: b.Thickness, active: active, inactive: inactive}, nil
}

// parsePixel turns "#rrggbb" into a TrueColor pixel value.
func parsePixel(hex string) (uint32, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, err
	}
	r, g, b := c.RGB255()
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b), nil
}

// Backend drives a wm.Manager from X11 events. It is the sole owner of the
// manager while Run is active; other goroutines reach the manager through
// the wm.Loop it drains.
type Backend struct {
	conn   *Connection
	m      *wm.Manager
	loop   *wm.Loop
	logger *slog.Logger
	style  borderStyle

	windows map[xproto.Window]*Window
	// order is the mapping order published as _NET_CLIENT_LIST.
	order   []xproto.Window
	docks   map[xproto.Window]struct{}
	outputs map[string]struct{}
}

// NewBackend prepares a backend. Nothing is sent to the server until Start.
func NewBackend(conn *Connection, m *wm.Manager, loop *wm.Loop, logger *slog.Logger) (*Backend, error) {
	style, err := newBorderStyle(m.Config().Borders)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn:    conn,
		m:       m,
		loop:    loop,
		logger:  logger,
		style:   style,
		windows: make(map[xproto.Window]*Window),
		docks:   make(map[xproto.Window]struct{}),
		outputs: make(map[string]struct{}),
	}, nil
}

// XUtil exposes the connection for keybinding registration.
func (b *Backend) XUtil() *xgbutil.XUtil { return b.conn.XUtil }

// RootWindow returns the X11 root window ID.
func (b *Backend) RootWindow() xproto.Window { return b.conn.Root }

// Start takes over the display: it claims the root window, publishes EWMH
// state, reads outputs and adopts windows that are already mapped.
func (b *Backend) Start() error {
	if err := b.conn.BecomeWM(); err != nil {
		return err
	}
	if err := b.conn.setupEWMH("spiral", b.m.Workspaces().Len()); err != nil {
		return err
	}

	xu, root := b.conn.XUtil, b.conn.Root
	xevent.MapRequestFun(b.onMapRequest).Connect(xu, root)
	xevent.ConfigureRequestFun(b.onConfigureRequest).Connect(xu, root)
	xevent.UnmapNotifyFun(b.onUnmapNotify).Connect(xu, root)
	xevent.DestroyNotifyFun(b.onDestroyNotify).Connect(xu, root)
	xevent.ConfigureNotifyFun(b.onRootConfigureNotify).Connect(xu, root)
	xevent.MotionNotifyFun(b.onRootMotion).Connect(xu, root)
	xevent.ClientMessageFun(b.onClientMessage).Connect(xu, root)

	b.m.Subscribe(b.onManagerEvent)

	if err := b.syncOutputs(); err != nil {
		return err
	}
	b.adoptExisting()
	return nil
}

// Run processes X events and queued loop calls on one goroutine until ctx is
// cancelled, a quit action runs or the connection drops.
func (b *Backend) Run(ctx context.Context) error {
	xu := b.conn.XUtil
	pingBefore, pingAfter, pingQuit := xevent.MainPing(xu)
	defer b.loop.Stop()

	for {
		select {
		case <-pingBefore:
			// xevent runs the callbacks between the two pings.
			<-pingAfter
		case call := <-b.loop.Calls():
			call()
		case <-b.m.Done():
			xevent.Quit(xu)
			return nil
		case <-ctx.Done():
			xevent.Quit(xu)
			return ctx.Err()
		case <-pingQuit:
			return ErrEventLoopStopped
		}
	}
}

func (b *Backend) adoptExisting() {
	tree, err := xproto.QueryTree(b.conn.XUtil.Conn(), b.conn.Root).Reply()
	if err != nil {
		b.logger.Warn("failed to query existing windows", "error", err)
		return
	}
	for _, id := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(b.conn.XUtil.Conn(), id).Reply()
		if err != nil || attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		b.manage(id, true)
	}
}

func (b *Backend) onMapRequest(xu *xgbutil.XUtil, ev xevent.MapRequestEvent) {
	if w, ok := b.windows[ev.Window]; ok {
		w.Map()
		return
	}
	b.manage(ev.Window, false)
}

// manage starts tracking a client. Windows that should not be tiled are
// mapped as they are; docks additionally reserve output space.
func (b *Backend) manage(id xproto.Window, mapped bool) {
	xu := b.conn.XUtil
	if !manageable(xu, id) {
		if !mapped {
			xproto.MapWindow(xu.Conn(), id)
		}
		if isDock(xu, id) {
			b.docks[id] = struct{}{}
			if err := b.syncOutputs(); err != nil {
				b.logger.Warn("failed to refresh outputs", "error", err)
			}
		}
		return
	}

	w := newWindow(xu, id, &b.style)
	initial := w.rect
	if err := w.Listen(clientEventMask); err != nil {
		b.logger.Debug("failed to select client events", "window", id, "error", err)
	}
	xproto.ConfigureWindow(xu.Conn(), id, xproto.ConfigWindowBorderWidth, []uint32{uint32(b.style.width)})
	w.Change(xproto.CwBorderPixel, b.style.inactive)

	xevent.EnterNotifyFun(b.onEnterNotify).Connect(xu, id)
	xevent.PropertyNotifyFun(b.onPropertyNotify).Connect(xu, id)
	xevent.ClientMessageFun(b.onClientMessage).Connect(xu, id)

	b.windows[id] = w
	b.order = append(b.order, id)
	if !mapped {
		w.Map()
	}
	icccm.WmStateSet(xu, id, &icccm.WmState{State: icccm.StateNormal})

	h := b.m.NewToplevel(w, initial)
	b.logger.Debug("managing window", "window", id, "handle", h, "class", w.class)
}

func (b *Backend) unmanage(id xproto.Window) {
	if _, ok := b.docks[id]; ok {
		delete(b.docks, id)
		if err := b.syncOutputs(); err != nil {
			b.logger.Warn("failed to refresh outputs", "error", err)
		}
		return
	}
	w, ok := b.windows[id]
	if !ok {
		return
	}
	delete(b.windows, id)
	b.order = slices.DeleteFunc(b.order, func(o xproto.Window) bool { return o == id })
	xevent.Detach(b.conn.XUtil, id)
	b.m.SurfaceDestroyed(w)
}

func (b *Backend) onUnmapNotify(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
	w, ok := b.windows[ev.Window]
	if !ok {
		b.unmanage(ev.Window)
		return
	}
	if w.ownUnmaps > 0 {
		w.ownUnmaps--
		return
	}
	icccm.WmStateSet(xu, ev.Window, &icccm.WmState{State: icccm.StateWithdrawn})
	b.unmanage(ev.Window)
}

func (b *Backend) onDestroyNotify(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
	if w, ok := b.windows[ev.Window]; ok {
		w.dead = true
	}
	b.unmanage(ev.Window)
}

// onConfigureRequest answers managed clients with the geometry the layout
// gave them. Unmanaged windows get what they asked for.
func (b *Backend) onConfigureRequest(xu *xgbutil.XUtil, ev xevent.ConfigureRequestEvent) {
	if w, ok := b.windows[ev.Window]; ok {
		if h, ok := b.m.HandleOf(w); ok && b.isFloating(h) {
			r := w.rect
			if ev.ValueMask&xproto.ConfigWindowWidth != 0 {
				r.Width = int(ev.Width) + 2*b.style.width
			}
			if ev.ValueMask&xproto.ConfigWindowHeight != 0 {
				r.Height = int(ev.Height) + 2*b.style.width
			}
			w.Configure(r)
			return
		}
		w.sendConfigureNotify(max(w.rect.Width-2*b.style.width, 1), max(w.rect.Height-2*b.style.width, 1))
		return
	}
	xwindow.New(xu, ev.Window).Configure(int(ev.ValueMask),
		int(ev.X), int(ev.Y), int(ev.Width), int(ev.Height),
		ev.Sibling, ev.StackMode)
}

func (b *Backend) isFloating(h workspace.Handle) bool {
	ws, ok := b.m.Workspaces().WorkspaceOf(h)
	return ok && ws.IsFloating(h)
}

func (b *Backend) onRootConfigureNotify(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
	if ev.Window != b.conn.Root {
		return
	}
	// RandR changes resize the root window.
	if err := b.syncOutputs(); err != nil {
		b.logger.Warn("failed to refresh outputs", "error", err)
	}
}

func (b *Backend) onRootMotion(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
	b.m.PointerMoved(geometry.PointF{X: float64(ev.RootX), Y: float64(ev.RootY)})
}

func (b *Backend) onEnterNotify(xu *xgbutil.XUtil, ev xevent.EnterNotifyEvent) {
	b.m.PointerMoved(geometry.PointF{X: float64(ev.RootX), Y: float64(ev.RootY)})
}

func (b *Backend) onPropertyNotify(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
	w, ok := b.windows[ev.Window]
	if !ok {
		return
	}
	name, err := xprop.AtomName(xu, ev.Atom)
	if err != nil {
		return
	}
	w.refresh(name)
}

// onClientMessage handles pager requests: switching desktop, activating or
// closing a window and moving a window to another desktop.
func (b *Backend) onClientMessage(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
	name, err := xprop.AtomName(xu, ev.Type)
	if err != nil {
		return
	}
	data := ev.Data.Data32
	if len(data) == 0 {
		return
	}

	if name == "_NET_CURRENT_DESKTOP" {
		if err := b.m.ActivateWorkspace(int(data[0])); err != nil {
			b.logger.Debug("ignoring desktop request", "error", err)
		}
		return
	}

	w, ok := b.windows[ev.Window]
	if !ok {
		return
	}
	h, ok := b.m.HandleOf(w)
	if !ok {
		return
	}
	switch name {
	case "_NET_ACTIVE_WINDOW":
		if ws, ok := b.m.Workspaces().WorkspaceOf(h); ok && ws.ID() != b.m.Workspaces().CurrentID() {
			if err := b.m.ActivateWorkspace(ws.ID()); err != nil {
				b.logger.Debug("ignoring activate request", "error", err)
				return
			}
		}
		b.m.Focus(h)
	case "_NET_CLOSE_WINDOW":
		w.Close()
	case "_NET_WM_DESKTOP":
		if err := b.m.MoveWindow(h, int(data[0]), false); err != nil {
			b.logger.Debug("ignoring desktop move request", "error", err)
		}
	}
}

// syncOutputs rereads the monitor layout and reconciles it with the manager.
func (b *Backend) syncOutputs() error {
	docks := make([]xproto.Window, 0, len(b.docks))
	for id := range b.docks {
		docks = append(docks, id)
	}
	outputs, err := b.conn.Outputs(docks)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(outputs))
	for _, o := range outputs {
		seen[o.Name] = struct{}{}
		b.m.AddOutput(o)
	}
	for name := range b.outputs {
		if _, ok := seen[name]; !ok {
			b.m.RemoveOutput(name)
		}
	}
	b.outputs = seen
	return nil
}

// onManagerEvent mirrors manager state into EWMH properties.
func (b *Backend) onManagerEvent(ev wm.Event) {
	switch ev.Kind {
	case wm.EventActiveWorkspace:
		if err := b.conn.SetCurrentDesktop(ev.Workspace); err != nil {
			b.logger.Debug("failed to publish current desktop", "error", err)
		}
	case wm.EventWindowAdded, wm.EventWindowRemoved:
		if err := b.conn.SetClientList(b.order); err != nil {
			b.logger.Debug("failed to publish client list", "error", err)
		}
		b.publishWindowDesktops()
	case wm.EventOccupiedWorkspaces:
		b.publishWindowDesktops()
	}
	if b.m.Focused() == 0 {
		b.conn.clearActiveWindow()
	}
}

func (b *Backend) publishWindowDesktops() {
	set := b.m.Workspaces()
	for id, w := range b.windows {
		h, ok := b.m.HandleOf(w)
		if !ok {
			continue
		}
		if ws, ok := set.WorkspaceOf(h); ok {
			b.conn.SetWindowDesktop(id, ws.ID())
		}
	}
}
