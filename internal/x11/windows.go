package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/spiralwm/spiral/internal/geometry"
	"github.com/spiralwm/spiral/internal/workspace"
)

// clientEventMask is selected on every managed client.
const clientEventMask = xproto.EventMaskEnterWindow | xproto.EventMaskPropertyChange

// Window is a managed X11 client. It implements workspace.Surface together
// with the optional visibility and stacking capabilities.
type Window struct {
	*xwindow.Window
	style *borderStyle

	title string
	class string
	hints workspace.Hints
	// rect is the frame the window was last configured to, border included.
	rect geometry.Rect

	visible bool
	// ownUnmaps counts UnmapNotify events caused by hiding the window, which
	// must not be mistaken for the client withdrawing it.
	ownUnmaps int
	dead      bool
}

var _ workspace.Surface = (*Window)(nil)

func newWindow(xu *xgbutil.XUtil, id xproto.Window, style *borderStyle) *Window {
	w := &Window{
		Window:  xwindow.New(xu, id),
		style:   style,
		visible: true,
	}
	w.title = windowTitle(xu, id)
	if class, err := icccm.WmClassGet(xu, id); err == nil {
		w.class = class.Class
	}
	w.hints = windowHints(xu, id)

	if geom, err := xproto.GetGeometry(xu.Conn(), xproto.Drawable(id)).Reply(); err == nil {
		w.rect = geometry.Rect{X: int(geom.X), Y: int(geom.Y), Width: int(geom.Width), Height: int(geom.Height)}
	}
	return w
}

func windowTitle(xu *xgbutil.XUtil, id xproto.Window) string {
	name, err := ewmh.WmNameGet(xu, id)
	if name == "" || err != nil {
		name, _ = icccm.WmNameGet(xu, id)
	}
	return name
}

// windowHints reads WM_NORMAL_HINTS and WM_TRANSIENT_FOR.
func windowHints(xu *xgbutil.XUtil, id xproto.Window) workspace.Hints {
	var h workspace.Hints
	if nh, err := icccm.WmNormalHintsGet(xu, id); err == nil {
		if nh.Flags&icccm.SizeHintPMinSize != 0 {
			h.MinSize = geometry.Size{Width: int(nh.MinWidth), Height: int(nh.MinHeight)}
		}
		if nh.Flags&icccm.SizeHintPMaxSize != 0 {
			h.MaxSize = geometry.Size{Width: int(nh.MaxWidth), Height: int(nh.MaxHeight)}
		}
	}
	if parent, err := icccm.WmTransientForGet(xu, id); err == nil && parent != 0 {
		h.HasParent = true
	}
	return h
}

// manageable reports whether a window should be tiled or floated rather than
// left alone. Docks, desktops and notifications are mapped but not managed.
func manageable(xu *xgbutil.XUtil, id xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(xu, id)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return true
}

func isDock(xu *xgbutil.XUtil, id xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(xu, id)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

func (w *Window) Kind() workspace.Kind { return workspace.KindX11 }
func (w *Window) Title() string        { return w.title }
func (w *Window) AppID() string        { return w.class }
func (w *Window) Hints() workspace.Hints {
	return w.hints
}

// Geometry is the frame size. X positions a window by its outer border
// corner, so the content sits at the origin.
func (w *Window) Geometry() geometry.Rect {
	return geometry.Rect{Width: w.rect.Width, Height: w.rect.Height}
}

func (w *Window) BBox() geometry.Rect { return w.Geometry() }

// InInputRegion treats the whole frame as input. Shaped windows are rare
// enough among managed clients to ignore.
func (w *Window) InInputRegion(p geometry.PointF) bool {
	return w.Geometry().Contains(p)
}

// Configure places the frame at r. The client area shrinks by the border on
// each side.
func (w *Window) Configure(r geometry.Rect) {
	if w.dead {
		return
	}
	w.rect = r
	bw := w.style.width
	width := max(r.Width-2*bw, 1)
	height := max(r.Height-2*bw, 1)
	w.Window.Configure(xproto.ConfigWindowX|xproto.ConfigWindowY|
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		r.X, r.Y, width, height, 0, 0)
	w.sendConfigureNotify(width, height)
}

// sendConfigureNotify tells the client its geometry even when the server
// did not change anything, as ICCCM requires for redirected requests.
func (w *Window) sendConfigureNotify(width, height int) {
	ev := xproto.ConfigureNotifyEvent{
		Event:            w.Id,
		Window:           w.Id,
		AboveSibling:     xevent.NoWindow,
		X:                int16(w.rect.X),
		Y:                int16(w.rect.Y),
		Width:            uint16(width),
		Height:           uint16(height),
		BorderWidth:      uint16(w.style.width),
		OverrideRedirect: false,
	}
	xproto.SendEvent(w.X.Conn(), false, w.Id,
		xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

// SetActivated moves input focus and recolours the border.
func (w *Window) SetActivated(activated bool) {
	if w.dead {
		return
	}
	pixel := w.style.inactive
	if activated {
		pixel = w.style.active
		w.Window.Focus()
		ewmh.ActiveWindowSet(w.X, w.Id)
	}
	w.Change(xproto.CwBorderPixel, pixel)
}

// Close asks the client to close through WM_DELETE_WINDOW and kills the
// connection when the protocol is not supported.
func (w *Window) Close() {
	if w.dead {
		return
	}
	protocols, _ := icccm.WmProtocolsGet(w.X, w.Id)
	for _, p := range protocols {
		if p != "WM_DELETE_WINDOW" {
			continue
		}
		protoAtom, err := xprop.Atm(w.X, "WM_PROTOCOLS")
		if err != nil {
			break
		}
		deleteAtom, err := xprop.Atm(w.X, "WM_DELETE_WINDOW")
		if err != nil {
			break
		}
		cm, err := xevent.NewClientMessage(32, w.Id, protoAtom, int(deleteAtom), int(xproto.TimeCurrentTime))
		if err != nil {
			break
		}
		xproto.SendEvent(w.X.Conn(), false, w.Id, xproto.EventMaskNoEvent, string(cm.Bytes()))
		return
	}
	xproto.KillClient(w.X.Conn(), uint32(w.Id))
}

// Alive reports whether the X window still exists.
func (w *Window) Alive() bool {
	if w.dead {
		return false
	}
	_, err := xproto.GetGeometry(w.X.Conn(), xproto.Drawable(w.Id)).Reply()
	return err == nil
}

// SetVisible maps or unmaps the window and keeps WM_STATE in step.
func (w *Window) SetVisible(visible bool) {
	if w.dead || w.visible == visible {
		return
	}
	w.visible = visible
	if visible {
		w.Map()
		icccm.WmStateSet(w.X, w.Id, &icccm.WmState{State: icccm.StateNormal})
		return
	}
	w.ownUnmaps++
	w.Unmap()
	icccm.WmStateSet(w.X, w.Id, &icccm.WmState{State: icccm.StateIconic})
}

// Raise puts the window on top of its siblings.
func (w *Window) Raise() {
	if w.dead {
		return
	}
	w.Stack(xproto.StackModeAbove)
}

// refresh rereads properties the client may change while mapped.
func (w *Window) refresh(atom string) {
	switch atom {
	case "_NET_WM_NAME", "WM_NAME":
		w.title = windowTitle(w.X, w.Id)
	case "WM_NORMAL_HINTS", "WM_TRANSIENT_FOR":
		w.hints = windowHints(w.X, w.Id)
	}
}
