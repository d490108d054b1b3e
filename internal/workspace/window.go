// Package workspace keeps the window registry of the window manager: which
// windows exist, which workspace holds them, whether they are tiled or
// floating, and where they are on screen.
//
// Nothing in this package is safe for concurrent use. Callers serialise
// access through the event loop that also dispatches protocol events.
package workspace

import (
	"github.com/spiralwm/spiral/internal/geometry"
	"github.com/spiralwm/spiral/internal/tiling"
)

// Handle is the stable identity of a managed window. The zero Handle never
// refers to a window.
type Handle = tiling.WindowID

// Kind distinguishes the two client protocols a window can come from.
type Kind int

const (
	// KindNative is a toplevel speaking the compositor's own protocol.
	KindNative Kind = iota
	// KindX11 is a window from an X11 client.
	KindX11
)

func (k Kind) String() string {
	if k == KindX11 {
		return "x11"
	}
	return "native"
}

// Hints are the size constraints and parent relationship a client declared
// when the window was mapped. Zero sizes mean "unconstrained".
type Hints struct {
	MinSize   geometry.Size
	MaxSize   geometry.Size
	HasParent bool
}

// Surface is the capability set the core needs from a client window. The
// protocol backend provides one implementation per client kind.
type Surface interface {
	Kind() Kind
	Title() string
	AppID() string
	Hints() Hints

	// Geometry is the visible content area relative to the surface origin.
	// Its location is the offset of the content inside the buffer, which is
	// non-zero for clients that draw their own shadows.
	Geometry() geometry.Rect
	// BBox is the bounding box of the whole surface tree relative to the
	// surface origin.
	BBox() geometry.Rect
	// InInputRegion reports whether p, relative to the render location,
	// falls inside the surface's input region.
	InInputRegion(p geometry.PointF) bool

	// Configure asks the client to adopt r.
	Configure(r geometry.Rect)
	SetActivated(activated bool)
	Close()
	Alive() bool
}

// Window is the record the core keeps for one client window. The core owns
// the record but never the client resource behind Surface.
type Window struct {
	Handle  Handle
	Surface Surface
	// Rect is the rectangle assigned by the layout engine, or the floating
	// position, in logical units.
	Rect geometry.Rect
}

// NewWindow returns a record for s with the given handle.
func NewWindow(h Handle, s Surface) *Window {
	return &Window{Handle: h, Surface: s}
}

// RenderLocation is where the surface origin must be drawn so that its
// content geometry lands on Rect.
func (w *Window) RenderLocation() geometry.Point {
	return w.Rect.Loc().Sub(w.Surface.Geometry().Loc())
}

// BBox is the surface bounding box placed at the window's render location.
func (w *Window) BBox() geometry.Rect {
	return w.Surface.BBox().Translate(w.RenderLocation())
}
