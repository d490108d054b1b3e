package workspace

import "github.com/spiralwm/spiral/internal/geometry"

// WindowUnder returns the window that should receive input at p, along with
// its render location. Floating windows are checked top to bottom before
// tiled windows, so a floating window always wins over a tiled one beneath
// it. A window matches only when p is inside its bounding box and inside the
// surface's input region.
func (ws *Workspace) WindowUnder(p geometry.PointF) (*Window, geometry.Point, bool) {
	for _, h := range ws.floating {
		if loc, ok := hit(ws.windows[h], p); ok {
			return ws.windows[h], loc, true
		}
	}
	for h := range ws.tree.Windows() {
		if loc, ok := hit(ws.windows[h], p); ok {
			return ws.windows[h], loc, true
		}
	}
	return nil, geometry.Point{}, false
}

func hit(w *Window, p geometry.PointF) (geometry.Point, bool) {
	if w == nil || !w.BBox().Contains(p) {
		return geometry.Point{}, false
	}
	loc := w.RenderLocation()
	if !w.Surface.InInputRegion(p.Sub(loc)) {
		return geometry.Point{}, false
	}
	return loc, true
}
