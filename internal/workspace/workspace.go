package workspace

import (
	"iter"
	"log/slog"
	"slices"

	"github.com/spiralwm/spiral/internal/geometry"
	"github.com/spiralwm/spiral/internal/tiling"
)

// Options are the read-only settings every workspace is built with.
type Options struct {
	Gaps         tiling.Gaps
	DefaultRatio float64
	Logger       *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.DefaultRatio == 0 {
		o.DefaultRatio = tiling.DefaultRatio
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Workspace owns one layout tree, one floating stack and the records of every
// window in either of them, plus the outputs it is assigned to.
type Workspace struct {
	id       int
	opts     Options
	tree     *tiling.Tree
	floating []Handle // front is topmost
	windows  map[Handle]*Window
	outputs  []*Output
}

// New returns an empty workspace.
func New(id int, opts Options) *Workspace {
	return &Workspace{
		id:      id,
		opts:    opts.withDefaults(),
		tree:    tiling.NewTree(),
		windows: make(map[Handle]*Window),
	}
}

// ID returns the workspace index inside its set.
func (ws *Workspace) ID() int { return ws.id }

// Len returns the number of windows on the workspace.
func (ws *Workspace) Len() int { return len(ws.windows) }

// IsEmpty reports whether the workspace holds no windows.
func (ws *Workspace) IsEmpty() bool { return len(ws.windows) == 0 }

// Contains reports whether h is registered here.
func (ws *Workspace) Contains(h Handle) bool {
	_, ok := ws.windows[h]
	return ok
}

// Window returns the record for h.
func (ws *Workspace) Window(h Handle) (*Window, bool) {
	w, ok := ws.windows[h]
	return w, ok
}

// IsFloating reports whether h is in the floating stack.
func (ws *Workspace) IsFloating(h Handle) bool {
	return slices.Contains(ws.floating, h)
}

// Tree exposes the layout tree for inspection.
func (ws *Workspace) Tree() *tiling.Tree { return ws.tree }

// AddWindow registers w with the given starting rectangle. A record with the
// same handle is dropped first. Floating windows are centered on the first
// output and raised; tiled windows are inserted into the tree and the layout
// is recomputed.
func (ws *Workspace) AddWindow(w *Window, initial geometry.Rect) Layer {
	ws.RemoveWindow(w.Handle)

	w.Rect = initial
	ws.windows[w.Handle] = w

	layer := Classify(w.Surface.Hints())
	switch layer {
	case Floating:
		if usable, ok := ws.primaryUsable(); ok {
			w.Rect = usable.Center(w.Rect.Size())
		}
		ws.floating = slices.Insert(ws.floating, 0, w.Handle)
		w.Surface.Configure(w.Rect)
	default:
		ws.tree.Insert(w.Handle, ws.tree.NextSplit(), ws.opts.DefaultRatio)
		ws.arrange(w.Handle)
	}

	ws.opts.Logger.Debug("window added",
		"workspace", ws.id,
		"window", w.Handle,
		"layer", layer,
		"rect", w.Rect,
	)
	return layer
}

// RemoveWindow forgets h and returns its record so the caller can hand it to
// another workspace. Removing an unknown handle is a no-op.
func (ws *Workspace) RemoveWindow(h Handle) (*Window, bool) {
	w, ok := ws.windows[h]
	if !ok {
		return nil, false
	}
	delete(ws.windows, h)

	if i := slices.Index(ws.floating, h); i >= 0 {
		ws.floating = slices.Delete(ws.floating, i, i+1)
	} else if ws.tree.Remove(h) {
		ws.Arrange()
	}

	ws.opts.Logger.Debug("window removed", "workspace", ws.id, "window", h)
	return w, true
}

// ToggleFloating moves h between the tree and the floating stack. The
// window keeps its current rectangle as its floating position. It reports
// false when h is not on this workspace.
func (ws *Workspace) ToggleFloating(h Handle) bool {
	w, ok := ws.windows[h]
	if !ok {
		return false
	}

	if i := slices.Index(ws.floating, h); i >= 0 {
		ws.floating = slices.Delete(ws.floating, i, i+1)
		ws.tree.Insert(h, ws.tree.NextSplit(), ws.opts.DefaultRatio)
		ws.arrange(h)
	} else {
		ws.tree.Remove(h)
		ws.floating = slices.Insert(ws.floating, 0, h)
		w.Surface.Configure(w.Rect)
		ws.Arrange()
	}

	ws.opts.Logger.Debug("window toggled",
		"workspace", ws.id,
		"window", h,
		"floating", ws.IsFloating(h),
	)
	return true
}

// Raise moves a floating window to the top of the stack. It reports false
// for tiled or unknown windows.
func (ws *Workspace) Raise(h Handle) bool {
	i := slices.Index(ws.floating, h)
	if i < 0 {
		return false
	}
	if i > 0 {
		ws.floating = slices.Delete(ws.floating, i, i+1)
		ws.floating = slices.Insert(ws.floating, 0, h)
	}
	return true
}

// AdjustRatio changes the split that decides h's region and recomputes the
// layout. See tiling.Tree.UpdateRatio.
func (ws *Workspace) AdjustRatio(h Handle, value float64, mode tiling.RatioMode) (float64, bool) {
	ratio, ok := ws.tree.UpdateRatio(h, value, mode)
	if ok {
		ws.Arrange()
	}
	return ratio, ok
}

// Arrange recomputes every tiled rectangle against the first output's
// usable area and configures the windows whose rectangle changed. Without an
// output there is nothing to lay out against and tiled windows keep their
// rectangles until one is added.
func (ws *Workspace) Arrange() {
	ws.arrange(0)
}

// arrange is Arrange, except that inserted is configured even when its
// rectangle already matches the layout: the client has not been told its
// tiled size yet.
func (ws *Workspace) arrange(inserted Handle) {
	usable, ok := ws.primaryUsable()
	if !ok {
		return
	}
	for _, p := range tiling.Arrange(ws.tree, usable, ws.opts.Gaps) {
		w, ok := ws.windows[p.Window]
		if !ok || (w.Rect == p.Rect && p.Window != inserted) {
			continue
		}
		w.Rect = p.Rect
		w.Surface.Configure(p.Rect)
	}
}

// Windows yields the floating stack from top to bottom, then tiled windows
// in tree order.
func (ws *Workspace) Windows() iter.Seq[*Window] {
	return func(yield func(*Window) bool) {
		for _, h := range ws.floating {
			if !yield(ws.windows[h]) {
				return
			}
		}
		for h := range ws.tree.Windows() {
			if !yield(ws.windows[h]) {
				return
			}
		}
	}
}

// Element is one entry of the draw list.
type Element struct {
	Window         *Window
	Rect           geometry.Rect
	RenderLocation geometry.Point
	Floating       bool
}

// RenderElements returns the draw list, topmost first: the floating stack,
// then tiled windows. Borders are drawn around Rect.
func (ws *Workspace) RenderElements() []Element {
	elements := make([]Element, 0, len(ws.windows))
	for w := range ws.Windows() {
		elements = append(elements, Element{
			Window:         w,
			Rect:           w.Rect,
			RenderLocation: w.RenderLocation(),
			Floating:       ws.IsFloating(w.Handle),
		})
	}
	return elements
}

// Outputs yields the outputs assigned to this workspace.
func (ws *Workspace) Outputs() iter.Seq[*Output] {
	return slices.Values(ws.outputs)
}

// AddOutput assigns o to the workspace, replacing an output with the same
// name, and recomputes the layout.
func (ws *Workspace) AddOutput(o *Output) {
	if i := ws.outputIndex(o.Name); i >= 0 {
		ws.outputs[i] = o
	} else {
		ws.outputs = append(ws.outputs, o)
	}
	ws.Arrange()
}

// RemoveOutput unassigns the output called name.
func (ws *Workspace) RemoveOutput(name string) bool {
	i := ws.outputIndex(name)
	if i < 0 {
		return false
	}
	ws.outputs = slices.Delete(ws.outputs, i, i+1)
	ws.Arrange()
	return true
}

// OutputGeometry returns the usable rectangle of the named output if it is
// assigned to this workspace.
func (ws *Workspace) OutputGeometry(name string) (geometry.Rect, bool) {
	i := ws.outputIndex(name)
	if i < 0 {
		return geometry.Rect{}, false
	}
	return ws.outputs[i].Usable(), true
}

func (ws *Workspace) outputIndex(name string) int {
	return slices.IndexFunc(ws.outputs, func(o *Output) bool { return o.Name == name })
}

func (ws *Workspace) primaryUsable() (geometry.Rect, bool) {
	if len(ws.outputs) == 0 {
		return geometry.Rect{}, false
	}
	return ws.outputs[0].Usable(), true
}
