package workspace

import (
	"slices"
	"testing"

	"github.com/spiralwm/spiral/internal/geometry"
	"github.com/spiralwm/spiral/internal/tiling"
)

// fakeSurface is a client window with a configurable input region that
// records every configure request.
type fakeSurface struct {
	kind       Kind
	hints      Hints
	geo        geometry.Rect
	bbox       geometry.Rect
	input      func(geometry.PointF) bool
	configures []geometry.Rect
	activated  bool
	closed     bool
	dead       bool
}

func (f *fakeSurface) Kind() Kind                { return f.kind }
func (f *fakeSurface) Title() string             { return "fake" }
func (f *fakeSurface) AppID() string             { return "test.fake" }
func (f *fakeSurface) Hints() Hints              { return f.hints }
func (f *fakeSurface) Geometry() geometry.Rect   { return f.geo }
func (f *fakeSurface) BBox() geometry.Rect       { return f.bbox }
func (f *fakeSurface) Configure(r geometry.Rect) { f.configures = append(f.configures, r) }
func (f *fakeSurface) SetActivated(a bool)       { f.activated = a }
func (f *fakeSurface) Close()                    { f.closed = true }
func (f *fakeSurface) Alive() bool               { return !f.dead }

func (f *fakeSurface) InInputRegion(p geometry.PointF) bool {
	if f.input != nil {
		return f.input(p)
	}
	return true
}

// tiledSurface has a bbox large enough that only the window rect matters.
func tiledSurface() *fakeSurface {
	return &fakeSurface{bbox: geometry.Rect{Width: 4000, Height: 4000}}
}

func sizedSurface(w, h int) *fakeSurface {
	return &fakeSurface{bbox: geometry.Rect{Width: w, Height: h}, geo: geometry.Rect{Width: w, Height: h}}
}

func dialogSurface(w, h int) *fakeSurface {
	s := sizedSurface(w, h)
	s.hints.HasParent = true
	return s
}

func testOutput() *Output {
	return &Output{Name: "DP-1", Mode: geometry.Size{Width: 1280, Height: 800}, Scale: 1}
}

func newTestWorkspace() *Workspace {
	ws := New(0, Options{Gaps: tiling.Gaps{Outer: 5, Inner: 5}})
	ws.AddOutput(testOutput())
	return ws
}

func TestWorkspaceAddWindow_CanonicalLayout(t *testing.T) {
	ws := newTestWorkspace()
	a := NewWindow(1, tiledSurface())
	b := NewWindow(2, tiledSurface())

	if layer := ws.AddWindow(a, geometry.Rect{Width: 300, Height: 200}); layer != Tiled {
		t.Fatalf("expected tiled, got %v", layer)
	}
	if want := (geometry.Rect{X: 5, Y: 5, Width: 1270, Height: 790}); a.Rect != want {
		t.Fatalf("expected lone window at %v, got %v", want, a.Rect)
	}

	ws.AddWindow(b, geometry.Rect{})
	if want := (geometry.Rect{X: 10, Y: 10, Width: 625, Height: 780}); a.Rect != want {
		t.Fatalf("expected first window at %v, got %v", want, a.Rect)
	}
	if want := (geometry.Rect{X: 645, Y: 10, Width: 625, Height: 780}); b.Rect != want {
		t.Fatalf("expected second window at %v, got %v", want, b.Rect)
	}

	sa := a.Surface.(*fakeSurface)
	if len(sa.configures) != 2 || sa.configures[1] != a.Rect {
		t.Fatalf("expected two configures ending at %v, got %v", a.Rect, sa.configures)
	}
}

func TestWorkspaceArrange_IdempotentAndQuiet(t *testing.T) {
	ws := newTestWorkspace()
	for i := Handle(1); i <= 4; i++ {
		ws.AddWindow(NewWindow(i, tiledSurface()), geometry.Rect{})
	}
	before := ws.RenderElements()
	counts := map[Handle]int{}
	for _, e := range before {
		counts[e.Window.Handle] = len(e.Window.Surface.(*fakeSurface).configures)
	}

	ws.Arrange()

	after := ws.RenderElements()
	for i := range before {
		if before[i].Rect != after[i].Rect {
			t.Fatalf("rect changed on re-arrange: %v -> %v", before[i].Rect, after[i].Rect)
		}
		if n := len(after[i].Window.Surface.(*fakeSurface).configures); n != counts[after[i].Window.Handle] {
			t.Fatalf("unexpected configure for unchanged window %d", after[i].Window.Handle)
		}
	}
}

func TestWorkspaceAddWindow_ConfiguresWhenRequestMatchesSlot(t *testing.T) {
	ws := newTestWorkspace()
	s := tiledSurface()
	slot := geometry.Rect{X: 5, Y: 5, Width: 1270, Height: 790}
	ws.AddWindow(NewWindow(1, s), slot)

	if len(s.configures) != 1 || s.configures[0] != slot {
		t.Fatalf("expected one configure to %v, got %v", slot, s.configures)
	}

	ws.Arrange()
	if len(s.configures) != 1 {
		t.Fatalf("expected re-arrange to stay quiet, got %v", s.configures)
	}
}

func TestWorkspaceToggleFloating_ConfiguresOnReturnToTree(t *testing.T) {
	ws := newTestWorkspace()
	s := tiledSurface()
	ws.AddWindow(NewWindow(1, s), geometry.Rect{})
	slot := geometry.Rect{X: 5, Y: 5, Width: 1270, Height: 790}

	ws.ToggleFloating(1)
	n := len(s.configures)
	ws.ToggleFloating(1)

	if len(s.configures) != n+1 || s.configures[n] != slot {
		t.Fatalf("expected a configure to %v after re-tiling, got %v", slot, s.configures[n:])
	}
}

func TestWorkspaceAddWindow_DeduplicatesHandle(t *testing.T) {
	ws := newTestWorkspace()
	w := NewWindow(1, tiledSurface())
	ws.AddWindow(w, geometry.Rect{})
	ws.AddWindow(w, geometry.Rect{})

	if ws.Len() != 1 {
		t.Fatalf("expected 1 window, got %d", ws.Len())
	}
	if got := slices.Collect(ws.Tree().Windows()); !slices.Equal(got, []Handle{1}) {
		t.Fatalf("expected tree [1], got %v", got)
	}
}

func TestWorkspaceAddWindow_FloatingIsCentered(t *testing.T) {
	ws := newTestWorkspace()
	dialog := NewWindow(3, dialogSurface(400, 300))

	if layer := ws.AddWindow(dialog, geometry.Rect{X: 0, Y: 0, Width: 400, Height: 300}); layer != Floating {
		t.Fatalf("expected floating, got %v", layer)
	}
	// (1280-400)/2 = 440, (800-300)/2 = 250
	if want := (geometry.Rect{X: 440, Y: 250, Width: 400, Height: 300}); dialog.Rect != want {
		t.Fatalf("expected centered rect %v, got %v", want, dialog.Rect)
	}
	if ws.Tree().Contains(3) {
		t.Fatalf("floating window must not be in the tree")
	}
	if !ws.IsFloating(3) {
		t.Fatalf("expected window in floating stack")
	}
}

func TestWorkspaceAddWindow_FloatingNewestOnTop(t *testing.T) {
	ws := newTestWorkspace()
	ws.AddWindow(NewWindow(1, dialogSurface(100, 100)), geometry.Rect{Width: 100, Height: 100})
	ws.AddWindow(NewWindow(2, dialogSurface(100, 100)), geometry.Rect{Width: 100, Height: 100})

	var order []Handle
	for w := range ws.Windows() {
		order = append(order, w.Handle)
	}
	if !slices.Equal(order, []Handle{2, 1}) {
		t.Fatalf("expected newest floating first, got %v", order)
	}

	w, _, ok := ws.WindowUnder(geometry.PointF{X: 640, Y: 400})
	if !ok || w.Handle != 2 {
		t.Fatalf("expected topmost floating window 2 under pointer, got %v", w)
	}
}

func TestWorkspaceRemoveWindow(t *testing.T) {
	ws := newTestWorkspace()
	a := NewWindow(1, tiledSurface())
	b := NewWindow(2, tiledSurface())
	ws.AddWindow(a, geometry.Rect{})
	ws.AddWindow(b, geometry.Rect{})

	got, ok := ws.RemoveWindow(2)
	if !ok || got != b {
		t.Fatalf("expected removed record for window 2, got %v %v", got, ok)
	}
	if want := (geometry.Rect{X: 5, Y: 5, Width: 1270, Height: 790}); a.Rect != want {
		t.Fatalf("expected remaining window to fill %v, got %v", want, a.Rect)
	}

	if _, ok := ws.RemoveWindow(42); ok {
		t.Fatalf("expected removing unknown window to report false")
	}
}

func TestWorkspaceToggleFloating_KeepsRect(t *testing.T) {
	ws := newTestWorkspace()
	a := NewWindow(1, tiledSurface())
	b := NewWindow(2, tiledSurface())
	ws.AddWindow(a, geometry.Rect{})
	ws.AddWindow(b, geometry.Rect{})
	lastRect := b.Rect

	if !ws.ToggleFloating(2) {
		t.Fatalf("expected toggle to succeed")
	}
	if !ws.IsFloating(2) || ws.Tree().Contains(2) {
		t.Fatalf("expected window 2 to be floating only")
	}
	if b.Rect != lastRect {
		t.Fatalf("expected floating window to keep %v, got %v", lastRect, b.Rect)
	}
	if want := (geometry.Rect{X: 5, Y: 5, Width: 1270, Height: 790}); a.Rect != want {
		t.Fatalf("expected tiled window to grow to %v, got %v", want, a.Rect)
	}

	if !ws.ToggleFloating(2) {
		t.Fatalf("expected toggle back to succeed")
	}
	if ws.IsFloating(2) || !ws.Tree().Contains(2) {
		t.Fatalf("expected window 2 back in the tree")
	}
	if b.Rect != lastRect {
		t.Fatalf("expected re-tiled window at %v, got %v", lastRect, b.Rect)
	}

	if ws.ToggleFloating(99) {
		t.Fatalf("expected toggle of unknown window to fail")
	}
}

func TestWorkspaceWindowUnder_FloatingBeatsTiled(t *testing.T) {
	ws := newTestWorkspace()
	tiled := NewWindow(1, tiledSurface())
	ws.AddWindow(tiled, geometry.Rect{})
	floating := NewWindow(2, dialogSurface(200, 200))
	ws.AddWindow(floating, geometry.Rect{Width: 200, Height: 200})

	w, _, ok := ws.WindowUnder(geometry.PointF{X: 640, Y: 400})
	if !ok || w != floating {
		t.Fatalf("expected floating window to win, got %+v", w)
	}

	w, _, ok = ws.WindowUnder(geometry.PointF{X: 20, Y: 20})
	if !ok || w != tiled {
		t.Fatalf("expected tiled window outside the dialog, got %+v", w)
	}
}

func TestWorkspaceWindowUnder_RespectsInputRegion(t *testing.T) {
	ws := newTestWorkspace()
	tiled := NewWindow(1, tiledSurface())
	ws.AddWindow(tiled, geometry.Rect{})

	s := dialogSurface(200, 200)
	// Only the left half of the dialog accepts input.
	s.input = func(p geometry.PointF) bool { return p.X < 100 }
	floating := NewWindow(2, s)
	ws.AddWindow(floating, geometry.Rect{Width: 200, Height: 200})

	// Dialog spans x 540..740.
	if w, loc, ok := ws.WindowUnder(geometry.PointF{X: 560, Y: 400}); !ok || w != floating || loc != (geometry.Point{X: 540, Y: 300}) {
		t.Fatalf("expected dialog at render location (540,300), got %v %v %v", w, loc, ok)
	}
	if w, _, ok := ws.WindowUnder(geometry.PointF{X: 700, Y: 400}); !ok || w != tiled {
		t.Fatalf("expected point outside input region to fall through to tiled window, got %v", w)
	}
}

func TestWorkspaceWindowUnder_ClientShadowOffset(t *testing.T) {
	ws := newTestWorkspace()
	// Content sits 10px inside the buffer, which is 20px larger than content.
	s := &fakeSurface{
		hints: Hints{HasParent: true},
		geo:   geometry.Rect{X: 10, Y: 10, Width: 100, Height: 100},
		bbox:  geometry.Rect{X: 0, Y: 0, Width: 120, Height: 120},
	}
	w := NewWindow(1, s)
	ws.AddWindow(w, geometry.Rect{Width: 100, Height: 100})

	// Centered: (590,350). Render location = (580,340), bbox spans 580..700.
	if loc := w.RenderLocation(); loc != (geometry.Point{X: 580, Y: 340}) {
		t.Fatalf("unexpected render location %v", loc)
	}
	if _, _, ok := ws.WindowUnder(geometry.PointF{X: 585, Y: 345}); !ok {
		t.Fatalf("expected hit inside the shadow area of the bbox")
	}
	if _, _, ok := ws.WindowUnder(geometry.PointF{X: 575, Y: 345}); ok {
		t.Fatalf("expected miss outside the bbox")
	}
}

func TestWorkspaceNoOutput_DefersLayout(t *testing.T) {
	ws := New(0, Options{Gaps: tiling.Gaps{Outer: 5, Inner: 5}})
	a := NewWindow(1, tiledSurface())
	ws.AddWindow(a, geometry.Rect{X: 1, Y: 2, Width: 3, Height: 4})
	if a.Rect != (geometry.Rect{X: 1, Y: 2, Width: 3, Height: 4}) {
		t.Fatalf("expected initial rect kept without outputs, got %v", a.Rect)
	}

	ws.AddOutput(testOutput())
	if want := (geometry.Rect{X: 5, Y: 5, Width: 1270, Height: 790}); a.Rect != want {
		t.Fatalf("expected layout once output arrives, got %v", a.Rect)
	}
}

func TestWorkspaceOutputGeometry(t *testing.T) {
	ws := New(0, Options{})
	o := &Output{
		Name:     "HDMI-A-1",
		Location: geometry.Point{X: 1920},
		Mode:     geometry.Size{Width: 2560, Height: 1440},
		Scale:    2,
		Reserved: Insets{Top: 30},
	}
	if _, ok := ws.OutputGeometry("HDMI-A-1"); ok {
		t.Fatalf("expected no geometry before registration")
	}
	ws.AddOutput(o)
	got, ok := ws.OutputGeometry("HDMI-A-1")
	if !ok {
		t.Fatalf("expected geometry for registered output")
	}
	if want := (geometry.Rect{X: 1920, Y: 30, Width: 1280, Height: 690}); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if !ws.RemoveOutput("HDMI-A-1") || ws.RemoveOutput("HDMI-A-1") {
		t.Fatalf("expected remove to succeed exactly once")
	}
}

func TestWorkspaceAdjustRatio(t *testing.T) {
	ws := newTestWorkspace()
	a := NewWindow(1, tiledSurface())
	b := NewWindow(2, tiledSurface())
	ws.AddWindow(a, geometry.Rect{})
	ws.AddWindow(b, geometry.Rect{})

	ratio, ok := ws.AdjustRatio(2, 0.25, tiling.RatioSet)
	if !ok || ratio != 0.25 {
		t.Fatalf("expected ratio 0.25, got %v (ok=%v)", ratio, ok)
	}
	// 1270*0.25 = 317 (truncated); trailing region x = 5+1270-317 = 958.
	if want := (geometry.Rect{X: 963, Y: 10, Width: 307, Height: 780}); b.Rect != want {
		t.Fatalf("expected %v, got %v", want, b.Rect)
	}
}

func TestWorkspaceRaise(t *testing.T) {
	ws := newTestWorkspace()
	ws.AddWindow(NewWindow(1, dialogSurface(50, 50)), geometry.Rect{Width: 50, Height: 50})
	ws.AddWindow(NewWindow(2, dialogSurface(50, 50)), geometry.Rect{Width: 50, Height: 50})
	ws.AddWindow(NewWindow(3, tiledSurface()), geometry.Rect{})

	if !ws.Raise(1) {
		t.Fatalf("expected raise of floating window to succeed")
	}
	if ws.Raise(3) {
		t.Fatalf("expected raise of tiled window to fail")
	}
	elems := ws.RenderElements()
	if elems[0].Window.Handle != 1 || !elems[0].Floating || elems[2].Floating {
		t.Fatalf("unexpected draw order: %+v", elems)
	}
}
