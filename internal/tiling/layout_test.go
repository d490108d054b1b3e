package tiling

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/spiralwm/spiral/internal/geometry"
)

var (
	screen   = geometry.Rect{X: 0, Y: 0, Width: 1280, Height: 800}
	fiveGaps = Gaps{Outer: 5, Inner: 5}
)

func placeRect(ps []Placement, w WindowID) geometry.Rect {
	for _, p := range ps {
		if p.Window == w {
			return p.Rect
		}
	}
	return geometry.Rect{}
}

func TestArrange_EmptyTree(t *testing.T) {
	if got := Arrange(NewTree(), screen, fiveGaps); len(got) != 0 {
		t.Fatalf("expected no placements, got %v", got)
	}
}

func TestArrange_SingleWindowUsesOuterGapOnly(t *testing.T) {
	tree := NewTree()
	tree.Insert(1, tree.NextSplit(), 0.5)

	got := Arrange(tree, screen, fiveGaps)
	if len(got) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(got))
	}
	want := geometry.Rect{X: 5, Y: 5, Width: 1270, Height: 790}
	if got[0].Rect != want {
		t.Fatalf("expected %v, got %v", want, got[0].Rect)
	}
}

func TestArrange_TwoWindowsHorizontalHalf(t *testing.T) {
	tree := NewTree()
	tree.Insert(1, tree.NextSplit(), 0.5)
	if o := tree.NextSplit(); o != Horizontal {
		t.Fatalf("expected second insert to split Horizontal, got %v", o)
	}
	tree.Insert(2, Horizontal, 0.5)

	got := Arrange(tree, screen, fiveGaps)

	// Region after outer gap: (5,5,1270,790). New half = 1270*0.5 = 635,
	// carved from the right edge: (640,5,635,790). The first window keeps
	// (5,5,635,790). Both deflated by inner=5.
	if a := placeRect(got, 1); a != (geometry.Rect{X: 10, Y: 10, Width: 625, Height: 780}) {
		t.Fatalf("unexpected rect for first window: %v", a)
	}
	if b := placeRect(got, 2); b != (geometry.Rect{X: 645, Y: 10, Width: 625, Height: 780}) {
		t.Fatalf("unexpected rect for second window: %v", b)
	}
}

func TestArrange_ThreeWindowsSpiral(t *testing.T) {
	tree := NewTree()
	for i := WindowID(1); i <= 3; i++ {
		tree.Insert(i, tree.NextSplit(), 0.5)
	}

	got := Arrange(tree, screen, fiveGaps)
	if ids := []WindowID{got[0].Window, got[1].Window, got[2].Window}; !slices.Equal(ids, []WindowID{1, 2, 3}) {
		t.Fatalf("expected placements in tree order, got %v", ids)
	}

	// Right half (640,5,635,790) split vertically: 790*0.5 = 395.
	// Top keeps (640,5,635,395), bottom gets (640,400,635,395).
	want := map[WindowID]geometry.Rect{
		1: {X: 10, Y: 10, Width: 625, Height: 780},
		2: {X: 645, Y: 10, Width: 625, Height: 385},
		3: {X: 645, Y: 405, Width: 625, Height: 385},
	}
	for w, r := range want {
		if g := placeRect(got, w); g != r {
			t.Fatalf("window %d: expected %v, got %v", w, r, g)
		}
	}
}

func TestArrange_RatioGivesShareToNewWindow(t *testing.T) {
	tree := NewTree()
	tree.Insert(1, Horizontal, 0.5)
	tree.Insert(2, Horizontal, 0.25)

	got := Arrange(tree, geometry.Rect{X: 0, Y: 0, Width: 1000, Height: 500}, Gaps{})
	// 1000*0.25 = 250 for the new window at the trailing edge.
	if b := placeRect(got, 2); b != (geometry.Rect{X: 750, Y: 0, Width: 250, Height: 500}) {
		t.Fatalf("unexpected rect for new window: %v", b)
	}
	if a := placeRect(got, 1); a != (geometry.Rect{X: 0, Y: 0, Width: 750, Height: 500}) {
		t.Fatalf("unexpected rect for first window: %v", a)
	}
}

func TestArrange_OffsetUsableArea(t *testing.T) {
	tree := NewTree()
	tree.Insert(1, Horizontal, 0.5)
	tree.Insert(2, Vertical, 0.5)

	// A bar reserving 30px at the top on a second monitor to the right.
	usable := geometry.Rect{X: 1920, Y: 30, Width: 1280, Height: 770}
	got := Arrange(tree, usable, Gaps{Outer: 0, Inner: 0})
	if a := placeRect(got, 1); a != (geometry.Rect{X: 1920, Y: 30, Width: 1280, Height: 385}) {
		t.Fatalf("unexpected top rect: %v", a)
	}
	if b := placeRect(got, 2); b != (geometry.Rect{X: 1920, Y: 415, Width: 1280, Height: 385}) {
		t.Fatalf("unexpected bottom rect: %v", b)
	}
}

func TestArrange_Idempotent(t *testing.T) {
	tree := NewTree()
	for i := WindowID(1); i <= 7; i++ {
		tree.Insert(i, tree.NextSplit(), 0.3+float64(i)*0.05)
	}
	first := Arrange(tree, screen, fiveGaps)
	second := Arrange(tree, screen, fiveGaps)
	if !slices.Equal(first, second) {
		t.Fatalf("expected identical placements, got %v and %v", first, second)
	}
}

func TestArrange_StaysInsideUsableArea(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		tree := NewTree()
		n := rng.Intn(12) + 2
		for i := 1; i <= n; i++ {
			tree.Insert(WindowID(i), tree.NextSplit(), 0.05+rng.Float64()*0.9)
		}
		gaps := Gaps{Outer: rng.Intn(20), Inner: rng.Intn(20)}
		usable := geometry.Rect{X: rng.Intn(100), Y: rng.Intn(100), Width: 800 + rng.Intn(2000), Height: 600 + rng.Intn(1200)}

		placements := Arrange(tree, usable, gaps)
		if len(placements) != n {
			t.Fatalf("trial %d: expected %d placements, got %d", trial, n, len(placements))
		}
		for i, p := range placements {
			outer := p.Rect.Inflate(gaps.Inner)
			if !usable.ContainsRect(outer) {
				t.Fatalf("trial %d: window %d rect %v (inflated %v) exceeds usable %v", trial, p.Window, p.Rect, outer, usable)
			}
			for _, q := range placements[i+1:] {
				if overlap := outer.Intersect(q.Rect.Inflate(gaps.Inner)); !overlap.Empty() {
					t.Fatalf("trial %d: windows %d and %d overlap by %v", trial, p.Window, q.Window, overlap)
				}
			}
		}
	}
}

func TestArrange_DegenerateUsableArea(t *testing.T) {
	tree := NewTree()
	tree.Insert(1, Horizontal, 0.5)
	tree.Insert(2, Horizontal, 0.5)

	got := Arrange(tree, geometry.Rect{X: 0, Y: 0, Width: 8, Height: 0}, fiveGaps)
	if len(got) != 2 {
		t.Fatalf("expected placements even for degenerate area, got %d", len(got))
	}
	for _, p := range got {
		if !p.Rect.Empty() {
			t.Fatalf("expected degenerate rect, got %v", p.Rect)
		}
	}
}
