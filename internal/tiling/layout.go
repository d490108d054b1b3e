package tiling

import (
	"github.com/spiralwm/spiral/internal/geometry"
)

// Gaps holds the spacing applied around tiled windows.
type Gaps struct {
	// Outer is the margin between the usable area and the tiled region.
	Outer int
	// Inner is subtracted from every side of each tiled window when more
	// than one window shares the region.
	Inner int
}

// Placement is a window together with the rectangle assigned to it.
type Placement struct {
	Window WindowID
	Rect   geometry.Rect
}

// Arrange walks the tree against the usable rectangle and returns one
// placement per window, in the same order as Tree.Windows. Identical inputs
// always produce identical output.
//
// A lone window fills the usable area inset by the outer gap. Otherwise each
// split along the right spine carves the newer region (ratio of the current
// width or height) from the trailing edge of the remaining area, leaves the
// leading remainder to its left leaf, and continues into the right child with
// the undeflated trailing region. Leaves are deflated by the inner gap.
func Arrange(t *Tree, usable geometry.Rect, gaps Gaps) []Placement {
	root := t.root
	if root.empty() {
		return nil
	}

	region := usable.Inset(gaps.Outer)
	if root.kind == kindLeaf {
		return []Placement{{Window: root.window, Rect: region}}
	}

	placements := make([]Placement, 0, 8)
	return place(placements, root, region, gaps.Inner)
}

func place(out []Placement, n *node, region geometry.Rect, inner int) []Placement {
	for !n.empty() {
		if n.kind == kindLeaf {
			return append(out, Placement{Window: n.window, Rect: region.Inset(inner)})
		}
		leading, trailing := divide(region, n.orientation, n.ratio)
		out = place(out, n.left, leading, inner)
		region = trailing
		n = n.right
	}
	return out
}

// divide splits r so the trailing part receives ratio of the extent along
// the split axis. Truncation keeps the result independent of float rounding
// mode; any remainder pixel goes to the leading part.
func divide(r geometry.Rect, o Orientation, ratio float64) (leading, trailing geometry.Rect) {
	if o == Horizontal {
		w := int(float64(r.Width) * ratio)
		leading = geometry.Rect{X: r.X, Y: r.Y, Width: r.Width - w, Height: r.Height}
		trailing = geometry.Rect{X: r.X + r.Width - w, Y: r.Y, Width: w, Height: r.Height}
		return leading, trailing
	}
	h := int(float64(r.Height) * ratio)
	leading = geometry.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height - h}
	trailing = geometry.Rect{X: r.X, Y: r.Y + r.Height - h, Width: r.Width, Height: h}
	return leading, trailing
}
