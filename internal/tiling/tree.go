package tiling

import (
	"fmt"
	"iter"
	"strings"
)

// WindowID identifies a window inside a layout tree. The tree never owns the
// window itself, only this handle.
type WindowID uint64

// Orientation is the axis along which a split divides its region.
type Orientation int

const (
	// Horizontal places the two halves side by side (the width is divided).
	Horizontal Orientation = iota
	// Vertical stacks the two halves (the height is divided).
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Opposite returns the other orientation.
func (o Orientation) Opposite() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

// Ratio bounds. Ratios outside this range would produce windows too small to
// use, or negative sizes once gaps are subtracted.
const (
	MinRatio     = 0.05
	MaxRatio     = 0.95
	DefaultRatio = 0.5
)

// ClampRatio forces r into [MinRatio, MaxRatio].
func ClampRatio(r float64) float64 {
	if r != r { // NaN
		return DefaultRatio
	}
	if r < MinRatio {
		return MinRatio
	}
	if r > MaxRatio {
		return MaxRatio
	}
	return r
}

// RatioMode selects how UpdateRatio combines the value with the current ratio.
type RatioMode int

const (
	RatioSet RatioMode = iota
	RatioIncrement
	RatioDecrement
)

func (m RatioMode) String() string {
	switch m {
	case RatioIncrement:
		return "increment"
	case RatioDecrement:
		return "decrement"
	default:
		return "set"
	}
}

// ParseRatioMode parses "set", "increment" or "decrement".
func ParseRatioMode(s string) (RatioMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "set":
		return RatioSet, nil
	case "increment", "inc", "+":
		return RatioIncrement, nil
	case "decrement", "dec", "-":
		return RatioDecrement, nil
	}
	return RatioSet, fmt.Errorf("unknown ratio mode %q (expected set, increment or decrement)", s)
}

type nodeKind int

const (
	kindEmpty nodeKind = iota
	kindLeaf
	kindSplit
)

// node is one slot of the tree. The left child of every split is a leaf;
// only the right child may itself be a split.
type node struct {
	kind        nodeKind
	window      WindowID
	orientation Orientation
	ratio       float64
	left        *node
	right       *node
}

func (n *node) isLeaf(w WindowID) bool {
	return n != nil && n.kind == kindLeaf && n.window == w
}

func (n *node) empty() bool {
	return n == nil || n.kind == kindEmpty
}

// Tree is a right-leaning binary space partition. The zero value is an empty
// tree ready to use.
type Tree struct {
	root *node
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{root: &node{}}
}

// Insert adds w to the tree. An empty tree becomes a single leaf, a leaf is
// split into (old, w), and a split recurses into its right child.
func (t *Tree) Insert(w WindowID, orientation Orientation, ratio float64) {
	ratio = ClampRatio(ratio)
	slot := &t.root
	for {
		n := *slot
		switch {
		case n.empty():
			*slot = &node{kind: kindLeaf, window: w}
			return
		case n.kind == kindLeaf:
			*slot = &node{
				kind:        kindSplit,
				orientation: orientation,
				ratio:       ratio,
				left:        n,
				right:       &node{kind: kindLeaf, window: w},
			}
			return
		default:
			slot = &n.right
		}
	}
}

// Remove deletes w from the tree, splicing the sibling subtree into the
// parent split's slot. It reports whether w was present; removing an absent
// window is a no-op.
func (t *Tree) Remove(w WindowID) bool {
	return removeFrom(&t.root, w)
}

func removeFrom(slot **node, w WindowID) bool {
	n := *slot
	if n.empty() {
		return false
	}
	switch n.kind {
	case kindLeaf:
		if n.window != w {
			return false
		}
		*slot = &node{}
		return true
	case kindSplit:
		if n.left.isLeaf(w) {
			*slot = n.right
			return true
		}
		if n.right.isLeaf(w) {
			*slot = n.left
			return true
		}
		return removeFrom(&n.left, w) || removeFrom(&n.right, w)
	}
	return false
}

// NextSplit returns the orientation the next insertion should use. Splits
// alternate along the right spine, which produces a dwindling spiral.
func (t *Tree) NextSplit() Orientation {
	n := t.root
	if n.empty() || n.kind == kindLeaf {
		return Horizontal
	}
	for n.right.kind == kindSplit {
		n = n.right
	}
	return n.orientation.Opposite()
}

// Windows yields every window in depth-first, left-then-right order. The
// sequence is recomputed each time it is ranged over.
func (t *Tree) Windows() iter.Seq[WindowID] {
	return func(yield func(WindowID) bool) {
		walk(t.root, yield)
	}
}

func walk(n *node, yield func(WindowID) bool) bool {
	if n.empty() {
		return true
	}
	if n.kind == kindLeaf {
		return yield(n.window)
	}
	return walk(n.left, yield) && walk(n.right, yield)
}

// Contains reports whether w is a leaf of the tree.
func (t *Tree) Contains(w WindowID) bool {
	for id := range t.Windows() {
		if id == w {
			return true
		}
	}
	return false
}

// Len returns the number of windows in the tree.
func (t *Tree) Len() int {
	count := 0
	for range t.Windows() {
		count++
	}
	return count
}

// IsEmpty reports whether the tree holds no windows.
func (t *Tree) IsEmpty() bool {
	return t.root.empty()
}

// UpdateRatio adjusts the split that decides target's region, i.e. the split
// holding target as a direct child. A zero target addresses the root split.
// The resulting ratio is clamped to [MinRatio, MaxRatio]. It returns the new
// ratio and false when no such split exists.
func (t *Tree) UpdateRatio(target WindowID, value float64, mode RatioMode) (float64, bool) {
	s := t.splitFor(target)
	if s == nil {
		return 0, false
	}
	switch mode {
	case RatioIncrement:
		s.ratio += value
	case RatioDecrement:
		s.ratio -= value
	default:
		s.ratio = value
	}
	s.ratio = ClampRatio(s.ratio)
	return s.ratio, true
}

func (t *Tree) splitFor(target WindowID) *node {
	n := t.root
	if n.empty() || n.kind != kindSplit {
		return nil
	}
	if target == 0 {
		return n
	}
	for n != nil && n.kind == kindSplit {
		if n.left.isLeaf(target) || n.right.isLeaf(target) {
			return n
		}
		n = n.right
	}
	return nil
}

// NodeSnapshot is a serialisable copy of one tree node.
type NodeSnapshot struct {
	Kind        string        `json:"kind"`
	Window      WindowID      `json:"window,omitempty"`
	Orientation string        `json:"orientation,omitempty"`
	Ratio       float64       `json:"ratio,omitempty"`
	Left        *NodeSnapshot `json:"left,omitempty"`
	Right       *NodeSnapshot `json:"right,omitempty"`
}

// Snapshot returns a deep copy of the tree shape suitable for JSON output.
func (t *Tree) Snapshot() *NodeSnapshot {
	return snapshot(t.root)
}

func snapshot(n *node) *NodeSnapshot {
	switch {
	case n.empty():
		return &NodeSnapshot{Kind: "empty"}
	case n.kind == kindLeaf:
		return &NodeSnapshot{Kind: "leaf", Window: n.window}
	default:
		return &NodeSnapshot{
			Kind:        "split",
			Orientation: n.orientation.String(),
			Ratio:       n.ratio,
			Left:        snapshot(n.left),
			Right:       snapshot(n.right),
		}
	}
}

// String renders the tree as an indented outline, one node per line.
func (t *Tree) String() string {
	return t.Snapshot().String()
}

// String renders the snapshot as an indented outline, one node per line.
func (s *NodeSnapshot) String() string {
	var b strings.Builder
	s.dump(&b, 0)
	return strings.TrimRight(b.String(), "\n")
}

func (s *NodeSnapshot) dump(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	switch s.Kind {
	case "leaf":
		fmt.Fprintf(b, "%sleaf %d\n", indent, s.Window)
	case "split":
		fmt.Fprintf(b, "%ssplit %s %.2f\n", indent, s.Orientation, s.Ratio)
		s.Left.dump(b, depth+1)
		s.Right.dump(b, depth+1)
	default:
		fmt.Fprintf(b, "%sempty\n", indent)
	}
}
