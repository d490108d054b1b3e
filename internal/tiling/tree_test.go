package tiling

import (
	"math/rand"
	"slices"
	"testing"
)

func collect(t *Tree) []WindowID {
	return slices.Collect(t.Windows())
}

// checkSpine fails the test if any split has a non-leaf left child.
func checkSpine(tb testing.TB, n *node) {
	tb.Helper()
	for n != nil && n.kind == kindSplit {
		if n.left == nil || n.left.kind != kindLeaf {
			tb.Fatalf("split has non-leaf left child: %+v", n.left)
		}
		if n.right == nil || n.right.kind == kindEmpty {
			tb.Fatalf("split has empty right child")
		}
		n = n.right
	}
}

func TestTreeInsert_BuildsRightSpine(t *testing.T) {
	tree := NewTree()
	for i := WindowID(1); i <= 5; i++ {
		tree.Insert(i, tree.NextSplit(), 0.5)
		checkSpine(t, tree.root)
	}

	got := collect(tree)
	want := []WindowID{1, 2, 3, 4, 5}
	if !slices.Equal(got, want) {
		t.Fatalf("expected windows %v, got %v", want, got)
	}
	if tree.Len() != 5 {
		t.Fatalf("expected len 5, got %d", tree.Len())
	}
}

func TestTreeInsert_ZeroValueTree(t *testing.T) {
	var tree Tree
	if !tree.IsEmpty() {
		t.Fatalf("expected zero tree to be empty")
	}
	if got := tree.NextSplit(); got != Horizontal {
		t.Fatalf("expected Horizontal on empty tree, got %v", got)
	}
	tree.Insert(7, Horizontal, 0.5)
	if !tree.Contains(7) {
		t.Fatalf("expected tree to contain 7")
	}
}

func TestTreeNextSplit_Alternates(t *testing.T) {
	tree := NewTree()
	want := []Orientation{Horizontal, Horizontal, Vertical, Horizontal, Vertical, Horizontal}

	for i, expected := range want {
		got := tree.NextSplit()
		if got != expected {
			t.Fatalf("insert %d: expected %v, got %v", i, expected, got)
		}
		tree.Insert(WindowID(i+1), got, 0.5)
	}

	// Consecutive splits on the spine must differ.
	var prev *Orientation
	for n := tree.root; n.kind == kindSplit; n = n.right {
		o := n.orientation
		if prev != nil && *prev == o {
			t.Fatalf("consecutive splits share orientation %v", o)
		}
		prev = &o
	}
}

func TestTreeRemove_SplicesSibling(t *testing.T) {
	tree := NewTree()
	for i := WindowID(1); i <= 4; i++ {
		tree.Insert(i, tree.NextSplit(), 0.5)
	}

	if !tree.Remove(1) {
		t.Fatalf("expected remove of root left leaf to succeed")
	}
	checkSpine(t, tree.root)
	if got := collect(tree); !slices.Equal(got, []WindowID{2, 3, 4}) {
		t.Fatalf("unexpected windows after removing 1: %v", got)
	}

	if !tree.Remove(4) {
		t.Fatalf("expected remove of deepest right leaf to succeed")
	}
	checkSpine(t, tree.root)
	if got := collect(tree); !slices.Equal(got, []WindowID{2, 3}) {
		t.Fatalf("unexpected windows after removing 4: %v", got)
	}

	tree.Remove(2)
	tree.Remove(3)
	if !tree.IsEmpty() {
		t.Fatalf("expected empty tree, got:\n%s", tree)
	}
}

func TestTreeRemove_AbsentIsNoop(t *testing.T) {
	tree := NewTree()
	if tree.Remove(1) {
		t.Fatalf("expected remove on empty tree to report false")
	}
	tree.Insert(1, Horizontal, 0.5)
	tree.Insert(2, Horizontal, 0.5)
	before := tree.String()
	if tree.Remove(99) {
		t.Fatalf("expected remove of absent window to report false")
	}
	if tree.String() != before {
		t.Fatalf("tree changed after absent remove:\n%s\nvs\n%s", before, tree)
	}
}

func TestTreeRemoveThenInsert_RestoresWindowSet(t *testing.T) {
	tree := NewTree()
	for i := WindowID(1); i <= 6; i++ {
		tree.Insert(i, tree.NextSplit(), 0.5)
	}
	tree.Remove(3)
	tree.Insert(3, tree.NextSplit(), 0.5)

	got := collect(tree)
	slices.Sort(got)
	if !slices.Equal(got, []WindowID{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("expected window set restored, got %v", got)
	}
}

func TestTree_RandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tree := NewTree()
	present := map[WindowID]bool{}

	for step := 0; step < 2000; step++ {
		id := WindowID(rng.Intn(24) + 1)
		if present[id] {
			if !tree.Remove(id) {
				t.Fatalf("step %d: remove(%d) reported absent", step, id)
			}
			delete(present, id)
		} else {
			tree.Insert(id, tree.NextSplit(), rng.Float64())
			present[id] = true
		}
		checkSpine(t, tree.root)

		seen := map[WindowID]int{}
		for w := range tree.Windows() {
			seen[w]++
		}
		if len(seen) != len(present) {
			t.Fatalf("step %d: expected %d windows, got %d", step, len(present), len(seen))
		}
		for w, n := range seen {
			if n != 1 || !present[w] {
				t.Fatalf("step %d: window %d seen %d times (present=%v)", step, w, n, present[w])
			}
		}
	}
}

func TestTreeWindows_StopsEarly(t *testing.T) {
	tree := NewTree()
	for i := WindowID(1); i <= 5; i++ {
		tree.Insert(i, tree.NextSplit(), 0.5)
	}
	var got []WindowID
	for w := range tree.Windows() {
		got = append(got, w)
		if len(got) == 2 {
			break
		}
	}
	if !slices.Equal(got, []WindowID{1, 2}) {
		t.Fatalf("expected early stop after 2 windows, got %v", got)
	}
}

func TestTreeUpdateRatio_ModesAndClamp(t *testing.T) {
	tree := NewTree()
	tree.Insert(1, Horizontal, 0.5)
	tree.Insert(2, Horizontal, 0.5)
	tree.Insert(3, Vertical, 0.5)

	if r, ok := tree.UpdateRatio(1, 0.1, RatioIncrement); !ok || r != 0.6 {
		t.Fatalf("expected root ratio 0.6, got %v (ok=%v)", r, ok)
	}
	if r, ok := tree.UpdateRatio(3, 0.2, RatioDecrement); !ok || r != 0.3 {
		t.Fatalf("expected inner ratio 0.3, got %v (ok=%v)", r, ok)
	}
	if tree.root.ratio != 0.6 {
		t.Fatalf("expected root ratio untouched at 0.6, got %v", tree.root.ratio)
	}

	if r, _ := tree.UpdateRatio(0, 5, RatioSet); r != MaxRatio {
		t.Fatalf("expected clamp to %v, got %v", MaxRatio, r)
	}
	for i := 0; i < 50; i++ {
		tree.UpdateRatio(2, 0.05, RatioDecrement)
	}
	if r := tree.root.right.ratio; r != MinRatio {
		t.Fatalf("expected repeated decrement to clamp at %v, got %v", MinRatio, r)
	}
}

func TestTreeUpdateRatio_NoSplit(t *testing.T) {
	tree := NewTree()
	if _, ok := tree.UpdateRatio(0, 0.5, RatioSet); ok {
		t.Fatalf("expected no split on empty tree")
	}
	tree.Insert(1, Horizontal, 0.5)
	if _, ok := tree.UpdateRatio(1, 0.5, RatioSet); ok {
		t.Fatalf("expected no split for single leaf")
	}
	tree.Insert(2, Horizontal, 0.5)
	if _, ok := tree.UpdateRatio(9, 0.5, RatioSet); ok {
		t.Fatalf("expected no split for absent window")
	}
}

func TestInsert_ClampsRatio(t *testing.T) {
	tree := NewTree()
	tree.Insert(1, Horizontal, 0.5)
	tree.Insert(2, Horizontal, 1.7)
	if tree.root.ratio != MaxRatio {
		t.Fatalf("expected inserted ratio clamped to %v, got %v", MaxRatio, tree.root.ratio)
	}
}

func TestTreeString(t *testing.T) {
	tree := NewTree()
	tree.Insert(1, Horizontal, 0.5)
	tree.Insert(2, Horizontal, 0.5)
	tree.Insert(3, Vertical, 0.25)

	want := "split horizontal 0.50\n" +
		"  leaf 1\n" +
		"  split vertical 0.25\n" +
		"    leaf 2\n" +
		"    leaf 3"
	if got := tree.String(); got != want {
		t.Fatalf("unexpected dump:\n%s\nwant:\n%s", got, want)
	}

	snap := tree.Snapshot()
	if snap.Kind != "split" || snap.Left.Window != 1 || snap.Right.Right.Window != 3 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestParseRatioMode(t *testing.T) {
	cases := map[string]RatioMode{
		"set": RatioSet, "": RatioSet, "increment": RatioIncrement, "+": RatioIncrement,
		"DEC": RatioDecrement,
	}
	for in, want := range cases {
		got, err := ParseRatioMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseRatioMode(%q): expected %v, got %v (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseRatioMode("double"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
