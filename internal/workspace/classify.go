package workspace

// Layer is where a window lives inside its workspace.
type Layer int

const (
	Tiled Layer = iota
	Floating
)

func (l Layer) String() string {
	if l == Floating {
		return "floating"
	}
	return "tiled"
}

// Classify decides whether a newly added window is tiled or floating.
// Fixed-size windows (minimum equals maximum on either axis) and windows with
// a parent, such as dialogs, float. The decision is made once on insertion;
// later hint changes need an explicit toggle.
func Classify(h Hints) Layer {
	if h.HasParent {
		return Floating
	}
	if fixed(h.MinSize.Width, h.MaxSize.Width) || fixed(h.MinSize.Height, h.MaxSize.Height) {
		return Floating
	}
	return Tiled
}

func fixed(lo, hi int) bool {
	return lo > 0 && hi > 0 && lo == hi
}
