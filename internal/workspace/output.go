package workspace

import (
	"fmt"
	"math"
	"strings"

	"github.com/spiralwm/spiral/internal/geometry"
)

// Transform is the rotation/reflection applied to an output's mode.
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

var transformNames = map[Transform]string{
	TransformNormal:     "normal",
	Transform90:         "90",
	Transform180:        "180",
	Transform270:        "270",
	TransformFlipped:    "flipped",
	TransformFlipped90:  "flipped-90",
	TransformFlipped180: "flipped-180",
	TransformFlipped270: "flipped-270",
}

func (t Transform) String() string {
	if name, ok := transformNames[t]; ok {
		return name
	}
	return fmt.Sprintf("transform(%d)", int(t))
}

// ParseTransform accepts the names produced by Transform.String.
func ParseTransform(s string) (Transform, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TransformNormal, nil
	}
	for t, name := range transformNames {
		if name == s {
			return t, nil
		}
	}
	return TransformNormal, fmt.Errorf("unknown output transform %q", s)
}

// swapsAxes reports whether the transform turns the output by a quarter.
func (t Transform) swapsAxes() bool {
	switch t {
	case Transform90, Transform270, TransformFlipped90, TransformFlipped270:
		return true
	}
	return false
}

// Insets are space reserved at the output edges by panels and docks.
type Insets struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
	Right  int `json:"right"`
}

// Output is a display a workspace can be shown on. Outputs are compared by
// Name.
type Output struct {
	Name string
	// Location is the top-left corner in the global logical space.
	Location geometry.Point
	// Mode is the current resolution in physical pixels.
	Mode geometry.Size
	// Refresh is the refresh rate in mHz, zero when unknown.
	Refresh   int
	Scale     float64
	Transform Transform
	// Reserved is carved out of the logical area before tiling.
	Reserved Insets
}

// LogicalSize is the mode after transform and scale, rounded up.
func (o *Output) LogicalSize() geometry.Size {
	size := o.Mode
	if o.Transform.swapsAxes() {
		size = geometry.Size{Width: size.Height, Height: size.Width}
	}
	scale := o.Scale
	if scale <= 0 {
		scale = 1
	}
	return geometry.Size{
		Width:  int(math.Ceil(float64(size.Width) / scale)),
		Height: int(math.Ceil(float64(size.Height) / scale)),
	}
}

// Geometry is the output's full logical rectangle.
func (o *Output) Geometry() geometry.Rect {
	size := o.LogicalSize()
	return geometry.Rect{X: o.Location.X, Y: o.Location.Y, Width: size.Width, Height: size.Height}
}

// Usable is the logical rectangle left after reserved edges. It may be
// degenerate when panels cover the whole output.
func (o *Output) Usable() geometry.Rect {
	r := o.Geometry()
	return geometry.Rect{
		X:      r.X + o.Reserved.Left,
		Y:      r.Y + o.Reserved.Top,
		Width:  r.Width - o.Reserved.Left - o.Reserved.Right,
		Height: r.Height - o.Reserved.Top - o.Reserved.Bottom,
	}
}
