package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/spiralwm/spiral/internal/geometry"
	"github.com/spiralwm/spiral/internal/workspace"
)

// Outputs retrieves all active monitors using XRandR. Struts published by
// the given dock windows become reserved insets. When RandR reports nothing
// the root window is used as a single output.
func (c *Connection) Outputs(docks []xproto.Window) ([]*workspace.Output, error) {
	outputs, err := c.randrOutputs()
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to get root geometry: %w", err)
		}
		outputs = append(outputs, &workspace.Output{
			Name:  "screen0",
			Mode:  geometry.Size{Width: int(geom.Width), Height: int(geom.Height)},
			Scale: 1,
		})
	}

	struts := c.dockStruts(docks)
	if len(struts) > 0 {
		rootW, rootH := c.rootSize()
		for _, o := range outputs {
			for _, sp := range struts {
				o.Reserved = accumulateStrut(o.Geometry(), rootW, rootH, sp, o.Reserved)
			}
		}
	}
	return outputs, nil
}

func (c *Connection) randrOutputs() ([]*workspace.Output, error) {
	// Initialize RandR if not already done
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	modes := make(map[uint32]randr.ModeInfo, len(resources.Modes))
	for _, m := range resources.Modes {
		modes[m.Id] = m
	}

	var outputs []*workspace.Output
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if oi, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(oi.Name)
		}

		transform := transformFromRotation(info.Rotation)
		mode := geometry.Size{Width: int(info.Width), Height: int(info.Height)}
		if transform == workspace.Transform90 || transform == workspace.Transform270 ||
			transform == workspace.TransformFlipped90 || transform == workspace.TransformFlipped270 {
			// CRTC sizes are already rotated; the output keeps the panel's own mode.
			mode = geometry.Size{Width: mode.Height, Height: mode.Width}
		}

		outputs = append(outputs, &workspace.Output{
			Name:      name,
			Location:  geometry.Point{X: int(info.X), Y: int(info.Y)},
			Mode:      mode,
			Refresh:   refreshMilliHz(modes[uint32(info.Mode)]),
			Scale:     1,
			Transform: transform,
		})
	}
	return outputs, nil
}

func transformFromRotation(rot uint16) workspace.Transform {
	flipped := rot&randr.RotationReflectX != 0
	var t workspace.Transform
	switch {
	case rot&randr.RotationRotate90 != 0:
		t = workspace.Transform90
	case rot&randr.RotationRotate180 != 0:
		t = workspace.Transform180
	case rot&randr.RotationRotate270 != 0:
		t = workspace.Transform270
	default:
		t = workspace.TransformNormal
	}
	if flipped {
		t += workspace.TransformFlipped
	}
	return t
}

func refreshMilliHz(m randr.ModeInfo) int {
	if m.Htotal == 0 || m.Vtotal == 0 {
		return 0
	}
	return int(uint64(m.DotClock) * 1000 / (uint64(m.Htotal) * uint64(m.Vtotal)))
}

func (c *Connection) rootSize() (int, int) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return 0, 0
	}
	return int(geom.Width), int(geom.Height)
}

// dockStruts reads the struts of dock windows, converting plain
// _NET_WM_STRUT into a partial strut that spans the whole root.
func (c *Connection) dockStruts(docks []xproto.Window) []*ewmh.WmStrutPartial {
	if len(docks) == 0 {
		return nil
	}
	rootWidth, rootHeight := c.rootSize()

	var out []*ewmh.WmStrutPartial
	for _, windowID := range docks {
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			out = append(out, sp)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			out = append(out, &ewmh.WmStrutPartial{
				Left:         s.Left,
				Right:        s.Right,
				Top:          s.Top,
				Bottom:       s.Bottom,
				LeftEndY:     uint(max(rootHeight-1, 0)),
				RightEndY:    uint(max(rootHeight-1, 0)),
				TopEndX:      uint(max(rootWidth-1, 0)),
				BottomEndX:   uint(max(rootWidth-1, 0)),
				LeftStartY:   0,
				RightStartY:  0,
				TopStartX:    0,
				BottomStartX: 0,
			})
		}
	}
	return out
}

// accumulateStrut grows acc by the part of sp that overlaps mon. Struts are
// measured from the root window edges, so only monitors touching that edge
// lose space.
func accumulateStrut(mon geometry.Rect, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc workspace.Insets) workspace.Insets {
	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		r := mon.Intersect(span(int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top)))
		acc.Top = max(acc.Top, r.Height)
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		r := mon.Intersect(span(int(sp.BottomStartX), rootHeight-int(sp.Bottom), int(sp.BottomEndX)+1, rootHeight))
		acc.Bottom = max(acc.Bottom, r.Height)
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		r := mon.Intersect(span(0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1))
		acc.Left = max(acc.Left, r.Width)
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		r := mon.Intersect(span(rootWidth-int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY)+1))
		acc.Right = max(acc.Right, r.Width)
	}
	return acc
}

func span(x1, y1, x2, y2 int) geometry.Rect {
	return geometry.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
