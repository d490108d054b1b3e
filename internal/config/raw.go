package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawMargins struct {
	Top    *int `yaml:"top"`
	Bottom *int `yaml:"bottom"`
	Left   *int `yaml:"left"`
	Right  *int `yaml:"right"`
}

type RawGaps struct {
	Outer *int `yaml:"outer"`
	Inner *int `yaml:"inner"`
}

type RawBorders struct {
	Thickness     *int    `yaml:"thickness"`
	ActiveColor   *string `yaml:"active_color"`
	InactiveColor *string `yaml:"inactive_color"`
}

type RawOutput struct {
	Scale     *float64 `yaml:"scale"`
	Transform *string  `yaml:"transform"`
}

type RawConfig struct {
	Include           IncludeList          `yaml:"include"`
	Workspaces        *int                 `yaml:"workspaces"`
	Gaps              *RawGaps             `yaml:"gaps"`
	DefaultRatio      *float64             `yaml:"default_ratio"`
	RatioStep         *float64             `yaml:"ratio_step"`
	ScreenPadding     *RawMargins          `yaml:"screen_padding"`
	Borders           *RawBorders          `yaml:"borders"`
	FocusFollowsMouse *bool                `yaml:"focus_follows_mouse"`
	Keybindings       []Keybinding         `yaml:"keybindings"`
	Autostart         []string             `yaml:"autostart"`
	Outputs           map[string]RawOutput `yaml:"outputs"`
	Display           *string              `yaml:"display"`
	LogLevel          *string              `yaml:"log_level"`
}

// merge returns c with every field set in overlay applied on top. Keybindings
// are merged by key sequence, autostart commands accumulate, and outputs are
// merged field by field.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Workspaces != nil {
		out.Workspaces = overlay.Workspaces
	}
	if overlay.Gaps != nil {
		merged := mergeRawGaps(deref(out.Gaps), *overlay.Gaps)
		out.Gaps = &merged
	}
	if overlay.DefaultRatio != nil {
		out.DefaultRatio = overlay.DefaultRatio
	}
	if overlay.RatioStep != nil {
		out.RatioStep = overlay.RatioStep
	}
	if overlay.ScreenPadding != nil {
		merged := mergeRawMargins(deref(out.ScreenPadding), *overlay.ScreenPadding)
		out.ScreenPadding = &merged
	}
	if overlay.Borders != nil {
		merged := mergeRawBorders(deref(out.Borders), *overlay.Borders)
		out.Borders = &merged
	}
	if overlay.FocusFollowsMouse != nil {
		out.FocusFollowsMouse = overlay.FocusFollowsMouse
	}
	if overlay.Keybindings != nil {
		out.Keybindings = mergeKeybindings(out.Keybindings, overlay.Keybindings)
	}
	if overlay.Autostart != nil {
		out.Autostart = append(append([]string(nil), out.Autostart...), overlay.Autostart...)
	}
	if overlay.Outputs != nil {
		outputs := make(map[string]RawOutput, len(out.Outputs)+len(overlay.Outputs))
		for name, o := range out.Outputs {
			outputs[name] = o
		}
		for name, o := range overlay.Outputs {
			outputs[name] = mergeRawOutput(outputs[name], o)
		}
		out.Outputs = outputs
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	return out
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

func mergeRawGaps(base RawGaps, overlay RawGaps) RawGaps {
	out := base
	if overlay.Outer != nil {
		out.Outer = overlay.Outer
	}
	if overlay.Inner != nil {
		out.Inner = overlay.Inner
	}
	return out
}

func mergeRawMargins(base RawMargins, overlay RawMargins) RawMargins {
	out := base
	if overlay.Top != nil {
		out.Top = overlay.Top
	}
	if overlay.Bottom != nil {
		out.Bottom = overlay.Bottom
	}
	if overlay.Left != nil {
		out.Left = overlay.Left
	}
	if overlay.Right != nil {
		out.Right = overlay.Right
	}
	return out
}

func mergeRawBorders(base RawBorders, overlay RawBorders) RawBorders {
	out := base
	if overlay.Thickness != nil {
		out.Thickness = overlay.Thickness
	}
	if overlay.ActiveColor != nil {
		out.ActiveColor = overlay.ActiveColor
	}
	if overlay.InactiveColor != nil {
		out.InactiveColor = overlay.InactiveColor
	}
	return out
}

func mergeRawOutput(base RawOutput, overlay RawOutput) RawOutput {
	out := base
	if overlay.Scale != nil {
		out.Scale = overlay.Scale
	}
	if overlay.Transform != nil {
		out.Transform = overlay.Transform
	}
	return out
}

// mergeKeybindings replaces bindings whose key sequence appears in overlay
// and appends the rest, keeping first-seen order.
func mergeKeybindings(base []Keybinding, overlay []Keybinding) []Keybinding {
	out := append([]Keybinding(nil), base...)
	index := make(map[string]int, len(out))
	for i, kb := range out {
		index[kb.Keys] = i
	}
	for _, kb := range overlay {
		if i, ok := index[kb.Keys]; ok {
			out[i] = kb
			continue
		}
		index[kb.Keys] = len(out)
		out = append(out, kb)
	}
	return out
}
