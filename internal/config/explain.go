package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	workspaces
//	gaps.outer
//	default_ratio
//	screen_padding.top
//	borders.active_color
//	focus_follows_mouse
//	keybindings.<keys>
//	autostart.<index>
//	outputs.<name>.scale
//	log_level
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func single(parts []string, path string, v any) (any, error) {
	if len(parts) != 1 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	return v, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	switch parts[0] {
	case "workspaces":
		return single(parts, path, cfg.Workspaces)
	case "default_ratio":
		return single(parts, path, cfg.DefaultRatio)
	case "ratio_step":
		return single(parts, path, cfg.RatioStep)
	case "focus_follows_mouse":
		return single(parts, path, cfg.FocusFollowsMouse)
	case "display":
		return single(parts, path, cfg.Display)
	case "log_level":
		return single(parts, path, cfg.LogLevel)
	case "gaps":
		if len(parts) == 1 {
			return cfg.Gaps, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "outer":
			return cfg.Gaps.Outer, nil
		case "inner":
			return cfg.Gaps.Inner, nil
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	case "screen_padding":
		if len(parts) == 1 {
			return cfg.ScreenPadding, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "top":
			return cfg.ScreenPadding.Top, nil
		case "bottom":
			return cfg.ScreenPadding.Bottom, nil
		case "left":
			return cfg.ScreenPadding.Left, nil
		case "right":
			return cfg.ScreenPadding.Right, nil
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	case "borders":
		if len(parts) == 1 {
			return cfg.Borders, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "thickness":
			return cfg.Borders.Thickness, nil
		case "active_color":
			return cfg.Borders.ActiveColor, nil
		case "inactive_color":
			return cfg.Borders.InactiveColor, nil
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	case "keybindings":
		if len(parts) == 1 {
			return cfg.Keybindings, nil
		}
		// Key sequences never contain dots, so the remainder is the sequence.
		keys := strings.Join(parts[1:], ".")
		for _, kb := range cfg.Keybindings {
			if kb.Keys == keys {
				return kb.Action.String(), nil
			}
		}
		return nil, fmt.Errorf("no keybinding for %q", keys)
	case "autostart":
		if len(parts) == 1 {
			return cfg.Autostart, nil
		}
		i, err := strconv.Atoi(parts[1])
		if len(parts) != 2 || err != nil || i < 0 || i >= len(cfg.Autostart) {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.Autostart[i], nil
	case "outputs":
		if len(parts) == 1 {
			return cfg.Outputs, nil
		}
		name := parts[1]
		out, ok := cfg.Outputs[name]
		if !ok {
			return nil, fmt.Errorf("unknown outputs entry %q", name)
		}
		if len(parts) == 2 {
			return out, nil
		}
		if len(parts) != 3 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[2] {
		case "scale":
			return cfg.OutputScale(name), nil
		case "transform":
			return out.Transform, nil
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
