package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig overlays every field set in raw on top of
// DefaultConfig. Keybindings are merged with the defaults by key sequence;
// a binding whose action is "none" removes the sequence altogether.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Workspaces != nil {
		cfg.Workspaces = *raw.Workspaces
	}
	if raw.Gaps != nil {
		if raw.Gaps.Outer != nil {
			cfg.Gaps.Outer = *raw.Gaps.Outer
		}
		if raw.Gaps.Inner != nil {
			cfg.Gaps.Inner = *raw.Gaps.Inner
		}
	}
	if raw.DefaultRatio != nil {
		cfg.DefaultRatio = *raw.DefaultRatio
	}
	if raw.RatioStep != nil {
		cfg.RatioStep = *raw.RatioStep
	}
	if raw.ScreenPadding != nil {
		if raw.ScreenPadding.Top != nil {
			cfg.ScreenPadding.Top = *raw.ScreenPadding.Top
		}
		if raw.ScreenPadding.Bottom != nil {
			cfg.ScreenPadding.Bottom = *raw.ScreenPadding.Bottom
		}
		if raw.ScreenPadding.Left != nil {
			cfg.ScreenPadding.Left = *raw.ScreenPadding.Left
		}
		if raw.ScreenPadding.Right != nil {
			cfg.ScreenPadding.Right = *raw.ScreenPadding.Right
		}
	}
	if raw.Borders != nil {
		if raw.Borders.Thickness != nil {
			cfg.Borders.Thickness = *raw.Borders.Thickness
		}
		if raw.Borders.ActiveColor != nil {
			cfg.Borders.ActiveColor = *raw.Borders.ActiveColor
		}
		if raw.Borders.InactiveColor != nil {
			cfg.Borders.InactiveColor = *raw.Borders.InactiveColor
		}
	}
	if raw.FocusFollowsMouse != nil {
		cfg.FocusFollowsMouse = *raw.FocusFollowsMouse
	}
	if raw.Keybindings != nil {
		merged := mergeKeybindings(cfg.Keybindings, raw.Keybindings)
		cfg.Keybindings = cfg.Keybindings[:0]
		for _, kb := range merged {
			if kb.Action.Kind == ActionNone {
				continue
			}
			cfg.Keybindings = append(cfg.Keybindings, kb)
		}
	}
	if raw.Autostart != nil {
		cfg.Autostart = append(cfg.Autostart, raw.Autostart...)
	}
	for name, out := range raw.Outputs {
		name = strings.TrimSpace(name)
		effective := cfg.Outputs[name]
		if out.Scale != nil {
			if *out.Scale <= 0 {
				return nil, &ValidationError{Path: "outputs." + name + ".scale", Err: fmt.Errorf("scale must be > 0")}
			}
			effective.Scale = *out.Scale
		}
		if out.Transform != nil {
			effective.Transform = strings.ToLower(strings.TrimSpace(*out.Transform))
		}
		cfg.Outputs[name] = effective
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
		if cfg.LogLevel == "warn" {
			cfg.LogLevel = "warning"
		}
	}

	return cfg, nil
}
