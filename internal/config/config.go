package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Margins represents space reserved at the screen edges.
type Margins struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// Gaps controls spacing around tiled windows.
type Gaps struct {
	Outer int `yaml:"outer"` // Between the usable area and the tiled region.
	Inner int `yaml:"inner"` // Around each tiled window once there are several.
}

// Borders controls the frame drawn around every window.
type Borders struct {
	Thickness     int    `yaml:"thickness"`
	ActiveColor   string `yaml:"active_color"`
	InactiveColor string `yaml:"inactive_color"`
}

// OutputConfig overrides how a named output is interpreted.
type OutputConfig struct {
	Scale     float64 `yaml:"scale,omitempty"`
	Transform string  `yaml:"transform,omitempty"`
}

// Keybinding maps a key sequence such as "Mod4-Return" to an action.
type Keybinding struct {
	Keys   string `yaml:"keys"`
	Action Action `yaml:"action"`
}

// Config is the effective, validated configuration. It is loaded once at
// startup and treated as read-only afterwards.
type Config struct {
	Workspaces        int                     `yaml:"workspaces"`
	Gaps              Gaps                    `yaml:"gaps"`
	DefaultRatio      float64                 `yaml:"default_ratio"`
	RatioStep         float64                 `yaml:"ratio_step"`
	ScreenPadding     Margins                 `yaml:"screen_padding"`
	Borders           Borders                 `yaml:"borders"`
	FocusFollowsMouse bool                    `yaml:"focus_follows_mouse"`
	Keybindings       []Keybinding            `yaml:"keybindings"`
	Autostart         []string                `yaml:"autostart"`
	Outputs           map[string]OutputConfig `yaml:"outputs"`
	Display           string                  `yaml:"display,omitempty"`
	LogLevel          string                  `yaml:"log_level"`
}

const (
	minRatio = 0.05
	maxRatio = 0.95
)

func DefaultConfig() *Config {
	return &Config{
		Workspaces:   8,
		Gaps:         Gaps{Outer: 5, Inner: 5},
		DefaultRatio: 0.5,
		RatioStep:    0.05,
		Borders: Borders{
			Thickness:     2,
			ActiveColor:   "#5e81ac",
			InactiveColor: "#3b4252",
		},
		FocusFollowsMouse: true,
		Keybindings:       defaultKeybindings(),
		Autostart:         []string{},
		Outputs:           make(map[string]OutputConfig),
		LogLevel:          "info",
	}
}

func defaultKeybindings() []Keybinding {
	bindings := []Keybinding{
		{Keys: "Mod4-Return", Action: Action{Kind: ActionSpawn, Command: "xterm"}},
		{Keys: "Mod4-Shift-q", Action: Action{Kind: ActionQuit}},
		{Keys: "Mod4-w", Action: Action{Kind: ActionClose}},
		{Keys: "Mod4-space", Action: Action{Kind: ActionToggleFloating}},
		{Keys: "Mod4-l", Action: Action{Kind: ActionRatio, Mode: RatioIncrement, Value: 0.05}},
		{Keys: "Mod4-h", Action: Action{Kind: ActionRatio, Mode: RatioDecrement, Value: 0.05}},
		{Keys: "Mod4-d", Action: Action{Kind: ActionDebug}},
	}
	for i := 0; i < 4; i++ {
		key := fmt.Sprintf("%d", i+1)
		bindings = append(bindings,
			Keybinding{Keys: "Mod4-" + key, Action: Action{Kind: ActionWorkspace, Workspace: i}},
			Keybinding{Keys: "Mod4-Shift-" + key, Action: Action{Kind: ActionMoveAndSwitch, Workspace: i}},
		)
	}
	return bindings
}

// Save writes the configuration to path, or to the default location when
// path is empty.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the source YAML files.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var validTransforms = map[string]bool{
	"": true, "normal": true, "90": true, "180": true, "270": true,
	"flipped": true, "flipped-90": true, "flipped-180": true, "flipped-270": true,
}

func (c *Config) Validate() error {
	if c.Workspaces < 1 || c.Workspaces > 32 {
		return &ValidationError{Path: "workspaces", Err: fmt.Errorf("workspaces must be between 1 and 32")}
	}
	if c.Gaps.Outer < 0 {
		return &ValidationError{Path: "gaps.outer", Err: fmt.Errorf("gaps.outer must be >= 0")}
	}
	if c.Gaps.Inner < 0 {
		return &ValidationError{Path: "gaps.inner", Err: fmt.Errorf("gaps.inner must be >= 0")}
	}
	if c.DefaultRatio < minRatio || c.DefaultRatio > maxRatio {
		return &ValidationError{Path: "default_ratio", Err: fmt.Errorf("default_ratio must be between %.2f and %.2f", minRatio, maxRatio)}
	}
	if c.RatioStep <= 0 || c.RatioStep >= maxRatio {
		return &ValidationError{Path: "ratio_step", Err: fmt.Errorf("ratio_step must be > 0 and < %.2f", maxRatio)}
	}
	if c.ScreenPadding.Top < 0 || c.ScreenPadding.Bottom < 0 || c.ScreenPadding.Left < 0 || c.ScreenPadding.Right < 0 {
		return &ValidationError{Path: "screen_padding", Err: fmt.Errorf("screen_padding values must be >= 0")}
	}
	if c.Borders.Thickness < 0 {
		return &ValidationError{Path: "borders.thickness", Err: fmt.Errorf("borders.thickness must be >= 0")}
	}
	if !colorPattern.MatchString(c.Borders.ActiveColor) {
		return &ValidationError{Path: "borders.active_color", Err: fmt.Errorf("color must look like #rrggbb, got %q", c.Borders.ActiveColor)}
	}
	if !colorPattern.MatchString(c.Borders.InactiveColor) {
		return &ValidationError{Path: "borders.inactive_color", Err: fmt.Errorf("color must look like #rrggbb, got %q", c.Borders.InactiveColor)}
	}

	// Keybinding errors point at the whole list: effective indexes include
	// the defaults and do not match positions in the user's file.
	seen := make(map[string]struct{}, len(c.Keybindings))
	for _, kb := range c.Keybindings {
		keys := strings.TrimSpace(kb.Keys)
		if keys == "" {
			return &ValidationError{Path: "keybindings", Err: fmt.Errorf("binding for %q has empty keys", kb.Action)}
		}
		if _, dup := seen[keys]; dup {
			return &ValidationError{Path: "keybindings", Err: fmt.Errorf("%q is bound more than once", keys)}
		}
		seen[keys] = struct{}{}
		if kb.Action.Kind == "" {
			return &ValidationError{Path: "keybindings", Err: fmt.Errorf("%q has no action", keys)}
		}
		if kb.Action.targetsWorkspace() && kb.Action.Workspace >= c.Workspaces {
			return &ValidationError{Path: "keybindings", Err: fmt.Errorf("%q: workspace %d out of range (have %d)", keys, kb.Action.Workspace, c.Workspaces)}
		}
	}

	for i, cmd := range c.Autostart {
		if strings.TrimSpace(cmd) == "" {
			return &ValidationError{Path: fmt.Sprintf("autostart.%d", i), Err: fmt.Errorf("autostart command must not be empty")}
		}
	}
	for name, out := range c.Outputs {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "outputs", Err: fmt.Errorf("outputs contains an empty name")}
		}
		if out.Scale < 0 {
			return &ValidationError{Path: "outputs." + name + ".scale", Err: fmt.Errorf("scale must be > 0")}
		}
		if !validTransforms[out.Transform] {
			return &ValidationError{Path: "outputs." + name + ".transform", Err: fmt.Errorf("unknown transform %q", out.Transform)}
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// OutputScale returns the configured scale for the named output, or 1.
func (c *Config) OutputScale(name string) float64 {
	if out, ok := c.Outputs[name]; ok && out.Scale > 0 {
		return out.Scale
	}
	return 1
}
