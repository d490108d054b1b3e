package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func findBinding(cfg *Config, keys string) (Keybinding, bool) {
	for _, kb := range cfg.Keybindings {
		if kb.Keys == keys {
			return kb, true
		}
	}
	return Keybinding{}, false
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Gaps.Outer != 5 || cfg.Gaps.Inner != 5 {
		t.Fatalf("expected 5px gaps, got %+v", cfg.Gaps)
	}
	if kb, ok := findBinding(cfg, "Mod4-Shift-q"); !ok || kb.Action.Kind != ActionQuit {
		t.Fatalf("expected quit binding, got %+v (found=%v)", kb, ok)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Workspaces != DefaultConfig().Workspaces {
		t.Fatalf("expected default workspace count, got %d", res.Config.Workspaces)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files loaded, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.DefaultRatio != 0.5 {
		t.Fatalf("expected default ratio 0.5, got %v", res.Config.DefaultRatio)
	}
}

func TestLoadFromPath_OverridesAndExplain(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", strings.Join([]string{
		"workspaces: 4",
		"gaps:",
		"  inner: 8",
		"display: \":1\"",
		"log_level: WARN",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Workspaces != 4 || cfg.Gaps.Inner != 8 || cfg.Gaps.Outer != 5 {
		t.Fatalf("unexpected overlay result: workspaces=%d gaps=%+v", cfg.Workspaces, cfg.Gaps)
	}
	if cfg.LogLevel != "warning" {
		t.Fatalf("expected log_level normalized to warning, got %q", cfg.LogLevel)
	}

	val, src, err := Explain(res, "gaps.inner")
	if err != nil {
		t.Fatalf("explain gaps.inner: %v", err)
	}
	if val != 8 {
		t.Fatalf("expected 8, got %#v", val)
	}
	if src.Kind != SourceFile || src.Line != 3 {
		t.Fatalf("expected file source on line 3, got %#v", src)
	}

	_, src, err = Explain(res, "gaps.outer")
	if err != nil {
		t.Fatalf("explain gaps.outer: %v", err)
	}
	if src.Kind != SourceDefault {
		t.Fatalf("expected default source, got %#v", src)
	}

	if _, _, err := Explain(res, "gaps.middle"); err == nil {
		t.Fatalf("expected error for unknown path")
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, configD, "10-base.yaml", "gaps:\n  outer: 10\nautostart:\n  - picom\n")
	writeConfig(t, configD, "20-override.yaml", "gaps:\n  outer: 12\n  inner: 3\n")

	// Main file overrides includes.
	path := writeConfig(t, dir, "config.yaml", strings.Join([]string{
		"include:",
		"  - config.d",
		"gaps:",
		"  outer: 7",
		"autostart:",
		"  - feh --bg-fill wall.png",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Gaps.Outer != 7 {
		t.Fatalf("expected gaps.outer to be 7, got %d", res.Config.Gaps.Outer)
	}
	if res.Config.Gaps.Inner != 3 {
		t.Fatalf("expected gaps.inner from include to be 3, got %d", res.Config.Gaps.Inner)
	}
	want := []string{"picom", "feh --bg-fill wall.png"}
	if strings.Join(res.Config.Autostart, "|") != strings.Join(want, "|") {
		t.Fatalf("expected autostart %v, got %v", want, res.Config.Autostart)
	}
	if len(res.Files) != 3 || filepath.Base(res.Files[2]) != "config.yaml" {
		t.Fatalf("expected main file loaded last, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_KeybindingsMergeAndNone(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", strings.Join([]string{
		"keybindings:",
		"  - keys: Mod4-Return",
		"    action: spawn alacritty",
		"  - keys: Mod4-d",
		"    action: none",
		"  - keys: Mod4-Shift-l",
		"    action: ratio 0.6",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config

	kb, ok := findBinding(cfg, "Mod4-Return")
	if !ok || kb.Action.Command != "alacritty" {
		t.Fatalf("expected Mod4-Return overridden, got %+v", kb)
	}
	if _, ok := findBinding(cfg, "Mod4-d"); ok {
		t.Fatalf("expected Mod4-d removed by none")
	}
	kb, ok = findBinding(cfg, "Mod4-Shift-l")
	if !ok || kb.Action.Mode != RatioSet || kb.Action.Value != 0.6 {
		t.Fatalf("expected new ratio binding, got %+v", kb)
	}
	if len(cfg.Keybindings) != len(DefaultConfig().Keybindings) {
		t.Fatalf("expected one removed and one added, got %d bindings", len(cfg.Keybindings))
	}

	val, src, err := Explain(res, "keybindings.Mod4-Return")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "spawn alacritty" || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("unexpected explain result %#v %#v", val, src)
	}
}

func TestLoadFromPath_BadActionReportsLine(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", strings.Join([]string{
		"keybindings:",
		"  - keys: Mod4-x",
		"    action: explode",
		"",
	}, "\n"))

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown action")
	}
	if !strings.Contains(err.Error(), "line 3") || !strings.Contains(err.Error(), "explode") {
		t.Fatalf("expected line-qualified action error, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "gaps:\n  inner: -1\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "gaps.inner" || verr.Source.Line != 2 {
		t.Fatalf("unexpected validation error %#v", verr)
	}
	if !strings.HasPrefix(err.Error(), verr.Source.File+":2:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestLoadFromPath_WorkspaceTargetOutOfRange(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", strings.Join([]string{
		"workspaces: 2",
		"keybindings:",
		"  - keys: Mod4-3",
		"    action: none",
		"  - keys: Mod4-4",
		"    action: none",
		"  - keys: Mod4-Shift-3",
		"    action: none",
		"  - keys: Mod4-Shift-4",
		"    action: none",
		"  - keys: Mod4-9",
		"    action: workspace 8",
		"",
	}, "\n"))

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "keybindings" {
		t.Fatalf("expected keybindings validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Mod4-9") {
		t.Fatalf("expected error to name the binding, got %v", err)
	}
}

func TestLoadFromPath_OutputScale(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "outputs:\n  DP-1:\n    scale: 1.5\n    transform: \"90\"\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := res.Config.OutputScale("DP-1"); got != 1.5 {
		t.Fatalf("expected scale 1.5, got %v", got)
	}
	if got := res.Config.OutputScale("HDMI-1"); got != 1 {
		t.Fatalf("expected unconfigured output scale 1, got %v", got)
	}

	bad := writeConfig(t, dir, "bad.yaml", "outputs:\n  DP-1:\n    scale: 0\n")
	if _, err := LoadFromPath(bad); err == nil || !strings.Contains(err.Error(), "outputs.DP-1.scale") {
		t.Fatalf("expected scale validation error, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Workspaces = 5
	cfg.Autostart = []string{"picom"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if res.Config.Workspaces != 5 {
		t.Fatalf("expected workspaces 5, got %d", res.Config.Workspaces)
	}
	if len(res.Config.Keybindings) != len(cfg.Keybindings) {
		t.Fatalf("expected %d keybindings, got %d", len(cfg.Keybindings), len(res.Config.Keybindings))
	}
}
