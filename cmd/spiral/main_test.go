package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spiralwm/spiral/internal/config"
	"github.com/spiralwm/spiral/internal/wm"
)

func TestParseWorkspaceID(t *testing.T) {
	if id, err := parseWorkspaceID("3"); err != nil || id != 3 {
		t.Fatalf("expected 3, got %d (%v)", id, err)
	}
	for _, bad := range []string{"", "-1", "two"} {
		if _, err := parseWorkspaceID(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
		{config.Source{Kind: config.SourceFile, File: "/a.yaml", Line: 3, Column: 5}, "file:/a.yaml:3:5"},
		{config.Source{Kind: config.SourceFile, File: "/a.yaml"}, "file:/a.yaml"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestNewLogger_FlagOverridesConfig(t *testing.T) {
	defer func() { logLevel = "" }()

	logLevel = "debug"
	logger, err := newLogger("error")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Fatalf("expected debug enabled when --log-level=debug")
	}

	logLevel = ""
	logger, err = newLogger("error")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.Enabled(t.Context(), slog.LevelInfo) {
		t.Fatalf("expected info disabled at configured error level")
	}

	logLevel = "loud"
	if _, err := newLogger(""); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestPrintWorkspaces(t *testing.T) {
	var buf bytes.Buffer
	printWorkspaces(&buf, []wm.WorkspaceInfo{
		{ID: 0, Current: true, Windows: []wm.WindowInfo{
			{Handle: 1, AppID: "xterm", Focused: true, Width: 800, Height: 600},
			{Handle: 2, AppID: "feh", Floating: true, X: 10, Y: 20, Width: 200, Height: 100},
		}},
		{ID: 1},
	})
	out := buf.String()
	for _, want := range []string{"WORKSPACE", "0*", "1*", "xterm", "floating", "200x100+10+20"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", lines, out)
	}
}

func TestConfigExplainCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("gaps:\n  inner: 12\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	configPath = path
	defer func() { configPath = "" }()

	var buf bytes.Buffer
	configExplainCmd.SetOut(&buf)
	if err := configExplainCmd.RunE(configExplainCmd, []string{"gaps.inner"}); err != nil {
		t.Fatalf("explain: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "source: file:") || !strings.Contains(out, "config.yaml:2:") {
		t.Fatalf("expected file source, got:\n%s", out)
	}
	if !strings.Contains(out, "value:\n12\n") {
		t.Fatalf("expected value 12, got:\n%s", out)
	}
}

func TestRootHelpDescribesSpiral(t *testing.T) {
	if strings.Contains(rootCmd.Long, "pointer") {
		t.Fatalf("placement does not depend on the pointer:\n%s", rootCmd.Long)
	}
	if !strings.Contains(rootCmd.Long, "alternating between horizontal") {
		t.Fatalf("expected help to describe alternating splits:\n%s", rootCmd.Long)
	}
}
