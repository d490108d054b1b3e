package config

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseAction(t *testing.T) {
	cases := []struct {
		in   string
		want Action
	}{
		{"quit", Action{Kind: ActionQuit}},
		{"  Close ", Action{Kind: ActionClose}},
		{"workspace 0", Action{Kind: ActionWorkspace, Workspace: 0}},
		{"move_and_switch 3", Action{Kind: ActionMoveAndSwitch, Workspace: 3}},
		{"vt_switch 2", Action{Kind: ActionVTSwitch, VT: 2}},
		{"spawn rofi -show run", Action{Kind: ActionSpawn, Command: "rofi -show run"}},
		{"ratio 0.6", Action{Kind: ActionRatio, Mode: RatioSet, Value: 0.6}},
		{"ratio +0.1", Action{Kind: ActionRatio, Mode: RatioIncrement, Value: 0.1}},
		{"ratio -0.05", Action{Kind: ActionRatio, Mode: RatioDecrement, Value: 0.05}},
		{"none", Action{Kind: ActionNone}},
	}
	for _, tc := range cases {
		got, err := ParseAction(tc.in)
		if err != nil {
			t.Fatalf("ParseAction(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAction(%q): expected %+v, got %+v", tc.in, tc.want, got)
		}
	}
}

func TestParseAction_Errors(t *testing.T) {
	for _, in := range []string{
		"",
		"dance",
		"quit now",
		"workspace",
		"workspace -1",
		"vt_switch 0",
		"spawn",
		"ratio 1.5",
		"ratio +0",
		"ratio half",
	} {
		if _, err := ParseAction(in); err == nil {
			t.Fatalf("ParseAction(%q): expected error", in)
		}
	}
}

func TestActionStringParsesBack(t *testing.T) {
	for _, a := range []Action{
		{Kind: ActionDebug},
		{Kind: ActionMoveWindow, Workspace: 5},
		{Kind: ActionSpawn, Command: "xterm -e htop"},
		{Kind: ActionRatio, Mode: RatioDecrement, Value: 0.05},
	} {
		got, err := ParseAction(a.String())
		if err != nil || got != a {
			t.Fatalf("%q: expected %+v, got %+v (err=%v)", a.String(), a, got, err)
		}
	}
}

func TestActionYAMLRejectsMapping(t *testing.T) {
	var kb Keybinding
	err := yaml.Unmarshal([]byte("keys: Mod4-a\naction:\n  kind: quit\n"), &kb)
	if err == nil {
		t.Fatalf("expected error for mapping action")
	}
}
