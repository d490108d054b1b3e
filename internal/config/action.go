package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ActionKind names something a keybinding can do.
type ActionKind string

const (
	ActionQuit           ActionKind = "quit"
	ActionDebug          ActionKind = "debug"
	ActionClose          ActionKind = "close"
	ActionWorkspace      ActionKind = "workspace"
	ActionMoveWindow     ActionKind = "move_window"
	ActionMoveAndSwitch  ActionKind = "move_and_switch"
	ActionToggleFloating ActionKind = "toggle_floating"
	ActionRatio          ActionKind = "ratio"
	ActionVTSwitch       ActionKind = "vt_switch"
	ActionSpawn          ActionKind = "spawn"

	// ActionNone removes a binding inherited from defaults or includes.
	ActionNone ActionKind = "none"
)

// RatioMode mirrors the split-ratio update modes of the layout tree.
type RatioMode string

const (
	RatioSet       RatioMode = "set"
	RatioIncrement RatioMode = "increment"
	RatioDecrement RatioMode = "decrement"
)

// Action is a parsed keybinding action. In YAML it is written as a single
// string: the action name followed by its argument, for example
// "workspace 2", "spawn alacritty -e htop", "ratio +0.05" or "ratio 0.5".
type Action struct {
	Kind      ActionKind
	Workspace int       // workspace, move_window, move_and_switch
	VT        int       // vt_switch
	Command   string    // spawn
	Mode      RatioMode // ratio
	Value     float64   // ratio
}

func (a Action) targetsWorkspace() bool {
	switch a.Kind {
	case ActionWorkspace, ActionMoveWindow, ActionMoveAndSwitch:
		return true
	}
	return false
}

// ParseAction parses the textual form of an action.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	name, arg, _ := strings.Cut(s, " ")
	arg = strings.TrimSpace(arg)
	kind := ActionKind(strings.ToLower(name))

	noArg := func() (Action, error) {
		if arg != "" {
			return Action{}, fmt.Errorf("action %q takes no argument", kind)
		}
		return Action{Kind: kind}, nil
	}

	switch kind {
	case ActionQuit, ActionDebug, ActionClose, ActionToggleFloating, ActionNone:
		return noArg()
	case ActionWorkspace, ActionMoveWindow, ActionMoveAndSwitch:
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return Action{}, fmt.Errorf("action %q needs a workspace number >= 0, got %q", kind, arg)
		}
		return Action{Kind: kind, Workspace: n}, nil
	case ActionVTSwitch:
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return Action{}, fmt.Errorf("action %q needs a VT number >= 1, got %q", kind, arg)
		}
		return Action{Kind: kind, VT: n}, nil
	case ActionSpawn:
		if arg == "" {
			return Action{}, fmt.Errorf("action %q needs a command", kind)
		}
		return Action{Kind: kind, Command: arg}, nil
	case ActionRatio:
		return parseRatio(arg)
	case "":
		return Action{}, fmt.Errorf("action is empty")
	}
	return Action{}, fmt.Errorf("unknown action %q", name)
}

func parseRatio(arg string) (Action, error) {
	mode := RatioSet
	switch {
	case strings.HasPrefix(arg, "+"):
		mode = RatioIncrement
		arg = arg[1:]
	case strings.HasPrefix(arg, "-"):
		mode = RatioDecrement
		arg = arg[1:]
	}
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil || v <= 0 || v >= 1 {
		return Action{}, fmt.Errorf("action %q needs a value in (0,1), optionally prefixed with + or -", ActionRatio)
	}
	return Action{Kind: ActionRatio, Mode: mode, Value: v}, nil
}

// String returns the textual form accepted by ParseAction.
func (a Action) String() string {
	switch a.Kind {
	case ActionWorkspace, ActionMoveWindow, ActionMoveAndSwitch:
		return fmt.Sprintf("%s %d", a.Kind, a.Workspace)
	case ActionVTSwitch:
		return fmt.Sprintf("%s %d", a.Kind, a.VT)
	case ActionSpawn:
		return fmt.Sprintf("%s %s", a.Kind, a.Command)
	case ActionRatio:
		prefix := ""
		switch a.Mode {
		case RatioIncrement:
			prefix = "+"
		case RatioDecrement:
			prefix = "-"
		}
		return fmt.Sprintf("%s %s%s", a.Kind, prefix, strconv.FormatFloat(a.Value, 'f', -1, 64))
	}
	return string(a.Kind)
}

func (a *Action) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: action must be a string such as \"workspace 1\"", value.Line)
	}
	parsed, err := ParseAction(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*a = parsed
	return nil
}

func (a Action) MarshalYAML() (any, error) {
	return a.String(), nil
}
