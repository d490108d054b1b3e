package mcp

import "github.com/spiralwm/spiral/internal/wm"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Status wm.Status `json:"status"`
}

// ListWorkspacesInput is the input for the list_workspaces tool.
type ListWorkspacesInput struct{}

// ListWorkspacesOutput is the output for the list_workspaces tool.
type ListWorkspacesOutput struct {
	Workspaces []wm.WorkspaceInfo `json:"workspaces"`
}

// GetTreeInput is the input for the get_tree tool.
type GetTreeInput struct {
	Workspace int `json:"workspace" jsonschema:"Workspace index (0-based)"`
}

// GetTreeOutput is the output for the get_tree tool. Root holds a
// tiling.NodeSnapshot; it is untyped because the snapshot is recursive.
type GetTreeOutput struct {
	Workspace int    `json:"workspace"`
	Root      any    `json:"root"`
	Text      string `json:"text"`
}

// ActivateWorkspaceInput is the input for the activate_workspace tool.
type ActivateWorkspaceInput struct {
	Workspace int `json:"workspace" jsonschema:"Workspace index (0-based) to show"`
}

// ActivateWorkspaceOutput is the output for the activate_workspace tool.
type ActivateWorkspaceOutput struct {
	Workspace int `json:"workspace"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	Window    uint64 `json:"window,omitempty" jsonschema:"Window handle from list_workspaces (default: the focused window)"`
	Workspace int    `json:"workspace" jsonschema:"Target workspace index (0-based)"`
	Follow    bool   `json:"follow,omitempty" jsonschema:"When true, switch to the target workspace after moving"`
}

// MoveWindowOutput is the output for the move_window tool.
type MoveWindowOutput struct {
	Window    uint64 `json:"window,omitempty"`
	Workspace int    `json:"workspace"`
	Followed  bool   `json:"followed"`
}

// ToggleFloatingInput is the input for the toggle_floating tool.
type ToggleFloatingInput struct {
	Window uint64 `json:"window,omitempty" jsonschema:"Window handle from list_workspaces (default: the focused window)"`
}

// ToggleFloatingOutput is the output for the toggle_floating tool.
type ToggleFloatingOutput struct {
	Window   uint64 `json:"window,omitempty"`
	Floating bool   `json:"floating"`
}

// AdjustRatioInput is the input for the adjust_ratio tool.
type AdjustRatioInput struct {
	Window uint64  `json:"window,omitempty" jsonschema:"Window whose split to change (default: the focused window)"`
	Mode   string  `json:"mode" jsonschema:"One of set, increment or decrement"`
	Value  float64 `json:"value" jsonschema:"Ratio for set, or step for increment/decrement; results are clamped to 0.05-0.95"`
}

// AdjustRatioOutput is the output for the adjust_ratio tool.
type AdjustRatioOutput struct {
	Ratio float64 `json:"ratio"`
}
