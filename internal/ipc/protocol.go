package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/spiralwm/spiral/internal/tiling"
	"github.com/spiralwm/spiral/internal/wm"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus         CommandType = "GET_STATUS"
	CommandListWorkspaces    CommandType = "LIST_WORKSPACES"
	CommandGetTree           CommandType = "GET_TREE"
	CommandActivateWorkspace CommandType = "ACTIVATE_WORKSPACE"
	CommandMoveWindow        CommandType = "MOVE_WINDOW"
	CommandToggleFloating    CommandType = "TOGGLE_FLOATING"
	CommandAdjustRatio       CommandType = "ADJUST_RATIO"
	// CommandWatch keeps the connection open: after the OK response the
	// server writes one JSON wm.Event per line until either side closes.
	CommandWatch CommandType = "WATCH"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is returned by GET_STATUS.
type StatusData = wm.Status

// WorkspacesData is returned by LIST_WORKSPACES.
type WorkspacesData struct {
	Workspaces []wm.WorkspaceInfo `json:"workspaces"`
}

// WorkspacePayload selects a workspace for ACTIVATE_WORKSPACE and GET_TREE.
type WorkspacePayload struct {
	Workspace int `json:"workspace"`
}

// TreeData is returned by GET_TREE.
type TreeData struct {
	Workspace int                  `json:"workspace"`
	Root      *tiling.NodeSnapshot `json:"root"`
}

// MoveWindowPayload is the payload for MOVE_WINDOW. A zero window means the
// focused one.
type MoveWindowPayload struct {
	Window    uint64 `json:"window,omitempty"`
	Workspace int    `json:"workspace"`
	Follow    bool   `json:"follow,omitempty"`
}

// WindowPayload is the payload for TOGGLE_FLOATING.
type WindowPayload struct {
	Window uint64 `json:"window,omitempty"`
}

type FloatingData struct {
	Window   uint64 `json:"window,omitempty"`
	Floating bool   `json:"floating"`
}

// AdjustRatioPayload is the payload for ADJUST_RATIO. Mode is "set",
// "increment" or "decrement".
type AdjustRatioPayload struct {
	Window uint64  `json:"window,omitempty"`
	Mode   string  `json:"mode"`
	Value  float64 `json:"value"`
}

type RatioData struct {
	Ratio float64 `json:"ratio"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
