// Package mcp exposes the running window manager to MCP clients. Every tool
// is a thin wrapper over the daemon's IPC socket, so the server can run in
// its own process next to the window manager.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spiralwm/spiral/internal/ipc"
	"github.com/spiralwm/spiral/internal/tiling"
	"github.com/spiralwm/spiral/internal/wm"
)

const (
	ServerName    = "spiral"
	ServerVersion = "0.1.0"
)

// Daemon is the part of the IPC client the tools use. *ipc.Client
// implements it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListWorkspaces() ([]wm.WorkspaceInfo, error)
	GetTree(id int) (*tiling.NodeSnapshot, error)
	ActivateWorkspace(id int) error
	MoveWindow(window uint64, id int, follow bool) error
	ToggleFloating(window uint64) (bool, error)
	AdjustRatio(window uint64, mode string, value float64) (float64, error)
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for window manager control.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates an MCP server that talks to the daemon through d.
func NewServer(d Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: d,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the window manager state: current workspace, occupied workspaces, window count, focused window and outputs.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_workspaces",
		Description: "List every workspace with its windows. Window handles from this list are accepted by move_window, toggle_floating and adjust_ratio.",
	}, s.handleListWorkspaces)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_tree",
		Description: "Return the binary split tree that tiles a workspace, both as structured data and as an indented outline.",
	}, s.handleGetTree)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "activate_workspace",
		Description: "Switch the visible workspace. Workspaces are numbered from 0.",
	}, s.handleActivateWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a window (the focused one by default) to another workspace, optionally switching to it.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_floating",
		Description: "Toggle a window (the focused one by default) between tiled and floating.",
	}, s.handleToggleFloating)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "adjust_ratio",
		Description: "Change the split ratio of the split holding a window (the focused one by default). mode is set, increment or decrement.",
	}, s.handleAdjustRatio)
}
