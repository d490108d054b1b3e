package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spiralwm/spiral/internal/tiling"
)

func textResult(format string, args ...any) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{Status: *status}, nil
}

func (s *Server) handleListWorkspaces(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWorkspacesInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	list, err := s.daemon.ListWorkspaces()
	if err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	return nil, ListWorkspacesOutput{Workspaces: list}, nil
}

func (s *Server) handleGetTree(_ context.Context, _ *mcpsdk.CallToolRequest, args GetTreeInput) (*mcpsdk.CallToolResult, GetTreeOutput, error) {
	root, err := s.daemon.GetTree(args.Workspace)
	if err != nil {
		return nil, GetTreeOutput{}, err
	}
	if root == nil {
		root = &tiling.NodeSnapshot{Kind: "empty"}
	}
	return nil, GetTreeOutput{Workspace: args.Workspace, Root: root, Text: root.String()}, nil
}

func (s *Server) handleActivateWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args ActivateWorkspaceInput) (*mcpsdk.CallToolResult, ActivateWorkspaceOutput, error) {
	if err := s.daemon.ActivateWorkspace(args.Workspace); err != nil {
		return nil, ActivateWorkspaceOutput{}, err
	}
	s.logger.Info("mcp activated workspace", "workspace", args.Workspace)
	return textResult("Workspace %d is now visible", args.Workspace),
		ActivateWorkspaceOutput{Workspace: args.Workspace}, nil
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, MoveWindowOutput, error) {
	if err := s.daemon.MoveWindow(args.Window, args.Workspace, args.Follow); err != nil {
		return nil, MoveWindowOutput{}, err
	}
	s.logger.Info("mcp moved window", "window", args.Window, "workspace", args.Workspace, "follow", args.Follow)
	out := MoveWindowOutput{Window: args.Window, Workspace: args.Workspace, Followed: args.Follow}
	return textResult("Moved %s to workspace %d", windowLabel(args.Window), args.Workspace), out, nil
}

func (s *Server) handleToggleFloating(_ context.Context, _ *mcpsdk.CallToolRequest, args ToggleFloatingInput) (*mcpsdk.CallToolResult, ToggleFloatingOutput, error) {
	floating, err := s.daemon.ToggleFloating(args.Window)
	if err != nil {
		return nil, ToggleFloatingOutput{}, err
	}
	state := "tiled"
	if floating {
		state = "floating"
	}
	return textResult("%s is now %s", windowLabel(args.Window), state),
		ToggleFloatingOutput{Window: args.Window, Floating: floating}, nil
}

func (s *Server) handleAdjustRatio(_ context.Context, _ *mcpsdk.CallToolRequest, args AdjustRatioInput) (*mcpsdk.CallToolResult, AdjustRatioOutput, error) {
	// Reject bad modes before the round trip so the error names the argument.
	if _, err := tiling.ParseRatioMode(args.Mode); err != nil {
		return nil, AdjustRatioOutput{}, fmt.Errorf("mode: %w", err)
	}
	ratio, err := s.daemon.AdjustRatio(args.Window, args.Mode, args.Value)
	if err != nil {
		return nil, AdjustRatioOutput{}, err
	}
	return nil, AdjustRatioOutput{Ratio: ratio}, nil
}

func windowLabel(window uint64) string {
	if window == 0 {
		return "focused window"
	}
	return fmt.Sprintf("window %d", window)
}
