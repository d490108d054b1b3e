package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/spiralwm/spiral/internal/runtimepath"
	"github.com/spiralwm/spiral/internal/tiling"
	"github.com/spiralwm/spiral/internal/wm"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) dial() (net.Conn, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	return conn, nil
}

func writeRequest(conn net.Conn, command CommandType, payload any) error {
	req := Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = data
	}
	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

func readResponse(reader *bufio.Reader) (*Response, error) {
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// call sends a request and decodes the response data into out when non-nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := writeRequest(conn, command, payload); err != nil {
		return err
	}
	resp, err := readResponse(bufio.NewReader(conn))
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListWorkspaces retrieves every workspace with its windows.
func (c *Client) ListWorkspaces() ([]wm.WorkspaceInfo, error) {
	var data WorkspacesData
	if err := c.call(CommandListWorkspaces, nil, &data); err != nil {
		return nil, err
	}
	return data.Workspaces, nil
}

// GetTree retrieves the layout tree of a workspace.
func (c *Client) GetTree(id int) (*tiling.NodeSnapshot, error) {
	var data TreeData
	if err := c.call(CommandGetTree, WorkspacePayload{Workspace: id}, &data); err != nil {
		return nil, err
	}
	return data.Root, nil
}

// ActivateWorkspace switches the visible workspace.
func (c *Client) ActivateWorkspace(id int) error {
	return c.call(CommandActivateWorkspace, WorkspacePayload{Workspace: id}, nil)
}

// MoveWindow sends a window (zero for the focused one) to a workspace.
func (c *Client) MoveWindow(window uint64, id int, follow bool) error {
	return c.call(CommandMoveWindow, MoveWindowPayload{Window: window, Workspace: id, Follow: follow}, nil)
}

// ToggleFloating flips a window (zero for the focused one) between tiled
// and floating and reports the new state.
func (c *Client) ToggleFloating(window uint64) (bool, error) {
	var data FloatingData
	if err := c.call(CommandToggleFloating, WindowPayload{Window: window}, &data); err != nil {
		return false, err
	}
	return data.Floating, nil
}

// AdjustRatio changes a split ratio and returns the resulting value.
func (c *Client) AdjustRatio(window uint64, mode string, value float64) (float64, error) {
	var data RatioData
	if err := c.call(CommandAdjustRatio, AdjustRatioPayload{Window: window, Mode: mode, Value: value}, &data); err != nil {
		return 0, err
	}
	return data.Ratio, nil
}

// Watch streams events to fn until ctx is cancelled or the daemon closes the
// connection. The first two events describe the current state.
func (c *Client) Watch(ctx context.Context, fn func(wm.Event)) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetDeadline(time.Now().Add(c.timeout))
	if err := writeRequest(conn, CommandWatch, nil); err != nil {
		return err
	}
	reader := bufio.NewReader(conn)
	if _, err := readResponse(reader); err != nil {
		return err
	}
	conn.SetDeadline(time.Time{})

	dec := json.NewDecoder(reader)
	for {
		var ev wm.Event
		if err := dec.Decode(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("watch stream ended: %w", err)
		}
		fn(ev)
	}
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
