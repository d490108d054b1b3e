package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/spiralwm/spiral/internal/runtimepath"
	"github.com/spiralwm/spiral/internal/tiling"
	"github.com/spiralwm/spiral/internal/wm"
	"github.com/spiralwm/spiral/internal/workspace"
)

// Controller is the window manager as seen by IPC. wm.Remote implements it.
type Controller interface {
	Status(ctx context.Context) (wm.Status, error)
	ListWorkspaces(ctx context.Context) ([]wm.WorkspaceInfo, error)
	Tree(ctx context.Context, id int) (*tiling.NodeSnapshot, error)
	ActivateWorkspace(ctx context.Context, id int) error
	MoveWindow(ctx context.Context, h workspace.Handle, id int, follow bool) error
	ToggleFloating(ctx context.Context, h workspace.Handle) (bool, error)
	AdjustRatio(ctx context.Context, h workspace.Handle, value float64, mode tiling.RatioMode) (float64, error)
	Subscribe(fn func(wm.Event)) (cancel func())
}

var _ Controller = (*wm.Remote)(nil)

// ServerOptions configure a Server.
type ServerOptions struct {
	// SocketPath defaults to runtimepath.SocketPath().
	SocketPath string
	Logger     *slog.Logger
	// RequestTimeout bounds how long a request may wait for the event loop.
	RequestTimeout time.Duration
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	listener   net.Listener
	ctrl       Controller
	logger     *slog.Logger
	timeout    time.Duration

	shutdownMu   sync.Mutex
	shuttingDown bool
	done         chan struct{}
}

// NewServer creates a new IPC server
func NewServer(ctrl Controller, opts ServerOptions) (*Server, error) {
	socketPath := opts.SocketPath
	if socketPath == "" {
		var err error
		if socketPath, err = runtimepath.SocketPath(); err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		logger:     logger,
		timeout:    timeout,
		done:       make(chan struct{}),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isShuttingDown() {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) isShuttingDown() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.writeResponse(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	if req.Command == CommandWatch {
		s.handleWatch(conn, reader)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.writeResponse(conn, s.handleCommand(ctx, req))
}

func (s *Server) writeResponse(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Debug("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)

	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandListWorkspaces:
		return s.handleListWorkspaces(ctx)
	case CommandGetTree:
		return s.handleGetTree(ctx, req.Payload)
	case CommandActivateWorkspace:
		return s.handleActivateWorkspace(ctx, req.Payload)
	case CommandMoveWindow:
		return s.handleMoveWindow(ctx, req.Payload)
	case CommandToggleFloating:
		return s.handleToggleFloating(ctx, req.Payload)
	case CommandAdjustRatio:
		return s.handleAdjustRatio(ctx, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func okOrError(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	status, err := s.ctrl.Status(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}
	return okOrError(status)
}

func (s *Server) handleListWorkspaces(ctx context.Context) *Response {
	list, err := s.ctrl.ListWorkspaces(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list workspaces: %v", err))
	}
	return okOrError(WorkspacesData{Workspaces: list})
}

func (s *Server) handleGetTree(ctx context.Context, payload json.RawMessage) *Response {
	var req WorkspacePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid tree payload: %v", err))
	}
	root, err := s.ctrl.Tree(ctx, req.Workspace)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get tree: %v", err))
	}
	return okOrError(TreeData{Workspace: req.Workspace, Root: root})
}

func (s *Server) handleActivateWorkspace(ctx context.Context, payload json.RawMessage) *Response {
	var req WorkspacePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid activate payload: %v", err))
	}
	if err := s.ctrl.ActivateWorkspace(ctx, req.Workspace); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to activate workspace: %v", err))
	}
	return okOrError(nil)
}

func (s *Server) handleMoveWindow(ctx context.Context, payload json.RawMessage) *Response {
	var req MoveWindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid move payload: %v", err))
	}
	if err := s.ctrl.MoveWindow(ctx, workspace.Handle(req.Window), req.Workspace, req.Follow); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to move window: %v", err))
	}
	return okOrError(nil)
}

func (s *Server) handleToggleFloating(ctx context.Context, payload json.RawMessage) *Response {
	var req WindowPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid floating payload: %v", err))
		}
	}
	floating, err := s.ctrl.ToggleFloating(ctx, workspace.Handle(req.Window))
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to toggle floating: %v", err))
	}
	return okOrError(FloatingData{Window: req.Window, Floating: floating})
}

func (s *Server) handleAdjustRatio(ctx context.Context, payload json.RawMessage) *Response {
	var req AdjustRatioPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid ratio payload: %v", err))
	}
	mode, err := tiling.ParseRatioMode(req.Mode)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	ratio, err := s.ctrl.AdjustRatio(ctx, workspace.Handle(req.Window), req.Value, mode)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to adjust ratio: %v", err))
	}
	return okOrError(RatioData{Ratio: ratio})
}

// watchBuffer is how many events a slow watcher may fall behind before
// events are dropped for it.
const watchBuffer = 64

// handleWatch streams events until the client disconnects or the server
// stops. The current state is sent first so a watcher can draw immediately.
func (s *Server) handleWatch(conn net.Conn, reader *bufio.Reader) {
	events := make(chan wm.Event, watchBuffer)
	cancel := s.ctrl.Subscribe(func(ev wm.Event) {
		select {
		case events <- ev:
		default:
			s.logger.Warn("IPC watcher too slow, dropping event", "kind", ev.Kind)
		}
	})
	defer cancel()

	ctx, cancelStatus := context.WithTimeout(context.Background(), s.timeout)
	status, err := s.ctrl.Status(ctx)
	cancelStatus()
	if err != nil {
		s.writeResponse(conn, NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err)))
		return
	}
	s.writeResponse(conn, okOrError(nil))

	enc := json.NewEncoder(conn)
	initial := []wm.Event{
		{Kind: wm.EventActiveWorkspace, Workspace: status.CurrentWorkspace, Occupied: status.Occupied},
		{Kind: wm.EventOccupiedWorkspaces, Workspace: status.CurrentWorkspace, Occupied: status.Occupied},
	}
	for _, ev := range initial {
		if err := enc.Encode(ev); err != nil {
			return
		}
	}

	// The client never sends more; a read returning means it went away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		_, _ = io.Copy(io.Discard, reader)
	}()

	for {
		select {
		case <-gone:
			return
		case <-s.done:
			return
		case ev := <-events:
			if err := enc.Encode(ev); err != nil {
				s.logger.Debug("IPC watcher write failed", "error", err)
				return
			}
		}
	}
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
