package tui

import (
	"context"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/spiralwm/spiral/internal/ipc"
	"github.com/spiralwm/spiral/internal/tiling"
	"github.com/spiralwm/spiral/internal/wm"
)

// Daemon is the part of the IPC client the bar uses. *ipc.Client
// implements it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListWorkspaces() ([]wm.WorkspaceInfo, error)
	GetTree(id int) (*tiling.NodeSnapshot, error)
	ActivateWorkspace(id int) error
	ToggleFloating(window uint64) (bool, error)
	Watch(ctx context.Context, fn func(wm.Event)) error
}

var _ Daemon = (*ipc.Client)(nil)

// eventMsg carries a daemon event into the program.
type eventMsg wm.Event

// watchEndedMsg reports that the event stream closed.
type watchEndedMsg struct{ err error }

// snapshotMsg is the result of a refresh.
type snapshotMsg struct {
	status     ipc.StatusData
	workspaces []wm.WorkspaceInfo
	tree       string
}

type errMsg struct{ err error }

// model is the root bubbletea model for the workspace bar.
type model struct {
	daemon Daemon
	keys   keyMap
	help   help.Model

	connected  bool
	count      int
	current    int
	selected   int
	occupied   []int
	windows    int
	focused    uint64
	workspaces []wm.WorkspaceInfo
	tree       string
	lastError  string

	// Terminal dimensions
	width  int
	height int
}

func newModel(d Daemon) model {
	return model{
		daemon: d,
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
}

// refresh fetches status, workspaces and the selected workspace's tree.
func (m model) refresh() tea.Cmd {
	d, selected := m.daemon, m.selected
	return func() tea.Msg {
		status, err := d.GetStatus()
		if err != nil {
			return errMsg{err}
		}
		list, err := d.ListWorkspaces()
		if err != nil {
			return errMsg{err}
		}
		if selected < 0 || selected >= status.Workspaces {
			selected = status.CurrentWorkspace
		}
		tree := "empty"
		if root, err := d.GetTree(selected); err == nil && root != nil {
			tree = root.String()
		}
		return snapshotMsg{status: *status, workspaces: list, tree: tree}
	}
}

func (m model) activate(id int) tea.Cmd {
	d := m.daemon
	return func() tea.Msg {
		if err := d.ActivateWorkspace(id); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m model) toggleFloating() tea.Cmd {
	d := m.daemon
	return func() tea.Msg {
		if _, err := d.ToggleFloating(0); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.refresh()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			if m.count > 0 {
				m.selected = (m.selected - 1 + m.count) % m.count
			}
			return m, m.refresh()
		case key.Matches(msg, m.keys.Next):
			if m.count > 0 {
				m.selected = (m.selected + 1) % m.count
			}
			return m, m.refresh()
		case key.Matches(msg, m.keys.Activate):
			return m, m.activate(m.selected)
		case key.Matches(msg, m.keys.Float):
			return m, m.toggleFloating()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refresh()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case eventMsg:
		m.connected = true
		switch msg.Kind {
		case wm.EventActiveWorkspace:
			m.current = msg.Workspace
			m.selected = msg.Workspace
			m.occupied = slices.Clone(msg.Occupied)
		case wm.EventOccupiedWorkspaces:
			m.occupied = slices.Clone(msg.Occupied)
		}
		return m, m.refresh()

	case snapshotMsg:
		m.connected = true
		m.lastError = ""
		m.count = msg.status.Workspaces
		m.current = msg.status.CurrentWorkspace
		m.occupied = msg.status.Occupied
		m.windows = msg.status.Windows
		m.focused = uint64(msg.status.Focused)
		m.workspaces = msg.workspaces
		m.tree = msg.tree
		if m.selected >= m.count {
			m.selected = m.current
		}
		return m, nil

	case errMsg:
		m.lastError = msg.err.Error()
		return m, nil

	case watchEndedMsg:
		m.connected = false
		if msg.err != nil {
			m.lastError = msg.err.Error()
		}
		return m, nil
	}
	return m, nil
}

func (m model) selectedWindows() []wm.WindowInfo {
	for _, ws := range m.workspaces {
		if ws.ID == m.selected {
			return ws.Windows
		}
	}
	return nil
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, m.windows, m.focused, m.width)
	tabBar := renderTabBar(barState{
		count:    m.count,
		current:  m.current,
		selected: m.selected,
		occupied: m.occupied,
	}, m.width)

	footer := m.help.View(m.keys)
	if m.lastError != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
		footer = errStyle.Render(m.lastError) + "\n" + footer
	}

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(footer)
	contentHeight := max(m.height-usedHeight, 1)

	content := renderWindows(m.selectedWindows(), m.tree, m.width, contentHeight)

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		footer,
	)
}
