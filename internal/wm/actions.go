package wm

import (
	"fmt"

	"github.com/spiralwm/spiral/internal/config"
	"github.com/spiralwm/spiral/internal/tiling"
)

// HandleAction runs a keybinding action against the focused window or the
// current workspace.
func (m *Manager) HandleAction(a config.Action) error {
	m.logger.Debug("action", "action", a.String())

	switch a.Kind {
	case config.ActionQuit:
		m.Quit()
	case config.ActionDebug:
		m.DumpTrees()
	case config.ActionClose:
		m.CloseFocused()
	case config.ActionWorkspace:
		return m.ActivateWorkspace(a.Workspace)
	case config.ActionMoveWindow:
		return m.MoveWindow(0, a.Workspace, false)
	case config.ActionMoveAndSwitch:
		return m.MoveWindow(0, a.Workspace, true)
	case config.ActionToggleFloating:
		if m.focused == 0 {
			return nil
		}
		_, err := m.ToggleFloating(0)
		return err
	case config.ActionRatio:
		mode, err := tiling.ParseRatioMode(string(a.Mode))
		if err != nil {
			return err
		}
		if _, err := m.AdjustRatio(0, a.Value, mode); err != nil {
			// Nothing split yet; not worth surfacing as a failure.
			m.logger.Debug("ratio action ignored", "reason", err)
		}
	case config.ActionVTSwitch:
		if m.vtSwitch == nil {
			m.logger.Info("vt switch not supported by this backend", "vt", a.VT)
			return nil
		}
		return m.vtSwitch(a.VT)
	case config.ActionSpawn:
		if err := m.spawn(a.Command); err != nil {
			return fmt.Errorf("spawn %q: %w", a.Command, err)
		}
	case config.ActionNone:
	default:
		return fmt.Errorf("unsupported action %q", a.String())
	}
	return nil
}
