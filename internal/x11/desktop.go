package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// supportedAtoms is advertised in _NET_SUPPORTED.
var supportedAtoms = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_DESKTOP_NAMES",
	"_NET_CURRENT_DESKTOP",
	"_NET_ACTIVE_WINDOW",
	"_NET_CLIENT_LIST",
	"_NET_CLOSE_WINDOW",
	"_NET_WM_DESKTOP",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_STRUT",
	"_NET_WM_STRUT_PARTIAL",
}

// setupEWMH publishes the window manager identity and the desktop layout so
// pagers and panels can follow workspaces.
func (c *Connection) setupEWMH(name string, desktops int) error {
	check, err := xwindow.Create(c.XUtil, c.Root)
	if err != nil {
		return fmt.Errorf("failed to create supporting window: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, check.Id); err != nil {
		return fmt.Errorf("failed to set _NET_SUPPORTING_WM_CHECK: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, check.Id, check.Id); err != nil {
		return fmt.Errorf("failed to set _NET_SUPPORTING_WM_CHECK: %w", err)
	}
	if err := ewmh.WmNameSet(c.XUtil, check.Id, name); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	if err := ewmh.SupportedSet(c.XUtil, supportedAtoms); err != nil {
		return fmt.Errorf("failed to set _NET_SUPPORTED: %w", err)
	}

	names := make([]string, desktops)
	for i := range names {
		names[i] = fmt.Sprintf("%d", i+1)
	}
	if err := ewmh.NumberOfDesktopsSet(c.XUtil, uint(desktops)); err != nil {
		return fmt.Errorf("failed to set _NET_NUMBER_OF_DESKTOPS: %w", err)
	}
	if err := ewmh.DesktopNamesSet(c.XUtil, names); err != nil {
		return fmt.Errorf("failed to set _NET_DESKTOP_NAMES: %w", err)
	}
	return c.SetCurrentDesktop(0)
}

// SetCurrentDesktop publishes the visible workspace as _NET_CURRENT_DESKTOP.
func (c *Connection) SetCurrentDesktop(desktop int) error {
	if err := ewmh.CurrentDesktopSet(c.XUtil, uint(desktop)); err != nil {
		return fmt.Errorf("failed to set current desktop: %w", err)
	}
	return nil
}

// SetWindowDesktop records the workspace of a client in _NET_WM_DESKTOP.
func (c *Connection) SetWindowDesktop(windowID xproto.Window, desktop int) error {
	if err := ewmh.WmDesktopSet(c.XUtil, windowID, uint(desktop)); err != nil {
		return fmt.Errorf("failed to set window desktop: %w", err)
	}
	return nil
}

// SetClientList publishes the managed windows in mapping order.
func (c *Connection) SetClientList(windows []xproto.Window) error {
	if err := ewmh.ClientListSet(c.XUtil, windows); err != nil {
		return fmt.Errorf("failed to set client list: %w", err)
	}
	return nil
}

// clearActiveWindow resets _NET_ACTIVE_WINDOW when nothing is focused.
func (c *Connection) clearActiveWindow() {
	ewmh.ActiveWindowSet(c.XUtil, 0)
	xproto.SetInputFocus(c.XUtil.Conn(), xproto.InputFocusPointerRoot, c.Root, xproto.TimeCurrentTime)
}
