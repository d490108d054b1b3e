// Package tui is the interactive workspace bar. When stdout is not a
// terminal it prints a plain text bar line per change instead, suitable for
// feeding status bar programs.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/spiralwm/spiral/internal/wm"
)

// Run shows the workspace bar until the user quits or ctx is cancelled.
func Run(ctx context.Context, d Daemon) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return RunPlain(ctx, d, os.Stdout)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(d), tea.WithAltScreen(), tea.WithContext(ctx))
	go func() {
		err := d.Watch(ctx, func(ev wm.Event) {
			p.Send(eventMsg(ev))
		})
		if ctx.Err() == nil {
			p.Send(watchEndedMsg{err: err})
		}
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// RunPlain writes a PlainBar line for the initial state and after every
// workspace change until ctx is cancelled or the daemon goes away.
func RunPlain(ctx context.Context, d Daemon, w io.Writer) error {
	status, err := d.GetStatus()
	if err != nil {
		return err
	}
	count := status.Workspaces

	last := ""
	current, occupied := status.CurrentWorkspace, status.Occupied
	emit := func() {
		line := PlainBar(count, current, occupied)
		if line == last {
			return
		}
		last = line
		fmt.Fprintln(w, line)
	}

	err = d.Watch(ctx, func(ev wm.Event) {
		switch ev.Kind {
		case wm.EventActiveWorkspace:
			current, occupied = ev.Workspace, ev.Occupied
		case wm.EventOccupiedWorkspaces:
			occupied = ev.Occupied
		default:
			return
		}
		emit()
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
