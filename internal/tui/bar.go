package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spiralwm/spiral/internal/wm"
)

var (
	currentTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	occupiedTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("238")).
				Padding(0, 2)

	emptyTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Background(lipgloss.Color("236")).
			Padding(0, 2)

	selectedMarkStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("212")).
				Bold(true)

	tabBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	tabGap = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		SetString(" ")
)

// barState is what the workspace bar shows.
type barState struct {
	count    int
	current  int
	selected int
	occupied []int
}

// renderTabBar renders one tab per workspace. Labels are 1-based like the
// default keybindings.
func renderTabBar(s barState, width int) string {
	var tabs []string
	for i := 0; i < s.count; i++ {
		label := fmt.Sprintf("%d", i+1)
		if i == s.selected && i != s.current {
			label = selectedMarkStyle.Render("›") + label
		}
		switch {
		case i == s.current:
			tabs = append(tabs, currentTabStyle.Render(label))
		case slices.Contains(s.occupied, i):
			tabs = append(tabs, occupiedTabStyle.Render(label))
		default:
			tabs = append(tabs, emptyTabStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(tabs, tabGap.Render())...)
	return tabBarStyle.Width(width).Render(row)
}

// intersperse inserts sep between each element of items.
func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}

// PlainBar renders the workspace bar as plain text for status bar programs:
// the current workspace in brackets, occupied ones marked with '*'.
func PlainBar(count, current int, occupied []int) string {
	parts := make([]string, 0, count)
	for i := 0; i < count; i++ {
		label := fmt.Sprintf("%d", i+1)
		switch {
		case i == current:
			label = "[" + label + "]"
		case slices.Contains(occupied, i):
			label += "*"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}

// renderStatusBar renders the daemon connection line.
func renderStatusBar(connected bool, windows int, focused uint64, width int) string {
	var status string
	if connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " daemon connected", fmt.Sprintf("windows:%d", windows)}
		if focused != 0 {
			parts = append(parts, fmt.Sprintf("focused:%d", focused))
		}
		status = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

// renderWindows lists the windows of a workspace next to its split tree.
func renderWindows(windows []wm.WindowInfo, tree string, width, height int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	focusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Windows"))
	b.WriteString("\n")
	if len(windows) == 0 {
		b.WriteString(dimStyle.Render("  (none)"))
		b.WriteString("\n")
	}
	for _, w := range windows {
		mark := "  "
		if w.Focused {
			mark = focusStyle.Render("● ")
		}
		mode := "tiled"
		if w.Floating {
			mode = "floating"
		}
		name := w.AppID
		if w.Title != "" {
			name = w.AppID + " " + dimStyle.Render(w.Title)
		}
		fmt.Fprintf(&b, "%s%-4d %-8s %4dx%-4d %s\n", mark, w.Handle, mode, w.Width, w.Height, name)
	}

	left := lipgloss.NewStyle().Width(width / 2).Render(strings.TrimRight(b.String(), "\n"))
	right := lipgloss.NewStyle().
		Width(width - width/2).
		Foreground(lipgloss.Color("250")).
		Render(titleStyle.Render("Tree") + "\n" + tree)

	return lipgloss.NewStyle().Height(height).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, left, right))
}
