package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spiralwm/spiral/internal/config"
	"github.com/spiralwm/spiral/internal/ipc"
	"github.com/spiralwm/spiral/internal/tui"
	"github.com/spiralwm/spiral/internal/wm"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newClient().GetStatus()
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), status)
		return nil
	},
}

func printStatus(w io.Writer, status *ipc.StatusData) {
	fmt.Fprintf(w, "current_workspace: %d\n", status.CurrentWorkspace)
	fmt.Fprintf(w, "workspaces:        %d\n", status.Workspaces)
	fmt.Fprintf(w, "occupied:          %v\n", status.Occupied)
	fmt.Fprintf(w, "windows:           %d\n", status.Windows)
	if status.Focused != 0 {
		fmt.Fprintf(w, "focused:           %d\n", status.Focused)
	}
	fmt.Fprintf(w, "uptime_seconds:    %d\n", status.UptimeSeconds)
	for _, o := range status.Outputs {
		fmt.Fprintf(w, "output %s: %s usable %s scale %.2f %s\n", o.Name, o.Geometry, o.Usable, o.Scale, o.Transform)
	}
}

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Inspect and switch workspaces",
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces and their windows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListWorkspaces()
		if err != nil {
			return err
		}
		printWorkspaces(cmd.OutOrStdout(), list)
		return nil
	},
}

func printWorkspaces(w io.Writer, list []wm.WorkspaceInfo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WORKSPACE\tWINDOW\tMODE\tGEOMETRY\tAPP")
	for _, ws := range list {
		label := strconv.Itoa(ws.ID)
		if ws.Current {
			label += "*"
		}
		if len(ws.Windows) == 0 {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\n", label)
			continue
		}
		for _, win := range ws.Windows {
			mode := "tiled"
			if win.Floating {
				mode = "floating"
			}
			handle := strconv.FormatUint(uint64(win.Handle), 10)
			if win.Focused {
				handle += "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d+%d+%d\t%s\n",
				label, handle, mode, win.Width, win.Height, win.X, win.Y, win.AppID)
		}
	}
	tw.Flush()
}

var workspaceActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Switch to a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseWorkspaceID(args[0])
		if err != nil {
			return err
		}
		return newClient().ActivateWorkspace(id)
	},
}

var workspaceTreeCmd = &cobra.Command{
	Use:   "tree [id]",
	Short: "Print a workspace's split tree (default: current)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		var id int
		if len(args) == 1 {
			var err error
			if id, err = parseWorkspaceID(args[0]); err != nil {
				return err
			}
		} else {
			status, err := client.GetStatus()
			if err != nil {
				return err
			}
			id = status.CurrentWorkspace
		}
		root, err := client.GetTree(id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), root.String())
		return nil
	},
}

func parseWorkspaceID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid workspace %q: expected a number >= 0", s)
	}
	return id, nil
}

var (
	windowID      uint64
	moveAndSwitch bool
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Move or float windows",
}

var windowMoveCmd = &cobra.Command{
	Use:   "move <workspace>",
	Short: "Send a window to another workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseWorkspaceID(args[0])
		if err != nil {
			return err
		}
		return newClient().MoveWindow(windowID, id, moveAndSwitch)
	},
}

var windowFloatCmd = &cobra.Command{
	Use:   "float",
	Short: "Toggle a window between tiled and floating",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		floating, err := newClient().ToggleFloating(windowID)
		if err != nil {
			return err
		}
		if floating {
			fmt.Fprintln(cmd.OutOrStdout(), "floating")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "tiled")
		}
		return nil
	},
}

var ratioCmd = &cobra.Command{
	Use:   "ratio <value>",
	Short: "Adjust the split ratio around a window",
	Long: `Adjust the ratio of the split that holds a window. A plain value sets the
ratio, a value prefixed with + or - nudges it. Ratios are clamped to
[0.05, 0.95].

  spiral ratio 0.5
  spiral ratio -- +0.05
  spiral ratio -- -0.05`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, err := config.ParseAction(string(config.ActionRatio) + " " + args[0])
		if err != nil {
			return err
		}
		ratio, err := newClient().AdjustRatio(windowID, string(action.Mode), action.Value)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", ratio)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream workspace events as JSON lines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		enc := json.NewEncoder(cmd.OutOrStdout())
		err := newClient().Watch(ctx, func(ev wm.Event) {
			_ = enc.Encode(ev)
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

var barCmd = &cobra.Command{
	Use:   "bar",
	Short: "Show the workspace bar",
	Long: `Show an interactive workspace bar. When stdout is not a terminal, print one
plain text line per change instead, for status bars such as lemonbar:

  [1] 2* 3 4

The current workspace is bracketed and occupied ones carry a '*'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return tui.Run(ctx, newClient())
	},
}

func init() {
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceActivateCmd)
	workspaceCmd.AddCommand(workspaceTreeCmd)

	windowCmd.PersistentFlags().Uint64Var(&windowID, "window", 0, "window handle (default: focused window)")
	windowMoveCmd.Flags().BoolVar(&moveAndSwitch, "switch", false, "follow the window to the target workspace")
	windowCmd.AddCommand(windowMoveCmd)
	windowCmd.AddCommand(windowFloatCmd)

	ratioCmd.Flags().Uint64Var(&windowID, "window", 0, "window handle (default: focused window)")
}
