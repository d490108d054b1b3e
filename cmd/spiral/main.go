package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/spiralwm/spiral/internal/config"
	"github.com/spiralwm/spiral/internal/ipc"
)

// Version is set during build.
var Version = "0.1.0-dev"

var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "spiral",
		Short: "spiral - a dwindling BSP tiling window manager for X11",
		Long: `spiral tiles windows into a binary split tree per workspace. Each new
window splits the most recent tiled region, alternating between horizontal
and vertical splits, so windows dwindle in a spiral toward one corner.

Run 'spiral run' from your X session to start the window manager. The other
commands talk to a running instance over its IPC socket.`,
		SilenceUsage: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: $XDG_CONFIG_HOME/spiral/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log_level)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(windowCmd)
	rootCmd.AddCommand(ratioCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(barCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
}

// loadConfig reads --config when given and the XDG search path otherwise.
func loadConfig() (*config.LoadResult, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.LoadWithSources()
}

// newLogger builds the process logger. The flag wins over the configured
// level, which wins over info.
func newLogger(configured string) (*slog.Logger, error) {
	level := charmlog.InfoLevel
	name := configured
	if logLevel != "" {
		name = logLevel
	}
	if name != "" {
		parsed, err := charmlog.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}

	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           level,
		Prefix:          "spiral",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	return slog.New(handler), nil
}

func newClient() *ipc.Client {
	return ipc.NewClient()
}
