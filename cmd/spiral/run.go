package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spiralwm/spiral/internal/daemon"
	"github.com/spiralwm/spiral/internal/hotkeys"
	"github.com/spiralwm/spiral/internal/ipc"
	"github.com/spiralwm/spiral/internal/wm"
	"github.com/spiralwm/spiral/internal/x11"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the window manager (foreground)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon(cmd.Context())
	},
}

func runDaemon(parent context.Context) error {
	res, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.Info("configuration loaded",
		"files", res.Files,
		"workspaces", cfg.Workspaces,
		"keybindings", len(cfg.Keybindings))

	m := wm.New(wm.Options{Config: cfg, Logger: logger})
	loop := wm.NewLoop()

	conn, err := x11.NewConnection(cfg.Display)
	if err != nil {
		return err
	}
	defer conn.Close()

	backend, err := x11.NewBackend(conn, m, loop, logger.With("component", "x11"))
	if err != nil {
		return err
	}
	if err := backend.Start(); err != nil {
		return err
	}
	logger.Info("window manager started")

	keys := hotkeys.NewHandler(backend, m, logger.With("component", "hotkeys"))
	if failed, err := keys.RegisterAll(cfg.Keybindings); err != nil {
		logger.Warn("some keybindings were not registered", "failed", failed, "first_error", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	remote := wm.NewRemote(m, loop)
	server, err := ipc.NewServer(remote, ipc.ServerOptions{Logger: logger.With("component", "ipc")})
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer server.Stop()
	logger.Info("IPC server listening", "socket", server.SocketPath())

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Logger: logger.With("component", "reconciler"),
	}, remote)
	go reconciler.Run(ctx)

	m.Autostart()

	err = backend.Run(ctx)
	if errors.Is(err, context.Canceled) || err == nil {
		logger.Info("window manager stopped")
		return nil
	}
	return err
}
