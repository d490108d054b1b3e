package wm

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// Spawn starts command under sh -c in its own session so it outlives the
// window manager's process group. When display is set it overrides DISPLAY
// for the child.
func Spawn(command, display string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return fmt.Errorf("empty command")
	}

	cmd := exec.Command("sh", "-c", command)
	cmd.Env = os.Environ()
	if display != "" {
		cmd.Env = append(cmd.Env, "DISPLAY="+display)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	// Reap the child so it does not linger as a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}
