// Package login launches Claude Code's own login flow.
//
// claude-accounts never authenticates anyone. Adding an account means
// running `claude /login`, after which Claude Code rewrites oauthAccount in
// ~/.claude.json and the next reconcile records it.
package login

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// DefaultCommand is Claude Code's interactive login.
var DefaultCommand = []string{"claude", "/login"}

// Launcher starts the login command.
type Launcher struct {
	command []string
	logger  *slog.Logger
}

// NewLauncher creates a launcher for command (program first). An empty
// command uses DefaultCommand.
func NewLauncher(command []string, logger *slog.Logger) *Launcher {
	if len(command) == 0 {
		command = DefaultCommand
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{command: append([]string(nil), command...), logger: logger}
}

// Command returns the program and arguments that will be run.
func (l *Launcher) Command() []string {
	return append([]string(nil), l.command...)
}

// StartDetached starts the login flow in its own session with the
// terminal's stdio and returns without waiting. The caller is expected to
// exit right after, leaving the login flow in charge of the terminal.
func (l *Launcher) StartDetached() (int, error) {
	cmd := exec.Command(l.command[0], l.command[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = detachedSysProcAttr()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", l.command[0], err)
	}
	pid := cmd.Process.Pid
	l.logger.Debug("login flow started", "command", l.command, "pid", pid)

	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("release login process: %w", err)
	}
	return pid, nil
}

// Run runs the login flow attached to the terminal and waits for it.
func (l *Launcher) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, l.command[0], l.command[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	l.logger.Debug("running login flow", "command", l.command)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", l.command[0], err)
	}
	return nil
}
