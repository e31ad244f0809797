//go:build windows

package command

import (
	"context"
	"os/exec"
	"syscall"
)

// hideConsoleWindow prevents installer child processes from flashing a
// console window.
func hideConsoleWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}

func shellCommand(ctx context.Context, commandLine string) *exec.Cmd {
	return exec.CommandContext(ctx, "cmd.exe", "/c", commandLine)
}
