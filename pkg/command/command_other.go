//go:build !windows

package command

import (
	"context"
	"os/exec"
)

func hideConsoleWindow(cmd *exec.Cmd) {}

func shellCommand(ctx context.Context, commandLine string) *exec.Cmd {
	return exec.CommandContext(ctx, "sh", "-c", commandLine)
}
