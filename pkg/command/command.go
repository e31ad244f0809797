// pkg/command/command.go - child-process execution with timeouts and captured output.

package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/appgrab/appgrab/pkg/logging"
)

// Result carries the captured output of a finished child process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout and stderr joined, trimmed of trailing whitespace.
// Installers tend to write diagnostics to either stream interchangeably.
func (r Result) Combined() string {
	return strings.TrimRight(r.Stdout+r.Stderr, "\r\n \t")
}

// ErrTimeout is returned when a child process exceeds its deadline. The
// underlying process is killed before the error is returned.
var ErrTimeout = errors.New("command timed out")

// Runner executes commands. The interface exists so the pipeline can be
// exercised in tests without spawning real processes.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
	RunShell(ctx context.Context, commandLine string) (Result, error)
	LookPath(name string) bool
}

// ExecRunner runs real child processes with hidden windows on Windows.
type ExecRunner struct{}

// NewRunner creates a runner backed by os/exec.
func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes name with args, honoring the context deadline. On deadline
// expiry the child is killed and ErrTimeout is returned alongside whatever
// output was captured.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return r.runCmd(ctx, cmd, name)
}

// RunShell executes a full command line through the system shell. Used only
// for operator-supplied custom commands, which are intentionally verbatim.
func (r *ExecRunner) RunShell(ctx context.Context, commandLine string) (Result, error) {
	cmd := shellCommand(ctx, commandLine)
	return r.runCmd(ctx, cmd, commandLine)
}

// LookPath reports whether an executable is resolvable on PATH.
func (r *ExecRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func (r *ExecRunner) runCmd(ctx context.Context, cmd *exec.Cmd, label string) (Result, error) {
	hideConsoleWindow(cmd)

	var out bytes.Buffer
	var stderr bytes.Buffer
	// Installers can be verbose; grow the buffers up front.
	out.Grow(64 * 1024)
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{Stdout: out.String(), Stderr: stderr.String()}

	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctx.Err() == context.DeadlineExceeded {
		logging.Warn("Command exceeded its deadline", "command", label, "elapsed", time.Since(start).String())
		return res, ErrTimeout
	}
	if err != nil {
		logging.Debug("Command failed", "command", label, "exit_code", res.ExitCode, "stderr", strings.TrimSpace(res.Stderr))
		return res, err
	}

	logging.Debug("Command completed", "command", label, "elapsed", time.Since(start).String())
	return res, nil
}
