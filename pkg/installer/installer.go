// pkg/installer/installer.go - executes downloaded installer artifacts.

package installer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/appgrab/appgrab/pkg/command"
	"github.com/appgrab/appgrab/pkg/logging"
)

// DefaultTimeout bounds a single installer run.
const DefaultTimeout = 10 * time.Minute

// Exit codes that need dedicated handling.
const (
	exitAccessDenied       = 5
	exitElevationRequired  = 740
	msiExitBlockedByPolicy = 1625
	msiExitRebootRequired  = 3010 // success, reboot pending
)

// Reason categorizes an installer-run failure at the point of detection.
type Reason int

const (
	ReasonProcess Reason = iota
	ReasonSpawn
	ReasonElevation
	ReasonTimeout
)

// RunError is a structured installer failure. Output retains the raw
// installer output for diagnostics.
type RunError struct {
	Reason   Reason
	ExitCode int
	Output   string
	Err      error
}

func (e *RunError) Error() string {
	switch e.Reason {
	case ReasonSpawn:
		return fmt.Sprintf("failed to start installer: %v", e.Err)
	case ReasonElevation:
		return fmt.Sprintf("installer requires elevation (exit code %d)", e.ExitCode)
	case ReasonTimeout:
		return "installer timed out"
	default:
		return fmt.Sprintf("installer exited with code %d", e.ExitCode)
	}
}

func (e *RunError) Unwrap() error { return e.Err }

// Runner executes installer artifacts and custom commands.
type Runner struct {
	cmd     command.Runner
	Timeout time.Duration
}

// NewRunner creates a Runner backed by the given command runner.
func NewRunner(cmd command.Runner) *Runner {
	return &Runner{cmd: cmd, Timeout: DefaultTimeout}
}

// InferExtension derives the artifact file extension from the download URL,
// falling back to a format hint inside the install arguments, and finally
// to .exe.
func InferExtension(rawURL, installArgs string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
			return ext
		}
	}
	for _, hint := range []string{".msi", ".msix", ".msixbundle", ".appx"} {
		if strings.Contains(strings.ToLower(installArgs), hint) {
			return hint
		}
	}
	return ".exe"
}

// Invocation resolves the command line for an artifact based on its
// extension. Manager-native package formats route to their silent handler;
// anything else is treated as a silent-capable executable.
func Invocation(artifactPath, installArgs string) (string, []string) {
	extra := strings.Fields(installArgs)

	switch strings.ToLower(filepath.Ext(artifactPath)) {
	case ".msi":
		args := append([]string{"/i", artifactPath, "/qn", "/norestart"}, extra...)
		return msiexecPath(), args
	case ".msix", ".msixbundle", ".appx":
		return powershellPath(), []string{
			"-NoProfile", "-NonInteractive", "-Command",
			"Add-AppxPackage -Path " + quotePS(artifactPath),
		}
	default:
		if len(extra) == 0 {
			// Generic silent switch understood by NSIS and Inno installers.
			extra = []string{"/S"}
		}
		return artifactPath, extra
	}
}

// RunArtifact executes a downloaded installer artifact with a bounded
// timeout and captured output.
func (r *Runner) RunArtifact(ctx context.Context, artifactPath, installArgs string) (string, error) {
	name, args := Invocation(artifactPath, installArgs)
	logging.Info("Running installer", "command", name, "args", strings.Join(args, " "))
	return r.run(ctx, func(ctx context.Context) (command.Result, error) {
		return r.cmd.Run(ctx, name, args...)
	})
}

// RunCustom executes an operator-supplied shell command verbatim.
func (r *Runner) RunCustom(ctx context.Context, commandLine string) (string, error) {
	logging.Info("Running custom install command", "command", commandLine)
	return r.run(ctx, func(ctx context.Context) (command.Result, error) {
		return r.cmd.RunShell(ctx, commandLine)
	})
}

func (r *Runner) run(ctx context.Context, invoke func(context.Context) (command.Result, error)) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := invoke(ctx)
	if err == nil {
		return res.Combined(), nil
	}
	if res.ExitCode == msiExitRebootRequired {
		logging.Warn("Installer finished but a reboot is pending")
		return res.Combined(), nil
	}
	return res.Combined(), classify(res, err)
}

func classify(res command.Result, err error) *RunError {
	rerr := &RunError{ExitCode: res.ExitCode, Output: res.Combined(), Err: err}

	if errors.Is(err, command.ErrTimeout) {
		rerr.Reason = ReasonTimeout
		return rerr
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) || errors.Is(err, os.ErrNotExist) {
		rerr.Reason = ReasonSpawn
		if errors.Is(err, os.ErrPermission) {
			rerr.Reason = ReasonElevation
		}
		return rerr
	}
	if errors.Is(err, os.ErrPermission) {
		rerr.Reason = ReasonElevation
		return rerr
	}

	switch res.ExitCode {
	case exitAccessDenied, exitElevationRequired, msiExitBlockedByPolicy:
		rerr.Reason = ReasonElevation
	default:
		rerr.Reason = ReasonProcess
	}
	return rerr
}

func quotePS(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func msiexecPath() string {
	if windir := os.Getenv("WINDIR"); windir != "" {
		return filepath.Join(windir, "system32", "msiexec.exe")
	}
	return "msiexec"
}

func powershellPath() string {
	if windir := os.Getenv("WINDIR"); windir != "" {
		return filepath.Join(windir, "system32", "WindowsPowershell", "v1.0", "powershell.exe")
	}
	return "powershell"
}
