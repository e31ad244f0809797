// pkg/winget/winget.go - adapter around the Windows Package Manager CLI.

package winget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/appgrab/appgrab/pkg/command"
	"github.com/appgrab/appgrab/pkg/logging"
)

const (
	availabilityTimeout = 5 * time.Second
	queryTimeout        = 10 * time.Second

	// DefaultInstallTimeout is generous on purpose; winget installs block
	// on the vendor installer, which can legitimately run for minutes.
	DefaultInstallTimeout   = 10 * time.Minute
	DefaultUninstallTimeout = 5 * time.Minute
)

// winget CLI return codes (APPINSTALLER_CLI_ERROR_* HRESULTs as int32).
const (
	exitNoApplicationsFound = -1978335212 // 0x8A150014
	exitRequiresAdmin       = -1978335159 // 0x8A150049

	// Generic Windows codes installers surface when elevation is missing.
	exitAccessDenied      = 5
	exitElevationRequired = 740
)

// Reason categorizes a manager failure at the point of detection.
type Reason int

const (
	ReasonProcess Reason = iota
	ReasonNotFound
	ReasonElevation
	ReasonTimeout
)

// ManagerError is a structured winget failure.
type ManagerError struct {
	Reason   Reason
	ExitCode int
	Output   string
	Err      error
}

func (e *ManagerError) Error() string {
	switch e.Reason {
	case ReasonNotFound:
		return fmt.Sprintf("package not found (exit code %d)", e.ExitCode)
	case ReasonElevation:
		return fmt.Sprintf("elevation required (exit code %d)", e.ExitCode)
	case ReasonTimeout:
		return "winget timed out"
	default:
		return fmt.Sprintf("winget exited with code %d", e.ExitCode)
	}
}

func (e *ManagerError) Unwrap() error { return e.Err }

// Manager wraps queries and commands against winget.
type Manager struct {
	runner           command.Runner
	InstallTimeout   time.Duration
	UninstallTimeout time.Duration
}

// NewManager creates a Manager backed by the given runner.
func NewManager(runner command.Runner) *Manager {
	return &Manager{
		runner:           runner,
		InstallTimeout:   DefaultInstallTimeout,
		UninstallTimeout: DefaultUninstallTimeout,
	}
}

// IsAvailable reports whether the winget CLI responds to a version probe.
// Unavailability is a boolean fact, never an error.
func (m *Manager) IsAvailable(ctx context.Context) bool {
	if !m.runner.LookPath("winget") {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()

	_, err := m.runner.Run(ctx, "winget", "--version")
	if err != nil {
		logging.Debug("winget version probe failed", "error", err)
		return false
	}
	return true
}

// Query reports whether a package id appears in the installed-package list.
// Any execution error is treated as "not installed"; absence of evidence
// must never block an install attempt.
func (m *Manager) Query(ctx context.Context, packageID string) bool {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := m.runner.Run(ctx, "winget", listArgs(packageID)...)
	if err != nil {
		logging.Debug("winget list failed, treating as not installed", "package", packageID, "error", err)
		return false
	}
	return strings.Contains(res.Stdout, packageID)
}

// Install runs the silent install invocation for a package id.
func (m *Manager) Install(ctx context.Context, packageID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.InstallTimeout)
	defer cancel()

	res, err := m.runner.Run(ctx, "winget", InstallArgs(packageID)...)
	if err != nil {
		return res.Combined(), classify(res, err)
	}
	logging.Info("winget install succeeded", "package", packageID)
	return res.Combined(), nil
}

// Uninstall runs the silent uninstall invocation for a package id.
func (m *Manager) Uninstall(ctx context.Context, packageID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.UninstallTimeout)
	defer cancel()

	res, err := m.runner.Run(ctx, "winget", UninstallArgs(packageID)...)
	if err != nil {
		return res.Combined(), classify(res, err)
	}
	logging.Info("winget uninstall succeeded", "package", packageID)
	return res.Combined(), nil
}

func classify(res command.Result, err error) *ManagerError {
	merr := &ManagerError{ExitCode: res.ExitCode, Output: res.Combined(), Err: err}
	if errors.Is(err, command.ErrTimeout) {
		merr.Reason = ReasonTimeout
		return merr
	}
	switch res.ExitCode {
	case exitNoApplicationsFound:
		merr.Reason = ReasonNotFound
	case exitRequiresAdmin, exitAccessDenied, exitElevationRequired:
		merr.Reason = ReasonElevation
	default:
		merr.Reason = ReasonProcess
	}
	return merr
}

func listArgs(packageID string) []string {
	return []string{"list", "--id", packageID, "--exact", "--accept-source-agreements"}
}

// InstallArgs builds the silent accept-all-agreements install invocation.
func InstallArgs(packageID string) []string {
	return []string{
		"install", "--id", packageID, "--exact", "--silent",
		"--accept-package-agreements", "--accept-source-agreements",
	}
}

// UninstallArgs builds the silent uninstall invocation.
func UninstallArgs(packageID string) []string {
	return []string{
		"uninstall", "--id", packageID, "--exact", "--silent",
		"--accept-source-agreements",
	}
}
