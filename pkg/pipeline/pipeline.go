// pkg/pipeline/pipeline.go - the install pipeline entry points.

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/appgrab/appgrab/pkg/catalog"
	"github.com/appgrab/appgrab/pkg/command"
	"github.com/appgrab/appgrab/pkg/config"
	"github.com/appgrab/appgrab/pkg/download"
	"github.com/appgrab/appgrab/pkg/installer"
	"github.com/appgrab/appgrab/pkg/logging"
	"github.com/appgrab/appgrab/pkg/progress"
	"github.com/appgrab/appgrab/pkg/status"
	"github.com/appgrab/appgrab/pkg/sysinfo"
	"github.com/appgrab/appgrab/pkg/winget"
)

// Result is the synchronous outcome of an install or uninstall request. The
// same information is broadcast as the session's terminal progress event.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BatchResult pairs a program id with its result, preserving input order.
type BatchResult struct {
	ProgramID string `json:"programId"`
	Result    Result `json:"result"`
}

// managerAdapter is the slice of the winget adapter the pipeline consumes.
type managerAdapter interface {
	IsAvailable(ctx context.Context) bool
	Query(ctx context.Context, packageID string) bool
	Install(ctx context.Context, packageID string) (string, error)
	Uninstall(ctx context.Context, packageID string) (string, error)
}

// artifactRunner executes downloaded artifacts and custom commands.
type artifactRunner interface {
	RunArtifact(ctx context.Context, artifactPath, installArgs string) (string, error)
	RunCustom(ctx context.Context, commandLine string) (string, error)
}

// artifactDownloader fetches installer artifacts.
type artifactDownloader interface {
	Download(ctx context.Context, url, destPath string, opts download.Options) error
}

// Pipeline orchestrates install sessions. It is stateless between
// invocations; sessions are created per request and discarded on
// completion. The notifier is injected at construction, never ambient.
type Pipeline struct {
	cfg        *config.Configuration
	notifier   progress.Notifier
	manager    managerAdapter
	runner     artifactRunner
	downloader artifactDownloader
	probers    []status.Prober
}

// New wires a Pipeline with real adapters.
func New(cfg *config.Configuration, notifier progress.Notifier) *Pipeline {
	if notifier == nil {
		notifier = progress.Discard
	}

	cmdRunner := command.NewRunner()

	manager := winget.NewManager(cmdRunner)
	if cfg.InstallerTimeoutMinutes > 0 {
		manager.InstallTimeout = time.Duration(cfg.InstallerTimeoutMinutes) * time.Minute
	}
	if cfg.UninstallTimeoutMinutes > 0 {
		manager.UninstallTimeout = time.Duration(cfg.UninstallTimeoutMinutes) * time.Minute
	}

	artifacts := installer.NewRunner(cmdRunner)
	if cfg.InstallerTimeoutMinutes > 0 {
		artifacts.Timeout = time.Duration(cfg.InstallerTimeoutMinutes) * time.Minute
	}

	client := download.NewClient()
	if cfg.DownloadTimeoutSeconds > 0 {
		client.ConnectTimeout = time.Duration(cfg.DownloadTimeoutSeconds) * time.Second
	}
	if cfg.MaxRedirects > 0 {
		client.MaxRedirects = cfg.MaxRedirects
	}

	return &Pipeline{
		cfg:        cfg,
		notifier:   notifier,
		manager:    manager,
		runner:     artifacts,
		downloader: client,
		probers: []status.Prober{
			status.NewManagerProber(manager),
			status.NewFilesystemProber(),
		},
	}
}

// CheckAvailability reports whether the package manager is usable.
func (p *Pipeline) CheckAvailability(ctx context.Context) bool {
	return p.manager.IsAvailable(ctx)
}

// CheckInstalled answers a point-in-time installed-state query. Probers run
// in order, manager policy before filesystem policy; the first positive
// answer wins. All probes are best-effort and inconclusive evidence reports
// false.
func (p *Pipeline) CheckInstalled(ctx context.Context, program catalog.Program) bool {
	for _, prober := range p.probers {
		if prober.Installed(ctx, program) {
			return true
		}
	}
	return false
}

// SystemInfo returns a best-effort OS identification string. Never fails.
func (p *Pipeline) SystemInfo() string {
	return sysinfo.Describe()
}

// Install runs one install session to a terminal state and returns its
// result. The terminal state is also broadcast as a progress event.
func (p *Pipeline) Install(ctx context.Context, program catalog.Program) Result {
	sess := newSession(program, p.notifier)
	defer sess.cleanup()

	output, err := p.runInstall(ctx, sess, program)
	if err != nil {
		return p.fail(sess, program, output, err)
	}

	sess.transition(PhaseCompleted, program.DisplayName()+" installed successfully")
	return Result{Success: true, Output: output}
}

// InstallBatch processes descriptors strictly sequentially: each session
// reaches a terminal state before the next begins, and a failure never
// short-circuits the rest of the batch. Results preserve input order.
func (p *Pipeline) InstallBatch(ctx context.Context, programs []catalog.Program) []BatchResult {
	results := make([]BatchResult, 0, len(programs))
	for _, program := range programs {
		results = append(results, BatchResult{
			ProgramID: program.ID,
			Result:    p.Install(ctx, program),
		})
	}
	return results
}

// Uninstall removes a program through the package manager.
func (p *Pipeline) Uninstall(ctx context.Context, program catalog.Program) Result {
	sess := newUninstallSession(program, p.notifier)

	if program.WingetID == "" {
		err := &Error{
			Kind:    KindConfiguration,
			Message: program.DisplayName() + " has no uninstallable source configured",
		}
		return p.fail(sess, program, "", err)
	}
	if !p.manager.IsAvailable(ctx) {
		return p.fail(sess, program, "", newError(KindManagerUnavailable, program.DisplayName(), nil))
	}

	sess.transition(PhaseInstalling, "Uninstalling "+program.DisplayName()+"...")
	output, err := p.manager.Uninstall(ctx, program.WingetID)
	if err != nil {
		return p.fail(sess, program, output, err)
	}

	sess.transition(PhaseCompleted, program.DisplayName()+" removed successfully")
	return Result{Success: true, Output: output}
}

func (p *Pipeline) runInstall(ctx context.Context, sess *session, program catalog.Program) (string, error) {
	strategy, resolveErr := Resolve(program)
	if resolveErr != nil {
		return "", resolveErr
	}

	switch s := strategy.(type) {
	case CustomCommandStrategy:
		sess.transition(PhaseInstalling, "Installing "+program.DisplayName()+"...")
		return p.runner.RunCustom(ctx, s.Command)

	case PackageManagerStrategy:
		if !p.manager.IsAvailable(ctx) {
			return "", newError(KindManagerUnavailable, program.DisplayName(), nil)
		}
		sess.transition(PhaseInstalling, "Installing "+program.DisplayName()+"...")
		return p.manager.Install(ctx, s.PackageID)

	case DirectDownloadStrategy:
		sess.transition(PhaseDownloading, "Downloading "+program.DisplayName()+"...")

		dest, err := p.artifactPath(program, s)
		if err != nil {
			return "", err
		}
		sess.artifactPath = dest

		err = p.downloader.Download(ctx, s.URL, dest, download.Options{
			InsecureTLS: s.InsecureTLS,
			OnProgress:  sess.downloadProgress,
		})
		if err != nil {
			return "", err
		}

		if s.SHA256 != "" && !download.Verify(dest, s.SHA256) {
			return "", &Error{
				Kind:    KindProcess,
				Message: "the downloaded file for " + program.DisplayName() + " failed integrity verification",
			}
		}

		sess.transition(PhaseInstalling, "Installing "+program.DisplayName()+"...")
		return p.runner.RunArtifact(ctx, dest, s.Args)

	default:
		return "", newError(KindConfiguration, program.DisplayName(), nil)
	}
}

// artifactPath builds a collision-resistant temp path for a session's
// artifact: descriptor id plus timestamp plus the inferred extension.
func (p *Pipeline) artifactPath(program catalog.Program, s DirectDownloadStrategy) (string, error) {
	if err := os.MkdirAll(p.cfg.CachePath, 0755); err != nil {
		return "", newError(KindProcess, program.DisplayName(), err)
	}
	ext := installer.InferExtension(s.URL, s.Args)
	name := fmt.Sprintf("%s-%d%s", program.ID, time.Now().UnixNano(), ext)
	return filepath.Join(p.cfg.CachePath, name), nil
}

// fail maps an error to its boundary category, logs the raw cause, emits
// the terminal event, and builds the caller's result.
func (p *Pipeline) fail(sess *session, program catalog.Program, output string, err error) Result {
	boundary := classifyError(program.DisplayName(), err)
	logging.Error("Install session failed",
		"program", program.ID, "kind", boundary.Kind.String(), "cause", boundary.Unwrap())

	sess.cleanup()
	sess.transition(PhaseFailed, boundary.Message)
	return Result{Success: false, Output: output, Error: boundary.Message}
}
