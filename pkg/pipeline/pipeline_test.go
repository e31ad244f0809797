// pkg/pipeline/pipeline_test.go

package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appgrab/appgrab/pkg/catalog"
	"github.com/appgrab/appgrab/pkg/config"
	"github.com/appgrab/appgrab/pkg/download"
	"github.com/appgrab/appgrab/pkg/progress"
	"github.com/appgrab/appgrab/pkg/status"
)

type fakeManager struct {
	available     bool
	installedIDs  map[string]bool
	installErrs   map[string]error
	installCalls  []string
	uninstallErr  error
	uninstallIDs  []string
	queriedIDs    []string
	availChecked  int
}

func (f *fakeManager) IsAvailable(_ context.Context) bool {
	f.availChecked++
	return f.available
}

func (f *fakeManager) Query(_ context.Context, packageID string) bool {
	f.queriedIDs = append(f.queriedIDs, packageID)
	return f.installedIDs[packageID]
}

func (f *fakeManager) Install(_ context.Context, packageID string) (string, error) {
	f.installCalls = append(f.installCalls, packageID)
	if err := f.installErrs[packageID]; err != nil {
		return "", err
	}
	return "installed " + packageID, nil
}

func (f *fakeManager) Uninstall(_ context.Context, packageID string) (string, error) {
	f.uninstallIDs = append(f.uninstallIDs, packageID)
	return "removed " + packageID, f.uninstallErr
}

type fakeRunner struct {
	artifactErr   error
	artifactPaths []string
	artifactArgs  []string
	customErr     error
	customCmds    []string
}

func (f *fakeRunner) RunArtifact(_ context.Context, artifactPath, installArgs string) (string, error) {
	f.artifactPaths = append(f.artifactPaths, artifactPath)
	f.artifactArgs = append(f.artifactArgs, installArgs)
	return "artifact output", f.artifactErr
}

func (f *fakeRunner) RunCustom(_ context.Context, commandLine string) (string, error) {
	f.customCmds = append(f.customCmds, commandLine)
	return "custom output", f.customErr
}

type fakeDownloader struct {
	content  []byte
	percents []int
	err      error
	urls     []string
}

func (f *fakeDownloader) Download(_ context.Context, url, destPath string, opts download.Options) error {
	f.urls = append(f.urls, url)
	if f.content != nil {
		if err := os.WriteFile(destPath, f.content, 0644); err != nil {
			return err
		}
	}
	if opts.OnProgress != nil {
		for _, p := range f.percents {
			opts.OnProgress(p)
		}
	}
	return f.err
}

type fakeProber struct {
	result bool
	calls  int
}

func (f *fakeProber) Installed(_ context.Context, _ catalog.Program) bool {
	f.calls++
	return f.result
}

func testPipeline(t *testing.T) (*Pipeline, *fakeManager, *fakeRunner, *fakeDownloader, *progress.Recorder) {
	t.Helper()
	manager := &fakeManager{available: true, installedIDs: map[string]bool{}, installErrs: map[string]error{}}
	runner := &fakeRunner{}
	downloader := &fakeDownloader{}
	recorder := progress.NewRecorder()
	p := &Pipeline{
		cfg:        &config.Configuration{CachePath: t.TempDir()},
		notifier:   recorder,
		manager:    manager,
		runner:     runner,
		downloader: downloader,
		probers: []status.Prober{
			status.NewManagerProber(manager),
			&fakeProber{},
		},
	}
	return p, manager, runner, downloader, recorder
}

func statuses(events []progress.Event) []progress.Status {
	out := make([]progress.Status, 0, len(events))
	for _, e := range events {
		out = append(out, e.Status)
	}
	return out
}

func TestInstallViaManager(t *testing.T) {
	t.Parallel()
	p, manager, _, downloader, recorder := testPipeline(t)

	result := p.Install(context.Background(), catalog.Program{
		ID: "vscode", Name: "VS Code", UseWinget: true, WingetID: "Microsoft.VisualStudioCode",
	})

	require.True(t, result.Success)
	assert.Equal(t, []string{"Microsoft.VisualStudioCode"}, manager.installCalls)
	assert.Empty(t, downloader.urls)
	assert.Equal(t,
		[]progress.Status{progress.StatusInstalling, progress.StatusCompleted},
		statuses(recorder.Events()))
}

func TestInstallManagerUnavailable(t *testing.T) {
	t.Parallel()
	p, manager, runner, downloader, recorder := testPipeline(t)
	manager.available = false

	result := p.Install(context.Background(), catalog.Program{
		ID: "vscode", Name: "VS Code", UseWinget: true, WingetID: "Microsoft.VisualStudioCode",
	})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "winget is not available")
	assert.Empty(t, manager.installCalls)
	assert.Empty(t, downloader.urls)
	assert.Empty(t, runner.artifactPaths)

	events := recorder.Events()
	require.Len(t, events, 1)
	assert.Equal(t, progress.StatusError, events[0].Status)
}

func TestInstallDirectDownload(t *testing.T) {
	t.Parallel()
	p, _, runner, downloader, recorder := testPipeline(t)
	downloader.content = []byte("installer bytes")
	downloader.percents = []int{50, 100}

	result := p.Install(context.Background(), catalog.Program{
		ID: "notepadpp", Name: "Notepad++",
		DownloadURL: "https://example.com/npp.exe", InstallArgs: "/S",
	})

	require.True(t, result.Success)
	assert.Equal(t, []string{"https://example.com/npp.exe"}, downloader.urls)
	require.Len(t, runner.artifactPaths, 1)
	assert.Equal(t, []string{"/S"}, runner.artifactArgs)

	// The temp artifact is gone once the session is done.
	entries, err := os.ReadDir(p.cfg.CachePath)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Equal(t, []progress.Status{
		progress.StatusDownloading,
		progress.StatusDownloading, // 50%
		progress.StatusDownloading, // 100%
		progress.StatusInstalling,
		progress.StatusCompleted,
	}, statuses(recorder.Events()))

	events := recorder.Events()
	assert.Equal(t, 50, events[1].Percent)
	assert.Equal(t, 100, events[2].Percent)
	assert.Equal(t, -1, events[0].Percent)
}

func TestInstallDownloadFailureCleansArtifact(t *testing.T) {
	t.Parallel()
	p, _, runner, downloader, recorder := testPipeline(t)
	downloader.content = []byte("partial")
	downloader.err = &download.Error{Reason: download.ReasonBadStatus, Status: 404}

	result := p.Install(context.Background(), catalog.Program{
		ID: "notepadpp", Name: "Notepad++", DownloadURL: "https://example.com/npp.exe",
	})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "network error")
	assert.Empty(t, runner.artifactPaths)

	entries, err := os.ReadDir(p.cfg.CachePath)
	require.NoError(t, err)
	assert.Empty(t, entries)

	events := recorder.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, progress.StatusError, events[len(events)-1].Status)
}

func TestInstallChecksumMismatch(t *testing.T) {
	t.Parallel()
	p, _, runner, downloader, _ := testPipeline(t)
	downloader.content = []byte("tampered bytes")

	result := p.Install(context.Background(), catalog.Program{
		ID: "notepadpp", Name: "Notepad++",
		DownloadURL: "https://example.com/npp.exe",
		SHA256:      "0000000000000000000000000000000000000000000000000000000000000000",
	})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "integrity")
	assert.Empty(t, runner.artifactPaths)

	entries, err := os.ReadDir(p.cfg.CachePath)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInstallChecksumMatch(t *testing.T) {
	t.Parallel()
	p, _, runner, downloader, _ := testPipeline(t)
	content := []byte("genuine installer")
	sum := sha256.Sum256(content)
	downloader.content = content

	result := p.Install(context.Background(), catalog.Program{
		ID: "notepadpp", Name: "Notepad++",
		DownloadURL: "https://example.com/npp.exe",
		SHA256:      hex.EncodeToString(sum[:]),
	})

	require.True(t, result.Success)
	assert.Len(t, runner.artifactPaths, 1)
}

func TestInstallCustomCommand(t *testing.T) {
	t.Parallel()
	p, manager, runner, downloader, _ := testPipeline(t)

	result := p.Install(context.Background(), catalog.Program{
		ID: "tool", CustomCommand: "choco install tool -y",
		UseWinget: true, WingetID: "Vendor.Tool", DownloadURL: "https://example.com/t.exe",
	})

	require.True(t, result.Success)
	assert.Equal(t, []string{"choco install tool -y"}, runner.customCmds)
	assert.Empty(t, manager.installCalls)
	assert.Empty(t, downloader.urls)
}

func TestInstallNoSourceConfigured(t *testing.T) {
	t.Parallel()
	p, _, _, _, recorder := testPipeline(t)

	result := p.Install(context.Background(), catalog.Program{ID: "mystery", Name: "Mystery"})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "no installable source")

	events := recorder.Events()
	require.Len(t, events, 1)
	assert.Equal(t, progress.StatusError, events[0].Status)
}

func TestInstallBatchPreservesOrderAndContinues(t *testing.T) {
	t.Parallel()
	p, manager, _, _, _ := testPipeline(t)
	manager.installErrs["Vendor.B"] = errors.New("boom")

	programs := []catalog.Program{
		{ID: "a", UseWinget: true, WingetID: "Vendor.A"},
		{ID: "b", UseWinget: true, WingetID: "Vendor.B"},
		{ID: "c", UseWinget: true, WingetID: "Vendor.C"},
	}
	results := p.InstallBatch(context.Background(), programs)

	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].ProgramID)
	assert.Equal(t, "b", results[1].ProgramID)
	assert.Equal(t, "c", results[2].ProgramID)
	assert.True(t, results[0].Result.Success)
	assert.False(t, results[1].Result.Success)
	assert.True(t, results[2].Result.Success)

	// The failure in the middle never stops later installs.
	assert.Equal(t, []string{"Vendor.A", "Vendor.B", "Vendor.C"}, manager.installCalls)
}

func TestUninstallWithoutManagedSource(t *testing.T) {
	t.Parallel()
	p, manager, _, _, _ := testPipeline(t)

	result := p.Uninstall(context.Background(), catalog.Program{ID: "local", Name: "Local Tool"})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "no uninstallable source")
	assert.Empty(t, manager.uninstallIDs)
}

func TestUninstallViaManager(t *testing.T) {
	t.Parallel()
	p, manager, _, _, recorder := testPipeline(t)

	result := p.Uninstall(context.Background(), catalog.Program{
		ID: "vscode", Name: "VS Code", WingetID: "Microsoft.VisualStudioCode",
	})

	require.True(t, result.Success)
	assert.Equal(t, []string{"Microsoft.VisualStudioCode"}, manager.uninstallIDs)
	assert.Equal(t,
		[]progress.Status{progress.StatusUninstalling, progress.StatusCompleted},
		statuses(recorder.Events()))
}

func TestCheckInstalledPrefersManager(t *testing.T) {
	t.Parallel()
	p, manager, _, _, _ := testPipeline(t)
	manager.installedIDs["Vendor.Tool"] = true
	prober := p.probers[1].(*fakeProber)

	installed := p.CheckInstalled(context.Background(), catalog.Program{ID: "tool", WingetID: "Vendor.Tool"})

	assert.True(t, installed)
	assert.Zero(t, prober.calls)
}

func TestCheckInstalledFallsBackToFilesystem(t *testing.T) {
	t.Parallel()
	p, _, _, _, _ := testPipeline(t)
	prober := p.probers[1].(*fakeProber)
	prober.result = true

	installed := p.CheckInstalled(context.Background(), catalog.Program{ID: "tool", WingetID: "Vendor.Tool"})

	assert.True(t, installed)
	assert.Equal(t, 1, prober.calls)
}

func TestSessionTransitionsAreMonotonic(t *testing.T) {
	t.Parallel()
	recorder := progress.NewRecorder()
	sess := newSession(catalog.Program{ID: "tool"}, recorder)

	sess.transition(PhaseInstalling, "installing")
	sess.transition(PhaseDownloading, "going backward") // ignored
	sess.transition(PhaseCompleted, "done")
	sess.transition(PhaseFailed, "after terminal") // ignored

	assert.Equal(t,
		[]progress.Status{progress.StatusInstalling, progress.StatusCompleted},
		statuses(recorder.Events()))
}

func TestSessionDownloadProgressOnlyWhileDownloading(t *testing.T) {
	t.Parallel()
	recorder := progress.NewRecorder()
	sess := newSession(catalog.Program{ID: "tool"}, recorder)

	sess.downloadProgress(10) // pending, dropped
	sess.transition(PhaseDownloading, "downloading")
	sess.downloadProgress(42)
	sess.transition(PhaseInstalling, "installing")
	sess.downloadProgress(99) // installing, dropped

	events := recorder.Events()
	require.Len(t, events, 3)
	assert.Equal(t, 42, events[1].Percent)
}
