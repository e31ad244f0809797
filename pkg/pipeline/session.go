// pkg/pipeline/session.go - per-invocation install session state machine.

package pipeline

import (
	"os"

	"github.com/appgrab/appgrab/pkg/catalog"
	"github.com/appgrab/appgrab/pkg/logging"
	"github.com/appgrab/appgrab/pkg/progress"
)

// Phase tracks where a session is in its lifecycle. Phases only move
// forward; Completed and Failed are terminal.
type Phase int

const (
	PhasePending Phase = iota
	PhaseDownloading
	PhaseInstalling
	PhaseCompleted
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseDownloading:
		return "downloading"
	case PhaseInstalling:
		return "installing"
	case PhaseCompleted:
		return "completed"
	default:
		return "failed"
	}
}

// session is the ephemeral state of one install or uninstall invocation. It
// exclusively owns its temp artifact and removes it on every exit path.
type session struct {
	program      catalog.Program
	notifier     progress.Notifier
	phase        Phase
	artifactPath string
	uninstall    bool
}

func newSession(program catalog.Program, notifier progress.Notifier) *session {
	return &session{program: program, notifier: notifier, phase: PhasePending}
}

func newUninstallSession(program catalog.Program, notifier progress.Notifier) *session {
	return &session{program: program, notifier: notifier, phase: PhasePending, uninstall: true}
}

// transition advances the session phase and emits exactly one progress
// event for the entry. Attempts to move backward or leave a terminal phase
// are ignored and logged; they indicate a pipeline bug, not a user error.
func (s *session) transition(phase Phase, message string) {
	if phase <= s.phase || s.terminal() {
		logging.Warn("Ignoring invalid session transition",
			"program", s.program.ID, "from", s.phase.String(), "to", phase.String())
		return
	}
	s.phase = phase
	s.notifier.Notify(progress.Event{
		ProgramID: s.program.ID,
		Status:    s.status(phase),
		Message:   message,
		Percent:   -1,
	})
}

// downloadProgress emits an incremental percentage event. Only valid while
// the session is in the Downloading phase.
func (s *session) downloadProgress(percent int) {
	if s.phase != PhaseDownloading {
		return
	}
	s.notifier.Notify(progress.Event{
		ProgramID: s.program.ID,
		Status:    progress.StatusDownloading,
		Message:   "Downloading " + s.program.DisplayName() + "...",
		Percent:   percent,
	})
}

func (s *session) terminal() bool {
	return s.phase == PhaseCompleted || s.phase == PhaseFailed
}

func (s *session) status(phase Phase) progress.Status {
	switch phase {
	case PhaseDownloading:
		return progress.StatusDownloading
	case PhaseInstalling:
		if s.uninstall {
			return progress.StatusUninstalling
		}
		return progress.StatusInstalling
	case PhaseCompleted:
		return progress.StatusCompleted
	default:
		return progress.StatusError
	}
}

// cleanup removes the session's temp artifact if one exists. Deletion
// failures are logged, never re-raised.
func (s *session) cleanup() {
	if s.artifactPath == "" {
		return
	}
	if err := os.Remove(s.artifactPath); err != nil && !os.IsNotExist(err) {
		logging.Warn("Failed to remove temp artifact", "program", s.program.ID, "path", s.artifactPath, "error", err)
	}
	s.artifactPath = ""
}
