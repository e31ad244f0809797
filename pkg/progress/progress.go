// pkg/progress/progress.go - one-directional install progress events.

package progress

import (
	"fmt"
	"sync"
)

// Status identifies the phase a progress event reports.
type Status string

const (
	StatusDownloading  Status = "downloading"
	StatusInstalling   Status = "installing"
	StatusUninstalling Status = "uninstalling"
	StatusCompleted    Status = "completed"
	StatusError        Status = "error"
)

// Event is a fire-and-forget notification pushed to the UI collaborator.
// Percent is meaningful only for downloading events and is -1 otherwise.
type Event struct {
	ProgramID string `json:"programId"`
	Status    Status `json:"status"`
	Message   string `json:"message"`
	Percent   int    `json:"percent,omitempty"`
}

// Notifier receives progress events. Implementations must be safe for
// concurrent emission; the pipeline never waits for acknowledgment.
type Notifier interface {
	Notify(event Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

// Notify implements Notifier.
func (f NotifierFunc) Notify(event Event) { f(event) }

// Discard is a Notifier that drops all events.
var Discard Notifier = NotifierFunc(func(Event) {})

// ConsoleNotifier prints events to stdout. Used by the CLI driver.
type ConsoleNotifier struct {
	mu sync.Mutex
}

// NewConsoleNotifier creates a console notifier.
func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

// Notify implements Notifier.
func (n *ConsoleNotifier) Notify(event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if event.Status == StatusDownloading && event.Percent >= 0 {
		fmt.Printf("[%s] %s %3d%% %s\n", event.ProgramID, event.Status, event.Percent, event.Message)
		return
	}
	fmt.Printf("[%s] %s %s\n", event.ProgramID, event.Status, event.Message)
}

// Recorder collects events in memory. Intended for tests and for callers
// that poll rather than subscribe.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify implements Notifier.
func (r *Recorder) Notify(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
