// pkg/pipeline/errors.go - the install pipeline's error taxonomy.

package pipeline

import (
	"errors"
	"fmt"
	"os"

	"github.com/appgrab/appgrab/pkg/download"
	"github.com/appgrab/appgrab/pkg/installer"
	"github.com/appgrab/appgrab/pkg/winget"
)

// Kind is the closed set of user-facing error categories. Every error that
// reaches a session boundary is mapped to exactly one Kind; raw low-level
// error text is logged internally, never surfaced.
type Kind int

const (
	KindConfiguration Kind = iota
	KindManagerUnavailable
	KindNetwork
	KindPermission
	KindTimeout
	KindProcess
)

// String returns the category name.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindManagerUnavailable:
		return "manager-unavailable"
	case KindNetwork:
		return "network"
	case KindPermission:
		return "permission"
	case KindTimeout:
		return "timeout"
	default:
		return "process"
	}
}

// Error is the boundary error returned to callers and embedded in terminal
// progress events. Its message is user-legible; the wrapped error carries
// the raw cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, programName string, cause error) *Error {
	return &Error{Kind: kind, Message: userMessage(kind, programName), Err: cause}
}

func userMessage(kind Kind, programName string) string {
	switch kind {
	case KindConfiguration:
		return fmt.Sprintf("%s has no installable source configured", programName)
	case KindManagerUnavailable:
		return fmt.Sprintf("cannot install %s: winget is not available; install \"App Installer\" from the Microsoft Store", programName)
	case KindNetwork:
		return fmt.Sprintf("network error while fetching %s; check your internet connection and try again", programName)
	case KindPermission:
		return fmt.Sprintf("administrator privileges are required to install %s; re-run elevated", programName)
	case KindTimeout:
		return fmt.Sprintf("installing %s took too long and was aborted", programName)
	default:
		return fmt.Sprintf("the installer for %s reported an error", programName)
	}
}

// classifyError maps structured component errors onto the taxonomy. Each
// component raises its own typed error at the point of detection; this is a
// type switch, never text sniffing.
func classifyError(programName string, err error) *Error {
	var boundary *Error
	if errors.As(err, &boundary) {
		return boundary
	}

	var dlErr *download.Error
	if errors.As(err, &dlErr) {
		switch dlErr.Reason {
		case download.ReasonTimeout:
			return newError(KindTimeout, programName, err)
		case download.ReasonWrite:
			if errors.Is(dlErr.Err, os.ErrPermission) {
				return newError(KindPermission, programName, err)
			}
			return newError(KindProcess, programName, err)
		default:
			// Bad status, redirect-resolution, and connection failures
			// all surface as the connectivity category.
			return newError(KindNetwork, programName, err)
		}
	}

	var mgrErr *winget.ManagerError
	if errors.As(err, &mgrErr) {
		switch mgrErr.Reason {
		case winget.ReasonTimeout:
			return newError(KindTimeout, programName, err)
		case winget.ReasonElevation:
			return newError(KindPermission, programName, err)
		case winget.ReasonNotFound:
			return &Error{
				Kind:    KindConfiguration,
				Message: fmt.Sprintf("%s refers to a package id winget does not know", programName),
				Err:     err,
			}
		default:
			return newError(KindProcess, programName, err)
		}
	}

	var runErr *installer.RunError
	if errors.As(err, &runErr) {
		switch runErr.Reason {
		case installer.ReasonTimeout:
			return newError(KindTimeout, programName, err)
		case installer.ReasonElevation:
			return newError(KindPermission, programName, err)
		case installer.ReasonSpawn:
			return &Error{
				Kind:    KindProcess,
				Message: fmt.Sprintf("the installer for %s could not be started", programName),
				Err:     err,
			}
		default:
			return newError(KindProcess, programName, err)
		}
	}

	return newError(KindProcess, programName, err)
}
