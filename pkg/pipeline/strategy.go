// pkg/pipeline/strategy.go - resolves a program descriptor to an install strategy.

package pipeline

import (
	"github.com/appgrab/appgrab/pkg/catalog"
)

// Strategy is the closed set of resolved install methods. The resolver
// constructs exactly one variant per descriptor; the rest of the pipeline
// switches on the variant instead of re-inspecting descriptor fields.
type Strategy interface {
	strategy()
}

// PackageManagerStrategy installs through winget.
type PackageManagerStrategy struct {
	PackageID string
}

// DirectDownloadStrategy downloads an installer artifact and runs it.
type DirectDownloadStrategy struct {
	URL         string
	Args        string
	InsecureTLS bool
	SHA256      string
}

// CustomCommandStrategy runs an operator-supplied shell command verbatim.
type CustomCommandStrategy struct {
	Command string
}

func (PackageManagerStrategy) strategy() {}
func (DirectDownloadStrategy) strategy() {}
func (CustomCommandStrategy) strategy()  {}

// Resolve picks the install strategy for a descriptor. The order is a
// deliberate precedence: a custom command is explicit operator intent and
// always overrides the automated strategies.
func Resolve(program catalog.Program) (Strategy, *Error) {
	switch {
	case program.CustomCommand != "":
		return CustomCommandStrategy{Command: program.CustomCommand}, nil
	case program.UseWinget && program.WingetID != "":
		return PackageManagerStrategy{PackageID: program.WingetID}, nil
	case program.DownloadURL != "":
		return DirectDownloadStrategy{
			URL:         program.DownloadURL,
			Args:        program.InstallArgs,
			InsecureTLS: program.InsecureTLS,
			SHA256:      program.SHA256,
		}, nil
	default:
		return nil, newError(KindConfiguration, program.DisplayName(), nil)
	}
}
