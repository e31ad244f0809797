// pkg/status/status.go - best-effort installed-state probing.

package status

import (
	"context"
	"os"
	"path/filepath"

	version "github.com/hashicorp/go-version"

	"github.com/appgrab/appgrab/pkg/catalog"
	"github.com/appgrab/appgrab/pkg/logging"
)

// Prober answers point-in-time installed-state queries. Implementations
// return a boolean only; an inconclusive probe reports false rather than
// erroring, so the caller is never blocked from attempting an install.
type Prober interface {
	Installed(ctx context.Context, program catalog.Program) bool
}

// managerQuerier is the slice of the winget adapter the manager policy needs.
type managerQuerier interface {
	Query(ctx context.Context, packageID string) bool
}

// ManagerProber resolves installed state through the package manager's
// installed-package list.
type ManagerProber struct {
	manager managerQuerier
}

// NewManagerProber creates a manager-backed prober.
func NewManagerProber(manager managerQuerier) *ManagerProber {
	return &ManagerProber{manager: manager}
}

// Installed implements Prober.
func (p *ManagerProber) Installed(ctx context.Context, program catalog.Program) bool {
	if program.WingetID == "" {
		return false
	}
	return p.manager.Query(ctx, program.WingetID)
}

// FilesystemProber checks candidate relative paths under well-known base
// directories, plus the Windows uninstall registry. This probe is explicitly
// best-effort: stale leftover directories can false-positive and
// non-standard install locations can false-negative.
type FilesystemProber struct {
	Bases []string
}

// NewFilesystemProber creates a prober over the default base directories.
func NewFilesystemProber() *FilesystemProber {
	return &FilesystemProber{Bases: DefaultBases()}
}

// DefaultBases returns the well-known install roots: global program
// directories, per-user local data, and the user home.
func DefaultBases() []string {
	var bases []string
	for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)", "ProgramData", "LOCALAPPDATA"} {
		if dir := os.Getenv(env); dir != "" {
			bases = append(bases, dir)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		bases = append(bases, home)
	}
	return bases
}

// Installed implements Prober. First matching candidate wins; when the
// program declares a minimum version and the candidate's version metadata is
// readable, versions older than the minimum do not count.
func (p *FilesystemProber) Installed(_ context.Context, program catalog.Program) bool {
	if name, ver, ok := registryInstalledVersion(program.DisplayName()); ok {
		if satisfiesMinVersion(ver, program.MinVersion) {
			logging.Debug("Registry probe matched", "program", program.ID, "entry", name, "version", ver)
			return true
		}
	}

	for _, candidate := range program.CheckPaths {
		for _, base := range p.Bases {
			full := filepath.Join(base, filepath.FromSlash(candidate))
			if _, err := os.Stat(full); err != nil {
				continue
			}
			if program.MinVersion != "" {
				if ver := fileVersion(full); ver != "" && !satisfiesMinVersion(ver, program.MinVersion) {
					logging.Debug("Probe path exists but version too old", "program", program.ID, "path", full, "version", ver)
					continue
				}
			}
			logging.Debug("Filesystem probe matched", "program", program.ID, "path", full)
			return true
		}
	}
	return false
}

// satisfiesMinVersion reports whether have >= want. Unparseable versions are
// treated as satisfying; a best-effort probe must not turn parse noise into
// "not installed is wrong" churn.
func satisfiesMinVersion(have, want string) bool {
	if want == "" || have == "" {
		return true
	}
	vHave, errHave := version.NewVersion(have)
	vWant, errWant := version.NewVersion(want)
	if errHave != nil || errWant != nil {
		logging.Debug("Version parse error during probe", "have", have, "want", want)
		return true
	}
	return !vHave.LessThan(vWant)
}
