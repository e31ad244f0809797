// pkg/catalog/catalog.go - program descriptors and catalog loading.

package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/appgrab/appgrab/pkg/logging"
)

// Program describes one installable unit. The id is the stable correlation
// key used across progress events and installed-state queries.
type Program struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Install sources. At least one of winget_id+use_winget, download_url,
	// or custom_command must be populated for the program to be installable.
	WingetID      string `yaml:"winget_id,omitempty"`
	UseWinget     bool   `yaml:"use_winget,omitempty"`
	DownloadURL   string `yaml:"download_url,omitempty"`
	InstallArgs   string `yaml:"install_args,omitempty"`
	CustomCommand string `yaml:"custom_command,omitempty"`

	// InsecureTLS relaxes certificate validation for this program's
	// download endpoint only. Off unless the catalog author opts in.
	InsecureTLS bool `yaml:"insecure_tls,omitempty"`

	// SHA256, when set, is verified against the downloaded artifact
	// before it runs.
	SHA256 string `yaml:"sha256,omitempty"`

	// Filesystem probe hints: candidate paths relative to the well-known
	// base directories, checked in order.
	CheckPaths []string `yaml:"check_paths,omitempty"`

	// MinVersion, when set, requires at least this version to count the
	// program as installed.
	MinVersion string `yaml:"min_version,omitempty"`
}

// DisplayName returns the human-readable name, falling back to the id.
func (p Program) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Category groups related programs for display.
type Category struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Programs []Program `yaml:"programs"`
}

// Catalog is the full curated program listing. Immutable at runtime.
type Catalog struct {
	Categories []Category `yaml:"categories"`
}

// Load reads and parses a catalog YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse parses catalog YAML content.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]bool)
	for _, category := range cat.Categories {
		for _, program := range category.Programs {
			if program.ID == "" {
				return nil, fmt.Errorf("catalog category %s contains a program without an id", category.ID)
			}
			if seen[program.ID] {
				logging.Warn("Duplicate program id in catalog, later entry ignored by lookup", "id", program.ID)
			}
			seen[program.ID] = true
		}
	}
	return &cat, nil
}

// All returns every program across all categories in catalog order.
func (c *Catalog) All() []Program {
	var programs []Program
	for _, category := range c.Categories {
		programs = append(programs, category.Programs...)
	}
	return programs
}

// Find locates a program by id, or by name as a fallback. Matching is
// case-insensitive.
func (c *Catalog) Find(idOrName string) (Program, bool) {
	for _, program := range c.All() {
		if strings.EqualFold(program.ID, idOrName) {
			return program, true
		}
	}
	for _, program := range c.All() {
		if strings.EqualFold(program.Name, idOrName) {
			return program, true
		}
	}
	return Program{}, false
}
