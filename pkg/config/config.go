// pkg/config/config.go - configuration settings for appgrab.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Configuration holds the configurable options for appgrab in YAML format.
type Configuration struct {
	CachePath               string `yaml:"CachePath"`
	CatalogPath             string `yaml:"CatalogPath"`
	LogPath                 string `yaml:"LogPath"`
	LogLevel                string `yaml:"LogLevel"`
	Debug                   bool   `yaml:"Debug"`
	Verbose                 bool   `yaml:"Verbose"`
	InstallerTimeoutMinutes int    `yaml:"InstallerTimeoutMinutes"`
	UninstallTimeoutMinutes int    `yaml:"UninstallTimeoutMinutes"`
	DownloadTimeoutSeconds  int    `yaml:"DownloadTimeoutSeconds"`
	MaxRedirects            int    `yaml:"MaxRedirects"`
}

// DefaultConfigPath returns the default location of the configuration file.
func DefaultConfigPath() string {
	return filepath.Join(programData(), "AppGrab", "Config.yaml")
}

func programData() string {
	if pd := os.Getenv("ProgramData"); pd != "" {
		return pd
	}
	return `C:\ProgramData`
}

// GetDefaultConfig provides default configuration values.
func GetDefaultConfig() *Configuration {
	base := filepath.Join(programData(), "AppGrab")
	return &Configuration{
		CachePath:               filepath.Join(base, "Cache"),
		CatalogPath:             filepath.Join(base, "catalog.yaml"),
		LogPath:                 filepath.Join(base, "logs"),
		LogLevel:                "INFO",
		Debug:                   false,
		Verbose:                 false,
		InstallerTimeoutMinutes: 10,
		UninstallTimeoutMinutes: 5,
		DownloadTimeoutSeconds:  60,
		MaxRedirects:            10,
	}
}

// LoadConfig loads the configuration from the default YAML file location,
// falling back to defaults when the file does not exist.
func LoadConfig() (*Configuration, error) {
	return LoadConfigFrom(DefaultConfigPath())
}

// LoadConfigFrom loads the configuration from an explicit path. Missing
// fields keep their default values.
func LoadConfigFrom(path string) (*Configuration, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	if err := os.MkdirAll(config.CachePath, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", config.CachePath, err)
	}

	return config, nil
}

// SaveConfig saves the current configuration to a YAML file.
func SaveConfig(config *Configuration, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to serialize configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
