// Package config loads the updatectl JSON configuration file.
//
// Configuration is loaded once at startup: built-in defaults are deep-merged
// with the user's file (user values win, nested objects merge recursively,
// scalars and arrays replace wholesale). A missing file is created from the
// defaults rather than treated as an error.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/harrison/updatectl/internal/filelock"
)

// ManagerConfig holds the per-package-manager settings.
type ManagerConfig struct {
	// Enabled controls whether the orchestrator runs this manager
	Enabled bool `json:"enabled"`

	// Args are extra arguments appended to the manager's update command
	Args string `json:"args"`

	// Timeout is the per-invocation timeout in seconds
	Timeout int `json:"timeout"`
}

// Advanced holds cross-cutting settings.
type Advanced struct {
	// LogRetentionDays is how long run logs are kept before deletion
	LogRetentionDays int `json:"logRetentionDays"`

	// MaxRetries is the number of re-attempts after a failed update
	MaxRetries int `json:"maxRetries"`

	// RetryDelaySeconds is the pause between attempts
	RetryDelaySeconds int `json:"retryDelaySeconds"`
}

// Installer holds settings for the installer component.
type Installer struct {
	// DefaultPackageManagers are installed/discovered when none are named
	DefaultPackageManagers []string `json:"defaultPackageManagers"`

	// AutoAccept skips interactive confirmation prompts
	AutoAccept bool `json:"autoAccept"`

	// ForceReinstall reinstalls managers that are already present
	ForceReinstall bool `json:"forceReinstall"`

	// PreferredInstallMethods maps manager name to install method
	PreferredInstallMethods map[string]string `json:"preferredInstallMethods"`
}

// Metadata describes the config file itself.
type Metadata struct {
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Config represents the full updatectl configuration.
type Config struct {
	Metadata        Metadata                 `json:"_metadata"`
	PackageManagers map[string]ManagerConfig `json:"PackageManagers"`
	Advanced        Advanced                 `json:"Advanced"`
	Installer       Installer                `json:"PackageManagerInstaller"`
}

// DefaultConfig returns a Config with sensible default values for all six
// supported package managers.
func DefaultConfig() *Config {
	return &Config{
		Metadata: Metadata{
			Version:     "1.0",
			Description: "updatectl package manager update configuration",
		},
		PackageManagers: map[string]ManagerConfig{
			"winget": {Enabled: true, Args: "--silent --accept-package-agreements --accept-source-agreements", Timeout: 1800},
			"choco":  {Enabled: true, Args: "-y", Timeout: 1800},
			"scoop":  {Enabled: true, Args: "", Timeout: 900},
			"npm":    {Enabled: true, Args: "-g", Timeout: 600},
			"pip":    {Enabled: true, Args: "", Timeout: 300},
			"conda":  {Enabled: true, Args: "", Timeout: 1200},
		},
		Advanced: Advanced{
			LogRetentionDays:  30,
			MaxRetries:        2,
			RetryDelaySeconds: 5,
		},
		Installer: Installer{
			DefaultPackageManagers: []string{"winget", "choco", "scoop"},
			AutoAccept:             false,
			ForceReinstall:         false,
			PreferredInstallMethods: map[string]string{
				"choco": "winget",
				"scoop": "powershell",
			},
		},
	}
}

// Load reads the configuration file at path and merges it over the defaults.
// A missing file is written out with the default configuration and returned
// without error. A malformed file is an error.
func Load(path string) (*Config, error) {
	defaults := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Write(path, defaults); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var userMap map[string]any
	if err := json.Unmarshal(data, &userMap); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Round-trip the defaults through JSON so both sides merge as plain maps.
	defaultBytes, err := json.Marshal(defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to encode defaults: %w", err)
	}
	var merged map[string]any
	if err := json.Unmarshal(defaultBytes, &merged); err != nil {
		return nil, fmt.Errorf("failed to decode defaults: %w", err)
	}

	deepMerge(merged, userMap)

	mergedBytes, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged config: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(mergedBytes, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode merged config: %w", err)
	}

	return cfg, nil
}

// Write serializes cfg to path atomically, taking a sibling lock so a
// scheduled run creating the default file cannot race an interactive one.
func Write(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	lock := filelock.NewFileLock(path + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	return filelock.AtomicWrite(path, append(data, '\n'))
}

// deepMerge merges src into dst in place. Nested objects merge recursively;
// all other values (scalars, arrays) replace the destination wholesale.
func deepMerge(dst, src map[string]any) {
	for key, srcVal := range src {
		if dstMap, ok := dst[key].(map[string]any); ok {
			if srcMap, ok := srcVal.(map[string]any); ok {
				deepMerge(dstMap, srcMap)
				continue
			}
		}
		dst[key] = srcVal
	}
}

// Validate checks post-merge invariants. Every package-manager section must
// carry a positive timeout, and advanced retry settings must be sane.
func (c *Config) Validate() error {
	for name, mc := range c.PackageManagers {
		if mc.Timeout <= 0 {
			return fmt.Errorf("PackageManagers.%s.timeout must be > 0, got %d", name, mc.Timeout)
		}
	}
	if c.Advanced.LogRetentionDays < 0 {
		return fmt.Errorf("Advanced.logRetentionDays must be >= 0, got %d", c.Advanced.LogRetentionDays)
	}
	if c.Advanced.MaxRetries < 0 {
		return fmt.Errorf("Advanced.maxRetries must be >= 0, got %d", c.Advanced.MaxRetries)
	}
	if c.Advanced.RetryDelaySeconds < 0 {
		return fmt.Errorf("Advanced.retryDelaySeconds must be >= 0, got %d", c.Advanced.RetryDelaySeconds)
	}
	return nil
}

// Manager returns the section for the named package manager. A section
// missing after merge is filled from the defaults; found reports whether the
// section was actually configured.
func (c *Config) Manager(name string) (mc ManagerConfig, found bool) {
	if mc, ok := c.PackageManagers[name]; ok {
		return mc, true
	}
	if mc, ok := DefaultConfig().PackageManagers[name]; ok {
		return mc, false
	}
	return ManagerConfig{}, false
}
