package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"objscope/internal/object"
)

// Config holds all objscope configuration.
type Config struct {
	Name string `yaml:"name"`

	// Host runtime the inspector emulates
	Runtime RuntimeConfig `yaml:"runtime"`

	// Inspection limits
	Limits InspectLimits `yaml:"limits"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Metrics
	Metrics MetricsConfig `yaml:"metrics"`
}

// RuntimeConfig selects the host version and the Go packages the native
// bridge may expose as modules.
type RuntimeConfig struct {
	Version   string   `yaml:"version"`
	GoModules []string `yaml:"go_modules"`
}

// MetricsConfig toggles prometheus collection.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultGoModules mirrors the safe stdlib subset allowed for interpreted
// Go code: no filesystem, process or network access.
var DefaultGoModules = []string{
	"strings", "strconv", "fmt", "math", "regexp", "encoding/json",
	"encoding/base64", "time", "sort", "bytes", "path", "path/filepath",
	"unicode", "errors",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "objscope",
		Runtime: RuntimeConfig{
			Version:   object.DefaultVersion.String(),
			GoModules: append([]string(nil), DefaultGoModules...),
		},
		Limits: InspectLimits{
			MaxConcurrentTargets: 4,
			SlowOperationMs:      250,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OBJSCOPE_HOST_VERSION"); v != "" {
		c.Runtime.Version = v
	}
	if v := os.Getenv("OBJSCOPE_DEBUG"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = on
		}
	}
	if v := os.Getenv("OBJSCOPE_GO_MODULES"); v != "" {
		var mods []string
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				mods = append(mods, m)
			}
		}
		c.Runtime.GoModules = mods
	}
}

// HostVersion parses the configured host version.
func (c *Config) HostVersion() (object.Version, error) {
	return object.ParseVersion(c.Runtime.Version)
}

// NewRuntime builds a host runtime from the configuration.
func (c *Config) NewRuntime() (*object.Runtime, error) {
	v, err := c.HostVersion()
	if err != nil {
		return nil, err
	}
	rt := object.New(v)
	rt.AllowGo(c.Runtime.GoModules...)
	return rt, nil
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := c.HostVersion(); err != nil {
		return fmt.Errorf("invalid runtime.version: %w", err)
	}

	known := make(map[string]bool)
	for _, p := range object.GoPackages() {
		known[p] = true
	}
	for _, m := range c.Runtime.GoModules {
		if !known[m] {
			return fmt.Errorf("runtime.go_modules: unknown Go package %q", m)
		}
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	return c.ValidateLimits()
}

// FindWorkspaceRoot walks up from the working directory looking for a
// .objscope directory, then a go.mod. Falls back to the working directory.
func FindWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	originalDir := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".objscope")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return originalDir, nil
}

// DefaultConfigPath returns the config location inside a workspace.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(workspace, ".objscope", "config.yaml")
}
