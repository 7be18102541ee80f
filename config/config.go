// Package config provides configuration loading and management for speccanvas.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete speccanvas configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Models   ModelsConfig   `yaml:"models"`
	NATS     NATSConfig     `yaml:"nats"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	// Addr is the listen address for the HTTP API
	Addr string `yaml:"addr"`
}

// ModelsConfig configures the model registry
type ModelsConfig struct {
	// RegistryPath points to a JSON model registry file (empty = built-in defaults)
	RegistryPath string `yaml:"registry_path"`
}

// NATSConfig configures the event publisher
type NATSConfig struct {
	// URL is the NATS server URL (empty = events disabled)
	URL string `yaml:"url"`
}

// AnalysisConfig configures automatic scoring
type AnalysisConfig struct {
	// Settle is how long edits must stop before a pass fires
	Settle time.Duration `yaml:"settle"`
	// Timeout bounds one scoring pass including retries
	Timeout time.Duration `yaml:"timeout"`
}

// SnapshotConfig configures the snapshot file used by watch mode
type SnapshotConfig struct {
	// Path is the JSON snapshot file to load and watch
	Path string `yaml:"path"`
	// Debounce is how long to wait for more writes before reloading
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8480",
		},
		Models: ModelsConfig{
			RegistryPath: "",
		},
		NATS: NATSConfig{
			URL: "",
		},
		Analysis: AnalysisConfig{
			Settle:  2 * time.Second,
			Timeout: 2 * time.Minute,
		},
		Snapshot: SnapshotConfig{
			Path:     "",
			Debounce: 250 * time.Millisecond,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Analysis.Settle <= 0 {
		return fmt.Errorf("analysis.settle must be positive")
	}
	if c.Analysis.Timeout <= 0 {
		return fmt.Errorf("analysis.timeout must be positive")
	}
	if c.Snapshot.Debounce <= 0 {
		return fmt.Errorf("snapshot.debounce must be positive")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Models.RegistryPath != "" {
		c.Models.RegistryPath = other.Models.RegistryPath
	}
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.Analysis.Settle != 0 {
		c.Analysis.Settle = other.Analysis.Settle
	}
	if other.Analysis.Timeout != 0 {
		c.Analysis.Timeout = other.Analysis.Timeout
	}
	if other.Snapshot.Path != "" {
		c.Snapshot.Path = other.Snapshot.Path
	}
	if other.Snapshot.Debounce != 0 {
		c.Snapshot.Debounce = other.Snapshot.Debounce
	}
}
