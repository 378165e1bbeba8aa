// Package config handles codexdeck application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/codexdeck/codexdeck/internal/workspace"
)

// BackendConfig describes how to reach the workspace backend.
type BackendConfig struct {
	URL            string `mapstructure:"url" yaml:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CodexConfig holds defaults for the codex tool binary.
type CodexConfig struct {
	DefaultBin string `mapstructure:"default_bin" yaml:"default_bin,omitempty"`
}

// AuditConfig holds the audit store configuration.
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path,omitempty"`
}

// GroupConfig is one declared workspace group.
type GroupConfig struct {
	Name      string `mapstructure:"name" yaml:"name"`
	SortOrder int    `mapstructure:"sort_order" yaml:"sort_order"`
}

// Config represents the complete config.yaml file.
type Config struct {
	Backend          BackendConfig     `mapstructure:"backend" yaml:"backend"`
	Logging          LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Codex            CodexConfig       `mapstructure:"codex" yaml:"codex"`
	Audit            AuditConfig       `mapstructure:"audit" yaml:"audit"`
	Groups           []GroupConfig     `mapstructure:"groups" yaml:"groups"`
	GroupAssignments map[string]string `mapstructure:"group_assignments" yaml:"group_assignments,omitempty"`
}

// GetConfigDir returns the codexdeck configuration directory.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".codexdeck"), nil
}

// DefaultConfigPath returns the default path for config.yaml.
func DefaultConfigPath() string {
	configDir, err := GetConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".codexdeck", "config.yaml")
	}
	return filepath.Join(configDir, "config.yaml")
}

// Load loads configuration from config.yaml, creating a default file when
// none exists.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	v.SetConfigFile(configPath)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			cfg := createDefaultConfig()
			if err := Save(configPath, cfg); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	sanitize(&cfg)
	return &cfg, nil
}

// Save writes the configuration to file, creating the directory as needed.
func Save(configPath string, cfg *Config) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// WorkspaceGroups converts the configured group definitions and
// assignments into the form the workspace manager consumes.
func (c *Config) WorkspaceGroups() ([]workspace.Group, map[string]string) {
	groups := make([]workspace.Group, 0, len(c.Groups))
	for _, g := range c.Groups {
		groups = append(groups, workspace.Group{Name: g.Name, SortOrder: g.SortOrder})
	}

	assignments := make(map[string]string, len(c.GroupAssignments))
	for id, name := range c.GroupAssignments {
		assignments[id] = name
	}
	return groups, assignments
}

// sanitize fills invalid values with defaults so a hand-edited file cannot
// break startup.
func sanitize(cfg *Config) {
	defaults := createDefaultConfig()

	if cfg.Backend.URL == "" {
		cfg.Backend.URL = defaults.Backend.URL
	}
	if cfg.Backend.TimeoutSeconds <= 0 {
		cfg.Backend.TimeoutSeconds = defaults.Backend.TimeoutSeconds
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaults.Logging.Format
	}
	if cfg.Audit.Enabled && cfg.Audit.Path == "" {
		cfg.Audit.Path = defaults.Audit.Path
	}
	if cfg.GroupAssignments == nil {
		cfg.GroupAssignments = make(map[string]string)
	}
}

// createDefaultConfig creates a minimal default config.
func createDefaultConfig() *Config {
	auditPath := ""
	if dir, err := GetConfigDir(); err == nil {
		auditPath = filepath.Join(dir, "audit.db")
	}
	return &Config{
		Backend: BackendConfig{
			URL:            "ws://127.0.0.1:8791/ws",
			TimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Audit: AuditConfig{
			Enabled: true,
			Path:    auditPath,
		},
		Groups:           []GroupConfig{},
		GroupAssignments: map[string]string{},
	}
}

// setDefaults sets default values for config keys.
func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.url", "ws://127.0.0.1:8791/ws")
	v.SetDefault("backend.timeout_seconds", 30)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("audit.enabled", true)
}
