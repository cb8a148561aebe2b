package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mcpforge/internal/logging"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const AppName = "mcpforge" // application name used for config and data directories

// Config holds user configuration for mcpforge.
type Config struct {
	// ServersDir is the directory under which every managed server project lives.
	ServersDir string `yaml:"servers_dir"`
	// IndexPath is the registry index file tracking server records.
	IndexPath string `yaml:"index_path"`
	// TemplatesDir holds user-supplied project templates. Custom templates
	// shadow built-in kinds of the same name.
	TemplatesDir string `yaml:"templates_dir"`
	// ClientConfigPath, when set, is a Claude Desktop configuration file that
	// created servers are registered in. Empty disables registration.
	ClientConfigPath string `yaml:"client_config_path,omitempty"`
	// RequireGitTracking rejects writes to existing files that are not
	// tracked by git when the target project is a git repository.
	RequireGitTracking bool  `yaml:"require_git_tracking"`
	Version            string `yaml:"version"`   // Track config version
	InitTime           int64  `yaml:"init_time"` // Unix timestamp of first setup
}

// ConfigPath returns the standard config file path for the current platform.
func ConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, AppName)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config path", "path", configPath)
	return configPath, nil
}

// Load loads the config from the standard location. A missing config file is
// not an error: mcpforge is usable out of the box, so the defaults are
// returned instead.
func Load() (*Config, error) {
	configPath, exists := FindConfigFile()
	logging.Debug("Loading config from", "path", configPath)
	if !exists {
		cfg := DefaultConfig()
		return &cfg, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads config from a specific path.
func LoadFrom(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Fill anything the file leaves unset so older configs keep working.
	defaults := DefaultConfig()
	if cfg.ServersDir == "" {
		cfg.ServersDir = defaults.ServersDir
	}
	if cfg.IndexPath == "" {
		cfg.IndexPath = defaults.IndexPath
	}
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = defaults.TemplatesDir
	}

	return &cfg, nil
}

// FindConfigFile returns the path to an existing config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	dataDir := filepath.Join(xdg.DataHome, AppName)

	return Config{
		ServersDir:   filepath.Join(dataDir, "servers"),
		IndexPath:    filepath.Join(dataDir, "servers.json"),
		TemplatesDir: filepath.Join(dataDir, "templates"),
		Version:      "1.0",
		InitTime:     0, // Will be set during first save
	}
}

// Save writes the config to the standard location.
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	// Set init time if this is the first save
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600) for security
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// EnsureServersDir creates the servers directory if it does not exist and
// verifies it is writable.
func (c *Config) EnsureServersDir() error {
	if err := os.MkdirAll(c.ServersDir, 0o755); err != nil {
		return fmt.Errorf("failed to create servers directory: %w", err)
	}

	testFile := filepath.Join(c.ServersDir, ".mcpforge-write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return fmt.Errorf("servers directory is not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		// The directory is usable either way.
		logging.Warn("could not remove write test file", "error", err)
	}

	return nil
}
