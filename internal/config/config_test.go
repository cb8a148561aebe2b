package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ServersDir == "" {
		t.Error("default ServersDir is empty")
	}
	if cfg.IndexPath == "" {
		t.Error("default IndexPath is empty")
	}
	if !filepath.IsAbs(cfg.ServersDir) {
		t.Errorf("default ServersDir %q is not absolute", cfg.ServersDir)
	}
	if cfg.ClientConfigPath != "" {
		t.Error("client config registration should be disabled by default")
	}
	if cfg.RequireGitTracking {
		t.Error("git tracking guard should be disabled by default")
	}
}

func TestSaveAndLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	original := Config{
		ServersDir:         filepath.Join(dir, "servers"),
		IndexPath:          filepath.Join(dir, "servers.json"),
		ClientConfigPath:   filepath.Join(dir, "claude_desktop_config.json"),
		RequireGitTracking: true,
		Version:            "1.0",
	}

	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if loaded.ServersDir != original.ServersDir {
		t.Errorf("ServersDir = %q, want %q", loaded.ServersDir, original.ServersDir)
	}
	if loaded.IndexPath != original.IndexPath {
		t.Errorf("IndexPath = %q, want %q", loaded.IndexPath, original.IndexPath)
	}
	if loaded.ClientConfigPath != original.ClientConfigPath {
		t.Errorf("ClientConfigPath = %q, want %q", loaded.ClientConfigPath, original.ClientConfigPath)
	}
	if !loaded.RequireGitTracking {
		t.Error("RequireGitTracking not round-tripped")
	}
	if loaded.InitTime == 0 {
		t.Error("InitTime not set on first save")
	}
}

func TestSaveTo_RestrictivePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestLoadFrom_FillsMissingFieldsWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	// An old config that predates the index_path field.
	if err := os.WriteFile(path, []byte("version: \"1.0\"\n"), 0o600); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.ServersDir == "" || loaded.IndexPath == "" {
		t.Errorf("missing fields not defaulted: %+v", loaded)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("servers_dir: [unclosed"), 0o600); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error for invalid YAML")
	}
}

func TestEnsureServersDir(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{ServersDir: filepath.Join(dir, "nested", "servers")}

	if err := cfg.EnsureServersDir(); err != nil {
		t.Fatalf("EnsureServersDir failed: %v", err)
	}

	info, err := os.Stat(cfg.ServersDir)
	if err != nil {
		t.Fatalf("servers dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("servers dir is not a directory")
	}
}
