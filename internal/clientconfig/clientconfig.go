// Package clientconfig registers managed servers in a Claude Desktop
// style client configuration file so scaffolded projects are immediately
// launchable by the client. Entries are keyed by a snake_case form of the
// server name and launch the project with uv.
package clientconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mcpforge/internal/logging"
	"mcpforge/pkg/fileops"
)

// ServerEntry is one launchable server in the client config.
type ServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// clientFile is the subset of the client config this package owns. Unknown
// top-level keys are preserved across rewrites.
type clientFile struct {
	MCPServers map[string]ServerEntry `json:"mcpServers"`
	extra      map[string]json.RawMessage
}

// Registrar reads and rewrites the client configuration file. All writes
// go through the atomic writer so a crash cannot corrupt the client's
// config.
type Registrar struct {
	path   string
	writer *fileops.Writer
	logger *logging.AppLogger
}

// NewRegistrar creates a Registrar for the config file at path. An empty
// path disables registration entirely.
func NewRegistrar(path string, writer *fileops.Writer, logger *logging.AppLogger) *Registrar {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Registrar{path: path, writer: writer, logger: logger}
}

// Enabled reports whether a config path is set.
func (r *Registrar) Enabled() bool {
	return r.path != ""
}

// EntryName derives the config key for a server name.
func EntryName(serverName string) string {
	return strings.ToLower(strings.ReplaceAll(serverName, " ", "_"))
}

// Register adds or replaces the entry launching the server at location.
func (r *Registrar) Register(serverName, location string) error {
	if !r.Enabled() {
		return nil
	}

	cfg, err := r.load()
	if err != nil {
		return err
	}

	key := EntryName(serverName)
	cfg.MCPServers[key] = ServerEntry{
		Command: "uv",
		Args:    []string{"run", "--directory", location, "server.py"},
	}

	if err := r.save(cfg); err != nil {
		return err
	}
	r.logger.Info("Registered server with client", "server", serverName, "entry", key)
	return nil
}

// Unregister removes any entry whose directory argument matches location.
// The entry key is not trusted because the user may have renamed it.
func (r *Registrar) Unregister(location string) error {
	if !r.Enabled() {
		return nil
	}

	cfg, err := r.load()
	if err != nil {
		return err
	}

	removed := false
	for key, entry := range cfg.MCPServers {
		if len(entry.Args) >= 3 && entry.Args[len(entry.Args)-2] == location {
			delete(cfg.MCPServers, key)
			r.logger.Info("Unregistered server from client", "entry", key)
			removed = true
			break
		}
	}
	if !removed {
		r.logger.Debug("No client entry found for location", "location", location)
		return nil
	}

	return r.save(cfg)
}

// load parses the config file. A missing file yields an empty config; a
// corrupt file is logged and replaced rather than blocking the operation.
func (r *Registrar) load() (*clientFile, error) {
	cfg := &clientFile{
		MCPServers: make(map[string]ServerEntry),
		extra:      make(map[string]json.RawMessage),
	}

	content, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		r.logger.Warn("Client config not found, a new one will be created", "path", r.path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read client config %s: %w", r.path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		r.logger.Error("Client config is corrupt, starting fresh", "path", r.path, "error", err)
		return cfg, nil
	}

	for key, value := range raw {
		if key == "mcpServers" {
			if err := json.Unmarshal(value, &cfg.MCPServers); err != nil {
				r.logger.Error("Client config mcpServers block is corrupt, resetting it", "error", err)
				cfg.MCPServers = make(map[string]ServerEntry)
			}
			continue
		}
		cfg.extra[key] = value
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]ServerEntry)
	}
	return cfg, nil
}

// save atomically rewrites the config, preserving foreign top-level keys.
func (r *Registrar) save(cfg *clientFile) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("cannot create client config directory: %w", err)
	}

	out := make(map[string]any, len(cfg.extra)+1)
	for key, value := range cfg.extra {
		out[key] = value
	}
	out["mcpServers"] = cfg.MCPServers

	content, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode client config: %w", err)
	}
	if _, err := r.writer.WriteFull(r.path, content); err != nil {
		return fmt.Errorf("cannot write client config: %w", err)
	}
	return nil
}
