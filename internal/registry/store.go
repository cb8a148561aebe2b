package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"mcpforge/internal/logging"
	"mcpforge/pkg/fileops"
)

// Store persists the registry as a JSON index file. Saves go through the
// atomic writer so a crash can never leave a torn index; loads reconcile
// every entry against actual filesystem presence.
type Store struct {
	path   string
	writer *fileops.Writer
	logger *logging.AppLogger
}

// indexFile is the on-disk shape of the registry index. The array preserves
// insertion order.
type indexFile struct {
	Servers []ServerRecord `json:"servers"`
}

// NewStore creates a Store persisting to path.
func NewStore(path string, writer *fileops.Writer, logger *logging.AppLogger) *Store {
	return &Store{path: path, writer: writer, logger: logger}
}

// Load reads the index and reconciles it against the filesystem. A missing
// index file yields an empty registry. A corrupt index is logged and treated
// as empty rather than blocking startup; the filesystem remains the source
// of truth for file content.
//
// Self-healing: a Scaffolded entry whose directory no longer exists is
// returned as Removed and logged as a warning-level inconsistency.
func (s *Store) Load() ([]ServerRecord, error) {
	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Debug("No registry index found, starting empty", "path", s.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read registry index %s: %w", s.path, err)
	}

	var index indexFile
	if err := json.Unmarshal(content, &index); err != nil {
		s.logger.Error("Registry index is corrupt, starting empty", "path", s.path, "error", err)
		return nil, nil
	}

	for i, rec := range index.Servers {
		if rec.State != StateScaffolded {
			continue
		}
		if _, err := os.Stat(rec.Location); os.IsNotExist(err) {
			s.logger.Warn("Scaffolded server directory missing, marking removed",
				"server", rec.Name,
				"location", rec.Location,
			)
			index.Servers[i].State = StateRemoved
		}
	}

	return index.Servers, nil
}

// Save atomically writes the index. Record order is preserved.
func (s *Store) Save(records []ServerRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("cannot create index directory: %w", err)
	}

	if records == nil {
		records = []ServerRecord{}
	}
	content, err := json.MarshalIndent(indexFile{Servers: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode registry index: %w", err)
	}

	if _, err := s.writer.WriteFull(s.path, content); err != nil {
		return fmt.Errorf("cannot write registry index: %w", err)
	}

	return nil
}
