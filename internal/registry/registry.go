// Package registry tracks managed server projects: their identity, on-disk
// location, lifecycle state, and metadata. It is the single owner of server
// record existence; the filesystem stays the durable source of truth for
// file content, with the store acting as a secondary index reconciled on
// load.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mcpforge/internal/logging"
	"mcpforge/internal/validation"

	"github.com/google/uuid"
)

// Scaffolder materializes a project directory for a template kind. It
// reports every file it wrote so the registry can roll back exactly what was
// created when materialization fails partway.
type Scaffolder interface {
	Materialize(path, templateKind, name string) (written []string, err error)
}

// Registry is the ordered collection of server records. All mutating
// operations serialize on a per-id lock; List takes a point-in-time copy
// under a brief lock and never blocks behind a running scaffold or removal.
type Registry struct {
	mu      sync.Mutex
	records map[string]*ServerRecord
	order   []string
	idLocks map[string]*sync.Mutex

	store      *Store
	scaffolder Scaffolder
	serversDir string
	logger     *logging.AppLogger
}

// New loads the registry from store and returns it ready for use.
func New(store *Store, scaffolder Scaffolder, serversDir string, logger *logging.AppLogger) (*Registry, error) {
	r := &Registry{
		records:    make(map[string]*ServerRecord),
		idLocks:    make(map[string]*sync.Mutex),
		store:      store,
		scaffolder: scaffolder,
		serversDir: serversDir,
		logger:     logger,
	}

	loaded, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load registry: %w", err)
	}
	for i := range loaded {
		rec := loaded[i]
		r.records[rec.Name] = &rec
		r.order = append(r.order, rec.Name)
	}

	logger.Debug("Registry loaded", "servers", len(r.order))
	return r, nil
}

// idLock returns the mutex serializing mutations of the record named name.
func (r *Registry) idLock(name string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.idLocks[name]
	if !ok {
		l = &sync.Mutex{}
		r.idLocks[name] = l
	}
	return l
}

// Create registers a new server record in Defined state. Nothing is
// materialized on disk yet. The name must not collide with any live record
// or retained tombstone, and the derived location must not already hold
// non-empty content.
func (r *Registry) Create(name, description, templateKind string) (ServerRecord, error) {
	if err := validation.ValidateServerName(name); err != nil {
		return ServerRecord{}, fmt.Errorf("invalid server name: %w", err)
	}

	l := r.idLock(name)
	l.Lock()
	defer l.Unlock()

	location := filepath.Join(r.serversDir, name)

	if entries, err := os.ReadDir(location); err == nil && len(entries) > 0 {
		return ServerRecord{}, fmt.Errorf("location %s already exists and is not empty", location)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.records[name]; ok {
		if existing.State.Live() {
			return ServerRecord{}, fmt.Errorf("server %q: %w", name, ErrDuplicateID)
		}
		// Tombstones keep the id reserved until purged.
		return ServerRecord{}, fmt.Errorf("server %q is removed but retained, purge it first: %w", name, ErrDuplicateID)
	}
	for _, other := range r.records {
		if other.State.Live() && other.Location == location {
			return ServerRecord{}, fmt.Errorf("location %s already owned by server %q: %w", location, other.Name, ErrDuplicateID)
		}
	}

	rec := &ServerRecord{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  description,
		Location:     location,
		State:        StateDefined,
		TemplateKind: templateKind,
		CreatedAt:    time.Now().UTC(),
	}
	r.records[name] = rec
	r.order = append(r.order, name)

	if err := r.persistLocked(); err != nil {
		// Undo the in-memory insert so a failed create leaves no trace.
		delete(r.records, name)
		r.order = r.order[:len(r.order)-1]
		return ServerRecord{}, err
	}

	r.logger.Info("Server created", "server", name, "template", templateKind)
	return rec.clone(), nil
}

// Scaffold transitions a Defined record to Scaffolded by materializing its
// project directory. A partial failure rolls back every file the scaffolder
// wrote and leaves the record in Defined state, so a retry is safe.
func (r *Registry) Scaffold(name string) (ServerRecord, error) {
	l := r.idLock(name)
	l.Lock()
	defer l.Unlock()

	rec, err := r.lookupLive(name)
	if err != nil {
		return ServerRecord{}, err
	}
	if rec.State == StateScaffolded {
		return ServerRecord{}, fmt.Errorf("server %q: %w", name, ErrAlreadyScaffolded)
	}

	written, err := r.scaffolder.Materialize(rec.Location, rec.TemplateKind, rec.Name)
	if err != nil {
		r.rollbackScaffold(rec.Location, written)
		return ServerRecord{}, fmt.Errorf("scaffold of %q failed, rolled back: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec.State = StateScaffolded
	if err := r.persistLocked(); err != nil {
		// Undo the transition so a retry is not rejected as already
		// scaffolded; the materialized files stay for it to reuse.
		rec.State = StateDefined
		return ServerRecord{}, err
	}

	r.logger.LogStateTransition(name, string(StateDefined), string(StateScaffolded))
	return rec.clone(), nil
}

// rollbackScaffold deletes exactly the files a failed materialization
// reported, then the project directory itself if that left it empty. It
// never touches content the scaffolder did not create.
func (r *Registry) rollbackScaffold(location string, written []string) {
	for i := len(written) - 1; i >= 0; i-- {
		if err := os.Remove(written[i]); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("Rollback could not remove file", "file", written[i], "error", err)
		}
	}
	if err := os.Remove(location); err != nil && !os.IsNotExist(err) {
		r.logger.Warn("Rollback could not remove project directory", "location", location, "error", err)
	}
	r.logger.Info("Scaffold rolled back", "location", location, "files", len(written))
}

// Remove deletes the record's directory tree and marks the record Removed.
// If deletion fails the state is left untouched so the caller can retry;
// the operation is idempotent on success, and a second call reports
// ErrNotFound.
func (r *Registry) Remove(name string) error {
	l := r.idLock(name)
	l.Lock()
	defer l.Unlock()

	rec, err := r.lookupLive(name)
	if err != nil {
		return err
	}

	if _, err := os.Stat(rec.Location); err == nil {
		if err := os.RemoveAll(rec.Location); err != nil {
			return fmt.Errorf("cannot remove server directory %s: %w", rec.Location, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("cannot inspect server directory %s: %w", rec.Location, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous := rec.State
	rec.State = StateRemoved
	if err := r.persistLocked(); err != nil {
		rec.State = previous
		return err
	}

	r.logger.LogStateTransition(name, string(previous), string(StateRemoved))
	r.logger.Info("Server removed", "server", name)
	return nil
}

// Purge deletes a Removed tombstone from the registry, freeing its id for
// reuse.
func (r *Registry) Purge(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[name]
	if !ok {
		return fmt.Errorf("server %q: %w", name, ErrNotFound)
	}
	if rec.State != StateRemoved {
		return fmt.Errorf("server %q: %w", name, ErrNotRemoved)
	}

	delete(r.records, name)
	slot := -1
	for i, n := range r.order {
		if n == name {
			slot = i
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if err := r.persistLocked(); err != nil {
		r.records[name] = rec
		if slot >= 0 {
			r.order = append(r.order[:slot], append([]string{name}, r.order[slot:]...)...)
		}
		return err
	}

	r.logger.Info("Tombstone purged", "server", name)
	return nil
}

// List returns a point-in-time snapshot of all records, tombstones
// included, in insertion order.
func (r *Registry) List() []ServerRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ServerRecord, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.records[name].clone())
	}
	return out
}

// Get returns the live record named name.
func (r *Registry) Get(name string) (ServerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[name]
	if !ok || !rec.State.Live() {
		return ServerRecord{}, fmt.Errorf("server %q: %w", name, ErrNotFound)
	}
	return rec.clone(), nil
}

// RecordTool appends tool metadata to a scaffolded server's record.
func (r *Registry) RecordTool(name string, tool ToolInfo) (ServerRecord, error) {
	l := r.idLock(name)
	l.Lock()
	defer l.Unlock()

	rec, err := r.lookupLive(name)
	if err != nil {
		return ServerRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec.Tools = append(rec.Tools, tool)
	if err := r.persistLocked(); err != nil {
		rec.Tools = rec.Tools[:len(rec.Tools)-1]
		return ServerRecord{}, err
	}

	return rec.clone(), nil
}

// lookupLive fetches the live record for name under the table lock.
func (r *Registry) lookupLive(name string) (*ServerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[name]
	if !ok || !rec.State.Live() {
		return nil, fmt.Errorf("server %q: %w", name, ErrNotFound)
	}
	return rec, nil
}

// persistLocked saves the current snapshot. Callers must hold r.mu.
func (r *Registry) persistLocked() error {
	snapshot := make([]ServerRecord, 0, len(r.order))
	for _, name := range r.order {
		snapshot = append(snapshot, r.records[name].clone())
	}
	return r.store.Save(snapshot)
}
