package fileops

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// MutationResult reports the outcome of a successful write or edit so the
// caller can verify what landed on disk.
type MutationResult struct {
	Path    string `json:"path"`
	Length  int    `json:"length"`
	SHA256  string `json:"sha256"`
	Applied []Edit `json:"applied,omitempty"`
}

// Writer performs crash-safe file mutations. Writes to the same path are
// serialized by a per-path lock, so two concurrent mutations can never
// observe or clobber each other's in-flight temporary file. A single Writer
// is safe for concurrent use.
type Writer struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewWriter creates a Writer with an empty lock table.
func NewWriter() *Writer {
	return &Writer{locks: make(map[string]*sync.Mutex)}
}

// pathLock returns the mutex serializing mutations of path, creating it on
// first use. Paths are expected to be canonical (see Resolver) so aliases of
// the same file share a lock.
func (w *Writer) pathLock(path string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()

	l, ok := w.locks[path]
	if !ok {
		l = &sync.Mutex{}
		w.locks[path] = l
	}
	return l
}

// WriteFull atomically replaces the content of path with content. The data
// is written to a temporary file in the target directory, synced to disk,
// and renamed over the target in one indivisible step. On any failure before
// the rename the original file is untouched and the temporary file is
// removed.
func (w *Writer) WriteFull(path string, content []byte) (MutationResult, error) {
	l := w.pathLock(path)
	l.Lock()
	defer l.Unlock()

	if err := writeFileAtomic(path, content, modeFor(path)); err != nil {
		return MutationResult{}, err
	}

	return result(path, content, nil), nil
}

// ApplyEdits reads the current content of path, validates and plans the
// requested range edits, applies them, and atomically writes the result
// back. The read and the write happen under the same per-path lock, so no
// concurrent mutation can slip between them. On any failure the file keeps
// its prior content.
func (w *Writer) ApplyEdits(path string, edits []Edit) (MutationResult, error) {
	l := w.pathLock(path)
	l.Lock()
	defer l.Unlock()

	original, err := os.ReadFile(path)
	if err != nil {
		return MutationResult{}, fmt.Errorf("cannot read %s: %w", path, err)
	}

	plan, err := Plan(original, edits)
	if err != nil {
		return MutationResult{}, err
	}

	content := ApplyPlan(original, plan)

	if err := writeFileAtomic(path, content, modeFor(path)); err != nil {
		return MutationResult{}, err
	}

	return result(path, content, plan), nil
}

// renameFile is swapped out in tests to fail the commit step.
var renameFile = os.Rename

// writeFileAtomic is the temp-write-and-rename sequence shared by all
// mutations. The rename is the commit point; everything before it is
// invisible to readers of path.
func writeFileAtomic(path string, content []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create temporary file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	var committed bool
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("cannot write temporary file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("cannot sync temporary file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot close temporary file: %w", err)
	}

	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("cannot set permissions on temporary file: %w", err)
	}

	if err := renameFile(tmpPath, path); err != nil {
		return fmt.Errorf("cannot rename temporary file over %s: %w", path, err)
	}

	committed = true
	return nil
}

// modeFor preserves the permissions of an existing target; new files get
// 0644.
func modeFor(path string) fs.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}

func result(path string, content []byte, applied []Edit) MutationResult {
	sum := sha256.Sum256(content)
	return MutationResult{
		Path:    path,
		Length:  len(content),
		SHA256:  hex.EncodeToString(sum[:]),
		Applied: applied,
	}
}
