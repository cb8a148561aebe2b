// Package gitguard enforces the write policy for existing files inside
// managed projects: when tracking enforcement is on, an existing file may
// only be overwritten if the surrounding git repository tracks it. New
// files are always writable, and projects outside any repository are
// rejected so edits never happen without version control backing.
package gitguard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/format/index"

	"mcpforge/internal/logging"
)

// Guard checks git tracking before destructive writes. A zero require
// flag turns every check into a no-op.
type Guard struct {
	require bool
	logger  *logging.AppLogger
}

// NewGuard creates a Guard. require controls whether checks are enforced.
func NewGuard(require bool, logger *logging.AppLogger) *Guard {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Guard{require: require, logger: logger}
}

// EnsureWritable reports whether path may be overwritten. Creating a file
// that does not exist yet is always allowed.
func (g *Guard) EnsureWritable(path string) error {
	if !g.require {
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("cannot inspect %s: %w", path, err)
	}

	tracked, err := IsTracked(path)
	if err != nil {
		return err
	}
	if !tracked {
		return fmt.Errorf("refusing to overwrite %s: file exists but is not tracked by git, commit it first", path)
	}
	return nil
}

// IsTracked reports whether the repository containing path tracks it.
// It returns an error if path is not inside a git repository.
func IsTracked(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("cannot resolve %s: %w", path, err)
	}

	repo, err := git.PlainOpenWithOptions(filepath.Dir(abs), &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return false, fmt.Errorf("%s is not inside a git repository", path)
	}
	if err != nil {
		return false, fmt.Errorf("failed to open repository for %s: %w", path, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get working tree: %w", err)
	}

	rel, err := filepath.Rel(worktree.Filesystem.Root(), abs)
	if err != nil {
		return false, fmt.Errorf("cannot relativize %s: %w", path, err)
	}

	// The index is the authority on tracking. A status lookup cannot tell
	// a clean tracked file from an ignored one, since neither has a
	// status entry.
	idx, err := repo.Storer.Index()
	if err != nil {
		return false, fmt.Errorf("failed to read repository index: %w", err)
	}

	if _, err := idx.Entry(filepath.ToSlash(rel)); err != nil {
		if errors.Is(err, index.ErrEntryNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up %s in the index: %w", rel, err)
	}
	return true, nil
}
