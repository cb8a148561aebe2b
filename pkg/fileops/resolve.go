package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver validates and canonicalizes paths against a fixed root directory.
// It is pure validation: no Resolver method mutates the filesystem.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver confined to root. The root must already
// exist; it is canonicalized once (absolute, symlinks resolved) so that
// every later containment check compares like with like.
func NewResolver(root string) (*Resolver, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("root directory cannot be empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve root %q: %w", root, err)
	}

	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot canonicalize root %q: %w", root, err)
	}

	return &Resolver{root: canon}, nil
}

// Root returns the canonical root directory the resolver is confined to.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve canonicalizes requested (resolving ".", "..", and symlinks) and
// returns the absolute path, or a *PathEscapeError if the result lies
// outside the root. Relative paths are interpreted relative to the root.
// The target itself does not have to exist yet; symlinks in any existing
// ancestor are still resolved so a link cannot smuggle a path outside.
func (r *Resolver) Resolve(requested string) (string, error) {
	if strings.TrimSpace(requested) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	path := requested
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	path = filepath.Clean(path)

	canon, err := canonicalizeExisting(path)
	if err != nil {
		return "", fmt.Errorf("cannot canonicalize %q: %w", requested, err)
	}

	if canon != r.root && !strings.HasPrefix(canon, r.root+string(os.PathSeparator)) {
		return "", &PathEscapeError{Root: r.root, Path: requested}
	}

	return canon, nil
}

// canonicalizeExisting resolves symlinks on the deepest existing ancestor of
// path and rejoins the not-yet-existing remainder. filepath.EvalSymlinks
// alone fails for paths that are about to be created.
func canonicalizeExisting(path string) (string, error) {
	existing := path
	var pending []string

	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		} else if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		pending = append([]string{filepath.Base(existing)}, pending...)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}

	return filepath.Join(append([]string{resolved}, pending...)...), nil
}
