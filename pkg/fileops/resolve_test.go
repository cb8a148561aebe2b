package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func createSymlink(t *testing.T, oldname, newname string) {
	t.Helper()
	if err := os.Symlink(oldname, newname); err != nil {
		if runtime.GOOS == "windows" {
			t.Skipf("symlink creation failed on Windows: %v", err)
		}
		t.Fatalf("failed to create symlink: %v", err)
	}
}

func TestNewResolver(t *testing.T) {
	t.Run("rejects empty root", func(t *testing.T) {
		if _, err := NewResolver("  "); err == nil {
			t.Fatal("expected error for empty root")
		}
	})

	t.Run("rejects missing root", func(t *testing.T) {
		if _, err := NewResolver(filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Fatal("expected error for missing root")
		}
	})

	t.Run("canonicalizes root once", func(t *testing.T) {
		root := t.TempDir()
		r, err := NewResolver(root)
		if err != nil {
			t.Fatalf("NewResolver failed: %v", err)
		}
		if !filepath.IsAbs(r.Root()) {
			t.Errorf("root %q is not absolute", r.Root())
		}
	})
}

func TestResolverResolve(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "proj", "sub"), 0o755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	r, err := NewResolver(root)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	t.Run("relative path resolves under root", func(t *testing.T) {
		got, err := r.Resolve("proj/sub")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		want := filepath.Join(r.Root(), "proj", "sub")
		if got != want {
			t.Errorf("resolved to %q, want %q", got, want)
		}
	})

	t.Run("nonexistent target under root is allowed", func(t *testing.T) {
		got, err := r.Resolve("proj/newfile.txt")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got != filepath.Join(r.Root(), "proj", "newfile.txt") {
			t.Errorf("resolved to %q", got)
		}
	})

	t.Run("root itself resolves", func(t *testing.T) {
		got, err := r.Resolve(".")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got != r.Root() {
			t.Errorf("resolved to %q, want root", got)
		}
	})

	t.Run("dotdot traversal is rejected", func(t *testing.T) {
		_, err := r.Resolve("proj/../../outside")
		var escape *PathEscapeError
		if !errors.As(err, &escape) {
			t.Fatalf("expected PathEscapeError, got %v", err)
		}
	})

	t.Run("absolute path outside root is rejected", func(t *testing.T) {
		outside := t.TempDir()
		_, err := r.Resolve(filepath.Join(outside, "file.txt"))
		var escape *PathEscapeError
		if !errors.As(err, &escape) {
			t.Fatalf("expected PathEscapeError, got %v", err)
		}
	})

	t.Run("symlink escaping root is rejected", func(t *testing.T) {
		outside := t.TempDir()
		createSymlink(t, outside, filepath.Join(root, "sneaky"))

		_, err := r.Resolve("sneaky/file.txt")
		var escape *PathEscapeError
		if !errors.As(err, &escape) {
			t.Fatalf("expected PathEscapeError, got %v", err)
		}
	})

	t.Run("symlink staying inside root is allowed", func(t *testing.T) {
		createSymlink(t, filepath.Join(root, "proj"), filepath.Join(root, "alias"))

		got, err := r.Resolve("alias/sub")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got != filepath.Join(r.Root(), "proj", "sub") {
			t.Errorf("alias resolved to %q", got)
		}
	})

	t.Run("empty path is rejected", func(t *testing.T) {
		if _, err := r.Resolve(""); err == nil {
			t.Fatal("expected error for empty path")
		}
	})
}
