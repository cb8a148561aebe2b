package scaffold

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"mcpforge/internal/logging"
	"mcpforge/pkg/fileops"
)

func newTestScaffolder(t *testing.T, templatesDir string) *Scaffolder {
	t.Helper()

	logger, _ := logging.NewTestLogger()
	library := NewLibrary(templatesDir, logger)
	return NewScaffolder(fileops.NewWriter(), library, logger)
}

func TestMaterializeBasicTemplate(t *testing.T) {
	s := newTestScaffolder(t, "")
	target := filepath.Join(t.TempDir(), "weather")

	written, err := s.Materialize(target, "basic", "weather")
	if err != nil {
		t.Fatalf("Materialize() failed: %v", err)
	}

	wantFiles := []string{ServerFileName, "pyproject.toml", "README.md", ".gitignore"}
	if len(written) != len(wantFiles) {
		t.Fatalf("Materialize() wrote %d files, want %d", len(written), len(wantFiles))
	}
	for i, name := range wantFiles {
		if filepath.Base(written[i]) != name {
			t.Errorf("written[%d] = %q, want %q", i, filepath.Base(written[i]), name)
		}
		if _, err := os.Stat(written[i]); err != nil {
			t.Errorf("expected %s on disk: %v", written[i], err)
		}
	}

	server, err := os.ReadFile(filepath.Join(target, ServerFileName))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(server), `FastMCP("weather")`) {
		t.Error("server file does not embed the project name")
	}
	if !strings.Contains(string(server), MainGuard) {
		t.Error("server file is missing the main guard")
	}
}

func TestMaterializeSetsExecutableServerFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on Windows")
	}
	s := newTestScaffolder(t, "")
	target := filepath.Join(t.TempDir(), "weather")

	if _, err := s.Materialize(target, "basic", "weather"); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filepath.Join(target, ServerFileName))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("server file mode = %o, want 755", info.Mode().Perm())
	}
}

func TestMaterializeWebTemplate(t *testing.T) {
	s := newTestScaffolder(t, "")
	target := filepath.Join(t.TempDir(), "fetcher")

	if _, err := s.Materialize(target, "web", "fetcher"); err != nil {
		t.Fatalf("Materialize() failed: %v", err)
	}

	server, err := os.ReadFile(filepath.Join(target, ServerFileName))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(server), "httpx") {
		t.Error("web template server file does not use httpx")
	}
	pyproject, err := os.ReadFile(filepath.Join(target, "pyproject.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(pyproject), `"httpx"`) {
		t.Error("web template pyproject does not declare httpx")
	}
}

func TestMaterializeUnknownKind(t *testing.T) {
	s := newTestScaffolder(t, "")

	_, err := s.Materialize(filepath.Join(t.TempDir(), "x"), "no-such-kind", "x")
	if err == nil {
		t.Fatal("Materialize() with unknown kind succeeded, want error")
	}
	if !strings.Contains(err.Error(), "no-such-kind") {
		t.Errorf("error %q does not name the unknown kind", err)
	}
}

func TestMaterializeCustomTemplate(t *testing.T) {
	templatesDir := t.TempDir()
	custom := `---
description: Slack notifier server
---
#!/usr/bin/env python3
from mcp.server.fastmcp import FastMCP

mcp = FastMCP("{{.Name}}")

if __name__ == "__main__":
    mcp.run()
`
	if err := os.WriteFile(filepath.Join(templatesDir, "slack.md"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newTestScaffolder(t, templatesDir)
	target := filepath.Join(t.TempDir(), "notify")

	written, err := s.Materialize(target, "slack", "notify")
	if err != nil {
		t.Fatalf("Materialize() with custom template failed: %v", err)
	}
	if len(written) != 4 {
		t.Fatalf("custom template wrote %d files, want 4", len(written))
	}

	server, err := os.ReadFile(filepath.Join(target, ServerFileName))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(server), `FastMCP("notify")`) {
		t.Error("custom template body was not rendered with the project name")
	}
}
