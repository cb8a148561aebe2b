package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mcpforge/internal/logging"
	"mcpforge/internal/registry"
)

func newTestLibrary(t *testing.T, dir string) *Library {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	return NewLibrary(dir, logger)
}

func writeTemplateFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLookupBuiltins(t *testing.T) {
	lib := newTestLibrary(t, "")

	for _, kind := range []string{"basic", "tool", "web"} {
		tmpl, err := lib.Lookup(kind)
		if err != nil {
			t.Errorf("Lookup(%q) failed: %v", kind, err)
			continue
		}
		if tmpl.Files[0].Name != ServerFileName {
			t.Errorf("template %q first file = %q, want %q", kind, tmpl.Files[0].Name, ServerFileName)
		}
	}

	if _, err := lib.Lookup("missing"); err == nil {
		t.Error("Lookup() of unknown kind succeeded, want error")
	}
}

func TestLookupCustomShadowsBuiltin(t *testing.T) {
	dir := t.TempDir()
	writeTemplateFile(t, dir, "basic.md", `---
description: Replacement basic server
---
print("custom")
`)

	lib := newTestLibrary(t, dir)
	tmpl, err := lib.Lookup("basic")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if tmpl.Description != "Replacement basic server" {
		t.Errorf("custom template did not shadow the built-in, description = %q", tmpl.Description)
	}
}

func TestLookupRejectsMissingDescription(t *testing.T) {
	dir := t.TempDir()
	writeTemplateFile(t, dir, "bad.md", `---
filename: run.py
---
body
`)

	lib := newTestLibrary(t, dir)
	if _, err := lib.Lookup("bad"); err == nil {
		t.Error("Lookup() of template without description succeeded, want error")
	}
}

func TestLookupRejectsPathTraversalFilename(t *testing.T) {
	dir := t.TempDir()
	writeTemplateFile(t, dir, "sneaky.md", `---
description: Escapes the project directory
filename: ../outside.py
---
body
`)

	lib := newTestLibrary(t, dir)
	if _, err := lib.Lookup("sneaky"); err == nil {
		t.Error("Lookup() accepted a filename with a path separator")
	}
}

func TestLookupNoFrontmatter(t *testing.T) {
	dir := t.TempDir()
	writeTemplateFile(t, dir, "plain.md", "just a markdown file with no header\n")

	lib := newTestLibrary(t, dir)
	if _, err := lib.Lookup("plain"); err == nil {
		t.Error("Lookup() of template without frontmatter succeeded, want error")
	}
}

func TestKindsListsBuiltinsAndCustom(t *testing.T) {
	dir := t.TempDir()
	writeTemplateFile(t, dir, "slack.md", `---
description: Slack notifier
---
body
`)
	writeTemplateFile(t, dir, "broken.md", "no header here\n")

	lib := newTestLibrary(t, dir)
	kinds := lib.Kinds()

	seen := make(map[string]string)
	for _, k := range kinds {
		seen[k.Kind] = k.Description
	}
	for _, builtin := range []string{"basic", "tool", "web"} {
		if _, ok := seen[builtin]; !ok {
			t.Errorf("Kinds() missing built-in %q", builtin)
		}
	}
	if desc, ok := seen["slack"]; !ok || desc != "Slack notifier" {
		t.Errorf("Kinds() custom entry = %q, %v", desc, ok)
	}
	if _, ok := seen["broken"]; ok {
		t.Error("Kinds() listed a template with invalid frontmatter")
	}
}

func TestBuildToolStub(t *testing.T) {
	stub := BuildToolStub("get_forecast", "Fetch the weather forecast", nil)
	for _, want := range []string{"@mcp.tool()", "def get_forecast() -> dict:", "Fetch the weather forecast"} {
		if !strings.Contains(stub, want) {
			t.Errorf("stub missing %q:\n%s", want, stub)
		}
	}
}

func TestBuildToolStubWithParams(t *testing.T) {
	params := []registry.ToolParam{
		{Name: "city", Type: "string", Description: "City name"},
		{Name: "days", Type: "int", Description: "Days ahead"},
		{Name: "detailed", Type: "bool"},
	}
	stub := BuildToolStub("forecast", "Fetch a forecast", params)

	if !strings.Contains(stub, "def forecast(city: str, days: int, detailed: bool) -> dict:") {
		t.Errorf("stub signature wrong:\n%s", stub)
	}
	if !strings.Contains(stub, "Args:") {
		t.Error("stub docstring missing Args section")
	}
	if !strings.Contains(stub, "city: City name") {
		t.Error("stub docstring missing parameter description")
	}
	// Parameters without a description fall back to the name.
	if !strings.Contains(stub, "detailed: detailed") {
		t.Error("stub docstring missing fallback description")
	}
}
