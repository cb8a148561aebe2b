package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mcpforge/internal/logging"
	"mcpforge/pkg/fileops"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	logger, _ := logging.NewTestLogger()
	store := NewStore(filepath.Join(dir, "servers.json"), fileops.NewWriter(), logger)
	return store, dir
}

func TestStoreLoadMissingIndex(t *testing.T) {
	store, _ := newTestStore(t)

	records, err := store.Load()
	if err != nil {
		t.Fatalf("Load() of missing index failed: %v", err)
	}
	if records != nil {
		t.Errorf("Load() of missing index = %v, want nil", records)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, dir := newTestStore(t)

	in := []ServerRecord{
		{
			ID:           "id-1",
			Name:         "weather",
			Description:  "Forecasts",
			Location:     filepath.Join(dir, "weather"),
			State:        StateDefined,
			TemplateKind: "basic",
			CreatedAt:    time.Now().UTC().Truncate(time.Second),
		},
		{
			ID:       "id-2",
			Name:     "notes",
			Location: filepath.Join(dir, "notes"),
			State:    StateDefined,
			Tools: []ToolInfo{
				{Name: "add_note", Description: "Store a note"},
			},
		},
	}

	if err := store.Save(in); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	out, err := store.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Load() returned %d records, want 2", len(out))
	}
	if out[0].Name != "weather" || out[1].Name != "notes" {
		t.Errorf("record order not preserved: %q, %q", out[0].Name, out[1].Name)
	}
	if out[1].ToolCount() != 1 {
		t.Errorf("tool metadata lost on round trip, ToolCount() = %d", out[1].ToolCount())
	}
}

func TestStoreToleratesCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	logger, logs := logging.NewTestLogger()
	path := filepath.Join(dir, "servers.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path, fileops.NewWriter(), logger)
	records, err := store.Load()
	if err != nil {
		t.Fatalf("Load() of corrupt index failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Load() of corrupt index returned %d records, want 0", len(records))
	}
	if !strings.Contains(logs.String(), "corrupt") {
		t.Error("expected corrupt index to be logged")
	}
}

func TestStoreSelfHealsMissingDirectories(t *testing.T) {
	store, dir := newTestStore(t)

	present := filepath.Join(dir, "present")
	if err := os.MkdirAll(present, 0o755); err != nil {
		t.Fatal(err)
	}

	in := []ServerRecord{
		{ID: "a", Name: "present", Location: present, State: StateScaffolded},
		{ID: "b", Name: "vanished", Location: filepath.Join(dir, "vanished"), State: StateScaffolded},
	}
	if err := store.Save(in); err != nil {
		t.Fatal(err)
	}

	out, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if out[0].State != StateScaffolded {
		t.Errorf("record with existing directory became %q", out[0].State)
	}
	if out[1].State != StateRemoved {
		t.Errorf("record with missing directory = %q, want %q", out[1].State, StateRemoved)
	}
}

func TestStoreSaveCreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	logger, _ := logging.NewTestLogger()
	path := filepath.Join(dir, "nested", "deeper", "servers.json")

	store := NewStore(path, fileops.NewWriter(), logger)
	if err := store.Save(nil); err != nil {
		t.Fatalf("Save() into missing directory failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("index file missing after save: %v", err)
	}
}
