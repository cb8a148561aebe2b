package fileops

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeToLF(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"crlf", "a\r\nb\r\n", "a\nb\n"},
		{"lone cr", "a\rb", "a\nb"},
		{"mixed", "a\r\nb\rc\n", "a\nb\nc\n"},
		{"already lf", "a\nb\n", "a\nb\n"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeToLF(tt.input); got != tt.want {
				t.Errorf("NormalizeToLF(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestApplyLineEndings(t *testing.T) {
	if got := ApplyLineEndings("a\nb\n", LineEndingCRLF); got != "a\r\nb\r\n" {
		t.Errorf("CRLF conversion produced %q", got)
	}
	if got := ApplyLineEndings("a\nb\n", LineEndingLF); got != "a\nb\n" {
		t.Errorf("LF passthrough produced %q", got)
	}
}

func TestDetectLineEndings(t *testing.T) {
	dir := t.TempDir()

	crlf := filepath.Join(dir, "crlf.txt")
	if err := os.WriteFile(crlf, []byte("a\r\nb\r\n"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	lf := filepath.Join(dir, "lf.txt")
	if err := os.WriteFile(lf, []byte("a\nb\n"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if got := DetectLineEndings(crlf); got != LineEndingCRLF {
		t.Errorf("expected CRLF for %s", crlf)
	}
	if got := DetectLineEndings(lf); got != LineEndingLF {
		t.Errorf("expected LF for %s", lf)
	}
	if got := DetectLineEndings(filepath.Join(dir, "missing.txt")); got != LineEndingLF {
		t.Errorf("expected LF default for missing file")
	}
}
