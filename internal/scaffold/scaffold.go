// Package scaffold materializes MCP server projects from templates and
// generates tool stubs for insertion into existing server files.
package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"mcpforge/internal/logging"
	"mcpforge/pkg/fileops"
)

// Scaffolder writes template files into fresh project directories.
// Every write goes through the atomic writer, and the returned slice
// always lists exactly the files that reached disk so a caller can
// undo a partial materialization.
type Scaffolder struct {
	writer  *fileops.Writer
	library *Library
	logger  *logging.AppLogger
}

// NewScaffolder creates a Scaffolder backed by writer and library.
func NewScaffolder(writer *fileops.Writer, library *Library, logger *logging.AppLogger) *Scaffolder {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Scaffolder{writer: writer, library: library, logger: logger}
}

// Library exposes the template library for kind listings.
func (s *Scaffolder) Library() *Library {
	return s.library
}

// Materialize renders the template kind into path, creating the
// directory if needed. The returned slice holds the absolute paths of
// the files written so far, in write order; on error it reflects only
// the files that actually exist.
func (s *Scaffolder) Materialize(path, templateKind, name string) ([]string, error) {
	tmpl, err := s.library.Lookup(templateKind)
	if err != nil {
		return nil, err
	}

	rendered, err := renderTemplate(tmpl, templateData{Name: name})
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	written := make([]string, 0, len(tmpl.Files))
	for i, f := range tmpl.Files {
		target := filepath.Join(path, f.Name)
		if _, err := s.writer.WriteFull(target, rendered[i]); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		written = append(written, target)
		if err := os.Chmod(target, f.Mode); err != nil {
			return written, fmt.Errorf("failed to set mode on %s: %w", f.Name, err)
		}
	}

	s.logger.Info("Materialized project template",
		"kind", tmpl.Kind,
		"path", path,
		"files", len(written))
	return written, nil
}

// renderTemplate evaluates every file body up front so a parse error
// surfaces before anything touches disk.
func renderTemplate(tmpl *ProjectTemplate, data templateData) ([][]byte, error) {
	out := make([][]byte, len(tmpl.Files))
	for i, f := range tmpl.Files {
		t, err := template.New(f.Name).Parse(f.Body)
		if err != nil {
			return nil, fmt.Errorf("template %s/%s is invalid: %w", tmpl.Kind, f.Name, err)
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("failed to render %s/%s: %w", tmpl.Kind, f.Name, err)
		}
		out[i] = buf.Bytes()
	}
	return out, nil
}
