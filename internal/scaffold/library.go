package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"

	"mcpforge/internal/logging"
)

// templateFrontmatter is the YAML header of a custom template file.
type templateFrontmatter struct {
	Description string `yaml:"description"`
	Filename    string `yaml:"filename"`
	Mode        string `yaml:"mode"`
}

// Library resolves template kinds, checking user-provided markdown
// templates in dir before falling back to the built-in catalog. A
// custom template is a .md file whose stem is the kind, with a YAML
// frontmatter header and the server file body below it.
type Library struct {
	dir    string
	logger *logging.AppLogger
}

// NewLibrary creates a Library over dir. dir may be empty or missing,
// in which case only built-in templates resolve.
func NewLibrary(dir string, logger *logging.AppLogger) *Library {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Library{dir: dir, logger: logger}
}

// Lookup returns the template for kind, preferring a custom definition.
func (l *Library) Lookup(kind string) (*ProjectTemplate, error) {
	if l.dir != "" {
		tmpl, err := l.loadCustom(kind)
		if err != nil {
			return nil, err
		}
		if tmpl != nil {
			return tmpl, nil
		}
	}
	for i := range builtinTemplates {
		if builtinTemplates[i].Kind == kind {
			return &builtinTemplates[i], nil
		}
	}
	return nil, fmt.Errorf("unknown template kind %q", kind)
}

// Kinds lists every resolvable kind with its description, built-ins
// first, then custom templates sorted by directory order.
func (l *Library) Kinds() []ProjectTemplate {
	out := make([]ProjectTemplate, 0, len(builtinTemplates))
	seen := make(map[string]bool)
	for _, t := range builtinTemplates {
		out = append(out, ProjectTemplate{Kind: t.Kind, Description: t.Description})
		seen[t.Kind] = true
	}
	if l.dir == "" {
		return out
	}
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		kind := strings.TrimSuffix(e.Name(), ".md")
		tmpl, err := l.loadCustom(kind)
		if err != nil || tmpl == nil {
			l.logger.Warn("Skipping unreadable custom template", "kind", kind, "error", err)
			continue
		}
		if seen[kind] {
			// Custom definition shadows the built-in. Surface its description.
			for i := range out {
				if out[i].Kind == kind {
					out[i].Description = tmpl.Description
				}
			}
			continue
		}
		out = append(out, ProjectTemplate{Kind: kind, Description: tmpl.Description})
	}
	return out
}

// loadCustom parses dir/<kind>.md. A missing file is not an error.
func (l *Library) loadCustom(kind string) (*ProjectTemplate, error) {
	path := filepath.Join(l.dir, kind+".md")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read custom template %s: %w", path, err)
	}

	var matter templateFrontmatter
	body, err := frontmatter.Parse(bytes.NewReader(content), &matter)
	if err != nil {
		return nil, fmt.Errorf("custom template %s has no valid frontmatter: %w", path, err)
	}
	if strings.TrimSpace(matter.Description) == "" {
		return nil, fmt.Errorf("custom template %s is missing a description", path)
	}

	filename := matter.Filename
	if filename == "" {
		filename = ServerFileName
	}
	if filepath.Base(filename) != filename || filename == "." || filename == ".." {
		return nil, fmt.Errorf("custom template %s declares invalid filename %q", path, filename)
	}
	mode := os.FileMode(0o755)
	if matter.Mode != "" {
		var parsed uint32
		if _, err := fmt.Sscanf(matter.Mode, "%o", &parsed); err != nil {
			return nil, fmt.Errorf("custom template %s declares invalid mode %q", path, matter.Mode)
		}
		mode = os.FileMode(parsed)
	}

	// Custom templates define the server file; the standard project
	// skeleton is filled in around it so the result is runnable.
	return &ProjectTemplate{
		Kind:        kind,
		Description: matter.Description,
		Files: []TemplateFile{
			{Name: filename, Mode: mode, Body: string(body)},
			{Name: "pyproject.toml", Mode: 0o644, Body: pyprojectBody},
			{Name: "README.md", Mode: 0o644, Body: readmeBody},
			{Name: ".gitignore", Mode: 0o644, Body: gitignoreBody},
		},
	}, nil
}
