package scaffold

import "io/fs"

// ServerFileName is the entry-point file every project template must
// provide; a scaffolded project without it is considered incomplete.
const ServerFileName = "server.py"

// MainGuard is the marker line generated tools are inserted before.
const MainGuard = `if __name__ == "__main__":`

// TemplateFile is one file of a project template. Body is a text/template
// evaluated against templateData.
type TemplateFile struct {
	Name string
	Mode fs.FileMode
	Body string
}

// ProjectTemplate describes everything a template kind materializes.
// Files are written in slice order, which is fixed and deterministic.
type ProjectTemplate struct {
	Kind        string
	Description string
	Files       []TemplateFile
}

// templateData is the substitution context for template bodies.
type templateData struct {
	Name        string
	Description string
}

const basicServerBody = `#!/usr/bin/env python3
from mcp.server.fastmcp import FastMCP, Context

# Create an MCP server
mcp = FastMCP("{{.Name}}")

if __name__ == "__main__":
    try:
        # Run the MCP server
        mcp.run()
    except KeyboardInterrupt:
        print("Server stopped by user")
`

const toolServerBody = `#!/usr/bin/env python3
from mcp.server.fastmcp import FastMCP, Context

# Create an MCP server
mcp = FastMCP("{{.Name}}")


@mcp.tool()
def echo(message: str) -> str:
    """Echo a message back to the client"""
    return f"You said: {message}"

if __name__ == "__main__":
    try:
        # Run the MCP server
        mcp.run()
    except KeyboardInterrupt:
        print("Server stopped by user")
`

const webServerBody = `#!/usr/bin/env python3
import httpx
from mcp.server.fastmcp import FastMCP, Context

# Create an MCP server
mcp = FastMCP("{{.Name}}")


@mcp.tool()
async def fetch(url: str) -> str:
    """Fetch a URL and return the response body"""
    async with httpx.AsyncClient() as client:
        response = await client.get(url)
        response.raise_for_status()
        return response.text

if __name__ == "__main__":
    try:
        # Run the MCP server
        mcp.run()
    except KeyboardInterrupt:
        print("Server stopped by user")
`

const pyprojectBody = `[project]
name = "{{.Name}}"
version = "0.1.0"
description = "Managed MCP server"
requires-python = ">=3.10"
dependencies = ["mcp"]
`

const pyprojectWebBody = `[project]
name = "{{.Name}}"
version = "0.1.0"
description = "Managed MCP server"
requires-python = ">=3.10"
dependencies = ["mcp", "httpx"]
`

const readmeBody = `# {{.Name}}

A Model Context Protocol server managed by mcpforge.

Run it with:

    uv run --directory . server.py
`

const gitignoreBody = `__pycache__/
*.pyc
.venv/
`

// builtinTemplates is the fixed catalog of project template kinds.
var builtinTemplates = []ProjectTemplate{
	{
		Kind:        "basic",
		Description: "Minimal MCP server with no tools",
		Files: []TemplateFile{
			{Name: ServerFileName, Mode: 0o755, Body: basicServerBody},
			{Name: "pyproject.toml", Mode: 0o644, Body: pyprojectBody},
			{Name: "README.md", Mode: 0o644, Body: readmeBody},
			{Name: ".gitignore", Mode: 0o644, Body: gitignoreBody},
		},
	},
	{
		Kind:        "tool",
		Description: "MCP server with a sample echo tool",
		Files: []TemplateFile{
			{Name: ServerFileName, Mode: 0o755, Body: toolServerBody},
			{Name: "pyproject.toml", Mode: 0o644, Body: pyprojectBody},
			{Name: "README.md", Mode: 0o644, Body: readmeBody},
			{Name: ".gitignore", Mode: 0o644, Body: gitignoreBody},
		},
	},
	{
		Kind:        "web",
		Description: "MCP server with an async HTTP fetch tool",
		Files: []TemplateFile{
			{Name: ServerFileName, Mode: 0o755, Body: webServerBody},
			{Name: "pyproject.toml", Mode: 0o644, Body: pyprojectWebBody},
			{Name: "README.md", Mode: 0o644, Body: readmeBody},
			{Name: ".gitignore", Mode: 0o644, Body: gitignoreBody},
		},
	},
}

// DefaultKind is used when a create request names no template.
const DefaultKind = "basic"
