package scaffold

import (
	"fmt"
	"strings"

	"mcpforge/internal/registry"
)

// pythonType maps a JSON-ish parameter type to a Python annotation.
// Unknown types fall back to str so the generated signature stays valid.
func pythonType(t string) string {
	switch strings.ToLower(t) {
	case "int", "integer":
		return "int"
	case "float", "number":
		return "float"
	case "bool", "boolean":
		return "bool"
	case "list", "array":
		return "list"
	case "dict", "object":
		return "dict"
	default:
		return "str"
	}
}

// BuildToolStub renders a decorated tool function ready to be spliced
// into a project's server file above the main guard.
func BuildToolStub(name, description string, params []registry.ToolParam) string {
	var sig []string
	for _, p := range params {
		sig = append(sig, fmt.Sprintf("%s: %s", p.Name, pythonType(p.Type)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@mcp.tool()\n")
	fmt.Fprintf(&b, "def %s(%s) -> dict:\n", name, strings.Join(sig, ", "))
	fmt.Fprintf(&b, "    \"\"\"%s", description)
	if len(params) > 0 {
		b.WriteString("\n\n    Args:\n")
		for _, p := range params {
			desc := p.Description
			if desc == "" {
				desc = p.Name
			}
			fmt.Fprintf(&b, "        %s: %s\n", p.Name, desc)
		}
		b.WriteString("    ")
	}
	b.WriteString("\"\"\"\n")
	fmt.Fprintf(&b, "    # Implement the tool logic here\n")
	fmt.Fprintf(&b, "    result = {\"status\": \"ok\"}\n")
	fmt.Fprintf(&b, "    return result\n")
	return b.String()
}
