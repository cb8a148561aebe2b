// Package main is the entry point for the mcpforge CLI.
//
// mcpforge manages locally scaffolded MCP server projects. The default
// command serves the management tools over MCP on stdio; the remaining
// commands operate on the registry directly for use from a shell.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
