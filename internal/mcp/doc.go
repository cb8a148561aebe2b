// Package mcp implements the Model Context Protocol (MCP) server for
// mcpforge using the mcp-go library.
//
// The server exposes the server registry and the atomic file mutation
// engine as MCP tools: creating, listing and removing managed server
// projects, reading and writing files inside them, applying byte-range
// edits, and inserting generated tool stubs into a project's server file.
// It communicates via stdin/stdout using JSON-RPC 2.0 as specified by the
// MCP standard.
//
// # Security
//
// Every path a tool receives is resolved against the configured servers
// directory through the fileops Resolver, so requests can never read or
// mutate anything outside it. Writes additionally pass the gitguard
// tracking check when enforcement is enabled.
//
// # Usage
//
// The server is typically started as a subprocess by an MCP client:
//
//	mcpforge serve
//
// It reads JSON-RPC requests from stdin and writes responses to stdout
// until it receives EOF or is terminated.
package mcp
