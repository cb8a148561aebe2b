package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"mcpforge/internal/registry"
	"mcpforge/internal/scaffold"
	"mcpforge/internal/validation"
	"mcpforge/pkg/fileops"
)

// defaultReadLimit caps read_file output when a window is requested
// without an explicit limit.
const defaultReadLimit = 1000

func (s *Server) handleCreateServer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description := request.GetString("description", "")
	template := request.GetString("template", scaffold.DefaultKind)

	rec, err := s.registry.Create(name, description, template)
	if errors.Is(err, registry.ErrDuplicateID) {
		// A previous create whose scaffold failed leaves a Defined record;
		// retrying the create resumes from there.
		existing, getErr := s.registry.Get(name)
		if getErr != nil || existing.State != registry.StateDefined {
			return mcp.NewToolResultError(fmt.Sprintf("create_server %s: %v", name, err)), nil
		}
		rec = existing
	} else if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create_server %s: %v", name, err)), nil
	}

	rec, err = s.registry.Scaffold(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create_server %s: record created but scaffold failed, retry create_server: %v", name, err)), nil
	}

	if err := s.registrar.Register(name, rec.Location); err != nil {
		// The project exists and is usable; registration is best effort.
		s.logger.Warn("Client registration failed", "server", name, "error", err)
	}

	return recordResult(rec)
}

func (s *Server) handleListServers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records := s.registry.List()

	content, err := json.MarshalIndent(map[string]any{
		"servers": records,
		"count":   len(records),
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list_servers: %v", err)), nil
	}
	return mcp.NewToolResultText(string(content)), nil
}

func (s *Server) handleRemoveServer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rec, err := s.registry.Get(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("remove_server %s: %v", name, err)), nil
	}

	if err := s.registry.Remove(name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("remove_server %s: %v", name, err)), nil
	}

	if err := s.registrar.Unregister(rec.Location); err != nil {
		s.logger.Warn("Client unregistration failed", "server", name, "error", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Removed server %q and deleted %s", name, rec.Location)), nil
}

func (s *Server) handleReadFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	abs, err := s.resolver.Resolve(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read_file %s: %v", path, err)), nil
	}

	info, err := os.Stat(abs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read_file %s: %v", path, err)), nil
	}
	if info.IsDir() {
		return mcp.NewToolResultError(fmt.Sprintf("read_file %s: path is a directory, not a file", path)), nil
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read_file %s: %v", path, err)), nil
	}

	offset := request.GetInt("offset", 0)
	limit := request.GetInt("limit", 0)
	if offset == 0 && limit == 0 {
		return mcp.NewToolResultText(string(content)), nil
	}
	return mcp.NewToolResultText(numberedWindow(string(content), offset, limit)), nil
}

// numberedWindow formats a 1-indexed line window with line numbers, the
// way read_file reports partial reads.
func numberedWindow(content string, offset, limit int) string {
	lines := strings.Split(content, "\n")
	if offset > 0 {
		offset--
	}
	if offset > len(lines) {
		offset = len(lines)
	}
	if limit <= 0 {
		limit = defaultReadLimit
	}
	end := offset + limit
	if end > len(lines) {
		end = len(lines)
	}

	numbered := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		numbered = append(numbered, fmt.Sprintf("%6d\t%s", i+1, strings.TrimRight(lines[i], "\r")))
	}
	return strings.Join(numbered, "\n")
}

func (s *Server) handleWriteFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	abs, err := s.resolver.Resolve(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("write_file %s: %v", path, err)), nil
	}

	if err := s.guard.EnsureWritable(abs); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("write_file %s: %v", path, err)), nil
	}

	// An existing file keeps its line-ending style; new files get the
	// content byte for byte.
	if _, statErr := os.Stat(abs); statErr == nil {
		ending := fileops.DetectLineEndings(abs)
		content = fileops.ApplyLineEndings(fileops.NormalizeToLF(content), ending)
	} else if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("write_file %s: %v", path, err)), nil
	}

	result, err := s.writer.WriteFull(abs, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("write_file %s: %v", path, err)), nil
	}
	return mutationResult(result)
}

func (s *Server) handleEditFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	edits, err := parseEdits(request.GetArguments()["edits"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("edit_file %s: %v", path, err)), nil
	}

	abs, err := s.resolver.Resolve(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("edit_file %s: %v", path, err)), nil
	}

	if err := s.guard.EnsureWritable(abs); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("edit_file %s: %v", path, err)), nil
	}

	result, err := s.writer.ApplyEdits(abs, edits)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("edit_file %s: %v", path, err)), nil
	}
	return mutationResult(result)
}

// parseEdits decodes the raw edits argument into typed range edits.
func parseEdits(raw any) ([]fileops.Edit, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("edits must be an array of {start, end, replacement} objects")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("edits must not be empty")
	}

	edits := make([]fileops.Edit, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("edit %d is not an object", i)
		}
		start, err := intField(obj, "start")
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		end, err := intField(obj, "end")
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		replacement, _ := obj["replacement"].(string)
		edits = append(edits, fileops.Edit{Start: start, End: end, Replacement: replacement})
	}
	return edits, nil
}

func intField(obj map[string]any, key string) (int, error) {
	value, ok := obj[key]
	if !ok {
		return 0, fmt.Errorf("missing %q", key)
	}
	switch v := value.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("%q must be a number, got %T", key, value)
	}
}

func (s *Server) handleCreateTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	serverName, err := request.RequireString("server")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	toolName, err := request.RequireString("tool_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	toolDescription, err := request.RequireString("tool_description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := validation.ValidateToolName(toolName); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create_tool %s: %v", toolName, err)), nil
	}

	params, err := parseToolParams(request.GetArguments()["parameters"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create_tool %s: %v", toolName, err)), nil
	}

	rec, err := s.registry.Get(serverName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create_tool: %v", err)), nil
	}

	serverFile := filepath.Join(rec.Location, scaffold.ServerFileName)
	code, err := os.ReadFile(serverFile)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create_tool: cannot read %s: %v", serverFile, err)), nil
	}

	// Insert the stub above the main guard; append if the guard is absent.
	insertAt := bytes.Index(code, []byte(scaffold.MainGuard))
	if insertAt == -1 {
		insertAt = len(code)
	}
	stub := scaffold.BuildToolStub(toolName, toolDescription, params)
	edit := fileops.Edit{Start: insertAt, End: insertAt, Replacement: "\n" + stub + "\n"}

	if _, err := s.writer.ApplyEdits(serverFile, []fileops.Edit{edit}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create_tool %s: %v", toolName, err)), nil
	}

	rec, err = s.registry.RecordTool(serverName, registry.ToolInfo{
		Name:        toolName,
		Description: toolDescription,
		Parameters:  params,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create_tool %s: stub written but record update failed: %v", toolName, err)), nil
	}

	content, err := json.MarshalIndent(map[string]any{
		"server":      serverName,
		"tool":        toolName,
		"description": toolDescription,
		"parameters":  params,
		"file":        serverFile,
		"tool_count":  rec.ToolCount(),
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create_tool %s: %v", toolName, err)), nil
	}
	return mcp.NewToolResultText(string(content)), nil
}

// parseToolParams decodes the raw parameters argument. Every entry must
// carry name, type and description keys.
func parseToolParams(raw any) ([]registry.ToolParam, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("parameters must be an array of objects")
	}

	params := make([]registry.ToolParam, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parameter %d is not an object", i)
		}
		name, _ := obj["name"].(string)
		typ, _ := obj["type"].(string)
		description, _ := obj["description"].(string)
		if name == "" || typ == "" || description == "" {
			return nil, fmt.Errorf("parameter %d must have name, type and description keys", i)
		}
		params = append(params, registry.ToolParam{Name: name, Type: typ, Description: description})
	}
	return params, nil
}

// recordResult renders a server record as a JSON tool result.
func recordResult(rec registry.ServerRecord) (*mcp.CallToolResult, error) {
	content, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode record: %v", err)), nil
	}
	return mcp.NewToolResultText(string(content)), nil
}

// mutationResult renders a file mutation result as a JSON tool result.
func mutationResult(result fileops.MutationResult) (*mcp.CallToolResult, error) {
	content, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(content)), nil
}
