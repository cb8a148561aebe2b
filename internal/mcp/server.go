package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mcpforge/internal/clientconfig"
	"mcpforge/internal/config"
	"mcpforge/internal/gitguard"
	"mcpforge/internal/logging"
	"mcpforge/internal/registry"
	"mcpforge/internal/scaffold"
	"mcpforge/pkg/fileops"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Server wires the registry and file mutation engine into an MCP server
// instance.
type Server struct {
	config    *config.Config
	logger    *logging.AppLogger
	registry  *registry.Registry
	resolver  *fileops.Resolver
	writer    *fileops.Writer
	guard     *gitguard.Guard
	registrar *clientconfig.Registrar
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server instance over cfg. Components are
// initialized lazily by Start so construction never touches the disk.
func NewServer(cfg *config.Config, logger *logging.AppLogger) *Server {
	return &Server{
		config: cfg,
		logger: logger,
	}
}

// Start initializes all components and serves MCP over stdio until the
// client disconnects.
func (s *Server) Start() error {
	if err := s.initComponents(); err != nil {
		return err
	}

	s.logger.Info("MCP server starting", "serversDir", s.config.ServersDir)
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// initComponents builds the registry, resolver, writer and guard, and
// registers every tool, prompt and resource on a fresh mcp-go server.
func (s *Server) initComponents() error {
	if err := s.config.EnsureServersDir(); err != nil {
		return fmt.Errorf("failed to prepare servers directory: %w", err)
	}

	resolver, err := fileops.NewResolver(s.config.ServersDir)
	if err != nil {
		return fmt.Errorf("failed to initialize path resolver: %w", err)
	}
	s.resolver = resolver

	s.writer = fileops.NewWriter()
	s.guard = gitguard.NewGuard(s.config.RequireGitTracking, s.logger)
	s.registrar = clientconfig.NewRegistrar(s.config.ClientConfigPath, s.writer, s.logger)

	library := scaffold.NewLibrary(s.config.TemplatesDir, s.logger)
	scaffolder := scaffold.NewScaffolder(s.writer, library, s.logger)

	store := registry.NewStore(s.config.IndexPath, s.writer, s.logger)
	s.registry, err = registry.New(store, scaffolder, s.config.ServersDir, s.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize registry: %w", err)
	}

	s.mcpServer = server.NewMCPServer(
		config.AppName,
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return nil
}

// Stop gracefully shuts down the MCP server.
func (s *Server) Stop() error {
	s.logger.Info("Stopping MCP server")
	// The mcp-go server handles cleanup when stdio closes.
	return nil
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("create_server",
		mcp.WithDescription("Create and scaffold a new managed MCP server project"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the server project"),
		),
		mcp.WithString("description",
			mcp.Description("Description of what the server does"),
		),
		mcp.WithString("template",
			mcp.Description("Project template kind (default: basic)"),
		),
	), s.handleCreateServer)

	s.mcpServer.AddTool(mcp.NewTool("list_servers",
		mcp.WithDescription("List all managed MCP server projects, including removed tombstones"),
	), s.handleListServers)

	s.mcpServer.AddTool(mcp.NewTool("remove_server",
		mcp.WithDescription("Delete a managed server project and mark its record removed"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the server to remove"),
		),
	), s.handleRemoveServer)

	s.mcpServer.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read a file inside the managed servers directory"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path relative to the servers directory"),
		),
		mcp.WithNumber("offset",
			mcp.Description("1-indexed line to start reading from; switches output to numbered lines"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of lines to return"),
		),
	), s.handleReadFile)

	s.mcpServer.AddTool(mcp.NewTool("write_file",
		mcp.WithDescription("Atomically write full file content inside the managed servers directory"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path relative to the servers directory"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Complete new file content"),
		),
		mcp.WithString("description",
			mcp.Description("Short description of the change"),
		),
	), s.handleWriteFile)

	s.mcpServer.AddTool(mcp.NewTool("edit_file",
		mcp.WithDescription("Apply byte-range edits to a file; all edits succeed atomically or none do"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path relative to the servers directory"),
		),
		mcp.WithArray("edits",
			mcp.Required(),
			mcp.Description("Edits as objects with start, end (byte offsets into the original) and replacement"),
		),
		mcp.WithString("description",
			mcp.Description("Short description of the change"),
		),
	), s.handleEditFile)

	s.mcpServer.AddTool(mcp.NewTool("create_tool",
		mcp.WithDescription("Insert a generated tool stub into an existing server project"),
		mcp.WithString("server",
			mcp.Required(),
			mcp.Description("Name of the server project"),
		),
		mcp.WithString("tool_name",
			mcp.Required(),
			mcp.Description("Name of the tool, snake_case"),
		),
		mcp.WithString("tool_description",
			mcp.Required(),
			mcp.Description("Description of what the tool does"),
		),
		mcp.WithArray("parameters",
			mcp.Description("Parameter definitions with name, type and description keys"),
		),
	), s.handleCreateTool)
}

func (s *Server) registerResources() {
	template := mcp.NewResourceTemplate(
		"mcpforge://servers/{name}",
		"Managed server record",
		mcp.WithTemplateDescription("Registry record of a managed server project as JSON"),
		mcp.WithTemplateMIMEType("application/json"),
	)

	s.mcpServer.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		name, ok := request.Params.Arguments["name"].([]string)
		if !ok || len(name) == 0 {
			return nil, fmt.Errorf("missing server name in resource URI")
		}

		rec, err := s.registry.Get(name[0])
		if err != nil {
			return nil, err
		}
		content, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode record: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(content),
			},
		}, nil
	})
}

func (s *Server) registerPrompts() {
	prompt := mcp.NewPrompt("help",
		mcp.WithPromptDescription("Explain the available mcpforge tools"),
	)

	s.mcpServer.AddPrompt(prompt, func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		text := `mcpforge manages locally scaffolded MCP server projects.

Available tools:
- create_server: create and scaffold a new server project from a template
- list_servers: list all managed projects, including removed tombstones
- remove_server: delete a project and mark its record removed
- read_file: read a file inside the servers directory
- write_file: atomically replace a file's content
- edit_file: apply byte-range edits atomically
- create_tool: insert a generated tool stub into a project's server file

Available resources:
- mcpforge://servers/{name}: the registry record of a project as JSON`

		return &mcp.GetPromptResult{
			Description: "mcpforge usage help",
			Messages: []mcp.PromptMessage{
				{
					Role: mcp.RoleUser,
					Content: mcp.TextContent{
						Type: "text",
						Text: text,
					},
				},
			},
		}, nil
	})
}
