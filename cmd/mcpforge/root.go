package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mcpforge/internal/clientconfig"
	"mcpforge/internal/config"
	"mcpforge/internal/logging"
	"mcpforge/internal/mcp"
	"mcpforge/internal/registry"
	"mcpforge/internal/scaffold"
	"mcpforge/pkg/fileops"
)

var rootCmd = &cobra.Command{
	Use:   "mcpforge",
	Short: "Manage locally scaffolded MCP server projects",
	Long: `mcpforge creates, lists and removes managed MCP server projects and
exposes atomic file mutation tools over the Model Context Protocol.

Run without arguments to serve MCP on stdio.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(templatesCmd)

	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "description of the server")
	createCmd.Flags().StringVarP(&createTemplate, "template", "t", scaffold.DefaultKind, "project template kind")
}

// core bundles the components shared by the registry-facing commands.
type core struct {
	cfg       *config.Config
	logger    *logging.AppLogger
	registry  *registry.Registry
	registrar *clientconfig.Registrar
	library   *scaffold.Library
}

// buildCore loads configuration and wires the registry stack, mirroring
// what the MCP server does at startup.
func buildCore() (*core, error) {
	logger := logging.NewAppLogger()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.EnsureServersDir(); err != nil {
		return nil, fmt.Errorf("failed to prepare servers directory: %w", err)
	}

	writer := fileops.NewWriter()
	library := scaffold.NewLibrary(cfg.TemplatesDir, logger)
	scaffolder := scaffold.NewScaffolder(writer, library, logger)
	store := registry.NewStore(cfg.IndexPath, writer, logger)

	reg, err := registry.New(store, scaffolder, cfg.ServersDir, logger)
	if err != nil {
		return nil, err
	}

	return &core{
		cfg:       cfg,
		logger:    logger,
		registry:  reg,
		registrar: clientconfig.NewRegistrar(cfg.ClientConfigPath, writer, logger),
		library:   library,
	}, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the management tools over MCP on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	logger := logging.NewAppLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	server := mcp.NewServer(cfg, logger)
	return server.Start()
}
