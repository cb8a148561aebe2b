package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"mcpforge/internal/registry"
)

var (
	createDescription string
	createTemplate    string
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	nameStyle   = lipgloss.NewStyle().Bold(true)
	stateStyles = map[registry.State]lipgloss.Style{
		registry.StateDefined:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		registry.StateScaffolded: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		registry.StateRemoved:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true),
	}
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create and scaffold a new server project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildCore()
		if err != nil {
			return err
		}
		name := args[0]

		if _, err := c.registry.Create(name, createDescription, createTemplate); err != nil {
			return err
		}
		rec, err := c.registry.Scaffold(name)
		if err != nil {
			return fmt.Errorf("record created but scaffold failed, rerun create to retry: %w", err)
		}
		if err := c.registrar.Register(name, rec.Location); err != nil {
			c.logger.Warn("Client registration failed", "server", name, "error", err)
		}

		fmt.Printf("Created %s at %s\n", nameStyle.Render(rec.Name), rec.Location)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all managed server projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildCore()
		if err != nil {
			return err
		}

		records := c.registry.List()
		if len(records) == 0 {
			fmt.Println(dimStyle.Render("No managed servers yet. Create one with: mcpforge create <name>"))
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%-24s %-12s %-6s %s", "NAME", "STATE", "TOOLS", "LOCATION")))
		for _, rec := range records {
			style, ok := stateStyles[rec.State]
			if !ok {
				style = lipgloss.NewStyle()
			}
			fmt.Printf("%s %s %-6d %s\n",
				nameStyle.Render(fmt.Sprintf("%-24s", rec.Name)),
				style.Render(fmt.Sprintf("%-12s", string(rec.State))),
				rec.ToolCount(),
				dimStyle.Render(rec.Location),
			)
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a server project and mark its record removed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildCore()
		if err != nil {
			return err
		}
		name := args[0]

		rec, err := c.registry.Get(name)
		if err != nil {
			return err
		}
		if err := c.registry.Remove(name); err != nil {
			return err
		}
		if err := c.registrar.Unregister(rec.Location); err != nil {
			c.logger.Warn("Client unregistration failed", "server", name, "error", err)
		}

		fmt.Printf("Removed %s (record retained, purge with: mcpforge purge %s)\n", nameStyle.Render(name), name)
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge <name>",
	Short: "Delete a removed server's tombstone record, freeing its name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildCore()
		if err != nil {
			return err
		}
		if err := c.registry.Purge(args[0]); err != nil {
			return err
		}
		fmt.Printf("Purged %s\n", nameStyle.Render(args[0]))
		return nil
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available project template kinds",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildCore()
		if err != nil {
			return err
		}

		var b strings.Builder
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-12s %s", "KIND", "DESCRIPTION")))
		b.WriteString("\n")
		for _, t := range c.library.Kinds() {
			b.WriteString(fmt.Sprintf("%s %s\n", nameStyle.Render(fmt.Sprintf("%-12s", t.Kind)), t.Description))
		}
		fmt.Print(b.String())
		return nil
	},
}
