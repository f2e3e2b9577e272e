package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/spachava753/toolbridge/internal/commands"
)

var (
	callServer  string
	callTool    string
	callArgs    string
	callTimeout time.Duration
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Talk to the remote MCP servers in the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// mcpListServersCmd represents the 'mcp list-servers' subcommand
var mcpListServersCmd = &cobra.Command{
	Use:     "list-servers",
	Short:   "List configured MCP servers",
	Aliases: []string{"ls-servers"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		return commands.MCPListServers(cmd.Context(), commands.MCPListServersOptions{
			MCPServers: cfg.Remote.Servers,
			Writer:     cmd.OutOrStdout(),
		})
	},
}

// mcpListToolsCmd represents the 'mcp list-tools' subcommand
var mcpListToolsCmd = &cobra.Command{
	Use:     "list-tools [server_name]",
	Short:   "List tools available on an MCP server",
	Aliases: []string{"ls-tools"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		return commands.MCPListTools(cmd.Context(), commands.MCPListToolsOptions{
			MCPServers: cfg.Remote.Servers,
			ServerName: args[0],
			Renderer:   commands.NewRenderer(),
			Writer:     cmd.OutOrStdout(),
		})
	},
}

// callCmd calls a tool on a remote server through the remote provider
var callCmd = &cobra.Command{
	Use:     "call",
	Short:   "Call a tool on a configured remote MCP server",
	Example: `  toolbridge call --server docs --tool search --args '{"query":"context"}'`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		return commands.MCPCallTool(cmd.Context(), commands.MCPCallToolOptions{
			MCPServers: cfg.Remote.Servers,
			ServerName: callServer,
			ToolName:   callTool,
			ToolArgs:   callArgs,
			Timeout:    callTimeout,
			Writer:     cmd.OutOrStdout(),
		})
	},
}

func init() {
	callCmd.Flags().StringVar(&callServer, "server", "", "Name of the server in remote.servers")
	callCmd.Flags().StringVar(&callTool, "tool", "", "Tool to call")
	callCmd.Flags().StringVar(&callArgs, "args", "", "Tool arguments as a JSON object")
	callCmd.Flags().DurationVar(&callTimeout, "timeout", time.Minute, "Overall timeout for the call")
	_ = callCmd.MarkFlagRequired("server")
	_ = callCmd.MarkFlagRequired("tool")

	mcpCmd.AddCommand(mcpListServersCmd)
	mcpCmd.AddCommand(mcpListToolsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(callCmd)
}
