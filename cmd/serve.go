package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spachava753/toolbridge/internal/commands"
	"github.com/spachava753/toolbridge/internal/transport"
)

var (
	serveTransport string
	servePort      int
	serveHost      string
	serveExternal  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the built-in tools over MCP",
	Long: `Start the embedded MCP server with the built-in tools enabled in the
configuration. The sse transport listens on HTTP and serves both the SSE and
streamable HTTP endpoints; the stdio transport speaks MCP on stdin/stdout.`,
	Example: `  # Serve on a random local port
  toolbridge serve

  # Serve on a fixed port reachable from other hosts
  toolbridge serve --port 8765 --external

  # Serve over stdio for an MCP client that spawns toolbridge
  toolbridge serve --transport stdio`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("transport") {
			cfg.Provider.Transport = serveTransport
			if serveTransport == transport.KindSSE {
				cfg.Provider.SSE = cfg.Provider.SSE.WithDefaults()
			}
		}
		if flags.Changed("port") {
			cfg.Provider.SSE.Port = servePort
		}
		if flags.Changed("host") {
			cfg.Provider.SSE.Hostname = serveHost
		}
		if flags.Changed("external") {
			cfg.Provider.SSE.AllowExternalConnections = serveExternal
		}

		// stdout carries the protocol in stdio mode
		out := cmd.OutOrStdout()
		if cfg.Provider.Transport == transport.KindStdio {
			out = os.Stderr
		}
		return commands.Serve(cmd.Context(), commands.ServeOptions{
			Config: cfg,
			Writer: out,
		})
	},
}

func init() {
	serveCmd.Flags().Var(newEnumValue(&serveTransport, transport.KindSSE, transport.KindSSE, transport.KindStdio), "transport", "Transport to serve on (sse or stdio)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port for the sse transport (0 picks a free port)")
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Hostname advertised in the server URL")
	serveCmd.Flags().BoolVar(&serveExternal, "external", false, "Listen on all interfaces instead of the hostname")
	rootCmd.AddCommand(serveCmd)
}
