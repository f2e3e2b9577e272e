package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spachava753/toolbridge/internal/config"
	"github.com/spachava753/toolbridge/internal/version"
)

var (
	configPath     string
	configOverride string
	verbose        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "toolbridge",
	Short: "Bridge model tool calls to MCP tools",
	Long: `toolbridge routes tool calls emitted by language models in XML, JSON or
OpenAI function-call form to tools served over the Model Context Protocol,
and converts the results back into the caller's format.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			fmt.Fprintf(cmd.OutOrStdout(), "toolbridge version %s\n", version.Get())
			return nil
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Listen for cancellation
	// - in shells for user-initiated interruption SIGINT
	// - in system sent/container environments, SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the config selected by --config, falling back to the
// defaults when no file exists in the standard locations, then applies
// --override.
func loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	if path != "" {
		slog.Debug("loaded configuration", "path", path)
	}
	if configOverride != "" {
		if cfg, err = cfg.Patch([]byte(configOverride)); err != nil {
			return nil, "", err
		}
	}
	return cfg, path, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration file (default: ./toolbridge.yaml, then the user config directory)")
	rootCmd.PersistentFlags().StringVar(&configOverride, "override", "", `JSON merge patch applied to the configuration, e.g. '{"journal":{"path":"calls.db"}}'`)
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.Flags().BoolP("version", "v", false, "Print the version number and exit")
}
