package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spachava753/toolbridge/internal/commands"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage toolbridge configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to path, or to ./toolbridge.yaml when one
exists there and the user config directory otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) > 0 {
			path = args[0]
		}
		return commands.ConfigInit(cmd.Context(), commands.ConfigInitOptions{
			Path:      path,
			Overwrite: configInitForce,
			Writer:    cmd.OutOrStdout(),
		})
	},
}

var configLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		return commands.ConfigLint(cmd.Context(), commands.ConfigLintOptions{
			Config: *cfg,
			Path:   path,
			Writer: cmd.OutOrStdout(),
		})
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configLintCmd)
	rootCmd.AddCommand(configCmd)
}
