package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/spachava753/toolbridge/internal/commands"
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Execute tool calls embedded in model output read from stdin",
	Long: `Copy model output from stdin to stdout as it arrives. Calls to enabled
built-in tools, written as XML elements or {"type":"tool_use"} objects, are
executed when complete and their results are written right after them.`,
	Example: `  some-model-cli --raw | toolbridge stream`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if commands.IsInputTTY() {
			return errors.New("stream reads model output from stdin; pipe it in")
		}
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		return commands.Stream(cmd.Context(), commands.StreamOptions{
			Config: cfg,
			Input:  os.Stdin,
			Writer: cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(streamCmd)
}
