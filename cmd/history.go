package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spachava753/toolbridge/internal/commands"
	"github.com/spachava753/toolbridge/internal/journal"
)

var (
	historyTool  string
	historyLimit int
)

// openJournal opens the on-disk journal named in the configuration.
func openJournal(cmd *cobra.Command) (*journal.Sqlite, func() error, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Journal.Path == "" {
		return nil, nil, errors.New("journal.path is not set; the journal is kept in memory only")
	}
	j, closeDB, err := journal.Open(cmd.Context(), cfg.Journal.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening journal: %w", err)
	}
	return j, closeDB, nil
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List routed tool calls recorded in the journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		j, closeDB, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer closeDB()
		return commands.History(cmd.Context(), commands.HistoryOptions{
			Journal:  j,
			ToolName: historyTool,
			Limit:    historyLimit,
			Writer:   cmd.OutOrStdout(),
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the request and response of one recorded tool call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j, closeDB, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer closeDB()
		return commands.HistoryShow(cmd.Context(), commands.HistoryShowOptions{
			Journal: j,
			ID:      args[0],
			Writer:  cmd.OutOrStdout(),
		})
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyTool, "tool", "", "Only show calls to this tool")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of entries (0 for all)")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
