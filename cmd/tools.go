package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/spachava753/toolbridge/internal/commands"
)

var (
	toolsOpenAI    bool
	toolsAnthropic bool
	toolsGemini    bool
)

// toolsCmd represents the tools command
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Show the built-in tools",
	Long: `Render the enabled built-in tools and their parameter schemas as markdown,
or export them as OpenAI function definitions, Anthropic tool params or a
Gemini tool.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if countSet(toolsOpenAI, toolsAnthropic, toolsGemini) > 1 {
			return errors.New("--openai, --anthropic and --gemini are mutually exclusive")
		}
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		format := commands.ToolsMarkdown
		switch {
		case toolsOpenAI:
			format = commands.ToolsOpenAI
		case toolsAnthropic:
			format = commands.ToolsAnthropic
		case toolsGemini:
			format = commands.ToolsGemini
		}
		return commands.Tools(cmd.Context(), commands.ToolsOptions{
			Config:   cfg,
			Format:   format,
			Renderer: commands.NewRenderer(),
			Writer:   cmd.OutOrStdout(),
		})
	},
}

func countSet(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsOpenAI, "openai", false, "Export OpenAI function definitions as JSON")
	toolsCmd.Flags().BoolVar(&toolsAnthropic, "anthropic", false, "Export Anthropic tool params as JSON")
	toolsCmd.Flags().BoolVar(&toolsGemini, "gemini", false, "Export a Gemini tool with function declarations as JSON")
	rootCmd.AddCommand(toolsCmd)
}
