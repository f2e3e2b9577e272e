package cmd

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spachava753/toolbridge/internal/commands"
)

var routeFormat string

// payloadSource returns the payload given as arguments, or stdin when it is
// piped. A terminal stdin with no arguments is an error rather than a hang.
func payloadSource(args []string) (string, io.Reader, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil, nil
	}
	if commands.IsInputTTY() {
		return "", nil, errors.New("no payload given: pass it as an argument or pipe it on stdin")
	}
	return "", os.Stdin, nil
}

var routeCmd = &cobra.Command{
	Use:   "route [payload]",
	Short: "Route one tool call through the built-in tools",
	Long: `Read a tool call in XML, JSON, OpenAI or neutral form, execute it with the
built-in tools in-process and print the result in the same format. The
format is detected unless --format is given.`,
	Example: `  toolbridge route '<read_file><path>go.mod</path></read_file>'
  echo '{"function_call":{"name":"list_files","arguments":"{}"}}' | toolbridge route`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, input, err := payloadSource(args)
		if err != nil {
			return err
		}
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		return commands.Route(cmd.Context(), commands.RouteOptions{
			Config:  cfg,
			Content: content,
			Input:   input,
			Format:  routeFormat,
			Writer:  cmd.OutOrStdout(),
		})
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect [payload]",
	Short: "Print the detected format of a tool call",
	RunE: func(cmd *cobra.Command, args []string) error {
		content, input, err := payloadSource(args)
		if err != nil {
			return err
		}
		return commands.Detect(cmd.Context(), commands.DetectOptions{
			Content: content,
			Input:   input,
			Writer:  cmd.OutOrStdout(),
		})
	},
}

func init() {
	routeCmd.Flags().VarP(newEnumValue(&routeFormat, "", "xml", "json", "openai", "neutral"), "format", "f", "Payload format: xml, json, openai or neutral (default: detect)")
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(detectCmd)
}
