package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spachava753/toolbridge/internal/config"
	"github.com/spachava753/toolbridge/internal/convert"
	"github.com/spachava753/toolbridge/internal/integration"
	"github.com/spachava753/toolbridge/internal/provider"
	"github.com/spachava753/toolbridge/internal/types"
)

// Tool export formats
const (
	ToolsMarkdown  = "markdown"
	ToolsOpenAI    = "openai"
	ToolsAnthropic = "anthropic"
	ToolsGemini    = "gemini"
)

// ToolsOptions contains parameters for listing the built-in tools
type ToolsOptions struct {
	Config *config.Config
	// Format is one of the Tools* constants; empty means ToolsMarkdown
	Format   string
	Renderer Renderer
	Writer   io.Writer
}

// Tools renders the enabled built-in tools as markdown or exports them as
// OpenAI, Anthropic or Gemini tool definitions.
func Tools(ctx context.Context, opts ToolsOptions) error {
	f, err := integration.NewDefault(ctx, opts.Config, integration.WithFactory(provider.MemoryFactory))
	if err != nil {
		return err
	}
	defer f.Close(ctx)

	var out any
	switch opts.Format {
	case ToolsOpenAI:
		out, err = f.OpenAIFunctions()
	case ToolsAnthropic:
		out, err = f.AnthropicTools()
	case ToolsGemini:
		out, err = f.GeminiTool()
	case ToolsMarkdown, "":
		md, err := toolsMarkdown(f.Registry().List())
		if err != nil {
			return err
		}
		renderer := opts.Renderer
		if renderer == nil {
			renderer = &PlainTextRenderer{}
		}
		rendered, err := renderer.Render(md)
		if err != nil {
			return fmt.Errorf("rendering tools: %w", err)
		}
		_, err = fmt.Fprint(opts.Writer, rendered)
		return err
	default:
		return fmt.Errorf("unknown tools format %q", opts.Format)
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tools: %w", err)
	}
	_, err = fmt.Fprintln(opts.Writer, string(data))
	return err
}

func toolsMarkdown(defs []types.ToolDefinition) (string, error) {
	var b strings.Builder
	b.WriteString("# Tools\n\n")
	if len(defs) == 0 {
		b.WriteString("No tools enabled.\n")
		return b.String(), nil
	}
	for _, def := range defs {
		fmt.Fprintf(&b, "## %s\n\n", def.Name)
		if def.Description != "" {
			b.WriteString(def.Description + "\n\n")
		}
		schema, err := convert.SchemaToMap(def.ParamSchema)
		if err != nil {
			return "", fmt.Errorf("tool %s: %w", def.Name, err)
		}
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return "", fmt.Errorf("tool %s: %w", def.Name, err)
		}
		b.WriteString("```json\n")
		b.Write(data)
		b.WriteString("\n```\n\n")
	}
	return b.String(), nil
}
