package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spachava753/toolbridge/internal/provider"
	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
)

// MCPListServersOptions contains parameters for listing remote MCP servers
type MCPListServersOptions struct {
	MCPServers map[string]provider.RemoteConfig
	Writer     io.Writer
}

// MCPListServers lists all configured remote MCP servers
func MCPListServers(_ context.Context, opts MCPListServersOptions) error {
	if len(opts.MCPServers) == 0 {
		fmt.Fprintln(opts.Writer, "No MCP servers configured.")
		return nil
	}

	names := make([]string, 0, len(opts.MCPServers))
	for name := range opts.MCPServers {
		names = append(names, name)
	}
	slices.Sort(names)

	fmt.Fprintln(opts.Writer, "Configured MCP Servers:")
	for _, name := range names {
		server := opts.MCPServers[name]
		timeout := server.Timeout
		if timeout == 0 {
			timeout = 30
		}
		fmt.Fprintf(opts.Writer, "- %s (Type: %s, Timeout: %ds)\n", name, server.Kind(), timeout)

		if server.Kind() == provider.RemoteStdio {
			fmt.Fprintf(opts.Writer, "  Command: %s\n", strings.TrimSpace(server.Command+" "+strings.Join(server.Args, " ")))
			if len(server.Env) > 0 {
				keys := make([]string, 0, len(server.Env))
				for k := range server.Env {
					keys = append(keys, k)
				}
				slices.Sort(keys)
				fmt.Fprintln(opts.Writer, "  Environment Variables:")
				for _, k := range keys {
					fmt.Fprintf(opts.Writer, "    %s=%s\n", k, server.Env[k])
				}
			}
		}
		if server.URL != "" {
			fmt.Fprintf(opts.Writer, "  URL: %s\n", server.URL)
		}
	}
	return nil
}

func connectRemote(ctx context.Context, servers map[string]provider.RemoteConfig, name string) (*provider.Remote, error) {
	if len(servers) == 0 {
		return nil, fmt.Errorf("no MCP servers configured")
	}
	cfg, ok := servers[name]
	if !ok {
		return nil, fmt.Errorf("server '%s' not found in configuration", name)
	}
	remote := provider.NewRemote(cfg)
	if err := remote.Start(ctx); err != nil {
		return nil, err
	}
	return remote, nil
}

// MCPListToolsOptions contains parameters for listing a remote server's tools
type MCPListToolsOptions struct {
	MCPServers map[string]provider.RemoteConfig
	ServerName string
	Renderer   Renderer
	Writer     io.Writer
}

// MCPListTools lists tools available on a remote MCP server
func MCPListTools(ctx context.Context, opts MCPListToolsOptions) error {
	remote, err := connectRemote(ctx, opts.MCPServers, opts.ServerName)
	if err != nil {
		return err
	}
	defer remote.Stop(ctx)

	tools, err := remote.RemoteTools(ctx)
	if err != nil {
		return err
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# Available tools on server '%s'\n\n", opts.ServerName)
	fmt.Fprintf(&md, "**Total tools:** %d\n\n", len(tools))
	if len(tools) == 0 {
		md.WriteString("*No tools to display.*\n")
	}
	for _, tool := range tools {
		fmt.Fprintf(&md, "### `%s`\n", tool.Name)
		md.WriteString(tool.Description + "\n\n")
		if tool.InputSchema != nil {
			md.WriteString("**Input Schema:**\n\n")
			var schemaJSON bytes.Buffer
			encoder := json.NewEncoder(&schemaJSON)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(tool.InputSchema); err != nil {
				md.WriteString("```json\nError encoding schema: " + err.Error() + "\n```\n\n")
			} else {
				md.WriteString("```json\n" + schemaJSON.String() + "```\n\n")
			}
		}
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer = &PlainTextRenderer{}
	}
	rendered, err := renderer.Render(md.String())
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	fmt.Fprint(opts.Writer, rendered)
	return nil
}

// MCPCallToolOptions contains parameters for calling a tool on a remote server
type MCPCallToolOptions struct {
	MCPServers map[string]provider.RemoteConfig
	ServerName string
	ToolName   string
	// ToolArgs is a JSON object; empty means no arguments
	ToolArgs string
	Timeout  time.Duration
	Writer   io.Writer
}

// MCPCallTool calls a tool on a remote MCP server through the remote provider
// and prints its text content. A tool-level error is returned after its text
// is printed.
func MCPCallTool(ctx context.Context, opts MCPCallToolOptions) error {
	args := value.Object{}
	if strings.TrimSpace(opts.ToolArgs) != "" {
		parsed, err := value.ParseObject([]byte(opts.ToolArgs))
		if err != nil {
			return fmt.Errorf("invalid tool arguments: %w", err)
		}
		args = parsed
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	remote, err := connectRemote(ctx, opts.MCPServers, opts.ServerName)
	if err != nil {
		return err
	}
	defer remote.Stop(ctx)

	res, err := remote.ExecuteTool(ctx, opts.ToolName, args)
	if err != nil {
		return err
	}
	printResult(opts.Writer, res)
	if res.IsError {
		return fmt.Errorf("tool %s returned an error", opts.ToolName)
	}
	return nil
}

func printResult(w io.Writer, res *types.ToolCallResult) {
	for _, c := range res.Content {
		switch c.Type {
		case types.ContentText:
			fmt.Fprintln(w, c.Text)
		case types.ContentImage:
			if c.Source != nil {
				fmt.Fprintf(w, "[image %s, %d base64 bytes]\n", c.Source.MediaType, len(c.Source.Data))
			}
		}
	}
}
