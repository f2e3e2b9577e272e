package provider

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spachava753/toolbridge/internal/convert"
	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
)

// toMCPTool renders def as an MCP tool. The input schema always carries
// type object, which the SDK requires.
func toMCPTool(def types.ToolDefinition) (*mcp.Tool, error) {
	schema, err := convert.SchemaToMap(def.ParamSchema)
	if err != nil {
		return nil, err
	}
	schema["type"] = "object"
	return &mcp.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: schema,
	}, nil
}

// argsFromRaw decodes the raw arguments of an MCP call. Absent arguments
// decode to an empty object.
func argsFromRaw(raw json.RawMessage) (value.Object, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return value.Object{}, nil
	}
	return value.ParseObject(raw)
}

func toMCPResult(res *types.ToolCallResult) *mcp.CallToolResult {
	out := &mcp.CallToolResult{IsError: res.IsError, Content: make([]mcp.Content, 0, len(res.Content))}
	for _, c := range res.Content {
		switch c.Type {
		case types.ContentImage:
			if c.Source == nil {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(c.Source.Data)
			if err != nil {
				out.Content = append(out.Content, &mcp.TextContent{Text: fmt.Sprintf("invalid image data: %v", err)})
				continue
			}
			out.Content = append(out.Content, &mcp.ImageContent{Data: data, MIMEType: c.Source.MediaType})
		default:
			out.Content = append(out.Content, &mcp.TextContent{Text: c.Text})
		}
	}
	return out
}

// fromMCPResult maps an MCP result onto the local result type. Content kinds
// without a local counterpart are carried as their JSON encoding.
func fromMCPResult(res *mcp.CallToolResult) *types.ToolCallResult {
	out := &types.ToolCallResult{IsError: res.IsError, Content: make([]types.Content, 0, len(res.Content))}
	for _, c := range res.Content {
		switch c := c.(type) {
		case *mcp.TextContent:
			out.Content = append(out.Content, types.TextContent(c.Text))
		case *mcp.ImageContent:
			out.Content = append(out.Content, types.ImageContent(c.MIMEType, base64.StdEncoding.EncodeToString(c.Data)))
		default:
			data, err := json.Marshal(c)
			if err != nil {
				out.Content = append(out.Content, types.TextContent(fmt.Sprintf("unsupported content: %v", err)))
				continue
			}
			out.Content = append(out.Content, types.TextContent(string(data)))
		}
	}
	return out
}
