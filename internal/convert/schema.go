package convert

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
	"google.golang.org/genai"

	"github.com/spachava753/toolbridge/internal/types"
)

// emptyObjectSchema is used for definitions registered without a schema.
func emptyObjectSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
		"required":   []string{},
	}
}

// SchemaToMap renders a schema as a generic JSON object. A nil schema becomes
// an empty object schema.
func SchemaToMap(s *jsonschema.Schema) (map[string]any, error) {
	if s == nil {
		return emptyObjectSchema(), nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	if _, ok := out["type"]; !ok {
		out["type"] = "object"
	}
	return out, nil
}

// ToOpenAIFunctions maps tool definitions onto OpenAI function parameters.
func ToOpenAIFunctions(defs []types.ToolDefinition) ([]shared.FunctionDefinitionParam, error) {
	out := make([]shared.FunctionDefinitionParam, 0, len(defs))
	for _, def := range defs {
		params, err := SchemaToMap(def.ParamSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", def.Name, err)
		}
		fn := shared.FunctionDefinitionParam{
			Name:       def.Name,
			Parameters: shared.FunctionParameters(params),
		}
		fn.Description = openai.String(def.Description)
		out = append(out, fn)
	}
	return out, nil
}

// ToAnthropicTools maps tool definitions onto Anthropic tool params. The
// neutral tool_use block mirrors Anthropic's, so hosts talking to that API
// can hand results straight back.
func ToAnthropicTools(defs []types.ToolDefinition) ([]anthropic.ToolUnionParam, error) {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		params, err := SchemaToMap(def.ParamSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", def.Name, err)
		}
		schema := anthropic.ToolInputSchemaParam{Properties: params["properties"]}
		if req, ok := params["required"].([]any); ok {
			for _, r := range req {
				if s, ok := r.(string); ok {
					schema.Required = append(schema.Required, s)
				}
			}
		}
		tool := anthropic.ToolParam{
			Name:        def.Name,
			InputSchema: schema,
		}
		if def.Description != "" {
			tool.Description = anthropic.String(def.Description)
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return out, nil
}

// ToGeminiTool bundles tool definitions into a single Gemini tool. Schemas
// are passed through as raw JSON schema rather than the narrower genai.Schema.
func ToGeminiTool(defs []types.ToolDefinition) (*genai.Tool, error) {
	tool := &genai.Tool{FunctionDeclarations: make([]*genai.FunctionDeclaration, 0, len(defs))}
	for _, def := range defs {
		params, err := SchemaToMap(def.ParamSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", def.Name, err)
		}
		tool.FunctionDeclarations = append(tool.FunctionDeclarations, &genai.FunctionDeclaration{
			Name:                 def.Name,
			Description:          def.Description,
			ParametersJsonSchema: params,
		})
	}
	return tool, nil
}
