package convert

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
)

// Arguments is the JSON-encoded argument string of an OpenAI call. Some
// providers send a JSON object instead of a string; both decode into the
// same text.
type Arguments string

func (a *Arguments) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Arguments(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	*a = Arguments(data)
	return nil
}

// OpenAIFunctionCall is the legacy `function_call` shape.
type OpenAIFunctionCall struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Arguments Arguments `json:"arguments"`
}

// OpenAIToolCall is one entry of `tool_calls`.
type OpenAIToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function OpenAIFunctionCall `json:"function"`
}

// OpenAIRequest holds either a function_call or a tool_calls array.
type OpenAIRequest struct {
	FunctionCall *OpenAIFunctionCall `json:"function_call,omitempty"`
	ToolCalls    []OpenAIToolCall    `json:"tool_calls,omitempty"`
}

// OpenAIToolResult is the `role: tool` message sent back to the model.
type OpenAIToolResult struct {
	Role       string `json:"role"`
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
}

// ParseOpenAIRequest decodes a JSON OpenAI request.
func ParseOpenAIRequest(data []byte) (OpenAIRequest, error) {
	var req OpenAIRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return OpenAIRequest{}, types.NewConversionError(types.FormatOpenAI, "invalid JSON", err)
	}
	return req, nil
}

// OpenAIToNeutral converts a function_call, or else the first function entry
// of tool_calls. Malformed argument JSON becomes {"raw": <original>}.
func OpenAIToNeutral(req OpenAIRequest) (types.NeutralToolUseRequest, error) {
	var call *OpenAIFunctionCall
	var id string
	switch {
	case req.FunctionCall != nil:
		call = req.FunctionCall
		id = call.ID
	default:
		for i := range req.ToolCalls {
			if req.ToolCalls[i].Type == "function" {
				call = &req.ToolCalls[i].Function
				id = req.ToolCalls[i].ID
				break
			}
		}
	}
	if call == nil {
		return types.NeutralToolUseRequest{}, types.NewConversionError(types.FormatOpenAI, "unrecognized function call shape", nil)
	}
	if call.Name == "" {
		return types.NeutralToolUseRequest{}, types.NewConversionError(types.FormatOpenAI, "function call has no name",
			&types.InvalidRequestFormatError{Missing: []string{"name"}})
	}
	if id == "" {
		id = SynthesizeID(call.Name)
	}
	return types.NewToolUse(id, call.Name, parseArguments(string(call.Arguments))), nil
}

func parseArguments(args string) value.Object {
	if strings.TrimSpace(args) == "" {
		return value.Object{}
	}
	obj, err := value.ParseObject([]byte(args))
	if err != nil {
		return value.Object{"raw": value.Str(args)}
	}
	return obj
}

// NeutralToOpenAI renders a request as a tool_calls entry.
func NeutralToOpenAI(req types.NeutralToolUseRequest) (OpenAIToolCall, error) {
	input := req.Input
	if input == nil {
		input = value.Object{}
	}
	args, err := json.Marshal(input)
	if err != nil {
		return OpenAIToolCall{}, types.NewConversionError(types.FormatOpenAI, "marshal arguments", err)
	}
	return OpenAIToolCall{
		ID:   req.ID,
		Type: "function",
		Function: OpenAIFunctionCall{
			Name:      req.Name,
			Arguments: Arguments(args),
		},
	}, nil
}

// NeutralResultToOpenAI flattens text items into one newline-joined string.
func NeutralResultToOpenAI(res types.NeutralToolResult) OpenAIToolResult {
	return OpenAIToolResult{
		Role:       "tool",
		ToolCallID: res.ToolUseID,
		Content:    res.Text(),
	}
}
