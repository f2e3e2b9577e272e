package convert

import (
	"encoding/json"
	"fmt"

	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
)

// JSONToNeutral parses a serialized neutral tool-use object.
func JSONToNeutral(s string) (types.NeutralToolUseRequest, error) {
	obj, err := value.ParseObject([]byte(s))
	if err != nil {
		return types.NeutralToolUseRequest{}, types.NewConversionError(types.FormatJSON, "invalid JSON", err)
	}
	return ObjectToNeutral(types.FormatJSON, obj)
}

// ObjectToNeutral validates a decoded neutral tool-use object. format is
// recorded on any returned error.
func ObjectToNeutral(format types.ToolUseFormat, obj value.Object) (types.NeutralToolUseRequest, error) {
	var missing []string
	typ, _ := obj["type"].AsString()
	if typ == "" {
		missing = append(missing, "type")
	}
	id, _ := obj["id"].AsString()
	if id == "" {
		missing = append(missing, "id")
	}
	name, _ := obj["name"].AsString()
	if name == "" {
		missing = append(missing, "name")
	}
	input, ok := obj["input"]
	if !ok || input.Kind() != value.Map {
		missing = append(missing, "input")
	}
	if len(missing) > 0 {
		return types.NeutralToolUseRequest{}, types.NewConversionError(format, "missing required fields",
			&types.InvalidRequestFormatError{Missing: missing})
	}
	if typ != types.TypeToolUse {
		return types.NeutralToolUseRequest{}, types.NewConversionError(format,
			fmt.Sprintf("expected type %q, got %q", types.TypeToolUse, typ), nil)
	}
	return types.NewToolUse(id, name, input.Map()), nil
}

// ValidateNeutral checks a request built in Go code rather than decoded.
func ValidateNeutral(req types.NeutralToolUseRequest) error {
	var missing []string
	if req.Type == "" {
		missing = append(missing, "type")
	}
	if req.ID == "" {
		missing = append(missing, "id")
	}
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if req.Input == nil {
		missing = append(missing, "input")
	}
	if len(missing) > 0 {
		return types.NewConversionError(types.FormatNeutral, "missing required fields",
			&types.InvalidRequestFormatError{Missing: missing})
	}
	if req.Type != types.TypeToolUse {
		return types.NewConversionError(types.FormatNeutral,
			fmt.Sprintf("expected type %q, got %q", types.TypeToolUse, req.Type), nil)
	}
	return nil
}

// NeutralToJSON serializes a request.
func NeutralToJSON(req types.NeutralToolUseRequest) (string, error) {
	if req.Type == "" {
		req.Type = types.TypeToolUse
	}
	if req.Input == nil {
		req.Input = value.Object{}
	}
	b, err := json.Marshal(req)
	if err != nil {
		return "", types.NewConversionError(types.FormatJSON, "marshal request", err)
	}
	return string(b), nil
}

// JSONResultToNeutral parses a serialized neutral tool-result object. A
// missing status means success.
func JSONResultToNeutral(s string) (types.NeutralToolResult, error) {
	obj, err := value.ParseObject([]byte(s))
	if err != nil {
		return types.NeutralToolResult{}, types.NewConversionError(types.FormatJSON, "invalid JSON", err)
	}
	var missing []string
	typ, _ := obj["type"].AsString()
	if typ == "" {
		missing = append(missing, "type")
	}
	if id, _ := obj["tool_use_id"].AsString(); id == "" {
		missing = append(missing, "tool_use_id")
	}
	if c, ok := obj["content"]; !ok || c.Kind() != value.List {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return types.NeutralToolResult{}, types.NewConversionError(types.FormatJSON, "missing required fields",
			&types.InvalidRequestFormatError{Missing: missing})
	}
	if typ != types.TypeToolResult {
		return types.NeutralToolResult{}, types.NewConversionError(types.FormatJSON,
			fmt.Sprintf("expected type %q, got %q", types.TypeToolResult, typ), nil)
	}

	var res types.NeutralToolResult
	if err := json.Unmarshal([]byte(s), &res); err != nil {
		return types.NeutralToolResult{}, types.NewConversionError(types.FormatJSON, "decode result", err)
	}
	if res.Status == "" {
		res.Status = types.StatusSuccess
	}
	return res, nil
}

// NeutralResultToJSON serializes a result.
func NeutralResultToJSON(res types.NeutralToolResult) (string, error) {
	if res.Type == "" {
		res.Type = types.TypeToolResult
	}
	if res.Content == nil {
		res.Content = []types.Content{}
	}
	b, err := json.Marshal(res)
	if err != nil {
		return "", types.NewConversionError(types.FormatJSON, "marshal result", err)
	}
	return string(b), nil
}

// ResultToNeutral converts a handler result into a NeutralToolResult for
// toolUseID. The error message defaults to the first text item.
func ResultToNeutral(toolUseID string, r *types.ToolCallResult) types.NeutralToolResult {
	if r == nil {
		r = &types.ToolCallResult{}
	}
	res := types.NeutralToolResult{
		Type:      types.TypeToolResult,
		ToolUseID: toolUseID,
		Content:   r.Content,
		Status:    types.StatusSuccess,
	}
	if res.Content == nil {
		res.Content = []types.Content{}
	}
	if r.IsError {
		res.Status = types.StatusError
		msg := "Unknown error"
		if len(r.Content) > 0 && r.Content[0].Type == types.ContentText && r.Content[0].Text != "" {
			msg = r.Content[0].Text
		}
		res.Error = &types.ToolError{Message: msg}
		if details, ok := r.Metadata["details"]; ok {
			res.Error.Details = &details
		}
	}
	return res
}
