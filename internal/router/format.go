package router

import (
	"encoding/json"
	"strings"

	"github.com/spachava753/toolbridge/internal/convert"
	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
)

// DetectFormat classifies a tool-use payload. Text containing both '<' and
// '>' is XML. Parsed JSON with function_call or tool_calls is OpenAI, with
// type "tool_use" is neutral, and anything else parseable is JSON. Text that
// does not parse falls back to XML.
func DetectFormat(content any) types.ToolUseFormat {
	switch c := content.(type) {
	case string:
		return detectText(c)
	case []byte:
		return detectText(string(c))
	case types.NeutralToolUseRequest, *types.NeutralToolUseRequest:
		return types.FormatNeutral
	case convert.OpenAIRequest, *convert.OpenAIRequest:
		return types.FormatOpenAI
	case value.Object:
		return detectObject(c.Any(), true)
	case map[string]any:
		return detectObject(c, true)
	}

	data, err := json.Marshal(content)
	if err != nil {
		return types.FormatJSON
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return types.FormatJSON
	}
	return detectObject(m, true)
}

func detectText(s string) types.ToolUseFormat {
	if strings.Contains(s, "<") && strings.Contains(s, ">") {
		return types.FormatXML
	}
	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return types.FormatXML
	}
	m, ok := parsed.(map[string]any)
	if !ok {
		return types.FormatJSON
	}
	return detectObject(m, false)
}

// detectObject checks for the OpenAI keys by presence when byKey is set,
// and by truthiness of their values otherwise.
func detectObject(m map[string]any, byKey bool) types.ToolUseFormat {
	fc, hasFC := m["function_call"]
	tc, hasTC := m["tool_calls"]
	if byKey && (hasFC || hasTC) || truthy(fc) || truthy(tc) {
		return types.FormatOpenAI
	}
	if m["type"] == types.TypeToolUse {
		return types.FormatNeutral
	}
	return types.FormatJSON
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	}
	return true
}
