package router

import (
	"encoding/json"
	"fmt"

	"github.com/spachava753/toolbridge/internal/convert"
	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
)

// codec converts one format's request into the neutral form and a neutral
// result back into that format.
type codec struct {
	toNeutral   func(content any) (types.NeutralToolUseRequest, error)
	fromNeutral func(res types.NeutralToolResult) (any, error)
}

var codecs = map[types.ToolUseFormat]codec{
	types.FormatXML: {
		toNeutral: func(content any) (types.NeutralToolUseRequest, error) {
			s, err := asText(types.FormatXML, content)
			if err != nil {
				return types.NeutralToolUseRequest{}, err
			}
			return convert.XMLToNeutral(s)
		},
		fromNeutral: func(res types.NeutralToolResult) (any, error) {
			return convert.NeutralResultToXML(res), nil
		},
	},
	types.FormatJSON: {
		toNeutral: func(content any) (types.NeutralToolUseRequest, error) {
			return objectToNeutral(types.FormatJSON, content)
		},
		fromNeutral: func(res types.NeutralToolResult) (any, error) {
			return convert.NeutralResultToJSON(res)
		},
	},
	types.FormatOpenAI: {
		toNeutral: openAIToNeutral,
		fromNeutral: func(res types.NeutralToolResult) (any, error) {
			return convert.NeutralResultToOpenAI(res), nil
		},
	},
	types.FormatNeutral: {
		toNeutral: func(content any) (types.NeutralToolUseRequest, error) {
			return objectToNeutral(types.FormatNeutral, content)
		},
		fromNeutral: func(res types.NeutralToolResult) (any, error) {
			return res, nil
		},
	},
}

func asText(format types.ToolUseFormat, content any) (string, error) {
	switch c := content.(type) {
	case string:
		return c, nil
	case []byte:
		return string(c), nil
	}
	return "", types.NewConversionError(format, fmt.Sprintf("expected text content, got %T", content), nil)
}

// objectToNeutral accepts serialized JSON, a decoded object or an already
// neutral request.
func objectToNeutral(format types.ToolUseFormat, content any) (types.NeutralToolUseRequest, error) {
	switch c := content.(type) {
	case types.NeutralToolUseRequest:
		return c, convert.ValidateNeutral(c)
	case *types.NeutralToolUseRequest:
		if c == nil {
			return types.NeutralToolUseRequest{}, types.NewConversionError(format, "nil request", nil)
		}
		return *c, convert.ValidateNeutral(*c)
	case string, []byte:
		s, _ := asText(format, c)
		obj, err := value.ParseObject([]byte(s))
		if err != nil {
			return types.NeutralToolUseRequest{}, types.NewConversionError(format, "invalid JSON", err)
		}
		return convert.ObjectToNeutral(format, obj)
	case value.Object:
		return convert.ObjectToNeutral(format, c)
	case map[string]any:
		obj, err := value.ObjectFromAny(c)
		if err != nil {
			return types.NeutralToolUseRequest{}, types.NewConversionError(format, "unsupported object", err)
		}
		return convert.ObjectToNeutral(format, obj)
	}
	return types.NeutralToolUseRequest{}, types.NewConversionError(format, fmt.Sprintf("unsupported content type %T", content), nil)
}

func openAIToNeutral(content any) (types.NeutralToolUseRequest, error) {
	var req convert.OpenAIRequest
	switch c := content.(type) {
	case convert.OpenAIRequest:
		req = c
	case *convert.OpenAIRequest:
		if c == nil {
			return types.NeutralToolUseRequest{}, types.NewConversionError(types.FormatOpenAI, "nil request", nil)
		}
		req = *c
	case string, []byte:
		s, _ := asText(types.FormatOpenAI, c)
		parsed, err := convert.ParseOpenAIRequest([]byte(s))
		if err != nil {
			return types.NeutralToolUseRequest{}, err
		}
		req = parsed
	default:
		data, err := json.Marshal(content)
		if err != nil {
			return types.NeutralToolUseRequest{}, types.NewConversionError(types.FormatOpenAI, "marshal request", err)
		}
		parsed, err := convert.ParseOpenAIRequest(data)
		if err != nil {
			return types.NeutralToolUseRequest{}, err
		}
		req = parsed
	}
	return convert.OpenAIToNeutral(req)
}
