package convert

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
)

func TestXMLToNeutral(t *testing.T) {
	req, err := XMLToNeutral("<read_file>\n<path>src/main.ts</path>\n<start_line>10</start_line>\n<end_line> 20 </end_line>\n</read_file>")
	require.NoError(t, err)

	assert.Equal(t, types.TypeToolUse, req.Type)
	assert.Equal(t, "read_file", req.Name)
	assert.True(t, strings.HasPrefix(req.ID, "read_file-"))
	assert.Equal(t, value.Object{
		"path":       value.Str("src/main.ts"),
		"start_line": value.Str("10"),
		"end_line":   value.Str("20"),
	}, req.Input)
}

func TestXMLToNeutralErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no tag", "hello there"},
		{"unterminated", "<read_file><path>x</path>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := XMLToNeutral(tt.in)
			var convErr *types.ConversionError
			require.ErrorAs(t, err, &convErr)
			assert.Equal(t, types.FormatXML, convErr.Format)
		})
	}
}

func TestNeutralToXML(t *testing.T) {
	req := types.NewToolUse("id-1", "search", value.Object{
		"query": value.Str("foo"),
		"limit": value.Int(5),
		"opts":  value.MapOf(value.Object{"case": value.Boolean(true)}),
	})
	got := NeutralToXML(req)
	assert.Equal(t, "<search>\n<limit>5</limit>\n<opts>{\"case\":true}</opts>\n<query>foo</query>\n</search>", got)

	back, err := XMLToNeutral(got)
	require.NoError(t, err)
	assert.Equal(t, "search", back.Name)
	assert.Equal(t, value.Str("5"), back.Input["limit"])
}

func TestNeutralResultXMLRoundTrip(t *testing.T) {
	details := value.MapOf(value.Object{"code": value.Int(2), "why": value.Str(`said "no"`)})
	tests := []struct {
		name string
		res  types.NeutralToolResult
	}{
		{
			name: "success with text",
			res: types.NeutralToolResult{
				Type:      types.TypeToolResult,
				ToolUseID: "read_file-1",
				Status:    types.StatusSuccess,
				Content:   []types.Content{types.TextContent("line one"), types.TextContent("line two")},
			},
		},
		{
			name: "error with details and image",
			res: types.NeutralToolResult{
				Type:      types.TypeToolResult,
				ToolUseID: "call_9",
				Status:    types.StatusError,
				Content:   []types.Content{types.TextContent("failed"), types.ImageContent("image/png", "iVBORw0KGgo=")},
				Error:     &types.ToolError{Message: `bad "input"`, Details: &details},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xml := NeutralResultToXML(tt.res)
			back, err := XMLResultToNeutral(xml)
			require.NoError(t, err)

			assert.Equal(t, tt.res.ToolUseID, back.ToolUseID)
			assert.Equal(t, tt.res.Status, back.Status)
			assert.Equal(t, tt.res.Text(), back.Text())
			if tt.res.Error != nil {
				require.NotNil(t, back.Error)
				assert.Equal(t, tt.res.Error.Message, back.Error.Message)
				require.NotNil(t, back.Error.Details)
				assert.True(t, tt.res.Error.Details.Equal(*back.Error.Details))
			}
		})
	}
}

func TestXMLResultKeepsTextVerbatim(t *testing.T) {
	tests := []struct {
		name    string
		content []types.Content
	}{
		{name: "trailing newline", content: []types.Content{types.TextContent("line one\nline two\n")}},
		{name: "leading indentation", content: []types.Content{types.TextContent("  indented\n\tand tabbed")}},
		{name: "comparison operators", content: []types.Content{types.TextContent("if a<b && c>d {}")}},
		{name: "generic type", content: []types.Content{types.TextContent("Array<string> x")}},
		{name: "markup in file", content: []types.Content{types.TextContent("<div>\n  <p>hi</p>\n</div>\n")}},
		{name: "blank lines", content: []types.Content{types.TextContent("\n\nmiddle\n\n")}},
		{
			name: "text around image",
			content: []types.Content{
				types.TextContent("before\n"),
				types.ImageContent("image/png", "AAA"),
				types.TextContent("  after"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, withError := range []bool{false, true} {
				res := types.NeutralToolResult{
					Type:      types.TypeToolResult,
					ToolUseID: "read_file-7",
					Status:    types.StatusSuccess,
					Content:   tt.content,
				}
				if withError {
					res.Status = types.StatusError
					res.Error = &types.ToolError{Message: "boom"}
				}

				back, err := XMLResultToNeutral(NeutralResultToXML(res))
				require.NoError(t, err)
				assert.Equal(t, tt.content, back.Content)
				if withError {
					require.NotNil(t, back.Error)
					assert.Equal(t, "boom", back.Error.Message)
				} else {
					assert.Nil(t, back.Error)
				}
			}
		})
	}
}

func TestNeutralResultToXMLFormat(t *testing.T) {
	res := types.NeutralToolResult{
		ToolUseID: "x",
		Status:    types.StatusSuccess,
		Content:   []types.Content{types.TextContent("hi"), types.ImageContent("image/jpeg", "AAA")},
	}
	assert.Equal(t,
		"<tool_result tool_use_id=\"x\" status=\"success\">\nhi\n<image type=\"image/jpeg\" data=\"AAA\" />\n</tool_result>",
		NeutralResultToXML(res))

	back, err := XMLResultToNeutral(NeutralResultToXML(res))
	require.NoError(t, err)
	require.Len(t, back.Content, 2)
	assert.Equal(t, types.ContentImage, back.Content[1].Type)
	assert.Equal(t, "image/jpeg", back.Content[1].Source.MediaType)
	assert.Equal(t, "AAA", back.Content[1].Source.Data)
}

func TestXMLResultDefaultsAndFallbacks(t *testing.T) {
	res, err := XMLResultToNeutral(`<tool_result tool_use_id="abc">done</tool_result>`)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, res.Status)
	assert.Equal(t, "done", res.Text())

	res, err = XMLResultToNeutral(`<tool_result tool_use_id="abc" status="error"><error message="m" details="not json" /></tool_result>`)
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, value.Str("not json"), *res.Error.Details)

	_, err = XMLResultToNeutral(`<tool_result>no id</tool_result>`)
	require.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	req := types.NewToolUse("toolu_1", "execute_command", value.Object{
		"command": value.Str("ls -la"),
		"timeout": value.NumLiteral("2.50"),
		"env":     value.MapOf(value.Object{"A": value.Str("b")}),
		"args":    value.ListOf(value.Str("-a"), value.Boolean(true), value.NullValue()),
	})
	s, err := NeutralToJSON(req)
	require.NoError(t, err)

	back, err := JSONToNeutral(s)
	require.NoError(t, err)
	assert.Equal(t, req.Type, back.Type)
	assert.Equal(t, req.ID, back.ID)
	assert.Equal(t, req.Name, back.Name)
	assert.True(t, req.Input.Equal(back.Input), "input changed: %v", back.Input)
	assert.Contains(t, s, `"timeout":2.50`)
}

func TestJSONToNeutralValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		missing []string
	}{
		{"missing id and input", `{"type":"tool_use","name":"x"}`, []string{"id", "input"}},
		{"missing everything", `{}`, []string{"type", "id", "name", "input"}},
		{"input not object", `{"type":"tool_use","id":"1","name":"x","input":"y"}`, []string{"input"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JSONToNeutral(tt.in)
			var invalid *types.InvalidRequestFormatError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.missing, invalid.Missing)
		})
	}

	_, err := JSONToNeutral(`{"type":"thinking","id":"1","name":"x","input":{}}`)
	var convErr *types.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Contains(t, convErr.Reason, "expected type")

	_, err = JSONToNeutral(`not json`)
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, types.FormatJSON, convErr.Format)
}

func TestJSONResultRoundTrip(t *testing.T) {
	details := value.Str("trace")
	res := types.NeutralToolResult{
		Type:      types.TypeToolResult,
		ToolUseID: "t1",
		Status:    types.StatusError,
		Content:   []types.Content{types.TextContent("oops")},
		Error:     &types.ToolError{Message: "oops", Details: &details},
	}
	s, err := NeutralResultToJSON(res)
	require.NoError(t, err)
	back, err := JSONResultToNeutral(s)
	require.NoError(t, err)
	assert.Equal(t, res, back)

	_, err = JSONResultToNeutral(`{"type":"tool_result","content":[]}`)
	var invalid *types.InvalidRequestFormatError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"tool_use_id"}, invalid.Missing)
}

func TestOpenAIToNeutral(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantName string
		wantID   string
		input    value.Object
	}{
		{
			name:     "function_call",
			in:       `{"function_call":{"id":"fc_1","name":"get_weather","arguments":"{\"location\":\"NYC\"}"}}`,
			wantName: "get_weather",
			wantID:   "fc_1",
			input:    value.Object{"location": value.Str("NYC")},
		},
		{
			name:     "tool_calls first function wins",
			in:       `{"tool_calls":[{"id":"c0","type":"code","function":{"name":"skip"}},{"id":"c1","type":"function","function":{"name":"a","arguments":"{}"}},{"id":"c2","type":"function","function":{"name":"b","arguments":"{}"}}]}`,
			wantName: "a",
			wantID:   "c1",
			input:    value.Object{},
		},
		{
			name:     "malformed arguments",
			in:       `{"function_call":{"name":"execute_command","arguments":"{command: ls}"}}`,
			wantName: "execute_command",
			input:    value.Object{"raw": value.Str("{command: ls}")},
		},
		{
			name:     "object arguments",
			in:       `{"function_call":{"name":"x","arguments":{"n":1}}}`,
			wantName: "x",
			input:    value.Object{"n": value.Int(1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseOpenAIRequest([]byte(tt.in))
			require.NoError(t, err)
			got, err := OpenAIToNeutral(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			if tt.wantID != "" {
				assert.Equal(t, tt.wantID, got.ID)
			} else {
				assert.True(t, strings.HasPrefix(got.ID, tt.wantName+"-"), got.ID)
			}
			assert.True(t, tt.input.Equal(got.Input), "got %v", got.Input)
		})
	}
}

func TestOpenAIToNeutralUnrecognized(t *testing.T) {
	_, err := OpenAIToNeutral(OpenAIRequest{})
	var convErr *types.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, types.FormatOpenAI, convErr.Format)
}

func TestNeutralToOpenAI(t *testing.T) {
	call, err := NeutralToOpenAI(types.NewToolUse("c1", "a", value.Object{"k": value.Str("v")}))
	require.NoError(t, err)
	b, err := json.Marshal(call)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1","type":"function","function":{"name":"a","arguments":"{\"k\":\"v\"}"}}`, string(b))

	res := NeutralResultToOpenAI(types.NeutralToolResult{
		ToolUseID: "c1",
		Content:   []types.Content{types.TextContent("a"), types.ImageContent("image/png", "x"), types.TextContent("b")},
	})
	assert.Equal(t, OpenAIToolResult{Role: "tool", ToolCallID: "c1", Content: "a\nb"}, res)
}

func TestResultToNeutral(t *testing.T) {
	ok := ResultToNeutral("id", types.TextResult("fine"))
	assert.Equal(t, types.StatusSuccess, ok.Status)
	assert.Nil(t, ok.Error)

	failed := ResultToNeutral("id", types.ErrorResult("nope"))
	assert.Equal(t, types.StatusError, failed.Status)
	require.NotNil(t, failed.Error)
	assert.Equal(t, "nope", failed.Error.Message)

	unknown := ResultToNeutral("id", &types.ToolCallResult{IsError: true})
	assert.Equal(t, "Unknown error", unknown.Error.Message)
	assert.NotNil(t, unknown.Content)
}

func TestToOpenAIFunctions(t *testing.T) {
	defs := []types.ToolDefinition{
		{Name: "bare", Description: "no schema"},
		{
			Name: "read_file",
			ParamSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{"path": {Type: "string"}},
				Required:   []string{"path"},
			},
		},
	}
	fns, err := ToOpenAIFunctions(defs)
	require.NoError(t, err)
	require.Len(t, fns, 2)

	b, err := json.Marshal(fns[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"bare","description":"no schema","parameters":{"type":"object","properties":{},"required":[]}}`, string(b))

	assert.Equal(t, "read_file", fns[1].Name)
	assert.Equal(t, "object", fns[1].Parameters["type"])
	assert.Equal(t, []any{"path"}, fns[1].Parameters["required"])
}

func TestToAnthropicTools(t *testing.T) {
	tools, err := ToAnthropicTools([]types.ToolDefinition{{
		Name:        "read_file",
		Description: "reads",
		ParamSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"path": {Type: "string"}},
			Required:   []string{"path"},
		},
	}})
	require.NoError(t, err)
	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "read_file", tools[0].OfTool.Name)
	assert.Equal(t, []string{"path"}, tools[0].OfTool.InputSchema.Required)
}

func TestToGeminiTool(t *testing.T) {
	tool, err := ToGeminiTool([]types.ToolDefinition{
		{Name: "bare"},
		{
			Name:        "read_file",
			Description: "reads",
			ParamSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{"path": {Type: "string"}},
				Required:   []string{"path"},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, tool.FunctionDeclarations, 2)

	bare := tool.FunctionDeclarations[0]
	assert.Equal(t, "bare", bare.Name)
	assert.Equal(t, emptyObjectSchema(), bare.ParametersJsonSchema)

	read := tool.FunctionDeclarations[1]
	assert.Equal(t, "reads", read.Description)
	params, ok := read.ParametersJsonSchema.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"path"}, params["required"])
	assert.Nil(t, read.Parameters)
}

func TestSynthesizeIDIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := SynthesizeID("t")
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestThinking(t *testing.T) {
	v, ok := ThinkingFromXML("before <think>pondering</think> after")
	require.True(t, ok)
	assert.Equal(t, "<think>pondering</think>", ThinkingToXML(v))

	_, ok = ThinkingFromXML("no thoughts")
	assert.False(t, ok)
	assert.Equal(t, `{"type":"other"}`, ThinkingToXML(value.MapOf(value.Object{"type": value.Str("other")})))
}
