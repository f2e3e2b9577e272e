package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, ok := ParseFormat(" " + string(f) + " ")
		require.True(t, ok)
		assert.Equal(t, f, got)
	}
	got, ok := ParseFormat("OpenAI")
	require.True(t, ok)
	assert.Equal(t, FormatOpenAI, got)

	_, ok = ParseFormat("yaml")
	assert.False(t, ok)
}

func TestErrorToolResultDefaultsID(t *testing.T) {
	r := ErrorToolResult("", "boom")
	assert.Equal(t, "error", r.ToolUseID)
	assert.Equal(t, StatusError, r.Status)
	assert.Equal(t, "boom", r.Text())
	require.NotNil(t, r.Error)
	assert.Equal(t, "boom", r.Error.Message)
}

func TestErrorUnwrapping(t *testing.T) {
	cause := errors.New("disk on fire")
	var err error = fmt.Errorf("outer: %w", &ToolExecutionError{Name: "read_file", Err: cause})

	var execErr *ToolExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "read_file", execErr.Name)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Error executing tool 'read_file': disk on fire", execErr.Error())

	nf := &ToolNotFoundError{Name: "x"}
	assert.Equal(t, "Tool 'x' not found", nf.Error())

	conv := NewConversionError(FormatJSON, "parse failure", cause)
	assert.ErrorIs(t, conv, cause)
	assert.Contains(t, conv.Error(), "convert json: parse failure")
}

func TestToolCallResultText(t *testing.T) {
	r := &ToolCallResult{Content: []Content{
		TextContent("a"),
		ImageContent("image/png", "AAAA"),
		TextContent("b"),
	}}
	assert.Equal(t, "a\nb", r.Text())

	var nilResult *ToolCallResult
	assert.Equal(t, "", nilResult.Text())
}
