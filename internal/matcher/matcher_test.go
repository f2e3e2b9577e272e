package matcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/toolbridge/internal/detect"
	"github.com/spachava753/toolbridge/internal/value"
)

// feed splits input into chunks of size n and runs them through m.
func feed(m Matcher, input string, n int) []Segment {
	var out []Segment
	for len(input) > n {
		out = append(out, m.Update(input[:n])...)
		input = input[n:]
	}
	out = append(out, m.Update(input)...)
	return append(out, m.Final("")...)
}

func raw(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Raw)
	}
	return b.String()
}

func matched(segs []Segment) []Segment {
	var out []Segment
	for _, s := range segs {
		if s.Matched {
			out = append(out, s)
		}
	}
	return out
}

func TestJSONMatcher(t *testing.T) {
	input := `Let me think. {"type":"thinking","content":"a {brace} and \"quote\""} then {"type":"other","x":1} and {bad json} end`

	for _, size := range []int{1, 3, 7, len(input)} {
		m := NewJSONMatcher("thinking")
		segs := feed(m, input, size)

		assert.Equal(t, input, raw(segs), "chunk size %d", size)
		got := matched(segs)
		require.Len(t, got, 1, "chunk size %d", size)
		assert.Equal(t, "thinking", got[0].Type)
		assert.Equal(t, `a {brace} and "quote"`, got[0].Data)
		assert.Equal(t, 0, m.Buffered())
	}
}

func TestJSONMatcherPayloadFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		data  string
		value value.Value
	}{
		{"content", `{"type":"t","content":"c","text":"x"}`, "c", value.Str("c")},
		{"text", `{"type":"t","text":"x"}`, "x", value.Str("x")},
		{"empty content falls to whole object", `{"type":"t","content":""}`, `{"content":"","type":"t"}`, value.Value{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := NewJSONMatcher("t").Final(tt.in)
			require.Len(t, segs, 1)
			assert.True(t, segs[0].Matched)
			assert.Equal(t, tt.data, segs[0].Data)
			if tt.value.Kind() != value.Null {
				assert.True(t, tt.value.Equal(segs[0].Value))
			}
		})
	}
}

func TestJSONMatcherHoldsIncompleteObject(t *testing.T) {
	m := NewJSONMatcher("tool_use")
	segs := m.Update(`prefix {"type":"tool_use","name":"a"`)
	require.Len(t, segs, 1)
	assert.Equal(t, "prefix ", segs[0].Data)
	assert.False(t, segs[0].Matched)

	segs = m.Update(`,"id":"1","input":{}} suffix`)
	require.Len(t, segs, 2)
	assert.True(t, segs[0].Matched)
	assert.Equal(t, " suffix", segs[1].Data)
}

func TestJSONMatcherBoundsMemory(t *testing.T) {
	chunk := strings.Repeat("lorem ipsum dolor sit amet ", 40)

	for _, prefix := range []string{"", "{"} {
		m := NewJSONMatcher("tool_use")
		total := 0
		var segs []Segment
		segs = append(segs, m.Update(prefix)...)
		for total < 300*1024 {
			segs = append(segs, m.Update(chunk)...)
			total += len(chunk)
			require.LessOrEqual(t, m.Buffered(), DefaultMaxBuffer)
		}
		segs = append(segs, m.Final("")...)
		assert.Empty(t, matched(segs), "prefix %q", prefix)
		assert.Equal(t, total+len(prefix), len(raw(segs)))
	}
}

func TestXMLMatcher(t *testing.T) {
	input := `Sure. <think>step <b>one</b></think> then <think attr="x">nested <think>inner</think> done</think> < bye`

	for _, size := range []int{1, 2, 5, len(input)} {
		m := NewTagMatcher("think")
		segs := feed(m, input, size)

		assert.Equal(t, input, raw(segs), "chunk size %d", size)
		got := matched(segs)
		require.Len(t, got, 2, "chunk size %d", size)
		assert.Equal(t, "step <b>one</b>", got[0].Data)
		assert.Equal(t, "nested <think>inner</think> done", got[1].Data)
		assert.Equal(t, "think", got[1].Type)
	}
}

func TestXMLMatcherHoldsPartialTag(t *testing.T) {
	m := NewTagMatcher("read_file")
	segs := m.Update("Reading now <read_f")
	require.Len(t, segs, 1)
	assert.Equal(t, "Reading now ", segs[0].Data)
	assert.Equal(t, len("<read_f"), m.Buffered())

	segs = m.Update("ile><path>a</path></read_file>")
	require.Len(t, segs, 1)
	assert.True(t, segs[0].Matched)
	assert.Equal(t, "<read_file><path>a</path></read_file>", segs[0].Raw)
}

func TestXMLMatcherFlushesAtCap(t *testing.T) {
	m := NewTagMatcher("x", WithMaxBuffer(64))
	segs := m.Update("<x>" + strings.Repeat("a", 100))
	require.Len(t, segs, 1)
	assert.False(t, segs[0].Matched)
	assert.Equal(t, 0, m.Buffered())
}

func TestToolUseMatcherXML(t *testing.T) {
	m := NewToolUseMatcher()
	input := "I'll read it. <think>hmm</think><read_file>\n<path>src/main.ts</path>\n</read_file> done"
	segs := feed(m, input, 4)

	assert.Equal(t, input, raw(segs))
	got := matched(segs)
	require.Len(t, got, 1)
	assert.Equal(t, "tool_use", got[0].Type)
	assert.Equal(t, "read_file", got[0].Name)
	assert.True(t, strings.HasPrefix(got[0].ID, "read_file-"))

	id, ok := m.IDs().Get("read_file")
	require.True(t, ok)
	assert.Equal(t, got[0].ID, id)
}

func TestToolUseMatcherJSON(t *testing.T) {
	m := NewToolUseMatcher()
	input := `Calling: {"type":"tool_use","id":"toolu_1","name":"search","input":{"q":"x"}} and {"type":"tool_use","input":{}}`
	segs := feed(m, input, 9)

	assert.Equal(t, input, raw(segs))
	got := matched(segs)
	require.Len(t, got, 1)
	assert.Equal(t, "search", got[0].Name)
	assert.Equal(t, "toolu_1", got[0].ID)
	assert.Equal(t, map[string]string{"search": "toolu_1"}, m.IDs().Snapshot())
}

func TestToolUseIDsReturnsCopy(t *testing.T) {
	m := NewToolUseMatcher()
	m.Final(`{"type":"tool_use","id":"toolu_1","name":"search","input":{}}`)

	ids := m.ToolUseIDs()
	assert.Equal(t, map[string]string{"search": "toolu_1"}, ids)

	ids["search"] = "changed"
	ids["other"] = "toolu_2"
	id, ok := m.IDs().Get("search")
	require.True(t, ok)
	assert.Equal(t, "toolu_1", id)
	_, ok = m.IDs().Get("other")
	assert.False(t, ok)

	m.Final(`{"type":"tool_use","id":"toolu_3","name":"search","input":{}}`)
	assert.Equal(t, "changed", ids["search"])
	assert.Equal(t, "toolu_3", m.ToolUseIDs()["search"])
}

func TestToolUseMatcherRestrictedNames(t *testing.T) {
	m := NewToolUseMatcher(WithToolNames("read_file"))
	segs := m.Final("<b>bold</b> <read_file><path>x</path></read_file>")
	got := matched(segs)
	require.Len(t, got, 1)
	assert.Equal(t, "read_file", got[0].Name)
}

func TestToolResultMatcherPairsWithCalls(t *testing.T) {
	uses := NewToolUseMatcher()
	segs := uses.Final(`{"type":"tool_use","id":"c1","name":"read_file","input":{}}`)
	require.Len(t, matched(segs), 1)

	results := NewToolResultMatcher(uses.IDs())
	out := feed(results, `Result: <tool_result tool_use_id="c1" status="success">
contents
</tool_result>`, 6)
	got := matched(out)
	require.Len(t, got, 1)
	assert.Equal(t, "tool_result", got[0].Type)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "read_file", got[0].Name)

	id, ok := results.Resolve("read_file")
	require.True(t, ok)
	assert.Equal(t, "c1", id)
}

func TestToolResultMatcherJSON(t *testing.T) {
	m := NewToolResultMatcher(nil)
	segs := m.Final(`{"type":"tool_result","tool_use_id":"z","content":[{"type":"text","text":"ok"}]}`)
	got := matched(segs)
	require.Len(t, got, 1)
	assert.Equal(t, "z", got[0].ID)
	assert.Equal(t, "", got[0].Name)
}

func TestReasoningMatcher(t *testing.T) {
	m := NewReasoningMatcher()
	segs := feed(m, "a <think>deep</think> b", 3)
	got := matched(segs)
	require.Len(t, got, 1)
	assert.Equal(t, "reasoning", got[0].Type)
	assert.Equal(t, "deep", got[0].Data)

	m = NewReasoningMatcher()
	segs = m.Final(`x {"type":"thinking","content":"json thought"} y`)
	got = matched(segs)
	require.Len(t, got, 1)
	assert.Equal(t, "json thought", got[0].Data)
}

func TestDualMatcherEmitsProseWhileUndetected(t *testing.T) {
	d := NewDualMatcher(func(string) bool { return true }, "tool_use")
	segs := d.Update("plain words and then {")
	require.Len(t, segs, 1)
	assert.Equal(t, "plain words and then ", segs[0].Data)
	assert.Equal(t, detect.Unknown, d.Format())

	segs = d.Update(`"type":"tool_use","name":"x","id":"1","input":{}}`)
	assert.Equal(t, detect.JSON, d.Format())
	require.Len(t, segs, 1)
	assert.True(t, segs[0].Matched)
}
