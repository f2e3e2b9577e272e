package convert

import (
	"regexp"

	"github.com/spachava753/toolbridge/internal/value"
)

var thinkPattern = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

// ThinkingToXML renders {"type":"thinking","content":...} as a <think>
// block. Any other value is returned as JSON.
func ThinkingToXML(v value.Value) string {
	if typ, _ := v.Map()["type"].AsString(); typ == "thinking" {
		if content, ok := v.Map()["content"].AsString(); ok && content != "" {
			return "<think>" + content + "</think>"
		}
	}
	return v.String()
}

// ThinkingFromXML extracts the first <think> block as a thinking object.
func ThinkingFromXML(s string) (value.Value, bool) {
	m := thinkPattern.FindStringSubmatch(s)
	if m == nil || m[1] == "" {
		return value.Value{}, false
	}
	return value.MapOf(value.Object{
		"type":    value.Str("thinking"),
		"content": value.Str(m[1]),
	}), true
}
