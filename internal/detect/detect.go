// Package detect classifies a stream sample as XML or JSON tool syntax.
package detect

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Format is the syntax family of a stream.
type Format string

const (
	XML     Format = "xml"
	JSON    Format = "json"
	Unknown Format = "unknown"
)

var tagPattern = regexp.MustCompile(`<\w+>`)

// Sample classifies s. The result is advisory: callers re-run it as more of
// the stream arrives and treat Unknown as "keep buffering".
func Sample(s string) Format {
	if strings.Contains(s, "<think>") || strings.Contains(s, "<tool_result") || tagPattern.MatchString(s) {
		return XML
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start && json.Valid([]byte(s[start:end+1])) {
		return JSON
	}
	return Unknown
}
