package convert

import (
	"regexp"
	"strings"

	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
)

var (
	openTagPattern    = regexp.MustCompile(`<(\w+)>`)
	resultOpenPattern = regexp.MustCompile(`<tool_result\s+tool_use_id="([^"]+)"(?:\s+status="([^"]+)")?\s*>`)
	imageLinePattern  = regexp.MustCompile(`^<image\s+type="([^"]*)"\s+data="([^"]*)"\s*/>$`)
	errorTailPattern  = regexp.MustCompile(`\n?<error\s+message="([^"]*)"(?:\s+details="([^"]*)")?\s*/>\s*$`)
)

// XMLToNeutral parses `<tool><arg>value</arg>...</tool>`. Argument values
// are kept as strings and the id is synthesized.
func XMLToNeutral(s string) (types.NeutralToolUseRequest, error) {
	loc := openTagPattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return types.NeutralToolUseRequest{}, types.NewConversionError(types.FormatXML, "no tool tag found", nil)
	}
	name := s[loc[2]:loc[3]]
	closing := "</" + name + ">"
	end := strings.LastIndex(s, closing)
	if end < loc[1] {
		return types.NeutralToolUseRequest{}, types.NewConversionError(types.FormatXML, "unterminated tag <"+name+">", nil)
	}

	input := value.Object{}
	for _, p := range scanElements(s[loc[1]:end]) {
		input[p.tag] = value.Str(strings.TrimSpace(p.body))
	}
	return types.NewToolUse(SynthesizeID(name), name, input), nil
}

type element struct {
	tag  string
	body string
}

// scanElements returns the top-level `<tag>body</tag>` pairs in s. Text
// outside of elements and unterminated tags are skipped.
func scanElements(s string) []element {
	var out []element
	for len(s) > 0 {
		loc := openTagPattern.FindStringSubmatchIndex(s)
		if loc == nil {
			break
		}
		tag := s[loc[2]:loc[3]]
		rest := s[loc[1]:]
		end := strings.Index(rest, "</"+tag+">")
		if end < 0 {
			s = rest
			continue
		}
		out = append(out, element{tag: tag, body: rest[:end]})
		s = rest[end+len(tag)+3:]
	}
	return out
}

// NeutralToXML renders a request as `<name>\n<key>value</key>\n...</name>`.
// Non-string values are written as JSON. Keys are sorted.
func NeutralToXML(req types.NeutralToolUseRequest) string {
	var b strings.Builder
	b.WriteString("<" + req.Name + ">\n")
	for _, k := range req.Input.Keys() {
		b.WriteString("<" + k + ">")
		b.WriteString(req.Input[k].String())
		b.WriteString("</" + k + ">\n")
	}
	b.WriteString("</" + req.Name + ">")
	return b.String()
}

func escapeAttr(s string) string   { return strings.ReplaceAll(s, `"`, "&quot;") }
func unescapeAttr(s string) string { return strings.ReplaceAll(s, "&quot;", `"`) }

// NeutralResultToXML renders a result as a <tool_result> block.
func NeutralResultToXML(res types.NeutralToolResult) string {
	status := res.Status
	if status == "" {
		status = types.StatusSuccess
	}
	var b strings.Builder
	b.WriteString(`<tool_result tool_use_id="` + escapeAttr(res.ToolUseID) + `" status="` + string(status) + "\">\n")

	items := make([]string, 0, len(res.Content))
	for _, c := range res.Content {
		switch c.Type {
		case types.ContentText:
			items = append(items, c.Text)
		case types.ContentImage:
			if c.Source != nil {
				items = append(items, `<image type="`+escapeAttr(c.Source.MediaType)+`" data="`+c.Source.Data+`" />`)
			}
		}
	}
	b.WriteString(strings.Join(items, "\n"))

	if res.Error != nil {
		b.WriteString("\n<error message=\"" + escapeAttr(res.Error.Message) + `"`)
		if res.Error.Details != nil && !res.Error.Details.IsNull() {
			details, err := res.Error.Details.MarshalJSON()
			if err == nil {
				b.WriteString(` details="` + escapeAttr(string(details)) + `"`)
			}
		}
		b.WriteString(" />")
	}
	b.WriteString("\n</tool_result>")
	return b.String()
}

// XMLResultToNeutral parses a <tool_result> block. A missing status means
// success. The framing newlines NeutralResultToXML writes around the body are
// dropped, a trailing <error/> element becomes the result error and lines that
// are exactly an <image/> element become image items. Everything else is kept
// verbatim as text.
func XMLResultToNeutral(s string) (types.NeutralToolResult, error) {
	loc := resultOpenPattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return types.NeutralToolResult{}, types.NewConversionError(types.FormatXML, "no <tool_result> tag with tool_use_id found", nil)
	}
	res := types.NeutralToolResult{
		Type:      types.TypeToolResult,
		ToolUseID: unescapeAttr(s[loc[2]:loc[3]]),
		Status:    types.StatusSuccess,
	}
	if loc[4] >= 0 {
		res.Status = types.ToolStatus(s[loc[4]:loc[5]])
	}

	body := s[loc[1]:]
	if end := strings.LastIndex(body, "</tool_result>"); end >= 0 {
		body = body[:end]
	}
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimSuffix(body, "\n")

	if m := errorTailPattern.FindStringSubmatchIndex(body); m != nil {
		res.Error = &types.ToolError{Message: unescapeAttr(body[m[2]:m[3]])}
		if m[4] >= 0 && m[5] > m[4] {
			raw := unescapeAttr(body[m[4]:m[5]])
			details, err := value.Parse([]byte(raw))
			if err != nil {
				details = value.Str(raw)
			}
			res.Error.Details = &details
		}
		body = body[:m[0]]
	}

	res.Content = []types.Content{}
	if body == "" {
		return res, nil
	}
	var text []string
	flush := func() {
		if text != nil {
			res.Content = append(res.Content, types.TextContent(strings.Join(text, "\n")))
			text = nil
		}
	}
	for _, line := range strings.Split(body, "\n") {
		if m := imageLinePattern.FindStringSubmatch(line); m != nil {
			flush()
			res.Content = append(res.Content, types.ImageContent(unescapeAttr(m[1]), m[2]))
			continue
		}
		text = append(text, line)
	}
	flush()
	return res, nil
}
