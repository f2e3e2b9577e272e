package matcher

import (
	"strings"

	"github.com/spachava753/toolbridge/internal/value"
)

// JSONMatcher extracts top-level JSON objects whose "type" field equals a
// target type. Other objects, invalid JSON and surrounding prose pass through
// as unmatched text.
type JSONMatcher struct {
	target string
	max    int

	buf string
	// scan state of the object starting at buf[0], valid while inObject
	inObject bool
	pos      int
	depth    int
	inString bool
	escape   bool
}

// NewJSONMatcher returns a matcher for objects with "type" == target.
func NewJSONMatcher(target string, opts ...Option) *JSONMatcher {
	o := buildOptions(opts)
	return &JSONMatcher{target: target, max: o.maxBuffer}
}

// Buffered reports how many bytes are currently held.
func (m *JSONMatcher) Buffered() int { return len(m.buf) }

func (m *JSONMatcher) Update(chunk string) []Segment {
	m.buf += chunk
	out := m.process()
	if len(m.buf) > m.max {
		out = append(out, text(m.buf))
		m.reset()
	}
	return out
}

func (m *JSONMatcher) Final(chunk string) []Segment {
	m.buf += chunk
	out := m.process()
	if m.buf != "" {
		out = append(out, text(m.buf))
	}
	m.reset()
	return out
}

func (m *JSONMatcher) reset() {
	*m = JSONMatcher{target: m.target, max: m.max}
}

func (m *JSONMatcher) process() []Segment {
	var out []Segment
	for m.buf != "" {
		if !m.inObject {
			start := strings.IndexByte(m.buf, '{')
			if start < 0 {
				out = append(out, text(m.buf))
				m.buf = ""
				break
			}
			if start > 0 {
				out = append(out, text(m.buf[:start]))
				m.buf = m.buf[start:]
			}
			m.inObject = true
			m.pos, m.depth, m.inString, m.escape = 0, 0, false, false
		}

		end := m.scan()
		if end < 0 {
			break
		}
		block := m.buf[:end+1]
		m.buf = m.buf[end+1:]
		m.inObject = false
		out = append(out, m.classify(block))
	}
	return out
}

// scan resumes brace matching at m.pos and returns the index of the brace
// closing the object at buf[0], or -1 when more input is needed.
func (m *JSONMatcher) scan() int {
	for i := m.pos; i < len(m.buf); i++ {
		c := m.buf[i]
		if m.escape {
			m.escape = false
			continue
		}
		if m.inString {
			switch c {
			case '\\':
				m.escape = true
			case '"':
				m.inString = false
			}
			continue
		}
		switch c {
		case '"':
			m.inString = true
		case '{':
			m.depth++
		case '}':
			m.depth--
			if m.depth == 0 {
				m.pos = i + 1
				return i
			}
		}
	}
	m.pos = len(m.buf)
	return -1
}

func (m *JSONMatcher) classify(block string) Segment {
	v, err := value.Parse([]byte(block))
	if err != nil || v.Kind() != value.Map {
		return text(block)
	}
	if typ, _ := v.Map()["type"].AsString(); typ != m.target {
		return text(block)
	}
	payload := v
	for _, key := range []string{"content", "text"} {
		if p, ok := v.Map()[key]; ok && truthy(p) {
			payload = p
			break
		}
	}
	return Segment{
		Matched: true,
		Type:    m.target,
		Data:    payload.String(),
		Raw:     block,
		Value:   payload,
	}
}

func truthy(v value.Value) bool {
	switch v.Kind() {
	case value.Null:
		return false
	case value.String:
		s, _ := v.AsString()
		return s != ""
	case value.Bool:
		b, _ := v.AsBool()
		return b
	case value.Number:
		f, _ := v.AsFloat()
		return f != 0
	}
	return true
}
