package matcher

import (
	"strings"
)

// XMLMatcher extracts top-level elements whose tag is accepted, from the
// opening tag (attributes allowed) through the balanced closing tag.
type XMLMatcher struct {
	accept func(tag string) bool
	max    int

	buf string
	// state of the element starting at buf[0], valid while tag != ""
	tag      string
	openEnd  int
	depth    int
	scanFrom int
}

// NewXMLMatcher returns a matcher for elements whose tag satisfies accept.
func NewXMLMatcher(accept func(tag string) bool, opts ...Option) *XMLMatcher {
	o := buildOptions(opts)
	return &XMLMatcher{accept: accept, max: o.maxBuffer}
}

// NewTagMatcher returns a matcher for a single tag name.
func NewTagMatcher(tag string, opts ...Option) *XMLMatcher {
	return NewXMLMatcher(func(t string) bool { return t == tag }, opts...)
}

// Buffered reports how many bytes are currently held.
func (m *XMLMatcher) Buffered() int { return len(m.buf) }

func (m *XMLMatcher) Update(chunk string) []Segment {
	m.buf += chunk
	out := m.process()
	if len(m.buf) > m.max {
		out = append(out, text(m.buf))
		m.reset()
	}
	return out
}

func (m *XMLMatcher) Final(chunk string) []Segment {
	m.buf += chunk
	out := m.process()
	if m.buf != "" {
		out = append(out, text(m.buf))
	}
	m.reset()
	return out
}

func (m *XMLMatcher) reset() {
	*m = XMLMatcher{accept: m.accept, max: m.max}
}

func (m *XMLMatcher) process() []Segment {
	var out []Segment
	for m.buf != "" {
		if m.tag == "" {
			start, tag, openEnd, partial := m.findOpen()
			if start < 0 {
				keep := len(m.buf)
				if partial >= 0 {
					keep = partial
				}
				if keep > 0 {
					out = append(out, text(m.buf[:keep]))
					m.buf = m.buf[keep:]
				}
				break
			}
			if start > 0 {
				out = append(out, text(m.buf[:start]))
				m.buf = m.buf[start:]
				openEnd -= start
			}
			m.tag, m.openEnd, m.depth, m.scanFrom = tag, openEnd, 1, openEnd
		}

		end := m.findClose()
		if end < 0 {
			break
		}
		closeTag := "</" + m.tag + ">"
		out = append(out, Segment{
			Matched: true,
			Type:    m.tag,
			Data:    m.buf[m.openEnd : end-len(closeTag)],
			Raw:     m.buf[:end],
		})
		m.buf = m.buf[end:]
		m.tag = ""
	}
	return out
}

func isNameByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// findOpen locates the first complete opening tag that is accepted. When
// none exists, partial is the offset of a trailing "<..." that may still turn
// into one, or -1.
func (m *XMLMatcher) findOpen() (start int, tag string, openEnd int, partial int) {
	s := m.buf
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		j := i + 1
		for j < len(s) && isNameByte(s[j]) {
			j++
		}
		if j == len(s) {
			return -1, "", 0, i
		}
		if j == i+1 {
			continue
		}
		name := s[i+1 : j]
		switch {
		case s[j] == '>':
			if m.accept(name) {
				return i, name, j + 1, -1
			}
		case isSpace(s[j]):
			gt := strings.IndexByte(s[j:], '>')
			if gt < 0 {
				return -1, "", 0, i
			}
			if s[j+gt-1] != '/' && m.accept(name) {
				return i, name, j + gt + 1, -1
			}
		}
	}
	return -1, "", 0, -1
}

// findClose resumes at scanFrom and returns the offset just past the closing
// tag that balances the element at buf[0], or -1.
func (m *XMLMatcher) findClose() int {
	closeTag := "</" + m.tag + ">"
	for {
		rest := m.buf[m.scanFrom:]
		idx := strings.Index(rest, closeTag)
		if idx < 0 {
			return -1
		}
		m.depth += countOpens(rest[:idx], m.tag)
		m.depth--
		m.scanFrom += idx + len(closeTag)
		if m.depth == 0 {
			return m.scanFrom
		}
	}
}

// countOpens counts opening tags named tag in s.
func countOpens(s, tag string) int {
	n := 0
	prefix := "<" + tag
	for {
		idx := strings.Index(s, prefix)
		if idx < 0 {
			return n
		}
		after := idx + len(prefix)
		if after < len(s) && (s[after] == '>' || isSpace(s[after])) {
			n++
		}
		s = s[after:]
	}
}
