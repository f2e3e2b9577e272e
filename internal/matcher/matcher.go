// Package matcher extracts structured blocks (JSON objects or XML elements)
// from model output that arrives in arbitrary chunks.
//
// Every matcher keeps an append-only buffer plus scan cursors between calls,
// so a block split across chunks is still recognized. Matchers are not safe
// for concurrent use; give each stream its own instance.
package matcher

import (
	"github.com/spachava753/toolbridge/internal/value"
)

// DefaultMaxBuffer bounds how much unresolved text a matcher holds before
// giving up and flushing it as unmatched text.
const DefaultMaxBuffer = 256 << 10

// Segment is one piece of matcher output. Concatenating Raw over all
// segments reproduces the input stream.
type Segment struct {
	Matched bool
	// Type is the matched block type (for example "tool_use" or a tag name).
	Type string
	// Data is the payload: the inner text of an XML element, or the
	// content/text field of a JSON object. For unmatched segments it is the
	// text itself.
	Data string
	// Raw is the block exactly as it appeared in the stream.
	Raw string
	// Value holds the decoded JSON payload when the block was JSON.
	Value value.Value
	// Name and ID are filled by the tool-use and tool-result matchers.
	Name string
	ID   string
}

func text(s string) Segment {
	return Segment{Data: s, Raw: s}
}

// Matcher is implemented by every matcher in this package.
type Matcher interface {
	// Update appends chunk and returns the segments that became final.
	Update(chunk string) []Segment
	// Final appends chunk, resolves everything left and resets the matcher.
	Final(chunk string) []Segment
}

type options struct {
	maxBuffer int
	toolNames map[string]bool
}

// Option configures a matcher.
type Option func(*options)

// WithMaxBuffer sets the buffer cap. Values below 1 are ignored.
func WithMaxBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBuffer = n
		}
	}
}

// WithToolNames restricts the XML side of a ToolUseMatcher to the given tags.
// Without it any tag other than think and tool_result is taken as a call.
func WithToolNames(names ...string) Option {
	return func(o *options) {
		o.toolNames = make(map[string]bool, len(names))
		for _, n := range names {
			o.toolNames[n] = true
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{maxBuffer: DefaultMaxBuffer}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
