package matcher

import (
	"strings"

	"github.com/spachava753/toolbridge/internal/detect"
)

// DualMatcher routes a stream to an XML or a JSON matcher once the format
// detector has classified it. Until then, text that cannot start a block is
// emitted right away and the rest is held (bounded by the buffer cap).
type DualMatcher struct {
	max     int
	format  detect.Format
	pending string
	xml     *XMLMatcher
	json    *JSONMatcher
}

// NewDualMatcher builds a matcher for XML elements accepted by xmlAccept and
// JSON objects of type jsonType.
func NewDualMatcher(xmlAccept func(tag string) bool, jsonType string, opts ...Option) *DualMatcher {
	o := buildOptions(opts)
	return &DualMatcher{
		max:    o.maxBuffer,
		format: detect.Unknown,
		xml:    NewXMLMatcher(xmlAccept, opts...),
		json:   NewJSONMatcher(jsonType, opts...),
	}
}

// Format reports the detected stream format.
func (d *DualMatcher) Format() detect.Format { return d.format }

// Buffered reports how many bytes are currently held.
func (d *DualMatcher) Buffered() int {
	return len(d.pending) + d.xml.Buffered() + d.json.Buffered()
}

func (d *DualMatcher) Update(chunk string) []Segment { return d.feed(chunk, false) }

func (d *DualMatcher) Final(chunk string) []Segment {
	out := d.feed(chunk, true)
	d.format = detect.Unknown
	return out
}

func (d *DualMatcher) feed(chunk string, final bool) []Segment {
	if d.format == detect.Unknown {
		d.pending += chunk
		d.format = detect.Sample(d.pending)
		if d.format == detect.Unknown {
			return d.holdUnknown(final)
		}
		chunk = d.pending
		d.pending = ""
	}

	var m Matcher = d.xml
	if d.format == detect.JSON {
		m = d.json
	}
	if final {
		return m.Final(chunk)
	}
	return m.Update(chunk)
}

func (d *DualMatcher) holdUnknown(final bool) []Segment {
	cut := strings.IndexAny(d.pending, "<{")
	if cut < 0 || final || len(d.pending) > d.max {
		cut = len(d.pending)
	}
	if cut == 0 {
		return nil
	}
	out := []Segment{text(d.pending[:cut])}
	d.pending = d.pending[cut:]
	return out
}
