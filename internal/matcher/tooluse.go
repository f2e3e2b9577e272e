package matcher

import (
	"regexp"
	"sync"

	"github.com/spachava753/toolbridge/internal/convert"
	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
)

// IDMap records the id of the most recent call per tool name so results can
// be paired with calls that did not carry an id. It is shared between a
// ToolUseMatcher and a ToolResultMatcher and is safe for concurrent use.
type IDMap struct {
	mu     sync.RWMutex
	byName map[string]string
}

// NewIDMap returns an empty map.
func NewIDMap() *IDMap {
	return &IDMap{byName: make(map[string]string)}
}

// Set records id for name.
func (m *IDMap) Set(name, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byName[name] = id
}

// Get returns the id recorded for name.
func (m *IDMap) Get(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byName[name]
	return id, ok
}

// NameFor returns the tool name an id was recorded for.
func (m *IDMap) NameFor(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, v := range m.byName {
		if v == id {
			return name, true
		}
	}
	return "", false
}

// Snapshot returns a copy of the map.
func (m *IDMap) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.byName))
	for k, v := range m.byName {
		out[k] = v
	}
	return out
}

// ToolUseMatcher extracts tool calls written either as XML elements
// (<tool><arg>..</arg></tool>) or as {"type":"tool_use"} objects.
type ToolUseMatcher struct {
	d   *DualMatcher
	ids *IDMap
}

// NewToolUseMatcher returns a tool-use matcher with a fresh id map.
func NewToolUseMatcher(opts ...Option) *ToolUseMatcher {
	o := buildOptions(opts)
	accept := func(tag string) bool {
		if o.toolNames != nil {
			return o.toolNames[tag]
		}
		return tag != "think" && tag != types.TypeToolResult
	}
	return &ToolUseMatcher{
		d:   NewDualMatcher(accept, types.TypeToolUse, opts...),
		ids: NewIDMap(),
	}
}

// IDs returns the map of tool name to the id of its latest call.
func (m *ToolUseMatcher) IDs() *IDMap { return m.ids }

// ToolUseIDs returns a copy of the tool name to id map.
func (m *ToolUseMatcher) ToolUseIDs() map[string]string { return m.ids.Snapshot() }

func (m *ToolUseMatcher) Update(chunk string) []Segment { return m.annotate(m.d.Update(chunk)) }
func (m *ToolUseMatcher) Final(chunk string) []Segment  { return m.annotate(m.d.Final(chunk)) }

func (m *ToolUseMatcher) annotate(segs []Segment) []Segment {
	for i := range segs {
		s := &segs[i]
		if !s.Matched {
			continue
		}
		if s.Value.Kind() == value.Null && s.Type != types.TypeToolUse {
			// XML element: the tag is the tool name.
			s.Name = s.Type
			s.ID = convert.SynthesizeID(s.Name)
		} else {
			obj, err := value.ParseObject([]byte(s.Raw))
			if err != nil {
				*s = text(s.Raw)
				continue
			}
			name, _ := obj["name"].AsString()
			if name == "" {
				*s = text(s.Raw)
				continue
			}
			id, _ := obj["id"].AsString()
			if id == "" {
				id = convert.SynthesizeID(name)
			}
			s.Name, s.ID, s.Value = name, id, value.MapOf(obj)
		}
		s.Type = types.TypeToolUse
		m.ids.Set(s.Name, s.ID)
	}
	return segs
}

var resultIDPattern = regexp.MustCompile(`<tool_result\s+tool_use_id="([^"]*)"`)

// ToolResultMatcher extracts <tool_result> elements and {"type":"tool_result"}
// objects, resolving tool names through the id map of a ToolUseMatcher.
type ToolResultMatcher struct {
	d   *DualMatcher
	ids *IDMap
}

// NewToolResultMatcher returns a result matcher sharing ids. A nil map is
// replaced by an empty one.
func NewToolResultMatcher(ids *IDMap, opts ...Option) *ToolResultMatcher {
	if ids == nil {
		ids = NewIDMap()
	}
	accept := func(tag string) bool { return tag == types.TypeToolResult }
	return &ToolResultMatcher{
		d:   NewDualMatcher(accept, types.TypeToolResult, opts...),
		ids: ids,
	}
}

// Resolve returns the in-flight id for a tool name.
func (m *ToolResultMatcher) Resolve(name string) (string, bool) { return m.ids.Get(name) }

func (m *ToolResultMatcher) Update(chunk string) []Segment { return m.annotate(m.d.Update(chunk)) }
func (m *ToolResultMatcher) Final(chunk string) []Segment  { return m.annotate(m.d.Final(chunk)) }

func (m *ToolResultMatcher) annotate(segs []Segment) []Segment {
	for i := range segs {
		s := &segs[i]
		if !s.Matched {
			continue
		}
		if match := resultIDPattern.FindStringSubmatch(s.Raw); match != nil {
			s.ID = match[1]
		} else if obj, err := value.ParseObject([]byte(s.Raw)); err == nil {
			s.ID, _ = obj["tool_use_id"].AsString()
			s.Value = value.MapOf(obj)
		}
		s.Type = types.TypeToolResult
		s.Name, _ = m.ids.NameFor(s.ID)
	}
	return segs
}

// ReasoningMatcher extracts <think> elements and {"type":"thinking"} objects
// and reports them with Type "reasoning" and the thought as Data.
type ReasoningMatcher struct {
	d *DualMatcher
}

// NewReasoningMatcher returns a reasoning matcher.
func NewReasoningMatcher(opts ...Option) *ReasoningMatcher {
	accept := func(tag string) bool { return tag == "think" }
	return &ReasoningMatcher{d: NewDualMatcher(accept, "thinking", opts...)}
}

func (m *ReasoningMatcher) Update(chunk string) []Segment { return relabel(m.d.Update(chunk)) }
func (m *ReasoningMatcher) Final(chunk string) []Segment  { return relabel(m.d.Final(chunk)) }

func relabel(segs []Segment) []Segment {
	for i := range segs {
		if segs[i].Matched {
			segs[i].Type = "reasoning"
		}
	}
	return segs
}
