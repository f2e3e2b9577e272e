package journal

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"
)

// MemDB is an in-memory Journal with the same semantics as Sqlite. It is the
// default when no journal path is configured.
type MemDB struct {
	mu      sync.Mutex
	entries []Entry
	byID    map[string]int
	nextID  int
}

func NewMemDB() *MemDB {
	return &MemDB{byID: make(map[string]int)}
}

func (m *MemDB) Record(_ context.Context, e Entry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		m.nextID++
		e.ID = fmt.Sprintf("mem_%d", m.nextID)
	}
	if _, ok := m.byID[e.ID]; ok {
		return "", fmt.Errorf("recording journal entry: duplicate id %s", e.ID)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	m.byID[e.ID] = len(m.entries)
	m.entries = append(m.entries, e)
	return e.ID, nil
}

func (m *MemDB) Get(_ context.Context, id string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.byID[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.entries[i], nil
}

func (m *MemDB) List(_ context.Context, opts ListOptions) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		m.mu.Lock()
		var out []Entry
		for i := len(m.entries) - 1; i >= 0; i-- {
			e := m.entries[i]
			if opts.ToolName != "" && e.ToolName != opts.ToolName {
				continue
			}
			out = append(out, e)
			if opts.Limit > 0 && len(out) == opts.Limit {
				break
			}
		}
		m.mu.Unlock()

		for _, e := range out {
			if !yield(e, nil) {
				return
			}
		}
	}
}
