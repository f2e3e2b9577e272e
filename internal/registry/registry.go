// Package registry holds the name→definition map of callable tools.
package registry

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/spachava753/toolbridge/internal/events"
	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
)

var errNoHandler = errors.New("tool has no handler")

// Registry maps tool names to definitions. It is safe for concurrent use;
// handlers run outside the lock, so a call that is already in flight
// finishes even if its tool is unregistered meanwhile.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]types.ToolDefinition
	hub   events.Hub
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{tools: make(map[string]types.ToolDefinition)}
}

// Subscribe registers l for ToolRegistered and ToolUnregistered events.
func (r *Registry) Subscribe(l events.Listener) func() {
	return r.hub.Subscribe(l)
}

// Register adds def, silently replacing any definition with the same name.
func (r *Registry) Register(def types.ToolDefinition) {
	r.mu.Lock()
	r.tools[def.Name] = def
	r.mu.Unlock()

	slog.Debug("tool registered", "tool", def.Name)
	r.hub.Publish(events.Event{Kind: events.ToolRegistered, ToolName: def.Name})
}

// Unregister removes name and reports whether it was present. No event is
// emitted for absent names.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	_, ok := r.tools[name]
	delete(r.tools, name)
	r.mu.Unlock()

	if !ok {
		return false
	}
	slog.Debug("tool unregistered", "tool", name)
	r.hub.Publish(events.Event{Kind: events.ToolUnregistered, ToolName: name})
	return true
}

// Get returns the definition for name.
func (r *Registry) Get(name string) (types.ToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.tools[name]
	return def, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.tools))
}

// List returns every definition sorted by name.
func (r *Registry) List() []types.ToolDefinition {
	r.mu.RLock()
	defs := slices.Collect(maps.Values(r.tools))
	r.mu.RUnlock()

	slices.SortFunc(defs, func(a, b types.ToolDefinition) int { return cmp.Compare(a.Name, b.Name) })
	return defs
}

// Execute runs the handler for name. An unknown name yields a
// *types.ToolNotFoundError and a handler error is wrapped in a
// *types.ToolExecutionError.
func (r *Registry) Execute(ctx context.Context, name string, args value.Object) (*types.ToolCallResult, error) {
	def, ok := r.Get(name)
	if !ok {
		return nil, &types.ToolNotFoundError{Name: name}
	}
	if def.Handler == nil {
		return nil, &types.ToolExecutionError{Name: name, Err: errNoHandler}
	}
	if args == nil {
		args = value.Object{}
	}
	res, err := def.Handler(ctx, args)
	if err != nil {
		return nil, &types.ToolExecutionError{Name: name, Err: err}
	}
	return res, nil
}
