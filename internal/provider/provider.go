// Package provider hosts tool definitions behind an MCP endpoint. Embedded
// runs an in-process MCP server, Memory is a server-less double with the same
// contract and Remote forwards calls to an external MCP server.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spachava753/toolbridge/internal/events"
	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
)

// Provider is the contract shared by every provider implementation.
type Provider interface {
	// Start brings the provider up. Calling it on a running provider is a no-op.
	Start(ctx context.Context) error
	// Stop tears the provider down. Calling it on a stopped provider is a no-op.
	Stop(ctx context.Context) error
	// ExecuteTool runs name directly, without going through the transport.
	// Unknown tools and handler failures are reported as error results; the
	// returned error is reserved for provider level failures.
	ExecuteTool(ctx context.Context, name string, args value.Object) (*types.ToolCallResult, error)
	RegisterToolDefinition(def types.ToolDefinition) error
	UnregisterTool(name string) bool
	// ServerURL is the address clients reach the provider on, or "" when it
	// is not running or has none.
	ServerURL() string
	IsRunning() bool
	Subscribe(l events.Listener) func()
}

// Factory creates the provider an executor will own.
type Factory func() (Provider, error)

var (
	errEmptyName    = errors.New("tool name is required")
	errNotRunning   = errors.New("provider not started")
	errSchemaObject = errors.New("tool parameter schema must have type object")
)

func validateDefinition(def types.ToolDefinition) error {
	if def.Name == "" {
		return errEmptyName
	}
	if def.ParamSchema != nil && def.ParamSchema.Type != "" && def.ParamSchema.Type != "object" {
		return fmt.Errorf("tool %s: %w, got %q", def.Name, errSchemaObject, def.ParamSchema.Type)
	}
	return nil
}

// toolSet is the definition store and dispatch shared by Embedded and Memory.
type toolSet struct {
	mu    sync.RWMutex
	tools map[string]types.ToolDefinition
	hub   *events.Hub
}

func newToolSet(hub *events.Hub) *toolSet {
	return &toolSet{tools: make(map[string]types.ToolDefinition), hub: hub}
}

func (s *toolSet) put(def types.ToolDefinition) {
	s.mu.Lock()
	s.tools[def.Name] = def
	s.mu.Unlock()
	s.hub.Publish(events.Event{Kind: events.ToolRegistered, ToolName: def.Name})
}

func (s *toolSet) remove(name string) bool {
	s.mu.Lock()
	_, ok := s.tools[name]
	delete(s.tools, name)
	s.mu.Unlock()
	if ok {
		s.hub.Publish(events.Event{Kind: events.ToolUnregistered, ToolName: name})
	}
	return ok
}

func (s *toolSet) get(name string) (types.ToolDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.tools[name]
	return def, ok
}

func (s *toolSet) all() []types.ToolDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	defs := make([]types.ToolDefinition, 0, len(s.tools))
	for _, def := range s.tools {
		defs = append(defs, def)
	}
	return defs
}

func (s *toolSet) execute(ctx context.Context, name string, args value.Object) *types.ToolCallResult {
	def, ok := s.get(name)
	if !ok {
		return types.ErrorResult((&types.ToolNotFoundError{Name: name}).Error())
	}
	if args == nil {
		args = value.Object{}
	}
	if def.Handler == nil {
		return types.ErrorResult((&types.ToolExecutionError{Name: name, Err: errors.New("tool has no handler")}).Error())
	}
	res, err := def.Handler(ctx, args)
	if err != nil {
		slog.Debug("tool handler failed", "tool", name, "err", err)
		return types.ErrorResult((&types.ToolExecutionError{Name: name, Err: err}).Error())
	}
	if res == nil {
		res = &types.ToolCallResult{Content: []types.Content{}}
	}
	return res
}
