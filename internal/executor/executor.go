// Package executor owns a provider and a registry and turns neutral tool-use
// requests into neutral results.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spachava753/toolbridge/internal/convert"
	"github.com/spachava753/toolbridge/internal/events"
	"github.com/spachava753/toolbridge/internal/provider"
	"github.com/spachava753/toolbridge/internal/registry"
	"github.com/spachava753/toolbridge/internal/types"
)

// Option configures an Executor.
type Option func(*Executor)

// WithRegistry shares reg instead of creating a private registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Executor) { e.registry = reg }
}

// Executor keeps a provider and a registry in sync and executes tools by
// name through the provider.
type Executor struct {
	factory  provider.Factory
	registry *registry.Registry
	hub      events.Hub

	mu          sync.Mutex
	provider    provider.Provider
	unsubscribe func()
}

// New returns an executor whose provider will be built by factory during
// Initialize.
func New(factory provider.Factory, opts ...Option) *Executor {
	e := &Executor{factory: factory}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = registry.New()
	}
	return e
}

// Initialize creates and starts the provider. Tools registered earlier in
// the registry are mirrored into it. Calling it again is a no-op.
func (e *Executor) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.provider != nil {
		return nil
	}

	p, err := e.factory()
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}
	for _, def := range e.registry.List() {
		if err := p.RegisterToolDefinition(def); err != nil {
			return fmt.Errorf("registering tool %s with provider: %w", def.Name, err)
		}
	}
	unsubscribe := p.Subscribe(events.ListenerFunc(e.hub.Publish))
	if err := p.Start(ctx); err != nil {
		unsubscribe()
		return fmt.Errorf("starting provider: %w", err)
	}
	e.provider = p
	e.unsubscribe = unsubscribe
	return nil
}

// Shutdown stops the provider. The executor can be initialized again later.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	p, unsubscribe := e.provider, e.unsubscribe
	e.provider, e.unsubscribe = nil, nil
	e.mu.Unlock()

	if p == nil {
		return nil
	}
	err := p.Stop(ctx)
	unsubscribe()
	if err != nil {
		return fmt.Errorf("stopping provider: %w", err)
	}
	return nil
}

func (e *Executor) current() (provider.Provider, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.provider == nil {
		return nil, types.ErrNotInitialized
	}
	return e.provider, nil
}

// RegisterTool adds def to the provider and then the registry.
func (e *Executor) RegisterTool(def types.ToolDefinition) error {
	p, err := e.current()
	if err != nil {
		return err
	}
	if err := p.RegisterToolDefinition(def); err != nil {
		return err
	}
	e.registry.Register(def)
	return nil
}

// UnregisterTool removes name from the provider and then the registry, and
// reports true only when both held it. The provider copy is always dropped,
// even when the registry no longer lists the tool. If the registry side fails
// after the provider dropped the tool, the provider copy is restored.
func (e *Executor) UnregisterTool(name string) (bool, error) {
	p, err := e.current()
	if err != nil {
		return false, err
	}
	def, inRegistry := e.registry.Get(name)
	fromProvider := p.UnregisterTool(name)
	if !inRegistry {
		if fromProvider {
			slog.Debug("dropped provider tool missing from registry", "tool", name)
		}
		return false, nil
	}
	if !fromProvider {
		e.registry.Unregister(name)
		return false, nil
	}
	if !e.registry.Unregister(name) {
		if err := p.RegisterToolDefinition(def); err != nil {
			slog.Warn("restoring provider tool after failed unregister", "tool", name, "err", err)
		}
		return false, nil
	}
	return true, nil
}

// ExecuteToolFromNeutralFormat runs req through the provider. Provider
// failures are folded into an error result rather than returned.
func (e *Executor) ExecuteToolFromNeutralFormat(ctx context.Context, req types.NeutralToolUseRequest) (types.NeutralToolResult, error) {
	p, err := e.current()
	if err != nil {
		return types.NeutralToolResult{}, err
	}
	res, err := p.ExecuteTool(ctx, req.Name, req.Input)
	if err != nil {
		slog.Debug("provider failed executing tool", "tool", req.Name, "err", err)
		return types.ErrorToolResult(req.ID, (&types.ToolExecutionError{Name: req.Name, Err: err}).Error()), nil
	}
	return convert.ResultToNeutral(req.ID, res), nil
}

// Registry returns the executor's registry.
func (e *Executor) Registry() *registry.Registry { return e.registry }

// Provider returns the running provider, or nil before Initialize.
func (e *Executor) Provider() provider.Provider {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.provider
}

// Subscribe registers l for the provider's events.
func (e *Executor) Subscribe(l events.Listener) func() { return e.hub.Subscribe(l) }
