package provider

import (
	"context"
	"sync"

	"github.com/spachava753/toolbridge/internal/events"
	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
)

// memoryURL is reported while a Memory provider is running.
const memoryURL = "http://localhost:0"

// Memory honours the Provider contract without any server, for tests and
// for hosts that only route in process.
type Memory struct {
	hub   events.Hub
	tools *toolSet

	mu      sync.Mutex
	running bool
}

func NewMemory() *Memory {
	m := &Memory{}
	m.tools = newToolSet(&m.hub)
	return m
}

// MemoryFactory is a Factory for Memory providers.
func MemoryFactory() (Provider, error) { return NewMemory(), nil }

func (m *Memory) Subscribe(l events.Listener) func() { return m.hub.Subscribe(l) }

func (m *Memory) Start(context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.mu.Unlock()
	m.hub.Publish(events.Event{Kind: events.ProviderStarted, Server: &events.ServerInfo{URL: memoryURL}})
	return nil
}

func (m *Memory) Stop(context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.mu.Unlock()
	m.hub.Publish(events.Event{Kind: events.ProviderStopped})
	return nil
}

func (m *Memory) RegisterToolDefinition(def types.ToolDefinition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}
	m.tools.put(def)
	return nil
}

func (m *Memory) UnregisterTool(name string) bool { return m.tools.remove(name) }

func (m *Memory) ExecuteTool(ctx context.Context, name string, args value.Object) (*types.ToolCallResult, error) {
	return m.tools.execute(ctx, name, args), nil
}

func (m *Memory) ServerURL() string {
	if m.IsRunning() {
		return memoryURL
	}
	return ""
}

func (m *Memory) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
