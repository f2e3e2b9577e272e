package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spachava753/toolbridge/internal/events"
	"github.com/spachava753/toolbridge/internal/transport"
	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
	"github.com/spachava753/toolbridge/internal/version"
)

// Config selects and configures the embedded provider's transport.
type Config struct {
	Transport string                `json:"transport,omitempty" yaml:"transport,omitempty" validate:"omitempty,oneof=sse stdio"`
	SSE       transport.SSEConfig   `json:"sse,omitempty" yaml:"sse,omitempty"`
	Stdio     transport.StdioConfig `json:"stdio,omitempty" yaml:"stdio,omitempty"`
}

// NewTransport builds the configured transport, SSE unless stdio is asked for.
func (c Config) NewTransport() transport.Transport {
	if c.Transport == transport.KindStdio {
		return transport.NewStdio(c.Stdio)
	}
	return transport.NewSSE(c.SSE)
}

type state int

const (
	stateNew state = iota
	stateStarted
	stateStopped
)

// Embedded serves its tools from an in-process MCP server.
type Embedded struct {
	tr    transport.Transport
	hub   events.Hub
	tools *toolSet

	mu     sync.Mutex
	state  state
	server *mcp.Server
}

// NewEmbedded returns an embedded provider using the transport cfg selects.
func NewEmbedded(cfg Config) *Embedded {
	return NewEmbeddedOn(cfg.NewTransport())
}

// NewEmbeddedOn returns an embedded provider bound to tr.
func NewEmbeddedOn(tr transport.Transport) *Embedded {
	p := &Embedded{tr: tr}
	p.tools = newToolSet(&p.hub)
	return p
}

// EmbeddedFactory adapts NewEmbedded to a Factory.
func EmbeddedFactory(cfg Config) Factory {
	return func() (Provider, error) { return NewEmbedded(cfg), nil }
}

// Transport returns the underlying transport.
func (p *Embedded) Transport() transport.Transport { return p.tr }

func (p *Embedded) Subscribe(l events.Listener) func() { return p.hub.Subscribe(l) }

func (p *Embedded) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.state == stateStarted {
		p.mu.Unlock()
		return nil
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "toolbridge",
		Title:   "Toolbridge MCP Server",
		Version: version.Get(),
	}, nil)
	for _, def := range p.tools.all() {
		if err := p.mirror(server, def); err != nil {
			p.mu.Unlock()
			return err
		}
	}

	if err := p.tr.Start(ctx, server); err != nil {
		if closeErr := p.tr.Close(); closeErr != nil {
			slog.Warn("closing transport after failed start", "transport", p.tr.Kind(), "err", closeErr)
		}
		p.mu.Unlock()
		return err
	}
	p.server = server
	p.state = stateStarted
	info := &events.ServerInfo{URL: p.urlLocked(), Kind: p.tr.Kind(), Port: p.tr.Port()}
	p.mu.Unlock()

	slog.Info("MCP provider started", "transport", info.Kind, "url", info.URL)
	p.hub.Publish(events.Event{Kind: events.ProviderStarted, Server: info})
	return nil
}

func (p *Embedded) Stop(context.Context) error {
	p.mu.Lock()
	if p.state != stateStarted {
		p.mu.Unlock()
		return nil
	}
	if err := p.tr.Close(); err != nil {
		slog.Warn("closing MCP transport", "transport", p.tr.Kind(), "err", err)
	}
	p.server = nil
	p.state = stateStopped
	p.mu.Unlock()

	slog.Info("MCP provider stopped")
	p.hub.Publish(events.Event{Kind: events.ProviderStopped})
	return nil
}

// RegisterToolDefinition stores def and, when the server is live, adds it
// there too.
func (p *Embedded) RegisterToolDefinition(def types.ToolDefinition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}
	p.mu.Lock()
	if p.server != nil {
		if err := p.mirror(p.server, def); err != nil {
			p.mu.Unlock()
			return err
		}
	}
	p.mu.Unlock()
	p.tools.put(def)
	return nil
}

func (p *Embedded) UnregisterTool(name string) bool {
	p.mu.Lock()
	if p.server != nil {
		p.server.RemoveTools(name)
	}
	p.mu.Unlock()
	return p.tools.remove(name)
}

func (p *Embedded) ExecuteTool(ctx context.Context, name string, args value.Object) (*types.ToolCallResult, error) {
	return p.tools.execute(ctx, name, args), nil
}

func (p *Embedded) ServerURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != stateStarted {
		return ""
	}
	return p.urlLocked()
}

func (p *Embedded) urlLocked() string {
	if u, ok := p.tr.(transport.URLer); ok {
		return u.URL()
	}
	return ""
}

func (p *Embedded) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateStarted
}

// mirror adds def to server. The handler resolves the tool by name on each
// call, so later re-registrations take effect without touching the server.
func (p *Embedded) mirror(server *mcp.Server, def types.ToolDefinition) error {
	tool, err := toMCPTool(def)
	if err != nil {
		return fmt.Errorf("tool %s: %w", def.Name, err)
	}
	name := def.Name
	server.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := argsFromRaw(req.Params.Arguments)
		if err != nil {
			return toMCPResult(types.ErrorResult(fmt.Sprintf("invalid arguments for tool '%s': %v", name, err))), nil
		}
		res, err := p.ExecuteTool(ctx, name, args)
		if err != nil {
			return toMCPResult(types.ErrorResult((&types.ToolExecutionError{Name: name, Err: err}).Error())), nil
		}
		return toMCPResult(res), nil
	})
	return nil
}
