package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spachava753/toolbridge/internal/events"
	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
	"github.com/spachava753/toolbridge/internal/version"
)

const (
	RemoteSSE   = "sse"
	RemoteHTTP  = "http"
	RemoteStdio = "stdio"

	defaultRemoteTimeout = 30 * time.Second
	defaultRemoteTries   = 3
)

// RemoteConfig describes an external MCP server.
type RemoteConfig struct {
	// Type is "sse", "http" (streamable) or "stdio". Defaults to stdio when a
	// command is set and sse otherwise.
	Type    string            `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=sse http stdio"`
	URL     string            `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
	Command string            `json:"command,omitempty" yaml:"command,omitempty" validate:"required_if=Type stdio"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	// Timeout bounds connection attempts, in seconds.
	Timeout int `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"gte=0"`
}

// Kind resolves the transport type, inferring it when Type is empty.
func (c RemoteConfig) Kind() string {
	if c.Type != "" {
		return c.Type
	}
	if c.Command != "" {
		return RemoteStdio
	}
	return RemoteSSE
}

func (c RemoteConfig) newTransport() (mcp.Transport, error) {
	switch c.Kind() {
	case RemoteSSE:
		return &mcp.SSEClientTransport{Endpoint: c.URL}, nil
	case RemoteHTTP:
		return &mcp.StreamableClientTransport{Endpoint: c.URL}, nil
	case RemoteStdio:
		if c.Command == "" {
			return nil, errors.New("stdio server requires a command")
		}
		cmd := exec.Command(c.Command, c.Args...)
		cmd.Env = os.Environ()
		for k, v := range c.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
		return &mcp.CommandTransport{Command: cmd}, nil
	}
	return nil, fmt.Errorf("unsupported server type %q", c.Type)
}

// Remote forwards tool calls to an external MCP server over a client session.
// Definitions registered locally are bookkeeping only; execution always goes
// to the remote side.
type Remote struct {
	cfg   RemoteConfig
	hub   events.Hub
	tools *toolSet

	mu      sync.Mutex
	session *mcp.ClientSession
}

func NewRemote(cfg RemoteConfig) *Remote {
	r := &Remote{cfg: cfg}
	r.tools = newToolSet(&r.hub)
	return r
}

// RemoteFactory adapts NewRemote to a Factory.
func RemoteFactory(cfg RemoteConfig) Factory {
	return func() (Provider, error) { return NewRemote(cfg), nil }
}

func (r *Remote) Subscribe(l events.Listener) func() { return r.hub.Subscribe(l) }

// Start connects to the server, retrying with exponential backoff.
func (r *Remote) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.session != nil {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	timeout := defaultRemoteTimeout
	if r.cfg.Timeout > 0 {
		timeout = time.Duration(r.cfg.Timeout) * time.Second
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "toolbridge", Version: version.Get()}, nil)
	operation := func() (*mcp.ClientSession, error) {
		t, err := r.cfg.newTransport()
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		session, err := client.Connect(ctx, t, nil)
		if err != nil {
			slog.Debug("connecting to remote MCP server failed", "kind", r.cfg.Kind(), "err", err)
			return nil, err
		}
		return session, nil
	}
	session, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(defaultRemoteTries),
		backoff.WithMaxElapsedTime(timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to remote MCP server: %w", err)
	}

	r.mu.Lock()
	if r.session != nil {
		r.mu.Unlock()
		session.Close()
		return nil
	}
	r.session = session
	r.mu.Unlock()

	slog.Info("connected to remote MCP server", "kind", r.cfg.Kind(), "url", r.ServerURL())
	r.hub.Publish(events.Event{Kind: events.ProviderStarted, Server: &events.ServerInfo{URL: r.ServerURL(), Kind: r.cfg.Kind()}})
	return nil
}

func (r *Remote) Stop(context.Context) error {
	r.mu.Lock()
	session := r.session
	r.session = nil
	r.mu.Unlock()
	if session == nil {
		return nil
	}
	if err := session.Close(); err != nil {
		slog.Warn("closing remote MCP session", "err", err)
	}
	r.hub.Publish(events.Event{Kind: events.ProviderStopped})
	return nil
}

func (r *Remote) RegisterToolDefinition(def types.ToolDefinition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}
	r.tools.put(def)
	return nil
}

func (r *Remote) UnregisterTool(name string) bool { return r.tools.remove(name) }

// ExecuteTool calls name on the remote server. Call failures come back as
// error results; calling before Start is an error.
func (r *Remote) ExecuteTool(ctx context.Context, name string, args value.Object) (*types.ToolCallResult, error) {
	r.mu.Lock()
	session := r.session
	r.mu.Unlock()
	if session == nil {
		return nil, fmt.Errorf("remote MCP provider: %w", errNotRunning)
	}
	if args == nil {
		args = value.Object{}
	}
	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args.Any()})
	if err != nil {
		return types.ErrorResult((&types.ToolExecutionError{Name: name, Err: err}).Error()), nil
	}
	return fromMCPResult(res), nil
}

// RemoteTools lists the tools the server advertises.
func (r *Remote) RemoteTools(ctx context.Context) ([]*mcp.Tool, error) {
	r.mu.Lock()
	session := r.session
	r.mu.Unlock()
	if session == nil {
		return nil, fmt.Errorf("remote MCP provider: %w", errNotRunning)
	}
	var tools []*mcp.Tool
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("listing tools: %w", err)
		}
		tools = append(tools, tool)
	}
	return tools, nil
}

// ServerURL is the configured URL, or the command line for stdio servers.
func (r *Remote) ServerURL() string {
	if r.cfg.Kind() == RemoteStdio {
		return strings.TrimSpace(r.cfg.Command + " " + strings.Join(r.cfg.Args, " "))
	}
	return r.cfg.URL
}

func (r *Remote) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}
