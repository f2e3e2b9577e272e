// Package transport binds an MCP server instance to a byte transport. The
// two implementations, SSE over HTTP and stdio, share the Transport contract
// so providers can be configured with either.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spachava753/toolbridge/internal/types"
)

const (
	KindSSE   = "sse"
	KindStdio = "stdio"
)

// Transport carries MCP traffic for one server.
type Transport interface {
	// Kind reports "sse" or "stdio".
	Kind() string
	// Start binds server to the transport. It returns once the transport is
	// accepting traffic.
	Start(ctx context.Context, server *mcp.Server) error
	// Close releases the transport. It is safe to call more than once.
	Close() error
	// Port is the bound TCP port, or 0 for transports without one.
	Port() int
}

// URLer is implemented by transports reachable over HTTP.
type URLer interface {
	URL() string
}

// Conn serves a server over an arbitrary mcp.Transport, such as one end of
// mcp.NewInMemoryTransports. The stdio transport is built on it.
type Conn struct {
	kind string
	t    mcp.Transport

	mu      sync.Mutex
	session *mcp.ServerSession
	onClose func() error
}

// NewConn wraps t. kind is reported by Kind.
func NewConn(kind string, t mcp.Transport) *Conn {
	return &Conn{kind: kind, t: t}
}

func (c *Conn) Kind() string { return c.kind }
func (c *Conn) Port() int    { return 0 }

func (c *Conn) Start(ctx context.Context, server *mcp.Server) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return nil
	}
	if c.t == nil {
		return &types.TransportStartError{Transport: c.kind, Err: errors.New("no underlying transport")}
	}
	session, err := server.Connect(ctx, c.t, nil)
	if err != nil {
		return &types.TransportStartError{Transport: c.kind, Err: err}
	}
	c.session = session
	return nil
}

// Wait blocks until the client side closes the connection.
func (c *Conn) Wait() error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return fmt.Errorf("%s transport: %w", c.kind, types.ErrNotInitialized)
	}
	return session.Wait()
}

func (c *Conn) Close() error {
	c.mu.Lock()
	session, onClose := c.session, c.onClose
	c.session, c.onClose = nil, nil
	c.mu.Unlock()

	var errs []error
	if session != nil {
		if err := session.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing session: %w", err))
		}
	}
	if onClose != nil {
		if err := onClose(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
