package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spachava753/toolbridge/internal/types"
)

// SSEConfig configures the event-stream transport.
type SSEConfig struct {
	// Port to bind; 0 lets the OS pick one.
	Port int `json:"port" yaml:"port" validate:"gte=0,lte=65535"`
	// Hostname used for binding and for the reported URL.
	Hostname string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	// AllowExternalConnections binds all interfaces instead of Hostname.
	AllowExternalConnections bool `json:"allowExternalConnections,omitempty" yaml:"allowExternalConnections,omitempty"`
	// EventsPath serves the SSE endpoint.
	EventsPath string `json:"eventsPath,omitempty" yaml:"eventsPath,omitempty"`
	// APIPath serves the streamable HTTP endpoint.
	APIPath string `json:"apiPath,omitempty" yaml:"apiPath,omitempty"`
}

// DefaultSSEConfig returns the defaults applied to empty fields.
func DefaultSSEConfig() SSEConfig {
	return SSEConfig{
		Hostname:   "localhost",
		EventsPath: "/mcp/events",
		APIPath:    "/mcp/api",
	}
}

// WithDefaults fills empty fields from DefaultSSEConfig.
func (c SSEConfig) WithDefaults() SSEConfig {
	d := DefaultSSEConfig()
	if c.Hostname == "" {
		c.Hostname = d.Hostname
	}
	if c.EventsPath == "" {
		c.EventsPath = d.EventsPath
	}
	if c.APIPath == "" {
		c.APIPath = d.APIPath
	}
	return c
}

// SSE serves an MCP server over HTTP: the legacy SSE protocol on EventsPath
// and the streamable HTTP protocol on APIPath.
type SSE struct {
	cfg SSEConfig

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	port       int
}

// NewSSE returns an SSE transport. Empty config fields take their defaults.
func NewSSE(cfg SSEConfig) *SSE {
	return &SSE{cfg: cfg.WithDefaults()}
}

func (s *SSE) Kind() string { return KindSSE }

// Config returns the effective configuration.
func (s *SSE) Config() SSEConfig { return s.cfg }

func (s *SSE) Start(ctx context.Context, server *mcp.Server) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer != nil {
		return nil
	}

	host := s.cfg.Hostname
	if s.cfg.AllowExternalConnections {
		host = "0.0.0.0"
	}
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(s.cfg.Port)))
	if err != nil {
		return &types.TransportStartError{Transport: KindSSE, Err: err}
	}
	addr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		listener.Close()
		return &types.TransportStartError{Transport: KindSSE, Err: fmt.Errorf("unexpected listener address %s", listener.Addr())}
	}

	getServer := func(*http.Request) *mcp.Server { return server }
	mux := http.NewServeMux()
	mux.Handle(s.cfg.EventsPath, mcp.NewSSEHandler(getServer, nil))
	mux.Handle(s.cfg.APIPath, mcp.NewStreamableHTTPHandler(getServer, nil))

	s.httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	s.listener = listener
	s.port = addr.Port

	httpServer := s.httpServer
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("SSE transport stopped serving", "err", err)
		}
	}()
	return nil
}

// Port returns the bound port, or 0 before Start.
func (s *SSE) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// URL returns http://hostname:port, or "" before Start.
func (s *SSE) URL() string {
	port := s.Port()
	if port == 0 {
		return ""
	}
	return "http://" + net.JoinHostPort(s.cfg.Hostname, strconv.Itoa(port))
}

// EventsURL is the SSE endpoint clients connect to.
func (s *SSE) EventsURL() string {
	if u := s.URL(); u != "" {
		return u + s.cfg.EventsPath
	}
	return ""
}

// APIURL is the streamable HTTP endpoint.
func (s *SSE) APIURL() string {
	if u := s.URL(); u != "" {
		return u + s.cfg.APIPath
	}
	return ""
}

func (s *SSE) Close() error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.httpServer, s.listener, s.port = nil, nil, 0
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		// Open SSE streams never finish on their own.
		return errors.Join(fmt.Errorf("shutting down SSE transport: %w", err), httpServer.Close())
	}
	return nil
}
