package transport

import (
	"context"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/toolbridge/internal/types"
)

func pingServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v0.0.1"}, nil)
	server.AddTool(&mcp.Tool{
		Name:        "ping",
		Description: "replies pong",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: "pong"}}}, nil
	})
	return server
}

func callPing(t *testing.T, ctx context.Context, ct mcp.Transport) string {
	t.Helper()
	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "ping", Arguments: map[string]any{}})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestSSEServesBothEndpoints(t *testing.T) {
	ctx := context.Background()
	tr := NewSSE(SSEConfig{})
	require.NoError(t, tr.Start(ctx, pingServer()))
	defer tr.Close()

	assert.Equal(t, KindSSE, tr.Kind())
	assert.Positive(t, tr.Port())
	assert.Equal(t, "http://localhost:"+strconv.Itoa(tr.Port()), tr.URL())
	assert.True(t, strings.HasSuffix(tr.EventsURL(), "/mcp/events"))

	assert.Equal(t, "pong", callPing(t, ctx, &mcp.SSEClientTransport{Endpoint: tr.EventsURL()}))
	assert.Equal(t, "pong", callPing(t, ctx, &mcp.StreamableClientTransport{Endpoint: tr.APIURL()}))
}

func TestSSEStartIsIdempotentAndCloseResets(t *testing.T) {
	ctx := context.Background()
	tr := NewSSE(SSEConfig{Hostname: "127.0.0.1"})
	server := pingServer()
	require.NoError(t, tr.Start(ctx, server))
	port := tr.Port()
	require.NoError(t, tr.Start(ctx, server))
	assert.Equal(t, port, tr.Port())

	require.NoError(t, tr.Close())
	assert.Zero(t, tr.Port())
	assert.Empty(t, tr.URL())
	require.NoError(t, tr.Close())
}

func TestSSEPortInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	tr := NewSSE(SSEConfig{Hostname: "127.0.0.1", Port: port})
	err = tr.Start(context.Background(), pingServer())
	var startErr *types.TransportStartError
	require.ErrorAs(t, err, &startErr)
	assert.Equal(t, KindSSE, startErr.Transport)
}

func TestSSEConfigDefaults(t *testing.T) {
	cfg := SSEConfig{Port: 8080, APIPath: "/api"}.WithDefaults()
	assert.Equal(t, SSEConfig{Port: 8080, Hostname: "localhost", EventsPath: "/mcp/events", APIPath: "/api"}, cfg)
}

func TestConnInMemory(t *testing.T) {
	ctx := context.Background()
	serverSide, clientSide := mcp.NewInMemoryTransports()
	tr := NewConn(KindStdio, serverSide)
	require.NoError(t, tr.Start(ctx, pingServer()))
	defer tr.Close()

	assert.Zero(t, tr.Port())
	assert.Equal(t, "pong", callPing(t, ctx, clientSide))
}

func TestConnWaitBeforeStart(t *testing.T) {
	err := NewConn(KindStdio, nil).Wait()
	assert.ErrorIs(t, err, types.ErrNotInitialized)
}

func TestChildEnvKeepsPath(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")
	env := childEnv(map[string]string{"A": "1"})
	assert.ElementsMatch(t, []string{"A=1", "PATH=/usr/bin"}, env)

	env = childEnv(map[string]string{"PATH": "/opt"})
	assert.Equal(t, []string{"PATH=/opt"}, env)
}
