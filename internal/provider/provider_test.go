package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/toolbridge/internal/events"
	"github.com/spachava753/toolbridge/internal/transport"
	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
)

func greetTool() types.ToolDefinition {
	return types.ToolDefinition{
		Name:        "greet",
		Description: "says hello",
		ParamSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"name": {Type: "string"}},
			Required:   []string{"name"},
		},
		Handler: func(_ context.Context, args value.Object) (*types.ToolCallResult, error) {
			name, _ := args["name"].AsString()
			return types.TextResult("hello " + name), nil
		},
	}
}

func failingTool() types.ToolDefinition {
	return types.ToolDefinition{
		Name: "fail",
		Handler: func(context.Context, value.Object) (*types.ToolCallResult, error) {
			return nil, errors.New("kaput")
		},
	}
}

func TestProvidersShareContract(t *testing.T) {
	tests := []struct {
		name string
		new  func() Provider
	}{
		{"memory", func() Provider { return NewMemory() }},
		{"embedded", func() Provider { return NewEmbedded(Config{SSE: transport.SSEConfig{Hostname: "127.0.0.1"}}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			p := tt.new()
			rec := &events.Recorder{}
			p.Subscribe(rec)

			assert.False(t, p.IsRunning())
			assert.Empty(t, p.ServerURL())

			require.NoError(t, p.RegisterToolDefinition(greetTool()))
			require.NoError(t, p.RegisterToolDefinition(failingTool()))
			require.NoError(t, p.Start(ctx))
			require.NoError(t, p.Start(ctx))
			assert.True(t, p.IsRunning())
			assert.NotEmpty(t, p.ServerURL())

			res, err := p.ExecuteTool(ctx, "greet", value.Object{"name": value.Str("ada")})
			require.NoError(t, err)
			assert.False(t, res.IsError)
			assert.Equal(t, "hello ada", res.Text())

			res, err = p.ExecuteTool(ctx, "nope", nil)
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Equal(t, "Tool 'nope' not found", res.Text())

			res, err = p.ExecuteTool(ctx, "fail", nil)
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Equal(t, "Error executing tool 'fail': kaput", res.Text())

			assert.True(t, p.UnregisterTool("fail"))
			assert.False(t, p.UnregisterTool("fail"))

			require.NoError(t, p.Stop(ctx))
			require.NoError(t, p.Stop(ctx))
			assert.False(t, p.IsRunning())
			assert.Empty(t, p.ServerURL())

			assert.Equal(t, []events.Kind{
				events.ToolRegistered,
				events.ToolRegistered,
				events.ProviderStarted,
				events.ToolUnregistered,
				events.ProviderStopped,
			}, rec.Kinds())
		})
	}
}

func TestRegisterRejectsBadDefinitions(t *testing.T) {
	p := NewMemory()
	assert.ErrorIs(t, p.RegisterToolDefinition(types.ToolDefinition{}), errEmptyName)
	err := p.RegisterToolDefinition(types.ToolDefinition{Name: "x", ParamSchema: &jsonschema.Schema{Type: "string"}})
	assert.ErrorIs(t, err, errSchemaObject)
}

func connectClient(t *testing.T, ctx context.Context, ct mcp.Transport) *mcp.ClientSession {
	t.Helper()
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func listNames(t *testing.T, ctx context.Context, session *mcp.ClientSession) []string {
	t.Helper()
	var names []string
	for tool, err := range session.Tools(ctx, nil) {
		require.NoError(t, err)
		names = append(names, tool.Name)
	}
	return names
}

func TestEmbeddedServesToolsOverMCP(t *testing.T) {
	ctx := context.Background()
	serverSide, clientSide := mcp.NewInMemoryTransports()
	p := NewEmbeddedOn(transport.NewConn(transport.KindStdio, serverSide))
	require.NoError(t, p.RegisterToolDefinition(greetTool()))
	require.NoError(t, p.Start(ctx))
	defer p.Stop(ctx)

	session := connectClient(t, ctx, clientSide)
	assert.Equal(t, []string{"greet"}, listNames(t, ctx, session))

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "greet", Arguments: map[string]any{"name": "bob"}})
	require.NoError(t, err)
	assert.Equal(t, "hello bob", fromMCPResult(res).Text())

	// Tools added after start reach the live server.
	require.NoError(t, p.RegisterToolDefinition(failingTool()))
	assert.ElementsMatch(t, []string{"greet", "fail"}, listNames(t, ctx, session))

	res, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "fail", Arguments: map[string]any{}})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	assert.True(t, p.UnregisterTool("fail"))
	assert.Equal(t, []string{"greet"}, listNames(t, ctx, session))
}

func TestEmbeddedStartFailure(t *testing.T) {
	p := NewEmbeddedOn(transport.NewConn(transport.KindStdio, nil))
	rec := &events.Recorder{}
	p.Subscribe(rec)

	err := p.Start(context.Background())
	var startErr *types.TransportStartError
	require.ErrorAs(t, err, &startErr)
	assert.False(t, p.IsRunning())
	assert.Empty(t, rec.Events())
}

func TestEmbeddedStartedEventCarriesServerInfo(t *testing.T) {
	ctx := context.Background()
	p := NewEmbedded(Config{SSE: transport.SSEConfig{Hostname: "127.0.0.1"}})
	var got events.Event
	p.Subscribe(events.ListenerFunc(func(e events.Event) {
		if e.Kind == events.ProviderStarted {
			got = e
		}
	}))
	require.NoError(t, p.Start(ctx))
	defer p.Stop(ctx)

	require.NotNil(t, got.Server)
	assert.Equal(t, transport.KindSSE, got.Server.Kind)
	assert.Positive(t, got.Server.Port)
	assert.Equal(t, p.ServerURL(), got.Server.URL)
}

func TestRemoteForwardsToEmbedded(t *testing.T) {
	ctx := context.Background()
	embedded := NewEmbedded(Config{SSE: transport.SSEConfig{Hostname: "127.0.0.1"}})
	require.NoError(t, embedded.RegisterToolDefinition(greetTool()))
	require.NoError(t, embedded.Start(ctx))
	defer embedded.Stop(ctx)
	sse := embedded.Transport().(*transport.SSE)

	tests := []struct {
		name string
		cfg  RemoteConfig
	}{
		{"sse", RemoteConfig{Type: RemoteSSE, URL: sse.EventsURL()}},
		{"http", RemoteConfig{Type: RemoteHTTP, URL: sse.APIURL()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRemote(tt.cfg)
			_, err := r.ExecuteTool(ctx, "greet", nil)
			assert.ErrorIs(t, err, errNotRunning)

			require.NoError(t, r.Start(ctx))
			defer r.Stop(ctx)
			assert.True(t, r.IsRunning())
			assert.Equal(t, tt.cfg.URL, r.ServerURL())

			tools, err := r.RemoteTools(ctx)
			require.NoError(t, err)
			require.Len(t, tools, 1)
			assert.Equal(t, "greet", tools[0].Name)

			res, err := r.ExecuteTool(ctx, "greet", value.Object{"name": value.Str("eve")})
			require.NoError(t, err)
			assert.Equal(t, "hello eve", res.Text())

			res, err = r.ExecuteTool(ctx, "missing", nil)
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
}

func TestResultConversion(t *testing.T) {
	in := &types.ToolCallResult{Content: []types.Content{
		types.TextContent("caption"),
		types.ImageContent("image/png", "aGVsbG8="),
	}}
	out := fromMCPResult(toMCPResult(in))
	assert.Equal(t, in.Content, out.Content)
	assert.False(t, out.IsError)

	bad := toMCPResult(&types.ToolCallResult{Content: []types.Content{types.ImageContent("image/png", "!!")}})
	require.Len(t, bad.Content, 1)
	_, isText := bad.Content[0].(*mcp.TextContent)
	assert.True(t, isText)
}

func TestArgsFromRaw(t *testing.T) {
	for _, raw := range []string{"", "null"} {
		args, err := argsFromRaw([]byte(raw))
		require.NoError(t, err)
		assert.Empty(t, args)
	}
	args, err := argsFromRaw([]byte(`{"a":1}`))
	require.NoError(t, err)
	n, _ := args["a"].AsInt()
	assert.EqualValues(t, 1, n)

	_, err = argsFromRaw([]byte(`[1]`))
	assert.Error(t, err)
}
