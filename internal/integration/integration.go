// Package integration is the entry point embedding applications use: it owns
// a Router, initializes it on first use and offers per-format helpers over
// RouteToolUse.
package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3/shared"
	"google.golang.org/genai"

	"github.com/spachava753/toolbridge/internal/builtin"
	"github.com/spachava753/toolbridge/internal/config"
	"github.com/spachava753/toolbridge/internal/convert"
	"github.com/spachava753/toolbridge/internal/events"
	"github.com/spachava753/toolbridge/internal/executor"
	"github.com/spachava753/toolbridge/internal/journal"
	"github.com/spachava753/toolbridge/internal/provider"
	"github.com/spachava753/toolbridge/internal/registry"
	"github.com/spachava753/toolbridge/internal/router"
	"github.com/spachava753/toolbridge/internal/transport"
	"github.com/spachava753/toolbridge/internal/types"
)

// Facade wraps a Router with lazy initialization.
type Facade struct {
	router  *router.Router
	journal journal.Journal

	mu      sync.Mutex
	ready   bool
	closers []func() error
}

// New returns a facade over r. Nothing is started until Initialize or the
// first HandleToolUse.
func New(r *router.Router) *Facade {
	return &Facade{router: r}
}

// Option adjusts what NewDefault builds.
type Option func(*options)

type options struct {
	factory provider.Factory
}

// WithFactory replaces the embedded provider NewDefault would build.
func WithFactory(f provider.Factory) Option {
	return func(o *options) { o.factory = f }
}

// NewDefault builds the facade described by cfg: an embedded provider on the
// configured transport, the enabled built-in tools and a journal.
func NewDefault(ctx context.Context, cfg *config.Config, opts ...Option) (*Facade, error) {
	o := options{factory: provider.EmbeddedFactory(cfg.Provider)}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		j       journal.Journal
		closers []func() error
	)
	if cfg.Journal.Path != "" {
		s, closeDB, err := journal.Open(ctx, cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("opening journal: %w", err)
		}
		j, closers = s, append(closers, closeDB)
	} else {
		j = journal.NewMemDB()
	}

	reg := registry.New()
	defs, err := builtin.New(cfg.Builtin.Root, cfg.Builtin.Enabled...)
	if err != nil {
		return nil, errors.Join(err, closeAll(closers))
	}
	for _, def := range defs {
		reg.Register(def)
	}

	exec := executor.New(o.factory, executor.WithRegistry(reg))
	f := New(router.New(exec, router.WithJournal(j)))
	f.journal = j
	f.closers = closers
	return f, nil
}

// IsReady reports whether the facade has been initialized.
func (f *Facade) IsReady() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

// Initialize starts the router. Calling it again is a no-op.
func (f *Facade) Initialize(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ready {
		return nil
	}
	if err := f.router.Initialize(ctx); err != nil {
		return err
	}
	f.ready = true
	return nil
}

// Shutdown stops the router. The facade can be initialized again.
func (f *Facade) Shutdown(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ready {
		return nil
	}
	f.ready = false
	return f.router.Shutdown(ctx)
}

// Close shuts the facade down and releases what NewDefault opened.
func (f *Facade) Close(ctx context.Context) error {
	err := f.Shutdown(ctx)
	f.mu.Lock()
	closers := f.closers
	f.closers = nil
	f.mu.Unlock()
	return errors.Join(err, closeAll(closers))
}

func closeAll(closers []func() error) error {
	var errs []error
	for _, c := range closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (f *Facade) executor() *executor.Executor { return f.router.Executor() }

// RegisterTool registers def with the executor.
func (f *Facade) RegisterTool(def types.ToolDefinition) error {
	return f.executor().RegisterTool(def)
}

// UnregisterTool removes name, reporting whether it was registered.
func (f *Facade) UnregisterTool(name string) (bool, error) {
	return f.executor().UnregisterTool(name)
}

// Registry returns the tool registry.
func (f *Facade) Registry() *registry.Registry { return f.executor().Registry() }

// Journal returns the journal NewDefault attached, or nil.
func (f *Facade) Journal() journal.Journal { return f.journal }

// Subscribe registers l for provider lifecycle and tool events.
func (f *Facade) Subscribe(l events.Listener) func() { return f.executor().Subscribe(l) }

// ServerURL returns the provider's URL, or "" when it is not running.
func (f *Facade) ServerURL() string {
	p := f.executor().Provider()
	if p == nil {
		return ""
	}
	return p.ServerURL()
}

// Transport returns the transport of an embedded provider, or nil.
func (f *Facade) Transport() transport.Transport {
	if p, ok := f.executor().Provider().(*provider.Embedded); ok {
		return p.Transport()
	}
	return nil
}

// ProcessXMLToolUse routes an XML tool call and returns the XML result.
func (f *Facade) ProcessXMLToolUse(ctx context.Context, content string) string {
	resp := f.router.RouteToolUse(ctx, router.Request{Format: types.FormatXML, Content: content})
	if s, ok := resp.Content.(string); ok {
		return s
	}
	return convert.NeutralResultToXML(asNeutral(resp))
}

// ProcessJSONToolUse routes a neutral JSON tool call, given as text or as a
// decoded object, and returns the JSON result.
func (f *Facade) ProcessJSONToolUse(ctx context.Context, content any) string {
	resp := f.router.RouteToolUse(ctx, router.Request{Format: types.FormatJSON, Content: content})
	if s, ok := resp.Content.(string); ok {
		return s
	}
	out, err := convert.NeutralResultToJSON(asNeutral(resp))
	if err != nil {
		slog.Warn("rendering json tool result", "err", err)
	}
	return out
}

// ProcessOpenAIFunctionCall routes an OpenAI function call or tool call
// message and returns the tool message to send back.
func (f *Facade) ProcessOpenAIFunctionCall(ctx context.Context, call any) convert.OpenAIToolResult {
	resp := f.router.RouteToolUse(ctx, router.Request{Format: types.FormatOpenAI, Content: call})
	if out, ok := resp.Content.(convert.OpenAIToolResult); ok {
		return out
	}
	return convert.NeutralResultToOpenAI(asNeutral(resp))
}

// RouteToolUse detects the format of content and routes it. The response
// carries the result in the detected format.
func (f *Facade) RouteToolUse(ctx context.Context, content any) router.Response {
	return f.router.RouteToolUse(ctx, router.Request{Format: router.DetectFormat(content), Content: content})
}

func asNeutral(resp router.Response) types.NeutralToolResult {
	if res, ok := resp.Content.(types.NeutralToolResult); ok {
		return res
	}
	return types.ErrorToolResult("", fmt.Sprintf("unexpected %s result of type %T", resp.Format, resp.Content))
}

// OpenAIFunctions exports the registered tools as OpenAI function
// definitions.
func (f *Facade) OpenAIFunctions() ([]shared.FunctionDefinitionParam, error) {
	return convert.ToOpenAIFunctions(f.Registry().List())
}

// AnthropicTools exports the registered tools as Anthropic tool params.
func (f *Facade) AnthropicTools() ([]anthropic.ToolUnionParam, error) {
	return convert.ToAnthropicTools(f.Registry().List())
}

// GeminiTool exports the registered tools as one Gemini tool.
func (f *Facade) GeminiTool() (*genai.Tool, error) {
	return convert.ToGeminiTool(f.Registry().List())
}

// HandleToolUse initializes f if needed, then routes content. An empty
// format is detected. The error is only ever an initialization failure; the
// round trip itself reports problems as an error result.
func HandleToolUse(ctx context.Context, f *Facade, content any, format types.ToolUseFormat) (router.Response, error) {
	if !f.IsReady() {
		if err := f.Initialize(ctx); err != nil {
			return router.Response{}, fmt.Errorf("initializing tool bridge: %w", err)
		}
	}
	if format == "" {
		return f.RouteToolUse(ctx, content), nil
	}
	return f.router.RouteToolUse(ctx, router.Request{Format: format, Content: content}), nil
}
