package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spachava753/toolbridge/internal/config"
	"github.com/spachava753/toolbridge/internal/events"
	"github.com/spachava753/toolbridge/internal/integration"
	"github.com/spachava753/toolbridge/internal/transport"
)

// ServeOptions contains parameters for running the embedded MCP server
type ServeOptions struct {
	// Config is the loaded configuration; flag overrides are already applied
	Config *config.Config
	// Writer receives the startup banner. In stdio mode it must not be
	// stdout, which carries the protocol.
	Writer io.Writer
	// Ready, when set, is called with the server URL once it is listening
	Ready func(url string)
}

// Serve starts the embedded provider with the built-in tools and blocks
// until ctx is done or, for the stdio transport, the client disconnects.
func Serve(ctx context.Context, opts ServeOptions) error {
	f, err := integration.NewDefault(ctx, opts.Config)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("shutting down", "err", err)
		}
	}()

	unsubscribe := f.Subscribe(events.ListenerFunc(logEvent))
	defer unsubscribe()

	if err := f.Initialize(ctx); err != nil {
		return err
	}

	url := f.ServerURL()
	if opts.Writer != nil {
		fmt.Fprintf(opts.Writer, "toolbridge serving %d tools over %s\n", len(f.Registry().Names()), opts.Config.Provider.Transport)
		if opts.Config.Provider.Transport == transport.KindSSE {
			sse := opts.Config.Provider.SSE
			fmt.Fprintf(opts.Writer, "  events: %s%s\n", url, sse.EventsPath)
			fmt.Fprintf(opts.Writer, "  api:    %s%s\n", url, sse.APIPath)
		}
	}
	if opts.Ready != nil {
		opts.Ready(url)
	}

	disconnected := make(chan error, 1)
	if w, ok := f.Transport().(interface{ Wait() error }); ok {
		go func() { disconnected <- w.Wait() }()
	}
	select {
	case <-ctx.Done():
	case err := <-disconnected:
		slog.Info("client disconnected", "err", err)
	}
	return nil
}

func logEvent(e events.Event) {
	switch e.Kind {
	case events.ToolRegistered, events.ToolUnregistered:
		slog.Debug("tool event", "kind", e.Kind, "tool", e.ToolName)
	case events.ProviderStopped:
		slog.Info("MCP provider stopped")
	}
}
