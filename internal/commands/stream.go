package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spachava753/toolbridge/internal/config"
	"github.com/spachava753/toolbridge/internal/convert"
	"github.com/spachava753/toolbridge/internal/integration"
	"github.com/spachava753/toolbridge/internal/matcher"
	"github.com/spachava753/toolbridge/internal/provider"
	"github.com/spachava753/toolbridge/internal/types"
)

const streamChunkSize = 4 << 10

// StreamOptions contains parameters for filtering a model output stream
type StreamOptions struct {
	Config *config.Config
	Input  io.Reader
	Writer io.Writer
}

// Stream copies model output from Input to Writer. Every complete call to an
// enabled built-in tool found along the way is executed and its result is
// written right after the call, in the call's format.
func Stream(ctx context.Context, opts StreamOptions) error {
	f, err := integration.NewDefault(ctx, opts.Config, integration.WithFactory(provider.MemoryFactory))
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("closing tool bridge", "err", err)
		}
	}()

	m := matcher.NewToolUseMatcher(append(opts.Config.MatcherOptions(),
		matcher.WithToolNames(f.Registry().Names()...))...)

	calls := 0
	emit := func(segs []matcher.Segment) error {
		for _, seg := range segs {
			if _, err := io.WriteString(opts.Writer, seg.Raw); err != nil {
				return err
			}
			if !seg.Matched {
				continue
			}
			calls++
			isXML := strings.HasPrefix(seg.Raw, "<")
			slog.Debug("routing streamed tool call", "tool", seg.Name, "id", seg.ID, "xml", isXML)
			res, err := runStreamedCall(ctx, f, seg, isXML)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(opts.Writer, "\n"+res+"\n"); err != nil {
				return err
			}
		}
		return nil
	}

	buf := make([]byte, streamChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := opts.Input.Read(buf)
		if n > 0 {
			if err := emit(m.Update(string(buf[:n]))); err != nil {
				return err
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fmt.Errorf("reading input: %w", readErr)
		}
	}
	if err := emit(m.Final("")); err != nil {
		return err
	}
	slog.Debug("stream finished", "tool_calls", calls)
	return nil
}

// runStreamedCall executes a matched call under the id the matcher recorded
// for it and renders the result in the call's own syntax.
func runStreamedCall(ctx context.Context, f *integration.Facade, seg matcher.Segment, isXML bool) (string, error) {
	var req types.NeutralToolUseRequest
	var err error
	if isXML {
		req, err = convert.XMLToNeutral(seg.Raw)
	} else {
		req, err = convert.JSONToNeutral(seg.Raw)
	}

	var res types.NeutralToolResult
	if err != nil {
		res = types.ErrorToolResult(seg.ID, err.Error())
	} else {
		req.ID = seg.ID
		resp, err := integration.HandleToolUse(ctx, f, req, types.FormatNeutral)
		if err != nil {
			return "", err
		}
		r, ok := resp.Content.(types.NeutralToolResult)
		if !ok {
			return "", fmt.Errorf("unexpected %s result %T", resp.Format, resp.Content)
		}
		res = r
	}

	if isXML {
		return convert.NeutralResultToXML(res), nil
	}
	return convert.NeutralResultToJSON(res)
}
