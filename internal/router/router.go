// Package router detects the format of a tool-use payload, converts it to
// the neutral form, executes it and converts the result back.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spachava753/toolbridge/internal/convert"
	"github.com/spachava753/toolbridge/internal/executor"
	"github.com/spachava753/toolbridge/internal/journal"
	"github.com/spachava753/toolbridge/internal/types"
)

// Request is a tool-use payload tagged with its format. An empty Format is
// detected from Content.
type Request struct {
	Format  types.ToolUseFormat
	Content any
}

// Response carries the result in the request's format: a string for xml
// and json, a convert.OpenAIToolResult for openai and a
// types.NeutralToolResult for neutral.
type Response struct {
	Format  types.ToolUseFormat
	Content any
}

// Option configures a Router.
type Option func(*Router)

// WithJournal records every round trip in j.
func WithJournal(j journal.Journal) Option {
	return func(r *Router) { r.journal = j }
}

// Router routes tool-use payloads of any supported format through an
// Executor.
type Router struct {
	exec    *executor.Executor
	journal journal.Journal
}

func New(exec *executor.Executor, opts ...Option) *Router {
	r := &Router{exec: exec}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Initialize(ctx context.Context) error { return r.exec.Initialize(ctx) }
func (r *Router) Shutdown(ctx context.Context) error   { return r.exec.Shutdown(ctx) }

// Executor returns the executor requests are routed through.
func (r *Router) Executor() *executor.Executor { return r.exec }

// RouteToolUse converts, executes and converts back. It never fails: any
// error along the way becomes an error result rendered in the request's
// format.
func (r *Router) RouteToolUse(ctx context.Context, req Request) Response {
	start := time.Now()
	format := req.Format
	if format == "" {
		format = DetectFormat(req.Content)
	}

	var (
		neutral types.NeutralToolUseRequest
		result  types.NeutralToolResult
	)
	c, ok := codecs[format]
	if !ok {
		result = types.ErrorToolResult("", fmt.Sprintf("unsupported tool use format %q", format))
		format = types.FormatNeutral
		c = codecs[format]
	} else {
		result = r.execute(ctx, c, req.Content, &neutral)
	}

	content, err := c.fromNeutral(result)
	if err != nil {
		slog.Warn("converting tool result", "format", format, "err", err)
		result = types.ErrorToolResult(result.ToolUseID, err.Error())
		if content, err = c.fromNeutral(result); err != nil {
			format, content = types.FormatNeutral, result
		}
	}

	r.record(ctx, format, req.Content, neutral, result, time.Since(start))
	return Response{Format: format, Content: content}
}

func (r *Router) execute(ctx context.Context, c codec, content any, neutral *types.NeutralToolUseRequest) types.NeutralToolResult {
	req, err := c.toNeutral(content)
	if err != nil {
		slog.Debug("converting tool use request", "err", err)
		return types.ErrorToolResult("", err.Error())
	}
	*neutral = req
	res, err := r.exec.ExecuteToolFromNeutralFormat(ctx, req)
	if err != nil {
		return types.ErrorToolResult(req.ID, err.Error())
	}
	return res
}

func (r *Router) record(ctx context.Context, format types.ToolUseFormat, raw any, req types.NeutralToolUseRequest, res types.NeutralToolResult, d time.Duration) {
	if r.journal == nil {
		return
	}
	request := fmt.Sprint(raw)
	if req.Name != "" {
		if s, err := convert.NeutralToJSON(req); err == nil {
			request = s
		}
	}
	response, err := convert.NeutralResultToJSON(res)
	if err != nil {
		response = res.Text()
	}
	_, err = r.journal.Record(ctx, journal.Entry{
		Format:    format,
		ToolName:  req.Name,
		ToolUseID: res.ToolUseID,
		Status:    res.Status,
		Request:   request,
		Response:  response,
		Duration:  d,
	})
	if err != nil {
		slog.Warn("recording tool use in journal", "tool", req.Name, "err", err)
	}
}
