package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spachava753/toolbridge/internal/config"
	"github.com/spachava753/toolbridge/internal/detect"
	"github.com/spachava753/toolbridge/internal/integration"
	"github.com/spachava753/toolbridge/internal/provider"
	"github.com/spachava753/toolbridge/internal/router"
	"github.com/spachava753/toolbridge/internal/types"
)

// RouteOptions contains parameters for routing a single tool-use payload
type RouteOptions struct {
	Config *config.Config
	// Content is the payload; when empty it is read from Input
	Content string
	Input   io.Reader
	// Format forces the payload format; empty detects it
	Format string
	Writer io.Writer
}

// Route runs one payload through an in-process facade holding the built-in
// tools and prints the result in the payload's format.
func Route(ctx context.Context, opts RouteOptions) error {
	content, err := readContent(opts.Content, opts.Input)
	if err != nil {
		return err
	}

	var format types.ToolUseFormat
	if opts.Format != "" {
		f, ok := types.ParseFormat(opts.Format)
		if !ok {
			return fmt.Errorf("unknown format %q, expected one of xml, json, openai, neutral", opts.Format)
		}
		format = f
	}

	f, err := integration.NewDefault(ctx, opts.Config, integration.WithFactory(provider.MemoryFactory))
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("closing tool bridge", "err", err)
		}
	}()

	resp, err := integration.HandleToolUse(ctx, f, content, format)
	if err != nil {
		return err
	}
	return writeResponse(opts.Writer, resp)
}

func readContent(content string, input io.Reader) (string, error) {
	if content == "" && input != nil {
		data, err := io.ReadAll(input)
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		content = string(data)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("empty input")
	}
	return content, nil
}

func writeResponse(w io.Writer, resp router.Response) error {
	if s, ok := resp.Content.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	data, err := json.MarshalIndent(resp.Content, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s result: %w", resp.Format, err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// DetectOptions contains parameters for classifying a payload
type DetectOptions struct {
	Content string
	Input   io.Reader
	Writer  io.Writer
}

// Detect prints the stream syntax family and the router format of a payload.
func Detect(_ context.Context, opts DetectOptions) error {
	content, err := readContent(opts.Content, opts.Input)
	if err != nil {
		return err
	}
	fmt.Fprintf(opts.Writer, "stream: %s\n", detect.Sample(content))
	fmt.Fprintf(opts.Writer, "format: %s\n", router.DetectFormat(content))
	return nil
}
