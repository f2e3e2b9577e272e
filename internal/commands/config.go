package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spachava753/toolbridge/internal/config"
)

// ConfigInitOptions contains parameters for writing a starter config
type ConfigInitOptions struct {
	// Path to write; empty uses config.FindDefaultConfigPath
	Path      string
	Overwrite bool
	Writer    io.Writer
}

// ConfigInit writes the default configuration to disk.
func ConfigInit(_ context.Context, opts ConfigInitOptions) error {
	path := opts.Path
	if path == "" {
		path = config.FindDefaultConfigPath()
	}
	if err := config.Write(path, config.Default(), opts.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(opts.Writer, "Wrote default configuration to %s\n", path)
	return nil
}

// ConfigLintOptions contains parameters for config validation
type ConfigLintOptions struct {
	Config config.Config
	// Path the config was loaded from; empty means built-in defaults
	Path   string
	Writer io.Writer
}

// ConfigLint reports a summary of an already loaded and validated config.
func ConfigLint(_ context.Context, opts ConfigLintOptions) error {
	cfg := opts.Config
	if opts.Path == "" {
		fmt.Fprintln(opts.Writer, "No configuration file found, using defaults")
	} else {
		fmt.Fprintf(opts.Writer, "✓ Configuration is valid: %s\n", opts.Path)
	}
	fmt.Fprintf(opts.Writer, "  Transport: %s\n", cfg.Provider.Transport)
	fmt.Fprintf(opts.Writer, "  Built-in tools: %s\n", strings.Join(cfg.Builtin.Enabled, ", "))
	fmt.Fprintf(opts.Writer, "  Root: %s\n", cfg.Builtin.Root)
	if cfg.Journal.Path != "" {
		fmt.Fprintf(opts.Writer, "  Journal: %s\n", cfg.Journal.Path)
	}
	if len(cfg.Remote.Servers) > 0 {
		fmt.Fprintf(opts.Writer, "  MCP Servers: %d\n", len(cfg.Remote.Servers))
	}
	return nil
}
