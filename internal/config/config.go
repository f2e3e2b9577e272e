package config

import (
	"github.com/spachava753/toolbridge/internal/builtin"
	"github.com/spachava753/toolbridge/internal/matcher"
	"github.com/spachava753/toolbridge/internal/provider"
	"github.com/spachava753/toolbridge/internal/transport"
)

// BuiltinTools lists the names accepted in builtin.enabled.
var BuiltinTools = builtin.Names

// Config is the toolbridge configuration file.
type Config struct {
	// Version for future compatibility
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// Provider configures the embedded MCP provider and its transport
	Provider provider.Config `yaml:"provider,omitempty" json:"provider,omitempty"`

	// Builtin selects the built-in tools to register
	Builtin BuiltinConfig `yaml:"builtin,omitempty" json:"builtin,omitempty"`

	// Journal configures where routed round trips are recorded
	Journal JournalConfig `yaml:"journal,omitempty" json:"journal,omitempty"`

	// Remote lists external MCP servers reachable through `toolbridge call`
	Remote RemoteConfig `yaml:"remote,omitempty" json:"remote,omitempty"`

	// Matcher tunes the streaming matchers
	Matcher MatcherConfig `yaml:"matcher,omitempty" json:"matcher,omitempty"`
}

// BuiltinConfig selects built-in tools.
type BuiltinConfig struct {
	// Enabled tool names; empty enables all of them
	Enabled []string `yaml:"enabled,omitempty" json:"enabled,omitempty" validate:"dive,oneof=read_file list_files search_files execute_command"`
	// Root directory the file tools are confined to
	Root string `yaml:"root,omitempty" json:"root,omitempty"`
}

// JournalConfig configures the round-trip journal.
type JournalConfig struct {
	// Path to the SQLite database; empty keeps the journal in memory
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// RemoteConfig holds named external MCP servers.
type RemoteConfig struct {
	Servers map[string]provider.RemoteConfig `yaml:"servers,omitempty" json:"servers,omitempty" validate:"dive"`
}

// MatcherConfig tunes the streaming matchers.
type MatcherConfig struct {
	// MaxBuffer caps the bytes a matcher holds before flushing them as text
	MaxBuffer int `yaml:"maxBuffer,omitempty" json:"maxBuffer,omitempty" validate:"gte=0"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{Version: "1.0"}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills unset fields.
func (c *Config) applyDefaults() {
	if c.Provider.Transport == "" {
		c.Provider.Transport = transport.KindSSE
	}
	if c.Provider.Transport == transport.KindSSE {
		c.Provider.SSE = c.Provider.SSE.WithDefaults()
	}
	if len(c.Builtin.Enabled) == 0 {
		c.Builtin.Enabled = append([]string(nil), BuiltinTools...)
	}
	if c.Builtin.Root == "" {
		c.Builtin.Root = "."
	}
	if c.Matcher.MaxBuffer == 0 {
		c.Matcher.MaxBuffer = matcher.DefaultMaxBuffer
	}
}

// MatcherOptions returns the matcher options the config selects.
func (c *Config) MatcherOptions() []matcher.Option {
	return []matcher.Option{matcher.WithMaxBuffer(c.Matcher.MaxBuffer)}
}
