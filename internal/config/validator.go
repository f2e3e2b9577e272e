package config

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/spachava753/toolbridge/internal/provider"
	"github.com/spachava753/toolbridge/internal/transport"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration file: %w", err)
	}

	if c.Provider.Transport == transport.KindStdio && c.Provider.SSE != (transport.SSEConfig{}) {
		return fmt.Errorf("provider.sse is set but provider.transport is %q", transport.KindStdio)
	}

	names := make([]string, 0, len(c.Remote.Servers))
	for name := range c.Remote.Servers {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := validateRemote(c.Remote.Servers[name]); err != nil {
			return fmt.Errorf("remote.servers.%s: %w", name, err)
		}
	}
	return nil
}

func validateRemote(s provider.RemoteConfig) error {
	switch s.Type {
	case provider.RemoteSSE, provider.RemoteHTTP:
		if s.URL == "" {
			return fmt.Errorf("url is required for type %q", s.Type)
		}
	case "":
		if s.URL == "" && s.Command == "" {
			return fmt.Errorf("either url or command is required")
		}
	}
	if s.URL != "" && s.Command != "" {
		return fmt.Errorf("url and command are mutually exclusive")
	}
	return nil
}
