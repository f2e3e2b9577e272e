package config

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/spachava753/toolbridge/internal/transport"
)

// Patch applies an RFC 7386 JSON merge patch to c and returns the validated
// result with defaults applied. c is left unchanged. A null value removes
// the key, restoring its default.
func (c *Config) Patch(patch []byte) (*Config, error) {
	base, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	merged, err := jsonpatch.MergePatch(base, patch)
	if err != nil {
		return nil, fmt.Errorf("applying config override: %w", err)
	}

	var out Config
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("decoding patched config: %w", err)
	}
	// Switching to stdio drops SSE settings that were only defaults.
	if out.Provider.Transport == transport.KindStdio && out.Provider.SSE == transport.DefaultSSEConfig() {
		out.Provider.SSE = transport.SSEConfig{}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	out.applyDefaults()
	return &out, nil
}
