package config

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/toolbridge/internal/matcher"
	"github.com/spachava753/toolbridge/internal/provider"
	"github.com/spachava753/toolbridge/internal/transport"
)

func TestLoadFromFileFormats(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		filename string
		wantErr  bool
		check    func(t *testing.T, cfg *Config)
	}{
		{
			name: "YAML config",
			content: `
version: "1.0"
provider:
  transport: sse
  sse:
    port: 8123
builtin:
  enabled: [read_file]
`,
			filename: "toolbridge.yaml",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8123, cfg.Provider.SSE.Port)
				assert.Equal(t, []string{"read_file"}, cfg.Builtin.Enabled)
			},
		},
		{
			name:     "JSON config",
			content:  `{"version":"1.0","journal":{"path":"/tmp/j.db"},"matcher":{"maxBuffer":64}}`,
			filename: "toolbridge.json",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/tmp/j.db", cfg.Journal.Path)
				assert.Equal(t, 64, cfg.Matcher.MaxBuffer)
			},
		},
		{
			name: "YML extension",
			content: `
remote:
  servers:
    docs:
      type: http
      url: http://localhost:9000/mcp
`,
			filename: "toolbridge.yml",
			check: func(t *testing.T, cfg *Config) {
				require.Contains(t, cfg.Remote.Servers, "docs")
				assert.Equal(t, provider.RemoteHTTP, cfg.Remote.Servers["docs"].Type)
			},
		},
		{
			name:     "unknown extension falls back to JSON",
			content:  `{"version": "2.0"`,
			filename: "toolbridge.conf",
			wantErr:  true,
		},
		{
			name:     "unknown extension parses YAML",
			content:  "version: \"3.0\"\n",
			filename: "toolbridge.conf",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "3.0", cfg.Version)
			},
		},
		{
			name:     "invalid YAML",
			content:  "provider: [",
			filename: "toolbridge.yaml",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{tt.filename: &fstest.MapFile{Data: []byte(tt.content)}}
			file, err := fsys.Open(tt.filename)
			require.NoError(t, err)
			defer file.Close()

			cfg, err := loadFromFile(file)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestParseConfigDataExpandsEnv(t *testing.T) {
	t.Setenv("TOOLBRIDGE_TEST_ROOT", "/srv/project")
	cfg, err := parseConfigData([]byte("builtin:\n  root: ${TOOLBRIDGE_TEST_ROOT}\n"), "toolbridge.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/srv/project", cfg.Builtin.Root)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty", cfg: Config{}},
		{
			name:    "unknown transport",
			cfg:     Config{Provider: provider.Config{Transport: "websocket"}},
			wantErr: "invalid configuration file",
		},
		{
			name:    "port out of range",
			cfg:     Config{Provider: provider.Config{SSE: transport.SSEConfig{Port: 70000}}},
			wantErr: "invalid configuration file",
		},
		{
			name:    "unknown builtin",
			cfg:     Config{Builtin: BuiltinConfig{Enabled: []string{"delete_everything"}}},
			wantErr: "invalid configuration file",
		},
		{
			name:    "negative buffer",
			cfg:     Config{Matcher: MatcherConfig{MaxBuffer: -1}},
			wantErr: "invalid configuration file",
		},
		{
			name: "sse settings with stdio transport",
			cfg: Config{Provider: provider.Config{
				Transport: transport.KindStdio,
				SSE:       transport.SSEConfig{Port: 80},
			}},
			wantErr: "provider.sse is set",
		},
		{
			name: "http remote without url",
			cfg: Config{Remote: RemoteConfig{Servers: map[string]provider.RemoteConfig{
				"a": {Type: provider.RemoteHTTP},
			}}},
			wantErr: "remote.servers.a: url is required",
		},
		{
			name: "stdio remote without command",
			cfg: Config{Remote: RemoteConfig{Servers: map[string]provider.RemoteConfig{
				"a": {Type: provider.RemoteStdio},
			}}},
			wantErr: "invalid configuration file",
		},
		{
			name: "url and command",
			cfg: Config{Remote: RemoteConfig{Servers: map[string]provider.RemoteConfig{
				"a": {URL: "http://localhost:1/mcp", Command: "srv"},
			}}},
			wantErr: "mutually exclusive",
		},
		{
			name: "untyped remote with command",
			cfg: Config{Remote: RemoteConfig{Servers: map[string]provider.RemoteConfig{
				"a": {Command: "srv", Args: []string{"--stdio"}},
			}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, transport.KindSSE, cfg.Provider.Transport)
	assert.Equal(t, "localhost", cfg.Provider.SSE.Hostname)
	assert.Equal(t, "/mcp/events", cfg.Provider.SSE.EventsPath)
	assert.Equal(t, BuiltinTools, cfg.Builtin.Enabled)
	assert.Equal(t, ".", cfg.Builtin.Root)
	assert.Equal(t, matcher.DefaultMaxBuffer, cfg.Matcher.MaxBuffer)
	assert.Len(t, cfg.MatcherOptions(), 1)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider:\n  transport: stdio\n"), 0644))

	cfg, got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, transport.KindStdio, cfg.Provider.Transport)
	assert.Empty(t, cfg.Provider.SSE.Hostname)

	_, _, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConfigNotFound)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider:\n  transport: carrier-pigeon\n"), 0644))

	_, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration file")
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "toolbridge.yaml")
	cfg := Default()
	cfg.Provider.SSE.Port = 9001
	cfg.Remote.Servers = map[string]provider.RemoteConfig{
		"docs": {Type: provider.RemoteSSE, URL: "http://localhost:9002/mcp/events"},
	}
	require.NoError(t, Write(path, cfg, false))

	loaded, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	err = Write(path, cfg, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.NoError(t, Write(path, cfg, true))
}

func TestPatch(t *testing.T) {
	tests := []struct {
		name    string
		patch   string
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:  "port override",
			patch: `{"provider":{"sse":{"port":9000}}}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Provider.SSE.Port)
				assert.Equal(t, "/mcp/api", cfg.Provider.SSE.APIPath)
			},
		},
		{
			name:  "switch to stdio",
			patch: `{"provider":{"transport":"stdio"}}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, transport.KindStdio, cfg.Provider.Transport)
				assert.Equal(t, transport.SSEConfig{}, cfg.Provider.SSE)
			},
		},
		{
			name:  "null restores default",
			patch: `{"matcher":null,"builtin":{"enabled":["read_file"]}}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, matcher.DefaultMaxBuffer, cfg.Matcher.MaxBuffer)
				assert.Equal(t, []string{"read_file"}, cfg.Builtin.Enabled)
			},
		},
		{
			name:    "invalid result",
			patch:   `{"builtin":{"enabled":["rm_rf"]}}`,
			wantErr: "invalid configuration file",
		},
		{
			name:    "malformed patch",
			patch:   `{"provider":`,
			wantErr: "applying config override",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := Default()
			cfg, err := base.Patch([]byte(tt.patch))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
			assert.Equal(t, Default(), base)
		})
	}
}

func TestSchema(t *testing.T) {
	data, err := SchemaJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Toolbridge Configuration Schema"`)
	assert.Contains(t, string(data), `"provider"`)
	assert.Contains(t, string(data), `"journal"`)
}
