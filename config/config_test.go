package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/reglet-numerics/domain/errors"
	"github.com/reglet-dev/reglet-numerics/exports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Hardened())
	assert.Equal(t, exports.Policy{}, cfg.Policy())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "numerics.yaml", `
mode: hardened
irr:
  max_iterations: 5000
wasm:
  module_name: numerics_v1
  abi_constraint: "^1.0"
  max_array_length: 4096
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Hardened())
	assert.Equal(t, exports.Policy{Hardened: true, MaxIterations: 5000}, cfg.Policy())
	assert.Equal(t, "numerics_v1", cfg.Wasm.ModuleName)
	assert.Equal(t, "^1.0", cfg.Wasm.ABIConstraint)
	assert.Equal(t, uint32(4096), cfg.Wasm.MaxArrayLength)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "text", cfg.Log.Format, "unset fields keep defaults")
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "numerics.toml", `
mode = "faithful"

[irr]
max_iterations = 10

[log]
level = "warn"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Hardened())
	assert.Equal(t, 10, cfg.IRR.MaxIterations)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "numerics.json", `{"mode":"hardened","log":{"level":"error"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Hardened())
	assert.Equal(t, slog.LevelError, cfg.SlogLevel())

	_, err = Load(writeFile(t, "bad.json", `{"mode":"hardened","unknown":1}`))
	assert.Error(t, err)
}

func TestLoad_EmptyYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yml", "\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	_, err = Load(writeFile(t, "numerics.ini", "mode=hardened"))
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "unsupported format")

	_, err = Load(writeFile(t, "broken.yaml", "mode: [unclosed"))
	assert.ErrorAs(t, err, &cfgErr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"bad mode", func(c *Config) { c.Mode = "fast" }, "Config.Mode"},
		{"negative iterations", func(c *Config) { c.IRR.MaxIterations = -1 }, "Config.IRR.MaxIterations"},
		{"huge array limit", func(c *Config) { c.Wasm.MaxArrayLength = 1 << 30 }, "Config.Wasm.MaxArrayLength"},
		{"bad constraint", func(c *Config) { c.Wasm.ABIConstraint = "not semver!" }, "Config.Wasm.ABIConstraint"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "Config.Log.Level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "Config.Log.Format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			var cfgErr *errors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestParse_ValidatesAfterDecode(t *testing.T) {
	_, err := Parse([]byte("mode: turbo\n"), "yaml")
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Config.Mode", cfgErr.Field)
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "reglet-numerics configuration", decoded["title"])

	props, ok := decoded["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "mode")
	assert.Contains(t, props, "irr")
	assert.Contains(t, props, "wasm")
	assert.Contains(t, string(data), "hardened")
}
