package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/reglet-dev/reglet-numerics/domain/entities"
	"github.com/reglet-dev/reglet-numerics/exports"
	"github.com/reglet-dev/reglet-numerics/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestList(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "gammaDistFunction")
	assert.Contains(t, out, "(float64[]) float64")
	assert.Contains(t, out, "() string")
}

func TestList_JSON(t *testing.T) {
	out, err := execute(t, "list", "--json")
	require.NoError(t, err)

	var meta entities.ModuleMetadata
	require.NoError(t, json.Unmarshal([]byte(out), &meta))
	assert.Equal(t, exports.DefaultModuleName, meta.Name)
	assert.Len(t, meta.Exports, 4)
}

func TestCall(t *testing.T) {
	out, err := execute(t, "call", "PSD")
	require.NoError(t, err)
	assert.Equal(t, `"just_a_string_of_non-hashed-password"`, out)

	out, err = execute(t, "call", "IRR", "[-100, 110]")
	require.NoError(t, err)
	f, err := strconv.ParseFloat(out, 64)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, f, 0.02)
}

func TestCall_Errors(t *testing.T) {
	out, err := execute(t, "call", "sqrt", "4")
	require.Error(t, err)
	assert.Contains(t, out, "NOT_FOUND")

	_, err = execute(t, "--hardened", "--max-iterations", "10", "call", "IRR", "[1, 2]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NO_CONVERGENCE")
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numerics.toml")
	require.NoError(t, os.WriteFile(path, []byte("mode = \"hardened\"\n"), 0o600))

	_, err := execute(t, "--config", path, "call", "gammaFunction", "--", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOMAIN_ERROR")

	// An explicit --hardened=false wins over the file.
	out, err := execute(t, "--config", path, "--hardened=false", "call", "gammaFunction", "--", "-1")
	require.NoError(t, err)
	assert.Equal(t, `"NaN"`, out)

	_, err = execute(t, "--log-level", "loud", "list")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guest.wasm")
	require.NoError(t, os.WriteFile(path, testutil.NumericsGuest(exports.DefaultModuleName), 0o600))

	out, err := execute(t, "run", path, "gamma", "5")
	require.NoError(t, err)
	f, err := strconv.ParseFloat(out, 64)
	require.NoError(t, err)
	testutil.AssertRelativeError(t, 24, f, 0.01)

	out, err = execute(t, "run", "--array", path, "irr", "--", "-100", "120")
	require.NoError(t, err)
	f, err = strconv.ParseFloat(out, 64)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, f, 0.02)

	out, err = execute(t, "run", "--string", path, "psd")
	require.NoError(t, err)
	assert.Equal(t, "just_a_string_of_non-hashed-password", out)
}

func TestSchemaCmd(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "max_iterations")
}
