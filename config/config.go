// Package config loads and validates the bridge configuration file.
package config

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/reglet-numerics/domain/errors"
	"github.com/reglet-dev/reglet-numerics/exports"
	"gopkg.in/yaml.v3"
)

// Modes.
const (
	ModeFaithful = "faithful"
	ModeHardened = "hardened"
)

// Config is the on-disk configuration.
type Config struct {
	// Mode selects the reference behavior or the hardened one.
	Mode string `json:"mode" yaml:"mode" toml:"mode" validate:"omitempty,oneof=faithful hardened" jsonschema:"enum=faithful,enum=hardened,default=faithful"`

	IRR  IRRConfig  `json:"irr" yaml:"irr" toml:"irr"`
	Wasm WasmConfig `json:"wasm" yaml:"wasm" toml:"wasm"`
	Log  LogConfig  `json:"log" yaml:"log" toml:"log"`
}

// IRRConfig tunes the IRR scan.
type IRRConfig struct {
	// MaxIterations caps the scan in hardened mode. Zero uses the default.
	MaxIterations int `json:"max_iterations,omitempty" yaml:"max_iterations" toml:"max_iterations" validate:"gte=0,lte=100000000" jsonschema:"minimum=0,maximum=100000000"`
}

// WasmConfig configures the wazero host module.
type WasmConfig struct {
	// ModuleName is the import module name guests use.
	ModuleName string `json:"module_name,omitempty" yaml:"module_name" toml:"module_name" validate:"omitempty,max=64,printascii"`

	// ABIConstraint is a semver constraint the bridge ABI must satisfy.
	ABIConstraint string `json:"abi_constraint,omitempty" yaml:"abi_constraint" toml:"abi_constraint" validate:"omitempty,semver_constraint"`

	// MaxArrayLength bounds array arguments read from guest memory.
	MaxArrayLength uint32 `json:"max_array_length,omitempty" yaml:"max_array_length" toml:"max_array_length" validate:"lte=16777216" jsonschema:"maximum=16777216"`
}

// LogConfig configures the slog handler built by the CLI.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level" toml:"level" validate:"omitempty,oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Format string `json:"format,omitempty" yaml:"format" toml:"format" validate:"omitempty,oneof=text json" jsonschema:"enum=text,enum=json,default=text"`
}

// validate is a package-level singleton; building a validator is expensive.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("semver_constraint", func(fl validator.FieldLevel) bool {
		_, err := semver.NewConstraint(fl.Field().String())
		return err == nil
	})
	return v
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Mode: ModeFaithful,
		Log:  LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a configuration file. The format follows the extension:
// .yaml/.yml, .toml or .json. Missing fields keep their Default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// Parse decodes and validates configuration bytes in the given format.
func Parse(data []byte, format string) (Config, error) {
	cfg := Default()

	var err error
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if len(bytes.TrimSpace(data)) > 0 {
			err = yaml.Unmarshal(data, &cfg)
		}
	case "toml":
		err = toml.Unmarshal(data, &cfg)
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	default:
		return Config{}, &errors.ConfigError{Err: fmt.Errorf("unsupported format %q", format)}
	}
	if err != nil {
		return Config{}, &errors.ConfigError{Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags and reports the first failing field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if stdErrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &errors.ConfigError{
			Field: fe.Namespace(),
			Err:   fmt.Errorf("failed on %q (value %v)", fe.Tag(), fe.Value()),
		}
	}
	return &errors.ConfigError{Err: err}
}

// Hardened reports whether guards and explicit errors are enabled.
func (c Config) Hardened() bool {
	return c.Mode == ModeHardened
}

// Policy returns the export policy selected by the configuration.
func (c Config) Policy() exports.Policy {
	return exports.Policy{Hardened: c.Hardened(), MaxIterations: c.IRR.MaxIterations}
}

// SlogLevel maps Log.Level onto slog levels, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
