package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/reglet-dev/reglet-numerics/config"
	"github.com/reglet-dev/reglet-numerics/exports"
	"github.com/spf13/cobra"
)

// app holds state shared by subcommands after flags and config are resolved.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *exports.Registry

	configPath    string
	logLevel      string
	hardened      bool
	maxIterations int
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "numerics",
		Short:         "Call IRR, gamma and PSD exports in process or from WASM guests",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "configuration file (.yaml, .toml or .json)")
	flags.BoolVar(&a.hardened, "hardened", false, "bound IRR, guard gamma domains and decode arguments strictly")
	flags.IntVar(&a.maxIterations, "max-iterations", 0, "IRR iteration cap in hardened mode (0 uses the default)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newListCmd(a),
		newCallCmd(a),
		newRunCmd(a),
		newSchemaCmd(),
	)
	return cmd
}

// setup loads the config file, applies flag overrides and builds the logger
// and registry.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("hardened") {
		cfg.Mode = config.ModeFaithful
		if a.hardened {
			cfg.Mode = config.ModeHardened
		}
	}
	if flags.Changed("max-iterations") {
		cfg.IRR.MaxIterations = a.maxIterations
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg)

	reg, err := exports.NewRegistry(
		exports.WithStrictNames(),
		exports.WithModuleName(cfg.Wasm.ModuleName),
		exports.WithMiddleware(
			exports.PanicRecoveryMiddleware(),
			exports.LoggingMiddleware(a.logger),
		),
		exports.WithBundle(exports.NumericsBundle(cfg.Policy())),
	)
	if err != nil {
		return fmt.Errorf("failed to build registry: %w", err)
	}
	a.registry = reg

	a.logger.Debug("configuration loaded", "mode", cfg.Mode, "config", a.configPath)
	return nil
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
