package host

import (
	"log/slog"

	"github.com/reglet-dev/reglet-numerics/exports"
	wazeroadapter "github.com/reglet-dev/reglet-numerics/infrastructure/wazero"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithRegistry configures the executor with an export registry.
// The default is exports.Default().
func WithRegistry(registry *exports.Registry) Option {
	return func(e *Executor) {
		e.registry = registry
	}
}

// WithAdapterOptions passes options through to the wazero adapter.
func WithAdapterOptions(opts ...wazeroadapter.AdapterOption) Option {
	return func(e *Executor) {
		e.adapterOpts = append(e.adapterOpts, opts...)
	}
}

// WithABIConstraint requires the bridge ABI to satisfy a semver constraint
// such as "^1.0". NewExecutor fails when it does not.
func WithABIConstraint(constraint string) Option {
	return func(e *Executor) {
		e.abiConstraint = constraint
	}
}

// WithLogger sets the logger for executor and adapter messages.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}
