package exports

import (
	"context"
	"fmt"
	"sort"

	"github.com/reglet-dev/reglet-numerics/bridge"
	"github.com/reglet-dev/reglet-numerics/domain/entities"
	"github.com/reglet-dev/reglet-numerics/domain/errors"
)

// DefaultModuleName is the module name hosts import the exports from.
const DefaultModuleName = "numerics"

// Registry is an immutable table of named entry points.
// Once created via NewRegistry, exports cannot be added or removed, so
// lookups need no locking.
type Registry struct {
	exports    map[string]Export
	names      []string // sorted for consistent iteration
	moduleName string
}

// registryBuilder accumulates configuration during registry construction.
type registryBuilder struct {
	exports    map[string]Export
	moduleName string
	pending    []Export // in registration order
	middleware []Middleware
	errors     []error
	strict     bool
}

// Option configures a Registry under construction.
type Option func(*registryBuilder)

// NewRegistry creates an immutable Registry with the given options.
//
// Registering a name twice replaces the earlier entry, matching how a host
// symbol table behaves. WithStrictNames turns duplicates and empty names
// into an error instead.
//
//	reg, err := exports.NewRegistry(
//	    exports.WithMiddleware(exports.PanicRecoveryMiddleware()),
//	    exports.WithBundle(exports.NumericsBundle(exports.Policy{})),
//	)
func NewRegistry(opts ...Option) (*Registry, error) {
	b := &registryBuilder{
		exports:    make(map[string]Export),
		moduleName: DefaultModuleName,
	}

	for _, opt := range opts {
		opt(b)
	}

	// Exports are added after all options ran so WithStrictNames applies
	// regardless of where it appears.
	for _, exp := range b.pending {
		if err := b.addExport(exp); err != nil {
			b.errors = append(b.errors, err)
		}
	}

	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	names := make([]string, 0, len(b.exports))
	for name := range b.exports {
		names = append(names, name)
	}
	sort.Strings(names)

	// Apply middleware in reverse order so the first one wraps outermost.
	wrapped := make(map[string]Export, len(b.exports))
	for name, exp := range b.exports {
		entry := exp.Entry
		for i := len(b.middleware) - 1; i >= 0; i-- {
			entry = b.middleware[i](entry)
		}
		exp.Entry = entry
		wrapped[name] = exp
	}

	return &Registry{
		exports:    wrapped,
		names:      names,
		moduleName: b.moduleName,
	}, nil
}

// Invoke dispatches a call by name. An unknown name returns a
// *errors.NotFoundError, which hosts report as their own lookup failure.
func (r *Registry) Invoke(ctx context.Context, name string, env bridge.Env) (bridge.Value, error) {
	exp, ok := r.exports[name]
	if !ok {
		return nil, &errors.NotFoundError{Name: name}
	}
	return exp.Entry(CallContextFrom(ctx, name), env)
}

// Lookup returns the export registered under name.
func (r *Registry) Lookup(name string) (Export, bool) {
	exp, ok := r.exports[name]
	return exp, ok
}

// Has returns true if an export with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.exports[name]
	return ok
}

// Names returns a sorted list of all export names.
func (r *Registry) Names() []string {
	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

// Exports returns all exports sorted by name.
func (r *Registry) Exports() []Export {
	result := make([]Export, 0, len(r.names))
	for _, name := range r.names {
		result = append(result, r.exports[name])
	}
	return result
}

// ModuleName returns the module name hosts import from.
func (r *Registry) ModuleName() string {
	return r.moduleName
}

// Describe returns the export table as metadata.
func (r *Registry) Describe() entities.ModuleMetadata {
	meta := entities.ModuleMetadata{
		Name:       r.moduleName,
		ABIVersion: ABIVersion,
		Exports:    make([]entities.ExportInfo, 0, len(r.names)),
	}
	for _, exp := range r.Exports() {
		meta.Exports = append(meta.Exports, entities.ExportInfo{
			Name:   exp.Name,
			Params: exp.Signature.ParamNames(),
			Result: exp.Signature.Result.String(),
			Arity:  exp.Signature.Arity(),
		})
	}
	return meta
}

func (b *registryBuilder) addExport(exp Export) error {
	if exp.Entry == nil {
		return fmt.Errorf("export %q has no entry point", exp.Name)
	}
	if b.strict {
		if exp.Name == "" {
			return fmt.Errorf("export name cannot be empty")
		}
		if _, exists := b.exports[exp.Name]; exists {
			return fmt.Errorf("duplicate export name: %q", exp.Name)
		}
	}
	b.exports[exp.Name] = exp
	return nil
}

// WithExport registers a single entry point.
func WithExport(exp Export) Option {
	return func(b *registryBuilder) {
		b.pending = append(b.pending, exp)
	}
}

// WithBundle registers every export of a bundle.
func WithBundle(bundle Bundle) Option {
	return func(b *registryBuilder) {
		b.pending = append(b.pending, bundle.Exports()...)
	}
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) Option {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}

// WithStrictNames rejects empty and duplicate export names.
func WithStrictNames() Option {
	return func(b *registryBuilder) {
		b.strict = true
	}
}

// WithModuleName sets the module name reported to hosts.
func WithModuleName(name string) Option {
	return func(b *registryBuilder) {
		if name != "" {
			b.moduleName = name
		}
	}
}
