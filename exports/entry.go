package exports

import (
	"context"

	"github.com/reglet-dev/reglet-numerics/bridge"
)

// EntryPoint is a native function reachable from the host. It reads its
// arguments from env and returns one host value.
type EntryPoint func(ctx context.Context, env bridge.Env) (bridge.Value, error)

// Export binds a symbolic name to an entry point with a fixed signature.
type Export struct {
	Entry     EntryPoint
	Name      string
	Signature bridge.Signature
}

// Bundle is a pre-configured set of related exports.
type Bundle interface {
	// Exports returns the bundle's entries in registration order.
	Exports() []Export
}

// staticBundle implements Bundle with a fixed list.
type staticBundle struct {
	exports []Export
}

func (b *staticBundle) Exports() []Export {
	return b.exports
}

// NewBundle returns a Bundle over the given exports.
func NewBundle(exports ...Export) Bundle {
	return &staticBundle{exports: exports}
}
