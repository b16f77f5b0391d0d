package exports

import (
	"context"

	"github.com/reglet-dev/reglet-numerics/bridge"
	"github.com/reglet-dev/reglet-numerics/domain/numeric"
)

// ABIVersion is the version of the calling convention in this package and
// in infrastructure/wazero. Bump the major version when a signature changes.
const ABIVersion = "1.0.0"

// Exported names.
const (
	NameIRR          = "IRR"
	NameGamma        = "gammaFunction"
	NameGammaDensity = "gammaDistFunction"
	NamePSD          = "PSD"
)

// DefaultMaxIterations caps the hardened IRR scan. With a 0.0001 step it
// covers rates up to 10.01% + 10,000%.
const DefaultMaxIterations = 1_000_000

// Policy selects between the reference behavior and the hardened one.
//
// The zero Policy is the permissive one: undecodable arguments read
// as NaN, gamma kernels return NaN/Inf outside their domain and IRR scans
// without bound. Hardened decodes strictly, guards the gamma domain and caps
// the IRR scan at MaxIterations, returning errors in each case.
type Policy struct {
	// MaxIterations caps the IRR scan when Hardened is set.
	// Zero means DefaultMaxIterations.
	MaxIterations int

	// Hardened enables guards and explicit errors.
	Hardened bool
}

func (p Policy) maxIterations() int {
	if p.MaxIterations > 0 {
		return p.MaxIterations
	}
	return DefaultMaxIterations
}

func (p Policy) marshaller(name string) bridge.Marshaller {
	return bridge.Marshaller{Function: name, Strict: p.Hardened}
}

// NumericsBundle returns the four numeric exports:
// IRR, gammaFunction, gammaDistFunction and PSD.
func NumericsBundle(p Policy) Bundle {
	return NewBundle(
		Export{
			Name:      NameIRR,
			Signature: bridge.Sig(bridge.KindFloat64Array, bridge.KindFloat64),
			Entry:     irrEntry(p),
		},
		Export{
			Name:      NameGamma,
			Signature: bridge.Sig(bridge.KindFloat64, bridge.KindFloat64),
			Entry:     gammaEntry(p),
		},
		Export{
			Name:      NameGammaDensity,
			Signature: bridge.Sig(bridge.KindFloat64, bridge.KindFloat64, bridge.KindFloat64),
			Entry:     gammaDensityEntry(p),
		},
		Export{
			Name:      NamePSD,
			Signature: bridge.Sig(bridge.KindString),
			Entry:     psdEntry(p),
		},
	)
}

func irrEntry(p Policy) EntryPoint {
	m := p.marshaller(NameIRR)
	return func(_ context.Context, env bridge.Env) (bridge.Value, error) {
		args := env.Args(1)
		flows, err := m.ArgFloat64Array(env, args, 0)
		if err != nil {
			return nil, err
		}

		var rate float64
		if p.Hardened {
			if rate, err = numeric.IRRBounded(flows, p.maxIterations()); err != nil {
				return nil, err
			}
		} else {
			rate = numeric.IRR(flows)
		}
		return m.EncodeFloat64(env, rate)
	}
}

func gammaEntry(p Policy) EntryPoint {
	m := p.marshaller(NameGamma)
	return func(_ context.Context, env bridge.Env) (bridge.Value, error) {
		args := env.Args(1)
		a, err := m.ArgFloat64(env, args, 0)
		if err != nil {
			return nil, err
		}

		var g float64
		if p.Hardened {
			if g, err = numeric.GammaChecked(a); err != nil {
				return nil, err
			}
		} else {
			g = numeric.Gamma(a)
		}
		return m.EncodeFloat64(env, g)
	}
}

func gammaDensityEntry(p Policy) EntryPoint {
	m := p.marshaller(NameGammaDensity)
	return func(_ context.Context, env bridge.Env) (bridge.Value, error) {
		args := env.Args(2)
		a, err := m.ArgFloat64(env, args, 0)
		if err != nil {
			return nil, err
		}
		x, err := m.ArgFloat64(env, args, 1)
		if err != nil {
			return nil, err
		}

		var d float64
		if p.Hardened {
			if d, err = numeric.GammaDensityChecked(a, x); err != nil {
				return nil, err
			}
		} else {
			d = numeric.GammaDensity(a, x)
		}
		return m.EncodeFloat64(env, d)
	}
}

func psdEntry(p Policy) EntryPoint {
	m := p.marshaller(NamePSD)
	return func(_ context.Context, env bridge.Env) (bridge.Value, error) {
		return m.EncodeCString(env, numeric.StaticSecretC())
	}
}
