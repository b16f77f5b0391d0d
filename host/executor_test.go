package host

import (
	"context"
	"testing"

	"github.com/reglet-dev/reglet-numerics/domain/errors"
	"github.com/reglet-dev/reglet-numerics/domain/numeric"
	"github.com/reglet-dev/reglet-numerics/exports"
	wazeroadapter "github.com/reglet-dev/reglet-numerics/infrastructure/wazero"
	"github.com/reglet-dev/reglet-numerics/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExecutor(t *testing.T) {
	ctx := context.Background()
	e, err := NewExecutor(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, e)
	if e != nil {
		assert.Equal(t, exports.DefaultModuleName, e.ModuleName())
		assert.Same(t, exports.Default(), e.Registry())
		err := e.Close(ctx)
		assert.NoError(t, err)
	}
}

func TestNewExecutor_ABIConstraint(t *testing.T) {
	ctx := context.Background()

	e, err := NewExecutor(ctx, WithABIConstraint("^1.0"))
	require.NoError(t, err)
	require.NoError(t, e.Close(ctx))

	_, err = NewExecutor(ctx, WithABIConstraint(">= 2.0"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not satisfy")

	_, err = NewExecutor(ctx, WithABIConstraint("not a constraint"))
	assert.Error(t, err)
}

func newGuest(t *testing.T, opts ...Option) (context.Context, *Guest) {
	t.Helper()
	ctx := context.Background()
	e, err := NewExecutor(ctx, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(ctx) })

	g, err := e.LoadGuest(ctx, testutil.NumericsGuest(e.ModuleName()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close(ctx) })
	return ctx, g
}

func TestGuest_EndToEnd(t *testing.T) {
	ctx, g := newGuest(t)

	t.Run("gamma", func(t *testing.T) {
		got, err := g.CallFloat64(ctx, "gamma", 5)
		require.NoError(t, err)
		testutil.AssertRelativeError(t, 24, got, 0.01)
	})

	t.Run("gamma_dist", func(t *testing.T) {
		got, err := g.CallFloat64(ctx, "gamma_dist", 2, 3)
		require.NoError(t, err)
		testutil.AssertSameFloat(t, numeric.GammaDensity(2, 3), got)
	})

	t.Run("irr", func(t *testing.T) {
		got, err := g.CallArray(ctx, "irr", []float64{-100, 110})
		require.NoError(t, err)
		assert.InDelta(t, 10.0, got, 0.02)
	})

	t.Run("irr empty", func(t *testing.T) {
		got, err := g.CallArray(ctx, "irr", nil)
		require.NoError(t, err)
		assert.InDelta(t, 10.01, got, 1e-9)
	})

	t.Run("psd", func(t *testing.T) {
		got, err := g.CallString(ctx, "psd")
		require.NoError(t, err)
		assert.Equal(t, "just_a_string_of_non-hashed-password", got)
	})

	t.Run("unknown export", func(t *testing.T) {
		_, err := g.CallFloat64(ctx, "sqrt", 4)
		assert.ErrorIs(t, err, errors.ErrUnknownExport)
	})
}

func TestGuest_Hardened(t *testing.T) {
	reg, err := exports.NewRegistry(
		exports.WithMiddleware(exports.PanicRecoveryMiddleware()),
		exports.WithBundle(exports.NumericsBundle(exports.Policy{Hardened: true, MaxIterations: 10})),
	)
	require.NoError(t, err)
	ctx, g := newGuest(t, WithRegistry(reg))

	_, err = g.CallArray(ctx, "irr", []float64{5, 5, 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no crossing after 10 iterations")

	_, err = g.CallFloat64(ctx, "gamma", -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside function domain")
}

func TestGuest_CustomModuleName(t *testing.T) {
	ctx, g := newGuest(t, WithAdapterOptions(wazeroadapter.WithModuleName("numerics_v2")))

	got, err := g.CallFloat64(ctx, "gamma", 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-3)
}

func TestGuest_ReadString(t *testing.T) {
	ctx, g := newGuest(t)

	ptr, err := g.WriteFloat64s(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, ptr)

	s, err := g.ReadString(0)
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = g.ReadString(uint64(70000)<<32 | 4)
	var memErr *errors.MemoryError
	assert.ErrorAs(t, err, &memErr)
}

func TestCheckABI(t *testing.T) {
	tests := []struct {
		constraint string
		wantErr    bool
	}{
		{"", false},
		{"^1.0", false},
		{"1.x", false},
		{"~1.0.0", false},
		{"< 1.0.0", true},
		{"^2", true},
		{"garbage!", true},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			err := CheckABI(tt.constraint)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
