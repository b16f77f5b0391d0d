package numeric

import (
	stdErrors "errors"
	"math"
	"testing"

	"github.com/reglet-dev/reglet-numerics/domain/errors"
	"github.com/reglet-dev/reglet-numerics/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGamma_KnownValues(t *testing.T) {
	tests := []struct {
		a    float64
		want float64
	}{
		{1, 1},
		{2, 1},
		{3, 2},
		{5, 24},
		{10, 362880},
	}

	for _, tt := range tests {
		testutil.AssertRelativeError(t, tt.want, Gamma(tt.a), 0.01, "Gamma(%g)", tt.a)
	}
}

func TestGamma_IncreasingAboveTwo(t *testing.T) {
	prev := Gamma(2)
	for a := 2.5; a <= 20; a += 0.5 {
		g := Gamma(a)
		assert.Greater(t, g, prev, "Gamma(%g)", a)
		prev = g
	}
}

func TestGamma_NonPositiveIsNotGuarded(t *testing.T) {
	testutil.AssertNonFinite(t, Gamma(0))
	testutil.AssertNonFinite(t, Gamma(-1))
	testutil.AssertNaN(t, Gamma(math.NaN()))
}

func TestGammaDensity_Formula(t *testing.T) {
	tests := []struct{ a, x float64 }{
		{2, 3},
		{1, 1},
		{0.5, 4},
		{7.25, 2.5},
	}

	for _, tt := range tests {
		want := math.Pow(tt.a, tt.x-1) * math.Exp(-tt.a) / Gamma(tt.x)
		testutil.AssertSameFloat(t, want, GammaDensity(tt.a, tt.x), "GammaDensity(%g, %g)", tt.a, tt.x)
	}
}

func TestGammaDensity_ZeroX(t *testing.T) {
	// Gamma(0) is +Inf, so the density collapses to zero.
	assert.Zero(t, GammaDensity(2, 0))
	testutil.AssertNaN(t, GammaDensity(2, -1))
}

func TestNPV(t *testing.T) {
	assert.Zero(t, NPV(0.1, nil))
	assert.InDelta(t, 10.0, NPV(0, []float64{-100, 110}), 1e-12)
	assert.InDelta(t, 0.0, NPV(0.1, []float64{-100, 110}), 1e-9)
}

func TestIRR(t *testing.T) {
	tests := []struct {
		name  string
		flows []float64
		want  float64
	}{
		{"ten percent", []float64{-100, 110}, 10},
		{"twenty percent", []float64{-100, 120}, 20},
		{"empty", nil, 10.01},
		// The scan starts above the true rate (about 6.4%), so the first
		// evaluation already has NPV <= 0.
		{"rate below initial guess", []float64{-100, 50, 60}, 10.01},
		// NaN is not positive, so the first evaluation stops the scan.
		{"nan cash flow", []float64{-100, math.NaN()}, 10.01},
		{"nan only", []float64{math.NaN()}, 10.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, IRR(tt.flows), 0.02)
		})
	}
}

func TestIRR_Deterministic(t *testing.T) {
	flows := []float64{-1000, 300, 400, 500}
	first := IRR(flows)
	for i := 0; i < 5; i++ {
		testutil.AssertSameFloat(t, first, IRR(flows))
	}
}

func TestIRRBounded_MatchesIRR(t *testing.T) {
	flows := []float64{-100, 120}
	got, err := IRRBounded(flows, 10_000)
	require.NoError(t, err)
	testutil.AssertSameFloat(t, IRR(flows), got)
}

func TestIRRBounded_NaNStops(t *testing.T) {
	got, err := IRRBounded([]float64{-100, math.NaN()}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 10.01, got, 1e-9)
}

func TestIRRBounded_NoCrossing(t *testing.T) {
	_, err := IRRBounded([]float64{1, 2, 3}, 100)
	require.Error(t, err)
	assert.True(t, stdErrors.Is(err, errors.ErrNoConvergence))

	var convErr *errors.ConvergenceError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "IRR", convErr.Function)
	assert.Equal(t, 100, convErr.Iterations)
	assert.InDelta(t, 11.0, convErr.LastRate, 1e-9)
	assert.Greater(t, convErr.LastValue, 0.0)
}

func TestIRRBounded_InvalidCap(t *testing.T) {
	for _, n := range []int{0, -5} {
		_, err := IRRBounded([]float64{-100, 110}, n)
		var domErr *errors.DomainError
		require.ErrorAs(t, err, &domErr)
		assert.Equal(t, "maxIterations", domErr.Param)
	}
}

func TestGammaChecked(t *testing.T) {
	g, err := GammaChecked(5)
	require.NoError(t, err)
	testutil.AssertSameFloat(t, Gamma(5), g)

	tests := []struct {
		name  string
		a     float64
		param string
	}{
		{"zero", 0, "a"},
		{"negative", -2, "a"},
		{"nan", math.NaN(), "a"},
		{"inf", math.Inf(1), "a"},
		{"overflow", 500, "result"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GammaChecked(tt.a)
			var domErr *errors.DomainError
			require.ErrorAs(t, err, &domErr)
			assert.Equal(t, "gammaFunction", domErr.Function)
			assert.Equal(t, tt.param, domErr.Param)
			assert.ErrorIs(t, err, errors.ErrDomain)
		})
	}
}

func TestGammaDensityChecked(t *testing.T) {
	d, err := GammaDensityChecked(2, 3)
	require.NoError(t, err)
	testutil.AssertSameFloat(t, GammaDensity(2, 3), d)

	tests := []struct {
		name  string
		a, x  float64
		param string
	}{
		{"nan a", math.NaN(), 1, "a"},
		{"zero x", 2, 0, "x"},
		{"negative x", 2, -1, "x"},
		{"negative a fractional power", -2, 1.5, "result"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GammaDensityChecked(tt.a, tt.x)
			var domErr *errors.DomainError
			require.ErrorAs(t, err, &domErr)
			assert.Equal(t, "gammaDistFunction", domErr.Function)
			assert.Equal(t, tt.param, domErr.Param)
		})
	}
}

func TestStaticSecret(t *testing.T) {
	assert.Equal(t, "just_a_string_of_non-hashed-password", StaticSecret())
	assert.Equal(t, StaticSecret(), StaticSecret())
}

func TestStaticSecretC(t *testing.T) {
	b := StaticSecretC()
	require.NotEmpty(t, b)
	assert.Equal(t, byte(0), b[len(b)-1])
	assert.Equal(t, StaticSecret(), string(b[:len(b)-1]))

	b[0] = 'X'
	assert.Equal(t, byte('j'), StaticSecretC()[0])
}
