// Package numeric provides the pure kernels exposed through the bridge.
// Nothing here knows about host values or marshalling.
package numeric

import (
	"math"

	"github.com/reglet-dev/reglet-numerics/domain/errors"
)

// Constants used by the Nemes approximation. Pi is truncated to ten
// decimals; existing callers depend on the exact results.
const (
	nemesPi = 3.1415926536
	nemesE  = 2.718281828459045
)

// IRR stepping policy.
const (
	// IRRInitialGuess is the rate the scan starts from.
	IRRInitialGuess = 1e-1
	// IRRIncrement is the fixed step added before every NPV evaluation.
	IRRIncrement = 1e-4
)

// secret is returned verbatim by StaticSecret.
const secret = "just_a_string_of_non-hashed-password"

// Gamma approximates Γ(a) with Nemes' 6-term asymptotic expansion:
//
//	(a/e)^a · sqrt(2π/a) · (1 + 1/(12a²) + 1/(1440a⁴) + 239/(362880a⁶))^a
//
// Valid for a > 0. Non-positive input is not guarded and yields NaN or Inf.
func Gamma(a float64) float64 {
	coefficient := math.Pow(1+1/(12*a*a)+1/(1440*math.Pow(a, 4))+239/(362880*math.Pow(a, 6)), a)
	return math.Pow(a/nemesE, a) * math.Sqrt(2*nemesPi/a) * coefficient
}

// GammaDensity evaluates a^(x-1) · e^(-a) / Gamma(x).
//
// Note the argument roles: this is not the textbook gamma PDF.
// x = 0 gives 0 because Gamma(0) is +Inf; negative x gives NaN.
func GammaDensity(a, x float64) float64 {
	return (math.Pow(a, x-1) * math.Exp(-a)) / Gamma(x)
}

// NPV returns Σ cashFlows[i] / (1+rate)^i. An empty sequence sums to zero.
func NPV(rate float64, cashFlows []float64) float64 {
	var npv float64
	for i, cf := range cashFlows {
		npv += cf / math.Pow(1+rate, float64(i))
	}
	return npv
}

// IRR finds an internal rate of return, in percent, by linear scan.
//
// Starting at IRRInitialGuess the rate is advanced by IRRIncrement, then the
// NPV is evaluated; the scan stops the first time NPV is not positive (NaN
// included) and returns the rate times 100. The scan assumes NPV decreases with the rate. Cash flows
// with several sign changes can stop at an early crossing, and cash flows
// whose NPV never reaches zero (all positive, for instance) loop forever.
// Use IRRBounded when the input is not trusted.
func IRR(cashFlows []float64) float64 {
	guess := IRRInitialGuess
	for {
		guess += IRRIncrement
		if !(NPV(guess, cashFlows) > 0) {
			return guess * 100
		}
	}
}

// IRRBounded runs the same scan as IRR but gives up after maxIterations
// steps with a *errors.ConvergenceError. A non-positive maxIterations is
// rejected with a *errors.DomainError.
func IRRBounded(cashFlows []float64, maxIterations int) (float64, error) {
	if maxIterations <= 0 {
		return 0, &errors.DomainError{Function: "IRR", Param: "maxIterations", Value: float64(maxIterations)}
	}

	guess := IRRInitialGuess
	npv := 0.0
	for i := 0; i < maxIterations; i++ {
		guess += IRRIncrement
		npv = NPV(guess, cashFlows)
		if !(npv > 0) {
			return guess * 100, nil
		}
	}
	return 0, &errors.ConvergenceError{
		Function:   "IRR",
		Iterations: maxIterations,
		LastRate:   guess * 100,
		LastValue:  npv,
	}
}

// GammaChecked is Gamma with a domain guard on a and on the result.
func GammaChecked(a float64) (float64, error) {
	if !positiveFinite(a) {
		return 0, &errors.DomainError{Function: "gammaFunction", Param: "a", Value: a}
	}
	g := Gamma(a)
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return 0, &errors.DomainError{Function: "gammaFunction", Param: "result", Value: g}
	}
	return g, nil
}

// GammaDensityChecked is GammaDensity with domain guards on a, x and the result.
func GammaDensityChecked(a, x float64) (float64, error) {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0, &errors.DomainError{Function: "gammaDistFunction", Param: "a", Value: a}
	}
	if !positiveFinite(x) {
		return 0, &errors.DomainError{Function: "gammaDistFunction", Param: "x", Value: x}
	}
	d := GammaDensity(a, x)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, &errors.DomainError{Function: "gammaDistFunction", Param: "result", Value: d}
	}
	return d, nil
}

// StaticSecret returns a fixed literal. It never changes within a process.
func StaticSecret() string {
	return secret
}

// StaticSecretC returns the literal as zero-terminated bytes. Each call
// returns a fresh slice.
func StaticSecretC() []byte {
	return append([]byte(secret), 0)
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
