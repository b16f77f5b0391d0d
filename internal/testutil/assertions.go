// Package testutil provides common test utilities and assertions for the bridge tests.
package testutil

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// AssertRelativeError asserts |actual-expected|/|expected| <= tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InEpsilon(t, expected, actual, tolerance, msgAndArgs...)
}

// AssertSameFloat asserts the two values have identical bits, so NaN equals
// NaN and 0 differs from -0.
func AssertSameFloat(t *testing.T, expected, actual float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, math.Float64bits(expected), math.Float64bits(actual), msgAndArgs...)
}

// AssertNaN asserts that v is NaN.
func AssertNaN(t *testing.T, v float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, math.IsNaN(v), msgAndArgs...)
}

// AssertNonFinite asserts that v is NaN or ±Inf.
func AssertNonFinite(t *testing.T, v float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, math.IsNaN(v) || math.IsInf(v, 0), msgAndArgs...)
}
