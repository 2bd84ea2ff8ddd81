// Package testutil holds shared module fixtures and parse helpers for
// tests. Fixture texts are written in canonical form so round-trip
// assertions can compare against the source bytes directly.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opweave/opweave/internal/mir"
)

// SimpleFunc is a minimal valid function: one constant, one add, one
// return.
const SimpleFunc = `module {
  func @main(%arg0: f32) -> (f32) {
    %0 = "arith.constant"() {value = 1.0 : f32} : () -> f32
    %1 = "arith.addf"(%arg0, %0) : (f32, f32) -> f32
    "func.return"(%1) : (f32) -> ()
  }
}
`

// ChainFunc has a three-link def-use chain, for cascading-delete and
// routing tests: a constant feeds a multiply, which feeds a negate,
// which feeds the return.
const ChainFunc = `module {
  func @chain(%arg0: f32) -> (f32) {
    %0 = "arith.constant"() {value = 2.0 : f32} : () -> f32
    %1 = "arith.mulf"(%arg0, %0) : (f32, f32) -> f32
    %2 = "arith.negf"(%1) : (f32) -> f32
    "func.return"(%2) : (f32) -> ()
  }
}
`

// TwoConstFunc has two independent constants feeding one add, so a
// non-cascading delete leaves a consumer behind with fewer operands.
const TwoConstFunc = `module {
  func @pair() -> (f32) {
    %0 = "arith.constant"() {value = 1.0 : f32} : () -> f32
    %1 = "arith.constant"() {value = 2.0 : f32} : () -> f32
    %2 = "arith.addf"(%0, %1) : (f32, f32) -> f32
    "func.return"(%2) : (f32) -> ()
  }
}
`

// BareModule is an empty module.
const BareModule = `module {
}
`

// MustParse parses text, failing the test on error.
func MustParse(t *testing.T, text string) *mir.Module {
	t.Helper()
	m, err := mir.Parse(text)
	require.NoError(t, err)
	return m
}
