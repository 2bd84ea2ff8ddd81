package mir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) *Module {
	t.Helper()
	m, err := Parse(text)
	require.NoError(t, err)
	return m
}

func TestVerifyValidModule(t *testing.T) {
	m := mustParse(t, simpleFunc)
	valid, diags := Verify(m)
	assert.True(t, valid)
	assert.Empty(t, diags)
}

func diagText(diags []Diagnostic) string {
	var parts []string
	for _, d := range diags {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, "\n")
}

func TestVerifyDominanceViolation(t *testing.T) {
	m := mustParse(t, `module {
  func @bad(%arg0: f32) -> (f32) {
    %0 = "arith.addf"(%arg0, %1) : (f32, f32) -> f32
    %1 = "arith.constant"() {value = 1.0 : f32} : () -> f32
    "func.return"(%0) : (f32) -> ()
  }
}
`)
	valid, diags := Verify(m)
	assert.False(t, valid)
	assert.Contains(t, diagText(diags), "does not dominate")
}

func TestVerifyMissingTerminator(t *testing.T) {
	m := mustParse(t, `module {
  func @bad() -> (f32) {
    %0 = "arith.constant"() {value = 1.0 : f32} : () -> f32
  }
}
`)
	valid, diags := Verify(m)
	assert.False(t, valid)
	assert.Contains(t, diagText(diags), "must end with a return terminator")
}

func TestVerifyReturnTypeMismatch(t *testing.T) {
	m := mustParse(t, `module {
  func @bad(%arg0: i32) -> (f32) {
    "func.return"(%arg0) : (i32) -> ()
  }
}
`)
	valid, diags := Verify(m)
	assert.False(t, valid)
	assert.Contains(t, diagText(diags), "function_type expects f32")
}

func TestVerifyReturnOutsideFunc(t *testing.T) {
	m := mustParse(t, `module {
  "func.return"() : () -> ()
}
`)
	valid, diags := Verify(m)
	assert.False(t, valid)
	assert.Contains(t, diagText(diags), "not enclosed in a func.func")
}

func TestVerifyUnknownArithOp(t *testing.T) {
	m := mustParse(t, `module {
  %0 = "arith.constant"() {value = 1.0 : f32} : () -> f32
  %1 = "arith.bogus"(%0) : (f32) -> f32
}
`)
	valid, diags := Verify(m)
	assert.False(t, valid)
	assert.Contains(t, diagText(diags), `unknown operation "arith.bogus"`)
}

func TestVerifyArithOperandTypes(t *testing.T) {
	m := mustParse(t, `module {
  %0 = "arith.constant"() {value = 1.0 : f32} : () -> f32
  %1 = "arith.constant"() {value = 1 : i32} : () -> i32
  %2 = "arith.addf"(%0, %1) : (f32, i32) -> f32
}
`)
	valid, diags := Verify(m)
	assert.False(t, valid)
	assert.Contains(t, diagText(diags), "does not match result type")
}

func TestVerifyConstantNeedsValue(t *testing.T) {
	m := mustParse(t, `module {
  %0 = "arith.constant"() : () -> f32
}
`)
	valid, diags := Verify(m)
	assert.False(t, valid)
	assert.Contains(t, diagText(diags), "requires a value attribute")
}

func TestVerifyUnregisteredDialectPasses(t *testing.T) {
	m := mustParse(t, `module {
  %0 = "mydialect.thing"() : () -> f32
}
`)
	valid, diags := Verify(m)
	assert.True(t, valid, "unregistered dialects get no structural checks: %s", diagText(diags))
}

func TestIsRegisteredDialect(t *testing.T) {
	assert.True(t, IsRegisteredDialect("arith.addf"))
	assert.True(t, IsRegisteredDialect("func.return"))
	assert.False(t, IsRegisteredDialect("scf.if"))
	assert.False(t, IsRegisteredDialect("noDot"))
}
