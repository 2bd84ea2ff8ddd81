package mir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttr(t *testing.T) {
	tests := []struct {
		text     string
		wantKind AttrKind
		wantText string
	}{
		{`"hello"`, AttrString, `"hello"`},
		{`"with \"quotes\""`, AttrString, `"with \"quotes\""`},
		{`42`, AttrInteger, `42`},
		{`42 : i32`, AttrInteger, `42 : i32`},
		{`-7:i64`, AttrInteger, `-7 : i64`},
		{`1.5`, AttrFloat, `1.5`},
		{`1.0 : f32`, AttrFloat, `1.0 : f32`},
		{`true`, AttrBool, `true`},
		{`false`, AttrBool, `false`},
		{`unit`, AttrUnit, `unit`},
		{`@symbol`, AttrSymbol, `@symbol`},
		{`f32`, AttrType, `f32`},
		{`tensor<4 x f32>`, AttrType, `tensor<4xf32>`},
		{`(f32, f32) -> f32`, AttrType, `(f32, f32) -> f32`},
		{`[1 : i32, 2 : i32]`, AttrArray, `[1 : i32, 2 : i32]`},
		{`[]`, AttrArray, `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			a, err := ParseAttr(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, a.Kind)
			assert.Equal(t, tt.wantText, a.Text)
		})
	}
}

func TestParseAttrErrors(t *testing.T) {
	for _, text := range []string{``, `"unterminated`, `42 : `, `[1,`, `f32 junk`} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseAttr(text)
			assert.Error(t, err)
		})
	}
}

func TestStringAttrRoundTrip(t *testing.T) {
	a := StringAttr("line\nwith\ttabs and \"quotes\"")
	v, ok := a.StringValue()
	require.True(t, ok)
	assert.Equal(t, "line\nwith\ttabs and \"quotes\"", v)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		text string
		want Type
	}{
		{`f32`, "f32"},
		{`index`, "index"},
		{`tensor<4 x f32>`, "tensor<4xf32>"},
		{`memref<2x2xf64>`, "memref<2x2xf64>"},
		{`(f32) -> f32`, "(f32) -> f32"},
		{`(f32, i32) -> (f32, i32)`, "(f32, i32) -> (f32, i32)"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseType(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, text := range []string{``, `tensor<4xf32`, `f32 extra`, `(f32) ->`} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseType(text)
			assert.Error(t, err)
		})
	}
}

func TestFunctionTypeString(t *testing.T) {
	assert.Equal(t, "(f32, f32) -> f32", FunctionType{
		Inputs:  []Type{"f32", "f32"},
		Results: []Type{"f32"},
	}.String())
	assert.Equal(t, "() -> ()", FunctionType{}.String())
	assert.Equal(t, "(i32) -> (f32, f32)", FunctionType{
		Inputs:  []Type{"i32"},
		Results: []Type{"f32", "f32"},
	}.String())
}
