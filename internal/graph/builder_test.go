package graph

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opweave/opweave/internal/testutil"
)

func TestBuildSimpleFunc(t *testing.T) {
	m := testutil.MustParse(t, testutil.SimpleFunc)
	reg := NewRegistry()
	g := reg.Build(m)

	assert.Equal(t, "op_0", g.ModuleID)

	// Nested operations surface before their parent; the module root
	// itself has no OperationInfo row.
	require.Len(t, g.Operations, 4)
	assert.Equal(t, "arith.constant", g.Operations[0].Name)
	assert.Equal(t, "arith.addf", g.Operations[1].Name)
	assert.Equal(t, "func.return", g.Operations[2].Name)
	assert.Equal(t, "func.func", g.Operations[3].Name)

	addf, ok := g.Operation("op_3")
	require.True(t, ok)
	assert.Equal(t, "arith", addf.Dialect)
	assert.Equal(t, 1, addf.Position)
	require.Len(t, addf.Operands, 2)
	assert.Equal(t, "val_0", addf.Operands[0].ValueID, "first operand is the entry block argument")
	assert.Equal(t, "val_1", addf.Operands[1].ValueID, "second operand is the constant's result")
	require.Len(t, addf.Results, 1)
	assert.Equal(t, "val_2", addf.Results[0].ValueID)

	entry, ok := g.Block("block_1")
	require.True(t, ok)
	require.Len(t, entry.Arguments, 1)
	assert.Equal(t, "val_0", entry.Arguments[0].ValueID)
	assert.Equal(t, []string{"op_2", "op_3", "op_4"}, entry.Operations)

	require.Len(t, g.Edges, 3)
	assert.Equal(t, EdgeInfo{FromValue: "val_0", ToOp: "op_3", ToOperandIndex: 0}, g.Edges[0])
	assert.Equal(t, EdgeInfo{FromValue: "val_1", ToOp: "op_3", ToOperandIndex: 1}, g.Edges[1])
	assert.Equal(t, EdgeInfo{FromValue: "val_2", ToOp: "op_4", ToOperandIndex: 0}, g.Edges[2])
}

func TestBuildAttributesOrdered(t *testing.T) {
	m := testutil.MustParse(t, testutil.SimpleFunc)
	g := NewRegistry().Build(m)

	fn, ok := g.Operation("op_1")
	require.True(t, ok)
	require.Len(t, fn.Attributes, 2)
	assert.Equal(t, "sym_name", fn.Attributes[0].Name)
	assert.Equal(t, `"main"`, fn.Attributes[0].Value)
	assert.Equal(t, "function_type", fn.Attributes[1].Name)
	assert.Equal(t, "(f32) -> f32", fn.Attributes[1].Value)
}

func TestBuildDeterministicAcrossRebuilds(t *testing.T) {
	m := testutil.MustParse(t, testutil.SimpleFunc)
	reg := NewRegistry()

	first, err := json.Marshal(reg.Build(m))
	require.NoError(t, err)
	second, err := json.Marshal(reg.Build(m))
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second), "rebuilding an unchanged tree must reproduce the projection")
}

func TestRegistryLookupsAfterBuild(t *testing.T) {
	m := testutil.MustParse(t, testutil.SimpleFunc)
	reg := NewRegistry()
	reg.Build(m)

	op, ok := reg.Op("op_2")
	require.True(t, ok)
	assert.Equal(t, "arith.constant", op.Name())

	val, ok := reg.Value("val_1")
	require.True(t, ok)
	assert.Same(t, op.Result(0), val)

	_, ok = reg.Op("op_99")
	assert.False(t, ok)
	_, ok = reg.Value("val_99")
	assert.False(t, ok)

	assert.Zero(t, reg.FallbackResolutions())
}

func TestBuildGolden(t *testing.T) {
	m := testutil.MustParse(t, testutil.BareModule)
	g := NewRegistry().Build(m)

	data, err := json.MarshalIndent(g, "", "  ")
	require.NoError(t, err)

	gold := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	gold.Assert(t, "bare_module", append(data, '\n'))
}
