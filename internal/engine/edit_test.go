package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opweave/opweave/internal/graph"
	"github.com/opweave/opweave/internal/testutil"
)

func TestModifyAttributes(t *testing.T) {
	s := newSession(t, testutil.SimpleFunc)

	g, err := s.ModifyAttributes("op_2", map[string]string{
		"value": "3.5 : f32",
		"note":  `"tweaked"`,
	}, nil)
	require.NoError(t, err)

	cst, ok := g.Operation("op_2")
	require.True(t, ok)
	byName := map[string]string{}
	for _, a := range cst.Attributes {
		byName[a.Name] = a.Value
	}
	assert.Equal(t, "3.5 : f32", byName["value"])
	assert.Equal(t, `"tweaked"`, byName["note"])

	g, err = s.ModifyAttributes("op_2", nil, []string{"note"})
	require.NoError(t, err)
	cst, _ = g.Operation("op_2")
	for _, a := range cst.Attributes {
		assert.NotEqual(t, "note", a.Name)
	}
}

func TestCreateOperationBeforePosition(t *testing.T) {
	s := newSession(t, testutil.TwoConstFunc)

	// Position 2 inserts before the add, after both constants.
	g, err := s.CreateOperation("arith.constant", []string{"f32"}, nil,
		[]graph.AttributeInfo{{Name: "value", Value: "3.0 : f32"}}, "block_1", 2)
	require.NoError(t, err)

	entry, ok := g.Block("block_1")
	require.True(t, ok)
	require.Len(t, entry.Operations, 5)
	inserted, _ := g.Operation(entry.Operations[2])
	assert.Equal(t, "arith.constant", inserted.Name)
	added, _ := g.Operation(entry.Operations[3])
	assert.Equal(t, "arith.addf", added.Name)
}

func TestCreateOperationLandsBeforeTerminator(t *testing.T) {
	s := newSession(t, testutil.TwoConstFunc)

	// An out-of-range position falls back to just before the return.
	g, err := s.CreateOperation("arith.negf", []string{"f32"}, []string{"val_2"}, nil, "block_1", -1)
	require.NoError(t, err)

	entry, _ := g.Block("block_1")
	require.Len(t, entry.Operations, 5)
	neg, _ := g.Operation(entry.Operations[3])
	assert.Equal(t, "arith.negf", neg.Name)
	ret, _ := g.Operation(entry.Operations[4])
	assert.Equal(t, "func.return", ret.Name)
}

func TestCreateOperationAppendsInEmptyBlock(t *testing.T) {
	s := newSession(t, testutil.BareModule)

	g, err := s.CreateOperation("arith.constant", []string{"i32"}, nil,
		[]graph.AttributeInfo{{Name: "value", Value: "1 : i32"}}, "block_0", 7)
	require.NoError(t, err)

	body, _ := g.Block("block_0")
	require.Len(t, body.Operations, 1)
}

func TestCreateOperationRollsBackOnBadType(t *testing.T) {
	s := newSession(t, testutil.TwoConstFunc)
	before := moduleText(t, s)

	_, err := s.CreateOperation("arith.negf", []string{"not a type!"}, nil, nil, "block_1", 0)
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.Equal(t, before, moduleText(t, s))
	assert.False(t, s.CanUndo())
}

func TestCreateOperationRollsBackOnUnknownOperand(t *testing.T) {
	s := newSession(t, testutil.TwoConstFunc)
	before := moduleText(t, s)

	_, err := s.CreateOperation("arith.negf", []string{"f32"}, []string{"val_99"}, nil, "block_1", 0)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, before, moduleText(t, s))
}

func TestDeleteOperationCascades(t *testing.T) {
	s := newSession(t, testutil.ChainFunc)

	// Deleting the constant takes the multiply, the negate and the
	// return down with it: each consumer is erased before its producer.
	g, err := s.DeleteOperation("op_2")
	require.NoError(t, err)

	require.Len(t, g.Operations, 1)
	assert.Equal(t, "func.func", g.Operations[0].Name)

	// The function body lost its terminator; validation reports it.
	valid, diags := s.Validate()
	assert.False(t, valid)
	assert.Contains(t, strings.Join(diags, "\n"), "return terminator")

	_, err = s.Undo()
	require.NoError(t, err)
	assert.Equal(t, testutil.ChainFunc, moduleText(t, s))
}

func TestDeleteOperationSingleDetachesConsumers(t *testing.T) {
	s := newSession(t, testutil.TwoConstFunc)

	// Deleting one constant leaves the add behind with one operand.
	g, err := s.DeleteOperationSingle("op_2")
	require.NoError(t, err)

	entry, _ := g.Block("block_1")
	require.Len(t, entry.Operations, 3)
	add, _ := g.Operation(entry.Operations[1])
	assert.Equal(t, "arith.addf", add.Name)
	assert.Len(t, add.Operands, 1)
	ret, _ := g.Operation(entry.Operations[2])
	assert.Equal(t, "func.return", ret.Name)
	assert.Len(t, ret.Operands, 1, "the return still consumes the add result")
}

func TestDeleteOperationSingleResyncsReturn(t *testing.T) {
	s := newSession(t, testutil.TwoConstFunc)

	// The add feeds the return, so deleting it shrinks the declared
	// result list to nothing.
	_, err := s.DeleteOperationSingle("op_4")
	require.NoError(t, err)

	text := moduleText(t, s)
	assert.NotContains(t, text, "-> (f32)")
	valid, diags := s.Validate()
	assert.True(t, valid, "diagnostics: %v", diags)
}

func TestDeleteModuleRootRejected(t *testing.T) {
	s := newSession(t, testutil.SimpleFunc)
	_, err := s.DeleteOperation("op_0")
	assert.True(t, IsInvalidTarget(err))
	_, err = s.DeleteOperationSingle("op_0")
	assert.True(t, IsInvalidTarget(err))
	assert.False(t, s.CanUndo())
}

func TestSetOperand(t *testing.T) {
	s := newSession(t, testutil.TwoConstFunc)

	// Point the add's first operand at the second constant, so both
	// operands read the same value.
	g, err := s.SetOperand("op_4", 0, "val_1")
	require.NoError(t, err)

	add, ok := g.Operation("op_4")
	require.True(t, ok)
	assert.Equal(t, add.Operands[0].ValueID, add.Operands[1].ValueID)
}

func TestSetOperandRepairsDominance(t *testing.T) {
	s := newSession(t, testutil.TwoConstFunc)

	// Put a fresh constant between the add and the return, then point
	// the add at it: the producer now sits below its consumer and the
	// block must be re-sorted.
	g, err := s.CreateOperation("arith.constant", []string{"f32"},
		nil, []graph.AttributeInfo{{Name: "value", Value: "9.0 : f32"}}, "block_1", -1)
	require.NoError(t, err)

	entry, _ := g.Block("block_1")
	newConst := entry.Operations[3]
	created, _ := g.Operation(newConst)
	require.Equal(t, "arith.constant", created.Name)
	newVal := created.Results[0].ValueID

	add := entry.Operations[2]
	g, err = s.SetOperand(add, 0, newVal)
	require.NoError(t, err)

	var names []string
	entry, _ = g.Block("block_1")
	for _, id := range entry.Operations {
		op, _ := g.Operation(id)
		names = append(names, op.Name)
	}
	assert.Equal(t, []string{
		"arith.constant", "arith.constant", "arith.constant", "arith.addf", "func.return",
	}, names, "the new producer moved above the add")

	valid, diags := s.Validate()
	assert.True(t, valid, "diagnostics: %v", diags)
}

func TestAddOperand(t *testing.T) {
	s := newSession(t, testutil.TwoConstFunc)

	// Grow the return into a two-value return; the function signature
	// follows.
	g, err := s.AddOperand("op_5", "val_0", -1)
	require.NoError(t, err)

	entry, _ := g.Block("block_1")
	ret, _ := g.Operation(entry.Operations[3])
	require.Equal(t, "func.return", ret.Name)
	assert.Len(t, ret.Operands, 2)

	assert.Contains(t, moduleText(t, s), "-> (f32, f32)")
	valid, diags := s.Validate()
	assert.True(t, valid, "diagnostics: %v", diags)
}

func TestRemoveOperandResyncsReturn(t *testing.T) {
	s := newSession(t, testutil.SimpleFunc)

	_, err := s.RemoveOperand("op_4", 0)
	require.NoError(t, err)

	text := moduleText(t, s)
	assert.Contains(t, text, `"func.return"() : () -> ()`)
	assert.NotContains(t, text, "-> (f32) {")
	valid, diags := s.Validate()
	assert.True(t, valid, "diagnostics: %v", diags)
}

func TestRemoveOperandOutOfRange(t *testing.T) {
	s := newSession(t, testutil.SimpleFunc)
	_, err := s.RemoveOperand("op_4", 3)
	assert.True(t, IsOutOfRange(err))
	assert.False(t, s.CanUndo())
}

func TestAddResultToOutput(t *testing.T) {
	s := newSession(t, testutil.TwoConstFunc)

	// Route the first constant to the function output alongside the
	// existing add result.
	g, err := s.AddResultToOutput("op_2", 0)
	require.NoError(t, err)

	entry, _ := g.Block("block_1")
	ret, _ := g.Operation(entry.Operations[3])
	require.Equal(t, "func.return", ret.Name)
	require.Len(t, ret.Operands, 2)

	assert.Contains(t, moduleText(t, s), "-> (f32, f32)")
	valid, diags := s.Validate()
	assert.True(t, valid, "diagnostics: %v", diags)

	_, err = s.Undo()
	require.NoError(t, err)
	assert.Equal(t, testutil.TwoConstFunc, moduleText(t, s))
}

func TestAddResultToOutputBoundsCheck(t *testing.T) {
	s := newSession(t, testutil.TwoConstFunc)
	_, err := s.AddResultToOutput("op_2", 5)
	assert.True(t, IsOutOfRange(err))
	assert.False(t, s.CanUndo())
}

func TestAddResultToOutputNeedsEnclosingFunc(t *testing.T) {
	s := newSession(t, `module {
  %0 = "arith.constant"() {value = 1.0 : f32} : () -> f32
}
`)
	_, err := s.AddResultToOutput("op_1", 0)
	assert.True(t, IsInvalidTarget(err))
	assert.False(t, s.CanUndo())
}
