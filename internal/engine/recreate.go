package engine

import (
	"fmt"

	"github.com/opweave/opweave/internal/mir"
)

// recreate replaces op with a fresh operation carrying the same name,
// result types, attributes and region count but the given operand
// list. Region contents move over wholesale, every use of an old
// result is redirected to the matching new result, and the original is
// erased. Changing an operand list in place is not possible once the
// arity changes, so this is the primitive every operand-shape edit
// funnels through.
func (s *Session) recreate(op *mir.Operation, operands []*mir.Value) (*mir.Operation, error) {
	block := op.Block()
	if block == nil {
		return nil, fmt.Errorf("cannot recreate a detached operation")
	}
	resultTypes := make([]mir.Type, op.NumResults())
	for i := range resultTypes {
		resultTypes[i] = op.Result(i).Type()
	}
	state := mir.OpState{
		Name:        op.Name(),
		ResultTypes: resultTypes,
		Operands:    operands,
		Attrs:       op.Attrs(),
		NumRegions:  op.NumRegions(),
	}
	newOp, err := mir.CreateOperation(state, mir.InsertionPoint{Block: block, Before: op})
	if err != nil {
		return nil, err
	}
	for i := 0; i < op.NumRegions(); i++ {
		for _, b := range op.Region(i).Blocks() {
			b.MoveTo(newOp.Region(i))
		}
	}
	root := s.module.Op()
	for i := 0; i < op.NumResults(); i++ {
		mir.ReplaceAllUsesWith(root, op.Result(i), newOp.Result(i))
	}
	if err := op.Erase(); err != nil {
		return nil, fmt.Errorf("erase replaced operation: %w", err)
	}
	return newOp, nil
}

// findFuncAndReturn walks up from op to the nearest enclosing
// func.func and finds its entry block terminator. Either result may be
// nil.
func findFuncAndReturn(op *mir.Operation) (funcOp, retOp *mir.Operation) {
	for cur := op; cur != nil; cur = cur.ParentOp() {
		if cur.Name() == "func.func" {
			funcOp = cur
			break
		}
	}
	if funcOp == nil || funcOp.NumRegions() == 0 || funcOp.Region(0).NumBlocks() == 0 {
		return funcOp, nil
	}
	return funcOp, funcOp.Region(0).Block(0).Terminator()
}

// syncFuncType rewrites the function_type attribute so its result list
// matches the terminator's current operand types. Declared inputs are
// preserved; when the attribute is missing or malformed the entry
// block's argument types stand in.
func syncFuncType(funcOp *mir.Operation) {
	if funcOp.NumRegions() == 0 || funcOp.Region(0).NumBlocks() == 0 {
		return
	}
	entry := funcOp.Region(0).Block(0)
	term := entry.Terminator()
	if term == nil {
		return
	}
	var inputs []mir.Type
	if a, ok := funcOp.Attr("function_type"); ok {
		if t, ok := a.TypeValue(); ok {
			if ft, err := mir.ParseFunctionType(string(t)); err == nil {
				inputs = ft.Inputs
			}
		}
	}
	if inputs == nil {
		inputs = make([]mir.Type, 0, entry.NumArgs())
		for i := 0; i < entry.NumArgs(); i++ {
			inputs = append(inputs, entry.Arg(i).Type())
		}
	}
	results := make([]mir.Type, 0, term.NumOperands())
	for _, v := range term.Operands() {
		results = append(results, v.Type())
	}
	ft := mir.FunctionType{Inputs: inputs, Results: results}
	funcOp.SetAttr("function_type", mir.TypeAttr(ft.Type()))
}
