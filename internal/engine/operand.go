package engine

import (
	"github.com/opweave/opweave/internal/graph"
	"github.com/opweave/opweave/internal/mir"
)

// RemoveOperand drops one operand slot from an operation. Arity cannot
// change in place, so the operation is recreated without the slot. A
// return terminator also gets the enclosing function's declared result
// types resynchronized.
func (s *Session) RemoveOperand(opID string, index int) (*graph.Graph, error) {
	if s.module == nil {
		return nil, errNoModule()
	}
	op, ok := s.reg.Op(opID)
	if !ok {
		return nil, errNotFound("operation", opID)
	}
	if index < 0 || index >= op.NumOperands() {
		return nil, errOutOfRange("operand", index, op.NumOperands(), opID)
	}
	s.snapshot()
	apply := func() error {
		operands := op.Operands()
		operands = append(operands[:index], operands[index+1:]...)
		isReturn := mir.IsTerminator(op.Name())
		funcOp, _ := findFuncAndReturn(op)
		if _, err := s.recreate(op, operands); err != nil {
			return errInternal("recreate without operand", err)
		}
		if isReturn && funcOp != nil {
			syncFuncType(funcOp)
		}
		return nil
	}
	if err := apply(); err != nil {
		return nil, s.rollback(err)
	}
	return s.commit("remove_operand", opID, map[string]any{"index": index})
}

// AddOperand inserts a value into an operation's operand list at
// position, clamped to the list's bounds; a negative position appends.
// The operation is recreated with the longer list, then the dominance
// pass runs in case the new producer sits below it.
func (s *Session) AddOperand(opID string, valueID string, position int) (*graph.Graph, error) {
	if s.module == nil {
		return nil, errNoModule()
	}
	op, ok := s.reg.Op(opID)
	if !ok {
		return nil, errNotFound("operation", opID)
	}
	val, ok := s.reg.Value(valueID)
	if !ok {
		return nil, errNotFound("value", valueID)
	}
	s.snapshot()
	apply := func() error {
		operands := op.Operands()
		pos := position
		if pos < 0 || pos > len(operands) {
			pos = len(operands)
		}
		operands = append(operands[:pos], append([]*mir.Value{val}, operands[pos:]...)...)
		isReturn := mir.IsTerminator(op.Name())
		funcOp, _ := findFuncAndReturn(op)
		newOp, err := s.recreate(op, operands)
		if err != nil {
			return errInternal("recreate with operand", err)
		}
		if isReturn && funcOp != nil {
			syncFuncType(funcOp)
		}
		ensureDominance(newOp)
		return nil
	}
	if err := apply(); err != nil {
		return nil, s.rollback(err)
	}
	return s.commit("add_operand", opID, map[string]any{
		"value":    valueID,
		"position": position,
	})
}

// AddResultToOutput routes one result of opID to the enclosing
// function's output: the value is appended to the return terminator's
// operands and the function's declared result types grow to match.
func (s *Session) AddResultToOutput(opID string, resultIndex int) (*graph.Graph, error) {
	if s.module == nil {
		return nil, errNoModule()
	}
	op, ok := s.reg.Op(opID)
	if !ok {
		return nil, errNotFound("operation", opID)
	}
	if resultIndex < 0 || resultIndex >= op.NumResults() {
		return nil, errOutOfRange("result", resultIndex, op.NumResults(), opID)
	}
	funcOp, retOp := findFuncAndReturn(op)
	if funcOp == nil || retOp == nil {
		return nil, errInvalidTarget("no enclosing function with a return terminator", opID)
	}
	value := op.Result(resultIndex)
	s.snapshot()
	apply := func() error {
		operands := append(retOp.Operands(), value)
		newRet, err := s.recreate(retOp, operands)
		if err != nil {
			return errInternal("recreate return", err)
		}
		ensureDominance(newRet)
		syncFuncType(funcOp)
		return nil
	}
	if err := apply(); err != nil {
		return nil, s.rollback(err)
	}
	return s.commit("add_result_to_output", opID, map[string]any{"result_index": resultIndex})
}
