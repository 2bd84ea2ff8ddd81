package engine

import (
	"sort"

	"github.com/opweave/opweave/internal/graph"
	"github.com/opweave/opweave/internal/mir"
)

// DeleteOperation erases opID and, transitively, every operation that
// consumes any of its results. Erasure runs consumers-first so no
// operation is ever removed while a result of it is still referenced.
func (s *Session) DeleteOperation(opID string) (*graph.Graph, error) {
	if s.module == nil {
		return nil, errNoModule()
	}
	op, ok := s.reg.Op(opID)
	if !ok {
		return nil, errNotFound("operation", opID)
	}
	if op == s.module.Op() {
		return nil, errInvalidTarget("cannot delete the module root", opID)
	}
	s.snapshot()
	apply := func() error {
		root := s.module.Op()
		var order []*mir.Operation
		collectDependents(root, op, map[*mir.Operation]bool{}, &order)
		for _, victim := range order {
			if err := victim.Erase(); err != nil {
				return errInternal("cascading erase", err)
			}
		}
		return nil
	}
	if err := apply(); err != nil {
		return nil, s.rollback(err)
	}
	return s.commit("delete_operation", opID, nil)
}

// collectDependents appends op and its transitive consumers to order
// in post-order, so each operation's consumers land before it.
func collectDependents(root, op *mir.Operation, visited map[*mir.Operation]bool, order *[]*mir.Operation) {
	if visited[op] {
		return
	}
	visited[op] = true
	for i := 0; i < op.NumResults(); i++ {
		for _, use := range mir.UsesOf(root, op.Result(i)) {
			collectDependents(root, use.Op, visited, order)
		}
	}
	*order = append(*order, op)
}

// DeleteOperationSingle erases opID without taking its consumers down.
// Each consumer is recreated with the offending operand slots removed;
// a consumer that is the function return also gets the enclosing
// function's declared result types resynchronized. Once no use
// remains, opID itself is erased.
func (s *Session) DeleteOperationSingle(opID string) (*graph.Graph, error) {
	if s.module == nil {
		return nil, errNoModule()
	}
	op, ok := s.reg.Op(opID)
	if !ok {
		return nil, errNotFound("operation", opID)
	}
	if op == s.module.Op() {
		return nil, errInvalidTarget("cannot delete the module root", opID)
	}
	s.snapshot()
	apply := func() error {
		root := s.module.Op()
		indices := make(map[*mir.Operation]map[int]bool)
		var consumers []*mir.Operation
		for i := 0; i < op.NumResults(); i++ {
			for _, use := range mir.UsesOf(root, op.Result(i)) {
				if use.Op == op {
					continue
				}
				if indices[use.Op] == nil {
					indices[use.Op] = make(map[int]bool)
					consumers = append(consumers, use.Op)
				}
				indices[use.Op][use.Index] = true
			}
		}
		for _, consumer := range consumers {
			drop := make([]int, 0, len(indices[consumer]))
			for i := range indices[consumer] {
				drop = append(drop, i)
			}
			// highest first so earlier removals do not shift later ones
			sort.Sort(sort.Reverse(sort.IntSlice(drop)))
			operands := consumer.Operands()
			for _, i := range drop {
				operands = append(operands[:i], operands[i+1:]...)
			}
			isReturn := mir.IsTerminator(consumer.Name())
			funcOp, _ := findFuncAndReturn(consumer)
			if _, err := s.recreate(consumer, operands); err != nil {
				return errInternal("recreate consumer", err)
			}
			if isReturn && funcOp != nil {
				syncFuncType(funcOp)
			}
		}
		if err := op.Erase(); err != nil {
			return errInternal("erase after detaching uses", err)
		}
		return nil
	}
	if err := apply(); err != nil {
		return nil, s.rollback(err)
	}
	return s.commit("delete_operation_single", opID, nil)
}
