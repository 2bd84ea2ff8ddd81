package engine

import (
	"fmt"
	"sort"

	"github.com/opweave/opweave/internal/graph"
	"github.com/opweave/opweave/internal/mir"
)

// ModifyAttributes deletes then updates attributes on one operation.
// Update values arrive as attribute text and are parsed the same way
// module text is; one malformed value rolls the whole call back,
// including deletes that already applied. Update order is by attribute
// name so results do not depend on map iteration.
func (s *Session) ModifyAttributes(opID string, updates map[string]string, deletes []string) (*graph.Graph, error) {
	if s.module == nil {
		return nil, errNoModule()
	}
	op, ok := s.reg.Op(opID)
	if !ok {
		return nil, errNotFound("operation", opID)
	}
	s.snapshot()
	apply := func() error {
		for _, name := range deletes {
			op.RemoveAttr(name)
		}
		names := make([]string, 0, len(updates))
		for name := range updates {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			attr, err := mir.ParseAttr(updates[name])
			if err != nil {
				return errParse(fmt.Sprintf("attribute %q", name), err)
			}
			op.SetAttr(name, attr)
		}
		return nil
	}
	if err := apply(); err != nil {
		return nil, s.rollback(err)
	}
	return s.commit("modify_attributes", opID, map[string]any{
		"updates": updates,
		"deletes": deletes,
	})
}

// SetOperand overwrites one operand slot in place. The index and both
// ids are checked before the snapshot, so a bad call leaves no history
// entry behind. The write itself cannot fail; the dominance pass runs
// afterward in case the new producer sits below the consumer.
func (s *Session) SetOperand(opID string, index int, valueID string) (*graph.Graph, error) {
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
	if index < 0 || index >= op.NumOperands() {
		return nil, errOutOfRange("operand", index, op.NumOperands(), opID)
	}
	s.snapshot()
	if err := op.SetOperand(index, val); err != nil {
		return nil, s.rollback(errInternal("set operand", err))
	}
	ensureDominance(op)
	return s.commit("set_operand", opID, map[string]any{
		"index": index,
		"value": valueID,
	})
}
