package engine

import (
	"fmt"

	"github.com/opweave/opweave/internal/graph"
	"github.com/opweave/opweave/internal/mir"
)

// CreateOperation builds a fresh operation inside blockID. Result
// types and attribute values arrive as text and are parsed inside the
// transaction, so a malformed one rolls back cleanly. Attributes is an
// ordered list rather than a map; the order is preserved on the new
// operation.
//
// The insertion point follows one rule: a position inside the block's
// current operation count inserts before the operation at that
// position; any other position (including negative) lands before the
// block terminator when one exists, else at the end.
func (s *Session) CreateOperation(opName string, resultTypes []string, operandIDs []string, attributes []graph.AttributeInfo, blockID string, position int) (*graph.Graph, error) {
	if s.module == nil {
		return nil, errNoModule()
	}
	block, ok := s.reg.Block(blockID)
	if !ok {
		return nil, errNotFound("block", blockID)
	}
	s.snapshot()
	apply := func() error {
		types := make([]mir.Type, 0, len(resultTypes))
		for _, t := range resultTypes {
			parsed, err := mir.ParseType(t)
			if err != nil {
				return errParse(fmt.Sprintf("result type %q", t), err)
			}
			types = append(types, parsed)
		}
		operands := make([]*mir.Value, 0, len(operandIDs))
		for _, id := range operandIDs {
			v, ok := s.reg.Value(id)
			if !ok {
				return errNotFound("value", id)
			}
			operands = append(operands, v)
		}
		attrs := make([]mir.NamedAttr, 0, len(attributes))
		for _, a := range attributes {
			parsed, err := mir.ParseAttr(a.Value)
			if err != nil {
				return errParse(fmt.Sprintf("attribute %q", a.Name), err)
			}
			attrs = append(attrs, mir.NamedAttr{Name: a.Name, Attr: parsed})
		}
		ip := mir.InsertionPoint{Block: block}
		switch {
		case position >= 0 && position < block.NumOps():
			ip.Before = block.Op(position)
		default:
			ip.Before = block.Terminator()
		}
		op, err := mir.CreateOperation(mir.OpState{
			Name:        opName,
			ResultTypes: types,
			Operands:    operands,
			Attrs:       attrs,
		}, ip)
		if err != nil {
			return errInternal("create operation", err)
		}
		ensureDominance(op)
		return nil
	}
	if err := apply(); err != nil {
		return nil, s.rollback(err)
	}
	return s.commit("create_operation", opName, map[string]any{
		"block":    blockID,
		"position": position,
		"operands": operandIDs,
		"results":  resultTypes,
	})
}
