package graph

import (
	"log/slog"

	"github.com/opweave/opweave/internal/mir"
)

// resolveValue maps an operand handle to the id of its registered
// producer. Handles are never compared by object identity; resolution
// goes through the producer's owner and index, keyed against the
// tables populated while walking.
//
// An operand that resolves through neither table references a value
// the walk never defined (for example a producer positioned after all
// of its consumers were visited). Such operands register as fresh
// values so the build still completes, and the occurrence is counted
// and logged for diagnosis.
func (r *Registry) resolveValue(v *mir.Value) string {
	if v.IsBlockArg() {
		if blockID, ok := r.blockIDs[v.OwnerBlock()]; ok {
			if valID, ok := r.argIDs[ArgKey{BlockID: blockID, Index: v.ArgIndex()}]; ok {
				return valID
			}
		}
	} else if producer := v.DefiningOp(); producer != nil {
		if opID, ok := r.opIDs[producer]; ok {
			if valID, ok := r.resultIDs[ResultKey{OpID: opID, Index: v.ResultIndex()}]; ok {
				return valID
			}
		}
	}

	r.fallbacks++
	valID := r.genID("val")
	r.values[valID] = v
	slog.Warn("operand did not resolve to a registered producer; registered as a new value",
		"value_id", valID, "type", string(v.Type()))
	return valID
}
