package engine

import (
	"log/slog"
	"sort"

	"github.com/opweave/opweave/internal/mir"
)

// ensureDominance reorders op's block, when needed, so every
// same-block producer sits before its consumers. Only op's operands
// are inspected to decide whether reordering is needed at all; the
// reorder itself re-sorts the whole block so one repair cannot plant a
// violation elsewhere. Cross-block uses are the verifier's concern.
//
// The sort is stable with respect to original positions: among
// operations whose constraints are satisfied, the earlier one stays
// earlier. A dependency cycle leaves the block untouched; the
// violation then surfaces through validation rather than a half-done
// shuffle.
func ensureDominance(op *mir.Operation) {
	block := op.Block()
	if block == nil {
		return
	}
	ops := block.Operations()
	pos := make(map[*mir.Operation]int, len(ops))
	for i, o := range ops {
		pos[o] = i
	}
	opPos, ok := pos[op]
	if !ok {
		return
	}
	violated := false
	for _, v := range op.Operands() {
		producer := v.DefiningOp()
		if producer == nil {
			continue
		}
		if p, same := pos[producer]; same && p > opPos {
			violated = true
			break
		}
	}
	if !violated {
		return
	}

	// Kahn's algorithm over producer -> consumer constraints within
	// the block, ties broken by original position.
	successors := make(map[*mir.Operation][]*mir.Operation, len(ops))
	indegree := make(map[*mir.Operation]int, len(ops))
	for _, o := range ops {
		indegree[o] = 0
	}
	for _, o := range ops {
		seen := make(map[*mir.Operation]bool)
		for _, v := range o.Operands() {
			producer := v.DefiningOp()
			if producer == nil || producer == o || seen[producer] {
				continue
			}
			if _, same := pos[producer]; !same {
				continue
			}
			seen[producer] = true
			successors[producer] = append(successors[producer], o)
			indegree[o]++
		}
	}
	ready := make([]*mir.Operation, 0, len(ops))
	for _, o := range ops {
		if indegree[o] == 0 {
			ready = append(ready, o)
		}
	}
	ordered := make([]*mir.Operation, 0, len(ops))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return pos[ready[i]] < pos[ready[j]] })
		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, next)
		for _, succ := range successors[next] {
			indegree[succ]--
			if indegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}
	if len(ordered) != len(ops) {
		slog.Warn("dominance repair skipped: dependency cycle in block", "ops", len(ops))
		return
	}
	for i, o := range ordered {
		if i == 0 {
			if first := block.Op(0); first != o {
				if err := o.MoveBefore(first); err != nil {
					slog.Error("dominance repair move failed", "error", err)
					return
				}
			}
			continue
		}
		if err := o.MoveAfter(ordered[i-1]); err != nil {
			slog.Error("dominance repair move failed", "error", err)
			return
		}
	}
}
