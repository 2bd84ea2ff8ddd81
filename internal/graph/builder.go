package graph

import (
	"github.com/opweave/opweave/internal/mir"
)

// Build discards any previous registration state, walks the module
// tree in document order and returns its flat projection. Identifier
// counters restart at zero on every call, so ids are deterministic
// for a given tree shape but not stable across calls.
func (r *Registry) Build(m *mir.Module) *Graph {
	r.reset()
	g := &Graph{}
	g.ModuleID = r.registerOp(m.Op())
	r.walkOp(m.Op(), g.ModuleID, g)
	return g
}

// walkOp registers the regions, blocks and operations nested under op
// and returns the ids of op's own regions. Within a block, arguments
// register first, then each operation's results register before its
// operands resolve, matching the order producers become addressable.
func (r *Registry) walkOp(op *mir.Operation, opID string, g *Graph) []string {
	var regionIDs []string

	for ri := 0; ri < op.NumRegions(); ri++ {
		region := op.Region(ri)
		regionID := r.genID("region")
		regionIDs = append(regionIDs, regionID)
		var blockIDs []string

		for bi := 0; bi < region.NumBlocks(); bi++ {
			block := region.Block(bi)
			blockID := r.registerBlock(block)
			blockIDs = append(blockIDs, blockID)

			blockArgs := make([]ValueInfo, 0, block.NumArgs())
			for ai := 0; ai < block.NumArgs(); ai++ {
				arg := block.Arg(ai)
				valID := r.genID("val")
				r.values[valID] = arg
				r.argIDs[ArgKey{BlockID: blockID, Index: ai}] = valID
				blockArgs = append(blockArgs, ValueInfo{ValueID: valID, Type: string(arg.Type())})
			}

			var childOpIDs []string
			for pos, child := range block.Operations() {
				childID := r.registerOp(child)
				childOpIDs = append(childOpIDs, childID)

				results := make([]ValueInfo, 0, child.NumResults())
				for resIdx := 0; resIdx < child.NumResults(); resIdx++ {
					res := child.Result(resIdx)
					valID := r.genID("val")
					r.values[valID] = res
					r.resultIDs[ResultKey{OpID: childID, Index: resIdx}] = valID
					results = append(results, ValueInfo{ValueID: valID, Type: string(res.Type())})
				}

				operands := make([]ValueInfo, 0, child.NumOperands())
				for idx := 0; idx < child.NumOperands(); idx++ {
					operand := child.Operand(idx)
					valID := r.resolveValue(operand)
					operands = append(operands, ValueInfo{ValueID: valID, Type: string(operand.Type())})
					g.Edges = append(g.Edges, EdgeInfo{
						FromValue:      valID,
						ToOp:           childID,
						ToOperandIndex: idx,
					})
				}

				attrs := make([]AttributeInfo, 0, len(child.Attrs()))
				for _, na := range child.Attrs() {
					attrs = append(attrs, AttributeInfo{
						Name:  na.Name,
						Kind:  string(na.Attr.Kind),
						Value: na.Attr.Text,
					})
				}

				childRegionIDs := r.walkOp(child, childID, g)

				g.Operations = append(g.Operations, OperationInfo{
					OpID:        childID,
					Name:        child.Name(),
					Dialect:     child.Dialect(),
					Attributes:  attrs,
					Operands:    operands,
					Results:     results,
					Regions:     childRegionIDs,
					ParentBlock: blockID,
					Position:    pos,
				})
			}

			g.Blocks = append(g.Blocks, BlockInfo{
				BlockID:      blockID,
				Arguments:    blockArgs,
				ParentRegion: regionID,
				Operations:   childOpIDs,
			})
		}

		g.Regions = append(g.Regions, RegionInfo{
			RegionID: regionID,
			ParentOp: opID,
			Blocks:   blockIDs,
		})
	}

	return regionIDs
}
