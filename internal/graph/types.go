package graph

// ValueInfo describes one SSA value: its identifier and textual type.
type ValueInfo struct {
	ValueID string `json:"value_id"`
	Type    string `json:"type"`
}

// AttributeInfo is one entry of an operation's ordered attribute list.
type AttributeInfo struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// OperationInfo is the flat projection of one operation.
type OperationInfo struct {
	OpID        string          `json:"op_id"`
	Name        string          `json:"name"`
	Dialect     string          `json:"dialect"`
	Attributes  []AttributeInfo `json:"attributes"`
	Operands    []ValueInfo     `json:"operands"`
	Results     []ValueInfo     `json:"results"`
	Regions     []string        `json:"regions"`
	ParentBlock string          `json:"parent_block"`
	Position    int             `json:"position"`
}

// BlockInfo is the flat projection of one block.
type BlockInfo struct {
	BlockID      string      `json:"block_id"`
	Arguments    []ValueInfo `json:"arguments"`
	ParentRegion string      `json:"parent_region"`
	Operations   []string    `json:"operations"`
}

// RegionInfo is the flat projection of one region.
type RegionInfo struct {
	RegionID string   `json:"region_id"`
	ParentOp string   `json:"parent_op"`
	Blocks   []string `json:"blocks"`
}

// EdgeInfo is one dataflow edge: a value flowing into an operand slot.
// Edges are recomputed on every materialization, never stored.
type EdgeInfo struct {
	FromValue      string `json:"from_value"`
	ToOp           string `json:"to_op"`
	ToOperandIndex int    `json:"to_operand_index"`
}

// Graph is the full flat projection of a module: a containment tree
// (module, regions, blocks, operations) plus a dataflow edge set.
type Graph struct {
	ModuleID   string          `json:"module_id"`
	Operations []OperationInfo `json:"operations"`
	Blocks     []BlockInfo     `json:"blocks"`
	Regions    []RegionInfo    `json:"regions"`
	Edges      []EdgeInfo      `json:"edges"`
}

// Operation looks up a projected operation by id.
func (g *Graph) Operation(id string) (OperationInfo, bool) {
	for _, op := range g.Operations {
		if op.OpID == id {
			return op, true
		}
	}
	return OperationInfo{}, false
}

// Block looks up a projected block by id.
func (g *Graph) Block(id string) (BlockInfo, bool) {
	for _, b := range g.Blocks {
		if b.BlockID == id {
			return b, true
		}
	}
	return BlockInfo{}, false
}
