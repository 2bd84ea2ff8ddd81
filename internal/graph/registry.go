package graph

import (
	"strconv"

	"github.com/opweave/opweave/internal/mir"
)

// ResultKey addresses one result of a registered operation.
type ResultKey struct {
	OpID  string
	Index int
}

// ArgKey addresses one argument of a registered block.
type ArgKey struct {
	BlockID string
	Index   int
}

// Registry maps stable identifiers to live backend handles for one
// materialization. A registry is populated by Build and discarded
// wholesale on the next rebuild; nothing in it survives a mutation.
type Registry struct {
	ops    map[string]*mir.Operation
	blocks map[string]*mir.Block
	values map[string]*mir.Value

	opIDs    map[*mir.Operation]string
	blockIDs map[*mir.Block]string

	resultIDs map[ResultKey]string
	argIDs    map[ArgKey]string

	counters map[string]int

	// fallbacks counts operands that could not be resolved through the
	// producer tables and were registered as fresh values. Non-zero
	// means the walked tree referenced values it never defined.
	fallbacks int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.reset()
	return r
}

func (r *Registry) reset() {
	r.ops = make(map[string]*mir.Operation)
	r.blocks = make(map[string]*mir.Block)
	r.values = make(map[string]*mir.Value)
	r.opIDs = make(map[*mir.Operation]string)
	r.blockIDs = make(map[*mir.Block]string)
	r.resultIDs = make(map[ResultKey]string)
	r.argIDs = make(map[ArgKey]string)
	r.counters = make(map[string]int)
	r.fallbacks = 0
}

// Op returns the backend operation registered under id.
func (r *Registry) Op(id string) (*mir.Operation, bool) {
	op, ok := r.ops[id]
	return op, ok
}

// Block returns the backend block registered under id.
func (r *Registry) Block(id string) (*mir.Block, bool) {
	b, ok := r.blocks[id]
	return b, ok
}

// Value returns the backend value registered under id.
func (r *Registry) Value(id string) (*mir.Value, bool) {
	v, ok := r.values[id]
	return v, ok
}

// OpID returns the identifier assigned to op in this materialization.
func (r *Registry) OpID(op *mir.Operation) (string, bool) {
	id, ok := r.opIDs[op]
	return id, ok
}

// FallbackResolutions reports how many operands resolved through the
// positional fallback during the last build.
func (r *Registry) FallbackResolutions() int { return r.fallbacks }

func (r *Registry) genID(prefix string) string {
	n := r.counters[prefix]
	r.counters[prefix] = n + 1
	return prefix + "_" + strconv.Itoa(n)
}

func (r *Registry) registerOp(op *mir.Operation) string {
	id := r.genID("op")
	r.ops[id] = op
	r.opIDs[op] = id
	return id
}

func (r *Registry) registerBlock(b *mir.Block) string {
	id := r.genID("block")
	r.blocks[id] = b
	r.blockIDs[b] = id
	return id
}
