package mir

import (
	"fmt"
	"strings"
)

// Value is an SSA value: either the result of an operation or a block
// argument. Exactly one of the two producer fields is set.
type Value struct {
	typ Type

	op          *Operation // producing operation, nil for block arguments
	resultIndex int

	block    *Block // owning block, nil for operation results
	argIndex int
}

// Type returns the value's textual type descriptor.
func (v *Value) Type() Type { return v.typ }

// DefiningOp returns the operation producing this value, or nil if the
// value is a block argument.
func (v *Value) DefiningOp() *Operation { return v.op }

// ResultIndex returns the result position within the defining
// operation. Only meaningful when DefiningOp is non-nil.
func (v *Value) ResultIndex() int { return v.resultIndex }

// OwnerBlock returns the block owning this argument, or nil if the
// value is an operation result.
func (v *Value) OwnerBlock() *Block { return v.block }

// ArgIndex returns the argument position within the owning block.
// Only meaningful when OwnerBlock is non-nil.
func (v *Value) ArgIndex() int { return v.argIndex }

// IsBlockArg reports whether the value is a block argument.
func (v *Value) IsBlockArg() bool { return v.block != nil }

// NamedAttr is a single entry of an operation's ordered attribute map.
type NamedAttr struct {
	Name string
	Attr Attr
}

// Operation is a node of the IR tree: a named operation with ordered
// operands, results, attributes and child regions.
type Operation struct {
	name     string
	operands []*Value
	results  []*Value
	attrs    []NamedAttr
	regions  []*Region
	block    *Block // parent block, nil while detached
}

// OpState describes an operation to be created.
type OpState struct {
	Name        string
	ResultTypes []Type
	Operands    []*Value
	Attrs       []NamedAttr
	NumRegions  int
}

// InsertionPoint names where a new operation is placed. Before nil
// appends at the end of Block.
type InsertionPoint struct {
	Block  *Block
	Before *Operation
}

// CreateOperation builds a new operation from state and inserts it at
// ip. Child regions are created empty. Result values are freshly
// allocated.
func CreateOperation(state OpState, ip InsertionPoint) (*Operation, error) {
	if ip.Block == nil {
		return nil, fmt.Errorf("create %s: insertion point has no block", state.Name)
	}
	op := &Operation{
		name:     state.Name,
		operands: append([]*Value(nil), state.Operands...),
		attrs:    append([]NamedAttr(nil), state.Attrs...),
	}
	for i, t := range state.ResultTypes {
		op.results = append(op.results, &Value{typ: t, op: op, resultIndex: i})
	}
	for i := 0; i < state.NumRegions; i++ {
		op.regions = append(op.regions, &Region{owner: op})
	}
	if err := ip.Block.insert(op, ip.Before); err != nil {
		return nil, err
	}
	return op, nil
}

// Name returns the fully qualified operation name, e.g. "arith.addf".
func (o *Operation) Name() string { return o.name }

// Dialect returns the dialect prefix of the operation name, or "" when
// the name has no dot.
func (o *Operation) Dialect() string {
	if i := strings.IndexByte(o.name, '.'); i >= 0 {
		return o.name[:i]
	}
	return ""
}

// NumOperands returns the operand count.
func (o *Operation) NumOperands() int { return len(o.operands) }

// Operand returns the operand at index i.
func (o *Operation) Operand(i int) *Value { return o.operands[i] }

// Operands returns a copy of the operand list.
func (o *Operation) Operands() []*Value {
	return append([]*Value(nil), o.operands...)
}

// SetOperand writes the operand at index i in place. The operand list's
// length never changes through this method.
func (o *Operation) SetOperand(i int, v *Value) error {
	if i < 0 || i >= len(o.operands) {
		return fmt.Errorf("set operand: index %d out of range (op %s has %d operands)", i, o.name, len(o.operands))
	}
	o.operands[i] = v
	return nil
}

// NumResults returns the result count.
func (o *Operation) NumResults() int { return len(o.results) }

// Result returns the result value at index i.
func (o *Operation) Result(i int) *Value { return o.results[i] }

// Attrs returns a copy of the ordered attribute list.
func (o *Operation) Attrs() []NamedAttr {
	return append([]NamedAttr(nil), o.attrs...)
}

// Attr looks up an attribute by name.
func (o *Operation) Attr(name string) (Attr, bool) {
	for _, na := range o.attrs {
		if na.Name == name {
			return na.Attr, true
		}
	}
	return Attr{}, false
}

// SetAttr sets or replaces the named attribute, keeping insertion
// order for new names.
func (o *Operation) SetAttr(name string, a Attr) {
	for i, na := range o.attrs {
		if na.Name == name {
			o.attrs[i].Attr = a
			return
		}
	}
	o.attrs = append(o.attrs, NamedAttr{Name: name, Attr: a})
}

// RemoveAttr deletes the named attribute. Removing an absent name is a
// no-op.
func (o *Operation) RemoveAttr(name string) {
	for i, na := range o.attrs {
		if na.Name == name {
			o.attrs = append(o.attrs[:i], o.attrs[i+1:]...)
			return
		}
	}
}

// NumRegions returns the child region count.
func (o *Operation) NumRegions() int { return len(o.regions) }

// Region returns the child region at index i.
func (o *Operation) Region(i int) *Region { return o.regions[i] }

// Block returns the parent block, or nil while the operation is
// detached.
func (o *Operation) Block() *Block { return o.block }

// ParentOp returns the operation owning the parent block's region, or
// nil at the root.
func (o *Operation) ParentOp() *Operation {
	if o.block == nil || o.block.region == nil {
		return nil
	}
	return o.block.region.owner
}

// Root climbs the parent chain to the outermost operation.
func (o *Operation) Root() *Operation {
	root := o
	for p := root.ParentOp(); p != nil; p = p.ParentOp() {
		root = p
	}
	return root
}

// MoveBefore detaches the operation and reinserts it immediately
// before other, which must be attached to a block.
func (o *Operation) MoveBefore(other *Operation) error {
	if other.block == nil {
		return fmt.Errorf("move %s: target %s is detached", o.name, other.name)
	}
	o.detach()
	return other.block.insert(o, other)
}

// MoveAfter detaches the operation and reinserts it immediately after
// other, which must be attached to a block.
func (o *Operation) MoveAfter(other *Operation) error {
	if other.block == nil {
		return fmt.Errorf("move %s: target %s is detached", o.name, other.name)
	}
	o.detach()
	b := other.block
	idx := b.indexOf(other)
	if idx+1 < len(b.ops) {
		return b.insert(o, b.ops[idx+1])
	}
	return b.insert(o, nil)
}

// Erase removes the operation from its parent block. It fails if any
// of the operation's results still has a use reachable from the root;
// callers must redirect or remove uses first.
func (o *Operation) Erase() error {
	root := o.Root()
	for i, res := range o.results {
		if uses := UsesOf(root, res); len(uses) > 0 {
			return fmt.Errorf("erase %s: result %d still has %d uses", o.name, i, len(uses))
		}
	}
	o.detach()
	return nil
}

func (o *Operation) detach() {
	if o.block == nil {
		return
	}
	b := o.block
	for i, op := range b.ops {
		if op == o {
			b.ops = append(b.ops[:i], b.ops[i+1:]...)
			break
		}
	}
	o.block = nil
}

// Walk visits o and every operation nested under it in document order.
// Returning false from fn stops the walk.
func (o *Operation) Walk(fn func(*Operation) bool) bool {
	if !fn(o) {
		return false
	}
	for _, r := range o.regions {
		for _, b := range r.blocks {
			for _, child := range b.ops {
				if !child.Walk(fn) {
					return false
				}
			}
		}
	}
	return true
}

// Block is an ordered list of operations plus typed arguments, owned
// by a region.
type Block struct {
	args   []*Value
	ops    []*Operation
	region *Region
}

// NumArgs returns the argument count.
func (b *Block) NumArgs() int { return len(b.args) }

// Arg returns the argument value at index i.
func (b *Block) Arg(i int) *Value { return b.args[i] }

// AddArg appends a new block argument of the given type and returns
// its value.
func (b *Block) AddArg(t Type) *Value {
	v := &Value{typ: t, block: b, argIndex: len(b.args)}
	b.args = append(b.args, v)
	return v
}

// NumOps returns the operation count.
func (b *Block) NumOps() int { return len(b.ops) }

// Op returns the operation at index i.
func (b *Block) Op(i int) *Operation { return b.ops[i] }

// Operations returns a copy of the ordered operation list.
func (b *Block) Operations() []*Operation {
	return append([]*Operation(nil), b.ops...)
}

// Region returns the owning region, or nil while detached.
func (b *Block) Region() *Region { return b.region }

// IndexOf returns op's position in the block, or -1 if absent.
func (b *Block) IndexOf(op *Operation) int { return b.indexOf(op) }

func (b *Block) indexOf(op *Operation) int {
	for i, o := range b.ops {
		if o == op {
			return i
		}
	}
	return -1
}

func (b *Block) insert(op *Operation, before *Operation) error {
	if op.block != nil {
		return fmt.Errorf("insert %s: operation already attached", op.name)
	}
	if before == nil {
		b.ops = append(b.ops, op)
		op.block = b
		return nil
	}
	idx := b.indexOf(before)
	if idx < 0 {
		return fmt.Errorf("insert %s: reference operation %s not in block", op.name, before.name)
	}
	b.ops = append(b.ops, nil)
	copy(b.ops[idx+1:], b.ops[idx:])
	b.ops[idx] = op
	op.block = b
	return nil
}

// MoveTo detaches the block from its current region and appends it to
// dst. The block's operations and arguments move with it.
func (b *Block) MoveTo(dst *Region) {
	if b.region != nil {
		r := b.region
		for i, blk := range r.blocks {
			if blk == b {
				r.blocks = append(r.blocks[:i], r.blocks[i+1:]...)
				break
			}
		}
	}
	dst.blocks = append(dst.blocks, b)
	b.region = dst
}

// Region is an ordered list of blocks owned by an operation.
type Region struct {
	blocks []*Block
	owner  *Operation
}

// NumBlocks returns the block count.
func (r *Region) NumBlocks() int { return len(r.blocks) }

// Block returns the block at index i.
func (r *Region) Block(i int) *Block { return r.blocks[i] }

// Blocks returns a copy of the ordered block list.
func (r *Region) Blocks() []*Block {
	return append([]*Block(nil), r.blocks...)
}

// Owner returns the operation owning this region.
func (r *Region) Owner() *Operation { return r.owner }

// AddBlock appends a new empty block to the region.
func (r *Region) AddBlock() *Block {
	b := &Block{region: r}
	r.blocks = append(r.blocks, b)
	return b
}

// Use records one consumption of a value: the consuming operation and
// the operand index.
type Use struct {
	Op    *Operation
	Index int
}

// UsesOf walks the tree under root and collects every operand slot
// referencing v. The backend keeps no incremental use lists; this scan
// is the only use query.
func UsesOf(root *Operation, v *Value) []Use {
	var uses []Use
	root.Walk(func(op *Operation) bool {
		for i, operand := range op.operands {
			if operand == v {
				uses = append(uses, Use{Op: op, Index: i})
			}
		}
		return true
	})
	return uses
}

// ReplaceAllUsesWith rewrites every operand slot under root that
// references old to refer to new instead.
func ReplaceAllUsesWith(root *Operation, old, new *Value) {
	root.Walk(func(op *Operation) bool {
		for i, operand := range op.operands {
			if operand == old {
				op.operands[i] = new
			}
		}
		return true
	})
}

// Module wraps the root "builtin.module" operation.
type Module struct {
	op *Operation
}

// Op returns the root operation.
func (m *Module) Op() *Operation { return m.op }

// Body returns the module's single block.
func (m *Module) Body() *Block {
	return m.op.Region(0).Block(0)
}

// NewModule builds an empty module: one region holding one empty
// block.
func NewModule() *Module {
	op := &Operation{name: "builtin.module"}
	r := &Region{owner: op}
	op.regions = []*Region{r}
	r.AddBlock()
	return &Module{op: op}
}
