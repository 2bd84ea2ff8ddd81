package mir

import (
	"fmt"
	"strings"
)

// Severity grades a verifier diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one finding from structural verification.
type Diagnostic struct {
	Severity Severity
	Message  string
}

// String renders the diagnostic as "SEVERITY: message".
func (d Diagnostic) String() string {
	return strings.ToUpper(string(d.Severity)) + ": " + d.Message
}

// registeredDialects are the dialects this backend verifies natively.
// Operations from any other dialect parse and print fine but get no
// structural checks beyond SSA visibility; supplementary validation is
// the caller's concern.
var registeredDialects = map[string]bool{
	"builtin": true,
	"func":    true,
	"arith":   true,
}

// IsRegisteredDialect reports whether the dialect of the given
// operation name has a native verifier.
func IsRegisteredDialect(opName string) bool {
	if i := strings.IndexByte(opName, '.'); i >= 0 {
		return registeredDialects[opName[:i]]
	}
	return false
}

// IsTerminator reports whether the operation name is a block
// terminator. The editing surface only deals in function returns.
func IsTerminator(name string) bool {
	return name == "func.return" || name == "return"
}

// Terminator returns the block's trailing terminator operation, or nil
// when the block is empty or does not end in one.
func (b *Block) Terminator() *Operation {
	if len(b.ops) == 0 {
		return nil
	}
	last := b.ops[len(b.ops)-1]
	if IsTerminator(last.name) {
		return last
	}
	return nil
}

// Verify runs structural verification over the whole module: SSA
// visibility and same-block dominance for every use, plus per-dialect
// checks for natively verified dialects. It returns true with no
// diagnostics for a well-formed module.
func Verify(m *Module) (bool, []Diagnostic) {
	v := &verifier{}
	root := m.op
	if root.NumRegions() != 1 || root.Region(0).NumBlocks() != 1 {
		v.errorf("builtin.module must hold exactly one region with one block")
	}
	root.Walk(func(op *Operation) bool {
		v.verifyOp(op)
		return true
	})
	return len(v.diags) == 0, v.diags
}

type verifier struct {
	diags []Diagnostic
}

func (v *verifier) errorf(format string, args ...any) {
	v.diags = append(v.diags, Diagnostic{Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

func (v *verifier) verifyOp(op *Operation) {
	v.verifyUses(op)
	switch {
	case op.name == "func.func":
		v.verifyFunc(op)
	case IsTerminator(op.name):
		v.verifyReturnPlacement(op)
	case op.Dialect() == "arith":
		v.verifyArith(op)
	}
}

// verifyUses checks that every operand's producer is visible at the
// use: defined in an enclosing block, and, for a same-block producer,
// positioned strictly before the consumer.
func (v *verifier) verifyUses(op *Operation) {
	for i, operand := range op.operands {
		if operand.IsBlockArg() {
			owner := operand.OwnerBlock()
			if !blockEncloses(owner, op) {
				v.errorf("operand %d of %q uses a block argument from an unrelated block", i, op.name)
			}
			continue
		}
		producer := operand.DefiningOp()
		if producer == nil || producer.block == nil {
			v.errorf("operand %d of %q references an erased value", i, op.name)
			continue
		}
		// Climb to the ancestor of op sharing the producer's block.
		cur := op
		for cur != nil && cur.block != producer.block {
			cur = cur.ParentOp()
		}
		if cur == nil {
			v.errorf("operand %d of %q uses a value defined in an unrelated region", i, op.name)
			continue
		}
		b := producer.block
		if b.indexOf(producer) >= b.indexOf(cur) {
			v.errorf("operand %d of %q does not dominate its use: producer %q appears after the consumer", i, op.name, producer.name)
		}
	}
}

// blockEncloses reports whether block b is the parent block of op or
// of one of op's ancestors.
func blockEncloses(b *Block, op *Operation) bool {
	for cur := op; cur != nil; cur = cur.ParentOp() {
		if cur.block == b {
			return true
		}
	}
	return false
}

func (v *verifier) verifyFunc(op *Operation) {
	name := "<unnamed>"
	if symName, ok := op.Attr("sym_name"); ok {
		if s, ok := symName.StringValue(); ok {
			name = s
		}
	} else {
		v.errorf("func.func is missing the sym_name attribute")
	}

	if op.NumRegions() != 1 {
		v.errorf("func.func %q must have exactly one region", name)
		return
	}
	region := op.Region(0)
	if region.NumBlocks() == 0 {
		v.errorf("func.func %q has an empty body", name)
		return
	}

	ftAttr, ok := op.Attr("function_type")
	if !ok {
		v.errorf("func.func %q is missing the function_type attribute", name)
		return
	}
	t, ok := ftAttr.TypeValue()
	if !ok {
		v.errorf("func.func %q: function_type must be a type attribute", name)
		return
	}
	ft, err := ParseFunctionType(string(t))
	if err != nil {
		v.errorf("func.func %q: malformed function_type: %v", name, err)
		return
	}

	entry := region.Block(0)
	if entry.NumArgs() != len(ft.Inputs) {
		v.errorf("func.func %q: entry block has %d arguments but function_type lists %d inputs",
			name, entry.NumArgs(), len(ft.Inputs))
	} else {
		for i := 0; i < entry.NumArgs(); i++ {
			if entry.Arg(i).typ != ft.Inputs[i] {
				v.errorf("func.func %q: entry argument %d has type %s but function_type expects %s",
					name, i, entry.Arg(i).typ, ft.Inputs[i])
			}
		}
	}

	term := entry.Terminator()
	if term == nil {
		v.errorf("func.func %q: entry block must end with a return terminator", name)
		return
	}
	if term.NumOperands() != len(ft.Results) {
		v.errorf("func.func %q: return has %d operands but function_type lists %d results",
			name, term.NumOperands(), len(ft.Results))
		return
	}
	for i := 0; i < term.NumOperands(); i++ {
		if term.Operand(i).typ != ft.Results[i] {
			v.errorf("func.func %q: return operand %d has type %s but function_type expects %s",
				name, i, term.Operand(i).typ, ft.Results[i])
		}
	}
}

// verifyReturnPlacement requires terminators to sit last in their
// block, inside a function.
func (v *verifier) verifyReturnPlacement(op *Operation) {
	b := op.block
	if b == nil {
		return
	}
	if b.ops[len(b.ops)-1] != op {
		v.errorf("%q must be the last operation in its block", op.name)
	}
	for cur := op.ParentOp(); cur != nil; cur = cur.ParentOp() {
		if cur.name == "func.func" {
			return
		}
	}
	v.errorf("%q is not enclosed in a func.func", op.name)
}

// arithArity lists native arith operations by operand count. All of
// them produce one result whose type matches every operand.
var arithArity = map[string]int{
	"arith.addf":  2,
	"arith.subf":  2,
	"arith.mulf":  2,
	"arith.divf":  2,
	"arith.negf":  1,
	"arith.addi":  2,
	"arith.subi":  2,
	"arith.muli":  2,
	"arith.divsi": 2,
	"arith.divui": 2,
}

func (v *verifier) verifyArith(op *Operation) {
	if op.name == "arith.constant" {
		if op.NumOperands() != 0 || op.NumResults() != 1 {
			v.errorf("arith.constant takes no operands and produces one result")
		}
		if _, ok := op.Attr("value"); !ok {
			v.errorf("arith.constant requires a value attribute")
		}
		return
	}
	arity, ok := arithArity[op.name]
	if !ok {
		v.errorf("unknown operation %q in registered dialect arith", op.name)
		return
	}
	if op.NumOperands() != arity || op.NumResults() != 1 {
		v.errorf("%q expects %d operands and one result, got %d operands and %d results",
			op.name, arity, op.NumOperands(), op.NumResults())
		return
	}
	resType := op.Result(0).typ
	for i := 0; i < op.NumOperands(); i++ {
		if op.Operand(i).typ != resType {
			v.errorf("%q operand %d type %s does not match result type %s",
				op.name, i, op.Operand(i).typ, resType)
		}
	}
}
