package mir

import (
	"strconv"
	"strings"
)

// Text serializes the module. Printing is deterministic: value names
// are assigned by document order, so two structurally identical
// modules print identically and print-then-parse is stable.
func (m *Module) Text() string {
	pr := &printer{names: make(map[*Value]string)}
	pr.assignNames(m.op)
	pr.printModule(m.op)
	return pr.b.String()
}

type printer struct {
	b      strings.Builder
	indent int
	names  map[*Value]string
	nextID int
}

// assignNames walks the tree in document order assigning printed
// names. Entry block arguments of sugared func bodies are named %argN
// (reset per function); every other value gets a sequential global
// number. Naming is a separate pass so dominance-violating operand
// order still prints.
func (p *printer) assignNames(op *Operation) {
	for _, res := range op.results {
		p.names[res] = "%" + strconv.Itoa(p.nextID)
		p.nextID++
	}
	for ri := 0; ri < op.NumRegions(); ri++ {
		r := op.Region(ri)
		for bi := 0; bi < r.NumBlocks(); bi++ {
			b := r.Block(bi)
			funcEntry := bi == 0 && fnSugarOK(op)
			for ai := 0; ai < b.NumArgs(); ai++ {
				if funcEntry {
					p.names[b.Arg(ai)] = "%arg" + strconv.Itoa(ai)
				} else {
					p.names[b.Arg(ai)] = "%" + strconv.Itoa(p.nextID)
					p.nextID++
				}
			}
			for _, child := range b.ops {
				p.assignNames(child)
			}
		}
	}
}

// fnSugarOK reports whether op can print with the sugared func header:
// a func.func with one populated region and well-formed sym_name and
// function_type attributes.
func fnSugarOK(op *Operation) bool {
	if op.name != "func.func" || op.NumRegions() != 1 || op.Region(0).NumBlocks() == 0 {
		return false
	}
	symName, ok := op.Attr("sym_name")
	if !ok {
		return false
	}
	if _, ok := symName.StringValue(); !ok {
		return false
	}
	ftAttr, ok := op.Attr("function_type")
	if !ok {
		return false
	}
	t, ok := ftAttr.TypeValue()
	if !ok {
		return false
	}
	_, err := ParseFunctionType(string(t))
	return err == nil
}

func (p *printer) valueName(v *Value) string {
	if name, ok := p.names[v]; ok {
		return name
	}
	// Dangling reference: the producer is no longer in the tree.
	// Print a name that cannot resolve so the breakage is visible on
	// reparse instead of silently aliasing another value.
	return "%invalid"
}

func (p *printer) line(s string) {
	for i := 0; i < p.indent; i++ {
		p.b.WriteString("  ")
	}
	p.b.WriteString(s)
	p.b.WriteByte('\n')
}

func (p *printer) printModule(op *Operation) {
	header := "module"
	if len(op.attrs) > 0 {
		header += " attributes " + formatAttrDict(op.attrs)
	}
	p.line(header + " {")
	p.indent++
	body := op.Region(0).Block(0)
	for _, child := range body.ops {
		p.printOp(child)
	}
	p.indent--
	p.line("}")
}

func (p *printer) printOp(op *Operation) {
	if fnSugarOK(op) {
		p.printFunc(op)
		return
	}
	var b strings.Builder
	if len(op.results) > 0 {
		for i, res := range op.results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.valueName(res))
		}
		b.WriteString(" = ")
	}
	b.WriteString(quoteString(op.name))
	b.WriteByte('(')
	for i, operand := range op.operands {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.valueName(operand))
	}
	b.WriteByte(')')

	if len(op.regions) == 0 {
		b.WriteString(p.opSuffix(op))
		p.line(b.String())
		return
	}

	b.WriteString(" ({")
	p.line(b.String())
	for ri, r := range op.regions {
		p.indent++
		p.printRegionBlocks(r)
		p.indent--
		if ri < len(op.regions)-1 {
			p.line("}, {")
		}
	}
	p.line("})" + p.opSuffix(op))
}

// opSuffix renders the attribute dictionary and trailing functional
// signature, derived from the actual operand and result value types.
func (p *printer) opSuffix(op *Operation) string {
	var b strings.Builder
	if len(op.attrs) > 0 {
		b.WriteString(" " + formatAttrDict(op.attrs))
	}
	var ft FunctionType
	for _, operand := range op.operands {
		ft.Inputs = append(ft.Inputs, operand.typ)
	}
	for _, res := range op.results {
		ft.Results = append(ft.Results, res.typ)
	}
	b.WriteString(" : ")
	b.WriteString(ft.String())
	return b.String()
}

// printRegionBlocks emits a region's blocks at the current indent,
// without surrounding braces. The entry block is unlabeled unless it
// carries arguments.
func (p *printer) printRegionBlocks(r *Region) {
	for bi := 0; bi < r.NumBlocks(); bi++ {
		b := r.Block(bi)
		if bi > 0 || b.NumArgs() > 0 {
			p.printLabel(p.blockLabel(b, bi))
		}
		for _, child := range b.ops {
			p.printOp(child)
		}
	}
}

func (p *printer) blockLabel(b *Block, index int) string {
	var lb strings.Builder
	lb.WriteString("^bb" + strconv.Itoa(index))
	if b.NumArgs() > 0 {
		lb.WriteByte('(')
		for ai := 0; ai < b.NumArgs(); ai++ {
			if ai > 0 {
				lb.WriteString(", ")
			}
			arg := b.Arg(ai)
			lb.WriteString(p.valueName(arg) + ": " + string(arg.typ))
		}
		lb.WriteByte(')')
	}
	lb.WriteByte(':')
	return lb.String()
}

// printLabel writes a block label dedented one level, matching the
// usual IR layout where labels sit left of their operations.
func (p *printer) printLabel(s string) {
	p.indent--
	p.line(s)
	p.indent++
}

func (p *printer) printFunc(op *Operation) {
	var b strings.Builder
	symName, _ := op.Attr("sym_name")
	name, _ := symName.StringValue()
	b.WriteString("func @" + name)
	b.WriteByte('(')
	entry := op.Region(0).Block(0)
	for ai := 0; ai < entry.NumArgs(); ai++ {
		if ai > 0 {
			b.WriteString(", ")
		}
		arg := entry.Arg(ai)
		b.WriteString(p.valueName(arg) + ": " + string(arg.typ))
	}
	b.WriteByte(')')

	ftAttr, _ := op.Attr("function_type")
	t, _ := ftAttr.TypeValue()
	ft, _ := ParseFunctionType(string(t))
	if len(ft.Results) > 0 {
		b.WriteString(" -> (")
		for i, rt := range ft.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(string(rt))
		}
		b.WriteByte(')')
	}

	var extras []NamedAttr
	for _, na := range op.attrs {
		if na.Name == "sym_name" || na.Name == "function_type" {
			continue
		}
		extras = append(extras, na)
	}
	if len(extras) > 0 {
		b.WriteString(" attributes " + formatAttrDict(extras))
	}

	b.WriteString(" {")
	p.line(b.String())
	p.indent++
	r := op.Region(0)
	for bi := 0; bi < r.NumBlocks(); bi++ {
		blk := r.Block(bi)
		if bi > 0 {
			p.printLabel(p.blockLabel(blk, bi))
		}
		for _, child := range blk.ops {
			p.printOp(child)
		}
	}
	p.indent--
	p.line("}")
}

func formatAttrDict(attrs []NamedAttr) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, na := range attrs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(na.Name)
		b.WriteString(" = ")
		b.WriteString(na.Attr.Text)
	}
	b.WriteByte('}')
	return b.String()
}
