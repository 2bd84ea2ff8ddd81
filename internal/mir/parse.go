package mir

// Parse reads IR text and returns the module. The top level is either
// the sugared `module { ... }` header or a generic "builtin.module"
// operation.
//
// Forward references are allowed: an operand may name a value defined
// later in an enclosing scope. Every reference must resolve by the end
// of the outermost region, and every operand list must agree with the
// operation's trailing functional signature.
func Parse(text string) (*Module, error) {
	p := &parser{scanner: newScanner(text)}
	m, err := p.parseModule()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errf("unexpected input after module")
	}
	return m, nil
}

type parser struct {
	*scanner
	scopes []*valueScope
}

// valueScope tracks value names for one region. pending holds
// forward-referenced names not yet defined.
type valueScope struct {
	defs    map[string]*Value
	pending map[string]*Value
}

func (p *parser) pushScope() {
	p.scopes = append(p.scopes, &valueScope{
		defs:    make(map[string]*Value),
		pending: make(map[string]*Value),
	})
}

// popScope closes a region scope. Unresolved forward references are
// promoted to the enclosing scope; at the outermost scope they are
// errors.
func (p *parser) popScope() error {
	top := p.scopes[len(p.scopes)-1]
	p.scopes = p.scopes[:len(p.scopes)-1]
	if len(p.scopes) == 0 {
		for name := range top.pending {
			return p.errf("use of undefined value %%%s", name)
		}
		return nil
	}
	parent := p.scopes[len(p.scopes)-1]
	for name, v := range top.pending {
		if existing, ok := parent.defs[name]; ok {
			// The name exists upward; the inner uses should have bound
			// to it already, so this placeholder is a duplicate.
			_ = existing
			return p.errf("use of undefined value %%%s", name)
		}
		parent.defs[name] = v
		parent.pending[name] = v
	}
	return nil
}

// useValue resolves a value name at a use site, creating a placeholder
// in the innermost scope for forward references.
func (p *parser) useValue(name string) *Value {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if v, ok := p.scopes[i].defs[name]; ok {
			return v
		}
	}
	top := p.scopes[len(p.scopes)-1]
	v := &Value{}
	top.defs[name] = v
	top.pending[name] = v
	return v
}

// bindValue installs v as the definition of name in the innermost
// scope. A pending placeholder is adopted in place so earlier uses
// alias the definition.
func (p *parser) bindValue(name string, produce func(adopted *Value) *Value, t Type) (*Value, error) {
	top := p.scopes[len(p.scopes)-1]
	if v, ok := top.pending[name]; ok {
		if v.typ != "" && v.typ != t {
			return nil, p.errf("value %%%s used with type %s but defined with type %s", name, v.typ, t)
		}
		delete(top.pending, name)
		produced := produce(v)
		produced.typ = t
		return produced, nil
	}
	if _, ok := top.defs[name]; ok {
		return nil, p.errf("redefinition of value %%%s", name)
	}
	produced := produce(nil)
	produced.typ = t
	top.defs[name] = produced
	return produced, nil
}

func (p *parser) parseModule() (*Module, error) {
	p.skipSpace()
	if p.peek() == '"' {
		return p.parseGenericModule()
	}
	kw, err := p.bareID()
	if err != nil || kw != "module" {
		return nil, p.errf("expected 'module' or a generic operation")
	}
	m := NewModule()
	if p.peekIs('a') {
		attrKw, err := p.bareID()
		if err != nil || attrKw != "attributes" {
			return nil, p.errf("expected 'attributes' or '{' after 'module'")
		}
		attrs, err := p.parseAttrDict()
		if err != nil {
			return nil, err
		}
		m.op.attrs = attrs
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	p.pushScope()
	for !p.accept("}") {
		if p.eof() {
			return nil, p.errf("unterminated module body")
		}
		if err := p.parseOp(m.Body()); err != nil {
			return nil, err
		}
	}
	if err := p.popScope(); err != nil {
		return nil, err
	}
	return m, nil
}

// parseGenericModule handles a top-level generic-form builtin.module.
func (p *parser) parseGenericModule() (*Module, error) {
	holder := &Block{}
	p.pushScope()
	if err := p.parseGenericOp(holder, nil); err != nil {
		return nil, err
	}
	if err := p.popScope(); err != nil {
		return nil, err
	}
	op := holder.ops[0]
	op.block = nil
	if op.name != "builtin.module" {
		return nil, p.errf("top-level operation must be builtin.module, got %q", op.name)
	}
	if op.NumRegions() != 1 || op.Region(0).NumBlocks() != 1 {
		return nil, p.errf("builtin.module requires exactly one region with one block")
	}
	if op.NumOperands() != 0 || op.NumResults() != 0 {
		return nil, p.errf("builtin.module takes no operands and produces no results")
	}
	return &Module{op: op}, nil
}

// parseOp dispatches on the next token: '%' or '"' start a generic
// operation, the `func` keyword starts the sugared func header.
func (p *parser) parseOp(b *Block) error {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '%':
		names, err := p.parseResultNames()
		if err != nil {
			return err
		}
		return p.parseGenericOp(b, names)
	case c == '"':
		return p.parseGenericOp(b, nil)
	default:
		kw, err := p.bareID()
		if err != nil {
			return p.errf("expected operation")
		}
		if kw != "func" {
			return p.errf("unknown keyword %q: expected 'func' or a generic operation", kw)
		}
		return p.parseFunc(b)
	}
}

func (p *parser) parseResultNames() ([]string, error) {
	var names []string
	for {
		name, err := p.valueID()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.accept(",") {
			continue
		}
		break
	}
	if err := p.expect("="); err != nil {
		return nil, err
	}
	return names, nil
}

// parseGenericOp parses `"name"(uses) regions? attrs? : fn-type` and
// appends the operation to b, binding result names when given.
func (p *parser) parseGenericOp(b *Block, resultNames []string) error {
	name, err := p.stringLit()
	if err != nil {
		return err
	}
	if name == "" {
		return p.errf("empty operation name")
	}
	if err := p.expect("("); err != nil {
		return err
	}
	var operandNames []string
	if !p.accept(")") {
		for {
			use, err := p.valueID()
			if err != nil {
				return err
			}
			operandNames = append(operandNames, use)
			if p.accept(",") {
				continue
			}
			if err := p.expect(")"); err != nil {
				return err
			}
			break
		}
	}

	op := &Operation{name: name}

	// Region list: parenthesized group of braced regions.
	if p.peekIs('(') {
		p.accept("(")
		for {
			r := &Region{owner: op}
			op.regions = append(op.regions, r)
			if err := p.parseRegion(r, nil); err != nil {
				return err
			}
			if p.accept(",") {
				continue
			}
			if err := p.expect(")"); err != nil {
				return err
			}
			break
		}
	}

	if p.peekIs('{') {
		attrs, err := p.parseAttrDict()
		if err != nil {
			return err
		}
		op.attrs = attrs
	}

	if err := p.expect(":"); err != nil {
		return err
	}
	ft, err := p.scanFunctionType()
	if err != nil {
		return err
	}

	if len(operandNames) != len(ft.Inputs) {
		return p.errf("operation %q has %d operands but signature lists %d input types",
			name, len(operandNames), len(ft.Inputs))
	}
	if len(resultNames) != len(ft.Results) {
		return p.errf("operation %q binds %d results but signature lists %d result types",
			name, len(resultNames), len(ft.Results))
	}

	for i, use := range operandNames {
		v := p.useValue(use)
		want := ft.Inputs[i]
		if v.typ == "" {
			v.typ = want
		} else if v.typ != want {
			return p.errf("operand %%%s has type %s but signature expects %s", use, v.typ, want)
		}
		op.operands = append(op.operands, v)
	}

	if err := b.insert(op, nil); err != nil {
		return err
	}

	for i, resName := range resultNames {
		idx := i
		v, err := p.bindValue(resName, func(adopted *Value) *Value {
			if adopted == nil {
				adopted = &Value{}
			}
			adopted.op = op
			adopted.resultIndex = idx
			return adopted
		}, ft.Results[i])
		if err != nil {
			return err
		}
		op.results = append(op.results, v)
	}
	return nil
}

// parseRegion parses `{ ... }`: either an implicit entry block holding
// bare operations, labeled blocks, or both (entry operations followed
// by labeled blocks). entryArgs, when non-nil, pre-populates the entry
// block's arguments (used by the func header).
func (p *parser) parseRegion(r *Region, entryArgs func(entry *Block) error) error {
	if err := p.expect("{"); err != nil {
		return err
	}
	p.pushScope()
	var entry *Block
	ensureEntry := func() *Block {
		if entry == nil {
			entry = r.AddBlock()
		}
		return entry
	}
	if entryArgs != nil {
		if err := entryArgs(ensureEntry()); err != nil {
			return err
		}
	}
	for {
		p.skipSpace()
		if p.accept("}") {
			break
		}
		if p.eof() {
			return p.errf("unterminated region")
		}
		if p.peek() == '^' {
			if err := p.parseLabeledBlock(r); err != nil {
				return err
			}
			continue
		}
		if err := p.parseOp(ensureEntry()); err != nil {
			return err
		}
	}
	return p.popScope()
}

// parseLabeledBlock parses `^name(%a: T, ...): op*` up to the next
// label or the region's closing brace.
func (p *parser) parseLabeledBlock(r *Region) error {
	if err := p.expect("^"); err != nil {
		return err
	}
	if _, err := p.bareID(); err != nil {
		return p.errf("expected block label name after '^'")
	}
	b := r.AddBlock()
	if p.accept("(") {
		for {
			argName, err := p.valueID()
			if err != nil {
				return err
			}
			if err := p.expect(":"); err != nil {
				return err
			}
			t, err := p.scanType()
			if err != nil {
				return err
			}
			idx := b.NumArgs()
			if _, err := p.bindValue(argName, func(adopted *Value) *Value {
				if adopted == nil {
					adopted = &Value{}
				}
				adopted.block = b
				adopted.argIndex = idx
				b.args = append(b.args, adopted)
				return adopted
			}, t); err != nil {
				return err
			}
			if p.accept(",") {
				continue
			}
			if err := p.expect(")"); err != nil {
				return err
			}
			break
		}
	}
	if err := p.expect(":"); err != nil {
		return err
	}
	for {
		p.skipSpace()
		if p.eof() {
			return p.errf("unterminated block")
		}
		if p.peek() == '^' || p.peek() == '}' {
			return nil
		}
		if err := p.parseOp(b); err != nil {
			return err
		}
	}
}

// parseFunc parses the sugared func header after the `func` keyword:
//
//	func @name(%arg0: T, ...) -> (R, ...) attributes {k = v} { body }
//
// sym_name and function_type surface as ordinary attributes on the
// resulting func.func operation.
func (p *parser) parseFunc(b *Block) error {
	if err := p.expect("@"); err != nil {
		return err
	}
	symName, err := p.bareID()
	if err != nil {
		return err
	}

	type param struct {
		name string
		typ  Type
	}
	var params []param
	if err := p.expect("("); err != nil {
		return err
	}
	if !p.accept(")") {
		for {
			argName, err := p.valueID()
			if err != nil {
				return err
			}
			if err := p.expect(":"); err != nil {
				return err
			}
			t, err := p.scanType()
			if err != nil {
				return err
			}
			params = append(params, param{name: argName, typ: t})
			if p.accept(",") {
				continue
			}
			if err := p.expect(")"); err != nil {
				return err
			}
			break
		}
	}

	var ft FunctionType
	for _, prm := range params {
		ft.Inputs = append(ft.Inputs, prm.typ)
	}
	if p.accept("->") {
		if p.accept("(") {
			if !p.accept(")") {
				for {
					t, err := p.scanType()
					if err != nil {
						return err
					}
					ft.Results = append(ft.Results, t)
					if p.accept(",") {
						continue
					}
					if err := p.expect(")"); err != nil {
						return err
					}
					break
				}
			}
		} else {
			t, err := p.scanType()
			if err != nil {
				return err
			}
			ft.Results = []Type{t}
		}
	}

	var extraAttrs []NamedAttr
	if p.peekIs('a') {
		kw, err := p.bareID()
		if err != nil || kw != "attributes" {
			return p.errf("expected 'attributes' or '{' in func header")
		}
		extraAttrs, err = p.parseAttrDict()
		if err != nil {
			return err
		}
	}

	op := &Operation{name: "func.func"}
	op.attrs = []NamedAttr{
		{Name: "sym_name", Attr: StringAttr(symName)},
		{Name: "function_type", Attr: TypeAttr(ft.Type())},
	}
	for _, na := range extraAttrs {
		if na.Name == "sym_name" || na.Name == "function_type" {
			continue
		}
		op.attrs = append(op.attrs, na)
	}
	r := &Region{owner: op}
	op.regions = []*Region{r}

	if err := p.parseRegion(r, func(entry *Block) error {
		for _, prm := range params {
			idx := entry.NumArgs()
			blk := entry
			if _, err := p.bindValue(prm.name, func(adopted *Value) *Value {
				if adopted == nil {
					adopted = &Value{}
				}
				adopted.block = blk
				adopted.argIndex = idx
				blk.args = append(blk.args, adopted)
				return adopted
			}, prm.typ); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	return b.insert(op, nil)
}

func (p *parser) parseAttrDict() ([]NamedAttr, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	var attrs []NamedAttr
	if p.accept("}") {
		return attrs, nil
	}
	for {
		name, err := p.bareID()
		if err != nil {
			return nil, err
		}
		for _, existing := range attrs {
			if existing.Name == name {
				return nil, p.errf("duplicate attribute %q", name)
			}
		}
		if err := p.expect("="); err != nil {
			return nil, err
		}
		a, err := p.scanAttr()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, NamedAttr{Name: name, Attr: a})
		if p.accept(",") {
			continue
		}
		if err := p.expect("}"); err != nil {
			return nil, err
		}
		return attrs, nil
	}
}
