package mir

import "strings"

// Type is a textual type descriptor such as "f32", "index" or
// "tensor<4xf32>". Types are compared as normalized strings; the
// backend attaches no further structure to them.
type Type string

// ParseType validates and normalizes a type string. Accepted shapes
// are an identifier with an optional balanced <...> suffix, and
// function types "(T, ...) -> R" / "(T, ...) -> (R, ...)".
func ParseType(text string) (Type, error) {
	s := newScanner(text)
	t, err := s.scanType()
	if err != nil {
		return "", err
	}
	s.skipSpace()
	if !s.eof() {
		return "", s.errf("unexpected trailing input after type")
	}
	return t, nil
}

// FunctionType is the parsed form of a function type descriptor.
type FunctionType struct {
	Inputs  []Type
	Results []Type
}

// ParseFunctionType parses "(inputs) -> results" text, as stored in a
// func.func operation's function_type attribute.
func ParseFunctionType(text string) (FunctionType, error) {
	s := newScanner(text)
	ft, err := s.scanFunctionType()
	if err != nil {
		return FunctionType{}, err
	}
	s.skipSpace()
	if !s.eof() {
		return FunctionType{}, s.errf("unexpected trailing input after function type")
	}
	return ft, nil
}

// String formats the function type in normalized form: a single
// simple result prints bare, anything else parenthesized.
func (ft FunctionType) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, t := range ft.Inputs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(t))
	}
	b.WriteString(") -> ")
	if len(ft.Results) == 1 && !strings.HasPrefix(string(ft.Results[0]), "(") {
		b.WriteString(string(ft.Results[0]))
		return b.String()
	}
	b.WriteByte('(')
	for i, t := range ft.Results {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(t))
	}
	b.WriteByte(')')
	return b.String()
}

// Type returns the function type as a textual type descriptor.
func (ft FunctionType) Type() Type { return Type(ft.String()) }

// scanType scans one type token: a function type when '(' is next,
// otherwise an identifier with an optional balanced <...> suffix.
// The returned text is normalized (no interior whitespace except the
// function-type arrow).
func (s *scanner) scanType() (Type, error) {
	if s.peekIs('(') {
		ft, err := s.scanFunctionType()
		if err != nil {
			return "", err
		}
		return ft.Type(), nil
	}
	id, err := s.bareID()
	if err != nil {
		return "", s.errf("expected type")
	}
	if !s.eof() && s.peek() == '<' {
		params, err := s.scanBalancedAngle()
		if err != nil {
			return "", err
		}
		return Type(id + params), nil
	}
	return Type(id), nil
}

// scanBalancedAngle consumes a balanced <...> group, stripping
// whitespace, starting at '<'.
func (s *scanner) scanBalancedAngle() (string, error) {
	if s.peek() != '<' {
		return "", s.errf("expected '<'")
	}
	var b strings.Builder
	depth := 0
	for {
		if s.eof() {
			return "", s.errf("unbalanced '<' in type")
		}
		c := s.src[s.pos]
		s.pos++
		switch c {
		case '<':
			depth++
			b.WriteByte(c)
		case '>':
			depth--
			b.WriteByte(c)
			if depth == 0 {
				return b.String(), nil
			}
		case ' ', '\t', '\n', '\r':
			// normalized away
		default:
			b.WriteByte(c)
		}
	}
}

// scanFunctionType scans "(types) -> type-or-(types)".
func (s *scanner) scanFunctionType() (FunctionType, error) {
	var ft FunctionType
	if err := s.expect("("); err != nil {
		return ft, err
	}
	if !s.accept(")") {
		for {
			t, err := s.scanType()
			if err != nil {
				return ft, err
			}
			ft.Inputs = append(ft.Inputs, t)
			if s.accept(",") {
				continue
			}
			if err := s.expect(")"); err != nil {
				return ft, err
			}
			break
		}
	}
	if err := s.expect("->"); err != nil {
		return ft, err
	}
	if s.accept("(") {
		if s.accept(")") {
			return ft, nil
		}
		for {
			t, err := s.scanType()
			if err != nil {
				return ft, err
			}
			ft.Results = append(ft.Results, t)
			if s.accept(",") {
				continue
			}
			if err := s.expect(")"); err != nil {
				return ft, err
			}
			break
		}
		return ft, nil
	}
	t, err := s.scanType()
	if err != nil {
		return ft, err
	}
	ft.Results = []Type{t}
	return ft, nil
}
