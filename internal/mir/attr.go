package mir

import "strings"

// AttrKind classifies an attribute value.
type AttrKind string

const (
	AttrString  AttrKind = "string"
	AttrInteger AttrKind = "integer"
	AttrFloat   AttrKind = "float"
	AttrBool    AttrKind = "bool"
	AttrUnit    AttrKind = "unit"
	AttrType    AttrKind = "type"
	AttrArray   AttrKind = "array"
	AttrSymbol  AttrKind = "symbol"
)

// Attr is an attribute value: a kind tag plus the normalized textual
// form. The text is what the printer emits verbatim.
type Attr struct {
	Kind AttrKind
	Text string
}

// StringAttr builds a string attribute from raw (unquoted) contents.
func StringAttr(s string) Attr {
	return Attr{Kind: AttrString, Text: quoteString(s)}
}

// TypeAttr builds a type attribute.
func TypeAttr(t Type) Attr {
	return Attr{Kind: AttrType, Text: string(t)}
}

// StringValue returns the unquoted contents of a string attribute.
func (a Attr) StringValue() (string, bool) {
	if a.Kind != AttrString {
		return "", false
	}
	s := newScanner(a.Text)
	v, err := s.stringLit()
	if err != nil {
		return "", false
	}
	return v, true
}

// TypeValue returns the type of a type attribute.
func (a Attr) TypeValue() (Type, bool) {
	if a.Kind != AttrType {
		return "", false
	}
	return Type(a.Text), true
}

// ParseAttr parses and normalizes one attribute value. Accepted forms:
//
//	"text"           string
//	42 : i32         integer (type suffix optional)
//	1.5 : f32        float (type suffix optional)
//	true / false     bool
//	unit             unit
//	@name            symbol reference
//	[v, v, ...]      array of attribute values
//	f32              type attribute (any type token)
func ParseAttr(text string) (Attr, error) {
	s := newScanner(text)
	a, err := s.scanAttr()
	if err != nil {
		return Attr{}, err
	}
	s.skipSpace()
	if !s.eof() {
		return Attr{}, s.errf("unexpected trailing input after attribute value")
	}
	return a, nil
}

func (s *scanner) scanAttr() (Attr, error) {
	s.skipSpace()
	switch c := s.peek(); {
	case c == '"':
		v, err := s.stringLit()
		if err != nil {
			return Attr{}, err
		}
		return Attr{Kind: AttrString, Text: quoteString(v)}, nil
	case c == '@':
		s.pos++
		id, err := s.bareID()
		if err != nil {
			return Attr{}, err
		}
		return Attr{Kind: AttrSymbol, Text: "@" + id}, nil
	case c == '[':
		return s.scanArrayAttr()
	case c == '-' || (c >= '0' && c <= '9'):
		return s.scanNumberAttr()
	case c == '(':
		t, err := s.scanType()
		if err != nil {
			return Attr{}, err
		}
		return Attr{Kind: AttrType, Text: string(t)}, nil
	default:
		id, err := s.bareID()
		if err != nil {
			return Attr{}, s.errf("expected attribute value")
		}
		switch id {
		case "true", "false":
			return Attr{Kind: AttrBool, Text: id}, nil
		case "unit":
			return Attr{Kind: AttrUnit, Text: "unit"}, nil
		}
		// Any other identifier is a type attribute, with an optional
		// parameter list.
		if !s.eof() && s.peek() == '<' {
			params, err := s.scanBalancedAngle()
			if err != nil {
				return Attr{}, err
			}
			return Attr{Kind: AttrType, Text: id + params}, nil
		}
		return Attr{Kind: AttrType, Text: id}, nil
	}
}

func (s *scanner) scanNumberAttr() (Attr, error) {
	text, isFloat, err := s.number()
	if err != nil {
		return Attr{}, err
	}
	kind := AttrInteger
	if isFloat {
		kind = AttrFloat
	}
	if s.accept(":") {
		t, err := s.scanType()
		if err != nil {
			return Attr{}, err
		}
		return Attr{Kind: kind, Text: text + " : " + string(t)}, nil
	}
	return Attr{Kind: kind, Text: text}, nil
}

func (s *scanner) scanArrayAttr() (Attr, error) {
	if err := s.expect("["); err != nil {
		return Attr{}, err
	}
	var parts []string
	if !s.accept("]") {
		for {
			elem, err := s.scanAttr()
			if err != nil {
				return Attr{}, err
			}
			parts = append(parts, elem.Text)
			if s.accept(",") {
				continue
			}
			if err := s.expect("]"); err != nil {
				return Attr{}, err
			}
			break
		}
	}
	return Attr{Kind: AttrArray, Text: "[" + strings.Join(parts, ", ") + "]"}, nil
}

// quoteString renders s as a double-quoted literal with the escapes
// the scanner understands.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
