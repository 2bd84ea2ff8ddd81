package mir

import (
	"fmt"
	"strings"
)

// ParseError reports a syntax problem in IR text, with the 1-based line
// and column of the offending token.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// scanner is a byte-level cursor over IR text shared by the type,
// attribute and operation parsers.
type scanner struct {
	src string
	pos int
}

func newScanner(src string) *scanner {
	return &scanner{src: src}
}

func (s *scanner) errf(format string, args ...any) error {
	line, col := 1, 1
	for i := 0; i < s.pos && i < len(s.src); i++ {
		if s.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &ParseError{Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

// skipSpace consumes whitespace and // line comments.
func (s *scanner) skipSpace() {
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.pos++
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
			for !s.eof() && s.src[s.pos] != '\n' {
				s.pos++
			}
		default:
			return
		}
	}
}

// accept consumes lit if it is next (after space) and reports whether
// it did.
func (s *scanner) accept(lit string) bool {
	s.skipSpace()
	if strings.HasPrefix(s.src[s.pos:], lit) {
		s.pos += len(lit)
		return true
	}
	return false
}

// expect consumes lit or fails.
func (s *scanner) expect(lit string) error {
	if !s.accept(lit) {
		return s.errf("expected %q", lit)
	}
	return nil
}

func isIDStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIDByte(c byte) bool {
	return isIDStart(c) || c == '.' || c == '$' || c == '-' || (c >= '0' && c <= '9')
}

// bareID scans an identifier: letter or underscore, then letters,
// digits, '.', '$', '-'.
func (s *scanner) bareID() (string, error) {
	s.skipSpace()
	if s.eof() || !isIDStart(s.src[s.pos]) {
		return "", s.errf("expected identifier")
	}
	start := s.pos
	for !s.eof() && isIDByte(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos], nil
}

// valueID scans a value reference: '%' followed by an
// identifier-or-digits suffix.
func (s *scanner) valueID() (string, error) {
	s.skipSpace()
	if err := s.expect("%"); err != nil {
		return "", err
	}
	start := s.pos
	for !s.eof() && (isIDByte(s.src[s.pos])) {
		s.pos++
	}
	if s.pos == start {
		return "", s.errf("expected value name after '%%'")
	}
	return s.src[start:s.pos], nil
}

// stringLit scans a double-quoted string literal and returns its
// unescaped contents.
func (s *scanner) stringLit() (string, error) {
	s.skipSpace()
	if err := s.expect(`"`); err != nil {
		return "", err
	}
	var b strings.Builder
	for {
		if s.eof() {
			return "", s.errf("unterminated string literal")
		}
		c := s.src[s.pos]
		s.pos++
		switch c {
		case '"':
			return b.String(), nil
		case '\\':
			if s.eof() {
				return "", s.errf("unterminated escape in string literal")
			}
			e := s.src[s.pos]
			s.pos++
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"', '\\':
				b.WriteByte(e)
			default:
				return "", s.errf("unknown escape '\\%c'", e)
			}
		default:
			b.WriteByte(c)
		}
	}
}

// number scans an integer or float literal. isFloat reports whether a
// '.' or exponent was seen.
func (s *scanner) number() (text string, isFloat bool, err error) {
	s.skipSpace()
	start := s.pos
	if s.peek() == '-' {
		s.pos++
	}
	digits := 0
	for !s.eof() && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
		s.pos++
		digits++
	}
	if digits == 0 {
		s.pos = start
		return "", false, s.errf("expected number")
	}
	if !s.eof() && s.src[s.pos] == '.' {
		isFloat = true
		s.pos++
		for !s.eof() && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
			s.pos++
		}
	}
	if !s.eof() && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		isFloat = true
		s.pos++
		if !s.eof() && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
			s.pos++
		}
		for !s.eof() && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
			s.pos++
		}
	}
	return s.src[start:s.pos], isFloat, nil
}

// peekIS reports whether the next non-space byte equals c without
// consuming anything.
func (s *scanner) peekIs(c byte) bool {
	s.skipSpace()
	return s.peek() == c
}
