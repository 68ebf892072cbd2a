/*
Copyright © 2022 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify it
under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful, but
WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public
License along with this program. If not, see
<http://www.gnu.org/licenses/>.
*/

// Package parse is the optional lexer/parser front end that turns
// source text into the tree pkg/ast defines. The core pipeline takes
// a Loader callback and never parses anything itself; this package
// exists so the CLI has something to drive pkg/asmpipe with.
package parse

import (
	"fmt"

	"github.com/ablomm/cpuasm/pkg/span"
)

// tokenKind is a small wrapped-int type, the same trick pkg/ast's
// Mnemonic and pkg/value's Register use, so a token kind can't be
// silently confused with an arbitrary int.
type tokenKind struct{ k int }

var (
	tkError  = tokenKind{0}
	tkEOF    = tokenKind{1}
	tkIdent  = tokenKind{2}
	tkNumber = tokenKind{3}
	tkString = tokenKind{4}
	tkOp     = tokenKind{5} // text is the operator's own spelling
)

// token is one lexed unit: its kind, its text (an operator's own
// spelling, an identifier's name, a number's source spelling with its
// parsed value in num, a string's unescaped contents, or an error
// token's message), and its span.
type token struct {
	kind tokenKind
	text string
	num  uint32
	span span.Span
}

func (t token) String() string {
	switch t.kind {
	case tkEOF:
		return "end of file"
	case tkNumber:
		return fmt.Sprintf("number %s", t.text)
	case tkString:
		return fmt.Sprintf("string %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

// operators recognized at the start of a token, longest spelling
// first so the scanner never commits to a short match that a longer
// one would have shadowed (">>>" before ">>", etc).
var operators = []string{
	">>>", "<<", ">>",
	";", ",", ":", "{", "}", "(", ")", "[", "]", "#",
	"*", "/", "%", "+", "-", "&", "|", "^", "~", ".", "=",
}

// lexer scans one source file's bytes into tokens, the same
// byte-at-a-time state-machine style as the hand-written lexer this
// package is adapted from, generalized for a richer operator and
// literal set (braces, semicolons, the bitwise/shift operators, and
// 0b/0o/0x/decimal/char-literal numbers instead of a single radix).
type lexer struct {
	sourceID string
	src      []byte
	pos      int
}

func newLexer(sourceID string, src []byte) *lexer {
	return &lexer{sourceID: sourceID, src: src}
}

func (lx *lexer) spanFrom(start int) span.Span {
	return span.Span{SourceID: lx.sourceID, Start: start, End: lx.pos}
}

func (lx *lexer) errTok(start int, format string, args ...any) token {
	return token{kind: tkError, text: fmt.Sprintf(format, args...), span: lx.spanFrom(start)}
}

func (lx *lexer) peek() (byte, bool) {
	if lx.pos >= len(lx.src) {
		return 0, false
	}
	return lx.src[lx.pos], true
}

func (lx *lexer) peekAt(off int) (byte, bool) {
	i := lx.pos + off
	if i >= len(lx.src) {
		return 0, false
	}
	return lx.src[i], true
}

// skipTrivia discards whitespace and line (`#` is an operator, so
// comments use `//` and `/* */`, the way source carrying a C-like
// expression grammar usually does) and block comments.
func (lx *lexer) skipTrivia() {
	for {
		b, ok := lx.peek()
		if !ok {
			return
		}
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			lx.pos++
		case b == '/' && peekIs(lx, 1, '/'):
			for {
				b, ok := lx.peek()
				if !ok || b == '\n' {
					break
				}
				lx.pos++
			}
		case b == '/' && peekIs(lx, 1, '*'):
			lx.pos += 2
			for {
				b, ok := lx.peek()
				if !ok {
					return
				}
				if b == '*' && peekIs(lx, 1, '/') {
					lx.pos += 2
					break
				}
				lx.pos++
			}
		default:
			return
		}
	}
}

func peekIs(lx *lexer, off int, want byte) bool {
	b, ok := lx.peekAt(off)
	return ok && b == want
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
func isIdentChar(b byte) bool { return isIdentStart(b) || isDigit(b) }

// next returns the next token, or tkEOF at end of input.
func (lx *lexer) next() token {
	lx.skipTrivia()
	start := lx.pos
	b, ok := lx.peek()
	if !ok {
		return token{kind: tkEOF, span: lx.spanFrom(start)}
	}

	switch {
	case b >= 0x80:
		lx.pos++
		return lx.errTok(start, "non-ASCII character 0x%02x", b)
	case isIdentStart(b):
		return lx.lexIdent(start)
	case isDigit(b):
		return lx.lexNumber(start)
	case b == '\'':
		return lx.lexChar(start)
	case b == '"':
		return lx.lexString(start)
	}

	for _, op := range operators {
		if lx.match(op) {
			return token{kind: tkOp, text: op, span: lx.spanFrom(start)}
		}
	}
	lx.pos++
	return lx.errTok(start, "unexpected character %q", b)
}

func (lx *lexer) match(s string) bool {
	if lx.pos+len(s) > len(lx.src) {
		return false
	}
	if string(lx.src[lx.pos:lx.pos+len(s)]) != s {
		return false
	}
	lx.pos += len(s)
	return true
}

func (lx *lexer) lexIdent(start int) token {
	for {
		b, ok := lx.peek()
		if !ok || !isIdentChar(b) {
			break
		}
		lx.pos++
	}
	return token{kind: tkIdent, text: string(lx.src[start:lx.pos]), span: lx.spanFrom(start)}
}

// lexNumber recognizes 0b/0o/0x-prefixed radixes or a plain decimal
// run. Char literals are handled separately by lexChar.
func (lx *lexer) lexNumber(start int) token {
	base := 10
	digitsStart := start
	if peekIs(lx, 0, '0') {
		if b, ok := lx.peekAt(1); ok {
			switch b {
			case 'b', 'B':
				base, lx.pos = 2, lx.pos+2
				digitsStart = lx.pos
			case 'o', 'O':
				base, lx.pos = 8, lx.pos+2
				digitsStart = lx.pos
			case 'x', 'X':
				base, lx.pos = 16, lx.pos+2
				digitsStart = lx.pos
			}
		}
	}
	for {
		b, ok := lx.peek()
		if !ok || !isRadixDigit(b, base) {
			break
		}
		lx.pos++
	}
	digits := string(lx.src[digitsStart:lx.pos])
	if digits == "" {
		return lx.errTok(start, "empty numeric literal")
	}
	n, err := parseUint(digits, base)
	if err != nil {
		return lx.errTok(start, "invalid number %q: %s", string(lx.src[start:lx.pos]), err)
	}
	return token{kind: tkNumber, num: n, text: string(lx.src[start:lx.pos]), span: lx.spanFrom(start)}
}

func isRadixDigit(b byte, base int) bool {
	switch base {
	case 2:
		return b == '0' || b == '1'
	case 8:
		return b >= '0' && b <= '7'
	case 16:
		return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
	default:
		return isDigit(b)
	}
}

func parseUint(digits string, base int) (uint32, error) {
	var n uint64
	for i := 0; i < len(digits); i++ {
		d, err := digitValue(digits[i], base)
		if err != nil {
			return 0, err
		}
		n = n*uint64(base) + uint64(d)
		if n > 0xFFFFFFFF {
			return 0, fmt.Errorf("overflows 32 bits")
		}
	}
	return uint32(n), nil
}

func digitValue(b byte, base int) (int, error) {
	var v int
	switch {
	case isDigit(b):
		v = int(b - '0')
	case b >= 'a' && b <= 'f':
		v = int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		v = int(b-'A') + 10
	default:
		return 0, fmt.Errorf("invalid digit %q", b)
	}
	if v >= base {
		return 0, fmt.Errorf("digit %q invalid in base %d", b, base)
	}
	return v, nil
}

// lexChar reads a single-quoted char literal with the escapes
// \0 \t \n \r; the result is a tkNumber token, the same as any other
// number atom, since the value domain has no separate char type.
func (lx *lexer) lexChar(start int) token {
	lx.pos++ // opening quote
	b, ok := lx.peek()
	if !ok {
		return lx.errTok(start, "unterminated char literal")
	}
	var value byte
	if b == '\\' {
		lx.pos++
		e, ok := lx.peek()
		if !ok {
			return lx.errTok(start, "unterminated char literal")
		}
		switch e {
		case '0':
			value = 0
		case 't':
			value = '\t'
		case 'n':
			value = '\n'
		case 'r':
			value = '\r'
		default:
			return lx.errTok(start, "unknown char escape \\%c", e)
		}
		lx.pos++
	} else {
		value = b
		lx.pos++
	}
	if !peekIs(lx, 0, '\'') {
		return lx.errTok(start, "char literal must be exactly one character")
	}
	lx.pos++
	return token{kind: tkNumber, num: uint32(value), text: string(lx.src[start:lx.pos]), span: lx.spanFrom(start)}
}

// lexString reads a double-quoted string, honouring the same escapes
// as char literals plus \" and \\.
func (lx *lexer) lexString(start int) token {
	lx.pos++ // opening quote
	var text []byte
	for {
		b, ok := lx.peek()
		if !ok {
			return lx.errTok(start, "unterminated string")
		}
		if b == '"' {
			lx.pos++
			break
		}
		if b == '\n' {
			return lx.errTok(start, "newline in string")
		}
		if b == '\\' {
			lx.pos++
			e, ok := lx.peek()
			if !ok {
				return lx.errTok(start, "unterminated string")
			}
			switch e {
			case '0':
				text = append(text, 0)
			case 't':
				text = append(text, '\t')
			case 'n':
				text = append(text, '\n')
			case 'r':
				text = append(text, '\r')
			case '"', '\\':
				text = append(text, e)
			default:
				return lx.errTok(start, "unknown string escape \\%c", e)
			}
			lx.pos++
			continue
		}
		text = append(text, b)
		lx.pos++
	}
	return token{kind: tkString, text: string(text), span: lx.spanFrom(start)}
}
