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

package parse

import (
	"fmt"

	"github.com/ablomm/cpuasm/pkg/ast"
	"github.com/ablomm/cpuasm/pkg/span"
	"github.com/ablomm/cpuasm/pkg/value"
)

// parser is a straightforward recursive-descent parser driven by a
// pre-scanned token slice. The language has no context-sensitive
// lexing, so there is no benefit to streaming tokens the way the
// lexer streams bytes.
type parser struct {
	sourceID string
	tokens   []token
	pos      int
	diags    []span.Diag
	interner *span.Interner
}

// ParseFile lexes and parses one source file's text into the tree
// pkg/ast's core consumes. It is meant to sit behind an
// imports.Loader: diagnostics accumulate rather than abort, mirroring
// every other pass's partial-failure contract.
func ParseFile(sourceID string, src []byte) (*ast.File, []span.Diag) {
	p := &parser{sourceID: sourceID, interner: span.NewInterner()}
	lx := newLexer(sourceID, src)
	for {
		t := lx.next()
		p.tokens = append(p.tokens, t)
		if t.kind == tkEOF {
			break
		}
	}
	block := p.parseBlockBody(false)
	return &ast.File{SourceID: sourceID, Block: block}, p.diags
}

func (p *parser) cur() token { return p.tokens[p.pos] }

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) isOp(s string) bool {
	t := p.cur()
	return t.kind == tkOp && t.text == s
}

func (p *parser) isIdent(s string) bool {
	t := p.cur()
	return t.kind == tkIdent && t.text == s
}

func (p *parser) errorf(at span.Span, format string, args ...any) {
	p.diags = append(p.diags, span.New(span.Error, at, fmt.Sprintf(format, args...)))
}

// intern funnels every identifier's text through one interner so
// repeated names share a backing string for the life of the tree.
func (p *parser) intern(s string) string {
	return *p.interner.Intern(s)
}

// expectOp consumes an operator token if present, else records a
// diagnostic and leaves the cursor in place so the caller's recovery
// can decide what to do next.
func (p *parser) expectOp(s string) bool {
	if p.isOp(s) {
		p.advance()
		return true
	}
	p.errorf(p.cur().span, "expected %q, found %s", s, p.cur())
	return false
}

// recover skips tokens until the statement-terminating ';', a block
// delimiter, or EOF, so one bad statement doesn't cascade into
// spurious errors for every statement after it.
func (p *parser) recover() {
	for {
		t := p.cur()
		if t.kind == tkEOF {
			return
		}
		if t.kind == tkOp && (t.text == ";" || t.text == "}") {
			if t.text == ";" {
				p.advance()
			}
			return
		}
		p.advance()
	}
}

// parseBlockBody parses statements until a closing '}' (nested, the
// caller already consumed the opening brace) or EOF (top level).
func (p *parser) parseBlockBody(nested bool) *ast.Block {
	start := p.cur().span
	block := &ast.Block{}
	for {
		if p.cur().kind == tkEOF {
			break
		}
		if nested && p.isOp("}") {
			break
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	end := p.cur().span
	block.SpanV = span.Join(start, end)
	return block
}

func (p *parser) parseStatement() ast.Statement {
	t := p.cur()
	switch {
	case t.kind == tkError:
		p.errorf(t.span, "%s", t.text)
		p.advance()
		p.recover()
		return nil
	case t.kind == tkOp && t.text == "{":
		return p.parseNestedBlock()
	case t.kind == tkOp && t.text == ".":
		return p.parseLiteral()
	case t.kind == tkIdent && t.text == "import":
		return p.parseImport()
	case t.kind == tkIdent && t.text == "export":
		return p.parseExportOrExportedDecl()
	case t.kind == tkIdent:
		return p.parseLabelOrAssignmentOrOperation()
	default:
		p.errorf(t.span, "unexpected token %s", t)
		p.recover()
		return nil
	}
}

func (p *parser) parseNestedBlock() ast.Statement {
	start := p.advance().span // '{'
	inner := p.parseBlockBody(true)
	end := p.cur().span
	if !p.expectOp("}") {
		p.recover()
	}
	inner.SpanV = span.Join(start, end)
	return inner
}

// parseLiteral handles a `.name expr;` directive: the directive name
// itself (`.fill`, `.string`, ...) carries no semantics beyond
// documentation; what matters is whether Expr evaluates to a Number
// or a String.
func (p *parser) parseLiteral() ast.Statement {
	start := p.advance().span // '.'
	if p.cur().kind != tkIdent {
		p.errorf(p.cur().span, "expected directive name after '.', found %s", p.cur())
		p.recover()
		return nil
	}
	p.advance() // directive name, not otherwise inspected
	expr := p.parseExpression()
	end := p.cur().span
	if !p.expectOp(";") {
		p.recover()
	}
	return &ast.Literal{SpanV: span.Join(start, end), Expr: expr}
}

func (p *parser) parseImport() ast.Statement {
	start := p.advance().span // 'import'
	var specifier ast.ImportSpecifier
	if p.isOp("*") {
		p.advance()
		specifier = ast.BlobImport{}
	} else {
		var names []ast.ImportName
		for {
			if p.cur().kind != tkIdent {
				p.errorf(p.cur().span, "expected imported name, found %s", p.cur())
				break
			}
			nameTok := p.advance()
			n := ast.ImportName{Name: p.intern(nameTok.text), Span: nameTok.span}
			if p.isIdent("as") {
				p.advance()
				if p.cur().kind != tkIdent {
					p.errorf(p.cur().span, "expected alias after 'as', found %s", p.cur())
				} else {
					n.Alias = p.intern(p.advance().text)
				}
			}
			names = append(names, n)
			if !p.isOp(",") {
				break
			}
			p.advance()
		}
		specifier = ast.NamedImport{Names: names}
	}
	if !p.isIdent("from") {
		p.errorf(p.cur().span, "expected 'from', found %s", p.cur())
	} else {
		p.advance()
	}
	fileSpan := p.cur().span
	file := ""
	if p.cur().kind == tkString {
		file = p.advance().text
	} else {
		p.errorf(p.cur().span, "expected import path string, found %s", p.cur())
	}
	end := p.cur().span
	if !p.expectOp(";") {
		p.recover()
	}
	return &ast.Import{SpanV: span.Join(start, end), File: file, FileSpan: fileSpan, Specifier: specifier}
}

// parseExportOrExportedDecl disambiguates the three uses of `export`:
// a standalone `export a, b;` list, or a prefix on a label or
// assignment declaration.
func (p *parser) parseExportOrExportedDecl() ast.Statement {
	start := p.advance().span // 'export'
	if p.cur().kind != tkIdent {
		p.errorf(p.cur().span, "expected identifier after 'export', found %s", p.cur())
		p.recover()
		return nil
	}
	// Look ahead past the identifier to decide which of the three forms this is.
	nameTok := p.cur()
	switch {
	case p.peekOpAt(1, ":"):
		p.advance() // identifier
		p.advance() // ':'
		return &ast.Label{SpanV: span.Join(start, nameTok.span), Name: p.intern(nameTok.text), Exported: true}
	case p.peekOpAt(1, "="):
		p.advance() // identifier
		p.advance() // '='
		expr := p.parseExpression()
		end := p.cur().span
		if !p.expectOp(";") {
			p.recover()
		}
		return &ast.Assignment{SpanV: span.Join(start, end), Name: p.intern(nameTok.text), Expr: expr, Exported: true}
	default:
		var names []string
		for {
			if p.cur().kind != tkIdent {
				p.errorf(p.cur().span, "expected identifier, found %s", p.cur())
				break
			}
			names = append(names, p.intern(p.advance().text))
			if !p.isOp(",") {
				break
			}
			p.advance()
		}
		end := p.cur().span
		if !p.expectOp(";") {
			p.recover()
		}
		return &ast.Export{SpanV: span.Join(start, end), Names: names}
	}
}

func (p *parser) peekOpAt(offset int, s string) bool {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return false
	}
	t := p.tokens[i]
	return t.kind == tkOp && t.text == s
}

// parseLabelOrAssignmentOrOperation handles the three statement forms
// that start with a bare identifier: `name:` (label), `name = expr;`
// (assignment), or a mnemonic operation. The export-prefixed variants
// of the first two are built directly by parseExportOrExportedDecl.
func (p *parser) parseLabelOrAssignmentOrOperation() ast.Statement {
	nameTok := p.cur()
	if p.peekOpAt(1, ":") {
		p.advance()
		end := p.advance().span // ':'
		return &ast.Label{SpanV: span.Join(nameTok.span, end), Name: p.intern(nameTok.text)}
	}
	if p.peekOpAt(1, "=") {
		p.advance()
		p.advance() // '='
		expr := p.parseExpression()
		end := p.cur().span
		if !p.expectOp(";") {
			p.recover()
		}
		return &ast.Assignment{SpanV: span.Join(nameTok.span, end), Name: p.intern(nameTok.text), Expr: expr}
	}
	return p.parseOperation()
}

func (p *parser) parseOperation() ast.Statement {
	start := p.cur().span
	mnTok := p.advance()
	mn, ok := ast.LookupMnemonic(mnTok.text)
	if !ok {
		p.errorf(mnTok.span, "unknown mnemonic %q", mnTok.text)
		p.recover()
		return nil
	}
	var modifiers []ast.Modifier
	for p.isOp(".") {
		p.advance()
		if p.cur().kind != tkIdent {
			p.errorf(p.cur().span, "expected modifier name after '.', found %s", p.cur())
			break
		}
		modTok := p.advance()
		if cond, ok := ast.LookupCondition(modTok.text); ok {
			modifiers = append(modifiers, ast.ConditionModifier(cond))
		} else if modTok.text == "s" {
			modifiers = append(modifiers, ast.AluModifierModifier(ast.AluModS))
		} else if modTok.text == "t" {
			modifiers = append(modifiers, ast.AluModifierModifier(ast.AluModT))
		} else {
			p.errorf(modTok.span, "unknown modifier %q", modTok.text)
		}
	}

	operandsStart := p.cur().span
	var operands []ast.Expression
	if !p.isOp(";") {
		for {
			operands = append(operands, p.parseExpression())
			if !p.isOp(",") {
				break
			}
			p.advance()
		}
	}
	operandsEnd := p.cur().span
	end := p.cur().span
	if !p.expectOp(";") {
		p.recover()
	}
	return &ast.Operation{
		SpanV:        span.Join(start, end),
		Mnemonic:     ast.FullMnemonic{Mnemonic: mn, Modifiers: modifiers},
		Operands:     operands,
		OperandsSpan: span.Join(operandsStart, operandsEnd),
	}
}

// ---- Expressions ----
//
// Precedence, low to high: or | xor ^ and & shift (<< >> >>>)
// sum (+ -) product (* / %) unary (& * ~ - +) atom.

func (p *parser) parseExpression() ast.Expression { return p.parseOr() }

func (p *parser) parseOr() ast.Expression {
	left := p.parseXor()
	for p.isOp("|") {
		p.advance()
		right := p.parseXor()
		left = &ast.BinaryExpr{SpanV: span.Join(left.Span(), right.Span()), Op: ast.OpOr, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseXor() ast.Expression {
	left := p.parseAnd()
	for p.isOp("^") {
		p.advance()
		right := p.parseAnd()
		left = &ast.BinaryExpr{SpanV: span.Join(left.Span(), right.Span()), Op: ast.OpXor, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseAnd() ast.Expression {
	left := p.parseShift()
	for p.isOp("&") {
		p.advance()
		right := p.parseShift()
		left = &ast.BinaryExpr{SpanV: span.Join(left.Span(), right.Span()), Op: ast.OpAnd, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseShift() ast.Expression {
	left := p.parseSum()
	for {
		var op ast.BinaryOp
		switch {
		case p.isOp(">>>"):
			op = ast.OpAshr
		case p.isOp("<<"):
			op = ast.OpShl
		case p.isOp(">>"):
			op = ast.OpShr
		default:
			return left
		}
		p.advance()
		right := p.parseSum()
		left = &ast.BinaryExpr{SpanV: span.Join(left.Span(), right.Span()), Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseSum() ast.Expression {
	left := p.parseProduct()
	for {
		var op ast.BinaryOp
		switch {
		case p.isOp("+"):
			op = ast.OpAdd
		case p.isOp("-"):
			op = ast.OpSub
		default:
			return left
		}
		p.advance()
		right := p.parseProduct()
		left = &ast.BinaryExpr{SpanV: span.Join(left.Span(), right.Span()), Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseProduct() ast.Expression {
	left := p.parseUnary()
	for {
		var op ast.BinaryOp
		switch {
		case p.isOp("*"):
			op = ast.OpMul
		case p.isOp("/"):
			op = ast.OpDiv
		case p.isOp("%"):
			op = ast.OpRem
		default:
			return left
		}
		p.advance()
		right := p.parseUnary()
		left = &ast.BinaryExpr{SpanV: span.Join(left.Span(), right.Span()), Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() ast.Expression {
	start := p.cur().span
	switch {
	case p.isOp("&"):
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{SpanV: span.Join(start, operand.Span()), Op: ast.OpRef, Operand: operand}
	case p.isOp("*"):
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{SpanV: span.Join(start, operand.Span()), Op: ast.OpDeref, Operand: operand}
	case p.isOp("~"):
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{SpanV: span.Join(start, operand.Span()), Op: ast.OpNot, Operand: operand}
	case p.isOp("-"):
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{SpanV: span.Join(start, operand.Span()), Op: ast.OpNeg, Operand: operand}
	case p.isOp("+"):
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{SpanV: span.Join(start, operand.Span()), Op: ast.OpPos, Operand: operand}
	case p.isOp("#"):
		// An optional immediate marker (`ld r1, #0x1234`): it carries
		// no meaning beyond distinguishing an immediate from a bare
		// identifier at the call site, so it is consumed and dropped.
		p.advance()
		return p.parseUnary()
	default:
		return p.parseAtom()
	}
}

func (p *parser) parseAtom() ast.Expression {
	t := p.cur()
	switch t.kind {
	case tkNumber:
		p.advance()
		return &ast.NumberExpr{SpanV: t.span, Value: t.num}
	case tkString:
		p.advance()
		return &ast.StringExpr{SpanV: t.span, Value: t.text}
	case tkIdent:
		if reg, ok := value.LookupRegister(t.text); ok {
			p.advance()
			return &ast.RegisterExpr{SpanV: t.span, Register: reg}
		}
		p.advance()
		return &ast.IdentifierExpr{SpanV: t.span, Name: p.intern(t.text)}
	case tkOp:
		if t.text == "(" {
			p.advance()
			inner := p.parseExpression()
			p.expectOp(")")
			return inner
		}
		if t.text == "[" {
			// `[addr]` is the memory-operand spelling; it desugars to
			// the same node as the `*addr` prefix form.
			p.advance()
			inner := p.parseExpression()
			end := p.cur().span
			p.expectOp("]")
			return &ast.UnaryExpr{SpanV: span.Join(t.span, end), Op: ast.OpDeref, Operand: inner}
		}
	case tkError:
		p.advance()
		p.errorf(t.span, "%s", t.text)
		return &ast.NumberExpr{SpanV: t.span, Value: 0}
	}
	p.errorf(t.span, "expected an expression, found %s", t)
	return &ast.NumberExpr{SpanV: t.span, Value: 0}
}
