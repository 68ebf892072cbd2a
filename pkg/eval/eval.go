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

// Package eval implements the expression evaluator: it walks an
// ast.Expression against a symtab.Table and produces a value.Result,
// whose leaves may still be unknown pending pass 4.
//
// It imports both pkg/ast and pkg/symtab, and it is the only place
// that asserts a symtab.Cell's opaque Expr back to ast.Expression.
package eval

import (
	"errors"
	"fmt"

	"github.com/ablomm/cpuasm/pkg/ast"
	"github.com/ablomm/cpuasm/pkg/span"
	"github.com/ablomm/cpuasm/pkg/symtab"
	"github.com/ablomm/cpuasm/pkg/value"
)

// Return is the outcome of one evaluation: a possibly-unknown Result
// plus the spans of identifiers whose unknown values blocked full
// resolution. Kind is the result's shape and outlives an unknown
// value: a forward label reference is Number-shaped before pass 4
// stamps it, which is what lets pass 4 size a number literal without
// knowing the number.
type Return struct {
	Result    value.Result
	Kind      value.Kind
	WaitingOn []span.Label
}

func (r Return) Known() bool { return r.Result != nil }

func known(result value.Result) Return {
	return Return{Result: result, Kind: value.KindOf(result)}
}

// Evaluator holds the cycle-detection state for one top-level Eval
// call: an ordered stack of the symbol cells currently being
// resolved. Re-entering an in-flight cell is a reference cycle.
type Evaluator struct {
	inFlight      map[*symtab.Cell]span.Span
	inFlightOrder []*symtab.Cell
}

func New() *Evaluator {
	return &Evaluator{inFlight: make(map[*symtab.Cell]span.Span)}
}

// Eval evaluates expr. table is the lexical scope to resolve bare
// identifiers against (ignored by nodes that don't reference one).
func (e *Evaluator) Eval(expr ast.Expression, table *symtab.Table) (Return, *span.Diag) {
	switch n := expr.(type) {
	case *ast.NumberExpr:
		return known(value.Number(n.Value)), nil
	case *ast.StringExpr:
		return known(value.Str(n.Value)), nil
	case *ast.RegisterExpr:
		return known(value.Reg{Register: n.Register}), nil
	case *ast.IdentifierExpr:
		return e.evalIdentifier(n, table)
	case *ast.UnaryExpr:
		return e.evalUnary(n, table)
	case *ast.BinaryExpr:
		return e.evalBinary(n, table)
	default:
		d := span.New(span.Error, expr.Span(), "internal error: unknown expression node")
		return Return{}, &d
	}
}

func (e *Evaluator) evalIdentifier(n *ast.IdentifierExpr, table *symtab.Table) (Return, *span.Diag) {
	entry, ok := table.Lookup(n.Name)
	if !ok {
		d := span.NewUndefinedDiag(n.Name, n.SpanV)
		return Return{}, &d
	}
	cell := entry.Cell
	if cell.Result != nil {
		return known(cell.Result), nil
	}
	if cell.IsLabel {
		// Not yet stamped by pass 4: the value is unknown but the
		// shape is not — a label always resolves to an address.
		return Return{
			Kind:      value.KindNumber,
			WaitingOn: []span.Label{{Span: entry.KeySpan, Text: fmt.Sprintf("label %q not yet addressed", n.Name)}},
		}, nil
	}
	if cell.Expr == nil {
		// Declared but never assigned (shouldn't happen for a
		// well-formed AST, but fail safe rather than panic).
		return Return{WaitingOn: []span.Label{{Span: entry.KeySpan, Text: fmt.Sprintf("%q has no value", n.Name)}}}, nil
	}
	if _, inFlight := e.inFlight[cell]; inFlight {
		labels := make([]span.Label, 0, len(e.inFlightOrder)+1)
		for _, c := range e.inFlightOrder {
			labels = append(labels, span.Label{Span: e.inFlight[c], Text: fmt.Sprintf("while resolving %q", c.Name)})
		}
		labels = append(labels, span.Label{Span: n.SpanV, Text: fmt.Sprintf("cycle re-enters %q here", n.Name)})
		d := span.NewCycleDiag(n.SpanV, labels)
		return Return{}, &d
	}

	e.inFlight[cell] = n.SpanV
	e.inFlightOrder = append(e.inFlightOrder, cell)
	defer func() {
		delete(e.inFlight, cell)
		e.inFlightOrder = e.inFlightOrder[:len(e.inFlightOrder)-1]
	}()

	inner, ok := cell.Expr.(ast.Expression)
	if !ok {
		d := span.New(span.Error, n.SpanV, "internal error: symbol cell holds non-expression")
		return Return{}, &d
	}
	sub, diag := e.Eval(inner, cell.Table)
	if diag != nil {
		return Return{}, diag
	}
	if sub.Known() {
		// Cache the resolved value on the shared cell: subsequent
		// lookups, including through import aliases, see it
		// immediately instead of re-walking the expression.
		cell.Result = sub.Result
	}
	return sub, nil
}

func (e *Evaluator) evalUnary(n *ast.UnaryExpr, table *symtab.Table) (Return, *span.Diag) {
	operand, diag := e.Eval(n.Operand, table)
	if diag != nil {
		return Return{}, diag
	}
	if !operand.Known() {
		return Return{Kind: unaryKind(n.Op, operand.Kind), WaitingOn: operand.WaitingOn}, nil
	}
	var result value.Result
	var err error
	switch n.Op {
	case ast.OpPos:
		result, err = value.Pos(operand.Result)
	case ast.OpNeg:
		result, err = value.Neg(operand.Result)
	case ast.OpNot:
		result, err = value.Not(operand.Result)
	case ast.OpRef:
		result, err = value.Ref(operand.Result)
	case ast.OpDeref:
		result, err = value.Deref(operand.Result)
	default:
		d := span.New(span.Error, n.SpanV, "internal error: unknown unary operator")
		return Return{}, &d
	}
	if err != nil {
		d := span.New(span.Error, n.Operand.Span(), err.Error())
		return Return{}, &d
	}
	return known(result), nil
}

// unaryKind infers the shape a unary operator will produce from its
// operand's shape, for operands whose value is still pending.
func unaryKind(op ast.UnaryOp, operand value.Kind) value.Kind {
	switch op {
	case ast.OpPos:
		return operand
	case ast.OpNeg, ast.OpNot:
		return value.KindNumber
	case ast.OpDeref:
		return value.KindIndirect
	default:
		// Ref unwraps an Indirect; the inner shape isn't tracked.
		return value.KindUnknown
	}
}

func (e *Evaluator) evalBinary(n *ast.BinaryExpr, table *symtab.Table) (Return, *span.Diag) {
	left, diag := e.Eval(n.Left, table)
	if diag != nil {
		return Return{}, diag
	}
	right, diag := e.Eval(n.Right, table)
	if diag != nil {
		return Return{}, diag
	}
	if !left.Known() || !right.Known() {
		return Return{
			Kind:      binaryKind(n.Op, left.Kind, right.Kind),
			WaitingOn: append(append([]span.Label{}, left.WaitingOn...), right.WaitingOn...),
		}, nil
	}

	var result value.Result
	var err error
	switch n.Op {
	case ast.OpMul:
		result, err = value.Mul(left.Result, right.Result)
	case ast.OpDiv:
		result, err = value.Div(left.Result, right.Result)
	case ast.OpRem:
		result, err = value.Rem(left.Result, right.Result)
	case ast.OpAdd:
		result, err = value.Add(left.Result, right.Result)
	case ast.OpSub:
		result, err = value.Sub(left.Result, right.Result)
	case ast.OpShl:
		result, err = value.Shl(left.Result, right.Result)
	case ast.OpShr:
		result, err = value.Shr(left.Result, right.Result)
	case ast.OpAshr:
		result, err = value.Ashr(left.Result, right.Result)
	case ast.OpAnd:
		result, err = value.And(left.Result, right.Result)
	case ast.OpOr:
		result, err = value.Or(left.Result, right.Result)
	case ast.OpXor:
		result, err = value.Xor(left.Result, right.Result)
	default:
		d := span.New(span.Error, n.SpanV, "internal error: unknown binary operator")
		return Return{}, &d
	}
	if err != nil {
		if errors.Is(err, value.ErrDivisionByZero) {
			d := span.NewDivisionByZeroDiag(n.Right.Span())
			return Return{}, &d
		}
		d := span.New(span.Error, n.SpanV, err.Error())
		return Return{}, &d
	}
	return known(result), nil
}

// binaryKind infers the shape a binary operator will produce when at
// least one operand's value is still pending. The bitwise, shift, and
// multiplicative operators only accept numbers, so their result is
// Number-shaped regardless of what the pending operand turns out to
// be (a wrong shape errors later anyway). Add and Sub genuinely
// depend on both shapes.
func binaryKind(op ast.BinaryOp, left, right value.Kind) value.Kind {
	switch op {
	case ast.OpAdd:
		switch {
		case left == value.KindString || right == value.KindString:
			return value.KindString
		case left == value.KindNumber && right == value.KindNumber:
			return value.KindNumber
		default:
			// Number+register collapses to Register or RegisterOffset
			// depending on the resulting offset, so the shape can't be
			// pinned down before the values are.
			return value.KindUnknown
		}
	case ast.OpSub:
		if left == value.KindNumber && right == value.KindNumber {
			return value.KindNumber
		}
		return value.KindUnknown
	default:
		return value.KindNumber
	}
}
