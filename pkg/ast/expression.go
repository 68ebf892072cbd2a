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

package ast

import (
	"github.com/ablomm/cpuasm/pkg/span"
	"github.com/ablomm/cpuasm/pkg/value"
)

// Expression is the operand-expression sum: constants, unary, binary.
type Expression interface {
	isExpression()
	Span() span.Span
}

type NumberExpr struct {
	SpanV span.Span
	Value uint32
}

type StringExpr struct {
	SpanV span.Span
	Value string
}

type RegisterExpr struct {
	SpanV    span.Span
	Register value.Register
}

type IdentifierExpr struct {
	SpanV span.Span
	Name  string
}

// UnaryOp is the closed set Ref(&), Deref(*), Neg(-), Not(~), Pos(+).
type UnaryOp struct{ op string }

var (
	OpRef   = UnaryOp{"&"}
	OpDeref = UnaryOp{"*"}
	OpNeg   = UnaryOp{"-"}
	OpNot   = UnaryOp{"~"}
	OpPos   = UnaryOp{"+"}
)

type UnaryExpr struct {
	SpanV   span.Span
	Op      UnaryOp
	Operand Expression
}

// BinaryOp is the closed set Mul/Div/Rem/Add/Sub/Shl/Shr/Ashr/And/Or/Xor.
type BinaryOp struct{ op string }

var (
	OpMul  = BinaryOp{"*"}
	OpDiv  = BinaryOp{"/"}
	OpRem  = BinaryOp{"%"}
	OpAdd  = BinaryOp{"+"}
	OpSub  = BinaryOp{"-"}
	OpShl  = BinaryOp{"<<"}
	OpShr  = BinaryOp{">>"}
	OpAshr = BinaryOp{">>>"}
	OpAnd  = BinaryOp{"&"}
	OpOr   = BinaryOp{"|"}
	OpXor  = BinaryOp{"^"}
)

type BinaryExpr struct {
	SpanV span.Span
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func (*NumberExpr) isExpression()     {}
func (*StringExpr) isExpression()     {}
func (*RegisterExpr) isExpression()   {}
func (*IdentifierExpr) isExpression() {}
func (*UnaryExpr) isExpression()      {}
func (*BinaryExpr) isExpression()     {}

func (e *NumberExpr) Span() span.Span     { return e.SpanV }
func (e *StringExpr) Span() span.Span     { return e.SpanV }
func (e *RegisterExpr) Span() span.Span   { return e.SpanV }
func (e *IdentifierExpr) Span() span.Span { return e.SpanV }
func (e *UnaryExpr) Span() span.Span      { return e.SpanV }
func (e *BinaryExpr) Span() span.Span     { return e.SpanV }
