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

package eval

import (
	"testing"

	"github.com/ablomm/cpuasm/pkg/ast"
	"github.com/ablomm/cpuasm/pkg/span"
	"github.com/ablomm/cpuasm/pkg/symtab"
	"github.com/ablomm/cpuasm/pkg/value"
)

func check(t *testing.T, a1 any, a2 any) {
	t.Helper()
	if a1 != a2 {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", a1, a2)
	}
}

func num(n uint32) ast.Expression { return &ast.NumberExpr{Value: n} }

func TestEvalNumberLiteral(t *testing.T) {
	e := New()
	r, diag := e.Eval(num(42), symtab.New(nil))
	check(t, diag, (*span.Diag)(nil))
	check(t, r.Result, value.Result(value.Number(42)))
}

func TestEvalAddWraps(t *testing.T) {
	e := New()
	expr := &ast.BinaryExpr{Op: ast.OpAdd, Left: num(0xFFFFFFFF), Right: num(2)}
	r, diag := e.Eval(expr, symtab.New(nil))
	check(t, diag, (*span.Diag)(nil))
	check(t, r.Result, value.Result(value.Number(1)))
}

func TestEvalDivisionByZero(t *testing.T) {
	e := New()
	expr := &ast.BinaryExpr{Op: ast.OpDiv, Left: num(10), Right: num(0)}
	_, diag := e.Eval(expr, symtab.New(nil))
	if diag == nil {
		t.Fatalf("expected a diagnostic for division by zero")
	}
	check(t, diag.Message, "division by zero")
}

func TestEvalUndefinedIdentifier(t *testing.T) {
	e := New()
	expr := &ast.IdentifierExpr{Name: "nowhere"}
	_, diag := e.Eval(expr, symtab.New(nil))
	if diag == nil {
		t.Fatalf("expected an undefined-identifier diagnostic")
	}
}

func TestEvalForwardLabelIsUnknown(t *testing.T) {
	table := symtab.New(nil)
	table.Declare("loop", span.Span{}, true)
	e := New()
	expr := &ast.IdentifierExpr{Name: "loop"}
	r, diag := e.Eval(expr, table)
	check(t, diag, (*span.Diag)(nil))
	if r.Known() {
		t.Fatalf("expected loop to be unknown before pass 4 stamps it")
	}
	if len(r.WaitingOn) != 1 {
		t.Fatalf("expected exactly one waiting-on span, got %d", len(r.WaitingOn))
	}
	// The value is pending but the shape is not: labels are addresses.
	check(t, r.Kind, value.KindNumber)
}

func TestEvalKindSurvivesUnknownOperand(t *testing.T) {
	table := symtab.New(nil)
	table.Declare("loop", span.Span{}, true)
	e := New()
	expr := &ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.IdentifierExpr{Name: "loop"}, Right: num(1)}
	r, diag := e.Eval(expr, table)
	check(t, diag, (*span.Diag)(nil))
	check(t, r.Known(), false)
	check(t, r.Kind, value.KindNumber)
}

func TestEvalAssignmentResolvesAndCaches(t *testing.T) {
	table := symtab.New(nil)
	entry, _, ok := table.Declare("two", span.Span{}, false)
	if !ok {
		t.Fatal("declare failed")
	}
	entry.Cell.Expr = ast.Expression(num(2))
	entry.Cell.Table = table

	e := New()
	expr := &ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.IdentifierExpr{Name: "two"}, Right: num(3)}
	r, diag := e.Eval(expr, table)
	check(t, diag, (*span.Diag)(nil))
	check(t, r.Result, value.Result(value.Number(5)))
	// The cell's Result should now be cached.
	check(t, entry.Cell.Result, value.Result(value.Number(2)))
}

func TestEvalSelfReferenceIsACycle(t *testing.T) {
	table := symtab.New(nil)
	entry, _, ok := table.Declare("loopy", span.Span{}, false)
	if !ok {
		t.Fatal("declare failed")
	}
	self := &ast.IdentifierExpr{Name: "loopy"}
	entry.Cell.Expr = ast.Expression(self)
	entry.Cell.Table = table

	e := New()
	_, diag := e.Eval(self, table)
	if diag == nil {
		t.Fatalf("expected a cycle diagnostic")
	}
	check(t, diag.Message, "infinite loop in expression")
}

func TestEvalNumberPlusRegisterProducesOffset(t *testing.T) {
	e := New()
	expr := &ast.BinaryExpr{
		Op:    ast.OpAdd,
		Left:  num(4),
		Right: &ast.RegisterExpr{Register: value.R2},
	}
	r, diag := e.Eval(expr, symtab.New(nil))
	check(t, diag, (*span.Diag)(nil))
	ro, ok := r.Result.(value.RegOffset)
	if !ok {
		t.Fatalf("expected a RegOffset, got %T", r.Result)
	}
	check(t, ro.Register, value.R2)
	check(t, ro.Offset, uint32(4))
}

func TestEvalZeroOffsetCollapsesToRegister(t *testing.T) {
	e := New()
	expr := &ast.BinaryExpr{
		Op:    ast.OpAdd,
		Left:  num(0),
		Right: &ast.RegisterExpr{Register: value.R3},
	}
	r, diag := e.Eval(expr, symtab.New(nil))
	check(t, diag, (*span.Diag)(nil))
	check(t, r.Result, value.Result(value.Reg{Register: value.R3}))
}
