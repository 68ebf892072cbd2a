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
	"testing"

	"github.com/ablomm/cpuasm/pkg/ast"
	"github.com/ablomm/cpuasm/pkg/value"
)

func check(t *testing.T, a1, a2 any) {
	t.Helper()
	if a1 != a2 {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", a1, a2)
	}
}

func TestParseNiladicAndThreeOperandOperations(t *testing.T) {
	file, diags := ParseFile("t", []byte("nop; int; add r1, r2, r3;"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	if len(file.Block.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(file.Block.Statements))
	}
	op, ok := file.Block.Statements[2].(*ast.Operation)
	if !ok {
		t.Fatalf("expected an Operation, got %T", file.Block.Statements[2])
	}
	check(t, op.Mnemonic.Mnemonic, ast.Add)
	if len(op.Operands) != 3 {
		t.Fatalf("expected 3 operands, got %d", len(op.Operands))
	}
	r, ok := op.Operands[0].(*ast.RegisterExpr)
	if !ok {
		t.Fatalf("expected a RegisterExpr, got %T", op.Operands[0])
	}
	check(t, r.Register, value.R1)
}

func TestParseLabelsAndForwardReference(t *testing.T) {
	src := `
start: ld r0, end;
       nop;
end:   nop;
`
	file, diags := ParseFile("t", []byte(src))
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	if len(file.Block.Statements) != 5 {
		t.Fatalf("expected 5 statements (2 labels + 3 ops), got %d", len(file.Block.Statements))
	}
	label, ok := file.Block.Statements[0].(*ast.Label)
	if !ok {
		t.Fatalf("expected a Label, got %T", file.Block.Statements[0])
	}
	check(t, label.Name, "start")

	op, ok := file.Block.Statements[1].(*ast.Operation)
	if !ok {
		t.Fatalf("expected an Operation, got %T", file.Block.Statements[1])
	}
	ident, ok := op.Operands[1].(*ast.IdentifierExpr)
	if !ok {
		t.Fatalf("expected an IdentifierExpr, got %T", op.Operands[1])
	}
	check(t, ident.Name, "end")
}

// The optional `#` immediate marker is consumed and dropped.
func TestParseImmediateMarker(t *testing.T) {
	file, diags := ParseFile("t", []byte("ld r1, #0x1234;"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	op := file.Block.Statements[0].(*ast.Operation)
	n, ok := op.Operands[1].(*ast.NumberExpr)
	if !ok {
		t.Fatalf("expected a NumberExpr, got %T", op.Operands[1])
	}
	check(t, n.Value, uint32(0x1234))
}

func TestParseAssignmentAndDuplicateIsNotAParserConcern(t *testing.T) {
	file, diags := ParseFile("t", []byte("a = 1; a = 2;"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	if len(file.Block.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(file.Block.Statements))
	}
	a, ok := file.Block.Statements[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected an Assignment, got %T", file.Block.Statements[0])
	}
	check(t, a.Name, "a")
	n := a.Expr.(*ast.NumberExpr)
	check(t, n.Value, uint32(1))
}

func TestParseExportedLabelAndStandaloneExport(t *testing.T) {
	file, diags := ParseFile("t", []byte("export entry: nop; export a, b;"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	label := file.Block.Statements[0].(*ast.Label)
	check(t, label.Name, "entry")
	check(t, label.Exported, true)

	exp := file.Block.Statements[2].(*ast.Export)
	if len(exp.Names) != 2 || exp.Names[0] != "a" || exp.Names[1] != "b" {
		t.Fatalf("unexpected export names: %v", exp.Names)
	}
}

func TestParseNamedAndBlobImports(t *testing.T) {
	file, diags := ParseFile("t", []byte(`
import a, b as c from "lib/import.asm";
import * from "lib/other.asm";
`))
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	imp := file.Block.Statements[0].(*ast.Import)
	check(t, imp.File, "lib/import.asm")
	named, ok := imp.Specifier.(ast.NamedImport)
	if !ok {
		t.Fatalf("expected a NamedImport, got %T", imp.Specifier)
	}
	if len(named.Names) != 2 {
		t.Fatalf("expected 2 imported names, got %d", len(named.Names))
	}
	check(t, named.Names[0].Name, "a")
	check(t, named.Names[0].Alias, "")
	check(t, named.Names[1].Name, "b")
	check(t, named.Names[1].Alias, "c")

	blob := file.Block.Statements[1].(*ast.Import)
	if _, ok := blob.Specifier.(ast.BlobImport); !ok {
		t.Fatalf("expected a BlobImport, got %T", blob.Specifier)
	}
}

func TestParseNestedBlock(t *testing.T) {
	file, diags := ParseFile("t", []byte("nop; { inner: nop; } nop;"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	if len(file.Block.Statements) != 3 {
		t.Fatalf("expected 3 top-level statements, got %d", len(file.Block.Statements))
	}
	nested, ok := file.Block.Statements[1].(*ast.Block)
	if !ok {
		t.Fatalf("expected a nested Block, got %T", file.Block.Statements[1])
	}
	if len(nested.Statements) != 2 {
		t.Fatalf("expected 2 statements inside the nested block, got %d", len(nested.Statements))
	}
}

func TestParseIndirectAndRegisterOffset(t *testing.T) {
	file, diags := ParseFile("t", []byte("ld r2, *(fp + 4);"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	op := file.Block.Statements[0].(*ast.Operation)
	deref, ok := op.Operands[1].(*ast.UnaryExpr)
	if !ok {
		t.Fatalf("expected a UnaryExpr, got %T", op.Operands[1])
	}
	check(t, deref.Op, ast.OpDeref)
	binop, ok := deref.Operand.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected a BinaryExpr, got %T", deref.Operand)
	}
	check(t, binop.Op, ast.OpAdd)
	reg, ok := binop.Left.(*ast.RegisterExpr)
	if !ok {
		t.Fatalf("expected a RegisterExpr, got %T", binop.Left)
	}
	check(t, reg.Register, value.FP)
}

func TestParseModifiers(t *testing.T) {
	file, diags := ParseFile("t", []byte("add.eq.s r1, r2, r3;"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	op := file.Block.Statements[0].(*ast.Operation)
	if len(op.Mnemonic.Modifiers) != 2 {
		t.Fatalf("expected 2 modifiers, got %d", len(op.Mnemonic.Modifiers))
	}
	if op.Mnemonic.Modifiers[0].Cond == nil || *op.Mnemonic.Modifiers[0].Cond != ast.CondEQ {
		t.Fatalf("expected the first modifier to be condition eq, got %+v", op.Mnemonic.Modifiers[0])
	}
	if op.Mnemonic.Modifiers[1].ALUMod == nil || *op.Mnemonic.Modifiers[1].ALUMod != ast.AluModS {
		t.Fatalf("expected the second modifier to be alu modifier s, got %+v", op.Mnemonic.Modifiers[1])
	}
}

func TestParseStringAndCharLiterals(t *testing.T) {
	file, diags := ParseFile("t", []byte(".fill \"hi\"; .fill 'a';"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	lit1 := file.Block.Statements[0].(*ast.Literal)
	s, ok := lit1.Expr.(*ast.StringExpr)
	if !ok {
		t.Fatalf("expected a StringExpr, got %T", lit1.Expr)
	}
	check(t, s.Value, "hi")

	lit2 := file.Block.Statements[1].(*ast.Literal)
	n, ok := lit2.Expr.(*ast.NumberExpr)
	if !ok {
		t.Fatalf("expected a NumberExpr, got %T", lit2.Expr)
	}
	check(t, n.Value, uint32('a'))
}

func TestParseBracketedMemoryOperand(t *testing.T) {
	file, diags := ParseFile("t", []byte("ld r2, [fp - 4];"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	op := file.Block.Statements[0].(*ast.Operation)
	deref, ok := op.Operands[1].(*ast.UnaryExpr)
	if !ok {
		t.Fatalf("expected a UnaryExpr, got %T", op.Operands[1])
	}
	check(t, deref.Op, ast.OpDeref)
	binop, ok := deref.Operand.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected a BinaryExpr, got %T", deref.Operand)
	}
	check(t, binop.Op, ast.OpSub)
}

func TestParseUnaryMinus(t *testing.T) {
	file, diags := ParseFile("t", []byte(".fill -1;"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	lit := file.Block.Statements[0].(*ast.Literal)
	neg, ok := lit.Expr.(*ast.UnaryExpr)
	if !ok {
		t.Fatalf("expected a UnaryExpr, got %T", lit.Expr)
	}
	check(t, neg.Op, ast.OpNeg)
}

func TestParseStringEscapes(t *testing.T) {
	file, diags := ParseFile("t", []byte(`.string "a\n\"b\"";`))
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	s := file.Block.Statements[0].(*ast.Literal).Expr.(*ast.StringExpr)
	check(t, s.Value, "a\n\"b\"")
}

func TestParseUnknownMnemonicIsADiag(t *testing.T) {
	_, diags := ParseFile("t", []byte("bogus r1;"))
	if len(diags) == 0 {
		t.Fatalf("expected at least one diag for an unknown mnemonic")
	}
}

func TestParseBinaryAndHexAndOctalNumbers(t *testing.T) {
	file, diags := ParseFile("t", []byte(".fill 0b101; .fill 0o17; .fill 0x2A;"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	want := []uint32{5, 15, 42}
	for i, w := range want {
		n := file.Block.Statements[i].(*ast.Literal).Expr.(*ast.NumberExpr)
		check(t, n.Value, w)
	}
}
