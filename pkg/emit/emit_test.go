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

package emit

import (
	"testing"

	"github.com/ablomm/cpuasm/pkg/ast"
	"github.com/ablomm/cpuasm/pkg/eval"
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

func reg(r value.Register) ast.Expression { return &ast.RegisterExpr{Register: r} }

func fm(mn ast.Mnemonic) ast.FullMnemonic { return ast.FullMnemonic{Mnemonic: mn} }

func emitOK(t *testing.T, op *ast.Operation) uint32 {
	t.Helper()
	word, diags := Emit(op, symtab.New(nil), eval.New())
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	return word
}

func TestEmitNop(t *testing.T) {
	op := &ast.Operation{Mnemonic: fm(ast.Nop)}
	check(t, emitOK(t, op), uint32(0x00000000))
}

func TestEmitInt(t *testing.T) {
	op := &ast.Operation{Mnemonic: fm(ast.Int)}
	check(t, emitOK(t, op), uint32(0x08000000))
}

func TestEmitLdiImmediate(t *testing.T) {
	op := &ast.Operation{Mnemonic: fm(ast.Ld), Operands: []ast.Expression{reg(value.R1), num(0x1234)}}
	check(t, emitOK(t, op), uint32(0x03011234))
}

// A label two words past the start resolves to address 2, then
// LDI r0,2 packs to 0x03000002.
func TestEmitLdiFromLabel(t *testing.T) {
	table := symtab.New(nil)
	entry, _, _ := table.Declare("end", span.Span{}, true)
	entry.Cell.Result = value.Number(2)

	op := &ast.Operation{
		Mnemonic: fm(ast.Ld),
		Operands: []ast.Expression{reg(value.R0), &ast.IdentifierExpr{Name: "end"}},
	}
	word, diags := Emit(op, table, eval.New())
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	check(t, word, uint32(0x03000002))
}

func TestEmitAddThreeRegisters(t *testing.T) {
	op := &ast.Operation{
		Mnemonic: fm(ast.Add),
		Operands: []ast.Expression{reg(value.R1), reg(value.R2), reg(value.R3)},
	}
	check(t, emitOK(t, op), uint32(0xf5001230))
}

func TestEmitMovRealizedAsAluPass(t *testing.T) {
	op := &ast.Operation{
		Mnemonic: fm(ast.Ld),
		Operands: []ast.Expression{reg(value.R1), reg(value.R2)},
	}
	// PASS index 0x0 -> mnemonic byte 0xf0; dest r1<<12, src r2<<4.
	check(t, emitOK(t, op), uint32(0xf0001020))
}

func TestEmitLdAbsolute(t *testing.T) {
	op := &ast.Operation{
		Mnemonic: fm(ast.Ld),
		Operands: []ast.Expression{reg(value.R2), &ast.UnaryExpr{Op: ast.OpDeref, Operand: num(0x4000)}},
	}
	check(t, emitOK(t, op), uint32(0x01024000))
}

func TestEmitStAbsolute(t *testing.T) {
	op := &ast.Operation{
		Mnemonic: fm(ast.Ld),
		Operands: []ast.Expression{&ast.UnaryExpr{Op: ast.OpDeref, Operand: num(0x4000)}, reg(value.R2)},
	}
	check(t, emitOK(t, op), uint32(0x04024000))
}

func TestEmitStrKeepsDataRegisterInLoadField(t *testing.T) {
	op := &ast.Operation{
		Mnemonic: fm(ast.Ld),
		Operands: []ast.Expression{&ast.UnaryExpr{Op: ast.OpDeref, Operand: reg(value.R5)}, reg(value.R2)},
	}
	// STR: data register r2 at [19:16], base r5 at [15:12].
	check(t, emitOK(t, op), uint32(0x05000000|2<<16|5<<12))
}

func TestEmitStMnemonicMirrorsLdStores(t *testing.T) {
	st := &ast.Operation{
		Mnemonic: fm(ast.St),
		Operands: []ast.Expression{reg(value.R2), &ast.UnaryExpr{Op: ast.OpDeref, Operand: num(0x4000)}},
	}
	check(t, emitOK(t, st), uint32(0x04024000))

	mov := &ast.Operation{
		Mnemonic: fm(ast.St),
		Operands: []ast.Expression{reg(value.R1), reg(value.R2)},
	}
	// st r1, r2 moves r1 into r2: PASS with dest r2, src r1.
	check(t, emitOK(t, mov), uint32(0xf0002010))

	offset := &ast.BinaryExpr{Op: ast.OpAdd, Left: reg(value.FP), Right: num(4)}
	str := &ast.Operation{
		Mnemonic: fm(ast.St),
		Operands: []ast.Expression{reg(value.R2), &ast.UnaryExpr{Op: ast.OpDeref, Operand: offset}},
	}
	check(t, emitOK(t, str), uint32(0x05000000|2<<16|11<<12|4))
}

func TestEmitLdrWithOffset(t *testing.T) {
	addr := &ast.BinaryExpr{Op: ast.OpAdd, Left: reg(value.FP), Right: num(4)}
	op := &ast.Operation{
		Mnemonic: fm(ast.Ld),
		Operands: []ast.Expression{reg(value.R2), &ast.UnaryExpr{Op: ast.OpDeref, Operand: addr}},
	}
	// LDR: mnemonic 2<<24, dest r2<<16, base fp(11)<<12, offset 4.
	check(t, emitOK(t, op), uint32(0x02000000|2<<16|11<<12|4))
}

func TestEmitPushPop(t *testing.T) {
	push := &ast.Operation{Mnemonic: fm(ast.Push), Operands: []ast.Expression{reg(value.R3)}}
	check(t, emitOK(t, push), uint32(0x06030000))

	pop := &ast.Operation{Mnemonic: fm(ast.Pop), Operands: []ast.Expression{reg(value.R3)}}
	check(t, emitOK(t, pop), uint32(0x07030000))
}

func TestEmitUnaryNegRepeatsRegister(t *testing.T) {
	op := &ast.Operation{Mnemonic: fm(ast.Neg), Operands: []ast.Expression{reg(value.R4)}}
	idx, _ := ast.Neg.ALUOpIndex()
	want := (0xf0 | idx) << 24
	want |= 4<<12 | 4<<8 | 4<<4
	check(t, emitOK(t, op), want)
}

func TestEmitAddImmediateSetsFlag(t *testing.T) {
	op := &ast.Operation{
		Mnemonic: fm(ast.Add),
		Operands: []ast.Expression{reg(value.R1), reg(value.R2), num(7)},
	}
	idx, _ := ast.Add.ALUOpIndex()
	want := (0xf0|idx)<<24 | ast.ALUFlagImmediate | 1<<12 | 2<<8 | 7
	check(t, emitOK(t, op), want)
}

func TestEmitArityMismatchIsADiag(t *testing.T) {
	op := &ast.Operation{Mnemonic: fm(ast.Nop), Operands: []ast.Expression{num(1)}}
	_, diags := Emit(op, symtab.New(nil), eval.New())
	if len(diags) != 1 {
		t.Fatalf("expected one diag, got %d", len(diags))
	}
}

func TestEmitLiteralNumber(t *testing.T) {
	words, diags := EmitLiteral(&ast.Literal{Expr: num(42)}, symtab.New(nil), eval.New())
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	if len(words) != 1 || words[0] != 42 {
		t.Fatalf("expected [42], got %v", words)
	}
}

func TestEmitLiteralStringPacksFourBytesPerWord(t *testing.T) {
	words, diags := EmitLiteral(&ast.Literal{Expr: &ast.StringExpr{Value: "abcde"}}, symtab.New(nil), eval.New())
	if len(diags) != 0 {
		t.Fatalf("unexpected diags: %v", diags)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 words for a 5-byte string, got %d", len(words))
	}
	want0 := uint32('a')<<24 | uint32('b')<<16 | uint32('c')<<8 | uint32('d')
	want1 := uint32('e') << 24
	check(t, words[0], want0)
	check(t, words[1], want1)
}

func TestEmitOutOfRangeImmediateIsADiag(t *testing.T) {
	op := &ast.Operation{
		Mnemonic: fm(ast.Ld),
		Operands: []ast.Expression{reg(value.R1), num(0x10000)},
	}
	_, diags := Emit(op, symtab.New(nil), eval.New())
	if len(diags) != 1 {
		t.Fatalf("expected one diag, got %d", len(diags))
	}
}
