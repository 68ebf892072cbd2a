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

// Package emit implements pass 5: one dispatch per Mnemonic, packing
// a 32-bit instruction word from an Operation's evaluated operands.
package emit

import (
	"fmt"

	"github.com/ablomm/cpuasm/pkg/ast"
	"github.com/ablomm/cpuasm/pkg/eval"
	"github.com/ablomm/cpuasm/pkg/span"
	"github.com/ablomm/cpuasm/pkg/symtab"
	"github.com/ablomm/cpuasm/pkg/value"
)

// non-ALU mnemonic codes, bits [27:24] of the instruction word.
const (
	mnemNop  uint32 = 0
	mnemLd   uint32 = 1
	mnemLdr  uint32 = 2
	mnemLdi  uint32 = 3
	mnemSt   uint32 = 4
	mnemStr  uint32 = 5
	mnemPush uint32 = 6
	mnemPop  uint32 = 7
	mnemInt  uint32 = 8
)

// Emit packs op's instruction word. Diagnostics are returned instead
// of panicking; the caller (asmpipe) collects them across the whole
// program the way every other pass does.
func Emit(op *ast.Operation, table *symtab.Table, ev *eval.Evaluator) (uint32, []span.Diag) {
	mn := op.Mnemonic.Mnemonic
	switch mn {
	case ast.Nop:
		return emitNiladic(op, mnemNop)
	case ast.Int:
		return emitNiladic(op, mnemInt)
	case ast.Push:
		return emitPush(op, table, ev)
	case ast.Pop:
		return emitPop(op, table, ev)
	case ast.Ld:
		return emitLd(op, table, ev)
	case ast.St:
		return emitSt(op, table, ev)
	}
	if mn.IsALU() {
		return emitALU(op, table, ev)
	}
	d := span.New(span.Error, op.SpanV, fmt.Sprintf("internal error: unhandled mnemonic %q", mn))
	return 0, []span.Diag{d}
}

// evalOperand evaluates expr against table and requires the result be
// fully known; by pass 5 every label has been addressed, so an
// unresolved operand is itself a diagnostic.
func evalOperand(ev *eval.Evaluator, table *symtab.Table, expr ast.Expression) (value.Result, *span.Diag) {
	r, diag := ev.Eval(expr, table)
	if diag != nil {
		return nil, diag
	}
	if !r.Known() {
		d := span.NewUnknownValueDiag(expr.Span(), r.WaitingOn)
		return nil, &d
	}
	return r.Result, nil
}

// checkArity reports a diagnostic unless len(op.Operands) is one of
// want.
func checkArity(op *ast.Operation, want ...int) *span.Diag {
	for _, n := range want {
		if len(op.Operands) == n {
			return nil
		}
	}
	d := span.NewArityDiag(op.OperandsSpan, "operand", want, len(op.Operands))
	return &d
}

// conditionBits returns the condition nibble for a non-ALU op:
// zero when unconditional, else the tagged Condition shifted to
// [31:28]. Non-ALU instructions are the only ones with a condition
// field; ALU ops spend that nibble as part of their own mnemonic byte
// (see alu.go).
func conditionBits(modifiers []ast.Modifier) uint32 {
	for _, m := range modifiers {
		if m.Cond != nil {
			return m.Cond.Encode() << 28
		}
	}
	return 0
}

func checkRange16(primary span.Span, what string, v uint32) *span.Diag {
	if v > 0xffff {
		d := span.NewRangeDiag(primary, what, int64(v), 0, 1<<16)
		return &d
	}
	return nil
}

func checkOffset12(primary span.Span, off uint32) *span.Diag {
	signed := int32(off)
	if signed < -(1<<11) || signed >= (1<<11) {
		d := span.NewRangeDiag(primary, "offset", int64(signed), -(1 << 11), 1<<11)
		return &d
	}
	return nil
}

func emitNiladic(op *ast.Operation, mnemonicCode uint32) (uint32, []span.Diag) {
	if diag := checkArity(op, 0); diag != nil {
		return 0, []span.Diag{*diag}
	}
	word := mnemonicCode<<24 | conditionBits(op.Mnemonic.Modifiers)
	return word, nil
}
