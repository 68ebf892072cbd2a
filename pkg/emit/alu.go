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
	"github.com/ablomm/cpuasm/pkg/ast"
	"github.com/ablomm/cpuasm/pkg/eval"
	"github.com/ablomm/cpuasm/pkg/span"
	"github.com/ablomm/cpuasm/pkg/symtab"
	"github.com/ablomm/cpuasm/pkg/value"
)

// unaryALU names the two ALU mnemonics that accept 1 or 2 operands
// and delegate to the binary encoding with a register repeated.
var unaryALU = map[ast.Mnemonic]bool{ast.Not: true, ast.Neg: true}

// aluMnemonicByte places the ALU op's index into the full mnemonic
// byte 0xF0..0xFC, which occupies bits [31:24] directly; unlike a
// non-ALU op, there is no separate condition nibble.
func aluMnemonicByte(idx uint32) uint32 {
	return (0xf0 | idx) << 24
}

// aluModifierBits returns the S/T modifier's flag bits (SetStatus,
// optionally Load), occupying the low half of the [23:20] nibble; the
// high half (Immediate/Reverse) is set by the operand-shape encoders
// below.
func aluModifierBits(modifiers []ast.Modifier) uint32 {
	for _, m := range modifiers {
		if m.ALUMod != nil {
			return m.ALUMod.Encode()
		}
	}
	return 0
}

func aluWordReg(idx uint32, modifiers []ast.Modifier, dest, opB, opC value.Register) uint32 {
	return aluMnemonicByte(idx) | aluModifierBits(modifiers) | dest.Encode()<<12 | opB.Encode()<<8 | opC.Encode()<<4
}

func aluWordImm(idx uint32, modifiers []ast.Modifier, dest, opB value.Register, imm uint32, reverse bool) uint32 {
	flags := aluModifierBits(modifiers) | ast.ALUFlagImmediate
	if reverse {
		flags |= ast.ALUFlagReverse
	}
	return aluMnemonicByte(idx) | flags | dest.Encode()<<12 | opB.Encode()<<8 | imm&0xff
}

func checkALUImm8(at span.Span, v uint32) *span.Diag {
	if v > 0xff {
		d := span.NewRangeDiag(at, "immediate", int64(v), 0, 1<<8)
		return &d
	}
	return nil
}

// emitALU is the entry point for every mnemonic in the 0xF0..0xFC
// family: dispatch on arity first, then on operand shape.
func emitALU(op *ast.Operation, table *symtab.Table, ev *eval.Evaluator) (uint32, []span.Diag) {
	mn := op.Mnemonic.Mnemonic
	idx, _ := mn.ALUOpIndex()
	modifiers := op.Mnemonic.Modifiers

	arities := []int{2, 3}
	if unaryALU[mn] {
		arities = []int{1, 2}
	}
	if diag := checkArity(op, arities...); diag != nil {
		return 0, []span.Diag{*diag}
	}

	switch len(op.Operands) {
	case 1:
		return emitALU1(op, table, ev, idx, modifiers)
	case 2:
		return emitALU2(op, table, ev, idx, modifiers)
	default:
		return emitALU3(op, table, ev, idx, modifiers)
	}
}

// emitALU1 is a unary op given a single register: it becomes a
// 3-register form with that register repeated for all three fields.
func emitALU1(op *ast.Operation, table *symtab.Table, ev *eval.Evaluator, idx uint32, modifiers []ast.Modifier) (uint32, []span.Diag) {
	r, diag := evalOperand(ev, table, op.Operands[0])
	if diag != nil {
		return 0, []span.Diag{*diag}
	}
	reg, ok := r.(value.Reg)
	if !ok {
		d := span.NewTypeDiag(op.Operands[0].Span(), "operand", []string{"register"}, value.TypeName(r))
		return 0, []span.Diag{d}
	}
	return aluWordReg(idx, modifiers, reg.Register, reg.Register, reg.Register), nil
}

// emitALU2 covers reg/reg, reg/imm, and imm/reg. The immediate forms
// both repeat the single register for dest and opB, differing only in
// whether the Reverse flag swaps the operand order.
func emitALU2(op *ast.Operation, table *symtab.Table, ev *eval.Evaluator, idx uint32, modifiers []ast.Modifier) (uint32, []span.Diag) {
	v0, diag := evalOperand(ev, table, op.Operands[0])
	if diag != nil {
		return 0, []span.Diag{*diag}
	}
	switch a := v0.(type) {
	case value.Number:
		v1, diag := evalOperand(ev, table, op.Operands[1])
		if diag != nil {
			return 0, []span.Diag{*diag}
		}
		reg, ok := v1.(value.Reg)
		if !ok {
			d := span.NewTypeDiag(op.Operands[1].Span(), "operand", []string{"register"}, value.TypeName(v1))
			return 0, []span.Diag{d}
		}
		if diag := checkALUImm8(op.Operands[0].Span(), uint32(a)); diag != nil {
			return 0, []span.Diag{*diag}
		}
		return aluWordImm(idx, modifiers, reg.Register, reg.Register, uint32(a), true), nil
	case value.Reg:
		v1, diag := evalOperand(ev, table, op.Operands[1])
		if diag != nil {
			return 0, []span.Diag{*diag}
		}
		switch b := v1.(type) {
		case value.Number:
			if diag := checkALUImm8(op.Operands[1].Span(), uint32(b)); diag != nil {
				return 0, []span.Diag{*diag}
			}
			return aluWordImm(idx, modifiers, a.Register, a.Register, uint32(b), false), nil
		case value.Reg:
			return aluWordReg(idx, modifiers, a.Register, a.Register, b.Register), nil
		default:
			d := span.NewTypeDiag(op.Operands[1].Span(), "operand", []string{"number", "register"}, value.TypeName(v1))
			return 0, []span.Diag{d}
		}
	default:
		d := span.NewTypeDiag(op.Operands[0].Span(), "operand", []string{"number", "register"}, value.TypeName(v0))
		return 0, []span.Diag{d}
	}
}

// emitALU3 covers reg/reg/reg, reg/reg/imm, and reg/imm/reg:
// operand 0 is always the destination register.
func emitALU3(op *ast.Operation, table *symtab.Table, ev *eval.Evaluator, idx uint32, modifiers []ast.Modifier) (uint32, []span.Diag) {
	v0, diag := evalOperand(ev, table, op.Operands[0])
	if diag != nil {
		return 0, []span.Diag{*diag}
	}
	dest, ok := v0.(value.Reg)
	if !ok {
		d := span.NewTypeDiag(op.Operands[0].Span(), "destination", []string{"register"}, value.TypeName(v0))
		return 0, []span.Diag{d}
	}

	v1, diag := evalOperand(ev, table, op.Operands[1])
	if diag != nil {
		return 0, []span.Diag{*diag}
	}
	switch b := v1.(type) {
	case value.Number:
		v2, diag := evalOperand(ev, table, op.Operands[2])
		if diag != nil {
			return 0, []span.Diag{*diag}
		}
		opC, ok := v2.(value.Reg)
		if !ok {
			d := span.NewTypeDiag(op.Operands[2].Span(), "operand", []string{"register"}, value.TypeName(v2))
			return 0, []span.Diag{d}
		}
		if diag := checkALUImm8(op.Operands[1].Span(), uint32(b)); diag != nil {
			return 0, []span.Diag{*diag}
		}
		return aluWordImm(idx, modifiers, dest.Register, opC.Register, uint32(b), true), nil
	case value.Reg:
		v2, diag := evalOperand(ev, table, op.Operands[2])
		if diag != nil {
			return 0, []span.Diag{*diag}
		}
		switch c := v2.(type) {
		case value.Number:
			if diag := checkALUImm8(op.Operands[2].Span(), uint32(c)); diag != nil {
				return 0, []span.Diag{*diag}
			}
			return aluWordImm(idx, modifiers, dest.Register, b.Register, uint32(c), false), nil
		case value.Reg:
			return aluWordReg(idx, modifiers, dest.Register, b.Register, c.Register), nil
		default:
			d := span.NewTypeDiag(op.Operands[2].Span(), "operand", []string{"number", "register"}, value.TypeName(v2))
			return 0, []span.Diag{d}
		}
	default:
		d := span.NewTypeDiag(op.Operands[1].Span(), "operand", []string{"number", "register"}, value.TypeName(v1))
		return 0, []span.Diag{d}
	}
}
