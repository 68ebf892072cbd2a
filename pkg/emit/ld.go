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

// emitLd realizes the single user-facing `ld` mnemonic's nine
// logical variants, branching first on whether operand 0 is a plain
// register (load direction) or an Indirect (store direction), then on
// operand 1's shape.
func emitLd(op *ast.Operation, table *symtab.Table, ev *eval.Evaluator) (uint32, []span.Diag) {
	if diag := checkArity(op, 2); diag != nil {
		return 0, []span.Diag{*diag}
	}
	left, diag := evalOperand(ev, table, op.Operands[0])
	if diag != nil {
		return 0, []span.Diag{*diag}
	}
	right, diag := evalOperand(ev, table, op.Operands[1])
	if diag != nil {
		return 0, []span.Diag{*diag}
	}

	modifiers := op.Mnemonic.Modifiers
	switch lv := left.(type) {
	case value.Reg:
		return emitLdIntoReg(op, modifiers, lv.Register, right)
	case value.Indirect:
		return emitStore(modifiers, lv.Inner, op.Operands[0].Span(), right, op.Operands[1].Span())
	default:
		d := span.NewTypeDiag(op.Operands[0].Span(), "destination", []string{"register", "indirect"}, value.TypeName(left))
		return 0, []span.Diag{d}
	}
}

// emitSt is the store-direction spelling `st Rsrc, dest`: the same
// encodings as `ld dest, Rsrc` with the surface operands swapped, so
// a register destination is a MOV and an indirect one a store.
func emitSt(op *ast.Operation, table *symtab.Table, ev *eval.Evaluator) (uint32, []span.Diag) {
	if diag := checkArity(op, 2); diag != nil {
		return 0, []span.Diag{*diag}
	}
	src, diag := evalOperand(ev, table, op.Operands[0])
	if diag != nil {
		return 0, []span.Diag{*diag}
	}
	dest, diag := evalOperand(ev, table, op.Operands[1])
	if diag != nil {
		return 0, []span.Diag{*diag}
	}

	srcReg, ok := src.(value.Reg)
	if !ok {
		d := span.NewTypeDiag(op.Operands[0].Span(), "source", []string{"register"}, value.TypeName(src))
		return 0, []span.Diag{d}
	}
	modifiers := op.Mnemonic.Modifiers
	switch dv := dest.(type) {
	case value.Reg:
		return emitMov(modifiers, dv.Register, srcReg.Register), nil
	case value.Indirect:
		return emitStore(modifiers, dv.Inner, op.Operands[1].Span(), src, op.Operands[0].Span())
	default:
		d := span.NewTypeDiag(op.Operands[1].Span(), "destination", []string{"register", "indirect"}, value.TypeName(dest))
		return 0, []span.Diag{d}
	}
}

// emitMov is a register-to-register transfer, realized as ALU PASS;
// it takes ALU-style modifiers (flags only) rather than a condition.
func emitMov(modifiers []ast.Modifier, dest, src value.Register) uint32 {
	passIdx, _ := ast.Pass.ALUOpIndex()
	return aluMnemonicByte(passIdx) | aluModifierBits(modifiers) | dest.Encode()<<12 | src.Encode()<<4
}

// emitLdIntoReg handles `ld R, <op1>`: LDI (number), MOV (register,
// realized as an ALU PASS), LD (indirect number), or LDR (indirect
// register, with or without offset).
func emitLdIntoReg(op *ast.Operation, modifiers []ast.Modifier, dest value.Register, right value.Result) (uint32, []span.Diag) {
	rightSpan := op.Operands[1].Span()
	switch rv := right.(type) {
	case value.Number:
		if diag := checkRange16(rightSpan, "immediate", uint32(rv)); diag != nil {
			return 0, []span.Diag{*diag}
		}
		word := mnemLdi<<24 | conditionBits(modifiers) | dest.Encode()<<16 | uint32(rv)&0xffff
		return word, nil
	case value.Reg:
		return emitMov(modifiers, dest, rv.Register), nil
	case value.Indirect:
		return emitLdFromIndirect(modifiers, dest, rightSpan, rv.Inner)
	default:
		d := span.NewTypeDiag(rightSpan, "source", []string{"number", "register", "indirect"}, value.TypeName(right))
		return 0, []span.Diag{d}
	}
}

func emitLdFromIndirect(modifiers []ast.Modifier, dest value.Register, addrSpan span.Span, inner value.Result) (uint32, []span.Diag) {
	switch iv := inner.(type) {
	case value.Number:
		if diag := checkRange16(addrSpan, "address", uint32(iv)); diag != nil {
			return 0, []span.Diag{*diag}
		}
		word := mnemLd<<24 | conditionBits(modifiers) | dest.Encode()<<16 | uint32(iv)&0xffff
		return word, nil
	case value.Reg:
		word := mnemLdr<<24 | conditionBits(modifiers) | dest.Encode()<<16 | iv.Register.Encode()<<12
		return word, nil
	case value.RegOffset:
		if diag := checkOffset12(addrSpan, iv.Offset); diag != nil {
			return 0, []span.Diag{*diag}
		}
		word := mnemLdr<<24 | conditionBits(modifiers) | dest.Encode()<<16 | iv.Register.Encode()<<12 | iv.Offset&0xfff
		return word, nil
	default:
		d := span.NewTypeDiag(addrSpan, "address", []string{"number", "register", "register offset"}, value.TypeName(inner))
		return 0, []span.Diag{d}
	}
}

// emitStore packs the ST/STR variants shared by `ld I(addr), R` and
// `st R, I(addr)`. The data register sits at [19:16] in every store,
// the same field a load's destination uses; a register base goes at
// [15:12] with its signed 12-bit offset at [11:0].
func emitStore(modifiers []ast.Modifier, addr value.Result, addrSpan span.Span, src value.Result, srcSpan span.Span) (uint32, []span.Diag) {
	srcReg, ok := src.(value.Reg)
	if !ok {
		d := span.NewTypeDiag(srcSpan, "source", []string{"register"}, value.TypeName(src))
		return 0, []span.Diag{d}
	}
	switch av := addr.(type) {
	case value.Number:
		if diag := checkRange16(addrSpan, "address", uint32(av)); diag != nil {
			return 0, []span.Diag{*diag}
		}
		word := mnemSt<<24 | conditionBits(modifiers) | srcReg.Register.Encode()<<16 | uint32(av)&0xffff
		return word, nil
	case value.Reg:
		word := mnemStr<<24 | conditionBits(modifiers) | srcReg.Register.Encode()<<16 | av.Register.Encode()<<12
		return word, nil
	case value.RegOffset:
		if diag := checkOffset12(addrSpan, av.Offset); diag != nil {
			return 0, []span.Diag{*diag}
		}
		word := mnemStr<<24 | conditionBits(modifiers) | srcReg.Register.Encode()<<16 | av.Register.Encode()<<12 | av.Offset&0xfff
		return word, nil
	default:
		d := span.NewTypeDiag(addrSpan, "address", []string{"number", "register", "register offset"}, value.TypeName(addr))
		return 0, []span.Diag{d}
	}
}
