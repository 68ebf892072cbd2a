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

// emitPush and emitPop share a shape: one register operand, placed at
// [19:16].
func emitPush(op *ast.Operation, table *symtab.Table, ev *eval.Evaluator) (uint32, []span.Diag) {
	return emitRegOnly(op, table, ev, mnemPush)
}

func emitPop(op *ast.Operation, table *symtab.Table, ev *eval.Evaluator) (uint32, []span.Diag) {
	return emitRegOnly(op, table, ev, mnemPop)
}

func emitRegOnly(op *ast.Operation, table *symtab.Table, ev *eval.Evaluator, mnemonicCode uint32) (uint32, []span.Diag) {
	if diag := checkArity(op, 1); diag != nil {
		return 0, []span.Diag{*diag}
	}
	r, diag := evalOperand(ev, table, op.Operands[0])
	if diag != nil {
		return 0, []span.Diag{*diag}
	}
	reg, ok := r.(value.Reg)
	if !ok {
		d := span.NewTypeDiag(op.Operands[0].Span(), "operand", []string{"register"}, value.TypeName(r))
		return 0, []span.Diag{d}
	}
	word := mnemonicCode<<24 | conditionBits(op.Mnemonic.Modifiers) | reg.Register.Encode()<<16
	return word, nil
}
