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

// EmitLiteral packs a Literal's evaluated value: a Number becomes one
// word verbatim; a String is packed four bytes per word, big-endian,
// the final word zero-padded on the right, filling exactly the
// ceil(len/4) words pass 4 already reserved for it.
func EmitLiteral(lit *ast.Literal, table *symtab.Table, ev *eval.Evaluator) ([]uint32, []span.Diag) {
	r, diag := ev.Eval(lit.Expr, table)
	if diag != nil {
		return nil, []span.Diag{*diag}
	}
	if !r.Known() {
		d := span.NewUnknownValueDiag(lit.SpanV, r.WaitingOn)
		return nil, []span.Diag{d}
	}
	switch v := r.Result.(type) {
	case value.Number:
		return []uint32{uint32(v)}, nil
	case value.Str:
		return packString(string(v)), nil
	default:
		d := span.NewTypeDiag(lit.Expr.Span(), "literal", []string{"number", "string"}, value.TypeName(r.Result))
		return nil, []span.Diag{d}
	}
}

func packString(s string) []uint32 {
	words := make([]uint32, (len(s)+3)/4)
	for i := 0; i < len(s); i++ {
		words[i/4] |= uint32(s[i]) << uint(24-8*(i%4))
	}
	return words
}
