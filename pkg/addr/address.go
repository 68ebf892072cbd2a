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

package addr

import (
	"github.com/ablomm/cpuasm/pkg/ast"
	"github.com/ablomm/cpuasm/pkg/eval"
	"github.com/ablomm/cpuasm/pkg/span"
	"github.com/ablomm/cpuasm/pkg/symtab"
	"github.com/ablomm/cpuasm/pkg/value"
)

// Assign runs pass 4 over files, in queue order, with a single
// address counter monotonic across files. It stamps every Label's
// cell with its concrete address and returns the address one past the
// end of the stream, plus any diagnostics (unresolvable literal
// sizes).
func Assign(files []*ast.File, startAddress uint32) (uint32, []span.Diag) {
	addr := startAddress
	var diags []span.Diag
	ev := eval.New()
	for _, file := range files {
		if file.StartAddress != nil {
			addr = *file.StartAddress
		}
		addr = assignBlock(file.Block, addr, ev, &diags)
	}
	return addr, diags
}

func assignBlock(block *ast.Block, addr uint32, ev *eval.Evaluator, diags *[]span.Diag) uint32 {
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.Label:
			entry, _ := block.Symbols.Lookup(s.Name)
			if entry != nil {
				entry.Cell.Result = value.Number(addr)
			}
		case *ast.Block:
			addr = assignBlock(s, addr, ev, diags)
		case *ast.Operation:
			addr += 1
		case *ast.Literal:
			words, diag := literalWordCount(s, block.Symbols, ev)
			if diag != nil {
				*diags = append(*diags, *diag)
			}
			addr += words
		}
	}
	return addr
}

// literalWordCount evaluates a Literal's expression to determine its
// word count: a Number is one word; a String is ceil(len/4) words.
// A number literal is one word no matter what the number turns out to
// be, so a still-pending value with a Number shape (a forward label
// reference) sizes fine and resolves at emit time. Only a string's
// size needs the value itself — its length could depend on a label
// address that in turn depends on this statement's size. That case,
// and a shape that can't be pinned down at all, get the "unknown
// value of expression" diagnostic and contribute zero words so later
// addresses are merely wrong rather than additionally ambiguous.
func literalWordCount(lit *ast.Literal, table *symtab.Table, ev *eval.Evaluator) (uint32, *span.Diag) {
	r, diag := ev.Eval(lit.Expr, table)
	if diag != nil {
		return 0, diag
	}
	if !r.Known() {
		if r.Kind == value.KindNumber {
			return 1, nil
		}
		d := span.NewUnknownValueDiag(lit.SpanV, r.WaitingOn)
		return 0, &d
	}
	switch v := r.Result.(type) {
	case value.Number:
		return 1, nil
	case value.Str:
		n := len(string(v))
		return uint32((n + 3) / 4), nil
	default:
		d := span.NewTypeDiag(lit.Expr.Span(), "literal", []string{"number", "string"}, value.TypeName(r.Result))
		return 0, &d
	}
}
