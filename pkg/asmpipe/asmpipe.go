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

// Package asmpipe wires the five passes together behind a single
// entry point: a root source id plus injected path-resolution and
// file-loading callbacks, producing 32-bit words plus whatever
// diagnostics accumulated along the way.
package asmpipe

import (
	"github.com/ablomm/cpuasm/pkg/addr"
	"github.com/ablomm/cpuasm/pkg/ast"
	"github.com/ablomm/cpuasm/pkg/emit"
	"github.com/ablomm/cpuasm/pkg/eval"
	"github.com/ablomm/cpuasm/pkg/imports"
	"github.com/ablomm/cpuasm/pkg/span"
)

// Assemble runs passes 1 through 5 against rootID. Diagnostics
// accumulate rather than abort the pipeline: every statement that can
// still be processed after an earlier error is processed, and the
// returned word slice reflects whatever could be emitted.
func Assemble(rootID string, resolve imports.Resolver, load imports.Loader) ([]uint32, []span.Diag) {
	var diags []span.Diag

	files, importDiags := imports.BuildQueue(rootID, resolve, load)
	diags = append(diags, importDiags...)

	byID := make(map[string]*ast.File, len(files))
	for _, f := range files {
		byID[f.SourceID] = f
	}

	for _, f := range files {
		diags = append(diags, addr.Seed(f)...)
	}
	diags = append(diags, addr.Wire(files, byID, resolve)...)
	_, assignDiags := addr.Assign(files, 0)
	diags = append(diags, assignDiags...)

	var words []uint32
	ev := eval.New()
	for _, f := range files {
		w, d := emitBlock(f.Block, ev)
		words = append(words, w...)
		diags = append(diags, d...)
	}
	return words, diags
}

// emitBlock walks a block's statements in order, recursing into
// nested blocks, and concatenates every Operation's and Literal's
// emitted words. Pass 5 produces exactly the word stream pass 4
// already sized: a failed operation still contributes its one word
// (as zero) so every later label address stays valid in the partial
// output. Failed literals contribute nothing, matching the zero words
// pass 4 counted for them.
func emitBlock(block *ast.Block, ev *eval.Evaluator) ([]uint32, []span.Diag) {
	var words []uint32
	var diags []span.Diag
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.Operation:
			word, d := emit.Emit(s, block.Symbols, ev)
			if len(d) != 0 {
				diags = append(diags, d...)
				word = 0
			}
			words = append(words, word)
		case *ast.Literal:
			w, d := emit.EmitLiteral(s, block.Symbols, ev)
			if len(d) != 0 {
				diags = append(diags, d...)
				continue
			}
			words = append(words, w...)
		case *ast.Block:
			w, d := emitBlock(s, ev)
			words = append(words, w...)
			diags = append(diags, d...)
		}
	}
	return words, diags
}
