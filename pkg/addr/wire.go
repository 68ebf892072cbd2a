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
	"fmt"

	"github.com/ablomm/cpuasm/pkg/ast"
	"github.com/ablomm/cpuasm/pkg/imports"
	"github.com/ablomm/cpuasm/pkg/span"
	"github.com/ablomm/cpuasm/pkg/symtab"
)

// Wire runs pass 3 over files (already Seed-ed, in post-order so every
// importer's exporters have already had Seed run on them): for each
// Import statement it resolves the target file, looks up the
// requested names in the target's export map, and inserts entries
// into the importing block's table that share the exporter's cells.
func Wire(files []*ast.File, byID map[string]*ast.File, resolve imports.Resolver) []span.Diag {
	var diags []span.Diag
	for _, file := range files {
		wireBlock(file, file.Block, byID, resolve, &diags)
	}
	return diags
}

func wireBlock(file *ast.File, block *ast.Block, byID map[string]*ast.File, resolve imports.Resolver, diags *[]span.Diag) {
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.Import:
			wireImport(file, block, s, byID, resolve, diags)
		case *ast.Block:
			wireBlock(file, s, byID, resolve, diags)
		}
	}
}

func wireImport(file *ast.File, block *ast.Block, imp *ast.Import, byID map[string]*ast.File, resolve imports.Resolver, diags *[]span.Diag) {
	targetID, err := resolve(file.SourceID, imp.File)
	if err != nil {
		*diags = append(*diags, span.New(span.Error, imp.FileSpan, fmt.Sprintf("cannot resolve import %q: %v", imp.File, err)))
		return
	}
	target, ok := byID[targetID]
	if !ok {
		*diags = append(*diags, span.New(span.Error, imp.FileSpan, fmt.Sprintf("import target %q was not loaded", imp.File)))
		return
	}
	exports := target.Block.Symbols.Exports

	switch spec := imp.Specifier.(type) {
	case ast.NamedImport:
		for _, n := range spec.Names {
			exported, ok := exports[n.Name]
			if !ok {
				*diags = append(*diags, span.NewNotExportedDiag(n.Name, n.Span))
				continue
			}
			alias := n.Alias
			importSpan := imp.SpanV
			if alias == "" {
				alias = n.Name
			} else {
				// ImportSpan is populated only for non-aliased
				// imports; an alias has its own defining span.
				importSpan = span.Span{}
			}
			insertAlias(block, alias, exported, n.Span, importSpan, false, diags)
		}
	case ast.BlobImport:
		for _, name := range sortedExportNames(exports) {
			insertAlias(block, name, exports[name], imp.SpanV, imp.SpanV, true, diags)
		}
	}
}

func insertAlias(block *ast.Block, name string, exported *symtab.Entry, keySpan, importSpan span.Span, blob bool, diags *[]span.Diag) {
	if existing, ok := block.Symbols.LocalLookup(name); ok {
		d := span.NewDuplicateDiag(name, existing.KeySpan, keySpan)
		if blob {
			d = d.WithHelp(fmt.Sprintf("import %q explicitly under an alias to avoid the clash", name))
		}
		*diags = append(*diags, d)
		return
	}
	block.Symbols.Alias(name, exported.Cell, keySpan, importSpan)
}
