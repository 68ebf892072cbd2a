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

// Package addr implements passes 2 through 4: symbol seeding, import
// wiring, and address assignment. All three live together because,
// like pkg/eval, they need to import both pkg/ast and pkg/symtab;
// putting them in pkg/symtab itself would create an ast<->symtab
// import cycle (see pkg/symtab's package doc).
package addr

import (
	"fmt"
	"sort"

	"github.com/ablomm/cpuasm/pkg/ast"
	"github.com/ablomm/cpuasm/pkg/span"
	"github.com/ablomm/cpuasm/pkg/symtab"
)

// Seed runs pass 2 over file: it allocates file.Block's table (and
// every nested block's table), inserting one entry per label and
// assignment, and bubbles nested-block exports up to their parent.
func Seed(file *ast.File) []span.Diag {
	var diags []span.Diag
	seedBlock(file.Block, nil, &diags)
	return diags
}

func seedBlock(block *ast.Block, parent *ast.Block, diags *[]span.Diag) {
	if block.Symbols == nil {
		var parentTable *symtab.Table
		if parent != nil {
			parentTable = parent.Symbols
		}
		block.Symbols = symtab.New(parentTable)
	}
	block.Parent = parent
	table := block.Symbols

	// Standalone export lists are deferred until the whole block has
	// been walked, so `export foo;` may precede `foo:`.
	var exports []*ast.Export
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.Label:
			_, existing, ok := table.Declare(s.Name, s.SpanV, true)
			if !ok {
				*diags = append(*diags, span.NewDuplicateDiag(s.Name, existing.KeySpan, s.SpanV))
				break
			}
			if s.Exported {
				if _, ok := table.MarkExported(s.Name, s.SpanV); !ok {
					*diags = append(*diags, span.New(span.Error, s.SpanV, fmt.Sprintf("%q already exported", s.Name)))
				}
			}
		case *ast.Assignment:
			entry, existing, ok := table.Declare(s.Name, s.SpanV, false)
			if !ok {
				*diags = append(*diags, span.NewDuplicateDiag(s.Name, existing.KeySpan, s.SpanV))
				break
			}
			entry.Cell.Expr = s.Expr
			entry.Cell.ExprSpan = s.Expr.Span()
			entry.Cell.Table = table
			if s.Exported {
				if _, ok := table.MarkExported(s.Name, s.SpanV); !ok {
					*diags = append(*diags, span.New(span.Error, s.SpanV, fmt.Sprintf("%q already exported", s.Name)))
				}
			}
		case *ast.Export:
			exports = append(exports, s)
		case *ast.Block:
			seedBlock(s, block, diags)
			bubble(table, s.Symbols, diags)
		case *ast.Import:
			// Entries are inserted in pass 3 (Wire), once the
			// exporter's table is available.
		case *ast.Operation, *ast.Literal:
			// No symbol-table effect.
		}
	}

	for _, exp := range exports {
		for _, name := range exp.Names {
			if _, ok := table.LocalLookup(name); !ok {
				*diags = append(*diags, span.NewUndefinedDiag(name, exp.SpanV))
				continue
			}
			if _, ok := table.MarkExported(name, exp.SpanV); !ok {
				*diags = append(*diags, span.New(span.Error, exp.SpanV, fmt.Sprintf("%q already exported", name)))
			}
		}
	}
}

// bubble copies every export of child up into parent under the same
// name and cell, so a nested block's exports reach the file's root
// export map. A name collision at the parent is a duplicate-
// definition error, same as any other collision.
func bubble(parent *symtab.Table, child *symtab.Table, diags *[]span.Diag) {
	if child == nil {
		return
	}
	for _, name := range sortedExportNames(child.Exports) {
		entry := child.Exports[name]
		if _, ok := parent.BubbleExport(name, entry); !ok {
			if existing, ok := parent.LocalLookup(name); ok {
				*diags = append(*diags, span.NewDuplicateDiag(name, existing.KeySpan, entry.KeySpan))
			}
		}
	}
}

// sortedExportNames fixes an iteration order for an export map, so
// diagnostics and alias insertion are deterministic run to run.
func sortedExportNames(exports map[string]*symtab.Entry) []string {
	names := make([]string, 0, len(exports))
	for name := range exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
