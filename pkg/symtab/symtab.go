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

// Package symtab implements the hierarchical, forward-reference
// tolerant symbol table: nested scopes with lexical lookup, shared
// aliasable cells, and a per-file export map.
//
// Cell.Expr is stored as `any` rather than as an ast.Expression so
// that this package never imports pkg/ast: pkg/ast embeds a *Table on
// every Block, and pkg/eval (which imports both) performs the type
// assertion back to ast.Expression.
package symtab

import (
	"github.com/ablomm/cpuasm/pkg/span"
	"github.com/ablomm/cpuasm/pkg/value"
)

// Cell is the shared, mutable state behind a symbol. Every import of
// the same exported name, aliased or not, shares the same *Cell, so
// mutating Result through any alias is visible through all of them.
type Cell struct {
	Name string

	// Expr is the lazily-stored defining expression for an
	// Assignment entry (an ast.Expression, asserted by pkg/eval).
	// Nil for Label entries, which are stamped directly into Result
	// by pkg/addr instead of being evaluated.
	Expr any

	// ExprSpan is the span of Expr, recorded when pass 2 seeds the
	// cell. Cycle diagnostics label identifier spans, not this one.
	ExprSpan span.Span

	// Table is the table this cell's Expr must be evaluated against
	// (the scope it was declared in), independent of how many other
	// tables later alias this same cell via imports.
	Table *Table

	// Result holds the cell's resolved value once known. Once a
	// Label's cell is stamped in pass 4 it is the label's address
	// and never changes again. Nil means "not yet resolved".
	Result value.Result

	// IsLabel distinguishes a Label entry (addressed by pass 4) from
	// an Assignment entry (evaluated lazily by pkg/eval on demand).
	IsLabel bool
}

// Entry is one row of a Table: the shared Cell plus the spans that
// are local to *this* table (a cell may be entered into several
// tables via aliasing, each with its own KeySpan/ImportSpan/ExportSpan).
type Entry struct {
	Cell       *Cell
	KeySpan    span.Span
	ImportSpan span.Span // populated only for non-aliased imports
	ExportSpan span.Span // populated only for exported symbols
}

// Table maps identifiers to entries, with an optional parent for
// lexical lookup.
type Table struct {
	entries map[string]*Entry
	order   []string
	Parent  *Table

	// Exports is the file-level export map populated by pass 2;
	// importers consult only the root table of a file, but
	// nested-block exports bubble up to it.
	Exports map[string]*Entry
}

func New(parent *Table) *Table {
	return &Table{
		entries: make(map[string]*Entry),
		Parent:  parent,
		Exports: make(map[string]*Entry),
	}
}

// Declare inserts a brand-new cell under name, reporting ok=false if
// name is already defined in *this* table (shadowing a parent's entry
// is fine). existing is the entry to blame in a duplicate-definition
// diagnostic.
func (t *Table) Declare(name string, keySpan span.Span, isLabel bool) (entry *Entry, existing *Entry, ok bool) {
	if existing, ok := t.entries[name]; ok {
		return existing, existing, false
	}
	cell := &Cell{Name: name, IsLabel: isLabel, Table: t}
	e := &Entry{Cell: cell, KeySpan: keySpan}
	t.entries[name] = e
	t.order = append(t.order, name)
	return e, nil, true
}

// Alias inserts an entry that shares cell with an existing one (an
// imported symbol). Fails the same way Declare does if name collides
// with a local definition.
func (t *Table) Alias(name string, cell *Cell, keySpan, importSpan span.Span) (*Entry, *Entry, bool) {
	if existing, ok := t.entries[name]; ok {
		return existing, existing, false
	}
	e := &Entry{Cell: cell, KeySpan: keySpan, ImportSpan: importSpan}
	t.entries[name] = e
	t.order = append(t.order, name)
	return e, nil, true
}

// MarkExported records that name is exported from this table, failing
// if it is already in the export set.
func (t *Table) MarkExported(name string, exportSpan span.Span) (*Entry, bool) {
	entry, ok := t.entries[name]
	if !ok {
		return nil, false
	}
	if _, already := t.Exports[name]; already {
		return entry, false
	}
	entry.ExportSpan = exportSpan
	t.Exports[name] = entry
	return entry, true
}

// Lookup implements lexical scoping: check this table, then walk
// parents.
func (t *Table) Lookup(name string) (*Entry, bool) {
	for tbl := t; tbl != nil; tbl = tbl.Parent {
		if e, ok := tbl.entries[name]; ok {
			return e, true
		}
	}
	return nil, false
}

// LocalLookup checks only this table, used by pass 3 to detect a
// collision with a strictly local definition before aliasing an
// import in.
func (t *Table) LocalLookup(name string) (*Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

// Names returns declared names in insertion order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// BubbleExport re-exports name (already exported from a nested
// block's table) into the parent table under the same cell, so
// exports originating in nested scopes reach the file's root export
// map.
func (t *Table) BubbleExport(name string, child *Entry) (*Entry, bool) {
	if existing, ok := t.entries[name]; ok {
		return existing, false
	}
	entry := &Entry{Cell: child.Cell, KeySpan: child.KeySpan, ExportSpan: child.ExportSpan}
	t.entries[name] = entry
	t.order = append(t.order, name)
	t.Exports[name] = entry
	return entry, true
}
