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

// Package imports implements pass 1, the import graph builder: a
// depth-first traversal that produces files in post-order so every
// exporter precedes its importers in the queue, with path resolution
// and file loading injected by the caller.
package imports

import (
	"fmt"

	"github.com/ablomm/cpuasm/pkg/ast"
	"github.com/ablomm/cpuasm/pkg/span"
)

// Resolver maps an import path, relative to the file that imports it,
// to a canonical source id. Path resolution lives with the caller;
// the core only needs ids to be stable and comparable.
type Resolver func(fromID, importPath string) (string, error)

// Loader parses a source id into an AST. The core drives this
// callback on demand, once per id.
type Loader func(id string) (*ast.File, []span.Diag, error)

// builder runs one BuildQueue traversal. seen caches every id ever
// reached (a nil file marks one that failed to load) so cycles and
// diamond dependencies short-circuit instead of re-loading.
type builder struct {
	resolve Resolver
	load    Loader
	seen    map[string]*ast.File
	order   []*ast.File
	diags   []span.Diag
}

// BuildQueue performs the pass 1 depth-first traversal from rootID
// and returns files in post-order (dependencies first, no duplicates)
// plus any diagnostics accumulated along the way: unresolvable paths,
// I/O errors, parse errors.
func BuildQueue(rootID string, resolve Resolver, load Loader) ([]*ast.File, []span.Diag) {
	b := &builder{resolve: resolve, load: load, seen: make(map[string]*ast.File)}
	b.visit(rootID, span.Span{})
	return b.order, b.diags
}

func (b *builder) visit(id string, fromSpan span.Span) {
	if _, ok := b.seen[id]; ok {
		// Cycle or diamond dependency: short-circuit. A cycle is not
		// fatal for import resolution itself; the exporter is already
		// queued (or being queued by an ancestor frame, in which case
		// it will still appear before any importer that isn't itself
		// part of the cycle).
		return
	}
	// Mark as seen *before* recursing into this file's own imports so
	// a cycle back to id resolves to "already seen" rather than
	// recursing forever.
	b.seen[id] = nil

	file, fileDiags, err := b.load(id)
	if err != nil {
		b.diags = append(b.diags, span.New(span.Error, fromSpan, fmt.Sprintf("cannot load %q: %v", id, err)))
		return
	}
	b.diags = append(b.diags, fileDiags...)
	b.seen[id] = file
	if file == nil {
		return
	}

	for _, imp := range collectImports(file.Block) {
		target, err := b.resolve(id, imp.File)
		if err != nil {
			b.diags = append(b.diags, span.New(span.Error, imp.FileSpan, fmt.Sprintf("cannot resolve import %q: %v", imp.File, err)))
			continue
		}
		b.visit(target, imp.FileSpan)
	}

	b.order = append(b.order, file)
}

// collectImports walks a block and its nested blocks collecting every
// Import statement, in the order they're written.
func collectImports(block *ast.Block) []*ast.Import {
	var out []*ast.Import
	if block == nil {
		return out
	}
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.Import:
			out = append(out, s)
		case *ast.Block:
			out = append(out, collectImports(s)...)
		}
	}
	return out
}
