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

package symtab

import (
	"testing"

	"github.com/ablomm/cpuasm/pkg/span"
)

func check(t *testing.T, a1, a2 any) {
	t.Helper()
	if a1 != a2 {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", a1, a2)
	}
}

func TestDeclareAndLookup(t *testing.T) {
	tbl := New(nil)
	_, _, ok := tbl.Declare("a", span.Span{}, false)
	check(t, ok, true)

	entry, ok := tbl.Lookup("a")
	check(t, ok, true)
	check(t, entry.Cell.Name, "a")
	check(t, entry.Cell.IsLabel, false)
}

func TestDeclareDuplicateFails(t *testing.T) {
	tbl := New(nil)
	first, _, ok := tbl.Declare("a", span.Span{}, false)
	check(t, ok, true)

	existing, blame, ok := tbl.Declare("a", span.Span{}, false)
	check(t, ok, false)
	check(t, existing, first)
	check(t, blame, first)
}

func TestLookupIsLexical(t *testing.T) {
	parent := New(nil)
	parent.Declare("outer", span.Span{}, false)
	child := New(parent)
	child.Declare("inner", span.Span{}, false)

	_, ok := child.Lookup("outer")
	check(t, ok, true)
	_, ok = parent.Lookup("inner")
	check(t, ok, false)
}

func TestLocalLookupIgnoresParent(t *testing.T) {
	parent := New(nil)
	parent.Declare("outer", span.Span{}, false)
	child := New(parent)

	_, ok := child.LocalLookup("outer")
	check(t, ok, false)
	_, ok = child.Lookup("outer")
	check(t, ok, true)
}

func TestShadowingAllowed(t *testing.T) {
	parent := New(nil)
	parent.Declare("x", span.Span{}, false)
	child := New(parent)
	_, _, ok := child.Declare("x", span.Span{}, false)
	check(t, ok, true)
}

func TestAliasSharesCell(t *testing.T) {
	lib := New(nil)
	libEntry, _, _ := lib.Declare("entry", span.Span{}, true)

	main := New(nil)
	_, _, ok := main.Alias("e", libEntry.Cell, span.Span{}, span.Span{})
	check(t, ok, true)

	aliased, ok := main.Lookup("e")
	check(t, ok, true)
	check(t, aliased.Cell, libEntry.Cell)
}

func TestAliasCollidesWithLocalDefinition(t *testing.T) {
	lib := New(nil)
	libEntry, _, _ := lib.Declare("entry", span.Span{}, true)

	main := New(nil)
	main.Declare("e", span.Span{}, false)
	_, _, ok := main.Alias("e", libEntry.Cell, span.Span{}, span.Span{})
	check(t, ok, false)
}

func TestMarkExportedAndDuplicateExport(t *testing.T) {
	tbl := New(nil)
	tbl.Declare("entry", span.Span{}, true)

	_, ok := tbl.MarkExported("entry", span.Span{})
	check(t, ok, true)
	if _, exported := tbl.Exports["entry"]; !exported {
		t.Fatalf("expected entry to be in the export map")
	}

	_, ok = tbl.MarkExported("entry", span.Span{})
	check(t, ok, false)
}

func TestMarkExportedUnknownName(t *testing.T) {
	tbl := New(nil)
	_, ok := tbl.MarkExported("nowhere", span.Span{})
	check(t, ok, false)
}

func TestNamesPreservesInsertionOrder(t *testing.T) {
	tbl := New(nil)
	tbl.Declare("c", span.Span{}, false)
	tbl.Declare("a", span.Span{}, false)
	tbl.Declare("b", span.Span{}, false)

	names := tbl.Names()
	if len(names) != 3 || names[0] != "c" || names[1] != "a" || names[2] != "b" {
		t.Fatalf("unexpected order: %v", names)
	}
}

func TestBubbleExport(t *testing.T) {
	parent := New(nil)
	child := New(parent)
	childEntry, _, _ := child.Declare("inner", span.Span{}, true)
	child.MarkExported("inner", span.Span{})

	bubbled, ok := parent.BubbleExport("inner", childEntry)
	check(t, ok, true)
	check(t, bubbled.Cell, childEntry.Cell)
	if _, exported := parent.Exports["inner"]; !exported {
		t.Fatalf("expected the bubbled name to be in the parent's export map")
	}
}

func TestBubbleExportCollision(t *testing.T) {
	parent := New(nil)
	parent.Declare("inner", span.Span{}, false)
	child := New(parent)
	childEntry, _, _ := child.Declare("inner", span.Span{}, true)

	_, ok := parent.BubbleExport("inner", childEntry)
	check(t, ok, false)
}
