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

// Package span carries source locations and interned identifier text
// through every later pass, so that diagnostics can always point back
// at the byte range that caused them without holding onto source text.
package span

// Span is a half-open byte range [Start, End) within the file named
// by SourceID. Spans are plain values: no ownership graph, freely
// copied and compared.
type Span struct {
	SourceID string
	Start    int
	End      int
}

// Join returns the smallest span covering both a and b. Both must
// share a SourceID; if they don't, a is returned unchanged (callers
// never join spans across files).
func Join(a, b Span) Span {
	if a.SourceID != b.SourceID {
		return a
	}
	start, end := a.Start, a.End
	if b.Start < start {
		start = b.Start
	}
	if b.End > end {
		end = b.End
	}
	return Span{SourceID: a.SourceID, Start: start, End: end}
}
