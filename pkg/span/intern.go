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

package span

// Interner deduplicates identifier text so that the many copies of a
// name the parser produces all share one backing string; symbol table
// lookups and equality checks stay cheap regardless of how often a
// name is written in source.
type Interner struct {
	strings map[string]*string
}

func NewInterner() *Interner {
	return &Interner{strings: make(map[string]*string)}
}

// Intern returns a canonical *string for s: repeated calls with an
// equal s return the same pointer.
func (in *Interner) Intern(s string) *string {
	if p, ok := in.strings[s]; ok {
		return p
	}
	cp := s
	in.strings[s] = &cp
	return &cp
}
