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

// Package value defines the polymorphic value domain the expression
// evaluator produces and the code emitter consumes.
package value

// Register names one of the sixteen 4-bit register fields encodable
// in an instruction word. Like the lexer's tokenKind, this is a
// small wrapped-int type rather than a bare iota so a Register can
// never be confused with an arbitrary int at a call site.
type Register struct{ n int }

func (r Register) Encode() uint32 { return uint32(r.n) }
func (r Register) Number() int    { return r.n }

var (
	R0     = Register{0}
	R1     = Register{1}
	R2     = Register{2}
	R3     = Register{3}
	R4     = Register{4}
	R5     = Register{5}
	R6     = Register{6}
	R7     = Register{7}
	R8     = Register{8}
	R9     = Register{9}
	R10    = Register{10}
	FP     = Register{11}
	Status = Register{12}
	SP     = Register{13}
	LR     = Register{14}
	PC     = Register{15}
)

var registerNames = map[string]Register{
	"r0": R0, "r1": R1, "r2": R2, "r3": R3, "r4": R4,
	"r5": R5, "r6": R6, "r7": R7, "r8": R8, "r9": R9,
	"r10": R10, "fp": FP, "status": Status, "sp": SP, "lr": LR, "pc": PC,
}

var registerStrings = func() map[Register]string {
	m := make(map[Register]string, len(registerNames))
	for name, reg := range registerNames {
		m[reg] = name
	}
	return m
}()

// LookupRegister resolves source text like "r3" or "fp" to its
// Register; the parser checks this before treating an identifier as
// an ordinary symbol name.
func LookupRegister(name string) (Register, bool) {
	r, ok := registerNames[name]
	return r, ok
}

func (r Register) String() string {
	if s, ok := registerStrings[r]; ok {
		return s
	}
	return "r?"
}
