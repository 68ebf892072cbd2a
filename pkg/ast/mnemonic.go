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

package ast

// Mnemonic is the closed set of instruction names, wrapped the way
// the lexer wraps its token kinds so a Mnemonic can't be confused
// with a bare int.
type Mnemonic struct{ name string }

func (m Mnemonic) String() string { return m.name }

func (m Mnemonic) IsALU() bool { _, ok := aluOpIndex[m.name]; return ok }

var (
	Nop  = Mnemonic{"nop"}
	Ld   = Mnemonic{"ld"}
	St   = Mnemonic{"st"}
	Push = Mnemonic{"push"}
	Pop  = Mnemonic{"pop"}
	Int  = Mnemonic{"int"}

	Pass = Mnemonic{"pass"}
	And  = Mnemonic{"and"}
	Or   = Mnemonic{"or"}
	Xor  = Mnemonic{"xor"}
	Not  = Mnemonic{"not"}
	Add  = Mnemonic{"add"}
	Addc = Mnemonic{"addc"}
	Sub  = Mnemonic{"sub"}
	Subb = Mnemonic{"subb"}
	Neg  = Mnemonic{"neg"}
	Shl  = Mnemonic{"shl"}
	Shr  = Mnemonic{"shr"}
	Ashr = Mnemonic{"ashr"}
)

// aluOpIndex gives each ALU mnemonic's low nibble within the 0xF0..
// family; pkg/emit shifts this into the full mnemonic byte.
var aluOpIndex = map[string]uint32{
	"pass": 0x0, "and": 0x1, "or": 0x2, "xor": 0x3, "not": 0x4,
	"add": 0x5, "addc": 0x6, "sub": 0x7, "subb": 0x8, "neg": 0x9,
	"shl": 0xa, "shr": 0xb, "ashr": 0xc,
}

func (m Mnemonic) ALUOpIndex() (uint32, bool) {
	idx, ok := aluOpIndex[m.name]
	return idx, ok
}

var nonALUCode = map[string]uint32{
	"nop": 0, "ld": 1, "st": 4, "push": 6, "pop": 7, "int": 8,
}

func (m Mnemonic) NonALUCode() (uint32, bool) {
	code, ok := nonALUCode[m.name]
	return code, ok
}

var mnemonicByName = func() map[string]Mnemonic {
	all := []Mnemonic{Nop, Ld, St, Push, Pop, Int, Pass, And, Or, Xor, Not, Add, Addc, Sub, Subb, Neg, Shl, Shr, Ashr}
	m := make(map[string]Mnemonic, len(all))
	for _, mn := range all {
		m[mn.name] = mn
	}
	return m
}()

func LookupMnemonic(name string) (Mnemonic, bool) {
	m, ok := mnemonicByName[name]
	return m, ok
}

// Condition is one of the ten comparison tags a non-ALU instruction
// may be suffixed with.
type Condition struct{ code uint32 }

func (c Condition) Encode() uint32 { return c.code }

var (
	CondEQ  = Condition{1}
	CondNE  = Condition{2}
	CondLTU = Condition{3}
	CondGTU = Condition{4}
	CondLEU = Condition{5}
	CondGEU = Condition{6}
	CondLTS = Condition{7}
	CondGTS = Condition{8}
	CondLES = Condition{9}
	CondGES = Condition{10}
)

var conditionByName = map[string]Condition{
	"eq": CondEQ, "ne": CondNE, "ltu": CondLTU, "gtu": CondGTU,
	"leu": CondLEU, "geu": CondGEU, "lts": CondLTS, "gts": CondGTS,
	"les": CondLES, "ges": CondGES,
}

func LookupCondition(name string) (Condition, bool) {
	c, ok := conditionByName[name]
	return c, ok
}

// AluModifierKind is `.s` (Load|SetStatus) or `.t` (SetStatus).
type AluModifierKind struct{ s bool }

var (
	AluModS = AluModifierKind{true}
	AluModT = AluModifierKind{false}
)

// ALU-op flag bits occupying [23:20] of the instruction word.
const (
	ALUFlagSetStatus uint32 = 1 << 20
	ALUFlagLoad      uint32 = 1 << 21
	ALUFlagReverse   uint32 = 1 << 22
	ALUFlagImmediate uint32 = 1 << 23
)

func (k AluModifierKind) Encode() uint32 {
	if k.s {
		return ALUFlagLoad | ALUFlagSetStatus
	}
	return ALUFlagSetStatus
}

// Modifier is either a condition suffix or an ALU status-flag suffix.
type Modifier struct {
	Cond   *Condition
	ALUMod *AluModifierKind
}

func ConditionModifier(c Condition) Modifier { return Modifier{Cond: &c} }

func AluModifierModifier(k AluModifierKind) Modifier { return Modifier{ALUMod: &k} }

// FullMnemonic is the Mnemonic plus its modifier list.
type FullMnemonic struct {
	Mnemonic  Mnemonic
	Modifiers []Modifier
}
