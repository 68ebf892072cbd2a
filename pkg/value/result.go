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

package value

import (
	"errors"
	"fmt"
)

// Result is the tagged value domain of expression evaluation: every
// expression evaluates to one of these five shapes. A nil Result
// represents an unknown value (a leaf whose Option is empty); callers
// never construct a typed zero value to mean "unknown".
type Result interface {
	isResult()
	String() string
}

type Number uint32

func (Number) isResult()        {}
func (n Number) String() string { return fmt.Sprintf("%d", uint32(n)) }

type Str string

func (Str) isResult()        {}
func (s Str) String() string { return string(s) }

type Reg struct{ Register Register }

func (Reg) isResult()        {}
func (r Reg) String() string { return r.Register.String() }

// RegOffset is Register plus a 32-bit offset interpreted as signed in
// the CPU encoding. Offset 0 always collapses to a bare Reg; see
// normalizeOffset.
type RegOffset struct {
	Register Register
	Offset   uint32
}

func (RegOffset) isResult() {}
func (r RegOffset) String() string {
	return fmt.Sprintf("%s+%d", r.Register, int32(r.Offset))
}

// Indirect wraps any other Result, corresponding to a memory operand
// written `*expr` or `[expr]` in source.
type Indirect struct{ Inner Result }

func (Indirect) isResult()        {}
func (i Indirect) String() string { return "[" + i.Inner.String() + "]" }

func normalizeOffset(r Register, offset uint32) Result {
	if offset == 0 {
		return Reg{Register: r}
	}
	return RegOffset{Register: r, Offset: offset}
}

// Kind tags a Result's shape independent of whether its value is
// known yet. A label reference is Number-shaped long before pass 4
// stamps its address, and pass 4 sizes statements by kind alone where
// it can, so an unknown value still needs to carry its kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindNumber
	KindString
	KindRegister
	KindRegisterOffset
	KindIndirect
)

// KindOf returns the kind of a known result; nil maps to KindUnknown.
func KindOf(r Result) Kind {
	switch r.(type) {
	case Number:
		return KindNumber
	case Str:
		return KindString
	case Reg:
		return KindRegister
	case RegOffset:
		return KindRegisterOffset
	case Indirect:
		return KindIndirect
	default:
		return KindUnknown
	}
}

// TypeName returns the human-readable type tag used in type-mismatch
// diagnostics.
func TypeName(r Result) string {
	switch r.(type) {
	case Number:
		return "number"
	case Str:
		return "string"
	case Reg:
		return "register"
	case RegOffset:
		return "register offset"
	case Indirect:
		return "indirect"
	default:
		return "unknown"
	}
}

// Pos implements unary `+a`: accepts anything, returns it unchanged.
func Pos(a Result) (Result, error) {
	return a, nil
}

// Neg implements unary `-a`: Number only, two's-complement wrapping.
func Neg(a Result) (Result, error) {
	n, ok := a.(Number)
	if !ok {
		return nil, typeErr("number", a)
	}
	return Number(-uint32(n)), nil
}

// Not implements unary `~a`: Number only, bitwise complement.
func Not(a Result) (Result, error) {
	n, ok := a.(Number)
	if !ok {
		return nil, typeErr("number", a)
	}
	return Number(^uint32(n)), nil
}

// Ref implements unary `&a`: Indirect only, unwraps one layer.
func Ref(a Result) (Result, error) {
	ind, ok := a.(Indirect)
	if !ok {
		return nil, typeErr("indirect", a)
	}
	return ind.Inner, nil
}

// Deref implements unary `*a`: accepts anything, wraps it in Indirect.
func Deref(a Result) (Result, error) {
	return Indirect{Inner: a}, nil
}

type domainError struct {
	expected string
	found    Result
}

func (e domainError) Error() string {
	return fmt.Sprintf("expected %s, found %s", e.expected, TypeName(e.found))
}

func typeErr(expected string, found Result) error {
	return domainError{expected: expected, found: found}
}

// ErrDivisionByZero is returned by Div and Rem on a zero right-hand
// side; the evaluator turns it into a diagnostic at the RHS span.
var ErrDivisionByZero = errors.New("division by zero")

// Mul, Div, Rem all require Number operands and wrap on overflow the
// way native uint32 arithmetic already does.
func Mul(a, b Result) (Result, error) {
	an, aok := a.(Number)
	bn, bok := b.(Number)
	if !aok || !bok {
		return nil, typeErr("number, number", pickBad(a, aok, b, bok))
	}
	return Number(uint32(an) * uint32(bn)), nil
}

func Div(a, b Result) (Result, error) {
	an, aok := a.(Number)
	bn, bok := b.(Number)
	if !aok || !bok {
		return nil, typeErr("number, number", pickBad(a, aok, b, bok))
	}
	if bn == 0 {
		return nil, ErrDivisionByZero
	}
	return Number(uint32(an) / uint32(bn)), nil
}

func Rem(a, b Result) (Result, error) {
	an, aok := a.(Number)
	bn, bok := b.(Number)
	if !aok || !bok {
		return nil, typeErr("number, number", pickBad(a, aok, b, bok))
	}
	if bn == 0 {
		return nil, ErrDivisionByZero
	}
	return Number(uint32(an) % uint32(bn)), nil
}

// Add implements the full `a+b` cross-product: number addition wraps;
// a string plus a string or a number, in either order, concatenates
// (numbers stringified in decimal); a string with a register is a type
// error; number+register in either order produces a
// register offset, collapsing to a bare register when the resulting
// offset is zero.
func Add(a, b Result) (Result, error) {
	switch av := a.(type) {
	case Number:
		switch bv := b.(type) {
		case Number:
			return Number(uint32(av) + uint32(bv)), nil
		case Str:
			return Str(av.String() + string(bv)), nil
		case Reg:
			return normalizeOffset(bv.Register, uint32(av)), nil
		case RegOffset:
			return normalizeOffset(bv.Register, uint32(av)+bv.Offset), nil
		}
	case Str:
		switch bv := b.(type) {
		case Number:
			return Str(string(av) + bv.String()), nil
		case Str:
			return Str(string(av) + string(bv)), nil
		}
	case Reg:
		if bn, ok := b.(Number); ok {
			return normalizeOffset(av.Register, uint32(bn)), nil
		}
	case RegOffset:
		if bn, ok := b.(Number); ok {
			return normalizeOffset(av.Register, av.Offset+uint32(bn)), nil
		}
	}
	return nil, typeErr("number+number, string concatenation, or number+register", a)
}

// Sub implements `a-b`: number subtraction wraps; register-minus-
// number and offset-minus-number shift the offset down. A register on
// the right of the minus has no meaning and is rejected.
func Sub(a, b Result) (Result, error) {
	switch av := a.(type) {
	case Number:
		if bn, ok := b.(Number); ok {
			return Number(uint32(av) - uint32(bn)), nil
		}
	case Reg:
		if bn, ok := b.(Number); ok {
			return normalizeOffset(av.Register, uint32(-int32(bn))), nil
		}
	case RegOffset:
		if bn, ok := b.(Number); ok {
			return normalizeOffset(av.Register, av.Offset-uint32(bn)), nil
		}
	}
	return nil, typeErr("number-number or register-number", a)
}

func numericBinary(a, b Result, f func(x, y uint32) uint32) (Result, error) {
	an, aok := a.(Number)
	bn, bok := b.(Number)
	if !aok || !bok {
		return nil, typeErr("number, number", pickBad(a, aok, b, bok))
	}
	return Number(f(uint32(an), uint32(bn))), nil
}

func Shl(a, b Result) (Result, error) {
	return numericBinary(a, b, func(x, y uint32) uint32 { return x << (y & 0x1f) })
}

func Shr(a, b Result) (Result, error) {
	return numericBinary(a, b, func(x, y uint32) uint32 { return x >> (y & 0x1f) })
}

// Ashr is the arithmetic (signed) right shift variant, `a>>>b`.
func Ashr(a, b Result) (Result, error) {
	return numericBinary(a, b, func(x, y uint32) uint32 { return uint32(int32(x) >> (y & 0x1f)) })
}

func And(a, b Result) (Result, error) {
	return numericBinary(a, b, func(x, y uint32) uint32 { return x & y })
}

func Or(a, b Result) (Result, error) {
	return numericBinary(a, b, func(x, y uint32) uint32 { return x | y })
}

func Xor(a, b Result) (Result, error) {
	return numericBinary(a, b, func(x, y uint32) uint32 { return x ^ y })
}

func pickBad(a Result, aok bool, b Result, bok bool) Result {
	if !aok {
		return a
	}
	return b
}
