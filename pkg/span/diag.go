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

import "fmt"

// Severity distinguishes fatal problems from advisory ones. The core
// never aborts on a Warning; callers decide what to do with them.
type Severity int

const (
	Error Severity = iota
	Warning
)

// Label attaches explanatory text to a secondary span, so a single
// diagnostic can point at several places at once (both halves of a
// duplicate definition, every span on a reference cycle).
type Label struct {
	Span Span
	Text string
}

// Diag is a structured diagnostic: a primary span, a message, zero or
// more secondary labels, free-text notes, and an optional help
// string. Nothing in this package renders it; the renderer is an
// external collaborator.
type Diag struct {
	Severity Severity
	Message  string
	Primary  Span
	Labels   []Label
	Notes    []string
	Help     string
}

func (d Diag) Error() string {
	return d.Message
}

func New(severity Severity, primary Span, message string) Diag {
	return Diag{Severity: severity, Primary: primary, Message: message}
}

func (d Diag) WithLabel(s Span, text string) Diag {
	d.Labels = append(d.Labels, Label{Span: s, Text: text})
	return d
}

func (d Diag) WithNote(note string) Diag {
	d.Notes = append(d.Notes, note)
	return d
}

func (d Diag) WithHelp(help string) Diag {
	d.Help = help
	return d
}

// NewArityDiag reports an operand/argument count mismatch.
func NewArityDiag(primary Span, object string, expected []int, found int) Diag {
	return New(Error, primary, fmt.Sprintf("expected %d %s, found %d", expectedOne(expected), object, found)).
		WithNote(fmt.Sprintf("acceptable counts: %v", expected))
}

func expectedOne(expected []int) int {
	if len(expected) == 0 {
		return 0
	}
	return expected[0]
}

// NewTypeDiag reports an operand of the wrong kind, naming the set of
// kinds that would have been accepted.
func NewTypeDiag(primary Span, object string, expected []string, found string) Diag {
	return New(Error, primary, fmt.Sprintf("expected %s of type %v, found %s", object, expected, found))
}

// NewDuplicateDiag reports a redefinition: both the first and the
// conflicting definition are labelled.
func NewDuplicateDiag(name string, first, second Span) Diag {
	return New(Error, second, fmt.Sprintf("%q already defined", name)).
		WithLabel(first, "first defined here").
		WithLabel(second, "redefined here")
}

func NewUndefinedDiag(name string, at Span) Diag {
	return New(Error, at, fmt.Sprintf("%q is not defined", name))
}

func NewNotExportedDiag(name string, at Span) Diag {
	return New(Error, at, fmt.Sprintf("%q is not exported", name))
}

// NewCycleDiag reports a reference cycle found while resolving an
// identifier, labelling every span on the cycle.
func NewCycleDiag(primary Span, cycle []Label) Diag {
	d := New(Error, primary, "infinite loop in expression")
	for _, l := range cycle {
		d = d.WithLabel(l.Span, l.Text)
	}
	return d
}

// NewRangeDiag reports an immediate or offset outside its encoding
// window.
func NewRangeDiag(primary Span, what string, value int64, lo, hi int64) Diag {
	return New(Error, primary, fmt.Sprintf("%s %d out of range [%d, %d)", what, value, lo, hi))
}

// NewUnknownValueDiag reports a size- or value-affecting expression
// that could not be resolved, labelling every waiting-on span.
func NewUnknownValueDiag(primary Span, waitingOn []Label) Diag {
	d := New(Error, primary, "unknown value of expression")
	for _, l := range waitingOn {
		d = d.WithLabel(l.Span, l.Text)
	}
	return d
}

func NewDivisionByZeroDiag(at Span) Diag {
	return New(Error, at, "division by zero")
}
