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

// Package ast defines the sum-of-products syntax tree the core
// consumes. The core does not care where a tree comes from; pkg/parse
// is a separate, optional front end that builds one from source text
// for the CLI to use.
package ast

import (
	"github.com/ablomm/cpuasm/pkg/span"
	"github.com/ablomm/cpuasm/pkg/symtab"
)

// File is the root of one source unit's tree: a source id, an
// optional explicit start address, and its top-level Block.
type File struct {
	SourceID     string
	StartAddress *uint32
	Block        *Block
}

// Block groups an ordered list of statements and owns a symbol table;
// nested blocks point back at their enclosing block's table as
// Symbols.Parent.
type Block struct {
	SpanV      span.Span
	Statements []Statement
	Symbols    *symtab.Table
	Parent     *Block
}

// Statement is a closed sum: Block, Operation, Label, Assignment,
// Literal, Export, Import.
type Statement interface {
	isStatement()
	Span() span.Span
}

type Label struct {
	SpanV    span.Span
	Name     string
	Exported bool
}

type Assignment struct {
	SpanV    span.Span
	Name     string
	Expr     Expression
	Exported bool
}

// Literal is a `.fill`/`.string`-style directive: its Expr must
// settle to a Number (one word) or a String (ceil(len/4) words); any
// other result is a type error.
type Literal struct {
	SpanV span.Span
	Expr  Expression
}

type Export struct {
	SpanV span.Span
	Names []string
}

// ImportSpecifier is Named[{identifier, alias?}*] or Blob (`import *`).
type ImportSpecifier interface {
	isImportSpecifier()
}

type ImportName struct {
	Name  string
	Alias string // empty when unaliased
	Span  span.Span
}

type NamedImport struct{ Names []ImportName }
type BlobImport struct{}

func (NamedImport) isImportSpecifier() {}
func (BlobImport) isImportSpecifier()  {}

type Import struct {
	SpanV     span.Span
	File      string
	FileSpan  span.Span
	Specifier ImportSpecifier
}

// Operation is a FullMnemonic applied to a spanned list of operand
// Expressions.
type Operation struct {
	SpanV        span.Span
	Mnemonic     FullMnemonic
	Operands     []Expression
	OperandsSpan span.Span
}

func (*Block) isStatement()      {}
func (*Label) isStatement()      {}
func (*Assignment) isStatement() {}
func (*Literal) isStatement()    {}
func (*Export) isStatement()     {}
func (*Import) isStatement()     {}
func (*Operation) isStatement()  {}

func (b *Block) Span() span.Span      { return b.SpanV }
func (l *Label) Span() span.Span      { return l.SpanV }
func (a *Assignment) Span() span.Span { return a.SpanV }
func (l *Literal) Span() span.Span    { return l.SpanV }
func (e *Export) Span() span.Span     { return e.SpanV }
func (i *Import) Span() span.Span     { return i.SpanV }
func (o *Operation) Span() span.Span  { return o.SpanV }
