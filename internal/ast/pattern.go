package ast

import "github.com/lumen-lang/lumen/internal/lexer"

// Pattern is a match-clause pattern (spec.md §3).
type Pattern interface {
	Node
	patternNode()
}

// PatLiteral matches a literal value exactly. Literal is one of the
// literal Expr variants (UnitLit, IntLit, CharLit, BoolLit, FloatLit,
// StringLit).
type PatLiteral struct {
	Literal Expr
	span    lexer.Span
}

func NewPatLiteral(literal Expr, span lexer.Span) *PatLiteral {
	return &PatLiteral{Literal: literal, span: span}
}
func (p *PatLiteral) Span() lexer.Span { return p.span }
func (*PatLiteral) patternNode()       {}

// PatId binds the matched value to a fresh lower-case identifier, or
// matches `_` when Name is nil.
type PatId struct {
	Name *Ident
	span lexer.Span
}

func NewPatId(name *Ident, span lexer.Span) *PatId { return &PatId{Name: name, span: span} }
func (p *PatId) Span() lexer.Span                   { return p.span }
func (*PatId) patternNode()                         {}

// PatConstr matches a constructor application, recursively matching each
// field against a subpattern. Args is empty for a nullary constructor.
type PatConstr struct {
	Name *Ident
	Args []Pattern
	span lexer.Span
}

func NewPatConstr(name *Ident, args []Pattern, span lexer.Span) *PatConstr {
	return &PatConstr{Name: name, Args: args, span: span}
}
func (p *PatConstr) Span() lexer.Span { return p.span }
func (*PatConstr) patternNode()       {}
