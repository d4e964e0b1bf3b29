// Package ast defines the Lumen abstract syntax tree: a tagged union of
// node families (statements, expressions, type annotations, patterns)
// produced by internal/parser and consumed by internal/types.
//
// Every node carries its own source Span and exposes it via Span(), and
// every sum type is closed by a private marker method so that external
// packages cannot add new variants — the same discipline the teacher
// uses for its Node/Expr/Stmt/Decl families, generalized from Malphas's
// Rust-flavored surface to Lumen's ML-flavored one.
package ast

import "github.com/lumen-lang/lumen/internal/lexer"

// Node is any AST node with an associated source span.
type Node interface {
	Span() lexer.Span
}

// DefStmt is a top-level definition: either a LetStmt or a TypeStmt
// (spec.md §3).
type DefStmt interface {
	Node
	defStmtNode()
}

// Expr is an expression node (spec.md §3's Expression sum).
type Expr interface {
	Node
	exprNode()
}

// Program is the root of a parsed compilation unit: an ordered sequence
// of top-level definitions.
type Program struct {
	Defs []DefStmt
	span lexer.Span
}

// NewProgram constructs a Program node.
func NewProgram(defs []DefStmt, span lexer.Span) *Program {
	return &Program{Defs: defs, span: span}
}

// Span returns the span covering the whole program.
func (p *Program) Span() lexer.Span { return p.span }

// Ident is a bare identifier reference, lower- or upper-case depending on
// context (variable/function name vs. type/constructor name).
type Ident struct {
	Name string
	span lexer.Span
}

// NewIdent constructs an Ident node.
func NewIdent(name string, span lexer.Span) *Ident {
	return &Ident{Name: name, span: span}
}

// Span returns the identifier's span.
func (i *Ident) Span() lexer.Span { return i.span }

// LetStmt is a (possibly mutually recursive) group of value/function
// definitions introduced by `let` (spec.md §3, §4.3).
type LetStmt struct {
	Recursive bool
	Defs      []*LetDef
	span      lexer.Span
}

// NewLetStmt constructs a LetStmt node.
func NewLetStmt(recursive bool, defs []*LetDef, span lexer.Span) *LetStmt {
	return &LetStmt{Recursive: recursive, Defs: defs, span: span}
}

// Span returns the let statement's span.
func (s *LetStmt) Span() lexer.Span { return s.span }

func (*LetStmt) defStmtNode() {}

// LetDefKind discriminates the four shapes a single `let` binding may
// take (spec.md §3).
type LetDefKind int

const (
	// DefConstant is `let name : T = expr` (no parameters).
	DefConstant LetDefKind = iota
	// DefFunction is `let name (params) : T = expr`.
	DefFunction
	// DefArray is a `let mutable name [dims] : T` array binding.
	DefArray
	// DefVariable is a `mutable` binding.
	DefVariable
)

// LetDef is one binding within a LetStmt.
type LetDef struct {
	Kind       LetDefKind
	Name       *Ident
	Params     []*Param // non-empty only for DefFunction
	Mutable    bool
	Annotation TypeAnnotation // declared type, nil if to be inferred
	Body       Expr
	Dims       []Expr // dimension-size expressions, set only for DefArray
	span       lexer.Span
}

// NewLetDef constructs a LetDef node.
func NewLetDef(kind LetDefKind, name *Ident, params []*Param, mutable bool, annotation TypeAnnotation, body Expr, span lexer.Span) *LetDef {
	return &LetDef{
		Kind:       kind,
		Name:       name,
		Params:     params,
		Mutable:    mutable,
		Annotation: annotation,
		Body:       body,
		span:       span,
	}
}

// Span returns the binding's span.
func (d *LetDef) Span() lexer.Span { return d.span }

// Param is a single function parameter.
type Param struct {
	Name       *Ident
	Annotation TypeAnnotation // may be nil if the parameter's type is to be inferred
	span       lexer.Span
}

// NewParam constructs a Param node.
func NewParam(name *Ident, annotation TypeAnnotation, span lexer.Span) *Param {
	return &Param{Name: name, Annotation: annotation, span: span}
}

// Span returns the parameter's span.
func (p *Param) Span() lexer.Span { return p.span }

// TypeStmt is a group of (possibly mutually recursive) algebraic data
// type definitions introduced by `type` (spec.md §3, §4.3).
type TypeStmt struct {
	Defs []*TypeDef
	span lexer.Span
}

// NewTypeStmt constructs a TypeStmt node.
func NewTypeStmt(defs []*TypeDef, span lexer.Span) *TypeStmt {
	return &TypeStmt{Defs: defs, span: span}
}

// Span returns the type statement's span.
func (s *TypeStmt) Span() lexer.Span { return s.span }

func (*TypeStmt) defStmtNode() {}

// TypeDef defines one named type as a sum of constructors.
type TypeDef struct {
	Name         *Ident
	Constructors []*Constructor
	span         lexer.Span
}

// NewTypeDef constructs a TypeDef node.
func NewTypeDef(name *Ident, constructors []*Constructor, span lexer.Span) *TypeDef {
	return &TypeDef{Name: name, Constructors: constructors, span: span}
}

// Span returns the type definition's span.
func (d *TypeDef) Span() lexer.Span { return d.span }

// Constructor is one variant of a TypeDef, with an arity-fixed list of
// field types (spec.md §3).
type Constructor struct {
	Name   *Ident
	Fields []TypeAnnotation
	span   lexer.Span
}

// NewConstructor constructs a Constructor node.
func NewConstructor(name *Ident, fields []TypeAnnotation, span lexer.Span) *Constructor {
	return &Constructor{Name: name, Fields: fields, span: span}
}

// Span returns the constructor's span.
func (c *Constructor) Span() lexer.Span { return c.span }

// Clause is one arm of a `match` expression: a pattern guarding a body
// expression (spec.md §3).
type Clause struct {
	Pattern Pattern
	Body    Expr
	span    lexer.Span
}

// NewClause constructs a Clause node.
func NewClause(pattern Pattern, body Expr, span lexer.Span) *Clause {
	return &Clause{Pattern: pattern, Body: body, span: span}
}

// Span returns the clause's span.
func (c *Clause) Span() lexer.Span { return c.span }
