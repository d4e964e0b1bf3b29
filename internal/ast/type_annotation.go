package ast

import "github.com/lumen-lang/lumen/internal/lexer"

// TypeAnnotation is a type expression as written in source, consumed by
// the typer to seed concrete Type arena cells (spec.md §3).
type TypeAnnotation interface {
	Node
	typeAnnotationNode()
}

// TypeTag enumerates the built-in scalar type names.
type TypeTag int

const (
	TagUnit TypeTag = iota
	TagInt
	TagChar
	TagBool
	TagFloat
)

// BasicType is one of the five built-in scalar types.
type BasicType struct {
	Tag  TypeTag
	span lexer.Span
}

func NewBasicType(tag TypeTag, span lexer.Span) *BasicType { return &BasicType{Tag: tag, span: span} }
func (t *BasicType) Span() lexer.Span                       { return t.span }
func (*BasicType) typeAnnotationNode()                      {}

// FunctionType is `lhs -> rhs`.
type FunctionType struct {
	Lhs  TypeAnnotation
	Rhs  TypeAnnotation
	span lexer.Span
}

func NewFunctionType(lhs, rhs TypeAnnotation, span lexer.Span) *FunctionType {
	return &FunctionType{Lhs: lhs, Rhs: rhs, span: span}
}
func (t *FunctionType) Span() lexer.Span { return t.span }
func (*FunctionType) typeAnnotationNode() {}

// ArrayType is an array of a given rank, written e.g. `array of int` or
// `array array of int` for rank 2.
type ArrayType struct {
	Rank int
	Elem TypeAnnotation
	span lexer.Span
}

func NewArrayType(rank int, elem TypeAnnotation, span lexer.Span) *ArrayType {
	return &ArrayType{Rank: rank, Elem: elem, span: span}
}
func (t *ArrayType) Span() lexer.Span { return t.span }
func (*ArrayType) typeAnnotationNode() {}

// RefType is `elem ref`, a mutable reference cell.
type RefType struct {
	Elem TypeAnnotation
	span lexer.Span
}

func NewRefType(elem TypeAnnotation, span lexer.Span) *RefType {
	return &RefType{Elem: elem, span: span}
}
func (t *RefType) Span() lexer.Span { return t.span }
func (*RefType) typeAnnotationNode() {}

// CustomType references a user-defined type by name.
type CustomType struct {
	Name *Ident
	span lexer.Span
}

func NewCustomType(name *Ident, span lexer.Span) *CustomType {
	return &CustomType{Name: name, span: span}
}
func (t *CustomType) Span() lexer.Span { return t.span }
func (*CustomType) typeAnnotationNode() {}
