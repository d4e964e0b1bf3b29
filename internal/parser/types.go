package parser

import (
	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/lexer"
)

var basicTypeKeywords = map[lexer.TokenKind]ast.TypeTag{
	lexer.KwUnit:  ast.TagUnit,
	lexer.KwInt:   ast.TagInt,
	lexer.KwChar:  ast.TagChar,
	lexer.KwBool:  ast.TagBool,
	lexer.KwFloat: ast.TagFloat,
}

// startsAtomType reports whether kind can begin an atomic type expression:
// a basic type keyword, a lower-case custom type name, an `array` rank
// prefix, or a parenthesized type.
func startsAtomType(k lexer.TokenKind) bool {
	if _, ok := basicTypeKeywords[k]; ok {
		return true
	}
	switch k {
	case lexer.IdLower, lexer.KwArray, lexer.LParen:
		return true
	default:
		return false
	}
}

// parseType parses a full type expression at the lowest precedence level:
// `FunctionType := RefType ['->' FunctionType]` (right-associative, per
// spec.md §4.3's `Expr` precedence table applied analogously to types).
func (p *Parser) parseType() ast.TypeAnnotation {
	lhs := p.parseRefType()
	if p.accept(lexer.Arrow) {
		rhs := p.parseType()
		if lhs == nil || rhs == nil {
			return nil
		}
		return ast.NewFunctionType(lhs, rhs, mergeSpan(lhs.Span(), rhs.Span()))
	}
	return lhs
}

// parseRefType parses `AtomOrArrayType ('ref')*`: `ref` is a postfix
// suffix, so `int ref ref` is a reference to a reference to int.
func (p *Parser) parseRefType() ast.TypeAnnotation {
	t := p.parseArrayType()
	for p.at(lexer.KwRef) {
		refSpan := p.curTok.Span
		p.next()
		if t == nil {
			continue
		}
		t = ast.NewRefType(t, mergeSpan(t.Span(), refSpan))
	}
	return t
}

// parseArrayType parses a rank-N array type, `'array'+ 'of' AtomType`
// (spec.md §4.4's Array{elem,rank}), or falls through to a bare atom type
// when no leading `array` keyword is present.
func (p *Parser) parseArrayType() ast.TypeAnnotation {
	if !p.at(lexer.KwArray) {
		return p.parseAtomType()
	}
	start := p.curTok.Span
	rank := 0
	for p.accept(lexer.KwArray) {
		rank++
	}
	p.expect(lexer.KwOf, "'of'")
	elem := p.parseAtomType()
	if elem == nil {
		return nil
	}
	return ast.NewArrayType(rank, elem, mergeSpan(start, elem.Span()))
}

// parseAtomType parses a basic type keyword, a custom type name, or a
// parenthesized type.
func (p *Parser) parseAtomType() ast.TypeAnnotation {
	if tag, ok := basicTypeKeywords[p.curTok.Kind]; ok {
		span := p.curTok.Span
		p.next()
		return ast.NewBasicType(tag, span)
	}
	switch p.curTok.Kind {
	case lexer.IdLower:
		tok := p.curTok
		p.next()
		return ast.NewCustomType(ast.NewIdent(tok.Lexeme, tok.Span), tok.Span)
	case lexer.LParen:
		start := p.curTok.Span
		p.next()
		inner := p.parseType()
		end := p.curTok.Span
		p.expect(lexer.RParen, "')'")
		if inner == nil {
			return nil
		}
		return reSpan(inner, mergeSpan(start, end))
	default:
		p.errorf(diag.CodeParseUnexpectedToken, p.curTok.Span, "expected a type expression, found %q", p.curTok.Lexeme)
		return nil
	}
}

// reSpan rewraps t so its span covers the full parenthesized group it was
// read from, without mutating the shared node (spans are otherwise
// set-once at construction, per the teacher's discipline).
func reSpan(t ast.TypeAnnotation, span lexer.Span) ast.TypeAnnotation {
	switch n := t.(type) {
	case *ast.BasicType:
		return ast.NewBasicType(n.Tag, span)
	case *ast.FunctionType:
		return ast.NewFunctionType(n.Lhs, n.Rhs, span)
	case *ast.ArrayType:
		return ast.NewArrayType(n.Rank, n.Elem, span)
	case *ast.RefType:
		return ast.NewRefType(n.Elem, span)
	case *ast.CustomType:
		return ast.NewCustomType(n.Name, span)
	default:
		return t
	}
}
