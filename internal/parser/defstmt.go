package parser

import (
	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/lexer"
)

// parseDefStmt parses one top-level `DefStmt := LetStmt | TypeStmt`
// (spec.md §4.3). On an unrecognized leading token it records a syntax
// error and returns nil without consuming anything, letting ParseProgram
// resynchronize.
func (p *Parser) parseDefStmt() ast.DefStmt {
	switch p.curTok.Kind {
	case lexer.KwLet:
		return p.parseLetStmt()
	case lexer.KwType:
		return p.parseTypeStmt()
	default:
		p.errorf(diag.CodeParseUnexpectedToken, p.curTok.Span, "expected 'let' or 'type', found %q", p.curTok.Lexeme)
		return nil
	}
}

// parseLetStmt parses `'let' ['rec'] LetDef ('and' LetDef)*`.
func (p *Parser) parseLetStmt() *ast.LetStmt {
	start := p.curTok.Span
	p.next() // 'let'

	recursive := p.accept(lexer.KwRec)

	var defs []*ast.LetDef
	if d := p.parseLetDef(); d != nil {
		defs = append(defs, d)
	}
	for p.accept(lexer.KwAnd) {
		if d := p.parseLetDef(); d != nil {
			defs = append(defs, d)
		}
	}

	end := p.curTok.Span
	return ast.NewLetStmt(recursive, defs, mergeSpan(start, end))
}

// parseLetDef parses one binding of
// `LetDef := 'mutable' idlower ('[' Expr (',' Expr)* ']')? [':' Type]
//          | idlower Param* [':' Type] '=' Expr`.
func (p *Parser) parseLetDef() *ast.LetDef {
	start := p.curTok.Span

	if p.accept(lexer.KwMutable) {
		name := p.parseLowerIdent()
		if name == nil {
			return nil
		}
		kind := ast.DefVariable
		var dims []ast.Expr
		if p.accept(lexer.LBracket) {
			kind = ast.DefArray
			dims = p.parseExprListUntil(lexer.RBracket)
			p.expect(lexer.RBracket, "']'")
		}
		var annotation ast.TypeAnnotation
		if p.accept(lexer.Colon) {
			annotation = p.parseType()
		}
		end := p.curTok.Span
		def := ast.NewLetDef(kind, name, nil, true, annotation, nil, mergeSpan(start, end))
		def.Dims = dims
		return def
	}

	name := p.parseLowerIdent()
	if name == nil {
		return nil
	}

	var params []*ast.Param
	for startsParam(p.curTok.Kind) {
		if prm := p.parseParam(); prm != nil {
			params = append(params, prm)
		} else {
			break
		}
	}

	var annotation ast.TypeAnnotation
	if p.accept(lexer.Colon) {
		annotation = p.parseType()
	}

	p.expect(lexer.Eq, "'='")
	body := p.parseExpr()

	kind := ast.DefConstant
	if len(params) > 0 {
		kind = ast.DefFunction
	}

	end := p.curTok.Span
	return ast.NewLetDef(kind, name, params, false, annotation, body, mergeSpan(start, end))
}

// startsParam reports whether kind can begin a function parameter: a bare
// lower-case identifier, or a parenthesized `(id : Type)` group.
func startsParam(k lexer.TokenKind) bool {
	return k == lexer.IdLower || k == lexer.LParen
}

// parseParam parses one `id` or `(id [':' Type])`.
func (p *Parser) parseParam() *ast.Param {
	start := p.curTok.Span
	if p.accept(lexer.LParen) {
		name := p.parseLowerIdent()
		if name == nil {
			p.syncExpr()
			return nil
		}
		var annotation ast.TypeAnnotation
		if p.accept(lexer.Colon) {
			annotation = p.parseType()
		}
		end := p.curTok.Span
		p.expect(lexer.RParen, "')'")
		return ast.NewParam(name, annotation, mergeSpan(start, end))
	}
	name := p.parseLowerIdent()
	if name == nil {
		return nil
	}
	return ast.NewParam(name, nil, start)
}

// parseTypeStmt parses `'type' TypeDef ('and' TypeDef)*`.
func (p *Parser) parseTypeStmt() *ast.TypeStmt {
	start := p.curTok.Span
	p.next() // 'type'

	var defs []*ast.TypeDef
	if d := p.parseTypeDef(); d != nil {
		defs = append(defs, d)
	}
	for p.accept(lexer.KwAnd) {
		if d := p.parseTypeDef(); d != nil {
			defs = append(defs, d)
		}
	}

	end := p.curTok.Span
	return ast.NewTypeStmt(defs, mergeSpan(start, end))
}

// parseTypeDef parses `idlower '=' Constructor ('|' Constructor)*`.
func (p *Parser) parseTypeDef() *ast.TypeDef {
	start := p.curTok.Span
	name := p.parseLowerIdent()
	if name == nil {
		return nil
	}
	p.expect(lexer.Eq, "'='")

	p.accept(lexer.Pipe) // tolerate an optional leading '|' before the first constructor

	var ctors []*ast.Constructor
	if c := p.parseConstructor(); c != nil {
		ctors = append(ctors, c)
	}
	for p.accept(lexer.Pipe) {
		if c := p.parseConstructor(); c != nil {
			ctors = append(ctors, c)
		}
	}

	end := p.curTok.Span
	return ast.NewTypeDef(name, ctors, mergeSpan(start, end))
}

// parseConstructor parses `idupper ['of' TypeAnnotation+]`.
func (p *Parser) parseConstructor() *ast.Constructor {
	start := p.curTok.Span
	name := p.parseUpperIdent()
	if name == nil {
		return nil
	}

	var fields []ast.TypeAnnotation
	if p.accept(lexer.KwOf) {
		fields = append(fields, p.parseArrayType())
		for startsAtomType(p.curTok.Kind) {
			fields = append(fields, p.parseArrayType())
		}
	}

	end := p.curTok.Span
	return ast.NewConstructor(name, fields, mergeSpan(start, end))
}

func (p *Parser) parseLowerIdent() *ast.Ident {
	if !p.at(lexer.IdLower) {
		p.errorf(diag.CodeParseUnexpectedToken, p.curTok.Span, "expected identifier, found %q", p.curTok.Lexeme)
		return nil
	}
	tok := p.curTok
	p.next()
	return ast.NewIdent(tok.Lexeme, tok.Span)
}

func (p *Parser) parseUpperIdent() *ast.Ident {
	if !p.at(lexer.IdUpper) {
		p.errorf(diag.CodeParseUnexpectedToken, p.curTok.Span, "expected a capitalized constructor name, found %q", p.curTok.Lexeme)
		return nil
	}
	tok := p.curTok
	p.next()
	return ast.NewIdent(tok.Lexeme, tok.Span)
}

// parseExprListUntil parses a comma-separated list of expressions, not
// consuming the closing token.
func (p *Parser) parseExprListUntil(closing lexer.TokenKind) []ast.Expr {
	var exprs []ast.Expr
	if p.at(closing) {
		return exprs
	}
	exprs = append(exprs, p.parseExpr())
	for p.accept(lexer.Comma) {
		exprs = append(exprs, p.parseExpr())
	}
	return exprs
}
