package parser

import (
	"strings"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/lexer"
)

// startsAtomPattern reports whether kind can begin an atomic pattern:
// used to decide whether a PatConstr keeps consuming subpattern arguments.
func startsAtomPattern(k lexer.TokenKind) bool {
	switch k {
	case lexer.IdLower, lexer.IdUpper, lexer.IntLit, lexer.FloatLit, lexer.CharLit,
		lexer.StringLit, lexer.KwTrue, lexer.KwFalse, lexer.LParen, lexer.Minus, lexer.MinusDot:
		return true
	default:
		return false
	}
}

// parsePattern parses one match-clause pattern (spec.md §3, §4.4):
// `Pattern := Literal | '_' | idlower | idupper AtomPattern*`.
func (p *Parser) parsePattern() ast.Pattern {
	switch p.curTok.Kind {
	case lexer.IdLower:
		tok := p.curTok
		p.next()
		if tok.Lexeme == "_" {
			return ast.NewPatId(nil, tok.Span)
		}
		return ast.NewPatId(ast.NewIdent(tok.Lexeme, tok.Span), tok.Span)

	case lexer.IdUpper:
		start := p.curTok.Span
		name := p.parseUpperIdent()
		var args []ast.Pattern
		for startsAtomPattern(p.curTok.Kind) {
			args = append(args, p.parseAtomPattern())
		}
		end := p.curTok.Span
		if len(args) == 0 {
			end = name.Span()
		}
		return ast.NewPatConstr(name, args, mergeSpan(start, end))

	default:
		return p.parseLiteralOrGroupPattern()
	}
}

// parseAtomPattern parses one pattern that cannot itself start a further
// constructor-application list, mirroring the Expr grammar's atom/call
// split so `PatConstr(Cons, x, xs)`'s `x` doesn't greedily swallow `xs`.
func (p *Parser) parseAtomPattern() ast.Pattern {
	switch p.curTok.Kind {
	case lexer.IdLower:
		tok := p.curTok
		p.next()
		if tok.Lexeme == "_" {
			return ast.NewPatId(nil, tok.Span)
		}
		return ast.NewPatId(ast.NewIdent(tok.Lexeme, tok.Span), tok.Span)
	case lexer.IdUpper:
		name := p.parseUpperIdent()
		return ast.NewPatConstr(name, nil, name.Span())
	default:
		return p.parseLiteralOrGroupPattern()
	}
}

func (p *Parser) parseLiteralOrGroupPattern() ast.Pattern {
	if p.at(lexer.LParen) {
		p.next()
		inner := p.parsePattern()
		p.expect(lexer.RParen, "')'")
		return inner
	}

	negate := false
	start := p.curTok.Span
	if p.at(lexer.Minus) || p.at(lexer.MinusDot) {
		negate = true
		p.next()
	}

	lit := p.parseLiteralExpr()
	if lit == nil {
		p.errorf(diag.CodeParseUnexpectedToken, p.curTok.Span, "expected a pattern, found %q", p.curTok.Lexeme)
		return nil
	}
	if negate {
		lit = negateLiteral(lit, start)
	}
	return ast.NewPatLiteral(lit, mergeSpan(start, lit.Span()))
}

func negateLiteral(lit ast.Expr, start lexer.Span) ast.Expr {
	switch n := lit.(type) {
	case *ast.IntLit:
		return ast.NewIntLit(-n.Value, mergeSpan(start, n.Span()))
	case *ast.FloatLit:
		return ast.NewFloatLit(-n.Value, mergeSpan(start, n.Span()))
	default:
		return lit
	}
}

// parseLiteralExpr parses one of the six literal Expr variants, decoding
// its raw lexeme (spec.md §3: "Literal token lexemes carry only raw
// text; decoding is the parser's/typer's job").
func (p *Parser) parseLiteralExpr() ast.Expr {
	tok := p.curTok
	switch tok.Kind {
	case lexer.IntLit:
		p.next()
		v, err := decodeInt(tok.Lexeme)
		if err != nil {
			p.errorf(diag.CodeParseUnexpectedToken, tok.Span, "invalid integer literal %q: %v", tok.Lexeme, err)
		}
		return ast.NewIntLit(v, tok.Span)
	case lexer.FloatLit:
		p.next()
		v, err := decodeFloat(tok.Lexeme)
		if err != nil {
			p.errorf(diag.CodeParseUnexpectedToken, tok.Span, "invalid float literal %q: %v", tok.Lexeme, err)
		}
		return ast.NewFloatLit(v, tok.Span)
	case lexer.CharLit:
		p.next()
		v, err := decodeChar(tok.Lexeme)
		if err != nil {
			p.errorf(diag.CodeParseUnexpectedToken, tok.Span, "invalid character literal %q: %v", tok.Lexeme, err)
		}
		return ast.NewCharLit(v, tok.Span)
	case lexer.StringLit:
		p.next()
		v, err := decodeString(tok.Lexeme)
		if err != nil {
			p.errorf(diag.CodeParseUnexpectedToken, tok.Span, "invalid string literal %q: %v", tok.Lexeme, err)
		}
		return ast.NewStringLit(v, tok.Span)
	case lexer.KwTrue:
		p.next()
		return ast.NewBoolLit(true, tok.Span)
	case lexer.KwFalse:
		p.next()
		return ast.NewBoolLit(false, tok.Span)
	default:
		return nil
	}
}

// decodeEscapes decodes the escape sequences of spec.md §4.2 within the
// quote-delimited raw lexeme (quotes included), returning the decoded
// text between the quotes.
func decodeEscapes(raw string) (string, error) {
	inner := raw
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	var b strings.Builder
	i := 0
	for i < len(inner) {
		c := inner[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(inner) {
			return b.String(), errBadEscape
		}
		switch inner[i] {
		case 'n':
			b.WriteByte('\n')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case '0':
			b.WriteByte(0)
			i++
		case '\\':
			b.WriteByte('\\')
			i++
		case '\'':
			b.WriteByte('\'')
			i++
		case '"':
			b.WriteByte('"')
			i++
		case 'x':
			if i+2 >= len(inner) {
				return b.String(), errBadEscape
			}
			h1, h2 := inner[i+1], inner[i+2]
			v, ok := decodeHexByte(h1, h2)
			if !ok {
				return b.String(), errBadEscape
			}
			b.WriteByte(v)
			i += 3
		default:
			return b.String(), errBadEscape
		}
	}
	return b.String(), nil
}

func decodeHexByte(h1, h2 byte) (byte, bool) {
	d1, ok1 := hexDigit(h1)
	d2, ok2 := hexDigit(h2)
	if !ok1 || !ok2 {
		return 0, false
	}
	return d1<<4 | d2, true
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	default:
		return 0, false
	}
}
