// Package parser implements the two-token-lookahead recursive-descent
// parser of spec.md §4.3: it consumes the Token stream produced by
// internal/lexer and constructs the AST of spec.md §3, recovering at
// statement boundaries on syntax errors rather than aborting the whole
// parse.
//
// Grounded on the teacher's internal/parser/parser.go curTok/peekTok
// lookahead pair and precedences table, generalized from Malphas's
// C-like expression grammar to Lumen's ML-style let/match/if/for/while
// grammar.
package parser

import (
	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/lexer"
)

// Parser implements spec.md §4.3's recursive-descent grammar over a
// two-token lookahead window (curTok/peekTok), mirroring the teacher's
// Parser shape.
type Parser struct {
	lx *lexer.Lexer

	curTok  lexer.Token
	peekTok lexer.Token

	sink *diag.Sink
}

// New creates a Parser pulling tokens from lx. Diagnostics are appended to
// sink under diag.StageParser, per spec.md §4.5.
func New(lx *lexer.Lexer, sink *diag.Sink) *Parser {
	p := &Parser{lx: lx, sink: sink}
	// Seed curTok/peekTok (teacher's two-token priming discipline).
	p.next()
	p.next()
	return p
}

// ParseProgram parses a full compilation unit: a sequence of DefStmts
// (spec.md §4.3's `Program := DefStmt*`). Syntax errors are recorded to
// the sink and the parser resynchronizes at the next `let`/`type`/Eof,
// per spec.md §4.3's recovery rule, so a single parse always returns a
// best-effort Program even when diagnostics were recorded.
func (p *Parser) ParseProgram() *ast.Program {
	start := p.curTok.Span
	var defs []ast.DefStmt
	for p.curTok.Kind != lexer.Eof {
		prev := p.curTok
		def := p.parseDefStmt()
		if def != nil {
			defs = append(defs, def)
		}
		if p.curTok.Kind == lexer.Eof {
			break
		}
		if sameTokenPosition(p.curTok, prev) {
			// parseDefStmt made no progress (e.g. it returned early on an
			// unexpected token without consuming anything); resynchronize
			// so ParseProgram always terminates.
			p.syncToDefStart()
		}
	}
	end := p.curTok.Span
	return ast.NewProgram(defs, mergeSpan(start, end))
}

// next advances the lookahead window by one token.
func (p *Parser) next() {
	p.curTok = p.peekTok
	p.peekTok = p.lx.Next()
}

// at reports whether curTok has the given kind.
func (p *Parser) at(k lexer.TokenKind) bool { return p.curTok.Kind == k }

// accept consumes curTok if it matches k, reporting ok.
func (p *Parser) accept(k lexer.TokenKind) bool {
	if p.at(k) {
		p.next()
		return true
	}
	return false
}

// expect consumes curTok if it matches k; otherwise records a
// CodeParseMissingDelim diagnostic at curTok's position and leaves the
// token stream where it is, so the caller can decide how to recover.
func (p *Parser) expect(k lexer.TokenKind, what string) bool {
	if p.accept(k) {
		return true
	}
	p.errorf(diag.CodeParseMissingDelim, p.curTok.Span, "expected %s, found %q", what, p.curTok.Lexeme)
	return false
}

func (p *Parser) errorf(code diag.Code, span lexer.Span, format string, args ...any) {
	p.sink.Errorf(diag.StageParser, code, toDiagSpan(span), format, args...)
}

func toDiagSpan(s lexer.Span) diag.Span {
	return diag.Span{FileID: s.FileID, Line: s.Line, Column: s.Col, Start: s.Start, End: s.End}
}

// mergeSpan returns a span covering both start and end, assuming start
// was consumed no later than end (the discipline every parse* function
// follows: record the first token's span, then merge it with the span of
// the last token consumed for that production).
func mergeSpan(start, end lexer.Span) lexer.Span {
	start.EndLine = end.EndLine
	start.EndCol = end.EndCol
	start.End = end.End
	return start
}

func sameTokenPosition(a, b lexer.Token) bool {
	return a.Kind == b.Kind && a.Span.Start == b.Span.Start && a.Span.End == b.Span.End
}

// syncToDefStart discards tokens until one of `let`, `type`, or Eof
// appears at statement nesting depth zero (spec.md §4.3's top-level
// recovery rule).
func (p *Parser) syncToDefStart() {
	for !p.at(lexer.Eof) && !p.at(lexer.KwLet) && !p.at(lexer.KwType) {
		p.next()
	}
}

// isExprSyncPoint reports whether kind is one of the additional
// expression-level synchronization tokens spec.md §4.3 names: `in`,
// `with`, `end`, `done`, alongside the statement-level `let`/`type`/Eof.
func isExprSyncPoint(k lexer.TokenKind) bool {
	switch k {
	case lexer.KwIn, lexer.KwWith, lexer.KwEnd, lexer.KwDone, lexer.KwLet, lexer.KwType, lexer.Eof:
		return true
	default:
		return false
	}
}

// syncExpr discards tokens until an expression-level sync point is
// reached, for use when an expression production fails partway through.
func (p *Parser) syncExpr() {
	for !isExprSyncPoint(p.curTok.Kind) {
		p.next()
	}
}
