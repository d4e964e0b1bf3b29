// Package lexer implements the table-free hand-written scanner of
// spec.md §4.2: single-threaded, demand-driven, converting the
// source manager's preprocessed line stream into a Token stream
// terminated by exactly one Eof.
package lexer

import (
	"strings"

	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/source"
)

// Lexer scans Tokens on demand. Next advances; Peek supports fixed
// lookahead by buffering (spec.md §4.2).
type Lexer struct {
	cur          *cursor
	sink         *diag.Sink
	crashOnError bool
	tokenObserver func(Token)

	buffered []Token
	crashed  bool
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithCrashOnError makes the lexer stop at the first lexical error: the
// error is still reported and returned as an Error token, and every later
// call yields Eof.
func WithCrashOnError(crash bool) Option {
	return func(l *Lexer) { l.crashOnError = crash }
}

// WithTokenObserver registers a callback invoked exactly once per token as
// it is first scanned (not once per Peek), so a caller (the CLI's
// --print-tokens flag) can record the full token stream even when the
// parser, not the CLI, is the one actually driving the lexer.
func WithTokenObserver(fn func(Token)) Option {
	return func(l *Lexer) { l.tokenObserver = fn }
}

// New creates a Lexer pulling its byte stream from mgr.
func New(sink *diag.Sink, mgr *source.Manager, opts ...Option) *Lexer {
	l := &Lexer{cur: newCursor(mgr), sink: sink}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Next returns the next token, advancing lexer state. Once crash_on_error
// has aborted the scan, Next keeps returning Eof.
func (l *Lexer) Next() Token {
	return l.at(0, true)
}

// Peek returns the token k positions ahead without consuming it. Peek(0)
// is equivalent to what the next Next() call will return.
func (l *Lexer) Peek(k int) Token {
	return l.at(k, false)
}

func (l *Lexer) at(k int, consume bool) Token {
	for len(l.buffered) <= k {
		tok := l.scanOne()
		if l.tokenObserver != nil {
			l.tokenObserver(tok)
		}
		l.buffered = append(l.buffered, tok)
	}
	tok := l.buffered[k]
	if consume {
		l.buffered = l.buffered[1:]
	}
	return tok
}

func (l *Lexer) startSpan() Span {
	return Span{FileID: l.cur.file(), Line: l.cur.line(), Col: l.cur.col(), Start: l.cur.offset}
}

func (l *Lexer) endSpan(s Span) Span {
	s.EndLine = l.cur.line()
	s.EndCol = l.cur.col()
	s.End = l.cur.offset
	return s
}

func (l *Lexer) report(code diag.Code, span Span, format string, args ...any) {
	l.sink.Errorf(diag.StageLexer, code, toDiagSpan(span), format, args...)
}

func toDiagSpan(s Span) diag.Span {
	return diag.Span{FileID: s.FileID, Line: s.Line, Column: s.Col, Start: s.Start, End: s.End}
}

// scanOne implements the 13 matchers of spec.md §4.2 in priority order.
func (l *Lexer) scanOne() Token {
	if l.crashed {
		return Token{Kind: Eof, Span: l.startSpan()}
	}

	l.skipWhitespaceAndComments()
	if l.crashed {
		return Token{Kind: Eof, Span: l.startSpan()}
	}

	start := l.startSpan()
	c := l.cur.ch

	if l.cur.atEOF() {
		return Token{Kind: Eof, Span: l.endSpan(start)}
	}

	switch {
	case isAlpha(c):
		return l.scanWord(start)
	case isDigit(c):
		return l.scanNumber(start)
	case c == '\'':
		return l.scanChar(start)
	case c == '"':
		return l.scanString(start)
	}

	if kind, lexeme, ok := l.tryMatchSymbolic(); ok {
		l.endSpan(start)
		return Token{Kind: kind, Span: l.finishSpan(start), Lexeme: lexeme}
	}

	if kind, ok := singleCharTokens[c]; ok {
		lexeme := string(c)
		l.cur.advance()
		return Token{Kind: kind, Span: l.finishSpan(start), Lexeme: lexeme}
	}

	// Matcher 13: unmatched character.
	lexeme := string(c)
	l.report(diag.CodeLexIllegalChar, start, "illegal character %q", c)
	l.cur.advance()
	tok := Token{Kind: Error, Span: l.finishSpan(start), Lexeme: lexeme}
	if l.crashOnError {
		l.crashed = true
	}
	return tok
}

func (l *Lexer) finishSpan(start Span) Span {
	start.EndLine = l.cur.line()
	start.EndCol = l.cur.col()
	start.End = l.cur.offset
	return start
}

// skipWhitespaceAndComments implements matchers 1-3: whitespace/newlines,
// "--" single-line comments, and "(* ... *)" nested block comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.cur.ch == ' ' || l.cur.ch == '\t' || l.cur.ch == '\r' || l.cur.ch == '\n':
			l.cur.advance()
		case l.cur.ch == '-' && l.cur.peekAt(1) == '-':
			for !l.cur.atEOF() && l.cur.ch != '\n' {
				l.cur.advance()
			}
			// Consume the terminating newline too, if present.
			if l.cur.ch == '\n' {
				l.cur.advance()
			}
		case l.cur.ch == '(' && l.cur.peekAt(1) == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

func (l *Lexer) skipBlockComment() {
	start := l.startSpan()
	depth := 0
	l.cur.advance() // '('
	l.cur.advance() // '*'
	depth++
	for depth > 0 {
		if l.cur.atEOF() {
			l.report(diag.CodeLexUnterminatedComment, start, "unterminated block comment")
			if l.crashOnError {
				l.crashed = true
			}
			return
		}
		if l.cur.ch == '(' && l.cur.peekAt(1) == '*' {
			l.cur.advance()
			l.cur.advance()
			depth++
			continue
		}
		if l.cur.ch == '*' && l.cur.peekAt(1) == ')' {
			l.cur.advance()
			l.cur.advance()
			depth--
			continue
		}
		l.cur.advance()
	}
}

// scanWord implements matchers 4-6: reserved words (longest-first, word
// boundary checked implicitly by scanning the full identifier run first),
// lower-case identifiers, upper-case identifiers.
func (l *Lexer) scanWord(start Span) Token {
	var b strings.Builder
	for isAlpha(l.cur.ch) || isDigit(l.cur.ch) || l.cur.ch == '_' {
		b.WriteRune(l.cur.ch)
		l.cur.advance()
	}
	word := b.String()
	if kind, ok := LookupKeyword(word); ok {
		return Token{Kind: kind, Span: l.finishSpan(start), Lexeme: word}
	}
	if word[0] >= 'A' && word[0] <= 'Z' {
		return Token{Kind: IdUpper, Span: l.finishSpan(start), Lexeme: word}
	}
	return Token{Kind: IdLower, Span: l.finishSpan(start), Lexeme: word}
}

// scanNumber implements matchers 7-8: float and integer literals.
func (l *Lexer) scanNumber(start Span) Token {
	var b strings.Builder
	for isDigit(l.cur.ch) {
		b.WriteRune(l.cur.ch)
		l.cur.advance()
	}

	if l.cur.ch == '.' && isDigit(l.cur.peekAt(1)) {
		b.WriteRune(l.cur.ch)
		l.cur.advance()
		for isDigit(l.cur.ch) {
			b.WriteRune(l.cur.ch)
			l.cur.advance()
		}
		if l.cur.ch == 'e' || l.cur.ch == 'E' {
			lookahead := 1
			if l.cur.peekAt(lookahead) == '+' || l.cur.peekAt(lookahead) == '-' {
				lookahead++
			}
			if isDigit(l.cur.peekAt(lookahead)) {
				b.WriteRune(l.cur.ch)
				l.cur.advance()
				if l.cur.ch == '+' || l.cur.ch == '-' {
					b.WriteRune(l.cur.ch)
					l.cur.advance()
				}
				for isDigit(l.cur.ch) {
					b.WriteRune(l.cur.ch)
					l.cur.advance()
				}
			}
		}
		return Token{Kind: FloatLit, Span: l.finishSpan(start), Lexeme: b.String()}
	}

	return Token{Kind: IntLit, Span: l.finishSpan(start), Lexeme: b.String()}
}

// scanChar implements matcher 9: a character literal.
func (l *Lexer) scanChar(start Span) Token {
	var b strings.Builder
	b.WriteRune(l.cur.ch)
	l.cur.advance() // opening '

	if l.cur.ch == '\n' || l.cur.atEOF() {
		l.report(diag.CodeLexUnterminatedChar, start, "unterminated character literal")
		return l.errorToken(start, b.String())
	}

	if l.cur.ch == '\\' {
		esc, ok := l.scanEscape(&b)
		if !ok {
			return l.errorToken(start, b.String())
		}
		_ = esc
	} else {
		b.WriteRune(l.cur.ch)
		l.cur.advance()
	}

	if l.cur.ch != '\'' {
		l.report(diag.CodeLexUnterminatedChar, start, "unterminated character literal")
		return l.errorToken(start, b.String())
	}
	b.WriteRune(l.cur.ch)
	l.cur.advance()
	return Token{Kind: CharLit, Span: l.finishSpan(start), Lexeme: b.String()}
}

// scanString implements matcher 10: a string literal, single line only.
func (l *Lexer) scanString(start Span) Token {
	var b strings.Builder
	b.WriteRune(l.cur.ch)
	l.cur.advance() // opening "

	for {
		if l.cur.ch == '\n' || l.cur.atEOF() {
			l.report(diag.CodeLexUnterminatedString, start, "unterminated string literal")
			return l.errorToken(start, b.String())
		}
		if l.cur.ch == '"' {
			b.WriteRune(l.cur.ch)
			l.cur.advance()
			return Token{Kind: StringLit, Span: l.finishSpan(start), Lexeme: b.String()}
		}
		if l.cur.ch == '\\' {
			if _, ok := l.scanEscape(&b); !ok {
				return l.errorToken(start, b.String())
			}
			continue
		}
		b.WriteRune(l.cur.ch)
		l.cur.advance()
	}
}

// scanEscape consumes one escape sequence (the lexer is already
// positioned on the backslash) and appends its raw text to b. It reports
// a diagnostic and returns ok=false for any sequence other than the fixed
// set in spec.md §4.2, or for a backslash at end-of-line (never treated
// as a line continuation).
func (l *Lexer) scanEscape(b *strings.Builder) (rune, bool) {
	escSpan := l.startSpan()
	b.WriteRune(l.cur.ch)
	l.cur.advance() // backslash

	if l.cur.ch == '\n' || l.cur.atEOF() {
		l.report(diag.CodeLexBadEscape, escSpan, "backslash at end of line is not a line continuation")
		return 0, false
	}

	switch l.cur.ch {
	case 'n', 't', 'r', '0', '\\', '\'', '"':
		r := l.cur.ch
		b.WriteRune(r)
		l.cur.advance()
		return r, true
	case 'x':
		b.WriteRune(l.cur.ch)
		l.cur.advance()
		h1, h2 := l.cur.ch, l.cur.peekAt(1)
		if isLowerHex(h1) && isLowerHex(h2) {
			b.WriteRune(h1)
			b.WriteRune(h2)
			l.cur.advance()
			l.cur.advance()
			return 'x', true
		}
		l.report(diag.CodeLexBadEscape, escSpan, `\x escape requires two lowercase hex digits`)
		return 0, false
	default:
		l.report(diag.CodeLexBadEscape, escSpan, "unrecognized escape sequence %q", "\\"+string(l.cur.ch))
		return 0, false
	}
}

func (l *Lexer) errorToken(start Span, lexeme string) Token {
	if l.crashOnError {
		l.crashed = true
	}
	return Token{Kind: Error, Span: l.finishSpan(start), Lexeme: lexeme}
}

// tryMatchSymbolic implements matcher 11: longest-match multi-character
// symbolic operators.
func (l *Lexer) tryMatchSymbolic() (TokenKind, string, bool) {
	c0, c1 := l.cur.ch, l.cur.peekAt(1)
	for _, op := range symbolicOperators {
		if len(op.text) == 2 && rune(op.text[0]) == c0 && rune(op.text[1]) == c1 {
			l.cur.advance()
			l.cur.advance()
			return op.kind, op.text, true
		}
	}
	return "", "", false
}

func isAlpha(r rune) bool { return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isLowerHex(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f')
}
