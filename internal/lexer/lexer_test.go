package lexer_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/lexer"
	"github.com/lumen-lang/lumen/internal/source"
)

func newLexer(t *testing.T, content string, opts ...lexer.Option) (*lexer.Lexer, *diag.Sink) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.lum")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sink := diag.NewSink()
	mgr, err := source.Open(sink, path)
	require.NoError(t, err)
	return lexer.New(sink, mgr, opts...), sink
}

func kinds(t *testing.T, l *lexer.Lexer) []lexer.TokenKind {
	t.Helper()
	var out []lexer.TokenKind
	for {
		tok := l.Next()
		out = append(out, tok.Kind)
		if tok.Kind == lexer.Eof {
			return out
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	l, sink := newLexer(t, "let rec Foo = bar")
	assert.Equal(t, []lexer.TokenKind{
		lexer.KwLet, lexer.KwRec, lexer.IdUpper, lexer.Eq, lexer.IdLower, lexer.Eof,
	}, kinds(t, l))
	assert.False(t, sink.HasErrors())
}

func TestIntAndFloatLiterals(t *testing.T) {
	l, _ := newLexer(t, "1 23 1.5 2.0e10 3.0e+5 4.0e-2 5.e")
	tok := func() lexer.Token { return l.Next() }

	tok1 := tok()
	assert.Equal(t, lexer.IntLit, tok1.Kind)
	assert.Equal(t, "1", tok1.Lexeme)

	tok2 := tok()
	assert.Equal(t, lexer.IntLit, tok2.Kind)
	assert.Equal(t, "23", tok2.Lexeme)

	tok3 := tok()
	assert.Equal(t, lexer.FloatLit, tok3.Kind)
	assert.Equal(t, "1.5", tok3.Lexeme)

	tok4 := tok()
	assert.Equal(t, lexer.FloatLit, tok4.Kind)
	assert.Equal(t, "2.0e10", tok4.Lexeme)

	tok5 := tok()
	assert.Equal(t, lexer.FloatLit, tok5.Kind)
	assert.Equal(t, "3.0e+5", tok5.Lexeme)

	tok6 := tok()
	assert.Equal(t, lexer.FloatLit, tok6.Kind)
	assert.Equal(t, "4.0e-2", tok6.Lexeme)

	// "5.e" has no digit after the dot, so it is an int "5" followed by a
	// dot then the identifier "e".
	tok7 := tok()
	assert.Equal(t, lexer.IntLit, tok7.Kind)
	assert.Equal(t, "5", tok7.Lexeme)
	tok8 := tok()
	assert.Equal(t, lexer.Dot, tok8.Kind)
	tok9 := tok()
	assert.Equal(t, lexer.IdLower, tok9.Kind)
	assert.Equal(t, "e", tok9.Lexeme)
}

func TestCharAndStringLiteralsWithEscapes(t *testing.T) {
	l, sink := newLexer(t, `'a' '\n' '\x41' "hello\tworld" "a\"b"`)

	c1 := l.Next()
	assert.Equal(t, lexer.CharLit, c1.Kind)
	assert.Equal(t, `'a'`, c1.Lexeme)

	c2 := l.Next()
	assert.Equal(t, lexer.CharLit, c2.Kind)
	assert.Equal(t, `'\n'`, c2.Lexeme)

	c3 := l.Next()
	assert.Equal(t, lexer.CharLit, c3.Kind)
	assert.Equal(t, `'\x41'`, c3.Lexeme)

	s1 := l.Next()
	assert.Equal(t, lexer.StringLit, s1.Kind)
	assert.Equal(t, `"hello\tworld"`, s1.Lexeme)

	s2 := l.Next()
	assert.Equal(t, lexer.StringLit, s2.Kind)
	assert.Equal(t, `"a\"b"`, s2.Lexeme)

	assert.False(t, sink.HasErrors())
}

func TestUnterminatedStringIsRecoverableError(t *testing.T) {
	l, sink := newLexer(t, "\"oops\nlet x = 1")
	tok := l.Next()
	assert.Equal(t, lexer.Error, tok.Kind)
	assert.True(t, sink.HasErrors())

	found := false
	for _, d := range sink.All() {
		if d.Code == diag.CodeLexUnterminatedString {
			found = true
		}
	}
	assert.True(t, found)

	// Scanning continues after the error, per the accumulating default.
	next := l.Next()
	assert.Equal(t, lexer.KwLet, next.Kind)
}

func TestBadEscapeReportsAndRecovers(t *testing.T) {
	l, sink := newLexer(t, `"bad \q escape"`)
	tok := l.Next()
	assert.Equal(t, lexer.Error, tok.Kind)
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.CodeLexBadEscape {
			found = true
		}
	}
	assert.True(t, found)
	assert.True(t, sink.HasErrors())
}

func TestLineCommentStripped(t *testing.T) {
	l, sink := newLexer(t, "let x = 1 -- this is a comment\nlet y = 2")
	got := kinds(t, l)
	assert.Equal(t, []lexer.TokenKind{
		lexer.KwLet, lexer.IdLower, lexer.Eq, lexer.IntLit,
		lexer.KwLet, lexer.IdLower, lexer.Eq, lexer.IntLit,
		lexer.Eof,
	}, got)
	assert.False(t, sink.HasErrors())
}

// TestNestedBlockComments exercises the spec scenario: nested (* *) comments
// that fully swallow their contents on a single line.
func TestNestedBlockComments(t *testing.T) {
	l, sink := newLexer(t, "(* outer (* inner *) outer *) let x = 1")
	got := kinds(t, l)
	assert.Equal(t, []lexer.TokenKind{
		lexer.KwLet, lexer.IdLower, lexer.Eq, lexer.IntLit, lexer.Eof,
	}, got)
	assert.False(t, sink.HasErrors())
}

func TestBlockCommentSpanningLines(t *testing.T) {
	l, sink := newLexer(t, "(* line one\nline two *) let x = 1")
	got := kinds(t, l)
	assert.Equal(t, []lexer.TokenKind{
		lexer.KwLet, lexer.IdLower, lexer.Eq, lexer.IntLit, lexer.Eof,
	}, got)
	assert.False(t, sink.HasErrors())
}

func TestUnterminatedBlockCommentReportsOnce(t *testing.T) {
	l, sink := newLexer(t, "(* never closes\nlet x = 1")
	got := kinds(t, l)
	assert.Equal(t, []lexer.TokenKind{lexer.Eof}, got)

	count := 0
	for _, d := range sink.All() {
		if d.Code == diag.CodeLexUnterminatedComment {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSymbolicOperatorsLongestMatchFirst(t *testing.T) {
	l, sink := newLexer(t, "-> +. -. *. /. ** && || <> <= >= == != := + - < >")
	assert.Equal(t, []lexer.TokenKind{
		lexer.Arrow, lexer.PlusDot, lexer.MinusDot, lexer.StarDot, lexer.SlashDot,
		lexer.StarStar, lexer.AndAnd, lexer.OrOr, lexer.LtGt, lexer.Le, lexer.Ge,
		lexer.EqEq, lexer.BangEq, lexer.ColonEq, lexer.Plus, lexer.Minus, lexer.Lt, lexer.Gt,
		lexer.Eof,
	}, kinds(t, l))
	assert.False(t, sink.HasErrors())
}

func TestIllegalCharacterFallback(t *testing.T) {
	l, sink := newLexer(t, "let x = 1 @ 2")
	got := kinds(t, l)
	assert.Contains(t, got, lexer.Error)
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.CodeLexIllegalChar {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPeekDoesNotConsume(t *testing.T) {
	l, _ := newLexer(t, "let x = 1")
	first := l.Peek(0)
	assert.Equal(t, lexer.KwLet, first.Kind)
	second := l.Peek(1)
	assert.Equal(t, lexer.IdLower, second.Kind)

	// Peek must not have consumed anything.
	assert.Equal(t, lexer.KwLet, l.Next().Kind)
	assert.Equal(t, lexer.IdLower, l.Next().Kind)
}

func TestCrashOnErrorStopsAtFirstLexError(t *testing.T) {
	l, sink := newLexer(t, "let x = @ 1", lexer.WithCrashOnError(true))
	got := kinds(t, l)
	// The illegal char becomes the Error token, then the scan is crashed
	// and every subsequent pull returns Eof rather than "1".
	require.True(t, len(got) >= 1)
	assert.Equal(t, lexer.Error, got[len(got)-2])
	assert.Equal(t, lexer.Eof, got[len(got)-1])
	assert.True(t, sink.HasErrors())
}

func TestTokenSpansCoverWholeSourceNoGapsOrOverlaps(t *testing.T) {
	src := "let x = 1 + 2"
	l, _ := newLexer(t, src)
	var prevEnd int
	for {
		tok := l.Next()
		if tok.Kind == lexer.Eof {
			break
		}
		assert.GreaterOrEqual(t, tok.Span.Start, prevEnd)
		// Only whitespace lies between tokens, and each span holds exactly its lexeme.
		assert.Empty(t, strings.TrimSpace(src[prevEnd:tok.Span.Start]))
		assert.Equal(t, tok.Lexeme, src[tok.Span.Start:tok.Span.End])
		prevEnd = tok.Span.End
	}
	assert.Equal(t, len(src), prevEnd)
}
