package lexer

import "github.com/lumen-lang/lumen/internal/source"

// cursor adapts a source.Manager's line-oriented ScanEvent stream into a
// single rune-at-a-time stream with running (file, line, column) position
// tracking. Each line is terminated by a synthetic '\n' rune so that
// single-line matchers (comments, string/char literals) can detect end of
// line without special-casing, while matchers that are allowed to span
// lines (nested block comments) simply keep advancing across it.
//
// This is the Go reframing of original_source's Source::Reader
// (parser/lexer-utils.cpp), which walks one cursor across a vector of
// concatenated per-file buffers; ours walks one cursor across the source
// manager's pulled lines instead, per spec.md §9's explicit-iterator
// redesign note.
type cursor struct {
	mgr *source.Manager

	fileID int
	lineNo int
	runes  []rune
	pos    int // index into runes; pos == len(runes) means ch is the virtual '\n'

	ch     rune
	eof    bool
	offset int // global rune offset, incremented on every advance
}

func newCursor(mgr *source.Manager) *cursor {
	c := &cursor{mgr: mgr}
	c.pullLine()
	c.setCh()
	return c
}

// pullLine advances past any EventNewFile markers and loads the next
// EventLine's text, or marks eof if the manager is exhausted.
func (c *cursor) pullLine() {
	for {
		ev, ok, _ := c.mgr.Next()
		if !ok {
			c.eof = true
			c.runes = nil
			c.pos = 0
			return
		}
		if ev.Kind == source.EventNewFile {
			c.fileID = ev.FileID
			continue
		}
		c.lineNo = ev.LineNo
		c.runes = []rune(ev.Line)
		c.pos = 0
		return
	}
}

func (c *cursor) setCh() {
	if c.eof {
		c.ch = 0
		return
	}
	if c.pos < len(c.runes) {
		c.ch = c.runes[c.pos]
	} else {
		c.ch = '\n'
	}
}

// advance consumes the current rune and moves to the next one, pulling a
// new line from the source manager when the synthetic newline is crossed.
func (c *cursor) advance() {
	if c.eof {
		return
	}
	c.offset++
	if c.pos < len(c.runes) {
		c.pos++
		c.setCh()
		return
	}
	// We were sitting on the virtual '\n'; cross into the next line.
	c.pullLine()
	c.setCh()
}

// peekAt returns the rune n positions ahead of the current one without
// consuming, restricted to the current line's buffer (matchers that use
// this never need to look past a line boundary, since no token may
// straddle two lines per spec.md §4.2).
func (c *cursor) peekAt(n int) rune {
	idx := c.pos + n
	if idx < 0 || idx >= len(c.runes) {
		return 0
	}
	return c.runes[idx]
}

func (c *cursor) line() int   { return c.lineNo }
func (c *cursor) col() int    { return c.pos + 1 }
func (c *cursor) file() int   { return c.fileID }
func (c *cursor) atEOF() bool { return c.eof }
