package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Formatter renders diagnostics in a Rust-style format with source code
// snippets and underlines, colored by severity when the output stream is a
// real terminal.
type Formatter struct {
	out         io.Writer
	sourceCache map[string]string // cache of source files by filename
	color       bool

	errColor  *color.Color
	warnColor *color.Color
	noteColor *color.Color
}

// NewFormatter creates a formatter writing to os.Stderr, auto-detecting
// whether to colorize based on whether stderr is a terminal (grounded on
// akashmaji946-go-mix's main.go which does the same color.New(...) setup
// for its REPL errors).
func NewFormatter() *Formatter {
	return NewFormatterTo(os.Stderr)
}

// NewFormatterTo creates a formatter writing to an arbitrary stream. Color
// is enabled only when w is an *os.File that is an actual terminal (mattn/go-isatty), matching the teacher pack's
// convention of never coloring redirected/piped output.
func NewFormatterTo(w io.Writer) *Formatter {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		if useColor {
			w = colorable.NewColorable(f)
		}
	}
	return &Formatter{
		out:         w,
		sourceCache: make(map[string]string),
		color:       useColor,
		errColor:    color.New(color.FgRed, color.Bold),
		warnColor:   color.New(color.FgYellow, color.Bold),
		noteColor:   color.New(color.FgCyan),
	}
}

// LoadSource loads source code for a file (cached).
func (f *Formatter) LoadSource(filename string) (string, error) {
	if filename == "" {
		return "", nil
	}
	if src, ok := f.sourceCache[filename]; ok {
		return src, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	src := string(data)
	f.sourceCache[filename] = src
	return src, nil
}

// Format renders a single diagnostic, resolving its FileID through sink's
// filename registry.
func (f *Formatter) Format(sink *Sink, d Diagnostic) {
	f.printHeader(d)

	if d.Span.IsValid() {
		filename := sink.Filename(d.Span.FileID)
		src, err := f.LoadSource(filename)
		if err != nil {
			fmt.Fprintf(f.out, "  --> %s:%d:%d\n", filename, d.Span.Line, d.Span.Column)
		} else {
			f.printFileSpan(filename, src, d.Span)
		}
	}

	for _, note := range d.Notes {
		f.notePrefix()
		fmt.Fprintf(f.out, "note: %s\n", note)
	}
}

// FormatAll renders every diagnostic in sink in (FileID, Line, Column)
// order, separated by a blank line.
func (f *Formatter) FormatAll(sink *Sink) {
	for i, d := range sink.All() {
		if i > 0 {
			fmt.Fprintln(f.out)
		}
		f.Format(sink, d)
	}
}

func (f *Formatter) severityColor(s Severity) *color.Color {
	switch s {
	case SeverityError:
		return f.errColor
	case SeverityWarning:
		return f.warnColor
	default:
		return f.noteColor
	}
}

func (f *Formatter) printHeader(d Diagnostic) {
	severity := string(d.Severity)
	if severity == "" {
		severity = "error"
	}
	label := severity
	if d.Code != "" {
		label = fmt.Sprintf("%s[%s]", severity, d.Code)
	}
	if f.color {
		f.severityColor(d.Severity).Fprint(f.out, label)
		fmt.Fprintf(f.out, ": %s\n", d.Message)
		return
	}
	fmt.Fprintf(f.out, "%s: %s\n", label, d.Message)
}

func (f *Formatter) notePrefix() {
	if f.color {
		f.noteColor.Fprint(f.out, "  = note")
		fmt.Fprint(f.out, ": ")
		return
	}
	fmt.Fprint(f.out, "  = note: ")
}

// printFileSpan prints the source line(s) covered by span with a caret
// underline, two lines of context on either side.
func (f *Formatter) printFileSpan(filename, src string, span Span) {
	lines := strings.Split(src, "\n")
	maxLine := len(lines)
	if span.Line < 1 || span.Line > maxLine {
		fmt.Fprintf(f.out, "  --> %s:%d:%d\n", filename, span.Line, span.Column)
		return
	}

	contextStart := maxInt(1, span.Line-2)
	contextEnd := minInt(maxLine, span.Line+2)
	lineNumWidth := len(fmt.Sprintf("%d", contextEnd))

	fmt.Fprintf(f.out, "  --> %s:%d:%d\n", filename, span.Line, span.Column)
	fmt.Fprintf(f.out, "   %s |\n", strings.Repeat(" ", lineNumWidth))

	for lineNum := contextStart; lineNum <= contextEnd; lineNum++ {
		content := lines[lineNum-1]
		fmt.Fprintf(f.out, " %*d | %s\n", lineNumWidth, lineNum, content)
		if lineNum == span.Line {
			f.printUnderline(lineNumWidth, content, span)
		}
	}
	fmt.Fprintf(f.out, "   %s |\n", strings.Repeat(" ", lineNumWidth))
}

func (f *Formatter) printUnderline(lineNumWidth int, content string, span Span) {
	width := maxInt(1, span.End-span.Start)
	start := maxInt(0, span.Column-1)
	end := minInt(len(content), start+width)
	if end < start {
		end = start
	}

	fmt.Fprintf(f.out, "   %s | %s", strings.Repeat(" ", lineNumWidth), strings.Repeat(" ", start))
	underline := strings.Repeat("^", maxInt(1, end-start))
	if f.color {
		f.errColor.Fprint(f.out, underline)
	} else {
		fmt.Fprint(f.out, underline)
	}
	fmt.Fprintln(f.out)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
