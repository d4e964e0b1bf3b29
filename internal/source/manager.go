// Package source implements the SourceManager/preprocessor: it streams
// lines from a root file and its transitive #include dependencies,
// rejecting cycles and stamping precise (file, line) provenance on every
// line it yields (spec.md §4.1).
//
// The pull-iterator shape here is modeled on original_source's
// Source::Reader (parser/lexer-utils.cpp), which walks a cursor across a
// vector of concatenated per-file buffers and silently rolls from one
// file's end to the next file's start — reframed as an explicit Go state
// machine rather than C++ iterator operator overloads, per spec.md §9's
// redesign note about generators.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lumen-lang/lumen/internal/diag"
)

// EventKind distinguishes the two ScanEvent variants of spec.md §4.1.
type EventKind int

const (
	// EventNewFile is emitted immediately before the first line of a file,
	// and again when control returns to a parent file after an included
	// file finishes.
	EventNewFile EventKind = iota
	// EventLine carries one non-directive source line.
	EventLine
)

// ScanEvent is one item of the Manager's pull-based output stream.
type ScanEvent struct {
	Kind   EventKind
	FileID int
	Line   string // valid only when Kind == EventLine
	LineNo int    // 1-indexed within FileID's own file; valid only for EventLine
}

type fileFrame struct {
	fileID         int
	absPath        string
	lines          []string
	idx            int // index of the next line to read (0-based)
	newFileEmitted bool
}

// Manager streams ScanEvents from a root file, inlining #include
// directives depth-first. It owns the file buffers for the whole
// compilation (spec.md §3 Lifecycle) and is not safe for concurrent use.
type Manager struct {
	sink         *diag.Sink
	crashOnError bool
	lineObserver func(fileID, lineNo int, line string)

	stack     []*fileFrame
	processed map[string]bool // absolute path -> fully processed (include-once)
	onStack   map[string]bool // absolute path -> currently being scanned (cycle detection)

	done bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithCrashOnError makes the manager stop at the first preprocessor error
// instead of dropping the offending directive and continuing.
func WithCrashOnError(crash bool) Option {
	return func(m *Manager) { m.crashOnError = crash }
}

// WithLineObserver registers a callback invoked with every non-directive
// line as it is pulled, in stream order. This lets a caller (the CLI's
// --print-preprocessed flag) reconstruct the preprocessed text alongside
// the live lex/parse/type pipeline without re-running the preprocessor
// (and so without double-reporting its diagnostics into the shared sink).
func WithLineObserver(fn func(fileID, lineNo int, line string)) Option {
	return func(m *Manager) { m.lineObserver = fn }
}

// Open creates a Manager rooted at rootPath. A failure to read rootPath is
// an IO error (spec.md §7 kind 1): fatal, reported to sink, and returned
// as a Go error because there is nothing left to preprocess.
func Open(sink *diag.Sink, rootPath string, opts ...Option) (*Manager, error) {
	m := &Manager{
		sink:      sink,
		processed: make(map[string]bool),
		onStack:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}

	abs, err := filepath.Abs(rootPath)
	if err != nil {
		sink.Errorf(diag.StagePreprocessor, diag.CodeSourceIO, diag.Span{}, "cannot resolve path %q: %v", rootPath, err)
		return nil, fmt.Errorf("source: resolve root %q: %w", rootPath, err)
	}
	frame, err := m.openFrame(abs)
	if err != nil {
		sink.Errorf(diag.StagePreprocessor, diag.CodeSourceIO, diag.Span{}, "cannot open source file %q: %v", rootPath, err)
		return nil, fmt.Errorf("source: open root %q: %w", rootPath, err)
	}
	m.onStack[abs] = true
	m.stack = append(m.stack, frame)
	return m, nil
}

func (m *Manager) openFrame(absPath string) (*fileFrame, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	text := string(data)
	var lines []string
	if text == "" {
		lines = nil
	} else {
		lines = strings.Split(text, "\n")
		// A trailing "\n" produces one synthetic empty final element from
		// strings.Split; drop it so line counts match the file's actual
		// line count instead of counting a phantom line past EOF.
		if lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
	}
	id := m.sink.RegisterFile(absPath)
	return &fileFrame{fileID: id, absPath: absPath, lines: lines}, nil
}

// Next pulls the next ScanEvent. ok is false once the root file and all
// its includes have been fully consumed. fatal is non-nil only when
// crash_on_error aborted the scan; the caller must stop preprocessing
// immediately in that case (the offending diagnostic has already been
// reported to sink).
func (m *Manager) Next() (ev ScanEvent, ok bool, fatal error) {
	for {
		if m.done || len(m.stack) == 0 {
			m.done = true
			return ScanEvent{}, false, nil
		}

		top := m.stack[len(m.stack)-1]

		if !top.newFileEmitted {
			top.newFileEmitted = true
			return ScanEvent{Kind: EventNewFile, FileID: top.fileID}, true, nil
		}

		if top.idx >= len(top.lines) {
			m.processed[top.absPath] = true
			delete(m.onStack, top.absPath)
			m.stack = m.stack[:len(m.stack)-1]
			if len(m.stack) == 0 {
				m.done = true
				return ScanEvent{}, false, nil
			}
			// Re-announce the parent so the next pulled event is its
			// NewFile, per spec.md §4.1's "again when returning to the
			// parent on include completion".
			m.stack[len(m.stack)-1].newFileEmitted = false
			continue
		}

		line := top.lines[top.idx]
		top.idx++
		lineNo := top.idx

		directivePath, isDirective, bad := parseIncludeDirective(line)
		if !isDirective {
			if m.lineObserver != nil {
				m.lineObserver(top.fileID, lineNo, line)
			}
			return ScanEvent{Kind: EventLine, FileID: top.fileID, Line: line, LineNo: lineNo}, true, nil
		}

		span := diag.Span{FileID: top.fileID, Line: lineNo, Column: 1, Start: 0, End: len(line)}
		if bad != "" {
			m.sink.Errorf(diag.StagePreprocessor, diag.CodeBadDirective, span, "%s", bad)
			if m.crashOnError {
				m.done = true
				return ScanEvent{}, false, fmt.Errorf("source: bad directive at %s:%d", top.absPath, lineNo)
			}
			continue
		}

		includeAbs, err := filepath.Abs(directivePath)
		if err != nil {
			m.sink.Errorf(diag.StagePreprocessor, diag.CodeIncludeNotFound, span, "cannot resolve include path %q: %v", directivePath, err)
			if m.crashOnError {
				m.done = true
				return ScanEvent{}, false, fmt.Errorf("source: resolve include %q: %w", directivePath, err)
			}
			continue
		}

		if m.onStack[includeAbs] {
			m.sink.Errorf(diag.StagePreprocessor, diag.CodeIncludeCycle, span, "include cycle detected: %q is already being processed", directivePath)
			if m.crashOnError {
				m.done = true
				return ScanEvent{}, false, fmt.Errorf("source: include cycle at %q", directivePath)
			}
			continue
		}

		if m.processed[includeAbs] {
			// Include-once: silently skip, per spec.md §4.1.
			continue
		}

		childFrame, err := m.openFrame(includeAbs)
		if err != nil {
			m.sink.Errorf(diag.StagePreprocessor, diag.CodeIncludeNotFound, span, "include file not found: %q: %v", directivePath, err)
			if m.crashOnError {
				m.done = true
				return ScanEvent{}, false, fmt.Errorf("source: include not found %q: %w", directivePath, err)
			}
			continue
		}
		m.onStack[includeAbs] = true
		m.stack = append(m.stack, childFrame)
	}
}

// parseIncludeDirective recognizes a `#include "path"` line starting in
// column 1. ok reports whether the line was a directive attempt at all
// (any line starting with '#' in column 1); bad carries a human-readable
// reason when the attempt was malformed.
func parseIncludeDirective(line string) (path string, ok bool, bad string) {
	if !strings.HasPrefix(line, "#") {
		return "", false, ""
	}
	rest := strings.TrimPrefix(line, "#include")
	if rest == line {
		return "", true, fmt.Sprintf("unrecognized preprocessor directive: %q", firstWord(line))
	}
	rest = strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(rest, `"`) {
		return "", true, "#include requires a double-quoted path"
	}
	rest = rest[1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", true, "#include path is missing a closing quote"
	}
	path = rest[:end]
	trailer := strings.TrimSpace(rest[end+1:])
	if trailer != "" {
		return "", true, fmt.Sprintf("unexpected trailing text after #include path: %q", trailer)
	}
	return path, true, ""
}

func firstWord(s string) string {
	s = strings.TrimPrefix(s, "#")
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return "#" + s[:i]
	}
	return "#" + s
}
