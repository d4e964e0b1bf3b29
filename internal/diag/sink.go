package diag

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Mode controls how a Sink reacts to the first Error-severity diagnostic
// recorded within a phase.
type Mode int

const (
	// Accumulating is the default: a phase keeps running after an Error so
	// the user sees as many problems as possible in one pass.
	Accumulating Mode = iota
	// FailFast aborts the current phase (via Sink.ShouldAbort) the moment
	// an Error-severity diagnostic is recorded.
	FailFast
)

// Sink is the process-wide, append-only diagnostic collector threaded
// through every compiler phase (spec.md §4.5). It is not safe for
// concurrent use; the pipeline is single-threaded by design (spec.md §5).
type Sink struct {
	mode    Mode
	records []Diagnostic
	files   []string // FileID -> absolute filename registry

	// RunID tags this compilation run for correlation in fatal/internal
	// messages (see diag.Panic). One per Sink, not per Diagnostic.
	RunID uuid.UUID
}

// NewSink creates an empty sink in accumulating mode.
func NewSink() *Sink {
	return &Sink{
		mode:  Accumulating,
		RunID: uuid.New(),
	}
}

// WithMode returns the same sink configured with the given mode.
func (s *Sink) WithMode(m Mode) *Sink {
	s.mode = m
	return s
}

// RegisterFile assigns the next FileID to filename and returns it. Callers
// (the source manager) are the sole writer of this registry.
func (s *Sink) RegisterFile(filename string) int {
	s.files = append(s.files, filename)
	return len(s.files) - 1
}

// Filename resolves a FileID back to its absolute path, or "<unknown>" if
// the id was never registered.
func (s *Sink) Filename(id int) string {
	if id < 0 || id >= len(s.files) {
		return "<unknown>"
	}
	return s.files[id]
}

// Report appends a diagnostic to the sink.
func (s *Sink) Report(d Diagnostic) {
	s.records = append(s.records, d)
}

// Errorf is a convenience wrapper that builds and reports an Error-severity
// diagnostic.
func (s *Sink) Errorf(stage Stage, code Code, span Span, format string, args ...any) {
	s.Report(Diagnostic{
		Stage:    stage,
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	})
}

// Warnf is a convenience wrapper that builds and reports a Warning-severity
// diagnostic.
func (s *Sink) Warnf(stage Stage, code Code, span Span, format string, args ...any) {
	s.Report(Diagnostic{
		Stage:    stage,
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	})
}

// HasErrors reports whether any Error-severity diagnostic has been
// recorded so far.
func (s *Sink) HasErrors() bool {
	for _, d := range s.records {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ShouldAbort reports whether, under the sink's configured Mode, the
// current phase should stop immediately given what has been recorded so
// far. In FailFast mode this is true as soon as one Error exists; in
// Accumulating mode it is always false (the caller instead checks
// HasErrors between phases, per spec.md §4.5/§7: "the pipeline stops
// before the next phase if any Error was recorded").
func (s *Sink) ShouldAbort() bool {
	return s.mode == FailFast && s.HasErrors()
}

// All returns every diagnostic recorded so far, sorted by (FileID, Line,
// Column) as required by spec.md §7's user-visible ordering guarantee.
// Diagnostics within a phase are already appended in source order; sorting
// here also preserves cross-phase ordering because stable sort keeps
// earlier-appended (earlier-phase) records first among ties.
func (s *Sink) All() []Diagnostic {
	out := make([]Diagnostic, len(s.records))
	copy(out, s.records)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Span, out[j].Span
		if a.FileID != b.FileID {
			return a.FileID < b.FileID
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// InternalPanic is raised for spec.md §7 kind-7 invariant violations. It
// bypasses the sink's recoverable-diagnostic path entirely and is
// recovered by the CLI's runFrontend, which turns it into a non-zero exit
// distinct from the user-error exit code.
type InternalPanic struct {
	RunID   uuid.UUID
	Message string
}

func (p InternalPanic) Error() string {
	return fmt.Sprintf("internal error [run %s]: %s", p.RunID, p.Message)
}

// Panic raises an InternalPanic tagged with this sink's RunID. Callers use
// this for invariant violations that indicate a compiler bug, never for
// anything a Lumen program's source text can trigger.
func (s *Sink) Panic(format string, args ...any) {
	panic(InternalPanic{RunID: s.RunID, Message: fmt.Sprintf(format, args...)})
}
