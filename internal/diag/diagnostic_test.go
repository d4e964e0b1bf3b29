package diag_test

import (
	"testing"

	"github.com/lumen-lang/lumen/internal/diag"
)

func TestSinkRegisterFileAndReport(t *testing.T) {
	sink := diag.NewSink()
	id := sink.RegisterFile("foo.lum")
	if id != 0 {
		t.Fatalf("expected first registered file to get id 0, got %d", id)
	}
	if got := sink.Filename(id); got != "foo.lum" {
		t.Fatalf("expected filename %q, got %q", "foo.lum", got)
	}

	sink.Errorf(diag.StageLexer, diag.CodeLexIllegalChar, diag.Span{FileID: id, Line: 3, Column: 5}, "illegal character %q", '$')

	if !sink.HasErrors() {
		t.Fatal("expected HasErrors to be true after reporting an Error diagnostic")
	}
	all := sink.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(all))
	}
	if all[0].Message != `illegal character '$'` {
		t.Fatalf("unexpected message: %q", all[0].Message)
	}
}

func TestSinkOrderingByFileLineColumn(t *testing.T) {
	sink := diag.NewSink()
	a := sink.RegisterFile("a.lum")
	b := sink.RegisterFile("b.lum")

	sink.Errorf(diag.StageParser, diag.CodeParseUnexpectedToken, diag.Span{FileID: b, Line: 1, Column: 1}, "b first")
	sink.Errorf(diag.StageParser, diag.CodeParseUnexpectedToken, diag.Span{FileID: a, Line: 5, Column: 1}, "a second line")
	sink.Errorf(diag.StageParser, diag.CodeParseUnexpectedToken, diag.Span{FileID: a, Line: 2, Column: 9}, "a first line, later col")
	sink.Errorf(diag.StageParser, diag.CodeParseUnexpectedToken, diag.Span{FileID: a, Line: 2, Column: 1}, "a first line, earliest col")

	all := sink.All()
	want := []string{
		"a first line, earliest col",
		"a first line, later col",
		"a second line",
		"b first",
	}
	if len(all) != len(want) {
		t.Fatalf("expected %d diagnostics, got %d", len(want), len(all))
	}
	for i, w := range want {
		if all[i].Message != w {
			t.Fatalf("position %d: expected %q, got %q", i, w, all[i].Message)
		}
	}
}

func TestFailFastModeAborts(t *testing.T) {
	sink := diag.NewSink().WithMode(diag.FailFast)
	if sink.ShouldAbort() {
		t.Fatal("expected ShouldAbort to be false before any diagnostic")
	}
	sink.Errorf(diag.StageTyper, diag.CodeTypeUnifyFailure, diag.Span{Line: 1, Column: 1}, "boom")
	if !sink.ShouldAbort() {
		t.Fatal("expected ShouldAbort to be true in FailFast mode after an Error")
	}
}

func TestAccumulatingModeNeverAborts(t *testing.T) {
	sink := diag.NewSink()
	sink.Errorf(diag.StageTyper, diag.CodeTypeUnifyFailure, diag.Span{Line: 1, Column: 1}, "boom")
	if sink.ShouldAbort() {
		t.Fatal("expected ShouldAbort to stay false in Accumulating mode")
	}
}

func TestPanicCarriesRunID(t *testing.T) {
	sink := diag.NewSink()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected Panic to panic")
		}
		ip, ok := r.(diag.InternalPanic)
		if !ok {
			t.Fatalf("expected diag.InternalPanic, got %T", r)
		}
		if ip.RunID != sink.RunID {
			t.Fatalf("expected run id %s, got %s", sink.RunID, ip.RunID)
		}
	}()
	sink.Panic("invariant violated: %s", "forwarding chain not collapsed")
}
