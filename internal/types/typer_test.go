package types_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/lexer"
	"github.com/lumen-lang/lumen/internal/parser"
	"github.com/lumen-lang/lumen/internal/source"
	"github.com/lumen-lang/lumen/internal/types"
)

// checkSrc drives the full SourceManager -> Lexer -> Parser -> Typer
// pipeline over src and returns the Typer (for arena inspection) plus
// the sink every phase reported into.
func checkSrc(t *testing.T, src string) (*types.Typer, *diag.Sink) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "root.lum")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	sink := diag.NewSink()
	mgr, err := source.Open(sink, path)
	require.NoError(t, err)

	lx := lexer.New(sink, mgr)
	p := parser.New(lx, sink)
	prog := p.ParseProgram()

	typer := types.NewTyper(sink)
	typer.CheckProgram(prog)
	return typer, sink
}

func TestTyperAcceptsLetConstant(t *testing.T) {
	_, sink := checkSrc(t, "let x = 42\n")
	assert.False(t, sink.HasErrors())
}

func TestTyperRecursiveFactorial(t *testing.T) {
	// spec.md §8 scenario 2.
	_, sink := checkSrc(t, "let rec f n = if n = 0 then 1 else n * f (n - 1)\n")
	assert.False(t, sink.HasErrors())
}

func TestTyperNonRecursiveCannotSeeSelf(t *testing.T) {
	_, sink := checkSrc(t, "let f n = if n = 0 then 1 else n * f (n - 1)\n")
	assert.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.CodeNameUndefinedIdent {
			found = true
		}
	}
	assert.True(t, found, "expected an undefined-identifier diagnostic for the non-rec self-reference")
}

func TestTyperUnifyFailureOnIfBranches(t *testing.T) {
	_, sink := checkSrc(t, "let x = if true then 1 else 2.0\n")
	assert.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.CodeTypeUnifyFailure {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTyperTypeDefAndConstructorPattern(t *testing.T) {
	// spec.md §8 scenario 3.
	src := "type tree = Leaf | Node of int tree tree\n" +
		"let rec depth t = match t with Leaf -> 0 | Node n l r -> 1\n"
	_, sink := checkSrc(t, src)
	// Node has arity 3 (int, tree, tree); the pattern above supplies 3
	// subpatterns so it should type-check with no constructor-arity
	// diagnostic. (depth's own recursion is unused in either branch,
	// which is legal — spec.md has no unused-binding check.)
	for _, d := range sink.All() {
		assert.NotEqual(t, diag.CodeNameConstrArityMismatch, d.Code)
	}
}

func TestTyperConstructorArityMismatch(t *testing.T) {
	src := "type tree = Leaf | Node of int tree tree\n" +
		"let x = match Leaf with Node a b -> 0 | Leaf -> 1\n"
	_, sink := checkSrc(t, src)
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.CodeNameConstrArityMismatch {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTyperDuplicateTypeNameIsRejected(t *testing.T) {
	src := "type t = A\ntype t = B\n"
	_, sink := checkSrc(t, src)
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.CodeNameDuplicateDef {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTyperForLoopBindsIntAndRequiresUnitBody(t *testing.T) {
	src := "let mutable total : int\nlet f n = for i = 0 to n do total := i done\n"
	_, sink := checkSrc(t, src)
	assert.False(t, sink.HasErrors())
}

func TestTyperArrayRankExactMismatch(t *testing.T) {
	src := "let mutable a[10] : int\nlet mutable b[3, 4] : int\nlet f x = x\nlet y = f a\nlet z = f b\n" +
		"let w = a[0] + b[0, 0]\n" +
		"let bad = (a := b)\n"
	_, sink := checkSrc(t, src)
	assert.True(t, sink.HasErrors())
}

func TestTyperRefAndDerefAssign(t *testing.T) {
	src := "let mutable counter : int\n" +
		"let bump (u : unit) = counter := !counter + 1\n"
	_, sink := checkSrc(t, src)
	assert.False(t, sink.HasErrors())
}

func TestTyperUndefinedConstructorInExpr(t *testing.T) {
	_, sink := checkSrc(t, "let x = Ghost 1 2\n")
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.CodeNameUndefinedConstr {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTyperOccursCheckRejectsRecursiveUnification(t *testing.T) {
	// `let rec f = f f` tries to unify f's own Unknown with a function
	// type built from itself, which must be rejected by the occurs
	// check rather than looping forever.
	_, sink := checkSrc(t, "let rec f = f f\n")
	assert.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.CodeTypeOccursCheck || d.Code == diag.CodeTypeUnifyFailure {
			found = true
		}
	}
	assert.True(t, found)
}

// Directly exercise the arena to confirm Find path-compresses a chain of
// forwarded Unknowns, independent of parsing.
func TestArenaFindCollapsesForwardingChain(t *testing.T) {
	a := types.NewArena()
	u1 := a.NewUnknown()
	u2 := a.NewUnknown()
	u3 := a.NewUnknown()
	intH := a.NewBasic(types.KindInt)

	a.Cell(u1).Forward = u2
	a.Cell(u2).Forward = u3
	a.Cell(u3).Forward = intH

	rep := a.Find(u1)
	assert.Equal(t, intH, rep)
	// Path compression: u1 now points straight at the representative.
	assert.Equal(t, intH, a.Cell(u1).Forward)
}

func TestTyperStringLiteralIsCharArray(t *testing.T) {
	_, sink := checkSrc(t, `let s = "hi"` + "\n")
	assert.False(t, sink.HasErrors())
}
