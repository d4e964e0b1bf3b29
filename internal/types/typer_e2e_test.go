package types_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/lexer"
	"github.com/lumen-lang/lumen/internal/parser"
	"github.com/lumen-lang/lumen/internal/source"
	"github.com/lumen-lang/lumen/internal/types"
)

// These six tests cover the concrete end-to-end scenarios in spec.md §8, in
// order. Scenario 4 (include cycle) drives only the SourceManager; the
// others drive the full SourceManager -> Lexer -> Parser -> Typer pipeline.

func TestScenario1_LetConstantInfersInt(t *testing.T) {
	typer, prog, sink := checkSrcProg(t, "let x = 42\n")
	require.False(t, sink.HasErrors())

	require.Len(t, prog.Defs, 1)
	letStmt, ok := prog.Defs[0].(*ast.LetStmt)
	require.True(t, ok)
	require.Len(t, letStmt.Defs, 1)

	def := letStmt.Defs[0]
	assert.Equal(t, ast.DefConstant, def.Kind)
	lit, ok := def.Body.(*ast.IntLit)
	require.True(t, ok)
	assert.Equal(t, int64(42), lit.Value)

	h, ok := typer.LookupName("x")
	require.True(t, ok)
	assert.Equal(t, "int", typer.TypeString(h))
}

func TestScenario2_RecursiveFactorialInfersIntToInt(t *testing.T) {
	typer, _, sink := checkSrcProg(t, "let rec f x = if x = 0 then 1 else x * f (x - 1)\n")
	require.False(t, sink.HasErrors())

	h, ok := typer.LookupName("f")
	require.True(t, ok)
	assert.Equal(t, "int -> int", typer.TypeString(h))
}

func TestScenario3_TreeTypeDefHasTwoConstructors(t *testing.T) {
	_, prog, sink := checkSrcProg(t, "type tree = Leaf | Node of int tree tree\n")
	require.False(t, sink.HasErrors())

	require.Len(t, prog.Defs, 1)
	typeStmt, ok := prog.Defs[0].(*ast.TypeStmt)
	require.True(t, ok)
	require.Len(t, typeStmt.Defs, 1)

	def := typeStmt.Defs[0]
	assert.Equal(t, "tree", def.Name.Name)
	require.Len(t, def.Constructors, 2)

	leaf := def.Constructors[0]
	assert.Equal(t, "Leaf", leaf.Name.Name)
	assert.Empty(t, leaf.Fields)

	node := def.Constructors[1]
	assert.Equal(t, "Node", node.Name.Name)
	require.Len(t, node.Fields, 3)
}

func TestScenario4_CyclicIncludesReportExactlyOneError(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.lla")
	bPath := filepath.Join(dir, "b.lla")
	require.NoError(t, os.WriteFile(aPath, []byte("#include \""+bPath+"\"\n"), 0o644))
	require.NoError(t, os.WriteFile(bPath, []byte("#include \""+aPath+"\"\n"), 0o644))

	sink := diag.NewSink()
	mgr, err := source.Open(sink, aPath)
	require.NoError(t, err)

	for {
		_, ok, fatal := mgr.Next()
		require.NoError(t, fatal)
		if !ok {
			break
		}
	}

	cycleCount := 0
	for _, d := range sink.All() {
		if d.Code == diag.CodeIncludeCycle {
			cycleCount++
			assert.Contains(t, d.Message, "a.lla")
		}
	}
	assert.Equal(t, 1, cycleCount, "expected exactly one IncludeCycle diagnostic")
}

func TestScenario5_AddingBoolToIntIsATypeError(t *testing.T) {
	_, _, sink := checkSrcProg(t, "let x = 1 + true\n")
	require.True(t, sink.HasErrors())

	found := false
	for _, d := range sink.All() {
		if d.Code == diag.CodeTypeUnifyFailure {
			found = true
			assert.Contains(t, d.Message, "+")
		}
	}
	assert.True(t, found, "expected a type-unification diagnostic citing the + operator")
}

func TestScenario6_NestedBlockCommentIsSkippedWithNoLexError(t *testing.T) {
	_, prog, sink := checkSrcProg(t, "(* outer (* inner *) outer *) let x = 1\n")
	require.False(t, sink.HasErrors())

	require.Len(t, prog.Defs, 1)
	letStmt, ok := prog.Defs[0].(*ast.LetStmt)
	require.True(t, ok)
	require.Len(t, letStmt.Defs, 1)
	assert.Equal(t, "x", letStmt.Defs[0].Name.Name)

	for _, d := range sink.All() {
		assert.NotEqual(t, diag.StageLexer, d.Stage)
	}
}

// checkSrcProg is checkSrc (see typer_test.go) plus the parsed Program, for
// scenarios that need to inspect AST shape in addition to inferred types.
func checkSrcProg(t *testing.T, src string) (*types.Typer, *ast.Program, *diag.Sink) {
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
	return typer, prog, sink
}
