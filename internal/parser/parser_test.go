package parser_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/lexer"
	"github.com/lumen-lang/lumen/internal/parser"
	"github.com/lumen-lang/lumen/internal/source"
)

func parseSrc(t *testing.T, src string) (*ast.Program, *diag.Sink) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "root.lum")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	sink := diag.NewSink()
	mgr, err := source.Open(sink, path)
	require.NoError(t, err)

	lx := lexer.New(sink, mgr)
	p := parser.New(lx, sink)
	return p.ParseProgram(), sink
}

func firstDef[T any](t *testing.T, prog *ast.Program) T {
	t.Helper()
	require.NotEmpty(t, prog.Defs)
	def, ok := prog.Defs[0].(T)
	require.True(t, ok, "expected %T, got %T", *new(T), prog.Defs[0])
	return def
}

func TestParseLetConstant(t *testing.T) {
	// spec.md §8 scenario 1: `let x = 42`.
	prog, sink := parseSrc(t, "let x = 42\n")
	assert.False(t, sink.HasErrors())

	stmt := firstDef[*ast.LetStmt](t, prog)
	assert.False(t, stmt.Recursive)
	require.Len(t, stmt.Defs, 1)

	def := stmt.Defs[0]
	assert.Equal(t, ast.DefConstant, def.Kind)
	assert.Equal(t, "x", def.Name.Name)
	lit, ok := def.Body.(*ast.IntLit)
	require.True(t, ok)
	assert.EqualValues(t, 42, lit.Value)
}

func TestParseLetRecFunction(t *testing.T) {
	// spec.md §8 scenario 2.
	prog, sink := parseSrc(t, "let rec f x = if x = 0 then 1 else x * f (x - 1)\n")
	assert.False(t, sink.HasErrors())

	stmt := firstDef[*ast.LetStmt](t, prog)
	assert.True(t, stmt.Recursive)
	require.Len(t, stmt.Defs, 1)

	def := stmt.Defs[0]
	assert.Equal(t, ast.DefFunction, def.Kind)
	require.Len(t, def.Params, 1)
	assert.Equal(t, "x", def.Params[0].Name.Name)

	ifExpr, ok := def.Body.(*ast.If)
	require.True(t, ok)
	require.NotNil(t, ifExpr.Else)

	cond, ok := ifExpr.Cond.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "=", cond.Op)

	mul, ok := ifExpr.Then.(*ast.BinaryOp)
	_ = mul
	assert.False(t, ok) // then-branch is the literal 1, not a BinaryOp

	elseMul, ok := ifExpr.Else.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "*", elseMul.Op)

	call, ok := elseMul.Right.(*ast.FuncCall)
	require.True(t, ok)
	assert.Equal(t, "f", call.Callee.Name)
	require.Len(t, call.Args, 1)
}

func TestParseTypeDefWithConstructors(t *testing.T) {
	// spec.md §8 scenario 3.
	prog, sink := parseSrc(t, "type tree = Leaf | Node of int tree tree\n")
	assert.False(t, sink.HasErrors())

	stmt := firstDef[*ast.TypeStmt](t, prog)
	require.Len(t, stmt.Defs, 1)
	typeDef := stmt.Defs[0]
	assert.Equal(t, "tree", typeDef.Name.Name)
	require.Len(t, typeDef.Constructors, 2)

	leaf := typeDef.Constructors[0]
	assert.Equal(t, "Leaf", leaf.Name.Name)
	assert.Empty(t, leaf.Fields)

	node := typeDef.Constructors[1]
	assert.Equal(t, "Node", node.Name.Name)
	require.Len(t, node.Fields, 3)
	basic, ok := node.Fields[0].(*ast.BasicType)
	require.True(t, ok)
	assert.Equal(t, ast.TagInt, basic.Tag)
	custom1, ok := node.Fields[1].(*ast.CustomType)
	require.True(t, ok)
	assert.Equal(t, "tree", custom1.Name.Name)
}

func TestParseNestedBlockComment(t *testing.T) {
	// spec.md §8 scenario 6.
	prog, sink := parseSrc(t, "(* outer (* inner *) outer *) let x = 1\n")
	assert.False(t, sink.HasErrors())
	require.Len(t, prog.Defs, 1)
}

func TestParseMatchWithConstructorPatterns(t *testing.T) {
	src := "let depth t = match t with Leaf -> 0 | Node l r -> 1\n"
	prog, sink := parseSrc(t, src)
	assert.False(t, sink.HasErrors())

	stmt := firstDef[*ast.LetStmt](t, prog)
	m, ok := stmt.Defs[0].Body.(*ast.Match)
	require.True(t, ok)
	require.Len(t, m.Clauses, 2)

	leafPat, ok := m.Clauses[0].Pattern.(*ast.PatConstr)
	require.True(t, ok)
	assert.Equal(t, "Leaf", leafPat.Name.Name)
	assert.Empty(t, leafPat.Args)
}

func TestParseArrayAccessAndNew(t *testing.T) {
	src := "let mutable arr[10] : int\nlet x = arr[0]\nlet y = new int[5]\n"
	prog, sink := parseSrc(t, src)
	assert.False(t, sink.HasErrors())
	require.Len(t, prog.Defs, 3)

	arrStmt := prog.Defs[0].(*ast.LetStmt)
	arrDef := arrStmt.Defs[0]
	assert.Equal(t, ast.DefArray, arrDef.Kind)
	require.Len(t, arrDef.Dims, 1)

	accessStmt := prog.Defs[1].(*ast.LetStmt)
	access, ok := accessStmt.Defs[0].Body.(*ast.ArrayAccess)
	require.True(t, ok)
	assert.Equal(t, "arr", access.Array.Name)

	newStmt := prog.Defs[2].(*ast.LetStmt)
	newOp, ok := newStmt.Defs[0].Body.(*ast.NewOp)
	require.True(t, ok)
	require.Len(t, newOp.Dims, 1)
}

func TestParseFunctionTypeArrow(t *testing.T) {
	src := "let f (g : int -> bool) (x : int) : bool = g x\n"
	prog, sink := parseSrc(t, src)
	assert.False(t, sink.HasErrors())

	stmt := firstDef[*ast.LetStmt](t, prog)
	def := stmt.Defs[0]
	require.Len(t, def.Params, 2)
	fnType, ok := def.Params[0].Annotation.(*ast.FunctionType)
	require.True(t, ok)
	_, ok = fnType.Lhs.(*ast.BasicType)
	require.True(t, ok)
	_, ok = fnType.Rhs.(*ast.BasicType)
	require.True(t, ok)
}

func TestParseRecoversAfterSyntaxErrorAtNextLet(t *testing.T) {
	src := "let x = )\nlet y = 2\n"
	prog, sink := parseSrc(t, src)
	assert.True(t, sink.HasErrors())
	// Recovery resynchronizes at the next 'let', so the well-formed second
	// definition is still recovered (spec.md §4.3's recovery rule).
	require.Len(t, prog.Defs, 2)
	stmt := prog.Defs[1].(*ast.LetStmt)
	lit, ok := stmt.Defs[0].Body.(*ast.IntLit)
	require.True(t, ok)
	assert.EqualValues(t, 2, lit.Value)
}

func TestParseOperatorPrecedence(t *testing.T) {
	// `1 + 2 * 3` should parse as `1 + (2 * 3)`.
	prog, sink := parseSrc(t, "let x = 1 + 2 * 3\n")
	assert.False(t, sink.HasErrors())
	stmt := firstDef[*ast.LetStmt](t, prog)
	top, ok := stmt.Defs[0].Body.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "+", top.Op)
	_, ok = top.Left.(*ast.IntLit)
	require.True(t, ok)
	mul, ok := top.Right.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Op)
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	// `2 ** 3 ** 2` should parse as `2 ** (3 ** 2)`.
	prog, sink := parseSrc(t, "let x = 2 ** 3 ** 2\n")
	assert.False(t, sink.HasErrors())
	stmt := firstDef[*ast.LetStmt](t, prog)
	top, ok := stmt.Defs[0].Body.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "**", top.Op)
	_, ok = top.Left.(*ast.IntLit)
	require.True(t, ok)
	_, ok = top.Right.(*ast.BinaryOp)
	require.True(t, ok)
}

func TestParseForLoop(t *testing.T) {
	src := "let f n = for i = 0 to n do print i done\n"
	prog, sink := parseSrc(t, src)
	assert.False(t, sink.HasErrors())
	stmt := firstDef[*ast.LetStmt](t, prog)
	forExpr, ok := stmt.Defs[0].Body.(*ast.For)
	require.True(t, ok)
	assert.Equal(t, "i", forExpr.Var.Name)
	assert.False(t, forExpr.Down)
}

// TestParseIsIdempotent checks spec.md §8's idempotence law: parsing the
// same token stream twice yields structurally equal ASTs.
func TestParseIsIdempotent(t *testing.T) {
	src := "let rec f x = if x = 0 then 1 else x * f (x - 1)\n" +
		"type tree = Leaf | Node of int tree tree\n"

	first, sink1 := parseSrc(t, src)
	assert.False(t, sink1.HasErrors())
	second, sink2 := parseSrc(t, src)
	assert.False(t, sink2.HasErrors())

	if diffs := deep.Equal(first, second); len(diffs) > 0 {
		t.Errorf("parsing %q twice produced different ASTs:\n%s", src, strings.Join(diffs, "\n"))
	}
}
