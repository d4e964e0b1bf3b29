package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/lexer"
)

func sp() lexer.Span { return lexer.Span{FileID: 0, Line: 1, Col: 1} }

func TestWalkVisitsLetStmtAndBody(t *testing.T) {
	name := ast.NewIdent("x", sp())
	body := ast.NewIntLit(1, sp())
	def := ast.NewLetDef(ast.DefConstant, name, nil, false, nil, body, sp())
	stmt := ast.NewLetStmt(false, []*ast.LetDef{def}, sp())
	program := ast.NewProgram([]ast.DefStmt{stmt}, sp())

	var visited []ast.Node
	ast.Walk(program, func(n ast.Node) bool {
		visited = append(visited, n)
		return true
	})

	assert.Len(t, visited, 5) // Program, LetStmt, LetDef, Ident, IntLit
}

func TestWalkStopsDescentWhenFnReturnsFalse(t *testing.T) {
	left := ast.NewIntLit(1, sp())
	right := ast.NewIntLit(2, sp())
	bin := ast.NewBinaryOp("+", left, right, sp())

	var visited int
	ast.Walk(bin, func(n ast.Node) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestWalkMatchVisitsClausesAndPatterns(t *testing.T) {
	pat := ast.NewPatId(ast.NewIdent("y", sp()), sp())
	clauseBody := ast.NewIntLit(0, sp())
	clause := ast.NewClause(pat, clauseBody, sp())
	scrutinee := ast.NewIdCall(ast.NewIdent("x", sp()), sp())
	m := ast.NewMatch(scrutinee, []*ast.Clause{clause}, sp())

	var kinds []string
	ast.Walk(m, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.Match:
			kinds = append(kinds, "match")
		case *ast.Clause:
			kinds = append(kinds, "clause")
		case *ast.PatId:
			kinds = append(kinds, "patid")
		}
		return true
	})
	assert.Equal(t, []string{"match", "clause", "patid"}, kinds)
}
