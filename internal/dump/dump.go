// Package dump renders pipeline artifacts (preprocessed text, token
// streams, ASTs, inferred types) in the fixed, machine-parseable formats
// spec.md §6 defines for the CLI's --print-* flags.
package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/lexer"
	"github.com/lumen-lang/lumen/internal/types"
)

// Preprocessed writes one line per element of lines, separated by "\n",
// matching spec.md §6's preprocessed-output format.
func Preprocessed(w io.Writer, lines []string) {
	fmt.Fprint(w, strings.Join(lines, "\n"))
	if len(lines) > 0 {
		fmt.Fprintln(w)
	}
}

// Tokens writes one line per token in the fixed
// `<kind>: "<lexeme>" at <file>:<startline>:<startcol>-<endline>:<endcol>`
// format (spec.md §6).
func Tokens(w io.Writer, sink *diag.Sink, toks []lexer.Token) {
	for _, tok := range toks {
		file := sink.Filename(tok.Span.FileID)
		fmt.Fprintf(w, "%s: %q at %s:%d:%d-%d:%d\n",
			tok.Kind, tok.Lexeme, file,
			tok.Span.Line, tok.Span.Col, tok.Span.EndLine, tok.Span.EndCol)
	}
}

// treeWriter accumulates box-drawing indentation prefixes the way a
// recursive-descent AST printer naturally does: each call to childPrefix()
// extends the current prefix for everything printed beneath it.
type treeWriter struct {
	w io.Writer
}

func (t *treeWriter) line(prefix, connector, text string) {
	fmt.Fprintf(t.w, "%s%s%s\n", prefix, connector, text)
}

// childPrefix returns the prefix a node's children should use: "│  " if
// this node was not the last sibling (so the vertical bar continues past
// it), "   " otherwise.
func childPrefix(prefix string, last bool) string {
	if last {
		return prefix + "   "
	}
	return prefix + "│  "
}

func connector(last bool) string {
	if last {
		return "└─ "
	}
	return "├─ "
}

// AST writes prog as an indented tree using box-drawing characters
// (spec.md §6): each line names the node kind and its key fields (names,
// operators, literal text); type annotations appear as children.
func AST(w io.Writer, prog *ast.Program) {
	t := &treeWriter{w: w}
	fmt.Fprintf(w, "Program\n")
	for i, def := range prog.Defs {
		last := i == len(prog.Defs)-1
		dumpDefStmt(t, "", last, def)
	}
}

func dumpDefStmt(t *treeWriter, prefix string, last bool, def ast.DefStmt) {
	switch d := def.(type) {
	case *ast.LetStmt:
		label := "LetStmt"
		if d.Recursive {
			label += " rec"
		}
		t.line(prefix, connector(last), label)
		cp := childPrefix(prefix, last)
		for i, ld := range d.Defs {
			dumpLetDef(t, cp, i == len(d.Defs)-1, ld)
		}
	case *ast.TypeStmt:
		t.line(prefix, connector(last), "TypeStmt")
		cp := childPrefix(prefix, last)
		for i, td := range d.Defs {
			dumpTypeDef(t, cp, i == len(d.Defs)-1, td)
		}
	}
}

func dumpLetDef(t *treeWriter, prefix string, last bool, d *ast.LetDef) {
	kind := "constant"
	switch d.Kind {
	case ast.DefFunction:
		kind = "function"
	case ast.DefArray:
		kind = "array"
	case ast.DefVariable:
		kind = "mutable"
	}
	name := ""
	if d.Name != nil {
		name = d.Name.Name
	}
	t.line(prefix, connector(last), fmt.Sprintf("LetDef %s %q", kind, name))
	cp := childPrefix(prefix, last)

	var rows []func(bool)
	for _, p := range d.Params {
		p := p
		rows = append(rows, func(isLast bool) { dumpParam(t, cp, isLast, p) })
	}
	for _, dim := range d.Dims {
		dim := dim
		rows = append(rows, func(isLast bool) {
			t.line(cp, connector(isLast), "Dim")
			dumpExpr(t, childPrefix(cp, isLast), true, dim)
		})
	}
	if d.Annotation != nil {
		ann := d.Annotation
		rows = append(rows, func(isLast bool) { dumpTypeAnnotation(t, cp, isLast, ann) })
	}
	if d.Body != nil {
		body := d.Body
		rows = append(rows, func(isLast bool) { dumpExpr(t, cp, isLast, body) })
	}
	for i, row := range rows {
		row(i == len(rows)-1)
	}
}

func dumpParam(t *treeWriter, prefix string, last bool, p *ast.Param) {
	name := ""
	if p.Name != nil {
		name = p.Name.Name
	}
	t.line(prefix, connector(last), fmt.Sprintf("Param %q", name))
	if p.Annotation != nil {
		dumpTypeAnnotation(t, childPrefix(prefix, last), true, p.Annotation)
	}
}

func dumpTypeDef(t *treeWriter, prefix string, last bool, d *ast.TypeDef) {
	name := ""
	if d.Name != nil {
		name = d.Name.Name
	}
	t.line(prefix, connector(last), fmt.Sprintf("TypeDef %q", name))
	cp := childPrefix(prefix, last)
	for i, c := range d.Constructors {
		dumpConstructor(t, cp, i == len(d.Constructors)-1, c)
	}
}

func dumpConstructor(t *treeWriter, prefix string, last bool, c *ast.Constructor) {
	name := ""
	if c.Name != nil {
		name = c.Name.Name
	}
	t.line(prefix, connector(last), fmt.Sprintf("Constructor %q", name))
	cp := childPrefix(prefix, last)
	for i, f := range c.Fields {
		dumpTypeAnnotation(t, cp, i == len(c.Fields)-1, f)
	}
}

func dumpTypeAnnotation(t *treeWriter, prefix string, last bool, ann ast.TypeAnnotation) {
	switch a := ann.(type) {
	case *ast.BasicType:
		t.line(prefix, connector(last), fmt.Sprintf("BasicType %v", a.Tag))
	case *ast.FunctionType:
		t.line(prefix, connector(last), "FunctionType")
		cp := childPrefix(prefix, last)
		dumpTypeAnnotation(t, cp, false, a.Lhs)
		dumpTypeAnnotation(t, cp, true, a.Rhs)
	case *ast.ArrayType:
		t.line(prefix, connector(last), fmt.Sprintf("ArrayType rank=%d", a.Rank))
		dumpTypeAnnotation(t, childPrefix(prefix, last), true, a.Elem)
	case *ast.RefType:
		t.line(prefix, connector(last), "RefType")
		dumpTypeAnnotation(t, childPrefix(prefix, last), true, a.Elem)
	case *ast.CustomType:
		name := ""
		if a.Name != nil {
			name = a.Name.Name
		}
		t.line(prefix, connector(last), fmt.Sprintf("CustomType %q", name))
	}
}

func dumpExpr(t *treeWriter, prefix string, last bool, e ast.Expr) {
	switch n := e.(type) {
	case *ast.UnitLit:
		t.line(prefix, connector(last), "UnitLit")
	case *ast.IntLit:
		t.line(prefix, connector(last), fmt.Sprintf("IntLit %d", n.Value))
	case *ast.CharLit:
		t.line(prefix, connector(last), fmt.Sprintf("CharLit %q", n.Value))
	case *ast.BoolLit:
		t.line(prefix, connector(last), fmt.Sprintf("BoolLit %v", n.Value))
	case *ast.FloatLit:
		t.line(prefix, connector(last), fmt.Sprintf("FloatLit %v", n.Value))
	case *ast.StringLit:
		t.line(prefix, connector(last), fmt.Sprintf("StringLit %q", n.Value))
	case *ast.UnaryOp:
		t.line(prefix, connector(last), fmt.Sprintf("UnaryOp %q", n.Op))
		dumpExpr(t, childPrefix(prefix, last), true, n.Operand)
	case *ast.BinaryOp:
		t.line(prefix, connector(last), fmt.Sprintf("BinaryOp %q", n.Op))
		cp := childPrefix(prefix, last)
		dumpExpr(t, cp, false, n.Left)
		dumpExpr(t, cp, true, n.Right)
	case *ast.NewOp:
		t.line(prefix, connector(last), "NewOp")
		cp := childPrefix(prefix, last)
		dumpTypeAnnotation(t, cp, len(n.Dims) == 0, n.Type)
		for i, d := range n.Dims {
			dumpExpr(t, cp, i == len(n.Dims)-1, d)
		}
	case *ast.While:
		t.line(prefix, connector(last), "While")
		cp := childPrefix(prefix, last)
		dumpExpr(t, cp, false, n.Cond)
		dumpExpr(t, cp, true, n.Body)
	case *ast.For:
		dir := "to"
		if n.Down {
			dir = "downto"
		}
		name := ""
		if n.Var != nil {
			name = n.Var.Name
		}
		t.line(prefix, connector(last), fmt.Sprintf("For %q %s", name, dir))
		cp := childPrefix(prefix, last)
		dumpExpr(t, cp, false, n.Start)
		dumpExpr(t, cp, false, n.End)
		dumpExpr(t, cp, true, n.Body)
	case *ast.If:
		t.line(prefix, connector(last), "If")
		cp := childPrefix(prefix, last)
		dumpExpr(t, cp, n.Else == nil, n.Cond)
		if n.Else == nil {
			dumpExpr(t, cp, true, n.Then)
		} else {
			dumpExpr(t, cp, false, n.Then)
			dumpExpr(t, cp, true, n.Else)
		}
	case *ast.Dim:
		name := ""
		if n.Id != nil {
			name = n.Id.Name
		}
		t.line(prefix, connector(last), fmt.Sprintf("Dim %q", name))
		dumpExpr(t, childPrefix(prefix, last), true, n.DimIndex)
	case *ast.IdCall:
		name := ""
		if n.Name != nil {
			name = n.Name.Name
		}
		t.line(prefix, connector(last), fmt.Sprintf("IdCall %q", name))
	case *ast.FuncCall:
		name := ""
		if n.Callee != nil {
			name = n.Callee.Name
		}
		t.line(prefix, connector(last), fmt.Sprintf("FuncCall %q", name))
		cp := childPrefix(prefix, last)
		for i, a := range n.Args {
			dumpExpr(t, cp, i == len(n.Args)-1, a)
		}
	case *ast.ConstrCall:
		name := ""
		if n.Name != nil {
			name = n.Name.Name
		}
		t.line(prefix, connector(last), fmt.Sprintf("ConstrCall %q", name))
		cp := childPrefix(prefix, last)
		for i, a := range n.Args {
			dumpExpr(t, cp, i == len(n.Args)-1, a)
		}
	case *ast.ArrayAccess:
		name := ""
		if n.Array != nil {
			name = n.Array.Name
		}
		t.line(prefix, connector(last), fmt.Sprintf("ArrayAccess %q", name))
		cp := childPrefix(prefix, last)
		for i, idx := range n.Indices {
			dumpExpr(t, cp, i == len(n.Indices)-1, idx)
		}
	case *ast.Match:
		t.line(prefix, connector(last), "Match")
		cp := childPrefix(prefix, last)
		dumpExpr(t, cp, len(n.Clauses) == 0, n.Scrutinee)
		for i, c := range n.Clauses {
			dumpClause(t, cp, i == len(n.Clauses)-1, c)
		}
	case *ast.LetIn:
		t.line(prefix, connector(last), "LetIn")
		cp := childPrefix(prefix, last)
		dumpDefStmt(t, cp, false, n.Stmt)
		dumpExpr(t, cp, true, n.Body)
	default:
		t.line(prefix, connector(last), fmt.Sprintf("%T", e))
	}
}

func dumpClause(t *treeWriter, prefix string, last bool, c *ast.Clause) {
	t.line(prefix, connector(last), "Clause")
	cp := childPrefix(prefix, last)
	dumpPattern(t, cp, false, c.Pattern)
	dumpExpr(t, cp, true, c.Body)
}

func dumpPattern(t *treeWriter, prefix string, last bool, p ast.Pattern) {
	switch n := p.(type) {
	case *ast.PatLiteral:
		t.line(prefix, connector(last), "PatLiteral")
		dumpExpr(t, childPrefix(prefix, last), true, n.Literal)
	case *ast.PatId:
		if n.Name == nil {
			t.line(prefix, connector(last), "PatId _")
			return
		}
		t.line(prefix, connector(last), fmt.Sprintf("PatId %q", n.Name.Name))
	case *ast.PatConstr:
		name := ""
		if n.Name != nil {
			name = n.Name.Name
		}
		t.line(prefix, connector(last), fmt.Sprintf("PatConstr %q", name))
		cp := childPrefix(prefix, last)
		for i, a := range n.Args {
			dumpPattern(t, cp, i == len(n.Args)-1, a)
		}
	}
}

// Types writes each top-level let binding's name alongside its inferred
// type, one per line, resolved through typer's arena (spec.md §6's
// "--print-types" is otherwise unspecified beyond the AST's own inline
// annotations, so this mirrors the AST dump's flat listing convention).
func Types(w io.Writer, prog *ast.Program, typer *types.Typer) {
	for _, def := range prog.Defs {
		stmt, ok := def.(*ast.LetStmt)
		if !ok {
			continue
		}
		for _, ld := range stmt.Defs {
			if ld.Name == nil {
				continue
			}
			h, ok := typer.LookupName(ld.Name.Name)
			if !ok {
				continue
			}
			fmt.Fprintf(w, "%s : %s\n", ld.Name.Name, typer.TypeString(h))
		}
	}
}
