package types

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/lexer"
)

// Typer is Lumen's single-pass semantic analyzer (spec.md §4.4): it walks
// a parsed Program, maintaining a scoped symbol table, a flat type-name
// table, a flat constructor table, and an inference arena, reporting
// every name-resolution and unification failure to the shared sink.
type Typer struct {
	sink  *diag.Sink
	arena *Arena
	scope *Scope

	types   map[string]Handle // type name -> Custom handle
	constrs map[string]Handle // constructor name -> Constructor handle
}

// NewTyper constructs a Typer reporting to sink.
func NewTyper(sink *diag.Sink) *Typer {
	arena := NewArena()
	return &Typer{
		sink:    sink,
		arena:   arena,
		scope:   NewScope(nil, arena),
		types:   make(map[string]Handle),
		constrs: make(map[string]Handle),
	}
}

// Arena exposes the inference arena, e.g. for tests that want to inspect
// an inferred Handle's representative Kind.
func (t *Typer) Arena() *Arena { return t.arena }

// LookupName resolves a top-level binding's inferred handle by name,
// for callers (the CLI's --print-types dump) that need a type after
// CheckProgram has already run.
func (t *Typer) LookupName(name string) (Handle, bool) {
	sym := t.scope.Lookup(name)
	if sym == nil {
		return 0, false
	}
	return sym.Type, true
}

// toDiagSpan narrows a lexer.Span to the position tuple diag.Diagnostic
// carries (the package-local convention already used by internal/lexer
// and internal/parser).
func toDiagSpan(s lexer.Span) diag.Span {
	return diag.Span{FileID: s.FileID, Line: s.Line, Column: s.Col, Start: s.Start, End: s.End}
}

// CheckProgram type-checks every top-level definition in order.
func (t *Typer) CheckProgram(prog *ast.Program) {
	for _, def := range prog.Defs {
		t.checkDefStmt(def)
	}
}

func (t *Typer) checkDefStmt(def ast.DefStmt) {
	switch d := def.(type) {
	case *ast.LetStmt:
		t.checkLetStmt(d)
	case *ast.TypeStmt:
		t.checkTypeStmt(d)
	default:
		t.sink.Panic("unknown DefStmt variant %T", def)
	}
}

// checkLetStmt implements spec.md §4.4's phase ordering within a
// LetStmt: a `rec` group pre-installs every bound name as a fresh
// Unknown before any body is visited, so mutually recursive bodies can
// reference each other; a non-`rec` group instead visits each def in
// turn and only then makes its name visible, so later defs see it but
// the def's own body does not.
func (t *Typer) checkLetStmt(stmt *ast.LetStmt) {
	if stmt.Recursive {
		placeholders := make([]Handle, len(stmt.Defs))
		for i, def := range stmt.Defs {
			h := t.arena.NewUnknown()
			placeholders[i] = h
			t.declareLetDefName(def, h)
		}
		for i, def := range stmt.Defs {
			t.checkLetDef(def, placeholders[i])
		}
		return
	}

	for _, def := range stmt.Defs {
		h := t.arena.NewUnknown()
		t.checkLetDef(def, h)
		t.declareLetDefName(def, h)
	}
}

func (t *Typer) declareLetDefName(def *ast.LetDef, h Handle) {
	if def.Name == nil {
		return
	}
	t.scope.Insert(def.Name.Name, &Symbol{Name: def.Name.Name, Type: h, DefNode: def})
}

// checkLetDef infers def's actual type and unifies it with the
// placeholder handle already reserved for its name.
func (t *Typer) checkLetDef(def *ast.LetDef, placeholder Handle) {
	switch def.Kind {
	case ast.DefConstant:
		bodyType := t.inferExpr(def.Body)
		t.unify(placeholder, bodyType, def.Span())
		if def.Annotation != nil {
			t.unify(placeholder, t.resolveAnnotation(def.Annotation), def.Span())
		}

	case ast.DefFunction:
		prevScope := t.scope
		t.scope = NewScope(prevScope, t.arena)
		paramTypes := make([]Handle, len(def.Params))
		for i, p := range def.Params {
			var ph Handle
			if p.Annotation != nil {
				ph = t.resolveAnnotation(p.Annotation)
			} else {
				ph = t.arena.NewUnknown()
			}
			paramTypes[i] = ph
			t.scope.Insert(p.Name.Name, &Symbol{Name: p.Name.Name, Type: ph, DefNode: p})
		}
		bodyType := t.inferExpr(def.Body)
		t.scope = prevScope

		if def.Annotation != nil {
			t.unify(bodyType, t.resolveAnnotation(def.Annotation), def.Span())
		}
		fnType := t.arena.NewFunction(paramTypes, bodyType)
		t.unify(placeholder, fnType, def.Span())

	case ast.DefArray:
		var elem Handle
		if def.Annotation != nil {
			elem = t.resolveAnnotation(def.Annotation)
		} else {
			elem = t.arena.NewUnknown()
		}
		for _, dim := range def.Dims {
			dimType := t.inferExpr(dim)
			t.unify(dimType, t.arena.NewBasic(KindInt), dim.Span())
		}
		arr := t.arena.NewArray(elem, len(def.Dims), true)
		t.unify(placeholder, arr, def.Span())

	case ast.DefVariable:
		var elem Handle
		if def.Annotation != nil {
			elem = t.resolveAnnotation(def.Annotation)
		} else {
			elem = t.arena.NewUnknown()
		}
		ref := t.arena.NewRef(elem)
		t.unify(placeholder, ref, def.Span())

	default:
		t.sink.Panic("unknown LetDefKind %v", def.Kind)
	}
}

// inferExpr infers e's type, recording any name-resolution or unification
// failures to the sink, and returns a handle for the (possibly still
// partially Unknown) result.
func (t *Typer) inferExpr(e ast.Expr) Handle {
	switch n := e.(type) {
	case *ast.UnitLit:
		return t.arena.NewBasic(KindUnit)
	case *ast.IntLit:
		return t.arena.NewBasic(KindInt)
	case *ast.CharLit:
		return t.arena.NewBasic(KindChar)
	case *ast.BoolLit:
		return t.arena.NewBasic(KindBool)
	case *ast.FloatLit:
		return t.arena.NewBasic(KindFloat)
	case *ast.StringLit:
		// Lumen has no dedicated string type in its semantic lattice
		// (spec.md §3 lists none); a string literal is a char array, in
		// the ML-family tradition this language otherwise follows.
		return t.arena.NewArray(t.arena.NewBasic(KindChar), 1, true)

	case *ast.UnaryOp:
		return t.inferUnaryOp(n)
	case *ast.BinaryOp:
		return t.inferBinaryOp(n)
	case *ast.NewOp:
		return t.inferNewOp(n)
	case *ast.While:
		return t.inferWhile(n)
	case *ast.For:
		return t.inferFor(n)
	case *ast.If:
		return t.inferIf(n)
	case *ast.Dim:
		return t.inferDim(n)
	case *ast.IdCall:
		return t.inferIdCall(n)
	case *ast.FuncCall:
		return t.inferFuncCall(n)
	case *ast.ConstrCall:
		return t.inferConstrCall(n)
	case *ast.ArrayAccess:
		return t.inferArrayAccess(n)
	case *ast.Match:
		return t.inferMatch(n)
	case *ast.LetIn:
		return t.inferLetIn(n)

	default:
		t.sink.Panic("unknown Expr variant %T", e)
		return 0
	}
}

func (t *Typer) inferUnaryOp(e *ast.UnaryOp) Handle {
	operandType := t.inferExpr(e.Operand)
	switch e.Op {
	case "+", "-":
		t.unify(operandType, t.arena.NewBasic(KindInt), e.Span())
		return t.arena.NewBasic(KindInt)
	case "+.", "-.":
		t.unify(operandType, t.arena.NewBasic(KindFloat), e.Span())
		return t.arena.NewBasic(KindFloat)
	case "!":
		elem := t.arena.NewUnknown()
		t.unify(operandType, t.arena.NewRef(elem), e.Span())
		return elem
	case "not":
		t.unify(operandType, t.arena.NewBasic(KindBool), e.Span())
		return t.arena.NewBasic(KindBool)
	case "delete":
		rep := t.arena.Find(operandType)
		switch t.arena.Cell(rep).Kind {
		case KindRef, KindArray, KindUnknown:
			// Unknown operands default to binding against a ref cell,
			// the more common `delete` target.
			if t.arena.Cell(rep).Kind == KindUnknown {
				t.unify(operandType, t.arena.NewRef(t.arena.NewUnknown()), e.Span())
			}
		default:
			t.sink.Errorf(diag.StageTyper, diag.CodeTypeUnifyFailure, toDiagSpan(e.Span()),
				"'delete' requires a reference or array operand, found %s", t.TypeString(rep))
		}
		return t.arena.NewBasic(KindUnit)
	default:
		t.sink.Panic("unknown unary operator %q", e.Op)
		return 0
	}
}

func (t *Typer) inferBinaryOp(e *ast.BinaryOp) Handle {
	switch e.Op {
	case ";":
		t.inferExpr(e.Left)
		return t.inferExpr(e.Right)

	case ":=":
		leftType := t.inferExpr(e.Left)
		rightType := t.inferExpr(e.Right)
		t.unify(leftType, t.arena.NewRef(rightType), e.Span())
		return t.arena.NewBasic(KindUnit)

	case "+", "-", "*", "/", "mod":
		return t.inferArith(e, KindInt)
	case "+.", "-.", "*.", "/.", "**":
		return t.inferArith(e, KindFloat)

	case "=", "<>", "==", "!=":
		return t.inferEquality(e)
	case "<", ">", "<=", ">=":
		return t.inferOrdering(e)

	case "&&", "||":
		l := t.inferExpr(e.Left)
		r := t.inferExpr(e.Right)
		t.unify(l, t.arena.NewBasic(KindBool), e.Span())
		t.unify(r, t.arena.NewBasic(KindBool), e.Span())
		return t.arena.NewBasic(KindBool)

	default:
		t.sink.Panic("unknown binary operator %q", e.Op)
		return 0
	}
}

func (t *Typer) inferArith(e *ast.BinaryOp, kind Kind) Handle {
	l := t.inferExpr(e.Left)
	r := t.inferExpr(e.Right)
	for _, operand := range []Handle{l, r} {
		rep := t.arena.Find(operand)
		if k := t.arena.Cell(rep).Kind; k != KindUnknown && k != kind {
			t.sink.Errorf(diag.StageTyper, diag.CodeTypeUnifyFailure, toDiagSpan(e.Span()),
				"operator %q requires %s operands, found %s", e.Op, t.TypeString(t.arena.NewBasic(kind)), t.TypeString(rep))
			continue
		}
		t.unify(operand, t.arena.NewBasic(kind), e.Span())
	}
	return t.arena.NewBasic(kind)
}

// inferEquality handles `= <> == !=`. Per the open-question resolution
// in DESIGN.md, all four are structural equality excluding Array and
// Function operands; Lumen draws no distinction between `=`/`<>` and
// `==`/`!=` since it has no reference-identity notion apart from `ref`.
func (t *Typer) inferEquality(e *ast.BinaryOp) Handle {
	l := t.inferExpr(e.Left)
	r := t.inferExpr(e.Right)
	t.unify(l, r, e.Span())
	rep := t.arena.Find(l)
	switch t.arena.Cell(rep).Kind {
	case KindArray, KindFunction:
		t.sink.Errorf(diag.StageTyper, diag.CodeTypeUnifyFailure, toDiagSpan(e.Span()),
			"operator %q cannot compare %s values", e.Op, t.TypeString(rep))
	}
	return t.arena.NewBasic(KindBool)
}

func (t *Typer) inferOrdering(e *ast.BinaryOp) Handle {
	l := t.inferExpr(e.Left)
	r := t.inferExpr(e.Right)
	t.unify(l, r, e.Span())
	rep := t.arena.Find(l)
	switch t.arena.Cell(rep).Kind {
	case KindInt, KindChar, KindFloat, KindUnknown:
		// ok (Unknown operands are left for a later unification to pin down)
	default:
		t.sink.Errorf(diag.StageTyper, diag.CodeTypeUnifyFailure, toDiagSpan(e.Span()),
			"operator %q requires int, char, or float operands, found %s", e.Op, t.TypeString(rep))
	}
	return t.arena.NewBasic(KindBool)
}

func (t *Typer) inferNewOp(e *ast.NewOp) Handle {
	for _, d := range e.Dims {
		dimType := t.inferExpr(d)
		t.unify(dimType, t.arena.NewBasic(KindInt), d.Span())
	}
	elemType := t.resolveAnnotation(e.Type)
	if len(e.Dims) > 0 {
		return t.arena.NewArray(elemType, len(e.Dims), true)
	}
	return t.arena.NewRef(elemType)
}

func (t *Typer) inferWhile(e *ast.While) Handle {
	condType := t.inferExpr(e.Cond)
	t.unify(condType, t.arena.NewBasic(KindBool), e.Cond.Span())
	bodyType := t.inferExpr(e.Body)
	t.unify(bodyType, t.arena.NewBasic(KindUnit), e.Body.Span())
	return t.arena.NewBasic(KindUnit)
}

func (t *Typer) inferFor(e *ast.For) Handle {
	startType := t.inferExpr(e.Start)
	endType := t.inferExpr(e.End)
	t.unify(startType, t.arena.NewBasic(KindInt), e.Start.Span())
	t.unify(endType, t.arena.NewBasic(KindInt), e.End.Span())

	prevScope := t.scope
	t.scope = NewScope(prevScope, t.arena)
	t.scope.Insert(e.Var.Name, &Symbol{Name: e.Var.Name, Type: t.arena.NewBasic(KindInt), DefNode: e})
	bodyType := t.inferExpr(e.Body)
	t.scope = prevScope

	t.unify(bodyType, t.arena.NewBasic(KindUnit), e.Body.Span())
	return t.arena.NewBasic(KindUnit)
}

func (t *Typer) inferIf(e *ast.If) Handle {
	condType := t.inferExpr(e.Cond)
	t.unify(condType, t.arena.NewBasic(KindBool), e.Cond.Span())

	thenType := t.inferExpr(e.Then)
	if e.Else != nil {
		elseType := t.inferExpr(e.Else)
		t.unify(thenType, elseType, e.Span())
		return thenType
	}
	t.unify(thenType, t.arena.NewBasic(KindUnit), e.Then.Span())
	return t.arena.NewBasic(KindUnit)
}

func (t *Typer) inferDim(e *ast.Dim) Handle {
	arrType := t.lookupOrUnknown(e.Id)
	if e.DimIndex != nil {
		idxType := t.inferExpr(e.DimIndex)
		t.unify(idxType, t.arena.NewBasic(KindInt), e.DimIndex.Span())
	}
	elem := t.arena.NewUnknown()
	t.unify(arrType, t.arena.NewArray(elem, 1, false), e.Span())
	return t.arena.NewBasic(KindInt)
}

func (t *Typer) inferIdCall(e *ast.IdCall) Handle {
	return t.lookupOrUnknown(e.Name)
}

func (t *Typer) lookupOrUnknown(name *ast.Ident) Handle {
	sym := t.scope.Lookup(name.Name)
	if sym == nil {
		t.sink.Errorf(diag.StageTyper, diag.CodeNameUndefinedIdent, toDiagSpan(name.Span()),
			"undefined identifier %q", name.Name)
		return t.arena.NewUnknown()
	}
	return sym.Type
}

func (t *Typer) inferFuncCall(e *ast.FuncCall) Handle {
	calleeType := t.lookupOrUnknown(e.Callee)
	argTypes := make([]Handle, len(e.Args))
	for i, a := range e.Args {
		argTypes[i] = t.inferExpr(a)
	}
	ret := t.arena.NewUnknown()
	t.unify(calleeType, t.arena.NewFunction(argTypes, ret), e.Span())
	return ret
}

func (t *Typer) inferConstrCall(e *ast.ConstrCall) Handle {
	ctorHandle, ok := t.constrs[e.Name.Name]
	if !ok {
		t.sink.Errorf(diag.StageTyper, diag.CodeNameUndefinedConstr, toDiagSpan(e.Name.Span()),
			"undefined constructor %q", e.Name.Name)
		for _, a := range e.Args {
			t.inferExpr(a)
		}
		return t.arena.NewUnknown()
	}

	ctorCell := t.arena.Cell(ctorHandle)
	if len(ctorCell.Fields) != len(e.Args) {
		t.sink.Errorf(diag.StageTyper, diag.CodeNameConstrArityMismatch, toDiagSpan(e.Span()),
			"constructor %q expects %d argument(s), got %d", e.Name.Name, len(ctorCell.Fields), len(e.Args))
		for _, a := range e.Args {
			t.inferExpr(a)
		}
		return ctorCell.Owner
	}

	for i, a := range e.Args {
		argType := t.inferExpr(a)
		t.unify(ctorCell.Fields[i], argType, a.Span())
	}
	return ctorCell.Owner
}

func (t *Typer) inferArrayAccess(e *ast.ArrayAccess) Handle {
	arrType := t.lookupOrUnknown(e.Array)
	for _, idx := range e.Indices {
		idxType := t.inferExpr(idx)
		t.unify(idxType, t.arena.NewBasic(KindInt), idx.Span())
	}
	elem := t.arena.NewUnknown()
	t.unify(arrType, t.arena.NewArray(elem, len(e.Indices), false), e.Span())
	return elem
}

func (t *Typer) inferMatch(e *ast.Match) Handle {
	scrutType := t.inferExpr(e.Scrutinee)
	result := t.arena.NewUnknown()

	for _, clause := range e.Clauses {
		prevScope := t.scope
		t.scope = NewScope(prevScope, t.arena)

		patType := t.inferPattern(clause.Pattern)
		t.unify(scrutType, patType, clause.Pattern.Span())
		bodyType := t.inferExpr(clause.Body)

		t.scope = prevScope
		t.unify(result, bodyType, clause.Body.Span())
	}
	return result
}

func (t *Typer) inferLetIn(e *ast.LetIn) Handle {
	prevScope := t.scope
	t.scope = NewScope(prevScope, t.arena)
	t.checkLetStmt(e.Stmt)
	bodyType := t.inferExpr(e.Body)
	t.scope = prevScope
	return bodyType
}

// inferPattern infers pat's type, binding any PatId names it introduces
// into the current (already-pushed) scope as a side effect.
func (t *Typer) inferPattern(pat ast.Pattern) Handle {
	switch p := pat.(type) {
	case *ast.PatLiteral:
		return t.inferExpr(p.Literal)

	case *ast.PatId:
		h := t.arena.NewUnknown()
		if p.Name != nil {
			t.scope.Insert(p.Name.Name, &Symbol{Name: p.Name.Name, Type: h, DefNode: p})
		}
		return h

	case *ast.PatConstr:
		ctorHandle, ok := t.constrs[p.Name.Name]
		if !ok {
			t.sink.Errorf(diag.StageTyper, diag.CodeNameUndefinedConstr, toDiagSpan(p.Name.Span()),
				"undefined constructor %q", p.Name.Name)
			for _, sub := range p.Args {
				t.inferPattern(sub)
			}
			return t.arena.NewUnknown()
		}
		ctorCell := t.arena.Cell(ctorHandle)
		if len(ctorCell.Fields) != len(p.Args) {
			t.sink.Errorf(diag.StageTyper, diag.CodeNameConstrArityMismatch, toDiagSpan(p.Span()),
				"constructor %q expects %d argument(s), got %d", p.Name.Name, len(ctorCell.Fields), len(p.Args))
			for _, sub := range p.Args {
				t.inferPattern(sub)
			}
			return ctorCell.Owner
		}
		for i, sub := range p.Args {
			subType := t.inferPattern(sub)
			t.unify(ctorCell.Fields[i], subType, sub.Span())
		}
		return ctorCell.Owner

	default:
		t.sink.Panic("unknown Pattern variant %T", pat)
		return 0
	}
}

// TypeString renders h's representative as source-like text, for
// diagnostic messages only (never parsed back in).
func (t *Typer) TypeString(h Handle) string {
	h = t.arena.Find(h)
	c := t.arena.Cell(h)
	switch c.Kind {
	case KindUnit:
		return "unit"
	case KindInt:
		return "int"
	case KindChar:
		return "char"
	case KindBool:
		return "bool"
	case KindFloat:
		return "float"
	case KindUnknown:
		return fmt.Sprintf("'_%d", h)
	case KindRef:
		return t.TypeString(c.Elem) + " ref"
	case KindArray:
		prefix := strings.Repeat("array ", max(c.Rank, 1))
		suffix := ""
		if !c.RankExact {
			suffix = "+"
		}
		return prefix + "of " + t.TypeString(c.Elem) + suffix
	case KindFunction:
		parts := make([]string, 0, len(c.Params)+1)
		for _, p := range c.Params {
			parts = append(parts, t.TypeString(p))
		}
		parts = append(parts, t.TypeString(c.Ret))
		return strings.Join(parts, " -> ")
	case KindCustom:
		return c.Name
	case KindConstructor:
		return c.Name
	default:
		return "?"
	}
}
