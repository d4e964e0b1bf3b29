package types

import (
	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diag"
)

// checkTypeStmt registers every TypeDef in the group per spec.md §4.4's
// three-phase ordering: (1) all type names become fresh Custom shells,
// so mutually-recursive `type a = ... and b = ...` groups can reference
// each other; (2) each TypeDef's constructors are built and registered
// in the flat constructor table, with fields resolved against the
// shells from phase 1; (3) duplicate type/constructor names are
// rejected rather than silently shadowing an earlier definition.
func (t *Typer) checkTypeStmt(stmt *ast.TypeStmt) {
	shells := make(map[string]Handle, len(stmt.Defs))

	for _, def := range stmt.Defs {
		name := def.Name.Name
		if _, dup := t.types[name]; dup {
			t.sink.Errorf(diag.StageTyper, diag.CodeNameDuplicateDef, toDiagSpan(def.Name.Span()),
				"type %q is already defined", name)
			continue
		}
		h := t.arena.NewCustom(name)
		t.types[name] = h
		shells[name] = h
	}

	for _, def := range stmt.Defs {
		owner, ok := shells[def.Name.Name]
		if !ok {
			// Duplicate name from phase 1; the original owner keeps its
			// constructors, this redefinition's are simply not wired in.
			continue
		}

		var ctorHandles []Handle
		for _, ctor := range def.Constructors {
			cname := ctor.Name.Name
			if _, dup := t.constrs[cname]; dup {
				t.sink.Errorf(diag.StageTyper, diag.CodeNameDuplicateDef, toDiagSpan(ctor.Name.Span()),
					"constructor %q is already defined", cname)
				continue
			}
			fields := make([]Handle, 0, len(ctor.Fields))
			for _, fieldAnn := range ctor.Fields {
				fields = append(fields, t.resolveAnnotation(fieldAnn))
			}
			ch := t.arena.NewConstructor(cname, owner, fields)
			t.constrs[cname] = ch
			ctorHandles = append(ctorHandles, ch)
		}
		t.arena.Cell(owner).Constructors = ctorHandles
	}
}

// resolveAnnotation turns a surface TypeAnnotation into a concrete arena
// Handle, seeding the inference arena from declared types (spec.md §3's
// "Type values live in an inference arena... AST nodes carry handles").
//
// A written `lhs -> rhs` chain is flattened into one N-ary Function cell
// rather than kept as right-nested single-argument functions: this way
// an annotation like `int -> int -> bool` and a two-parameter `let`
// function both resolve to the same Function{Params: [int,int],
// Ret: bool} shape, so arity-exact unification (spec.md §4.4) compares
// them structurally without first normalizing currying on one side.
func (t *Typer) resolveAnnotation(ann ast.TypeAnnotation) Handle {
	switch a := ann.(type) {
	case *ast.BasicType:
		switch a.Tag {
		case ast.TagUnit:
			return t.arena.NewBasic(KindUnit)
		case ast.TagInt:
			return t.arena.NewBasic(KindInt)
		case ast.TagChar:
			return t.arena.NewBasic(KindChar)
		case ast.TagBool:
			return t.arena.NewBasic(KindBool)
		case ast.TagFloat:
			return t.arena.NewBasic(KindFloat)
		}
		t.sink.Panic("unknown BasicType tag %v", a.Tag)
		return 0

	case *ast.FunctionType:
		var params []Handle
		var cur ast.TypeAnnotation = a
		for {
			ft, ok := cur.(*ast.FunctionType)
			if !ok {
				break
			}
			params = append(params, t.resolveAnnotation(ft.Lhs))
			cur = ft.Rhs
		}
		ret := t.resolveAnnotation(cur)
		return t.arena.NewFunction(params, ret)

	case *ast.ArrayType:
		elem := t.resolveAnnotation(a.Elem)
		return t.arena.NewArray(elem, a.Rank, true)

	case *ast.RefType:
		elem := t.resolveAnnotation(a.Elem)
		return t.arena.NewRef(elem)

	case *ast.CustomType:
		name := a.Name.Name
		h, ok := t.types[name]
		if !ok {
			t.sink.Errorf(diag.StageTyper, diag.CodeNameUndefinedType, toDiagSpan(a.Name.Span()),
				"undefined type %q", name)
			return t.arena.NewUnknown()
		}
		return h

	default:
		t.sink.Panic("unknown TypeAnnotation variant %T", ann)
		return 0
	}
}
