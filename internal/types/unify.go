package types

import (
	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/lexer"
)

// unify equates a and b, refining Unknown cells as needed, and reports a
// diagnostic at span on failure. It always returns a bool rather than an
// error: type errors are compiler-observable facts reported through the
// shared sink, never Go errors (spec.md §4.5).
func (t *Typer) unify(a, b Handle, span lexer.Span) bool {
	ra := t.arena.Find(a)
	rb := t.arena.Find(b)
	if ra == rb {
		return true
	}

	ca := t.arena.Cell(ra)
	cb := t.arena.Cell(rb)

	if ca.Kind == KindUnknown && cb.Kind == KindUnknown {
		ca.Forward = rb
		return true
	}
	if ca.Kind == KindUnknown {
		return t.bindUnknown(ra, rb, span)
	}
	if cb.Kind == KindUnknown {
		return t.bindUnknown(rb, ra, span)
	}

	if ca.Kind != cb.Kind {
		t.sink.Errorf(diag.StageTyper, diag.CodeTypeUnifyFailure, toDiagSpan(span),
			"cannot unify %s with %s", t.TypeString(ra), t.TypeString(rb))
		return false
	}

	switch ca.Kind {
	case KindUnit, KindInt, KindChar, KindBool, KindFloat:
		return true

	case KindRef:
		return t.unify(ca.Elem, cb.Elem, span)

	case KindArray:
		return t.unifyArray(ra, rb, span)

	case KindFunction:
		if len(ca.Params) != len(cb.Params) {
			t.sink.Errorf(diag.StageTyper, diag.CodeTypeOperatorArity, toDiagSpan(span),
				"function of arity %d does not match function of arity %d", len(ca.Params), len(cb.Params))
			return false
		}
		ok := true
		for i := range ca.Params {
			if !t.unify(ca.Params[i], cb.Params[i], span) {
				ok = false
			}
		}
		if !t.unify(ca.Ret, cb.Ret, span) {
			ok = false
		}
		return ok

	case KindCustom:
		if ca.Name != cb.Name {
			t.sink.Errorf(diag.StageTyper, diag.CodeTypeUnifyFailure, toDiagSpan(span),
				"cannot unify type %q with type %q", ca.Name, cb.Name)
			return false
		}
		return true

	case KindConstructor:
		// Constructors are never unified directly; each ConstrCall/
		// PatConstr site unifies against the constructor's Owner.
		t.sink.Panic("attempted to unify two Constructor cells directly")
		return false

	default:
		t.sink.Panic("unify: unhandled Kind %v", ca.Kind)
		return false
	}
}

// bindUnknown unifies the Unknown at uh with the (possibly concrete)
// representative at target, after an occurs check.
func (t *Typer) bindUnknown(uh, target Handle, span lexer.Span) bool {
	if t.occursCheck(uh, target) {
		t.sink.Errorf(diag.StageTyper, diag.CodeTypeOccursCheck, toDiagSpan(span),
			"type variable occurs within the type it would unify with")
		return false
	}
	t.arena.Cell(uh).Forward = target
	return true
}

// occursCheck reports whether the Unknown at uh occurs within target,
// which would otherwise let unify build an infinite type (spec.md §4.4:
// "the occurs check is mandatory and rejects recursive unifications").
func (t *Typer) occursCheck(uh, target Handle) bool {
	rt := t.arena.Find(target)
	if rt == uh {
		return true
	}
	c := t.arena.Cell(rt)
	switch c.Kind {
	case KindArray, KindRef:
		return t.occursCheck(uh, c.Elem)
	case KindFunction:
		for _, p := range c.Params {
			if t.occursCheck(uh, p) {
				return true
			}
		}
		return t.occursCheck(uh, c.Ret)
	default:
		return false
	}
}

// unifyArray implements spec.md §4.4's rank-exact unification rule for
// two concrete array cells: a `rank_exact` array only unifies with an
// identical exact rank; a non-exact `rank >= r` array unifies with any
// array whose rank is at least r, and the representative (both sides,
// since there is no single union-find root for two already-concrete
// cells) adopts the larger rank and becomes exact iff either side was.
func (t *Typer) unifyArray(ra, rb Handle, span lexer.Span) bool {
	ca := t.arena.Cell(ra)
	cb := t.arena.Cell(rb)

	if !t.unify(ca.Elem, cb.Elem, span) {
		return false
	}

	switch {
	case ca.RankExact && cb.RankExact:
		if ca.Rank != cb.Rank {
			t.sink.Errorf(diag.StageTyper, diag.CodeTypeUnifyFailure, toDiagSpan(span),
				"cannot unify array of rank %d with array of rank %d", ca.Rank, cb.Rank)
			return false
		}
	case ca.RankExact && !cb.RankExact:
		if ca.Rank < cb.Rank {
			t.sink.Errorf(diag.StageTyper, diag.CodeTypeUnifyFailure, toDiagSpan(span),
				"array of rank %d does not satisfy rank >= %d", ca.Rank, cb.Rank)
			return false
		}
	case !ca.RankExact && cb.RankExact:
		if cb.Rank < ca.Rank {
			t.sink.Errorf(diag.StageTyper, diag.CodeTypeUnifyFailure, toDiagSpan(span),
				"array of rank %d does not satisfy rank >= %d", cb.Rank, ca.Rank)
			return false
		}
	}

	rank := ca.Rank
	if cb.Rank > rank {
		rank = cb.Rank
	}
	exact := ca.RankExact || cb.RankExact

	ca.Rank, ca.RankExact = rank, exact
	cb.Rank, cb.RankExact = rank, exact
	return true
}
