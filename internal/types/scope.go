package types

import "github.com/lumen-lang/lumen/internal/ast"

// Symbol binds a name to an inferred type handle within a scope. Type can
// go stale as unification proceeds — the Unknown cell it once pointed at
// may since have been forwarded to something else — so callers go through
// Scope.Lookup rather than reading a Symbol's Type field directly off the
// map.
type Symbol struct {
	Name    string
	Type    Handle
	DefNode ast.Node // The AST node where this symbol is defined
}

// Scope is a lexical scope nesting value/function bindings introduced by
// `let ... in`, function parameters, `for` variables, and match clause
// patterns (spec.md §4.4). It holds a reference to the arena that owns its
// symbols' Type handles so Lookup can resolve through live unification
// instead of handing back a handle that has since been forwarded.
type Scope struct {
	Parent  *Scope
	Symbols map[string]*Symbol
	arena   *Arena
}

// NewScope creates a new scope with an optional parent. A nested scope
// (parent != nil) always shares its parent's arena, since a Typer never
// swaps arenas mid-program; the arena argument only matters for the root
// scope.
func NewScope(parent *Scope, arena *Arena) *Scope {
	if parent != nil {
		arena = parent.arena
	}
	return &Scope{
		Parent:  parent,
		Symbols: make(map[string]*Symbol),
		arena:   arena,
	}
}

// Insert adds a symbol to the current scope.
func (s *Scope) Insert(name string, sym *Symbol) {
	s.Symbols[name] = sym
}

// Lookup finds a symbol in the current scope or any parent scope. Before
// returning it, the symbol's Type is resolved to the arena's current
// union-find representative via Arena.Find — the same path-compression
// Find performs on any other handle — so a caller never has to remember
// to re-resolve a binding's type after further unification has run.
func (s *Scope) Lookup(name string) *Symbol {
	if sym, ok := s.Symbols[name]; ok {
		if s.arena != nil {
			sym.Type = s.arena.Find(sym.Type)
		}
		return sym
	}
	if s.Parent != nil {
		return s.Parent.Lookup(name)
	}
	return nil
}
