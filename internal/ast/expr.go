package ast

import "github.com/lumen-lang/lumen/internal/lexer"

// UnitLit is the unit value `()`.
type UnitLit struct{ span lexer.Span }

func NewUnitLit(span lexer.Span) *UnitLit { return &UnitLit{span: span} }
func (e *UnitLit) Span() lexer.Span       { return e.span }
func (*UnitLit) exprNode()                {}

// IntLit is a decoded integer literal.
type IntLit struct {
	Value int64
	span  lexer.Span
}

func NewIntLit(value int64, span lexer.Span) *IntLit { return &IntLit{Value: value, span: span} }
func (e *IntLit) Span() lexer.Span                    { return e.span }
func (*IntLit) exprNode()                             {}

// CharLit is a decoded character literal.
type CharLit struct {
	Value rune
	span  lexer.Span
}

func NewCharLit(value rune, span lexer.Span) *CharLit { return &CharLit{Value: value, span: span} }
func (e *CharLit) Span() lexer.Span                    { return e.span }
func (*CharLit) exprNode()                             {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Value bool
	span  lexer.Span
}

func NewBoolLit(value bool, span lexer.Span) *BoolLit { return &BoolLit{Value: value, span: span} }
func (e *BoolLit) Span() lexer.Span                    { return e.span }
func (*BoolLit) exprNode()                             {}

// FloatLit is a decoded floating-point literal.
type FloatLit struct {
	Value float64
	span  lexer.Span
}

func NewFloatLit(value float64, span lexer.Span) *FloatLit {
	return &FloatLit{Value: value, span: span}
}
func (e *FloatLit) Span() lexer.Span { return e.span }
func (*FloatLit) exprNode()          {}

// StringLit is a decoded string literal.
type StringLit struct {
	Value string
	span  lexer.Span
}

func NewStringLit(value string, span lexer.Span) *StringLit {
	return &StringLit{Value: value, span: span}
}
func (e *StringLit) Span() lexer.Span { return e.span }
func (*StringLit) exprNode()          {}

// UnaryOp is a prefix operator application: `+ - +. -. ! not delete`.
type UnaryOp struct {
	Op      string
	Operand Expr
	span    lexer.Span
}

func NewUnaryOp(op string, operand Expr, span lexer.Span) *UnaryOp {
	return &UnaryOp{Op: op, Operand: operand, span: span}
}
func (e *UnaryOp) Span() lexer.Span { return e.span }
func (*UnaryOp) exprNode()          {}

// BinaryOp is an infix operator application, including the sequencing
// operator `;` and assignment `:=` (spec.md §4.3's precedence table
// treats both as ordinary binary operators).
type BinaryOp struct {
	Op    string
	Left  Expr
	Right Expr
	span  lexer.Span
}

func NewBinaryOp(op string, left, right Expr, span lexer.Span) *BinaryOp {
	return &BinaryOp{Op: op, Left: left, Right: right, span: span}
}
func (e *BinaryOp) Span() lexer.Span { return e.span }
func (*BinaryOp) exprNode()          {}

// NewOp is a `new T` allocation expression. Dims carries the size
// expressions of an array allocation whose element type is T; it is empty
// for a scalar (`ref T`) allocation.
type NewOp struct {
	Type TypeAnnotation
	Dims []Expr
	span lexer.Span
}

func NewNewOp(typ TypeAnnotation, dims []Expr, span lexer.Span) *NewOp {
	return &NewOp{Type: typ, Dims: dims, span: span}
}
func (e *NewOp) Span() lexer.Span { return e.span }
func (*NewOp) exprNode()          {}

// While is `while cond do body done`.
type While struct {
	Cond Expr
	Body Expr
	span lexer.Span
}

func NewWhile(cond, body Expr, span lexer.Span) *While {
	return &While{Cond: cond, Body: body, span: span}
}
func (e *While) Span() lexer.Span { return e.span }
func (*While) exprNode()          {}

// For is `for i = start (to|downto) end do body done`.
type For struct {
	Var   *Ident
	Start Expr
	End   Expr
	Down  bool
	Body  Expr
	span  lexer.Span
}

func NewFor(v *Ident, start, end Expr, down bool, body Expr, span lexer.Span) *For {
	return &For{Var: v, Start: start, End: end, Down: down, Body: body, span: span}
}
func (e *For) Span() lexer.Span { return e.span }
func (*For) exprNode()          {}

// If is `if cond then thenBranch [else elseBranch]`. Else is nil when the
// branch is omitted.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
	span lexer.Span
}

func NewIf(cond, then, els Expr, span lexer.Span) *If {
	return &If{Cond: cond, Then: then, Else: els, span: span}
}
func (e *If) Span() lexer.Span { return e.span }
func (*If) exprNode()          {}

// Dim is `dim [i] id`, querying the size of dimension i (default 1) of
// array id. DimIndex is nil when i is omitted.
type Dim struct {
	Id       *Ident
	DimIndex Expr
	span     lexer.Span
}

func NewDim(id *Ident, dimIndex Expr, span lexer.Span) *Dim {
	return &Dim{Id: id, DimIndex: dimIndex, span: span}
}
func (e *Dim) Span() lexer.Span { return e.span }
func (*Dim) exprNode()          {}

// IdCall is a bare identifier reference: a variable read, or a zero-arg
// function invocation at use-sites (spec.md §4.3's disambiguation rule).
type IdCall struct {
	Name *Ident
	span lexer.Span
}

func NewIdCall(name *Ident, span lexer.Span) *IdCall { return &IdCall{Name: name, span: span} }
func (e *IdCall) Span() lexer.Span                    { return e.span }
func (*IdCall) exprNode()                             {}

// FuncCall is `ident args…` when ident begins lower-case and at least one
// argument follows.
type FuncCall struct {
	Callee *Ident
	Args   []Expr
	span   lexer.Span
}

func NewFuncCall(callee *Ident, args []Expr, span lexer.Span) *FuncCall {
	return &FuncCall{Callee: callee, Args: args, span: span}
}
func (e *FuncCall) Span() lexer.Span { return e.span }
func (*FuncCall) exprNode()          {}

// ConstrCall is `Uppercase atoms…`, a constructor application.
type ConstrCall struct {
	Name *Ident
	Args []Expr
	span lexer.Span
}

func NewConstrCall(name *Ident, args []Expr, span lexer.Span) *ConstrCall {
	return &ConstrCall{Name: name, Args: args, span: span}
}
func (e *ConstrCall) Span() lexer.Span { return e.span }
func (*ConstrCall) exprNode()          {}

// ArrayAccess is `ident '[' exprs ']'`, indexing one or more dimensions
// of an array.
type ArrayAccess struct {
	Array   *Ident
	Indices []Expr
	span    lexer.Span
}

func NewArrayAccess(array *Ident, indices []Expr, span lexer.Span) *ArrayAccess {
	return &ArrayAccess{Array: array, Indices: indices, span: span}
}
func (e *ArrayAccess) Span() lexer.Span { return e.span }
func (*ArrayAccess) exprNode()          {}

// Match is `match scrutinee with clauses`.
type Match struct {
	Scrutinee Expr
	Clauses   []*Clause
	span      lexer.Span
}

func NewMatch(scrutinee Expr, clauses []*Clause, span lexer.Span) *Match {
	return &Match{Scrutinee: scrutinee, Clauses: clauses, span: span}
}
func (e *Match) Span() lexer.Span { return e.span }
func (*Match) exprNode()          {}

// LetIn is `let [rec] defs in body`: a LetStmt scoped to a following
// expression rather than to the rest of the program.
type LetIn struct {
	Stmt *LetStmt
	Body Expr
	span lexer.Span
}

func NewLetIn(stmt *LetStmt, body Expr, span lexer.Span) *LetIn {
	return &LetIn{Stmt: stmt, Body: body, span: span}
}
func (e *LetIn) Span() lexer.Span { return e.span }
func (*LetIn) exprNode()          {}
