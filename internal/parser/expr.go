package parser

import (
	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/lexer"
)

// parseExpr parses a full expression at spec.md §4.3's lowest precedence
// level (`:=`), the entry point every other parse* function in this file
// ultimately recurses back into for sub-expressions.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssignExpr()
}

// parseAssignExpr handles `:=`, right-associative (lowest precedence).
func (p *Parser) parseAssignExpr() ast.Expr {
	left := p.parseSemiExpr()
	if p.at(lexer.ColonEq) {
		op := p.curTok
		p.next()
		right := p.parseAssignExpr()
		if left == nil || right == nil {
			return nil
		}
		left = ast.NewBinaryOp(op.Lexeme, left, right, mergeSpan(left.Span(), right.Span()))
	}
	return left
}

// parseSemiExpr handles `;`, right-associative.
func (p *Parser) parseSemiExpr() ast.Expr {
	left := p.parseOrExpr()
	if p.at(lexer.Semi) {
		op := p.curTok
		p.next()
		right := p.parseSemiExpr()
		if left == nil || right == nil {
			return left
		}
		left = ast.NewBinaryOp(op.Lexeme, left, right, mergeSpan(left.Span(), right.Span()))
	}
	return left
}

// parseOrExpr handles `||`, left-associative.
func (p *Parser) parseOrExpr() ast.Expr {
	left := p.parseAndExpr()
	for p.at(lexer.OrOr) {
		op := p.curTok
		p.next()
		right := p.parseAndExpr()
		if left == nil || right == nil {
			return left
		}
		left = ast.NewBinaryOp(op.Lexeme, left, right, mergeSpan(left.Span(), right.Span()))
	}
	return left
}

// parseAndExpr handles `&&`, left-associative.
func (p *Parser) parseAndExpr() ast.Expr {
	left := p.parseCmpExpr()
	for p.at(lexer.AndAnd) {
		op := p.curTok
		p.next()
		right := p.parseCmpExpr()
		if left == nil || right == nil {
			return left
		}
		left = ast.NewBinaryOp(op.Lexeme, left, right, mergeSpan(left.Span(), right.Span()))
	}
	return left
}

func isCmpOp(k lexer.TokenKind) bool {
	switch k {
	case lexer.Eq, lexer.LtGt, lexer.EqEq, lexer.BangEq, lexer.Lt, lexer.Gt, lexer.Le, lexer.Ge:
		return true
	default:
		return false
	}
}

// parseCmpExpr handles `= <> == != < > <= >=`, non-associative (spec.md
// §4.3): at most one comparison is consumed, not a chain of them.
func (p *Parser) parseCmpExpr() ast.Expr {
	left := p.parseAddExpr()
	if isCmpOp(p.curTok.Kind) {
		op := p.curTok
		p.next()
		right := p.parseAddExpr()
		if left == nil || right == nil {
			return left
		}
		left = ast.NewBinaryOp(op.Lexeme, left, right, mergeSpan(left.Span(), right.Span()))
	}
	return left
}

func isAddOp(k lexer.TokenKind) bool {
	switch k {
	case lexer.Plus, lexer.Minus, lexer.PlusDot, lexer.MinusDot:
		return true
	default:
		return false
	}
}

// parseAddExpr handles `+ - +. -.`, left-associative.
func (p *Parser) parseAddExpr() ast.Expr {
	left := p.parseMulExpr()
	for isAddOp(p.curTok.Kind) {
		op := p.curTok
		p.next()
		right := p.parseMulExpr()
		if left == nil || right == nil {
			return left
		}
		left = ast.NewBinaryOp(op.Lexeme, left, right, mergeSpan(left.Span(), right.Span()))
	}
	return left
}

func isMulOp(k lexer.TokenKind) bool {
	switch k {
	case lexer.Star, lexer.Slash, lexer.StarDot, lexer.SlashDot, lexer.KwMod:
		return true
	default:
		return false
	}
}

// parseMulExpr handles `* / *. /. mod`, left-associative.
func (p *Parser) parseMulExpr() ast.Expr {
	left := p.parsePowExpr()
	for isMulOp(p.curTok.Kind) {
		op := p.curTok
		p.next()
		right := p.parsePowExpr()
		if left == nil || right == nil {
			return left
		}
		left = ast.NewBinaryOp(op.Lexeme, left, right, mergeSpan(left.Span(), right.Span()))
	}
	return left
}

// parsePowExpr handles `**`, right-associative.
func (p *Parser) parsePowExpr() ast.Expr {
	left := p.parseUnaryExpr()
	if p.at(lexer.StarStar) {
		op := p.curTok
		p.next()
		right := p.parsePowExpr()
		if left == nil || right == nil {
			return left
		}
		left = ast.NewBinaryOp(op.Lexeme, left, right, mergeSpan(left.Span(), right.Span()))
	}
	return left
}

func isUnaryOp(k lexer.TokenKind) bool {
	switch k {
	case lexer.Plus, lexer.Minus, lexer.PlusDot, lexer.MinusDot, lexer.Bang, lexer.KwNot, lexer.KwDelete:
		return true
	default:
		return false
	}
}

// parseUnaryExpr handles the prefix operators `+ - +. -. ! not delete`,
// which recurse into themselves so `- - x` and `not not b` parse.
// Function/constructor application binds tighter than every operator
// (spec.md §4.3), so the non-unary fallthrough goes straight to the
// application-aware atom parser.
func (p *Parser) parseUnaryExpr() ast.Expr {
	if isUnaryOp(p.curTok.Kind) {
		op := p.curTok
		p.next()
		operand := p.parseUnaryExpr()
		if operand == nil {
			return nil
		}
		return ast.NewUnaryOp(op.Lexeme, operand, mergeSpan(op.Span, operand.Span()))
	}
	return p.parseAtom(true)
}

// startsAtom reports whether kind can begin an atomic expression — used
// both to decide whether an identifier is followed by application
// arguments and to collect those arguments one atom at a time.
func startsAtom(k lexer.TokenKind) bool {
	switch k {
	case lexer.IntLit, lexer.FloatLit, lexer.CharLit, lexer.StringLit,
		lexer.KwTrue, lexer.KwFalse, lexer.LParen, lexer.KwBegin,
		lexer.KwIf, lexer.KwWhile, lexer.KwFor, lexer.KwMatch,
		lexer.KwNew, lexer.KwDim, lexer.IdLower, lexer.IdUpper:
		return true
	default:
		return false
	}
}

// parseAtom parses one atomic expression (spec.md §4.3's thirteen
// Expression variants plus literals). allowApply controls whether a
// leading identifier is allowed to gather application arguments:
// top-level atoms do (`f x y`), but an atom parsed as *another* call's
// argument does not, so `f g x` parses as FuncCall(f, [IdCall(g),
// IdCall(x)]) rather than FuncCall(f, [FuncCall(g, [x])]) — juxtaposition
// of atoms is a single flat application, per spec.md §4.3.
func (p *Parser) parseAtom(allowApply bool) ast.Expr {
	switch p.curTok.Kind {
	case lexer.IntLit, lexer.FloatLit, lexer.CharLit, lexer.StringLit, lexer.KwTrue, lexer.KwFalse:
		return p.parseLiteralExpr()

	case lexer.LParen:
		start := p.curTok.Span
		p.next()
		if p.at(lexer.RParen) {
			end := p.curTok.Span
			p.next()
			return ast.NewUnitLit(mergeSpan(start, end))
		}
		inner := p.parseExpr()
		p.expect(lexer.RParen, "')'")
		return inner

	case lexer.KwBegin:
		p.next()
		inner := p.parseExpr()
		p.expect(lexer.KwEnd, "'end'")
		return inner

	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwFor:
		return p.parseFor()
	case lexer.KwMatch:
		return p.parseMatch()
	case lexer.KwLet:
		return p.parseLetIn()
	case lexer.KwNew:
		return p.parseNew()
	case lexer.KwDim:
		return p.parseDim()

	case lexer.IdLower:
		tok := p.curTok
		p.next()
		name := ast.NewIdent(tok.Lexeme, tok.Span)
		if p.at(lexer.LBracket) {
			return p.parseArrayAccess(name)
		}
		if allowApply && startsAtom(p.curTok.Kind) {
			args := p.parseCallArgs()
			end := tok.Span
			if len(args) > 0 {
				end = args[len(args)-1].Span()
			}
			return ast.NewFuncCall(name, args, mergeSpan(tok.Span, end))
		}
		return ast.NewIdCall(name, tok.Span)

	case lexer.IdUpper:
		tok := p.curTok
		p.next()
		name := ast.NewIdent(tok.Lexeme, tok.Span)
		if allowApply && startsAtom(p.curTok.Kind) {
			args := p.parseCallArgs()
			end := tok.Span
			if len(args) > 0 {
				end = args[len(args)-1].Span()
			}
			return ast.NewConstrCall(name, args, mergeSpan(tok.Span, end))
		}
		return ast.NewConstrCall(name, nil, tok.Span)

	default:
		p.errorf(diag.CodeParseUnexpectedToken, p.curTok.Span, "expected an expression, found %q", p.curTok.Lexeme)
		return nil
	}
}

// parseCallArgs gathers the atom arguments of a FuncCall/ConstrCall.
func (p *Parser) parseCallArgs() []ast.Expr {
	var args []ast.Expr
	for startsAtom(p.curTok.Kind) {
		args = append(args, p.parseAtom(false))
	}
	return args
}

// parseArrayAccess parses `ident '[' exprs ']'`.
func (p *Parser) parseArrayAccess(name *ast.Ident) ast.Expr {
	p.next() // '['
	indices := p.parseExprListUntil(lexer.RBracket)
	end := p.curTok.Span
	p.expect(lexer.RBracket, "']'")
	return ast.NewArrayAccess(name, indices, mergeSpan(name.Span(), end))
}

// parseIf parses `'if' Expr 'then' Expr ['else' Expr]`. The branches are
// parsed at the `||` level, so a following `;` or `:=` applies to the
// whole if-expression rather than to its last branch.
func (p *Parser) parseIf() ast.Expr {
	start := p.curTok.Span
	p.next()
	cond := p.parseExpr()
	p.expect(lexer.KwThen, "'then'")
	thenBranch := p.parseOrExpr()
	end := start
	if thenBranch != nil {
		end = thenBranch.Span()
	}
	var elseBranch ast.Expr
	if p.accept(lexer.KwElse) {
		elseBranch = p.parseOrExpr()
		if elseBranch != nil {
			end = elseBranch.Span()
		}
	}
	return ast.NewIf(cond, thenBranch, elseBranch, mergeSpan(start, end))
}

// parseWhile parses `'while' Expr 'do' Expr 'done'`.
func (p *Parser) parseWhile() ast.Expr {
	start := p.curTok.Span
	p.next()
	cond := p.parseExpr()
	p.expect(lexer.KwDo, "'do'")
	body := p.parseExpr()
	end := p.curTok.Span
	p.expect(lexer.KwDone, "'done'")
	return ast.NewWhile(cond, body, mergeSpan(start, end))
}

// parseFor parses `'for' idlower '=' Expr ('to'|'downto') Expr 'do' Expr 'done'`.
func (p *Parser) parseFor() ast.Expr {
	start := p.curTok.Span
	p.next()
	v := p.parseLowerIdent()
	p.expect(lexer.Eq, "'='")
	from := p.parseExpr()
	down := false
	switch {
	case p.at(lexer.KwTo):
		p.next()
	case p.at(lexer.KwDownto):
		down = true
		p.next()
	default:
		p.errorf(diag.CodeParseMissingDelim, p.curTok.Span, "expected 'to' or 'downto', found %q", p.curTok.Lexeme)
	}
	to := p.parseExpr()
	p.expect(lexer.KwDo, "'do'")
	body := p.parseExpr()
	end := p.curTok.Span
	p.expect(lexer.KwDone, "'done'")
	return ast.NewFor(v, from, to, down, body, mergeSpan(start, end))
}

// parseMatch parses `'match' Expr 'with' ['|'] Clause ('|' Clause)*`.
func (p *Parser) parseMatch() ast.Expr {
	start := p.curTok.Span
	p.next()
	scrutinee := p.parseExpr()
	p.expect(lexer.KwWith, "'with'")
	p.accept(lexer.Pipe)

	var clauses []*ast.Clause
	if c := p.parseClause(); c != nil {
		clauses = append(clauses, c)
	}
	for p.accept(lexer.Pipe) {
		if c := p.parseClause(); c != nil {
			clauses = append(clauses, c)
		}
	}

	end := start
	if len(clauses) > 0 {
		end = clauses[len(clauses)-1].Span()
	}
	return ast.NewMatch(scrutinee, clauses, mergeSpan(start, end))
}

func (p *Parser) parseClause() *ast.Clause {
	pat := p.parsePattern()
	p.expect(lexer.Arrow, "'->'")
	body := p.parseExpr()
	if pat == nil || body == nil {
		p.syncExpr()
		return nil
	}
	return ast.NewClause(pat, body, mergeSpan(pat.Span(), body.Span()))
}

// parseLetIn parses the `'let' ['rec'] LetDef ('and' LetDef)* 'in' Expr`
// expression form (spec.md §3's LetIn), reusing the same LetDef grammar
// as the top-level LetStmt.
func (p *Parser) parseLetIn() ast.Expr {
	start := p.curTok.Span
	p.next()
	recursive := p.accept(lexer.KwRec)

	var defs []*ast.LetDef
	if d := p.parseLetDef(); d != nil {
		defs = append(defs, d)
	}
	for p.accept(lexer.KwAnd) {
		if d := p.parseLetDef(); d != nil {
			defs = append(defs, d)
		}
	}

	stmtEnd := start
	if len(defs) > 0 {
		stmtEnd = defs[len(defs)-1].Span()
	}
	stmt := ast.NewLetStmt(recursive, defs, mergeSpan(start, stmtEnd))

	p.expect(lexer.KwIn, "'in'")
	body := p.parseExpr()
	end := stmtEnd
	if body != nil {
		end = body.Span()
	}
	return ast.NewLetIn(stmt, body, mergeSpan(start, end))
}

// parseNew parses `'new' Type ('[' Expr (',' Expr)* ']')?` (spec.md
// §4.3's NewOp; with bracketed dims it allocates an array whose element
// type is Type, without them a single `ref Type` cell).
func (p *Parser) parseNew() ast.Expr {
	start := p.curTok.Span
	p.next()
	typ := p.parseType()
	end := start
	if typ != nil {
		end = typ.Span()
	}
	var dims []ast.Expr
	if p.accept(lexer.LBracket) {
		dims = p.parseExprListUntil(lexer.RBracket)
		end = p.curTok.Span
		p.expect(lexer.RBracket, "']'")
	}
	return ast.NewNewOp(typ, dims, mergeSpan(start, end))
}

// parseDim parses `'dim' ('[' Expr ']')? idlower` (spec.md §4.3's Dim;
// DimIndex defaults to nil, meaning dimension 1, when the bracket is
// omitted).
func (p *Parser) parseDim() ast.Expr {
	start := p.curTok.Span
	p.next()
	var dimIndex ast.Expr
	if p.accept(lexer.LBracket) {
		dimIndex = p.parseExpr()
		p.expect(lexer.RBracket, "']'")
	}
	id := p.parseLowerIdent()
	if id == nil {
		return nil
	}
	return ast.NewDim(id, dimIndex, mergeSpan(start, id.Span()))
}
