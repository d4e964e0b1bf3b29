package ast

// Walk traverses the AST starting from node, calling fn for each node
// visited. If fn returns false for a node, Walk does not descend into
// that node's children. Grounded on the teacher's depth-first Walk over
// its Node/Expr/Stmt/Decl union, generalized to Lumen's DefStmt/Expr/
// TypeAnnotation/Pattern node families.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, d := range n.Defs {
			Walk(d, fn)
		}

	case *LetStmt:
		for _, d := range n.Defs {
			Walk(d, fn)
		}

	case *LetDef:
		if n.Name != nil {
			Walk(n.Name, fn)
		}
		for _, p := range n.Params {
			Walk(p, fn)
		}
		if n.Annotation != nil {
			Walk(n.Annotation, fn)
		}
		if n.Body != nil {
			Walk(n.Body, fn)
		}
		for _, d := range n.Dims {
			Walk(d, fn)
		}

	case *Param:
		if n.Name != nil {
			Walk(n.Name, fn)
		}
		if n.Annotation != nil {
			Walk(n.Annotation, fn)
		}

	case *TypeStmt:
		for _, d := range n.Defs {
			Walk(d, fn)
		}

	case *TypeDef:
		if n.Name != nil {
			Walk(n.Name, fn)
		}
		for _, c := range n.Constructors {
			Walk(c, fn)
		}

	case *Constructor:
		if n.Name != nil {
			Walk(n.Name, fn)
		}
		for _, f := range n.Fields {
			Walk(f, fn)
		}

	case *Clause:
		if n.Pattern != nil {
			Walk(n.Pattern, fn)
		}
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *UnaryOp:
		Walk(n.Operand, fn)

	case *BinaryOp:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *NewOp:
		if n.Type != nil {
			Walk(n.Type, fn)
		}
		for _, d := range n.Dims {
			Walk(d, fn)
		}

	case *While:
		Walk(n.Cond, fn)
		Walk(n.Body, fn)

	case *For:
		if n.Var != nil {
			Walk(n.Var, fn)
		}
		Walk(n.Start, fn)
		Walk(n.End, fn)
		Walk(n.Body, fn)

	case *If:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		if n.Else != nil {
			Walk(n.Else, fn)
		}

	case *Dim:
		if n.Id != nil {
			Walk(n.Id, fn)
		}
		if n.DimIndex != nil {
			Walk(n.DimIndex, fn)
		}

	case *IdCall:
		if n.Name != nil {
			Walk(n.Name, fn)
		}

	case *FuncCall:
		if n.Callee != nil {
			Walk(n.Callee, fn)
		}
		for _, a := range n.Args {
			Walk(a, fn)
		}

	case *ConstrCall:
		if n.Name != nil {
			Walk(n.Name, fn)
		}
		for _, a := range n.Args {
			Walk(a, fn)
		}

	case *ArrayAccess:
		if n.Array != nil {
			Walk(n.Array, fn)
		}
		for _, idx := range n.Indices {
			Walk(idx, fn)
		}

	case *Match:
		Walk(n.Scrutinee, fn)
		for _, c := range n.Clauses {
			Walk(c, fn)
		}

	case *LetIn:
		Walk(n.Stmt, fn)
		Walk(n.Body, fn)

	case *FunctionType:
		Walk(n.Lhs, fn)
		Walk(n.Rhs, fn)

	case *ArrayType:
		Walk(n.Elem, fn)

	case *RefType:
		Walk(n.Elem, fn)

	case *CustomType:
		if n.Name != nil {
			Walk(n.Name, fn)
		}

	case *PatLiteral:
		if n.Literal != nil {
			Walk(n.Literal, fn)
		}

	case *PatId:
		if n.Name != nil {
			Walk(n.Name, fn)
		}

	case *PatConstr:
		if n.Name != nil {
			Walk(n.Name, fn)
		}
		for _, a := range n.Args {
			Walk(a, fn)
		}

	// Leaf nodes: Ident, BasicType, and all literal Exprs carry no children.
	case *Ident, *BasicType, *UnitLit, *IntLit, *CharLit, *BoolLit, *FloatLit, *StringLit:
	}
}
