package ast

// Constructors for synthesized nodes. Passes build replacement trees with
// these instead of wiring links by hand.

// Script builds a root node holding stmts.
func Script(stmts ...*Node) *Node {
	n := New(KindScript)
	for _, s := range stmts {
		n.AddChildToBack(s)
	}
	return n
}

// Name builds an identifier reference.
func Name(text string) *Node {
	n := New(KindName)
	n.Value = text
	return n
}

// Str builds a string literal.
func Str(text string) *Node {
	n := New(KindString)
	n.Value = text
	return n
}

// Number builds a numeric literal from its source text.
func Number(text string) *Node {
	n := New(KindNumber)
	n.Value = text
	return n
}

// Var builds a declaration `var name`.
func Var(name string) *Node {
	n := New(KindVar)
	n.Value = name
	return n
}

// GetProp builds a property access `obj.prop`.
func GetProp(obj *Node, prop string) *Node {
	n := New(KindGetProp)
	n.Value = prop
	n.AddChildToBack(obj)
	return n
}

// Call builds a call expression.
func Call(callee *Node, args ...*Node) *Node {
	n := New(KindCall)
	n.AddChildToBack(callee)
	for _, a := range args {
		n.AddChildToBack(a)
	}
	return n
}

// ExprStmt wraps an expression into a statement.
func ExprStmt(expr *Node) *Node {
	n := New(KindExprStmt)
	n.AddChildToBack(expr)
	return n
}

// Function builds a function literal with the given body statements.
func Function(body ...*Node) *Node {
	n := New(KindFunction)
	for _, s := range body {
		n.AddChildToBack(s)
	}
	return n
}

// QualifiedName flattens a Name/GetProp chain into dotted form
// ("$jscomp.polyfill"). Reports false when the chain contains anything else,
// including a nil link: the decoder does not enforce per-kind arity, so a
// get_prop or call may arrive with children missing.
func QualifiedName(n *Node) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind {
	case KindName:
		return n.Value, true
	case KindGetProp:
		base, ok := QualifiedName(n.first)
		if !ok {
			return "", false
		}
		return base + "." + n.Value, true
	default:
		return "", false
	}
}
