package ast

import (
	"fmt"

	"shimmer/internal/source"
)

// Kind discriminates tree nodes.
type Kind uint8

const (
	// KindScript is the root of one program or externs tree; children are statements.
	KindScript Kind = iota
	// KindVar is a variable declaration; Value holds the name.
	KindVar
	// KindExprStmt is an expression statement; single child is the expression.
	KindExprStmt
	// KindCall is a call; first child is the callee, the rest are arguments.
	KindCall
	// KindName is an identifier reference; Value holds the text.
	KindName
	// KindGetProp is a property access; single child is the receiver, Value the property.
	KindGetProp
	// KindString is a string literal; Value holds the text.
	KindString
	// KindNumber is a numeric literal; Value holds the literal text.
	KindNumber
	// KindFunction is a function literal; children are body statements.
	KindFunction
	// KindBlock is a statement block.
	KindBlock
	// KindIf is a conditional; children are condition, then-branch, optional else.
	KindIf
	// KindReturn is a return statement with an optional child expression.
	KindReturn
)

var kindNames = [...]string{
	KindScript:   "script",
	KindVar:      "var",
	KindExprStmt: "expr_stmt",
	KindCall:     "call",
	KindName:     "name",
	KindGetProp:  "get_prop",
	KindString:   "string",
	KindNumber:   "number",
	KindFunction: "function",
	KindBlock:    "block",
	KindIf:       "if",
	KindReturn:   "return",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Node is one mutable tree node. Children form a doubly linked sibling list
// so statements can be inserted and removed in O(1) during passes.
type Node struct {
	Kind  Kind
	Value string
	Span  source.Span

	parent *Node
	prev   *Node
	next   *Node
	first  *Node
	last   *Node
}

// New allocates a detached node.
func New(kind Kind) *Node {
	return &Node{Kind: kind}
}

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Next() *Node       { return n.next }
func (n *Node) Prev() *Node       { return n.prev }
func (n *Node) FirstChild() *Node { return n.first }
func (n *Node) LastChild() *Node  { return n.last }

// ChildCount walks the sibling list; meant for tests and small fan-outs.
func (n *Node) ChildCount() int {
	count := 0
	for c := n.first; c != nil; c = c.next {
		count++
	}
	return count
}

// ChildAt returns the i-th child or nil.
func (n *Node) ChildAt(i int) *Node {
	c := n.first
	for ; c != nil && i > 0; c = c.next {
		i--
	}
	return c
}

// AddChildToBack appends c as the last child. c must be detached.
func (n *Node) AddChildToBack(c *Node) {
	c.assertDetached()
	c.parent = n
	c.prev = n.last
	if n.last != nil {
		n.last.next = c
	} else {
		n.first = c
	}
	n.last = c
}

// AddChildToFront prepends c as the first child. c must be detached.
func (n *Node) AddChildToFront(c *Node) {
	c.assertDetached()
	c.parent = n
	c.next = n.first
	if n.first != nil {
		n.first.prev = c
	} else {
		n.last = c
	}
	n.first = c
}

// InsertChildAfter inserts c directly after the existing child prev.
// A nil prev inserts at the front.
func (n *Node) InsertChildAfter(c, prev *Node) {
	if prev == nil {
		n.AddChildToFront(c)
		return
	}
	if prev.parent != n {
		panic("ast: InsertChildAfter anchor is not a child of this node")
	}
	c.assertDetached()
	c.parent = n
	c.prev = prev
	c.next = prev.next
	if prev.next != nil {
		prev.next.prev = c
	} else {
		n.last = c
	}
	prev.next = c
}

// RemoveChild detaches c from n. The pass discipline is to capture Next()
// before removing the current node.
func (n *Node) RemoveChild(c *Node) {
	if c.parent != n {
		panic("ast: RemoveChild of a non-child")
	}
	c.Detach()
}

// Detach unlinks n from its parent and siblings. No-op for roots.
func (n *Node) Detach() {
	if n.parent == nil {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		n.parent.first = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		n.parent.last = n.prev
	}
	n.parent = nil
	n.prev = nil
	n.next = nil
}

// SrcRefTree stamps n and its whole subtree with the span of ref, used when
// synthesized nodes are attached to an existing tree.
func (n *Node) SrcRefTree(ref *Node) {
	span := ref.Span
	n.Walk(func(m *Node) bool {
		m.Span = span
		return true
	})
}

// IsExprCall reports whether n is an expression statement wrapping a call.
func (n *Node) IsExprCall() bool {
	return n.Kind == KindExprStmt && n.first != nil && n.first.Kind == KindCall
}

func (n *Node) assertDetached() {
	if n.parent != nil || n.prev != nil || n.next != nil {
		panic("ast: node is already attached")
	}
}
