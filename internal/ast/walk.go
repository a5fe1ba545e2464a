package ast

// Walk visits n and its subtree in pre-order. Returning false from fn skips
// the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.first; c != nil; c = c.next {
		c.Walk(fn)
	}
}

// CountFunctions counts function literals in the subtree rooted at n,
// including n itself. Dead-code-elimination bookkeeping uses the count when
// a subtree is deleted wholesale.
func CountFunctions(n *Node) int {
	count := 0
	n.Walk(func(m *Node) bool {
		if m.Kind == KindFunction {
			count++
		}
		return true
	})
	return count
}
