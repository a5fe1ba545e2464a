package inject

import (
	"shimmer/internal/ast"
)

// pruneRedundant walks exactly the freshly injected region, from the first
// child of parent up to (not including) end, and deletes registration
// statements whose native version the output target already covers. A single
// library registers everything it bundles, so a higher output level can make
// part of an injected library redundant.
//
// end is captured before any mutation; the next sibling is looked up before
// the current node is removed so removals cannot corrupt the scan boundary.
func (r *Rewriter) pruneRedundant(parent, end *ast.Node) error {
	out := r.comp.OutputFeatureSet()
	node := parent.FirstChild()
	for node != nil && node != end {
		next := node.Next()
		reg, err := MatchRegistration(node)
		if err != nil {
			return err
		}
		if reg != nil && out.Contains(reg.Native) {
			parent.RemoveChild(node)
			r.comp.MarkFunctionsDeleted(node)
		}
		node = next
	}
	return nil
}
