package inject

import (
	"shimmer/internal/ast"
)

// lookupHelperName is the runtime helper the isolation phase rewires
// polyfilled-symbol accesses through.
const lookupHelperName = "$jscomp$lookupPolyfilledValue"

// declareIsolationExtern declares the lookup helper in the synthetic externs.
// Isolation runs near the end of optimizations and synthesizes calls to this
// helper; without the extern an earlier pass could dead-code-eliminate the
// helper's injected implementation first. No value flows through the
// declaration: it is only a liveness edge.
func (r *Rewriter) declareIsolationExtern(externs *ast.Node) {
	decl := ast.Var(lookupHelperName)
	decl.SrcRefTree(externs)
	externs.AddChildToBack(decl)
	r.comp.ReportChangeToEnclosingScope(decl)
}
