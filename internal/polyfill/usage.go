package polyfill

import (
	"golang.org/x/text/unicode/norm"

	"shimmer/internal/ast"
)

// Usage is one observed occurrence of a catalogued symbol. Transient:
// produced and consumed within a single scan.
type Usage struct {
	Polyfill    *Polyfill
	Node        *ast.Node
	DisplayName string
}

// UsageFinder reports every occurrence of a catalogued built-in during one
// traversal of a program tree.
type UsageFinder struct {
	catalog *Catalog
}

func NewUsageFinder(c *Catalog) *UsageFinder {
	return &UsageFinder{catalog: c}
}

// Scan walks root in pre-order and invokes visit for each usage, in
// deterministic traversal order.
//
// Static symbols match by qualified name (`Object.assign`); methods match by
// property name alone, so `xs.includes(…)` reports a usage for every
// catalogued `*.prototype.includes`; the receiver's type is unknown here.
func (f *UsageFinder) Scan(root *ast.Node, visit func(Usage)) {
	root.Walk(func(n *ast.Node) bool {
		switch n.Kind {
		case ast.KindName:
			name := normIdent(n.Value)
			if p, ok := f.catalog.Lookup(name); ok {
				visit(Usage{Polyfill: p, Node: n, DisplayName: name})
			}
		case ast.KindGetProp:
			if qual, ok := qualifiedIdent(n); ok {
				if p, found := f.catalog.Lookup(qual); found {
					visit(Usage{Polyfill: p, Node: n, DisplayName: qual})
					return true
				}
			}
			prop := normIdent(n.Value)
			for _, p := range f.catalog.Methods(prop) {
				visit(Usage{Polyfill: p, Node: n, DisplayName: prop})
			}
		}
		return true
	})
}

// normIdent brings identifier text to NFC before catalog lookups; JS
// identifiers that differ only in normalization form denote the same binding.
func normIdent(s string) string {
	return norm.NFC.String(s)
}

func qualifiedIdent(n *ast.Node) (string, bool) {
	qual, ok := ast.QualifiedName(n)
	if !ok {
		return "", false
	}
	return normIdent(qual), true
}
