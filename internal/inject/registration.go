package inject

import (
	"fmt"

	"shimmer/internal/ast"
	"shimmer/internal/feature"
)

// registrationCallee is the runtime's polyfill-registration entry point.
const registrationCallee = "$jscomp.polyfill"

// Registration is a decoded polyfill-registration statement.
type Registration struct {
	Name   string
	Native feature.Set
	Node   *ast.Node
}

// MatchRegistration decodes stmt when it is a
// `$jscomp.polyfill(name, impl, nativeVersionTag, polyfillVersionTag)` call
// statement. It returns (nil, nil) for any other statement. A registration
// call with the wrong shape or an unparsable version tag fails hard: that is
// catalog or library corruption, not user input.
func MatchRegistration(stmt *ast.Node) (*Registration, error) {
	if !stmt.IsExprCall() {
		return nil, nil
	}
	call := stmt.FirstChild()
	callee, ok := ast.QualifiedName(call.FirstChild())
	if !ok || callee != registrationCallee {
		return nil, nil
	}

	// callee + (name, implementation, nativeVersionTag, polyfillVersionTag)
	if call.ChildCount() != 5 {
		return nil, fmt.Errorf("polyfill registration at %s: want 4 arguments, got %d",
			stmt.Span, call.ChildCount()-1)
	}
	name := call.ChildAt(1)
	nativeTag := call.ChildAt(3)
	if name.Kind != ast.KindString || nativeTag.Kind != ast.KindString {
		return nil, fmt.Errorf("polyfill registration at %s: name and version tags must be string literals", stmt.Span)
	}
	native, err := feature.FromTag(nativeTag.Value)
	if err != nil {
		return nil, fmt.Errorf("polyfill registration %q at %s: %w", name.Value, stmt.Span, err)
	}
	return &Registration{Name: name.Value, Native: native, Node: stmt}, nil
}
