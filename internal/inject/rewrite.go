package inject

import (
	"fmt"

	"shimmer/internal/ast"
	"shimmer/internal/diag"
	"shimmer/internal/feature"
	"shimmer/internal/polyfill"
)

// Compiler is the slice of the compilation context this pass consumes.
// *driver.Context implements it.
type Compiler interface {
	OutputFeatureSet() feature.Set
	Reporter() diag.Reporter
	// EnsureLibraryInjected materializes a library at most once per
	// compilation and returns its last inserted statement, or nil when
	// injection was skipped.
	EnsureLibraryInjected(name string, force bool) (*ast.Node, error)
	ReportChangeToEnclosingScope(n *ast.Node)
	MarkFunctionsDeleted(n *ast.Node)
}

// Rewriter injects polyfill libraries so that newer built-in symbols keep
// working on the configured output target. It also runs when polyfill
// isolation is enabled with injection off, only to keep the isolation
// helper alive through dead-code elimination.
type Rewriter struct {
	comp     Compiler
	catalog  *polyfill.Catalog
	strategy Strategy
	isolate  bool

	libs []string
	seen map[string]struct{}
}

// New builds the pass for one compilation.
func New(comp Compiler, catalog *polyfill.Catalog, strategy Strategy, isolate bool) *Rewriter {
	return &Rewriter{
		comp:     comp,
		catalog:  catalog,
		strategy: strategy,
		isolate:  isolate,
	}
}

// Process runs the pass over one program: externs is the compilation's
// synthetic-externs tree, root the program tree.
func (r *Rewriter) Process(externs, root *ast.Node) error {
	if r.isolate {
		r.declareIsolationExtern(externs)
	}

	if !r.strategy.Enabled() {
		// Probably this pass only ran because isolation is enabled while
		// injection is not.
		return nil
	}

	r.seen = nil
	r.libs = nil

	forced := false
	if v, ok := r.strategy.Forced(); ok {
		forced = true
		for _, p := range r.catalog.NewerThan(v) {
			// Entries without a library are pure language features
			// (Proxy, String.raw): nothing to inject.
			if p.Library != "" {
				r.addLibrary(p.Library)
			}
		}
	} else {
		polyfill.NewUsageFinder(r.catalog).Scan(root, r.visitUsage)
	}

	return r.injectAll(r.libs, forced)
}

// visitUsage applies the feature-coverage policy to one observed usage.
func (r *Rewriter) visitUsage(u polyfill.Usage) {
	p := u.Polyfill
	out := r.comp.OutputFeatureSet()

	if p.Kind == polyfill.KindStatic && !out.Contains(feature.Of(p.PolyfillVersion)) {
		// The output level cannot even express the hand-written shim.
		// Non-fatal: the library is still injected below, with a note that
		// its implementation may be malformed for this target.
		diag.ReportWarning(r.comp.Reporter(), diag.InjectInsufficientOutputVersion, u.Node.Span,
			fmt.Sprintf("built-in %q is not supported in output version %s", u.DisplayName, out)).
			Emit()
	}

	// The question we want to ask is "does the target platform already have
	// the symbol this polyfill provides". We approximate it by asking "does
	// the target support all features of the edition that introduced the
	// symbol". The catalog carries no per-symbol target data, so this stays
	// a documented heuristic rather than an exact probe.
	if !out.Contains(feature.Of(p.NativeVersion)) && p.Library != "" {
		r.addLibrary(p.Library)
	}
}

// addLibrary appends to the accumulator, collapsing duplicates while keeping
// first-seen order.
func (r *Rewriter) addLibrary(name string) {
	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	if _, dup := r.seen[name]; dup {
		return
	}
	r.seen[name] = struct{}{}
	r.libs = append(r.libs, name)
}

// injectAll materializes the accumulated libraries and prunes the freshly
// injected region.
func (r *Rewriter) injectAll(libraries []string, force bool) error {
	var last *ast.Node
	for _, lib := range libraries {
		n, err := r.comp.EnsureLibraryInjected(lib, force)
		if err != nil {
			return err
		}
		if n != nil {
			last = n
		}
	}
	if last == nil {
		return nil
	}

	parent := last.Parent()
	if err := r.pruneRedundant(parent, last.Next()); err != nil {
		return err
	}
	r.comp.ReportChangeToEnclosingScope(parent)
	return nil
}
