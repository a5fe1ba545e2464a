package driver

import (
	"fmt"

	"shimmer/internal/ast"
	"shimmer/internal/diag"
	"shimmer/internal/feature"
	runtimelib "shimmer/runtime"
)

// Context owns the shared mutable state of one compilation: the program and
// externs trees, the diagnostic reporter, and the bookkeeping other phases
// read afterwards. The pipeline driver creates one Context per compilation
// and hands it to each pass by reference; a pass is the exclusive mutator of
// the trees while it runs.
type Context struct {
	opts     Options
	reporter diag.Reporter
	libs     *runtimelib.Registry
	root     *ast.Node
	externs  *ast.Node

	injected      map[string]*ast.Node
	injectedOrder []string
	lastInjected  *ast.Node
	changed       []*ast.Node
	changedSeen   map[*ast.Node]struct{}
	deletedFuncs  int
}

// NewContext wires a compilation context. externs is the synthetic-externs
// tree, root the program tree.
func NewContext(opts Options, reporter diag.Reporter, libs *runtimelib.Registry, externs, root *ast.Node) *Context {
	return &Context{
		opts:        opts,
		reporter:    reporter,
		libs:        libs,
		root:        root,
		externs:     externs,
		injected:    make(map[string]*ast.Node),
		changedSeen: make(map[*ast.Node]struct{}),
	}
}

func (c *Context) Options() Options        { return c.opts }
func (c *Context) Root() *ast.Node         { return c.root }
func (c *Context) Externs() *ast.Node      { return c.externs }
func (c *Context) Reporter() diag.Reporter { return c.reporter }

// OutputFeatureSet returns the target's capability set.
func (c *Context) OutputFeatureSet() feature.Set {
	return c.opts.OutputFeatureSet()
}

// EnsureLibraryInjected materializes the named library at most once per
// compilation, keeping all injected statements in one contiguous run at the
// top of the program. It returns the library's last inserted statement; a
// repeated call returns the prior insertion point. Without force, a library
// whose registrations the output target fully covers is skipped.
//
// An empty name is a programming-contract failure, not input.
func (c *Context) EnsureLibraryInjected(name string, force bool) (*ast.Node, error) {
	if name == "" {
		panic("driver: EnsureLibraryInjected with empty library name")
	}
	if n, done := c.injected[name]; done {
		return n, nil
	}
	lib, ok := c.libs.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", runtimelib.ErrUnknownLibrary, name)
	}
	if !force && c.OutputFeatureSet().Contains(feature.Of(lib.MaxNativeVersion())) {
		c.injected[name] = nil
		return nil, nil
	}

	for _, stmt := range lib.Materialize() {
		stmt.SrcRefTree(c.root)
		c.root.InsertChildAfter(stmt, c.lastInjected)
		c.lastInjected = stmt
	}
	c.injected[name] = c.lastInjected
	c.injectedOrder = append(c.injectedOrder, name)
	c.ReportChangeToEnclosingScope(c.lastInjected)
	return c.lastInjected, nil
}

// InjectedLibraries returns the ids materialized so far, in insertion order.
func (c *Context) InjectedLibraries() []string {
	return c.injectedOrder
}

// ReportChangeToEnclosingScope records that the scope containing n was
// structurally modified, so cached analyses over it invalidate. Repeated
// reports of one scope collapse.
func (c *Context) ReportChangeToEnclosingScope(n *ast.Node) {
	scope := n
	for scope != nil && scope.Kind != ast.KindScript && scope.Kind != ast.KindFunction {
		scope = scope.Parent()
	}
	if scope == nil {
		// n was already detached; charge the change to the program root.
		scope = c.root
	}
	if _, dup := c.changedSeen[scope]; dup {
		return
	}
	c.changedSeen[scope] = struct{}{}
	c.changed = append(c.changed, scope)
}

// ChangedScopes returns the scopes modified during this compilation.
func (c *Context) ChangedScopes() []*ast.Node {
	return c.changed
}

// MarkFunctionsDeleted charges every function inside a removed subtree to
// the dead-code-elimination accounting.
func (c *Context) MarkFunctionsDeleted(n *ast.Node) {
	c.deletedFuncs += ast.CountFunctions(n)
}

// FunctionsDeleted returns the running deletion count.
func (c *Context) FunctionsDeleted() int {
	return c.deletedFuncs
}
