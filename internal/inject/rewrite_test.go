package inject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shimmer/internal/ast"
	"shimmer/internal/diag"
	"shimmer/internal/driver"
	"shimmer/internal/feature"
	"shimmer/internal/inject"
	"shimmer/internal/polyfill"
	runtimelib "shimmer/runtime"
)

type fixture struct {
	ctx     *driver.Context
	bag     *diag.Bag
	externs *ast.Node
	root    *ast.Node
}

func newFixture(t *testing.T, opts driver.Options, stmts ...*ast.Node) *fixture {
	t.Helper()
	libs, err := runtimelib.Embedded()
	require.NoError(t, err)

	f := &fixture{
		bag:     diag.NewBag(opts.DiagnosticsCap()),
		externs: ast.Script(),
		root:    ast.Script(stmts...),
	}
	reporter := diag.NewPolicyReporter(
		diag.NewDedupReporter(diag.BagReporter{Bag: f.bag}),
		opts.EnabledDiagnostics...,
	)
	f.ctx = driver.NewContext(opts, reporter, libs, f.externs, f.root)
	return f
}

func (f *fixture) process(t *testing.T, opts driver.Options) {
	t.Helper()
	cat, err := polyfill.Embedded()
	require.NoError(t, err)
	pass := inject.New(f.ctx, cat, opts.Strategy(), opts.IsolatePolyfills)
	require.NoError(t, pass.Process(f.externs, f.root))
}

// methodCall builds `recv.prop(arg)`.
func methodCall(recv, prop string) *ast.Node {
	return ast.ExprStmt(ast.Call(ast.GetProp(ast.Name(recv), prop), ast.Str("x")))
}

func registrationNames(root *ast.Node) []string {
	var names []string
	for stmt := root.FirstChild(); stmt != nil; stmt = stmt.Next() {
		if !stmt.IsExprCall() {
			continue
		}
		call := stmt.FirstChild()
		if callee, ok := ast.QualifiedName(call.FirstChild()); ok && callee == "$jscomp.polyfill" {
			names = append(names, call.ChildAt(1).Value)
		}
	}
	return names
}

func TestProcess_UsageDriven(t *testing.T) {
	opts := driver.Options{InjectPolyfills: true, OutputVersion: feature.ES5}
	f := newFixture(t, opts, methodCall("xs", "includes"))
	f.process(t, opts)

	assert.Equal(t, []string{"es6/string/includes", "es6/array/includes"}, f.ctx.InjectedLibraries())
	assert.Equal(t, []string{"String.prototype.includes", "Array.prototype.includes"}, registrationNames(f.root))
	assert.False(t, f.bag.HasWarnings())
}

func TestProcess_TargetCoversUsage(t *testing.T) {
	opts := driver.Options{InjectPolyfills: true, OutputVersion: feature.ES2018}
	f := newFixture(t, opts, methodCall("xs", "includes"))
	f.process(t, opts)

	assert.Empty(t, f.ctx.InjectedLibraries())
	assert.Equal(t, 1, f.root.ChildCount())
}

func TestProcess_RaisingTargetNeverAddsLibraries(t *testing.T) {
	stmts := func() []*ast.Node {
		return []*ast.Node{
			methodCall("xs", "includes"),
			ast.ExprStmt(ast.Call(ast.GetProp(ast.Name("Object"), "assign"))),
			ast.ExprStmt(ast.Name("Map")),
		}
	}

	prev := -1
	for _, v := range []feature.Version{feature.ES3, feature.ES5, feature.ES2015, feature.ES2016, feature.ES2021} {
		opts := driver.Options{InjectPolyfills: true, OutputVersion: v}
		f := newFixture(t, opts, stmts()...)
		f.process(t, opts)
		count := len(f.ctx.InjectedLibraries())
		if prev >= 0 {
			assert.LessOrEqual(t, count, prev, "library count grew when target rose to %s", v)
		}
		prev = count
	}
}

func TestProcess_InsufficientOutputVersionDiagnostic(t *testing.T) {
	// Map's shim itself needs es6; an es5 target cannot express it.
	use := ast.ExprStmt(ast.Name("Map"))

	t.Run("suppressed by default", func(t *testing.T) {
		opts := driver.Options{InjectPolyfills: true, OutputVersion: feature.ES5}
		f := newFixture(t, opts, use)
		f.process(t, opts)
		assert.False(t, f.bag.HasWarnings())
		// Injection still happens; the diagnostic is advisory.
		assert.Equal(t, []string{"es6/map"}, f.ctx.InjectedLibraries())
	})

	t.Run("enabled", func(t *testing.T) {
		opts := driver.Options{
			InjectPolyfills:    true,
			OutputVersion:      feature.ES5,
			EnabledDiagnostics: []diag.Code{diag.InjectInsufficientOutputVersion},
		}
		f := newFixture(t, opts, ast.ExprStmt(ast.Name("Map")))
		f.process(t, opts)
		require.True(t, f.bag.HasWarnings())
		assert.Equal(t, diag.InjectInsufficientOutputVersion, f.bag.Items()[0].Code)
		assert.Equal(t, []string{"es6/map"}, f.ctx.InjectedLibraries())
	})
}

func TestProcess_MethodUsageNeverDiagnosed(t *testing.T) {
	// matchAll's shim needs es6, but method matches are receiver-blind, so
	// no version complaint is raised for them.
	opts := driver.Options{
		InjectPolyfills:    true,
		OutputVersion:      feature.ES5,
		EnabledDiagnostics: []diag.Code{diag.InjectInsufficientOutputVersion},
	}
	f := newFixture(t, opts, methodCall("s", "matchAll"))
	f.process(t, opts)

	assert.False(t, f.bag.HasWarnings())
	assert.Equal(t, []string{"es_2020/string/matchall"}, f.ctx.InjectedLibraries())
}

func TestProcess_ForcedMode(t *testing.T) {
	force := feature.ES2020
	opts := driver.Options{OutputVersion: feature.ES5, ForceNewerThan: &force}

	// Forced mode does not look at the program at all.
	f := newFixture(t, opts)
	f.process(t, opts)

	assert.Equal(t, []string{"es_2021/promise/any", "es_2021/string/replaceall"}, f.ctx.InjectedLibraries())
	assert.Equal(t, []string{"AggregateError", "Promise.any", "String.prototype.replaceAll"}, registrationNames(f.root))
}

func TestProcess_ForcedModePrunesCoveredRegistrations(t *testing.T) {
	force := feature.ES2020
	opts := driver.Options{OutputVersion: feature.ES2020, ForceNewerThan: &force}

	f := newFixture(t, opts)
	f.process(t, opts)

	// AggregateError became native at es_2020, so its bundled registration
	// is dropped again right after forced injection.
	assert.Equal(t, []string{"Promise.any", "String.prototype.replaceAll"}, registrationNames(f.root))
	assert.Equal(t, 1, f.ctx.FunctionsDeleted())
}

func TestProcess_PruneStopsAtInjectedRegion(t *testing.T) {
	// A user-written registration sits after the injected region. It is
	// redundant for this target, but the pruner must not touch it.
	userReg := ast.ExprStmt(ast.Call(
		ast.GetProp(ast.Name("$jscomp"), "polyfill"),
		ast.Str("Array.from"),
		ast.Function(),
		ast.Str("es6"),
		ast.Str("es3"),
	))
	opts := driver.Options{InjectPolyfills: true, OutputVersion: feature.ES2018}
	f := newFixture(t, opts, userReg, methodCall("xs", "flat"))
	f.process(t, opts)

	require.Equal(t, []string{"es_2019/array/flat"}, f.ctx.InjectedLibraries())
	assert.Equal(t, []string{"Array.prototype.flat", "Array.from"}, registrationNames(f.root))
	assert.Zero(t, f.ctx.FunctionsDeleted())
}

func TestProcess_Idempotent(t *testing.T) {
	opts := driver.Options{InjectPolyfills: true, OutputVersion: feature.ES5}
	f := newFixture(t, opts, methodCall("xs", "includes"))

	f.process(t, opts)
	count := f.root.ChildCount()
	libs := append([]string(nil), f.ctx.InjectedLibraries()...)

	f.process(t, opts)
	assert.Equal(t, count, f.root.ChildCount(), "second run changed the tree")
	assert.Equal(t, libs, f.ctx.InjectedLibraries())
}

func TestProcess_IsolationGuard(t *testing.T) {
	opts := driver.Options{IsolatePolyfills: true, OutputVersion: feature.ES5}
	f := newFixture(t, opts, methodCall("xs", "includes"))
	f.process(t, opts)

	// Injection is off; only the isolation extern appears.
	require.Equal(t, 1, f.externs.ChildCount())
	decl := f.externs.FirstChild()
	assert.Equal(t, ast.KindVar, decl.Kind)
	assert.Equal(t, "$jscomp$lookupPolyfilledValue", decl.Value)
	assert.Equal(t, 1, f.root.ChildCount())
	assert.Empty(t, f.ctx.InjectedLibraries())
}

func TestProcess_IsolationGuardPrecedesInjection(t *testing.T) {
	opts := driver.Options{InjectPolyfills: true, IsolatePolyfills: true, OutputVersion: feature.ES5}
	f := newFixture(t, opts, ast.ExprStmt(ast.Name("Map")))
	f.process(t, opts)

	require.Equal(t, 1, f.externs.ChildCount())
	assert.Equal(t, []string{"es6/map"}, f.ctx.InjectedLibraries())

	// The extern's scope change is recorded before any library's.
	scopes := f.ctx.ChangedScopes()
	require.NotEmpty(t, scopes)
	assert.Same(t, f.externs, scopes[0])
}

func TestProcess_Disabled(t *testing.T) {
	opts := driver.Options{OutputVersion: feature.ES5}
	f := newFixture(t, opts, methodCall("xs", "includes"))
	f.process(t, opts)

	assert.Equal(t, 1, f.root.ChildCount())
	assert.Zero(t, f.externs.ChildCount())
	assert.Empty(t, f.ctx.InjectedLibraries())
}
