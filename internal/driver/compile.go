package driver

import (
	"bytes"
	"errors"
	"fmt"

	"shimmer/internal/ast"
	"shimmer/internal/diag"
	"shimmer/internal/inject"
	"shimmer/internal/polyfill"
	"shimmer/internal/source"
	runtimelib "shimmer/runtime"
)

// Result is the outcome of compiling one file. Bag carries the file's
// diagnostics even when the compilation failed early; Root and Externs are
// nil when decoding never produced a tree.
type Result struct {
	Path    string
	FileID  source.FileID
	Bag     *diag.Bag
	Root    *ast.Node
	Externs *ast.Node
	// Libraries lists injected runtime libraries in insertion order.
	Libraries []string
	// FunctionsDeleted counts functions pruned out of injected code.
	FunctionsDeleted int
}

// CompileFile loads one interchange file, runs the injection pass over it and
// returns the transformed tree plus diagnostics. Input problems (missing
// file, malformed tree) become diagnostics in the Result, not a Go error; a
// non-nil error means the compilation itself is broken and the pipeline
// should stop.
func CompileFile(files *source.FileSet, path string, catalog *polyfill.Catalog, libs *runtimelib.Registry, opts Options) (*Result, error) {
	res := &Result{
		Path: path,
		Bag:  diag.NewBag(opts.DiagnosticsCap()),
	}

	id, err := files.Load(path)
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{},
			fmt.Sprintf("load %s: %v", path, err)))
		return res, nil
	}
	res.FileID = id

	root, err := ast.Decode(bytes.NewReader(files.Get(id).Content), id)
	if err != nil {
		res.Bag.Add(diag.NewError(diag.ASTDecodeError, source.Span{File: id},
			fmt.Sprintf("%s: %v", path, err)))
		return res, nil
	}

	if err := CompileTree(res, root, catalog, libs, opts); err != nil {
		return res, err
	}
	res.Bag.Sort()
	return res, nil
}

// CompileTree runs the injection pass over an already decoded tree, filling
// in the transform side of res. Split out so tests and in-memory callers can
// skip the disk round trip.
func CompileTree(res *Result, root *ast.Node, catalog *polyfill.Catalog, libs *runtimelib.Registry, opts Options) error {
	externs := ast.Script()
	res.Root = root
	res.Externs = externs

	reporter := diag.NewPolicyReporter(
		diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag}),
		opts.EnabledDiagnostics...,
	)
	ctx := NewContext(opts, reporter, libs, externs, root)

	pass := inject.New(ctx, catalog, opts.Strategy(), opts.IsolatePolyfills)
	if err := pass.Process(externs, root); err != nil {
		code := diag.InjectMalformedRegistration
		if errors.Is(err, runtimelib.ErrUnknownLibrary) {
			code = diag.InjectUnknownLibrary
		}
		res.Bag.Add(diag.NewError(code, source.Span{File: res.FileID},
			fmt.Sprintf("%s: %v", res.Path, err)))
		return err
	}

	res.Libraries = ctx.InjectedLibraries()
	res.FunctionsDeleted = ctx.FunctionsDeleted()
	return nil
}
