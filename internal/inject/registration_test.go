package inject

import (
	"testing"

	"shimmer/internal/ast"
	"shimmer/internal/feature"
)

func regStmt(args ...*ast.Node) *ast.Node {
	return ast.ExprStmt(ast.Call(
		ast.GetProp(ast.Name("$jscomp"), "polyfill"),
		args...,
	))
}

func TestMatchRegistration(t *testing.T) {
	stmt := regStmt(ast.Str("Array.from"), ast.Function(), ast.Str("es6"), ast.Str("es3"))

	reg, err := MatchRegistration(stmt)
	if err != nil {
		t.Fatalf("MatchRegistration: %v", err)
	}
	if reg == nil {
		t.Fatal("registration not recognized")
	}
	if reg.Name != "Array.from" {
		t.Errorf("Name = %q", reg.Name)
	}
	if !reg.Native.Contains(feature.Of(feature.ES2015)) || reg.Native.Contains(feature.Of(feature.ES2016)) {
		t.Errorf("Native = %s, want es6", reg.Native)
	}
	if reg.Node != stmt {
		t.Error("Node should be the statement itself")
	}
}

func TestMatchRegistration_NotARegistration(t *testing.T) {
	for name, stmt := range map[string]*ast.Node{
		"plain var":       ast.Var("x"),
		"other call":      ast.ExprStmt(ast.Call(ast.Name("f"))),
		"other method":    ast.ExprStmt(ast.Call(ast.GetProp(ast.Name("$jscomp"), "patch"), ast.Str("x"))),
		"computed":        ast.ExprStmt(ast.Call(ast.GetProp(ast.Call(ast.Name("ns")), "polyfill"))),
		"bare name":       ast.ExprStmt(ast.Name("$jscomp")),
		"calleeless call": ast.ExprStmt(ast.New(ast.KindCall)),
		"nested script":   ast.Script(),
	} {
		reg, err := MatchRegistration(stmt)
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
		if reg != nil {
			t.Errorf("%s: matched as registration", name)
		}
	}
}

func TestMatchRegistration_Malformed(t *testing.T) {
	for name, stmt := range map[string]*ast.Node{
		"missing args": regStmt(ast.Str("Map"), ast.Function(), ast.Str("es6")),
		"extra args":   regStmt(ast.Str("Map"), ast.Function(), ast.Str("es6"), ast.Str("es6"), ast.Str("x")),
		"name not a string": regStmt(
			ast.Name("Map"), ast.Function(), ast.Str("es6"), ast.Str("es6")),
		"native tag not a string": regStmt(
			ast.Str("Map"), ast.Function(), ast.Number("6"), ast.Str("es6")),
		"unknown version tag": regStmt(
			ast.Str("Map"), ast.Function(), ast.Str("es2077"), ast.Str("es6")),
	} {
		if _, err := MatchRegistration(stmt); err == nil {
			t.Errorf("%s: want hard error", name)
		}
	}
}
