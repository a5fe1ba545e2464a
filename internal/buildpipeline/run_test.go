package buildpipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"shimmer/internal/ast"
	"shimmer/internal/diag"
	"shimmer/internal/driver"
	"shimmer/internal/feature"
	"shimmer/internal/polyfill"
	runtimelib "shimmer/runtime"
)

const assignProgram = `{
  "kind": "script",
  "children": [
    {"kind": "expr_stmt", "children": [
      {"kind": "call", "children": [
        {"kind": "get_prop", "value": "assign", "children": [
          {"kind": "name", "value": "Object"}
        ]},
        {"kind": "name", "value": "target"}
      ]}
    ]}
  ]
}`

const plainProgram = `{
  "kind": "script",
  "children": [
    {"kind": "expr_stmt", "children": [
      {"kind": "call", "children": [{"kind": "name", "value": "main"}]}
    ]}
  ]
}`

func testRequest(t *testing.T, dir string) *Request {
	t.Helper()
	cat, err := polyfill.Embedded()
	if err != nil {
		t.Fatalf("embedded catalog: %v", err)
	}
	libs, err := runtimelib.Embedded()
	if err != nil {
		t.Fatalf("embedded libraries: %v", err)
	}
	return &Request{
		Dir:       dir,
		Catalog:   cat,
		Libraries: libs,
		Options:   driver.Options{InjectPolyfills: true, OutputVersion: feature.ES5},
	}
}

func writeInput(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRun_Directory(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "b_plain.json", plainProgram)
	writeInput(t, dir, "a_assign.json", assignProgram)

	req := testRequest(t, dir)
	req.Write = true

	res, err := Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics")
	}
	if len(res.Files) != 2 {
		t.Fatalf("want 2 files, got %d", len(res.Files))
	}

	// Sorted processing order.
	if filepath.Base(res.Files[0].Path) != "a_assign.json" {
		t.Errorf("first file = %s, want a_assign.json", res.Files[0].Path)
	}

	assign := res.Files[0]
	if len(assign.Libraries) != 1 || assign.Libraries[0] != "es6/object/assign" {
		t.Errorf("Libraries = %v", assign.Libraries)
	}
	plain := res.Files[1]
	if len(plain.Libraries) != 0 {
		t.Errorf("plain file got libraries %v", plain.Libraries)
	}

	// Emitted tree round-trips and keeps the injected registration.
	out, err := os.Open(assign.OutPath)
	if err != nil {
		t.Fatalf("open emitted tree: %v", err)
	}
	defer out.Close()
	root, err := ast.Decode(out, assign.FileID)
	if err != nil {
		t.Fatalf("decode emitted tree: %v", err)
	}
	if got := root.ChildCount(); got != 2 {
		t.Errorf("emitted tree has %d statements, want 2", got)
	}

	if !res.Timings.Has(StageLoad) || !res.Timings.Has(StageInject) || !res.Timings.Has(StageEmit) {
		t.Error("missing stage timings")
	}
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	req := testRequest(t, "")
	req.Paths = []string{filepath.Join(dir, "absent.json")}

	res, err := Run(context.Background(), req)
	if err != nil {
		t.Fatalf("input problems must not fail the run: %v", err)
	}
	if !res.HasErrors() {
		t.Fatal("want a load diagnostic")
	}
	if got := res.Files[0].Bag.Items()[0].Code; got != diag.IOLoadFileError {
		t.Errorf("code = %s, want %s", got, diag.IOLoadFileError)
	}
}

func TestRun_ProgressEvents(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "main.json", plainProgram)

	ch := make(chan Event, 64)
	req := testRequest(t, dir)
	req.Progress = ChannelSink{Ch: ch}

	if _, err := Run(context.Background(), req); err != nil {
		t.Fatalf("Run: %v", err)
	}
	close(ch)

	var sawQueued, sawInjectDone bool
	for evt := range ch {
		if evt.Stage == StageLoad && evt.Status == StatusQueued {
			sawQueued = true
		}
		if evt.Stage == StageInject && evt.Status == StatusDone {
			sawInjectDone = true
		}
	}
	if !sawQueued || !sawInjectDone {
		t.Errorf("missing progress events: queued=%v injectDone=%v", sawQueued, sawInjectDone)
	}
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "main.json", plainProgram)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, testRequest(t, dir)); err == nil {
		t.Fatal("want cancellation error")
	}
}

func TestTimings(t *testing.T) {
	var tm Timings
	tm.Set(StageLoad, 10)
	tm.Set(StageInject, 20)
	if got := tm.Sum(StageLoad, StageInject, StageEmit); got != 30 {
		t.Errorf("Sum = %d, want 30", got)
	}
	if tm.Has(StageEmit) {
		t.Error("StageEmit should be unset")
	}
	if got := tm.Duration(StageInject); got != 20 {
		t.Errorf("Duration = %d, want 20", got)
	}
}
