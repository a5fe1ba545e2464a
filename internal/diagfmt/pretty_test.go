package diagfmt

import (
	"strings"
	"testing"

	"shimmer/internal/diag"
	"shimmer/internal/source"
)

func testBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("src/app.json", []byte("line one\nline two\nline three\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.ASTDecodeError, source.Span{File: id, Start: 9, End: 13},
		"bad node"))
	bag.Add(diag.New(diag.SevWarning, diag.InjectInsufficientOutputVersion,
		source.Span{File: id, Start: 0, End: 4}, "too old").
		WithNote(source.Span{File: id, Start: 18, End: 22}, "declared here"))
	bag.Sort()
	return bag, fs
}

func TestPretty(t *testing.T) {
	bag, fs := testBag(t)
	var b strings.Builder
	Pretty(&b, bag, fs, PrettyOpts{ShowNotes: true})

	out := b.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d:\n%s", len(lines), out)
	}
	// Sorted by span: the warning at offset 0 first.
	if want := "src/app.json:1:1: WARNING SHIM3001: too old"; lines[0] != want {
		t.Errorf("line 0 = %q, want %q", lines[0], want)
	}
	if want := "  note: src/app.json:3:1: declared here"; lines[1] != want {
		t.Errorf("line 1 = %q, want %q", lines[1], want)
	}
	if want := "src/app.json:2:1: ERROR SHIM1003: bad node"; lines[2] != want {
		t.Errorf("line 2 = %q, want %q", lines[2], want)
	}
}

func TestPretty_Basename(t *testing.T) {
	bag, fs := testBag(t)
	var b strings.Builder
	Pretty(&b, bag, fs, PrettyOpts{PathMode: PathModeBasename})

	if strings.Contains(b.String(), "src/") {
		t.Errorf("basename mode leaked directory:\n%s", b.String())
	}
	if strings.Contains(b.String(), "note:") {
		t.Error("notes shown without ShowNotes")
	}
}

func TestJSON(t *testing.T) {
	bag, fs := testBag(t)
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true})

	if out.Count != 2 {
		t.Fatalf("Count = %d, want 2", out.Count)
	}
	first := out.Diagnostics[0]
	if first.Severity != "WARNING" || first.Code != "SHIM3001" {
		t.Errorf("first = %s %s", first.Severity, first.Code)
	}
	if first.Location.StartLine != 1 || first.Location.StartCol != 1 {
		t.Errorf("first location = %+v", first.Location)
	}
	if len(first.Notes) != 1 || first.Notes[0].Location.StartLine != 3 {
		t.Errorf("first notes = %+v", first.Notes)
	}
}

func TestJSON_Truncation(t *testing.T) {
	bag, fs := testBag(t)
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Errorf("Max=1 kept %d diagnostics", len(out.Diagnostics))
	}
	if out.Diagnostics[0].Location.StartLine != 0 {
		t.Error("positions included without IncludePositions")
	}
}
