package polyfill

import (
	"strings"
	"testing"

	"shimmer/internal/feature"
)

const testTable = `
# comment
Object.assign es6 es3 es6/object/assign
Promise es6 es3 es6/promise/promise
Proxy es6 es6
Array.prototype.includes es7 es3 es6/array/includes
globalThis es_2020 es3 es_2020/globalthis
`

func TestParseTable(t *testing.T) {
	c, err := ParseTable(testTable)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Len() != 5 {
		t.Fatalf("len = %d, want 5", c.Len())
	}

	p, ok := c.Lookup("Promise")
	if !ok {
		t.Fatal("Promise not found")
	}
	if p.Kind != KindStatic || p.NativeVersion != feature.ES2015 || p.Library != "es6/promise/promise" {
		t.Errorf("Promise = %+v", p)
	}

	proxy, ok := c.Lookup("Proxy")
	if !ok {
		t.Fatal("Proxy not found")
	}
	if proxy.Library != "" {
		t.Errorf("Proxy library = %q, want empty (language feature)", proxy.Library)
	}

	if ms := c.Methods("includes"); len(ms) != 1 || ms[0].Kind != KindMethod {
		t.Errorf("Methods(includes) = %v", ms)
	}
}

func TestParseTable_Kinds(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"Promise", KindStatic},
		{"Object.assign", KindStatic},
		{"Array.prototype.includes", KindMethod},
		{"globalThis", KindOther},
		// multi-byte leading rune: case must be read off the rune, not
		// the first byte
		{"Ɔmega", KindStatic},
		{"ɔmega", KindOther},
	}
	for _, tt := range tests {
		if got := kindOf(tt.name); got != tt.want {
			t.Errorf("kindOf(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseTable_Errors(t *testing.T) {
	tests := []struct {
		name  string
		table string
		want  string
	}{
		{"bad field count", "Promise es6\n", "3 or 4 fields"},
		{"bad native tag", "Promise es4 es3 lib\n", "unknown language version tag"},
		{"bad polyfill tag", "Promise es6 nope lib\n", "unknown language version tag"},
		{"unsorted versions", "Promise es7 es3 a\nMap es6 es6 b\n", "out of (version, name) order"},
		{"unsorted names", "Set es6 es6 a\nMap es6 es6 b\n", "out of (version, name) order"},
		{"duplicate", "Map es6 es6 a\nMap es6 es6 a\n", "out of (version, name) order"},
	}
	for _, tt := range tests {
		_, err := ParseTable(tt.table)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %v, want substring %q", tt.name, err, tt.want)
		}
	}
}

func TestNewerThan(t *testing.T) {
	c, err := ParseTable(testTable)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got := c.NewerThan(feature.ES2015)
	var names []string
	for _, p := range got {
		names = append(names, p.Name)
	}
	want := []string{"Array.prototype.includes", "globalThis"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	// strictness: es6 entries excluded for V=es6, included for V=es5
	if n := len(c.NewerThan(feature.ES5)); n != 5 {
		t.Errorf("NewerThan(es5) = %d entries, want 5", n)
	}
}

func TestEmbeddedTable(t *testing.T) {
	c, err := Embedded()
	if err != nil {
		t.Fatalf("embedded table must parse: %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("embedded table is empty")
	}

	// Canonical entry, present since the first table revision.
	p, ok := c.Lookup("Promise")
	if !ok || p.NativeVersion != feature.ES2015 {
		t.Errorf("Promise = %+v, ok=%v", p, ok)
	}
	includes := c.Methods("includes")
	var foundArray bool
	for _, m := range includes {
		if m.Name == "Array.prototype.includes" && m.NativeVersion == feature.ES2016 {
			foundArray = true
		}
	}
	if !foundArray {
		t.Error("Array.prototype.includes (es7) missing from embedded table")
	}
}
