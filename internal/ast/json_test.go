package ast

import (
	"bytes"
	"strings"
	"testing"
)

const sampleProgram = `{
  "kind": "script",
  "children": [
    {
      "kind": "expr_stmt",
      "children": [
        {
          "kind": "call",
          "start": 0, "end": 24,
          "children": [
            {
              "kind": "get_prop", "value": "includes",
              "children": [{"kind": "name", "value": "xs", "start": 0, "end": 2}]
            },
            {"kind": "number", "value": "3"}
          ]
        }
      ]
    }
  ]
}`

func TestDecode(t *testing.T) {
	root, err := Decode(strings.NewReader(sampleProgram), 7)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if root.Kind != KindScript || root.ChildCount() != 1 {
		t.Fatalf("root = %s with %d children", root.Kind, root.ChildCount())
	}

	call := root.FirstChild().FirstChild()
	if call.Kind != KindCall {
		t.Fatalf("expected call, got %s", call.Kind)
	}
	if call.Span.File != 7 || call.Span.End != 24 {
		t.Errorf("span = %v", call.Span)
	}
	callee := call.FirstChild()
	if callee.Kind != KindGetProp || callee.Value != "includes" {
		t.Errorf("callee = %s %q", callee.Kind, callee.Value)
	}
}

func TestDecode_UnknownKind(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"kind":"script","children":[{"kind":"with"}]}`), 0)
	if err == nil || !strings.Contains(err.Error(), "unknown node kind") {
		t.Errorf("err = %v", err)
	}
}

func TestDecode_NonScriptRoot(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"kind":"name","value":"x"}`), 0)
	if err == nil || !strings.Contains(err.Error(), "root must be a script") {
		t.Errorf("err = %v", err)
	}
}

func TestEncodeDecode_PreservesShape(t *testing.T) {
	root, err := Decode(strings.NewReader(sampleProgram), 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, root); err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := Decode(&buf, 0)
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if again.ChildCount() != root.ChildCount() {
		t.Errorf("shape changed: %d vs %d statements", again.ChildCount(), root.ChildCount())
	}
	if again.FirstChild().FirstChild().Kind != KindCall {
		t.Error("call statement lost")
	}
}
