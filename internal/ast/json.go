package ast

import (
	"encoding/json"
	"fmt"
	"io"

	"shimmer/internal/source"
)

// The interchange format: programs arrive as JSON trees produced by an
// external front end, and leave the same way. Spans are byte offsets into
// the original source file the front end parsed.
//
//	{"kind":"call","children":[{"kind":"name","value":"f"}]}

type jsonNode struct {
	Kind     string      `json:"kind"`
	Value    string      `json:"value,omitempty"`
	Start    uint32      `json:"start,omitempty"`
	End      uint32      `json:"end,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = Kind(k) //nolint:gosec // index bounded by kindNames
	}
	return m
}()

// Decode reads one JSON tree and builds the node graph. File stamps every
// span with the owning file id.
func Decode(r io.Reader, file source.FileID) (*Node, error) {
	dec := json.NewDecoder(r)
	var root jsonNode
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	n, err := fromJSON(&root, file)
	if err != nil {
		return nil, err
	}
	if n.Kind != KindScript {
		return nil, fmt.Errorf("decode tree: root must be a script, got %s", n.Kind)
	}
	return n, nil
}

func fromJSON(j *jsonNode, file source.FileID) (*Node, error) {
	kind, ok := kindByName[j.Kind]
	if !ok {
		return nil, fmt.Errorf("decode tree: unknown node kind %q", j.Kind)
	}
	n := New(kind)
	n.Value = j.Value
	n.Span = source.Span{File: file, Start: j.Start, End: j.End}
	for _, jc := range j.Children {
		c, err := fromJSON(jc, file)
		if err != nil {
			return nil, err
		}
		n.AddChildToBack(c)
	}
	return n, nil
}

// Encode writes the tree back out in the interchange format.
func Encode(w io.Writer, n *Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(n))
}

func toJSON(n *Node) *jsonNode {
	j := &jsonNode{
		Kind:  n.Kind.String(),
		Value: n.Value,
		Start: n.Span.Start,
		End:   n.Span.End,
	}
	for c := n.first; c != nil; c = c.next {
		j.Children = append(j.Children, toJSON(c))
	}
	return j
}
