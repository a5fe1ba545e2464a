package polyfill

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"shimmer/internal/feature"
)

// Kind classifies how a polyfilled symbol is accessed.
type Kind uint8

const (
	// KindStatic is a global or namespaced static symbol (Promise, Object.assign).
	KindStatic Kind = iota
	// KindMethod is a prototype method matched by property name (Array.prototype.includes).
	KindMethod
	// KindOther covers symbols that are neither (globalThis).
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "STATIC"
	case KindMethod:
		return "METHOD"
	case KindOther:
		return "OTHER"
	}
	return "UNKNOWN"
}

// Polyfill describes one catalogued built-in symbol. Immutable after load.
//
// NativeVersion is the edition that ships the symbol natively;
// PolyfillVersion is the minimum edition the shim itself needs to run.
// An empty Library marks a pure language feature with nothing to inject.
type Polyfill struct {
	Name            string
	Kind            Kind
	NativeVersion   feature.Version
	PolyfillVersion feature.Version
	Library         string
}

// Catalog is the immutable symbol table, kept in table order: ascending by
// (NativeVersion, Name) so version-driven selection is stable by construction.
type Catalog struct {
	entries []Polyfill
	static  map[string]*Polyfill   // qualified name -> entry, non-method kinds
	methods map[string][]*Polyfill // property name -> method entries
}

// ParseTable parses the polyfill table format: one entry per line,
//
//	<name> <nativeVersion> <polyfillVersion> [<library>]
//
// with '#' comments and blank lines ignored. Lines must already be sorted by
// (nativeVersion, name); an unsorted table is a build-input defect, not a
// user error.
func ParseTable(text string) (*Catalog, error) {
	c := &Catalog{
		static:  make(map[string]*Polyfill),
		methods: make(map[string][]*Polyfill),
	}

	lineNo := 0
	for _, line := range strings.Split(text, "\n") {
		lineNo++
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 || len(fields) > 4 {
			return nil, fmt.Errorf("polyfill table line %d: want 3 or 4 fields, got %d", lineNo, len(fields))
		}

		native, err := feature.ParseVersion(fields[1])
		if err != nil {
			return nil, fmt.Errorf("polyfill table line %d: native version: %w", lineNo, err)
		}
		polyVersion, err := feature.ParseVersion(fields[2])
		if err != nil {
			return nil, fmt.Errorf("polyfill table line %d: polyfill version: %w", lineNo, err)
		}

		entry := Polyfill{
			Name:            fields[0],
			Kind:            kindOf(fields[0]),
			NativeVersion:   native,
			PolyfillVersion: polyVersion,
		}
		if len(fields) == 4 {
			entry.Library = fields[3]
		}

		if prev := len(c.entries) - 1; prev >= 0 {
			p := &c.entries[prev]
			if native < p.NativeVersion || (native == p.NativeVersion && entry.Name <= p.Name) {
				return nil, fmt.Errorf("polyfill table line %d: %q out of (version, name) order after %q", lineNo, entry.Name, p.Name)
			}
		}
		c.entries = append(c.entries, entry)
	}

	// Index after the slice stops growing so the pointers stay valid.
	for i := range c.entries {
		e := &c.entries[i]
		if e.Kind == KindMethod {
			c.methods[methodProp(e.Name)] = append(c.methods[methodProp(e.Name)], e)
		} else {
			if _, dup := c.static[e.Name]; dup {
				return nil, fmt.Errorf("polyfill table: duplicate entry %q", e.Name)
			}
			c.static[e.Name] = e
		}
	}
	return c, nil
}

func methodProp(name string) string {
	return name[strings.LastIndex(name, ".")+1:]
}

func kindOf(name string) Kind {
	if strings.Contains(name, ".prototype.") {
		return KindMethod
	}
	first, _ := utf8.DecodeRuneInString(name)
	if strings.Contains(name, ".") || unicode.IsUpper(first) {
		return KindStatic
	}
	return KindOther
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns the catalog in table order. Read-only.
func (c *Catalog) Entries() []Polyfill {
	return c.entries
}

// Lookup resolves a qualified symbol name to its non-method entry.
func (c *Catalog) Lookup(qualified string) (*Polyfill, bool) {
	p, ok := c.static[qualified]
	return p, ok
}

// Methods returns every method entry registered under a property name.
// `.includes` matches both String.prototype.includes and
// Array.prototype.includes; the caller sees both.
func (c *Catalog) Methods(prop string) []*Polyfill {
	return c.methods[prop]
}

// NewerThan selects entries whose native version is strictly newer than v,
// in catalog order.
func (c *Catalog) NewerThan(v feature.Version) []*Polyfill {
	var out []*Polyfill
	for i := range c.entries {
		if c.entries[i].NativeVersion.Newer(v) {
			out = append(out, &c.entries[i])
		}
	}
	return out
}
