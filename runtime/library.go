// Package runtimelib holds the embedded runtime-support library definitions
// and materializes them into program trees. A library is a named bundle of
// polyfill registrations, injected whole and at most once per compilation.
package runtimelib

import (
	"errors"
	"fmt"
	"strings"

	"shimmer/internal/ast"
	"shimmer/internal/feature"
)

// ErrUnknownLibrary marks lookups of library ids absent from the registry.
var ErrUnknownLibrary = errors.New("unknown runtime library")

// Registration is one `$jscomp.polyfill(name, impl, native, polyfill)` call a
// library contributes.
type Registration struct {
	Name            string
	NativeVersion   feature.Version
	PolyfillVersion feature.Version
}

// Library is one injectable runtime-support bundle.
type Library struct {
	Name          string
	Registrations []Registration
}

// MaxNativeVersion returns the newest native version among the library's
// registrations. When the output already covers it, every registration is
// redundant and non-forced injection can skip the library entirely.
func (l *Library) MaxNativeVersion() feature.Version {
	max := feature.ES3
	for _, r := range l.Registrations {
		if r.NativeVersion.Newer(max) {
			max = r.NativeVersion
		}
	}
	return max
}

// Materialize builds the statements the library inserts into a program: one
// registration call per entry, in definition order. Implementations are
// placeholder function literals; authoring real shim bodies is outside this
// stage.
func (l *Library) Materialize() []*ast.Node {
	stmts := make([]*ast.Node, 0, len(l.Registrations))
	for _, r := range l.Registrations {
		stmts = append(stmts, ast.ExprStmt(ast.Call(
			ast.GetProp(ast.Name("$jscomp"), "polyfill"),
			ast.Str(r.Name),
			ast.Function(),
			ast.Str(r.NativeVersion.String()),
			ast.Str(r.PolyfillVersion.String()),
		)))
	}
	return stmts
}

// Registry maps library ids to definitions. Immutable after load.
type Registry struct {
	libs  map[string]*Library
	order []string
}

// ParseLibraries parses the library definition format:
//
//	lib <library-id>
//	polyfill <symbol> <nativeVersion> <polyfillVersion>
//
// Every polyfill line attaches to the preceding lib line.
func ParseLibraries(text string) (*Registry, error) {
	r := &Registry{libs: make(map[string]*Library)}
	var current *Library

	lineNo := 0
	for _, line := range strings.Split(text, "\n") {
		lineNo++
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "lib":
			if len(fields) != 2 {
				return nil, fmt.Errorf("library table line %d: want `lib <id>`", lineNo)
			}
			name := fields[1]
			if _, dup := r.libs[name]; dup {
				return nil, fmt.Errorf("library table line %d: duplicate library %q", lineNo, name)
			}
			current = &Library{Name: name}
			r.libs[name] = current
			r.order = append(r.order, name)
		case "polyfill":
			if current == nil {
				return nil, fmt.Errorf("library table line %d: polyfill before any lib", lineNo)
			}
			if len(fields) != 4 {
				return nil, fmt.Errorf("library table line %d: want `polyfill <symbol> <native> <polyfill>`", lineNo)
			}
			native, err := feature.ParseVersion(fields[2])
			if err != nil {
				return nil, fmt.Errorf("library table line %d: %w", lineNo, err)
			}
			polyVersion, err := feature.ParseVersion(fields[3])
			if err != nil {
				return nil, fmt.Errorf("library table line %d: %w", lineNo, err)
			}
			current.Registrations = append(current.Registrations, Registration{
				Name:            fields[1],
				NativeVersion:   native,
				PolyfillVersion: polyVersion,
			})
		default:
			return nil, fmt.Errorf("library table line %d: unknown directive %q", lineNo, fields[0])
		}
	}

	for _, name := range r.order {
		if len(r.libs[name].Registrations) == 0 {
			return nil, fmt.Errorf("library table: %q has no registrations", name)
		}
	}
	return r, nil
}

// Lookup resolves a library id.
func (r *Registry) Lookup(name string) (*Library, bool) {
	l, ok := r.libs[name]
	return l, ok
}

// Names returns the library ids in definition order. Read-only.
func (r *Registry) Names() []string {
	return r.order
}
