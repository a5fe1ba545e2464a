package runtimelib

import (
	_ "embed"
)

//go:embed libs.txt
var embeddedLibraries string

// EmbeddedTable returns the text of the built-in library definitions.
func EmbeddedTable() string {
	return embeddedLibraries
}

// Embedded parses the built-in library definitions.
func Embedded() (*Registry, error) {
	return ParseLibraries(embeddedLibraries)
}
