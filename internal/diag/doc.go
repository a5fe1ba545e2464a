// Package diag defines the diagnostic model shared by all pipeline phases.
//
// Diagnostic is the central record: severity, a stable numeric code, a
// message, a primary span and optional notes. Phases emit through a
// Reporter so that storage and rendering stay decoupled; BagReporter
// aggregates into a Bag, which supports sorting and deduplication for
// deterministic output.
//
// Some codes are registered default-off (see DefaultOff): they describe
// conditions the compiler tolerates, such as injecting a polyfill whose
// implementation needs a newer language level than the requested output.
// PolicyReporter enforces that policy; DedupReporter collapses repeats
// that arise when one symbol is used many times in a program.
package diag
