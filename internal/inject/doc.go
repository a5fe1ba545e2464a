// Package inject decides which runtime-support libraries a compilation must
// carry and keeps the injected output minimal for the configured target.
//
// The pass has three parts, run in order:
//
//   - the isolation guard, which declares a synthetic extern for the
//     polyfill lookup helper whenever isolation is enabled, independent of
//     the injection mode;
//   - the decision engine, which turns observed symbol usages (or a forced
//     minimum-version directive) into an ordered, de-duplicated library
//     list;
//   - the pruner, which deletes registrations in the freshly injected
//     region that the output target ships natively.
//
// Determinism matters throughout: usage-driven order is traversal order,
// forced order is catalog order, pruning order is sibling order. Identical
// inputs produce byte-identical injected output across runs.
package inject
