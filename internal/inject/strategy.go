package inject

import "shimmer/internal/feature"

type strategyKind uint8

const (
	strategyOff strategyKind = iota
	strategyUsage
	strategyForced
)

// Strategy selects how the pass decides which libraries to inject. The two
// active modes are mutually exclusive by construction; a pair of booleans
// would admit nonsense combinations.
type Strategy struct {
	kind      strategyKind
	newerThan feature.Version
}

// Disabled performs no injection; the pass may still run for isolation.
func Disabled() Strategy {
	return Strategy{kind: strategyOff}
}

// UsageDriven injects the libraries for symbols actually used by the program.
func UsageDriven() Strategy {
	return Strategy{kind: strategyUsage}
}

// ForceNewerThan injects every catalogued library whose symbol became native
// strictly after v, regardless of usages. Callers use it to guarantee a
// library's presence when usage scanning cannot be trusted, e.g. against
// later dead-code elimination or an environment that lies about its version.
func ForceNewerThan(v feature.Version) Strategy {
	return Strategy{kind: strategyForced, newerThan: v}
}

// Enabled reports whether any injection happens.
func (s Strategy) Enabled() bool {
	return s.kind != strategyOff
}

// Forced returns the minimum-version directive when the strategy is forced.
func (s Strategy) Forced() (feature.Version, bool) {
	return s.newerThan, s.kind == strategyForced
}
