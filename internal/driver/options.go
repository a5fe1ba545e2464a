package driver

import (
	"shimmer/internal/diag"
	"shimmer/internal/feature"
	"shimmer/internal/inject"
)

// Options is the per-compilation configuration bundle.
type Options struct {
	// InjectPolyfills enables usage-driven injection.
	InjectPolyfills bool
	// IsolatePolyfills keeps the isolation lookup helper alive for the
	// later isolation phase.
	IsolatePolyfills bool
	// ForceNewerThan, when set, overrides usage scanning and injects every
	// catalogued library newer than the given version.
	ForceNewerThan *feature.Version
	// OutputVersion is the edition the compiled program must run under.
	OutputVersion feature.Version
	// MaxDiagnostics caps the per-file diagnostic bag.
	MaxDiagnostics int
	// EnabledDiagnostics turns on codes that are registered default-off.
	EnabledDiagnostics []diag.Code
}

// OutputFeatureSet returns the target's capability set.
func (o Options) OutputFeatureSet() feature.Set {
	return feature.Of(o.OutputVersion)
}

// Strategy folds the injection flags into the pass's strategy value.
// The forced directive wins over plain usage-driven injection.
func (o Options) Strategy() inject.Strategy {
	switch {
	case o.ForceNewerThan != nil:
		return inject.ForceNewerThan(*o.ForceNewerThan)
	case o.InjectPolyfills:
		return inject.UsageDriven()
	default:
		return inject.Disabled()
	}
}

// DiagnosticsCap returns the bag cap, defaulted when unset.
func (o Options) DiagnosticsCap() int {
	if o.MaxDiagnostics <= 0 {
		return 100
	}
	return o.MaxDiagnostics
}
