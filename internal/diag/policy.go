package diag

import "shimmer/internal/source"

// PolicyReporter drops diagnostics whose code is default-off, unless the
// code has been enabled explicitly. Everything else is forwarded unchanged.
type PolicyReporter struct {
	next    Reporter
	enabled map[Code]struct{}
}

// NewPolicyReporter wraps next with the default-off policy; codes listed in
// enable are reported even when default-off.
func NewPolicyReporter(next Reporter, enable ...Code) *PolicyReporter {
	r := &PolicyReporter{
		next:    next,
		enabled: make(map[Code]struct{}, len(enable)),
	}
	for _, c := range enable {
		r.enabled[c] = struct{}{}
	}
	return r
}

func (r *PolicyReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil || r.next == nil {
		return
	}
	if DefaultOff(code) {
		if _, ok := r.enabled[code]; !ok {
			return
		}
	}
	r.next.Report(code, sev, primary, msg, notes)
}

type dedupKey struct {
	code  Code
	sev   Severity
	file  source.FileID
	start uint32
	end   uint32
	msg   string
}

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same code, severity, primary span and message.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil {
		return
	}
	key := dedupKey{
		code:  code,
		sev:   sev,
		file:  primary.File,
		start: primary.Start,
		end:   primary.End,
		msg:   msg,
	}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}
