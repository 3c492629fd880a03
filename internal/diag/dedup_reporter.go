package diag

import "phphint/internal/source"

// Once returns a Reporter forwarding to next only the first of several
// identical reports: same code, severity, span and message. Rules that can
// reach one construct along two routes (a tree walk and a token scan, or a
// node seen from two ancestors) report through it.
func Once(next Reporter) Reporter {
	return &onceReporter{next: next, seen: make(map[onceKey]struct{})}
}

type onceKey struct {
	code Code
	sev  Severity
	span source.Span
	msg  string
}

type onceReporter struct {
	next Reporter
	seen map[onceKey]struct{}
}

func (r *onceReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []*Fix) {
	k := onceKey{code: code, sev: sev, span: primary, msg: msg}
	if _, dup := r.seen[k]; dup || r.next == nil {
		return
	}
	r.seen[k] = struct{}{}
	r.next.Report(code, sev, primary, msg, notes, fixes)
}
