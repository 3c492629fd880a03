package driver

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"phphint/internal/config"
	"phphint/internal/diag"
	"phphint/internal/observ"
	"phphint/internal/rule"
	"phphint/internal/rules"
)

// RulePanicError reports a rule that panicked during a pass. The pass goes
// on without the findings of that rule.
type RulePanicError struct {
	Rule  string
	File  string
	Value any
}

func (e *RulePanicError) Error() string {
	return fmt.Sprintf("rule %s panicked on %s: %v", e.Rule, e.File, e.Value)
}

// Options configure a Dispatcher. The zero value runs every default rule
// with no logging.
type Options struct {
	Config *config.Config
	Log    zerolog.Logger
	// Rules replaces the rule set, nil means rules.All().
	Rules []rule.Rule
}

// Dispatcher runs the enabled rules of one kind over a rule context and
// merges their findings. A dispatcher is used by one goroutine at a time;
// parallel runs take one dispatcher each.
type Dispatcher struct {
	reg *rule.Registry
	cfg *config.Config
	log zerolog.Logger
}

func NewDispatcher(opts Options) *Dispatcher {
	set := opts.Rules
	if set == nil {
		set = rules.All()
	}
	return &Dispatcher{
		reg: rule.NewRegistry(set...),
		cfg: opts.Config,
		log: opts.Log,
	}
}

// Registry exposes the rule set of d.
func (d *Dispatcher) Registry() *rule.Registry { return d.reg }

// Enabled returns the rules of kind k that the configuration leaves on.
func (d *Dispatcher) Enabled(k rule.Kind) []rule.Rule {
	all := d.reg.ByKind(k)
	out := all[:0]
	for _, r := range all {
		m := r.Meta()
		if d.cfg.RuleEnabled(m.Code, m.DefaultEnabled) {
			out = append(out, r)
		}
	}
	return out
}

// ComputeErrors runs the error rules.
func (d *Dispatcher) ComputeErrors(ctx context.Context, rc *rule.Context) ([]*diag.Diagnostic, error) {
	return d.run(ctx, rc, rule.KindError)
}

// ComputeHints runs the hint rules.
func (d *Dispatcher) ComputeHints(ctx context.Context, rc *rule.Context) ([]*diag.Diagnostic, error) {
	return d.run(ctx, rc, rule.KindHint)
}

// ComputeSuggestions runs the suggestion rules for the caret at offset
// caret. The caret is set on rc only for the duration of the call.
func (d *Dispatcher) ComputeSuggestions(ctx context.Context, rc *rule.Context, caret int) ([]*diag.Diagnostic, error) {
	if rc == nil {
		return nil, nil
	}
	rc.Caret = caret
	defer func() { rc.Caret = rule.NoCaret }()
	return d.run(ctx, rc, rule.KindSuggestion)
}

// run is one pass. A cancelled pass returns ctx.Err() and no findings.
// Panicking rules are skipped and reported in the error, which then comes
// with the findings of every other rule.
func (d *Dispatcher) run(ctx context.Context, rc *rule.Context, kind rule.Kind) ([]*diag.Diagnostic, error) {
	if !rc.Ready() {
		return nil, nil
	}
	var (
		out  []*diag.Diagnostic
		errs error
	)
	supp := rc.Suppressions()
	for _, r := range d.Enabled(kind) {
		if err := ctx.Err(); err != nil {
			observ.CancelledPassesTotal.WithLabelValues(kind.String()).Inc()
			return nil, err
		}
		found, err := d.invoke(ctx, rc, r)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := ctx.Err(); err != nil {
			observ.CancelledPassesTotal.WithLabelValues(kind.String()).Inc()
			return nil, err
		}
		key := r.Meta().Key()
		for _, f := range found {
			if supp.Suppressed(f.Code, f.Primary) {
				observ.SuppressedTotal.WithLabelValues(key).Inc()
				continue
			}
			f.Severity = d.cfg.SeverityFor(f.Code, f.Severity)
			f.Priority = diag.DefaultPriority
			observ.FindingsTotal.WithLabelValues(key, f.Severity.String()).Inc()
			out = append(out, f)
		}
	}
	diag.SortDiagnostics(out)
	return out, errs
}

// invoke runs r into a private bag so a rule that fails half way leaves
// nothing behind.
func (d *Dispatcher) invoke(ctx context.Context, rc *rule.Context, r rule.Rule) (found []*diag.Diagnostic, err error) {
	m := r.Meta()
	key := m.Key()
	bag := diag.NewBag(0)
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		observ.RuleDuration.WithLabelValues(key, m.Kind.String()).Observe(elapsed.Seconds())
		if p := recover(); p != nil {
			observ.RulePanicsTotal.WithLabelValues(key).Inc()
			d.log.Error().
				Str("rule", key).
				Str("file", rc.File.Path).
				Interface("panic", p).
				Bytes("stack", debug.Stack()).
				Msg("rule panicked")
			found, err = nil, &RulePanicError{Rule: key, File: rc.File.Path, Value: p}
			return
		}
		d.log.Debug().
			Str("rule", key).
			Str("file", rc.File.Path).
			Dur("elapsed", elapsed).
			Int("findings", len(found)).
			Msg("rule done")
	}()
	r.Invoke(ctx, rc, diag.BagReporter{Bag: bag})
	return bag.Items(), nil
}
