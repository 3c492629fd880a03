package lsp

import (
	"context"
	"sort"
	"time"

	"go.lsp.dev/protocol"
	"go.uber.org/multierr"

	"phphint/internal/diag"
	"phphint/internal/driver"
	"phphint/internal/model"
	"phphint/internal/source"
)

// scheduleDiagnostics restarts the debounce timer and cancels the analysis
// in flight; only the newest scheduled run publishes.
func (s *server) scheduleDiagnostics() {
	seq := s.seq.Add(1)
	s.latest.Store(seq)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.timer != nil && s.timer.Stop() {
		s.analysisWG.Done()
	}
	s.analysisWG.Add(1)
	s.timer = time.AfterFunc(s.debounce, func() {
		defer s.analysisWG.Done()
		s.runDiagnostics(seq)
	})
}

// stopAnalysis cancels pending and running analyses and waits for them.
// No analysis is scheduled afterwards.
func (s *server) stopAnalysis() {
	s.mu.Lock()
	s.shutdown = true
	if s.timer != nil && s.timer.Stop() {
		s.analysisWG.Done()
	}
	s.timer = nil
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.analysisWG.Wait()
}

type docSnapshot struct {
	uri  protocol.DocumentURI
	path string
	text string
	gen  uint64
}

type docResult struct {
	docSnapshot
	unit     *driver.Unit
	findings []*diag.Diagnostic
}

func (s *server) isLatest(seq uint64) bool { return seq != 0 && seq == s.latest.Load() }

func (s *server) runDiagnostics(seq uint64) {
	if !s.isLatest(seq) {
		return
	}
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.cancel = cancel
	snaps := make([]docSnapshot, 0, len(s.docs))
	for _, d := range s.docs {
		snaps = append(snaps, docSnapshot{uri: d.uri, path: d.path, text: d.text, gen: d.gen})
	}
	cfg := s.cfg
	s.mu.Unlock()
	defer cancel()

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].uri < snaps[j].uri })
	start := time.Now()
	results, index, err := s.analyze(ctx, snaps)
	if ctx.Err() != nil || !s.isLatest(seq) {
		s.log.Debug().Uint64("seq", seq).Msg("analysis superseded")
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Uint64("seq", seq).Msg("analysis finished with rule failures")
	}

	s.mu.Lock()
	s.index = index
	for _, r := range results {
		if doc, ok := s.docs[r.uri]; ok && doc.gen == r.gen {
			doc.analysedGen = r.gen
			doc.unit = r.unit
			doc.findings = r.findings
		}
	}
	s.mu.Unlock()

	for _, r := range results {
		if err := s.publish(ctx, r.uri, r.unit, r.findings); err != nil {
			s.log.Warn().Err(err).Str("uri", string(r.uri)).Msg("publish diagnostics")
		}
	}
	s.log.Debug().
		Uint64("seq", seq).
		Int("documents", len(results)).
		Dur("elapsed", time.Since(start)).
		Bool("custom_config", cfg != nil && cfg.Path != "").
		Msg("analysis published")
}

// analyze parses every open document into one file set so that each sees
// the declarations of the others, then runs the error and hint passes.
func (s *server) analyze(ctx context.Context, snaps []docSnapshot) ([]docResult, *model.MemIndex, error) {
	cfg := s.config()
	fs := source.NewFileSet()
	index := model.NewMemIndex()
	results := make([]docResult, 0, len(snaps))
	for _, snap := range snaps {
		if cfg.Excluded(snap.path) {
			continue
		}
		u, err := driver.ParseText(fs, snap.path, []byte(snap.text), s.opts.MaxDiagnostics)
		if err != nil {
			return nil, nil, err
		}
		index.Put(u.Scope)
		results = append(results, docResult{docSnapshot: snap, unit: u})
	}

	var errs error
	for i := range results {
		res, err := driver.DiagnoseUnit(ctx, results[i].unit, index, driver.DiagnoseOptions{
			Config:         cfg,
			Log:            s.log,
			MaxDiagnostics: s.opts.MaxDiagnostics,
		})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		errs = multierr.Append(errs, err)
		if res != nil {
			results[i].findings = res.Bag.Items()
		}
	}
	return results, index, errs
}

func (s *server) publish(ctx context.Context, uri protocol.DocumentURI, u *driver.Unit, findings []*diag.Diagnostic) error {
	list := make([]protocol.Diagnostic, 0, len(findings))
	for _, d := range findings {
		if u == nil {
			break
		}
		list = append(list, toProtocolDiagnostic(uri, u.File, d))
	}
	return s.conn.Notify(ctx, "textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: list,
	})
}

var severityToProtocol = map[diag.Severity]protocol.DiagnosticSeverity{
	diag.SevInfo:               protocol.DiagnosticSeverityInformation,
	diag.SevCurrentLineWarning: protocol.DiagnosticSeverityHint,
	diag.SevWarning:            protocol.DiagnosticSeverityWarning,
	diag.SevError:              protocol.DiagnosticSeverityError,
}

func toProtocolDiagnostic(uri protocol.DocumentURI, file *source.File, d *diag.Diagnostic) protocol.Diagnostic {
	out := protocol.Diagnostic{
		Range:    rangeForSpan(file, d.Primary),
		Severity: severityToProtocol[d.Severity],
		Code:     d.Code.ID(),
		Source:   serverName,
		Message:  d.Message,
	}
	if d.Code == diag.HintUnusedUse || d.Code == diag.HintEmptyStatement {
		out.Tags = []protocol.DiagnosticTag{protocol.DiagnosticTagUnnecessary}
	}
	for _, n := range d.Notes {
		if n.Span.File != file.ID || n.Span.End == 0 {
			continue
		}
		out.RelatedInformation = append(out.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{URI: uri, Range: rangeForSpan(file, n.Span)},
			Message:  n.Msg,
		})
	}
	return out
}
