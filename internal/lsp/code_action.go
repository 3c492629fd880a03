package lsp

import (
	"context"

	"go.lsp.dev/protocol"

	"phphint/internal/diag"
	"phphint/internal/driver"
	"phphint/internal/model"
	"phphint/internal/source"
)

var fixKindToProtocol = map[diag.FixKind]protocol.CodeActionKind{
	diag.FixKindQuickFix:     protocol.QuickFix,
	diag.FixKindRefactor:     protocol.Refactor,
	diag.FixKindRewrite:      protocol.RefactorRewrite,
	diag.FixKindSourceAction: protocol.Source,
}

// CodeAction offers the fixes of the published findings overlapping the
// requested range, followed by the suggestions for a caret at its start.
// Nothing is offered while the document has edits the last analysis has
// not seen: the fix offsets would be stale.
func (s *server) CodeAction(ctx context.Context, params *protocol.CodeActionParams) ([]protocol.CodeAction, error) {
	uri := params.TextDocument.URI
	s.mu.Lock()
	doc, ok := s.docs[uri]
	var (
		unit     *driver.Unit
		findings []*diag.Diagnostic
		index    *model.MemIndex
	)
	if ok && doc.analysedGen == doc.gen {
		unit, findings, index = doc.unit, doc.findings, s.index
	}
	cfg := s.cfg
	s.mu.Unlock()
	if unit == nil {
		return nil, nil
	}

	file := unit.File
	want := spanForRange(file, params.Range)
	var actions []protocol.CodeAction
	for _, d := range findings {
		if !touches(d.Primary, want) {
			continue
		}
		actions = append(actions, s.fixActions(uri, file, d)...)
	}

	var ix model.Index
	if index != nil {
		ix = index
	}
	d := driver.NewDispatcher(driver.Options{Config: cfg, Log: s.log, Rules: s.suggestionRules()})
	rc := unit.Context(cfg.VersionFor(file.Path), ix)
	suggestions, err := d.ComputeSuggestions(ctx, rc, int(want.Start))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		s.log.Warn().Err(err).Str("uri", string(uri)).Msg("suggestions")
	}
	for _, sg := range suggestions {
		actions = append(actions, s.fixActions(uri, file, sg)...)
	}
	return actions, nil
}

// touches reports whether a and b overlap, treating empty spans as points
// that touch whatever contains them.
func touches(a, b source.Span) bool {
	if a.Overlaps(b) {
		return true
	}
	if b.Empty() {
		return a.ContainsInclusive(b.Start)
	}
	if a.Empty() {
		return b.ContainsInclusive(a.Start)
	}
	return false
}

// fixActions turns the fixes of d into code actions. A fix with a followup
// also carries the reveal command, and is kept until the client runs it.
func (s *server) fixActions(uri protocol.DocumentURI, file *source.File, d *diag.Diagnostic) []protocol.CodeAction {
	if len(d.Fixes) == 0 {
		return nil
	}
	pd := toProtocolDiagnostic(uri, file, d)
	out := make([]protocol.CodeAction, 0, len(d.Fixes))
	var followups []*diag.Fix
	for _, fx := range d.Fixes {
		if fx == nil || len(fx.Edits) == 0 {
			continue
		}
		edits := make([]protocol.TextEdit, 0, len(fx.Edits))
		for _, e := range fx.Edits {
			edits = append(edits, protocol.TextEdit{Range: rangeForSpan(file, e.Span), NewText: e.NewText})
		}
		kind, ok := fixKindToProtocol[fx.Kind]
		if !ok {
			kind = protocol.QuickFix
		}
		action := protocol.CodeAction{
			Title:       fx.Title,
			Kind:        kind,
			Diagnostics: []protocol.Diagnostic{pd},
			IsPreferred: fx.IsPreferred && fx.Applicability != diag.FixApplicabilityManualReview,
			Edit: &protocol.WorkspaceEdit{
				Changes: map[protocol.DocumentURI][]protocol.TextEdit{uri: edits},
			},
		}
		if fx.Followup != nil && fx.ID != "" {
			action.Command = &protocol.Command{
				Title:     fx.Title,
				Command:   commandRevealCaret,
				Arguments: []any{string(uri), fx.ID},
			}
			followups = append(followups, fx)
		}
		out = append(out, action)
	}
	if len(followups) > 0 {
		s.remember(uri, string(file.Content), followups)
	}
	return out
}
