package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"

	"phphint/internal/diag"
	"phphint/internal/document"
	"phphint/internal/rule"
	"phphint/internal/rules"
	"phphint/internal/source"
)

// commandRevealCaret runs the followup of a fix the client just applied. The
// client executes it after the code action's edit.
const commandRevealCaret = "phphint.revealCaret"

const methodShowDocument = "window/showDocument"

// appliedFix is a fix offered with a followup, and the text it was made for.
type appliedFix struct {
	uri  protocol.DocumentURI
	text string
	fix  *diag.Fix
}

func followupKey(uri protocol.DocumentURI, id string) string {
	return string(uri) + "#" + id
}

// suggestionRules is the rule set used for code actions, with caret moves
// after a fix routed back to the editor.
func (s *server) suggestionRules() []rule.Rule {
	set := rules.All()
	for i, r := range set {
		if _, ok := r.(*rules.VarTypeComment); ok {
			set[i] = &rules.VarTypeComment{Moved: s.revealCaret}
		}
	}
	return set
}

// remember keeps the fixes of actions carrying a reveal command until the
// client runs it.
func (s *server) remember(uri protocol.DocumentURI, text string, fixes []*diag.Fix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fx := range fixes {
		s.followups[followupKey(uri, fx.ID)] = appliedFix{uri: uri, text: text, fix: fx}
	}
}

func (s *server) ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (any, error) {
	if params.Command != commandRevealCaret {
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}
	if len(params.Arguments) != 2 {
		return nil, fmt.Errorf("%s: want uri and fix id, got %d arguments", commandRevealCaret, len(params.Arguments))
	}
	docURI, _ := params.Arguments[0].(string)
	id, _ := params.Arguments[1].(string)
	key := followupKey(protocol.DocumentURI(docURI), id)

	s.mu.Lock()
	pending, ok := s.followups[key]
	delete(s.followups, key)
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	// Replay the edit on a copy so the followup sees the text the client has.
	path := pending.uri.Filename()
	scratch := document.New(path, []byte(pending.text))
	s.mu.Lock()
	s.applied[path] = appliedDoc{uri: pending.uri, doc: scratch}
	s.mu.Unlock()
	if err := pending.fix.Apply(scratch.Buffer()); err != nil {
		s.log.Warn().Err(err).Str("uri", docURI).Str("fix", id).Msg("replay fix")
	}
	return nil, nil
}

type appliedDoc struct {
	uri protocol.DocumentURI
	doc *document.Document
}

// revealCaret asks the client to put the caret at offset of the text a
// replayed fix produced for path.
func (s *server) revealCaret(path string, offset int) {
	s.mu.Lock()
	applied, ok := s.applied[path]
	delete(s.applied, path)
	ctx := s.baseCtx
	s.mu.Unlock()
	if !ok {
		return
	}

	applied.doc.RLock()
	text := append([]byte(nil), applied.doc.Bytes()...)
	applied.doc.RUnlock()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(path, text))
	pos := positionForOffset(file, safeUint32(offset))

	var res protocol.ShowDocumentResult
	_, err := s.conn.Call(ctx, methodShowDocument, &protocol.ShowDocumentParams{
		URI:       applied.uri,
		TakeFocus: true,
		Selection: &protocol.Range{Start: pos, End: pos},
	}, &res)
	if err != nil {
		s.log.Debug().Err(err).Str("uri", string(applied.uri)).Msg("show document")
	}
}
