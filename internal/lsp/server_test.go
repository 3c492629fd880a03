package lsp

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"phphint/internal/config"
)

type client struct {
	conn        jsonrpc2.Conn
	diagnostics chan protocol.PublishDiagnosticsParams
	shown       chan protocol.ShowDocumentParams
	served      chan error
}

func startServer(t *testing.T, dir string) *client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverSide, clientSide := net.Pipe()
	c := &client{
		conn:        jsonrpc2.NewConn(jsonrpc2.NewStream(clientSide)),
		diagnostics: make(chan protocol.PublishDiagnosticsParams, 16),
		shown:       make(chan protocol.ShowDocumentParams, 4),
		served:      make(chan error, 1),
	}
	c.conn.Go(ctx, func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		if req.Method() == "textDocument/publishDiagnostics" {
			var params protocol.PublishDiagnosticsParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			c.diagnostics <- params
		}
		if req.Method() == methodShowDocument {
			var params protocol.ShowDocumentParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			c.shown <- params
			return reply(ctx, &protocol.ShowDocumentResult{Success: true}, nil)
		}
		return reply(ctx, nil, nil)
	})
	t.Cleanup(func() { _ = c.conn.Close() })

	go func() {
		c.served <- Serve(ctx, serverSide, Options{
			Config:   config.Default(dir),
			Log:      zerolog.Nop(),
			Debounce: time.Millisecond,
		})
	}()
	return c
}

func (c *client) nextDiagnostics(t *testing.T) protocol.PublishDiagnosticsParams {
	t.Helper()
	select {
	case p := <-c.diagnostics:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("no diagnostics published")
		return protocol.PublishDiagnosticsParams{}
	}
}

func TestServerLifecycle(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c := startServer(t, dir)

	var init protocol.InitializeResult
	_, err := c.conn.Call(ctx, protocol.MethodInitialize, &protocol.InitializeParams{
		RootURI: protocol.DocumentURI(uri.File(dir)),
	}, &init)
	require.NoError(t, err)
	require.NotNil(t, init.ServerInfo)
	assert.Equal(t, "phphint", init.ServerInfo.Name)
	require.NoError(t, c.conn.Notify(ctx, protocol.MethodInitialized, &protocol.InitializedParams{}))

	docURI := protocol.DocumentURI(uri.File(filepath.Join(dir, "a.php")))
	require.NoError(t, c.conn.Notify(ctx, protocol.MethodTextDocumentDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: docURI, LanguageID: "php", Version: 1, Text: "<?php\nfoo();;\n"},
	}))

	published := c.nextDiagnostics(t)
	assert.Equal(t, docURI, published.URI)
	require.Len(t, published.Diagnostics, 1)
	d := published.Diagnostics[0]
	assert.Equal(t, "Unnecessary semicolon", d.Message)
	assert.Equal(t, "phphint", d.Source)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, d.Severity)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 6},
		End:   protocol.Position{Line: 1, Character: 7},
	}, d.Range)
	assert.Equal(t, []protocol.DiagnosticTag{protocol.DiagnosticTagUnnecessary}, d.Tags)

	var actions []protocol.CodeAction
	_, err = c.conn.Call(ctx, protocol.MethodTextDocumentCodeAction, &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
		Range:        d.Range,
	}, &actions)
	require.NoError(t, err)
	var removal *protocol.CodeAction
	for i := range actions {
		if actions[i].Title == "Remove unnecessary semicolon" {
			removal = &actions[i]
		}
	}
	require.NotNil(t, removal, "actions: %v", actions)
	assert.Equal(t, protocol.QuickFix, removal.Kind)
	require.NotNil(t, removal.Edit)
	edits := removal.Edit.Changes[docURI]
	require.Len(t, edits, 1)
	assert.Equal(t, d.Range, edits[0].Range)
	assert.Empty(t, edits[0].NewText)

	// a fixed buffer clears the list
	require.NoError(t, c.conn.Notify(ctx, protocol.MethodTextDocumentDidChange, &protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI}, Version: 2},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: "<?php\nfoo();\n"}},
	}))
	published = c.nextDiagnostics(t)
	assert.Empty(t, published.Diagnostics)

	_, err = c.conn.Call(ctx, protocol.MethodShutdown, nil, nil)
	require.NoError(t, err)
	require.NoError(t, c.conn.Notify(ctx, protocol.MethodExit, nil))

	select {
	case err := <-c.served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not exit")
	}
}

func TestExitWithoutShutdown(t *testing.T) {
	c := startServer(t, t.TempDir())
	require.NoError(t, c.conn.Notify(context.Background(), protocol.MethodExit, nil))
	select {
	case err := <-c.served:
		assert.ErrorIs(t, err, ErrExitWithoutShutdown)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not exit")
	}
}

func TestVarCommentActionRevealsCaret(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c := startServer(t, dir)

	var init protocol.InitializeResult
	_, err := c.conn.Call(ctx, protocol.MethodInitialize, &protocol.InitializeParams{
		RootURI: protocol.DocumentURI(uri.File(dir)),
	}, &init)
	require.NoError(t, err)
	require.NotNil(t, init.Capabilities.ExecuteCommandProvider)
	assert.Contains(t, init.Capabilities.ExecuteCommandProvider.Commands, commandRevealCaret)

	docURI := protocol.DocumentURI(uri.File(filepath.Join(dir, "a.php")))
	require.NoError(t, c.conn.Notify(ctx, protocol.MethodTextDocumentDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: docURI, LanguageID: "php", Version: 1,
			Text: "<?php\nfunction f() {\n    $repo = new Repo();\n}\n"},
	}))
	c.nextDiagnostics(t)

	caret := protocol.Position{Line: 2, Character: 5}
	var actions []protocol.CodeAction
	_, err = c.conn.Call(ctx, protocol.MethodTextDocumentCodeAction, &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
		Range:        protocol.Range{Start: caret, End: caret},
	}, &actions)
	require.NoError(t, err)
	var add *protocol.CodeAction
	for i := range actions {
		if actions[i].Title == "Add @var comment" {
			add = &actions[i]
		}
	}
	require.NotNil(t, add, "actions: %v", actions)
	require.NotNil(t, add.Command)
	assert.Equal(t, commandRevealCaret, add.Command.Command)

	_, err = c.conn.Call(ctx, protocol.MethodWorkspaceExecuteCommand, &protocol.ExecuteCommandParams{
		Command:   add.Command.Command,
		Arguments: add.Command.Arguments,
	}, nil)
	require.NoError(t, err)

	select {
	case shown := <-c.shown:
		assert.Equal(t, docURI, shown.URI)
		require.NotNil(t, shown.Selection)
		// line 2 is now "    /** @var Repo $repo */", caret before "Repo"
		want := protocol.Position{Line: 2, Character: 13}
		assert.Equal(t, protocol.Range{Start: want, End: want}, *shown.Selection)
	case <-time.After(5 * time.Second):
		t.Fatal("caret was not revealed")
	}
}
