// Package lsp serves phphint findings to editors over the Language Server
// Protocol: diagnostics are published after a debounce on every change, and
// fixes and caret suggestions are offered as code actions.
package lsp

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"phphint/internal/config"
	"phphint/internal/diag"
	"phphint/internal/driver"
	"phphint/internal/model"
	"phphint/internal/version"
)

const serverName = "phphint"

// ErrExitWithoutShutdown is returned by Serve when the client sends "exit"
// before "shutdown".
var ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")

// Options configure the server.
type Options struct {
	// Config is used as is when set; otherwise it is discovered from the
	// workspace root on initialize.
	Config *config.Config
	Log    zerolog.Logger
	// Debounce overrides the config delay between an edit and its analysis.
	Debounce       time.Duration
	MaxDiagnostics int
}

// openDoc is one editor buffer and the outcome of its last analysis.
type openDoc struct {
	uri  protocol.DocumentURI
	path string
	text string
	gen  uint64

	// filled by the analysis of generation analysedGen
	analysedGen uint64
	unit        *driver.Unit
	findings    []*diag.Diagnostic
}

type server struct {
	unimplemented

	conn jsonrpc2.Conn
	log  zerolog.Logger
	opts Options

	mu         sync.Mutex
	cfg        *config.Config
	docs       map[protocol.DocumentURI]*openDoc
	index      *model.MemIndex
	debounce   time.Duration
	timer      *time.Timer
	cancel     context.CancelFunc
	baseCtx    context.Context
	shutdown   bool
	exitErr    error
	exited     chan struct{}
	exitOnce   sync.Once
	analysisWG sync.WaitGroup
	followups  map[string]appliedFix
	applied    map[string]appliedDoc

	seq    atomic.Uint64
	latest atomic.Uint64
}

var _ protocol.Server = (*server)(nil)

func newServer(ctx context.Context, conn jsonrpc2.Conn, opts Options) *server {
	s := &server{
		conn:      conn,
		log:       opts.Log.With().Str("component", "lsp").Logger(),
		opts:      opts,
		cfg:       opts.Config,
		docs:      make(map[protocol.DocumentURI]*openDoc),
		baseCtx:   ctx,
		exited:    make(chan struct{}),
		followups: make(map[string]appliedFix),
		applied:   make(map[string]appliedDoc),
	}
	s.debounce = s.debounceFor(opts.Config)
	return s
}

func (s *server) debounceFor(cfg *config.Config) time.Duration {
	if s.opts.Debounce > 0 {
		return s.opts.Debounce
	}
	return cfg.Debounce()
}

// Serve runs a server on rwc until the client exits, the connection drops
// or ctx is cancelled.
func Serve(ctx context.Context, rwc io.ReadWriteCloser, opts Options) error {
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	s := newServer(ctx, conn, opts)
	conn.Go(ctx, protocol.ServerHandler(s, jsonrpc2.MethodNotFoundHandler))

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-conn.Done():
		err = conn.Err()
	case <-s.exited:
		err = s.exitErr
	}
	s.stopAnalysis()
	if closeErr := conn.Close(); closeErr != nil && err == nil && !errors.Is(closeErr, io.ErrClosedPipe) {
		s.log.Debug().Err(closeErr).Msg("close connection")
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	root := ""
	if params.RootURI != "" {
		root = params.RootURI.Filename()
	} else if len(params.WorkspaceFolders) > 0 {
		root = protocol.DocumentURI(params.WorkspaceFolders[0].URI).Filename()
	}

	s.mu.Lock()
	if s.cfg == nil {
		if root == "" {
			s.cfg = config.Default("")
		} else if cfg, err := config.Discover(root); err != nil {
			s.log.Warn().Err(err).Str("root", root).Msg("config discovery failed, using defaults")
			s.cfg = config.Default(root)
		} else {
			s.cfg = cfg
		}
		s.debounce = s.debounceFor(s.cfg)
	}
	s.mu.Unlock()
	s.log.Info().Str("root", root).Dur("debounce", s.debounce).Msg("initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save:      &protocol.SaveOptions{IncludeText: true},
			},
			CodeActionProvider: &protocol.CodeActionOptions{
				CodeActionKinds: []protocol.CodeActionKind{
					protocol.QuickFix,
					protocol.Refactor,
					protocol.RefactorRewrite,
					protocol.Source,
				},
			},
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{commandRevealCaret},
			},
		},
		ServerInfo: &protocol.ServerInfo{Name: serverName, Version: version.Plain()},
	}, nil
}

func (s *server) Initialized(context.Context, *protocol.InitializedParams) error { return nil }

func (s *server) SetTrace(context.Context, *protocol.SetTraceParams) error { return nil }

func (s *server) DidChangeConfiguration(context.Context, *protocol.DidChangeConfigurationParams) error {
	return nil
}

func (s *server) Shutdown(ctx context.Context) error {
	s.stopAnalysis()
	return nil
}

func (s *server) Exit(ctx context.Context) error {
	s.mu.Lock()
	if !s.shutdown {
		s.exitErr = ErrExitWithoutShutdown
	}
	s.mu.Unlock()
	s.exitOnce.Do(func() { close(s.exited) })
	return nil
}

func (s *server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.mu.Lock()
	doc := &openDoc{uri: uri, path: uri.Filename(), text: params.TextDocument.Text}
	if prev, ok := s.docs[uri]; ok {
		doc.gen = prev.gen
	}
	doc.gen++
	s.docs[uri] = doc
	s.mu.Unlock()
	s.scheduleDiagnostics()
	return nil
}

func (s *server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// full sync: the last change holds the whole text
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	if !s.updateText(params.TextDocument.URI, text) {
		return nil
	}
	s.scheduleDiagnostics()
	return nil
}

func (s *server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != "" {
		s.updateText(params.TextDocument.URI, params.Text)
	}
	s.scheduleDiagnostics()
	return nil
}

func (s *server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.mu.Lock()
	_, ok := s.docs[uri]
	delete(s.docs, uri)
	s.mu.Unlock()
	if ok {
		if err := s.publish(ctx, uri, nil, nil); err != nil {
			s.log.Warn().Err(err).Str("uri", string(uri)).Msg("clear diagnostics")
		}
	}
	s.scheduleDiagnostics()
	return nil
}

func (s *server) updateText(uri protocol.DocumentURI, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return false
	}
	doc.text = text
	doc.gen++
	return true
}

func (s *server) config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}
