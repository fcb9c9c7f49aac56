package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"lectic/internal/analysis"
	"lectic/internal/config"
	"lectic/internal/models"
	"lectic/internal/preview"
	"lectic/internal/trace"
	"lectic/internal/version"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Settings config.Settings
	// Resolver discovers configuration files. Nil uses config.NewResolver.
	Resolver *config.Resolver
	// Models is the model-name registry. Nil disables model diagnostics.
	Models    *models.Registry
	LookupEnv config.LookupEnv
	Tracer    trace.Tracer
	// Log receives "lsp: " lines. Nil means stderr.
	Log io.Writer
}

// Server handles stdio JSON-RPC for lectic documents.
type Server struct {
	in        *bufio.Reader
	out       *bufio.Writer
	sendMu    sync.Mutex
	mu        sync.Mutex
	openDocs  map[string]string
	versions  map[string]int
	published map[string]struct{}

	roots             []string
	shutdownRequested bool
	settings          config.Settings
	debounceTimer     *time.Timer
	analysisSeq       uint64
	latestSeq         uint64
	baseCtx           context.Context

	cache     *analysis.Cache
	resolver  *config.Resolver
	registry  *models.Registry
	lookupEnv config.LookupEnv
	tracer    trace.Tracer
	log       io.Writer
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = config.NewResolver()
	}
	if opts.Settings.SystemConfig != "" {
		resolver.SystemPath = opts.Settings.SystemConfig
	}
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	logw := opts.Log
	if logw == nil {
		logw = os.Stderr
	}
	return &Server{
		in:        bufio.NewReader(in),
		out:       bufio.NewWriter(out),
		openDocs:  make(map[string]string),
		versions:  make(map[string]int),
		published: make(map[string]struct{}),
		settings:  opts.Settings,
		cache:     analysis.NewCache(0),
		resolver:  resolver,
		registry:  opts.Models,
		lookupEnv: lookup,
		tracer:    tracer,
		log:       logw,
		baseCtx:   context.Background(),
	}
}

// Run serves LSP requests until exit or EOF.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = trace.WithTracer(ctx, s.tracer)
	defer s.stopTimer()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	span := trace.Begin(s.tracer, trace.ScopeRequest, msg.Method, 0)
	err := s.dispatch(msg)
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	span.End(detail)
	return err
}

func (s *Server) dispatch(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "workspace/symbol":
		return s.handleWorkspaceSymbol(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	case "codeAction/resolve":
		return s.handleCodeActionResolve(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	roots := rootsFromParams(params)
	s.mu.Lock()
	s.roots = roots
	s.mu.Unlock()
	s.applySettings(params.InitializationOptions)

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
			HoverProvider:      true,
			DefinitionProvider: true,
			CodeActionProvider: &codeActionOptions{
				CodeActionKinds: []string{kindQuickFix, kindRefactorInline},
				ResolveProvider: true,
			},
			WorkspaceSymbolProvider: true,
		},
		ServerInfo: &serverInfo{Name: "lectic", Version: version.Version},
	}
	return s.sendResponse(msg.ID, result)
}

// rootsFromParams collects every folder the client announced, falling back
// to rootUri and rootPath.
func rootsFromParams(params initializeParams) []string {
	var roots []string
	seen := make(map[string]bool)
	add := func(root string) {
		if root == "" {
			return
		}
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		if seen[root] {
			return
		}
		seen[root] = true
		roots = append(roots, root)
	}
	for _, folder := range params.WorkspaceFolders {
		add(uriToPath(folder.URI))
	}
	if len(roots) == 0 {
		add(uriToPath(params.RootURI))
	}
	if len(roots) == 0 {
		add(params.RootPath)
	}
	return roots
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.stopTimer()
	s.clearPublishedDiagnostics()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.openDocs[uri] = params.TextDocument.Text
	s.versions[uri] = params.TextDocument.Version
	s.mu.Unlock()
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	text := applyChanges(s.openDocs[uri], params.ContentChanges)
	s.openDocs[uri] = text
	s.versions[uri] = params.TextDocument.Version
	s.mu.Unlock()
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	if _, open := s.openDocs[uri]; open && params.Text != nil && *params.Text != s.openDocs[uri] {
		s.openDocs[uri] = *params.Text
		s.versions[uri]++
	}
	s.mu.Unlock()
	// A save may have changed a lectic.yaml the open documents inherit from.
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.openDocs, uri)
	delete(s.versions, uri)
	_, hadDiagnostics := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()
	s.cache.Forget(uri)
	if hadDiagnostics {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
	return nil
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, version *int, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Version:     version,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(s.log, "lsp: "+format+"\n", args...)
}

func (s *Server) isLatestSeq(seq uint64) bool {
	if seq == 0 {
		return false
	}
	return seq == atomic.LoadUint64(&s.latestSeq)
}

func (s *Server) stopTimer() {
	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()
}

// currentSettings returns a copy of the live settings.
func (s *Server) currentSettings() config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Server) previewOptions() preview.Options {
	st := s.currentSettings()
	return preview.Options{MaxBytes: st.PreviewBytes, GlobLimit: st.GlobLimit}
}

func (s *Server) workspaceRoots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.roots...)
}
