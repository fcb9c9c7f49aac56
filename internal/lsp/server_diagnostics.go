package lsp

import (
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"lectic/internal/check"
	"lectic/internal/diag"
	"lectic/internal/models"
	"lectic/internal/source"
	"lectic/internal/trace"
)

func (s *Server) scheduleDiagnostics() {
	s.mu.Lock()
	seq := atomic.AddUint64(&s.analysisSeq, 1)
	atomic.StoreUint64(&s.latestSeq, seq)
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	delay := s.settings.Debounce()
	s.debounceTimer = time.AfterFunc(delay, func() {
		s.runDiagnostics(seq)
	})
	s.mu.Unlock()
}

type docState struct {
	uri     string
	text    string
	version int
}

func (s *Server) openDocStates() []docState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]docState, 0, len(s.openDocs))
	for uri, text := range s.openDocs {
		out = append(out, docState{uri: uri, text: text, version: s.versions[uri]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].uri < out[j].uri })
	return out
}

// runDiagnostics checks every open document. Results computed for an
// older sequence number or an older document version are dropped.
func (s *Server) runDiagnostics(seq uint64) {
	if !s.isLatestSeq(seq) {
		return
	}
	span := trace.Begin(s.tracer, trace.ScopeFeature, "diagnostics", 0)
	defer span.End("")
	docs := s.openDocStates()
	span.WithExtra("docs", strconv.Itoa(len(docs)))
	for _, doc := range docs {
		if !s.isLatestSeq(seq) {
			return
		}
		list := s.diagnose(doc)
		if !s.isLatestSeq(seq) || !s.stillCurrent(doc) {
			return
		}
		s.publishDiagnostics(doc, list)
	}
}

func (s *Server) diagnose(doc docState) (out []lspDiagnostic) {
	defer func() {
		if r := recover(); r != nil {
			s.logf("diagnostics for %s failed: %v", doc.uri, r)
			out = nil
		}
	}()
	settings := s.currentSettings()
	snap := s.cache.Get(doc.uri, doc.version, doc.text)
	opts := check.Options{
		WorkspaceDir:   docDir(doc.uri),
		DocPath:        uriToPath(doc.uri),
		Resolver:       s.resolver,
		Bundle:         snap.Bundle,
		MaxDiagnostics: settings.MaxDiagnostics,
	}
	res := check.Resolve(snap.Doc, snap.Text, opts)
	opts.Resolution = res
	diags := check.Document(snap.Doc, snap.Text, opts)
	if s.registry != nil {
		opts.Models = s.registry
		diags = append(diags, check.Models(snap.Doc, snap.Text, opts)...)
		if settings.FetchModels {
			s.ensureModels(check.ModelProviders(res))
		}
	}
	lines := source.NewLineIndex(snap.Text)
	out = make([]lspDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, toLSPDiagnostic(doc.uri, lines, d))
	}
	return out
}

// ensureModels starts fetches for providers whose lists are unknown and
// re-runs diagnostics when one lands.
func (s *Server) ensureModels(providers []string) {
	for _, provider := range providers {
		done := s.registry.Ensure(s.baseCtx, provider)
		if done == nil {
			continue
		}
		go func(provider string) {
			<-done
			if _, state := s.registry.Lookup(provider); state == models.StateLoaded {
				s.scheduleDiagnostics()
			}
		}(provider)
	}
}

func toLSPDiagnostic(uri string, lines *source.LineIndex, d diag.Diagnostic) lspDiagnostic {
	out := lspDiagnostic{
		Range:    lines.Range(d.Primary),
		Severity: d.Severity.LSP(),
		Code:     d.Code.ID(),
		Source:   "lectic",
		Message:  d.Message,
	}
	for _, note := range d.Notes {
		out.RelatedInformation = append(out.RelatedInformation, diagnosticRelatedInformation{
			Location: location{URI: uri, Range: lines.Range(note.Span)},
			Message:  note.Msg,
		})
	}
	return out
}

func (s *Server) stillCurrent(doc docState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	version, ok := s.versions[doc.uri]
	return ok && version == doc.version && s.openDocs[doc.uri] == doc.text
}

func (s *Server) publishDiagnostics(doc docState, list []lspDiagnostic) {
	s.mu.Lock()
	s.published[doc.uri] = struct{}{}
	s.mu.Unlock()
	version := doc.version
	if err := s.sendPublish(doc.uri, &version, list); err != nil {
		s.logf("failed to publish diagnostics: %v", err)
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	if len(s.published) == 0 {
		s.mu.Unlock()
		return
	}
	prev := s.published
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	uris := make([]string, 0, len(prev))
	for uri := range prev {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}
