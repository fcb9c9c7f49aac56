package lsp

import (
	"lectic/internal/analysis"
	"lectic/internal/check"
	"lectic/internal/config"
	"lectic/internal/source"
)

// docView is one request's read-only view of an open document. The config
// chain is resolved on first use.
type docView struct {
	uri      string
	path     string
	dir      string
	snap     *analysis.Snapshot
	lines    *source.LineIndex
	resolver *config.Resolver
	res      *config.Resolution
}

// view returns the current state of uri, or nil when it is not open.
func (s *Server) view(uri string) *docView {
	uri = canonicalURI(uri)
	s.mu.Lock()
	text, ok := s.openDocs[uri]
	version := s.versions[uri]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	snap := s.cache.Get(uri, version, text)
	return &docView{
		uri:      uri,
		path:     uriToPath(uri),
		dir:      docDir(uri),
		snap:     snap,
		lines:    source.NewLineIndex(text),
		resolver: s.resolver,
	}
}

func (v *docView) text() string             { return v.snap.Text }
func (v *docView) bundle() *analysis.Bundle { return v.snap.Bundle }

func (v *docView) resolution() *config.Resolution {
	if v.res == nil {
		v.res = check.Resolve(v.snap.Doc, v.snap.Text, check.Options{
			WorkspaceDir: v.dir,
			DocPath:      v.path,
			Resolver:     v.resolver,
		})
	}
	return v.res
}

func (v *docView) offset(pos position) int {
	return v.lines.Offset(pos)
}

func (v *docView) rangeOf(start, end int) lspRange {
	return v.lines.Range(source.NewSpan(start, end))
}

func (v *docView) edit(start, end int, newText string) *workspaceEdit {
	return &workspaceEdit{Changes: map[string][]textEdit{
		v.uri: {{Range: v.rangeOf(start, end), NewText: newText}},
	}}
}

// locate maps a declaration to a client location. Header declarations
// live in this document; the rest in the file they were read from.
func (v *docView) locate(loc config.Location) (location, bool) {
	if loc.Source.Kind == config.SourceHeader {
		return location{URI: v.uri, Range: v.lines.Range(loc.Span)}, true
	}
	return fileLocation(v.resolution().Files, loc)
}

func fileLocation(files *source.FileSet, loc config.Location) (location, bool) {
	if files == nil || loc.Source.Path == "" {
		return location{}, false
	}
	f := files.Get(loc.Source.Path)
	if f == nil {
		return location{}, false
	}
	return location{URI: pathToURI(f.Path), Range: f.Range(loc.Span)}, true
}
