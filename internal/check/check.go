// Package check validates a lectic document against its merged
// configuration chain. Every entry point is a pure function of the
// document text, the configuration files and the model registry snapshot.
package check

import (
	"lectic/internal/analysis"
	"lectic/internal/config"
	"lectic/internal/diag"
	"lectic/internal/markdown"
	"lectic/internal/models"
	"lectic/internal/source"
)

// ModelLookup answers which models a provider serves.
type ModelLookup interface {
	Lookup(provider string) ([]string, models.State)
}

// Options carry everything a check needs besides the document.
type Options struct {
	// WorkspaceDir is where workspace config discovery starts, usually the
	// document's directory. Empty skips the workspace layer.
	WorkspaceDir string
	// DocPath is recorded as the header layer's source path.
	DocPath  string
	Resolver *config.Resolver
	// Resolution, when set, is used instead of resolving again.
	Resolution *config.Resolution
	// Bundle, when set, is used instead of indexing doc again.
	Bundle         *analysis.Bundle
	Models         ModelLookup
	MaxDiagnostics int
}

// Resolve returns the chain for doc under opts.
func Resolve(doc *markdown.Document, text string, opts Options) *config.Resolution {
	if opts.Resolution != nil {
		return opts.Resolution
	}
	r := opts.Resolver
	if r == nil {
		r = &config.Resolver{}
	}
	return r.ResolveDetailed(opts.WorkspaceDir, opts.DocPath, doc.Header.Content(text), doc.Header.ContentStart)
}

type checker struct {
	doc    *markdown.Document
	text   string
	res    *config.Resolution
	spec   *config.Spec
	header *config.Layer
	bundle *analysis.Bundle
	rep    diag.Reporter
}

func newChecker(doc *markdown.Document, text string, opts Options, rep diag.Reporter) *checker {
	res := Resolve(doc, text, opts)
	header := res.Header
	if header == nil {
		header = &config.Layer{Source: config.Source{Kind: config.SourceHeader}}
	}
	bundle := opts.Bundle
	if bundle == nil {
		bundle = analysis.Build(doc, text)
	}
	return &checker{doc: doc, text: text, res: res, spec: res.Spec, header: header, bundle: bundle, rep: rep}
}

// Document runs the structural and reference rules. Model existence is
// checked separately by Models.
func Document(doc *markdown.Document, text string, opts Options) []diag.Diagnostic {
	bag := diag.NewBag(opts.MaxDiagnostics)
	c := newChecker(doc, text, opts, diag.BagReporter{Bag: bag})
	c.headerPresence()
	c.headerSyntax()
	c.duplicates()
	c.prompts()
	c.references()
	c.toolTargets()
	c.hooks()
	c.links()
	return finish(bag)
}

// Models reports header models missing from a loaded provider list. It is
// silent for providers whose list is absent, loading or empty.
func Models(doc *markdown.Document, text string, opts Options) []diag.Diagnostic {
	bag := diag.NewBag(opts.MaxDiagnostics)
	if opts.Models == nil {
		return nil
	}
	c := newChecker(doc, text, opts, diag.BagReporter{Bag: bag})
	c.models(opts.Models)
	return finish(bag)
}

// ModelProviders lists the providers whose model lists the header needs.
func ModelProviders(res *config.Resolution) []string {
	if res == nil || res.Header == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, it := range res.Header.Interlocutors {
		if !it.Declares("model") {
			continue
		}
		provider := effectiveProvider(res.Spec, it)
		if provider == "" || seen[provider] {
			continue
		}
		seen[provider] = true
		out = append(out, provider)
	}
	return out
}

func effectiveProvider(spec *config.Spec, it *config.Interlocutor) string {
	if merged := spec.Interlocutor(it.Name); merged != nil && merged.Provider != "" {
		return merged.Provider
	}
	return it.Provider
}

func finish(bag *diag.Bag) []diag.Diagnostic {
	bag.Dedup()
	bag.Sort()
	return bag.Items()
}

// headerSpan anchors header-level findings: the header block, or the start
// of the document when there is none.
func (c *checker) headerSpan() source.Span {
	h := c.doc.Header
	if !h.Present {
		return source.LineSpan(c.text, 0)
	}
	return source.LineSpan(c.text, h.Start)
}
