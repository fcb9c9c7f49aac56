package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"lectic/internal/analysis"
	"lectic/internal/check"
	"lectic/internal/config"
	"lectic/internal/diag"
	"lectic/internal/macro"
	"lectic/internal/suggest"
)

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	v := s.view(params.TextDocument.URI)
	if v == nil {
		return s.sendResponse(msg.ID, nil)
	}
	result := safely(s, "codeAction", func() []codeAction {
		return filterKinds(buildCodeActions(v, params, s.lookupEnv), params.Context.Only)
	})
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleCodeActionResolve(msg *rpcMessage) error {
	var action codeAction
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &action); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	result := safely(s, "codeAction/resolve", func() *codeAction {
		return s.resolveCodeAction(action)
	})
	if result == nil {
		result = &action
	}
	return s.sendResponse(msg.ID, result)
}

func buildCodeActions(v *docView, params codeActionParams, lookup config.LookupEnv) []codeAction {
	var actions []codeAction
	actions = append(actions, headerActions(v, lookup)...)
	off := v.offset(params.Range.Start)
	if a, ok := linkAction(v, off, params.Context.Diagnostics); ok {
		actions = append(actions, a)
	}
	if d, ok := v.bundle().DirectiveAt(off); ok {
		actions = append(actions, directiveActions(v, d)...)
	}
	return actions
}

// headerActions offers a minimal header when there is none or it is blank.
func headerActions(v *docView, lookup config.LookupEnv) []codeAction {
	h := v.snap.Doc.Header
	if h.Present && strings.TrimSpace(h.Content(v.text())) != "" {
		return nil
	}
	provider, _ := config.DefaultProvider(lookup)
	start, end := 0, 0
	if h.Present {
		start, end = h.Start, h.End
	}
	return []codeAction{{
		Title:       "Insert minimal lectic header",
		Kind:        kindQuickFix,
		IsPreferred: true,
		Edit:        v.edit(start, end, config.MinimalHeader(provider)),
	}}
}

func linkAction(v *docView, off int, ctx []lspDiagnostic) (codeAction, bool) {
	l, ok := v.bundle().LinkAt(off)
	if !ok {
		return codeAction{}, false
	}
	url := l.URL(v.text())
	fixed, ok := check.AbsoluteFileURL(url)
	if !ok {
		return codeAction{}, false
	}
	title := "Use $PWD-relative file URL"
	if !check.IsRelativeFileURL(url) {
		title = "Convert to file://$PWD URL"
	}
	rng := v.rangeOf(l.URLStart, l.URLEnd)
	var related []lspDiagnostic
	for _, d := range ctx {
		if d.Code == diag.LnkRelativeFileURL.ID() && d.Range == rng {
			related = append(related, d)
		}
	}
	return codeAction{
		Title:       title,
		Kind:        kindQuickFix,
		Diagnostics: related,
		IsPreferred: true,
		Edit:        v.edit(l.URLStart, l.URLEnd, fixed),
	}, true
}

func directiveActions(v *docView, d analysis.DirectiveSpan) []codeAction {
	if check.IsSpeakerDirective(d.Key) {
		return nameFixes(v, d)
	}
	if d.Key == "" || (analysis.IsBuiltin(d.Key) && d.Key != "macro") {
		return nil
	}
	// The edit is computed on resolve.
	return []codeAction{{
		Title: "Expand macro",
		Kind:  kindRefactorInline,
		Data: &actionData{
			URI:     v.uri,
			Version: v.snap.Version,
			Start:   d.AbsStart,
			End:     d.AbsEnd,
		},
	}}
}

// nameFixes suggests known interlocutors close to an unknown :ask/:aside
// name, nearest first.
func nameFixes(v *docView, d analysis.DirectiveSpan) []codeAction {
	if v.bundle().InsideAssistant(d.AbsStart) {
		return nil
	}
	typed := strings.TrimSpace(d.Inner(v.text()))
	spec := v.resolution().Spec
	if typed == "" || spec.Interlocutor(typed) != nil {
		return nil
	}
	matches := suggest.Near(spec.InterlocutorNames(), typed, suggest.Threshold(typed))
	actions := make([]codeAction, 0, len(matches))
	for i, m := range matches {
		actions = append(actions, codeAction{
			Title:       fmt.Sprintf("Replace with %s", m.Name),
			Kind:        kindQuickFix,
			IsPreferred: i == 0,
			Edit:        v.edit(d.InnerStart, d.InnerEnd, m.Name),
		})
	}
	return actions
}

// resolveCodeAction fills in a deferred macro expansion. A stale document
// or a failed expansion leaves the action without an edit.
func (s *Server) resolveCodeAction(action codeAction) *codeAction {
	out := action
	data := action.Data
	if data == nil || action.Edit != nil {
		return &out
	}
	v := s.view(data.URI)
	if v == nil || v.snap.Version != data.Version {
		return &out
	}
	d, ok := directiveExactly(v.bundle(), data.Start, data.End)
	if !ok {
		return &out
	}
	idx := macro.NewIndex(v.resolution().Spec.Macros)
	expansion, err := idx.ExpandDirective(d.Key, d.Inner(v.text()))
	if err != nil {
		s.logf("expand macro: %v", err)
		return &out
	}
	out.Edit = v.edit(d.AbsStart, d.AbsEnd, expansion)
	return &out
}

func directiveExactly(b *analysis.Bundle, start, end int) (analysis.DirectiveSpan, bool) {
	for _, d := range b.Directives {
		if d.AbsStart == start && d.AbsEnd == end {
			return d, true
		}
	}
	return analysis.DirectiveSpan{}, false
}

func filterKinds(actions []codeAction, only []string) []codeAction {
	if len(only) == 0 {
		return actions
	}
	out := actions[:0]
	for _, a := range actions {
		for _, kind := range only {
			if a.Kind == kind || strings.HasPrefix(a.Kind, kind+".") {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
