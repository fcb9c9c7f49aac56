package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"lectic/internal/analysis"
	"lectic/internal/macro"
	"lectic/internal/preview"
)

// macroPreviewRunes caps a macro expansion shown on hover.
const macroPreviewRunes = 600

func (s *Server) handleHover(msg *rpcMessage) error {
	var params hoverParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	v := s.view(params.TextDocument.URI)
	if v == nil {
		return s.sendResponse(msg.ID, nil)
	}
	opts := s.previewOptions()
	result := safely(s, "hover", func() *hover {
		return buildHover(v, params.Position, opts)
	})
	return s.sendResponse(msg.ID, result)
}

func buildHover(v *docView, pos position, opts preview.Options) *hover {
	off := v.offset(pos)
	b := v.bundle()
	text := v.text()
	if d, ok := b.DirectiveAt(off); ok {
		if h := directiveHover(v, d); h != nil {
			return h
		}
	}
	if l, ok := b.LinkAt(off); ok {
		md := preview.Link(l.URL(text), v.dir, opts)
		if md == "" {
			return nil
		}
		return markdownHover(md, v.rangeOf(l.URLStart, l.URLEnd))
	}
	if sp, ok := b.ToolCallAt(off); ok {
		return markdownHover(preview.Block(text[sp.Start:sp.End]), v.rangeOf(sp.Start, sp.End))
	}
	if sp, ok := b.AttachmentAt(off); ok {
		return markdownHover(preview.Block(text[sp.Start:sp.End]), v.rangeOf(sp.Start, sp.End))
	}
	return nil
}

func directiveHover(v *docView, d analysis.DirectiveSpan) *hover {
	rng := v.rangeOf(d.AbsStart, d.AbsEnd)
	inner := strings.TrimSpace(d.Inner(v.text()))
	if d.Key == "macro" || !analysis.IsBuiltin(d.Key) {
		idx := macro.NewIndex(v.resolution().Spec.Macros)
		if m, _, ok := idx.Invocation(d.Key, inner); ok {
			body, _ := idx.Preview(m.Name, macroPreviewRunes)
			return markdownHover(fmt.Sprintf("**Macro** `%s`\n\n%s", m.Name, body), rng)
		}
	}
	if doc, ok := analysis.BuiltinDoc(d.Key); ok {
		return markdownHover(doc, rng)
	}
	return nil
}

func markdownHover(value string, rng lspRange) *hover {
	return &hover{
		Contents: markupContent{Kind: "markdown", Value: value},
		Range:    &rng,
	}
}
