package lsp

import (
	"encoding/json"
	"strings"

	"lectic/internal/analysis"
	"lectic/internal/check"
	"lectic/internal/config"
	"lectic/internal/source"
)

func (s *Server) handleDefinition(msg *rpcMessage) error {
	var params definitionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	v := s.view(params.TextDocument.URI)
	if v == nil {
		return s.sendResponse(msg.ID, nil)
	}
	result := safely(s, "definition", func() *location {
		return buildDefinition(v, params.Position)
	})
	return s.sendResponse(msg.ID, result)
}

// reference is a name under the cursor and the kind of entity it names.
type reference struct {
	kind config.EntityKind
	name string
}

func buildDefinition(v *docView, pos position) *location {
	ref, ok := referenceAt(v, v.offset(pos))
	if !ok || ref.name == "" {
		return nil
	}
	decl, ok := v.resolution().Find(ref.kind, ref.name)
	if !ok {
		return nil
	}
	loc, ok := v.locate(decl)
	if !ok {
		return nil
	}
	return &loc
}

func referenceAt(v *docView, off int) (reference, bool) {
	text := v.text()
	if d, ok := v.bundle().DirectiveAt(off); ok {
		inner := strings.TrimSpace(d.Inner(text))
		switch {
		case check.IsSpeakerDirective(d.Key):
			return reference{kind: config.EntityInterlocutor, name: inner}, true
		case d.Key == "macro":
			return reference{kind: config.EntityMacro, name: inner}, true
		case d.Key != "" && !analysis.IsBuiltin(d.Key):
			return reference{kind: config.EntityMacro, name: d.Key}, true
		}
	}
	if ref, ok := toolReferenceAt(v.resolution().Header, off); ok {
		return ref, true
	}
	if block, ok := v.bundle().BlockAt(off); ok && block.Kind == analysis.BlockAssistant {
		if source.LineSpan(text, block.AbsStart).Contains(off) {
			return reference{kind: config.EntityInterlocutor, name: block.Name}, true
		}
	}
	return reference{}, false
}

// toolReferenceAt finds an agent or kit target in the header's tools lists.
func toolReferenceAt(header *config.Layer, off int) (reference, bool) {
	if header == nil {
		return reference{}, false
	}
	var lists [][]config.Tool
	for _, it := range header.Interlocutors {
		lists = append(lists, it.Tools)
	}
	for _, k := range header.Kits {
		lists = append(lists, k.Tools)
	}
	for _, tools := range lists {
		for _, tool := range tools {
			if tool.Target == "" || !tool.TargetSpan.Contains(off) {
				continue
			}
			switch tool.Kind {
			case "agent":
				return reference{kind: config.EntityInterlocutor, name: tool.Target}, true
			case "kit":
				return reference{kind: config.EntityKit, name: tool.Target}, true
			}
		}
	}
	return reference{}, false
}
