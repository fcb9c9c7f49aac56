package lsp

import (
	"context"
	"encoding/json"
	"strings"

	"golang.org/x/sync/errgroup"

	"lectic/internal/config"
)

func (s *Server) handleWorkspaceSymbol(msg *rpcMessage) error {
	var params workspaceSymbolParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	roots := s.workspaceRoots()
	result := safely(s, "workspace/symbol", func() []symbolInformation {
		return buildWorkspaceSymbols(s.baseCtx, s.resolver, roots, params.Query)
	})
	return s.sendResponse(msg.ID, result)
}

type symbolKey struct {
	path string
	name string
	kind int
}

// buildWorkspaceSymbols lists interlocutors and macros declared in the
// system config and in each root's workspace config. Chains are read in
// parallel; the system config is listed first.
func buildWorkspaceSymbols(ctx context.Context, r *config.Resolver, roots []string, query string) []symbolInformation {
	dirs := append([]string{""}, roots...)
	chains := make([]*config.Resolution, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	for i, dir := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chains[i] = r.Chain(dir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil
	}

	q := strings.ToLower(strings.TrimSpace(query))
	seen := make(map[symbolKey]bool)
	var out []symbolInformation
	add := func(res *config.Resolution, name string, kind int, decl config.Location) {
		if name == "" || !strings.Contains(strings.ToLower(name), q) {
			return
		}
		key := symbolKey{path: decl.Source.Path, name: name, kind: kind}
		if seen[key] {
			return
		}
		loc, ok := fileLocation(res.Files, decl)
		if !ok {
			return
		}
		seen[key] = true
		out = append(out, symbolInformation{
			Name:          name,
			Kind:          kind,
			Location:      loc,
			ContainerName: decl.Source.Kind.String(),
		})
	}
	for _, res := range chains {
		if res == nil {
			continue
		}
		for _, layer := range res.Layers {
			for _, it := range layer.Interlocutors {
				add(res, it.Name, symbolKindClass, config.Location{Source: it.Source, Span: it.NameSpan})
			}
			for _, m := range layer.Macros {
				add(res, m.Name, symbolKindFunction, config.Location{Source: m.Source, Span: m.NameSpan})
			}
		}
	}
	return out
}
