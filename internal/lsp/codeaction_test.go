package lsp

import (
	"bytes"
	"testing"

	"lectic/internal/config"
	"lectic/internal/diag"
	"lectic/internal/source"
)

func actionsAt(t *testing.T, s *Server, uri, text, substr string, delta int) []codeAction {
	t.Helper()
	v := s.view(uri)
	if v == nil {
		t.Fatalf("document %s not open", uri)
	}
	pos := positionOf(t, text, substr, delta)
	return buildCodeActions(v, codeActionParams{Range: lspRange{Start: pos, End: pos}}, s.lookupEnv)
}

func titles(actions []codeAction) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Title)
	}
	return out
}

func onlyEdit(t *testing.T, a codeAction) textEdit {
	t.Helper()
	if a.Edit == nil {
		t.Fatalf("%q has no edit", a.Title)
	}
	for _, edits := range a.Edit.Changes {
		if len(edits) == 1 {
			return edits[0]
		}
	}
	t.Fatalf("%q: expected exactly one edit, got %+v", a.Title, a.Edit.Changes)
	return textEdit{}
}

func TestMinimalHeaderAction(t *testing.T) {
	env := func(key string) (string, bool) {
		if key == "OPENAI_API_KEY" {
			return "sk-test", true
		}
		return "", false
	}
	s := newTestServer(t, &bytes.Buffer{}, ServerOptions{LookupEnv: env})
	dir := t.TempDir()

	text := "hello\n"
	uri := openDoc(t, s, dir, "bare.lec", text)
	actions := actionsAt(t, s, uri, text, "hello", 0)
	if len(actions) != 1 || actions[0].Title != "Insert minimal lectic header" {
		t.Fatalf("unexpected actions: %v", titles(actions))
	}
	edit := onlyEdit(t, actions[0])
	if edit.NewText != config.MinimalHeader("openai") || edit.Range.End != (position{}) {
		t.Fatalf("unexpected insert: %+v", edit)
	}

	blank := "---\n\n---\nhello\n"
	uri = openDoc(t, s, dir, "blank.lec", blank)
	actions = actionsAt(t, s, uri, blank, "hello", 0)
	if len(actions) != 1 {
		t.Fatalf("unexpected actions: %v", titles(actions))
	}
	edit = onlyEdit(t, actions[0])
	if edit.Range.Start != (position{}) || edit.Range.End != (position{Line: 3}) {
		t.Fatalf("blank header must be replaced, got %+v", edit.Range)
	}

	ok := openDoc(t, s, dir, "ok.lec", knownDoc)
	if got := actionsAt(t, s, ok, knownDoc, "Ghost", 0); len(got) != 0 {
		t.Fatalf("no actions expected for a valid header, got %v", titles(got))
	}
}

func TestRelativeFileURLAction(t *testing.T) {
	text := "---\ninterlocutor:\n  name: A\n  prompt: hi\n---\nsee [a](file://./alpha.txt) and [b](notes/b.md)\n"
	s := newTestServer(t, &bytes.Buffer{}, ServerOptions{})
	uri := openDoc(t, s, t.TempDir(), "chat.lec", text)
	v := s.view(uri)

	urlStart := positionOf(t, text, "file://", 0)
	urlEnd := positionOf(t, text, "alpha.txt", len("alpha.txt"))
	related := lspDiagnostic{
		Range: lspRange{Start: urlStart, End: urlEnd},
		Code:  diag.LnkRelativeFileURL.ID(),
	}
	actions := buildCodeActions(v, codeActionParams{
		Range:   lspRange{Start: urlStart, End: urlStart},
		Context: codeActionContext{Diagnostics: []lspDiagnostic{related}},
	}, noEnv)
	if len(actions) != 1 {
		t.Fatalf("unexpected actions: %v", titles(actions))
	}
	edit := onlyEdit(t, actions[0])
	if edit.NewText != "file://$PWD/alpha.txt" {
		t.Fatalf("unexpected replacement %q", edit.NewText)
	}
	if edit.Range.Start != urlStart || edit.Range.End != urlEnd {
		t.Fatalf("edit must cover the url, got %+v", edit.Range)
	}
	if len(actions[0].Diagnostics) != 1 {
		t.Fatalf("expected the warning to be attached, got %+v", actions[0].Diagnostics)
	}

	bare := actionsAt(t, s, uri, text, "notes/b.md", 1)
	if len(bare) != 1 || onlyEdit(t, bare[0]).NewText != "file://$PWD/notes/b.md" {
		t.Fatalf("unexpected bare path actions: %+v", bare)
	}
}

func TestNearMatchActions(t *testing.T) {
	text := "---\ninterlocutors:\n  - name: Alice\n    prompt: a\n  - name: Alicia\n    prompt: b\n  - name: Bob\n    prompt: c\n---\n:ask[Alise]\n"
	s := newTestServer(t, &bytes.Buffer{}, ServerOptions{})
	uri := openDoc(t, s, t.TempDir(), "chat.lec", text)

	actions := actionsAt(t, s, uri, text, "Alise", 1)
	got := titles(actions)
	if len(got) != 2 || got[0] != "Replace with Alice" || got[1] != "Replace with Alicia" {
		t.Fatalf("unexpected suggestions: %v", got)
	}
	if !actions[0].IsPreferred || actions[1].IsPreferred {
		t.Fatal("only the nearest suggestion is preferred")
	}
	edit := onlyEdit(t, actions[0])
	if edit.NewText != "Alice" || edit.Range.Start.Line != 9 || edit.Range.Start.Character != 5 {
		t.Fatalf("unexpected edit: %+v", edit)
	}

	known := actionsAt(t, s, uri, text, "name: Bob", 0)
	if len(known) != 0 {
		t.Fatalf("no actions expected in the header, got %v", titles(known))
	}
}

func TestExpandMacroResolvesLazily(t *testing.T) {
	text := macroDoc + ":nope[x]\n"
	s := newTestServer(t, &bytes.Buffer{}, ServerOptions{})
	uri := openDoc(t, s, t.TempDir(), "chat.lec", text)

	actions := actionsAt(t, s, uri, text, ":greet[", 2)
	if len(actions) != 1 || actions[0].Title != "Expand macro" {
		t.Fatalf("unexpected actions: %v", titles(actions))
	}
	deferred := actions[0]
	if deferred.Edit != nil || deferred.Data == nil {
		t.Fatalf("expansion must be deferred: %+v", deferred)
	}

	resolved := s.resolveCodeAction(deferred)
	edit := onlyEdit(t, *resolved)
	if edit.NewText != "Say `hi` to Bob" {
		t.Fatalf("unexpected expansion %q", edit.NewText)
	}
	start := source.OffsetToPosition(text, deferred.Data.Start)
	if edit.Range.Start != start {
		t.Fatalf("edit must start at the directive, got %+v", edit.Range)
	}

	stale := deferred
	data := *deferred.Data
	data.Version = 99
	stale.Data = &data
	if got := s.resolveCodeAction(stale); got.Edit != nil {
		t.Fatalf("stale action must not edit: %+v", got.Edit)
	}

	unknown := actionsAt(t, s, uri, text, ":nope[", 2)
	if len(unknown) != 1 {
		t.Fatalf("unexpected actions: %v", titles(unknown))
	}
	if got := s.resolveCodeAction(unknown[0]); got.Edit != nil {
		t.Fatalf("failed expansion must not edit: %+v", got.Edit)
	}
}

func TestFilterKinds(t *testing.T) {
	actions := []codeAction{
		{Title: "fix", Kind: kindQuickFix},
		{Title: "inline", Kind: kindRefactorInline},
	}
	got := filterKinds(actions, []string{"refactor"})
	if len(got) != 1 || got[0].Title != "inline" {
		t.Fatalf("unexpected filter result: %v", titles(got))
	}
}
