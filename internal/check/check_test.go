package check

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lectic/internal/config"
	"lectic/internal/diag"
	"lectic/internal/markdown"
	"lectic/internal/models"
)

func run(text string, opts Options) []diag.Diagnostic {
	if opts.Resolver == nil {
		opts.Resolver = &config.Resolver{}
	}
	return Document(markdown.Parse(text), text, opts)
}

func withMessage(ds []diag.Diagnostic, substr string) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range ds {
		if strings.Contains(d.Message, substr) {
			out = append(out, d)
		}
	}
	return out
}

func spanText(text string, d diag.Diagnostic) string {
	return text[d.Primary.Start:d.Primary.End]
}

func workspace(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.WorkspaceFileName), []byte(yaml), 0o600); err != nil {
		t.Fatalf("write workspace config: %v", err)
	}
	return dir
}

func TestMissingHeader(t *testing.T) {
	ds := withMessage(run("just a message\n", Options{}), "YAML Header is missing")
	if len(ds) != 1 || ds[0].Primary.Start != 0 {
		t.Fatalf("expected one header diagnostic at start, got %+v", ds)
	}
	text := "---\nmacros: []\n---\nhello\n"
	if ds := withMessage(run(text, Options{}), "YAML Header is missing"); len(ds) != 1 {
		t.Fatalf("a header without interlocutors must be reported, got %+v", ds)
	}
	ok := "---\ninterlocutor:\n  name: A\n  prompt: p\n---\nhi\n"
	if ds := run(ok, Options{}); len(ds) != 0 {
		t.Fatalf("expected a clean document, got %+v", ds)
	}
}

func TestDuplicateInterlocutors(t *testing.T) {
	text := "---\ninterlocutors:\n  - name: A\n    prompt: one\n  - name: A\n    prompt: two\n---\n"
	ds := withMessage(run(text, Options{}), "Duplicate interlocutor name")
	if len(ds) != 2 {
		t.Fatalf("expected 2 duplicate diagnostics, got %+v", ds)
	}
	if ds[0].Primary == ds[1].Primary {
		t.Fatalf("each occurrence needs its own range")
	}
	for _, d := range ds {
		if got := spanText(text, d); got != "name: A" {
			t.Fatalf("duplicate ranged at %q", got)
		}
		if len(d.Notes) != 1 {
			t.Fatalf("expected a note pointing at the other occurrence")
		}
	}
}

func TestDuplicateMacrosFoldCase(t *testing.T) {
	text := "---\ninterlocutor:\n  name: A\n  prompt: p\nmacros:\n  - name: sum\n    expansion: x\n  - name: SUM\n    expansion: y\n---\n"
	if ds := withMessage(run(text, Options{}), "Duplicate macro name"); len(ds) != 2 {
		t.Fatalf("expected 2 macro duplicates, got %+v", ds)
	}
}

func TestInheritedNameIsNotDuplicate(t *testing.T) {
	dir := workspace(t, "interlocutor:\n  name: Bram\n  prompt: from workspace\n")
	text := "---\ninterlocutor:\n  name: Bram\n  prompt: local\n---\n"
	ds := run(text, Options{WorkspaceDir: dir})
	if got := withMessage(ds, "Duplicate interlocutor"); len(got) != 0 {
		t.Fatalf("inherited name flagged: %+v", got)
	}
	system := filepath.Join(t.TempDir(), "lectic.yaml")
	if err := os.WriteFile(system, []byte("interlocutor:\n  name: Bram\n  prompt: sys\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	ds = run(text, Options{Resolver: &config.Resolver{SystemPath: system}})
	if got := withMessage(ds, "Duplicate interlocutor"); len(got) != 0 {
		t.Fatalf("system name flagged: %+v", got)
	}
}

func TestMissingPromptSuppressedByWorkspace(t *testing.T) {
	text := "---\ninterlocutor:\n  name: Bram\n---\n"
	if ds := withMessage(run(text, Options{}), "needs a prompt"); len(ds) != 1 {
		t.Fatalf("expected a missing prompt diagnostic, got %+v", ds)
	}
	dir := workspace(t, "interlocutor:\n  name: Bram\n  prompt: from workspace\n")
	if ds := withMessage(run(text, Options{WorkspaceDir: dir}), "needs a prompt"); len(ds) != 0 {
		t.Fatalf("workspace prompt must suppress, got %+v", ds)
	}
}

func TestUnknownAskReference(t *testing.T) {
	text := "---\ninterlocutor:\n  name: Known\n  prompt: p\n---\n:ask[ Ghost ]\n:aside[Known]\n"
	ds := withMessage(run(text, Options{}), "Unknown interlocutor in :ask/:aside")
	if len(ds) != 1 {
		t.Fatalf("expected one unknown reference, got %+v", ds)
	}
	if got := spanText(text, ds[0]); got != " Ghost " {
		t.Fatalf("expected the inner range, got %q", got)
	}
	if ds := withMessage(run(strings.Replace(text, "Known\n  prompt", "known\n  prompt", 1), Options{}), ":ask/:aside: Known"); len(ds) != 1 {
		t.Fatalf("names compare case-sensitively, got %+v", ds)
	}
}

func TestUnknownReferenceInsideOwnTurn(t *testing.T) {
	text := "---\ninterlocutor:\n  name: Known\n  prompt: p\n---\n:::Known\n:ask[Ghost]\n:::\n"
	if ds := withMessage(run(text, Options{}), "Unknown interlocutor in :ask"); len(ds) != 0 {
		t.Fatalf("directive inside an assistant block must be skipped, got %+v", ds)
	}
}

func TestToolTargets(t *testing.T) {
	text := strings.Join([]string{
		"---",
		"interlocutors:",
		"  - name: A",
		"    prompt: p",
		"    tools:",
		"      - agent: B",
		"      - agent: Nobody",
		"      - kit: missing",
		"  - name: B",
		"    prompt: p",
		"---",
		"",
	}, "\n")
	ds := run(text, Options{})
	agents := withMessage(ds, "Agent tool references unknown interlocutor")
	if len(agents) != 1 || spanText(text, agents[0]) != "agent: Nobody" {
		t.Fatalf("unexpected agent diagnostics %+v", agents)
	}
	if kits := withMessage(ds, "Unknown kit: missing"); len(kits) != 1 {
		t.Fatalf("unexpected kit diagnostics %+v", kits)
	}
}

func TestHooksShape(t *testing.T) {
	text := strings.Join([]string{
		"---",
		"interlocutor:",
		"  name: A",
		"  prompt: p",
		"  hooks: not-a-list",
		"hooks:",
		"  - on: user_message",
		"  - on: [bogus]",
		"    do: echo",
		"---",
		"",
	}, "\n")
	ds := run(text, Options{})
	if got := withMessage(ds, "hooks must be a list"); len(got) != 1 {
		t.Fatalf("expected non-list hooks error, got %+v", got)
	}
	if got := withMessage(ds, "missing a 'do'"); len(got) != 1 {
		t.Fatalf("expected missing do error, got %+v", got)
	}
	unknown := withMessage(ds, "Unknown hook event")
	if len(unknown) != 1 || !strings.Contains(unknown[0].Message, "run_end") {
		t.Fatalf("expected the allowed set in the message, got %+v", unknown)
	}
}

func TestRelativeFileURL(t *testing.T) {
	text := "---\ninterlocutor:\n  name: A\n  prompt: p\n---\nsee [a](file://./alpha.txt) and [b](file://$PWD/b.txt) and [c](file:///abs)\n"
	ds := withMessage(run(text, Options{}), "Relative paths are not allowed in file:// URLs")
	if len(ds) != 1 {
		t.Fatalf("expected one warning, got %+v", ds)
	}
	d := ds[0]
	if d.Severity != diag.SevWarning || spanText(text, d) != "file://./alpha.txt" {
		t.Fatalf("unexpected warning %+v", d)
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Edits[0].NewText != "file://$PWD/alpha.txt" {
		t.Fatalf("unexpected fix %+v", d.Fixes)
	}
}

func TestAbsoluteFileURL(t *testing.T) {
	cases := map[string]string{
		"file://./alpha.txt":  "file://$PWD/alpha.txt",
		"file://docs/../a.md": "file://$PWD/a.md",
		"notes/b.md":          "file://$PWD/notes/b.md",
	}
	for in, want := range cases {
		got, ok := AbsoluteFileURL(in)
		if !ok || got != want {
			t.Fatalf("AbsoluteFileURL(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	for _, in := range []string{"https://x.y/z", "file:///abs", "file://${PWD}/x", "/abs", "#anchor", "mailto:a@b"} {
		if _, ok := AbsoluteFileURL(in); ok {
			t.Fatalf("AbsoluteFileURL(%q) should not apply", in)
		}
	}
}

func TestHeaderSyntaxError(t *testing.T) {
	text := "---\ninterlocutor: [oops\n---\n"
	if ds := withMessage(run(text, Options{}), "Invalid YAML"); len(ds) != 1 {
		t.Fatalf("expected a YAML syntax diagnostic, got %+v", ds)
	}
}

func TestModelDiagnosticsGatedByRegistry(t *testing.T) {
	text := "---\ninterlocutor:\n  name: A\n  prompt: p\n  provider: anthropic\n  model: claude-nope\n---\n"
	doc := markdown.Parse(text)
	reg := models.NewRegistry(nil)
	opts := Options{Resolver: &config.Resolver{}, Models: reg}
	if ds := Models(doc, text, opts); len(ds) != 0 {
		t.Fatalf("absent list must yield nothing, got %+v", ds)
	}
	reg.Seed("anthropic", nil)
	if ds := Models(doc, text, opts); len(ds) != 0 {
		t.Fatalf("empty list must yield nothing, got %+v", ds)
	}
	reg.Seed("anthropic", []string{"claude-a", "claude-b"})
	ds := Models(doc, text, opts)
	if len(ds) != 1 || !strings.Contains(ds[0].Message, "Unknown model for anthropic") {
		t.Fatalf("expected one unknown model, got %+v", ds)
	}
	if got := spanText(text, ds[0]); got != "model: claude-nope" {
		t.Fatalf("model diagnostic ranged at %q", got)
	}
	reg.Seed("anthropic", []string{"claude-nope"})
	if ds := Models(doc, text, opts); len(ds) != 0 {
		t.Fatalf("known model flagged: %+v", ds)
	}
	if got := ModelProviders(Resolve(doc, text, opts)); len(got) != 1 || got[0] != "anthropic" {
		t.Fatalf("unexpected providers %v", got)
	}
}

func TestMaxDiagnostics(t *testing.T) {
	text := "---\ninterlocutor:\n  name: A\n  prompt: p\n---\n:ask[x] :ask[y] :ask[z]\n"
	if ds := run(text, Options{MaxDiagnostics: 2}); len(ds) != 2 {
		t.Fatalf("expected the limit to apply, got %d", len(ds))
	}
}
