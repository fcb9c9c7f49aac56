package config

import (
	"strings"
	"testing"
)

func TestParseLayerSingularInterlocutor(t *testing.T) {
	text := "interlocutor:\n  name: Bram\n  prompt: hi\n  model: m1\n  tools:\n    - agent: Other\n    - kit: basics\n    - exec: ls\n"
	layer := ParseLayer(Source{Kind: SourceHeader}, text, 4)
	if layer.Err != nil {
		t.Fatalf("unexpected error: %v", layer.Err)
	}
	if len(layer.Interlocutors) != 1 {
		t.Fatalf("expected 1 interlocutor, got %d", len(layer.Interlocutors))
	}
	it := layer.Interlocutors[0]
	if it.Name != "Bram" || !it.HasPrompt || it.Model != "m1" {
		t.Fatalf("unexpected interlocutor: %+v", it)
	}
	nameLine := text[int(it.NameSpan.Start)-4 : int(it.NameSpan.End)-4]
	if nameLine != "name: Bram" {
		t.Fatalf("name span covers %q", nameLine)
	}
	if len(it.Tools) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(it.Tools))
	}
	if it.Tools[0].Kind != "agent" || it.Tools[0].Target != "Other" {
		t.Fatalf("unexpected agent tool: %+v", it.Tools[0])
	}
	if got := text[int(it.Tools[0].TargetSpan.Start)-4 : int(it.Tools[0].TargetSpan.End)-4]; got != "Other" {
		t.Fatalf("target span covers %q", got)
	}
	if it.Tools[1].Kind != "kit" || it.Tools[2].Kind != "exec" {
		t.Fatalf("unexpected tool kinds: %+v", it.Tools)
	}
	if !it.Declares("model") || it.Declares("provider") {
		t.Fatalf("unexpected declared fields")
	}
}

func TestParseLayerListsAndMacros(t *testing.T) {
	text := strings.Join([]string{
		"interlocutors:",
		"  - name: A",
		"    prompt: one",
		"  - name: B",
		"macros:",
		"  - name: Summ",
		"    expansion: summarize {{ARG}}",
		"kits:",
		"  - name: basics",
		"    tools:",
		"      - exec: ls",
		"hooks:",
		"  - on: [user_message, bogus]",
		"    do: echo",
		"",
	}, "\n")
	layer := ParseLayer(Source{Kind: SourceWorkspace}, text, 0)
	if layer.Err != nil {
		t.Fatalf("unexpected error: %v", layer.Err)
	}
	if len(layer.Interlocutors) != 2 || layer.Interlocutors[1].HasPrompt {
		t.Fatalf("unexpected interlocutors: %+v", layer.Interlocutors)
	}
	if len(layer.Macros) != 1 || layer.Macros[0].Expansion != "summarize {{ARG}}" {
		t.Fatalf("unexpected macros: %+v", layer.Macros)
	}
	if len(layer.Kits) != 1 || len(layer.Kits[0].Tools) != 1 {
		t.Fatalf("unexpected kits: %+v", layer.Kits)
	}
	if layer.Hooks == nil || !layer.Hooks.IsSequence || len(layer.Hooks.Items) != 1 {
		t.Fatalf("unexpected hooks: %+v", layer.Hooks)
	}
	events := layer.Hooks.Items[0].On
	if len(events) != 2 || events[1].Name != "bogus" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if got := text[events[1].Span.Start:events[1].Span.End]; got != "bogus" {
		t.Fatalf("event span covers %q", got)
	}
}

func TestParseLayerMalformed(t *testing.T) {
	text := "interlocutor:\n  name: A\nmacros: [unclosed\n"
	layer := ParseLayer(Source{Kind: SourceHeader}, text, 0)
	if layer.Err == nil {
		t.Fatalf("expected a YAML error")
	}
	if !layer.Empty() {
		t.Fatalf("broken layer must contribute nothing")
	}
	if scalarLayer := ParseLayer(Source{}, "just text", 0); scalarLayer.Err != ErrNotMapping {
		t.Fatalf("expected ErrNotMapping, got %v", scalarLayer.Err)
	}
	if empty := ParseLayer(Source{}, "  \n", 0); empty.Err != nil || !empty.Empty() {
		t.Fatalf("blank text must parse to an empty layer")
	}
}

func TestParseLayerWideRunesBeforeValue(t *testing.T) {
	text := "interlocutor:\n  name: Zoë\n  tools:\n    - agent: Zoë\n"
	layer := ParseLayer(Source{}, text, 0)
	tool := layer.Interlocutors[0].Tools[0]
	if got := text[tool.TargetSpan.Start:tool.TargetSpan.End]; got != "Zoë" {
		t.Fatalf("target span covers %q", got)
	}
}

func TestMergeInheritsFields(t *testing.T) {
	system := ParseLayer(Source{Kind: SourceSystem, Path: "/sys"}, "interlocutor:\n  name: Bram\n  prompt: base\n  provider: anthropic\n", 0)
	header := ParseLayer(Source{Kind: SourceHeader}, "interlocutor:\n  name: Bram\n  model: m2\n", 0)
	spec := Merge(system, header)
	it := spec.Interlocutor("Bram")
	if it == nil {
		t.Fatalf("Bram missing")
	}
	if !it.HasPrompt || it.Prompt != "base" || it.PromptSource.Kind != SourceSystem {
		t.Fatalf("prompt not inherited: %+v", it)
	}
	if it.Provider != "anthropic" || it.Model != "m2" || it.Source.Kind != SourceHeader {
		t.Fatalf("unexpected merge: %+v", it)
	}
	if len(spec.Interlocutors) != 1 {
		t.Fatalf("override must not duplicate: %d", len(spec.Interlocutors))
	}
}

func TestMergeMacrosFoldCase(t *testing.T) {
	a := ParseLayer(Source{Kind: SourceSystem}, "macros:\n  - name: Greet\n    expansion: one\n", 0)
	b := ParseLayer(Source{Kind: SourceHeader}, "macros:\n  - name: GREET\n    expansion: two\n", 0)
	spec := Merge(a, b)
	if len(spec.Macros) != 1 {
		t.Fatalf("expected one macro, got %d", len(spec.Macros))
	}
	if m := spec.Macro("greet"); m == nil || m.Expansion != "two" {
		t.Fatalf("unexpected macro: %+v", m)
	}
}

func TestMinimalHeader(t *testing.T) {
	got := MinimalHeader("anthropic")
	layer := ParseLayer(Source{}, strings.Trim(got, "-\n"), 0)
	if len(layer.Interlocutors) != 1 || layer.Interlocutors[0].Provider != "anthropic" {
		t.Fatalf("minimal header does not parse: %q", got)
	}
	if strings.Contains(MinimalHeader(""), "provider") {
		t.Fatalf("empty provider must be omitted")
	}
}

func TestDefaultProviderPriority(t *testing.T) {
	env := map[string]string{"OPENAI_API_KEY": "x", "GEMINI_API_KEY": "y"}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }
	if p, ok := DefaultProvider(lookup); !ok || p != "gemini" {
		t.Fatalf("expected gemini, got %q", p)
	}
	none := func(string) (string, bool) { return "", false }
	if _, ok := DefaultProvider(none); ok {
		t.Fatalf("expected no provider")
	}
}
