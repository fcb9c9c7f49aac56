package lsp

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"lectic/internal/preview"
)

const macroDoc = "---\n" +
	"interlocutor:\n" +
	"  name: Known\n" +
	"  prompt: hi\n" +
	"macros:\n" +
	"  - name: greet\n" +
	"    expansion: Say `hi` to {{ARG}}\n" +
	"---\n" +
	":macro[greet] and :greet[Bob] and :ask[Known]\n"

func hoverAt(t *testing.T, s *Server, uri, text, substr string, delta int) *hover {
	t.Helper()
	v := s.view(uri)
	if v == nil {
		t.Fatalf("document %s not open", uri)
	}
	return buildHover(v, positionOf(t, text, substr, delta), preview.Options{})
}

func TestHoverBuiltinDirective(t *testing.T) {
	s := newTestServer(t, &bytes.Buffer{}, ServerOptions{})
	uri := openDoc(t, s, t.TempDir(), "chat.lec", macroDoc)

	h := hoverAt(t, s, uri, macroDoc, ":ask[", 2)
	if h == nil || !strings.Contains(h.Contents.Value, "switches the conversation") {
		t.Fatalf("unexpected hover: %+v", h)
	}
	if h.Contents.Kind != "markdown" || h.Range == nil || h.Range.Start.Line != 8 {
		t.Fatalf("unexpected hover shape: %+v", h)
	}
}

func TestHoverMacroPreview(t *testing.T) {
	s := newTestServer(t, &bytes.Buffer{}, ServerOptions{})
	uri := openDoc(t, s, t.TempDir(), "chat.lec", macroDoc)

	for _, substr := range []string{":macro[", ":greet["} {
		h := hoverAt(t, s, uri, macroDoc, substr, 3)
		if h == nil {
			t.Fatalf("%s: expected hover", substr)
		}
		if !strings.Contains(h.Contents.Value, "**Macro** `greet`") {
			t.Fatalf("%s: missing title: %q", substr, h.Contents.Value)
		}
		if !strings.Contains(h.Contents.Value, "Say \\`hi\\` to {{ARG}}") {
			t.Fatalf("%s: backticks must be escaped: %q", substr, h.Contents.Value)
		}
	}
}

func TestHoverLinkPreview(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "alpha.txt"), "hello from alpha\n")
	text := "---\ninterlocutor:\n  name: A\n  prompt: hi\n---\nsee [a](file://$PWD/alpha.txt) and [b](https://example.com)\n"
	s := newTestServer(t, &bytes.Buffer{}, ServerOptions{})
	uri := openDoc(t, s, dir, "chat.lec", text)

	h := hoverAt(t, s, uri, text, "file://", 2)
	if h == nil || !strings.Contains(h.Contents.Value, "hello from alpha") {
		t.Fatalf("expected a file preview, got %+v", h)
	}
	if remote := hoverAt(t, s, uri, text, "https://", 2); remote != nil {
		t.Fatalf("remote links have no preview, got %+v", remote)
	}
}

func TestHoverAttachmentBlock(t *testing.T) {
	text := "---\ninterlocutor:\n  name: A\n  prompt: hi\n---\n" +
		"<inline-attachment kind=\"cmd\">\n<command>ls -la</command>\n<content type=\"text/plain\">\n┆total 0\n</content>\n</inline-attachment>\n"
	s := newTestServer(t, &bytes.Buffer{}, ServerOptions{})
	uri := openDoc(t, s, t.TempDir(), "chat.lec", text)

	h := hoverAt(t, s, uri, text, "<command>", 1)
	if h == nil {
		t.Fatal("expected hover over the attachment")
	}
	if !strings.Contains(h.Contents.Value, "### Inline attachment (cmd)") || strings.Contains(h.Contents.Value, "┆") {
		t.Fatalf("unexpected attachment hover: %q", h.Contents.Value)
	}
}

func TestHoverNothingUnderCursor(t *testing.T) {
	s := newTestServer(t, &bytes.Buffer{}, ServerOptions{})
	uri := openDoc(t, s, t.TempDir(), "chat.lec", knownDoc)
	if h := hoverAt(t, s, uri, knownDoc, "prompt", 1); h != nil {
		t.Fatalf("expected no hover, got %+v", h)
	}
}
