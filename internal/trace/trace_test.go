package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelRequest, FormatText)
	req := Begin(tr, ScopeRequest, "textDocument/hover", 0)
	Begin(tr, ScopeFeature, "hover", req.ID()).End("")
	req.End("ok")
	out := buf.String()
	if strings.Contains(out, "] → hover") || strings.Contains(out, "  → hover") {
		t.Fatalf("feature spans must be filtered at request level:\n%s", out)
	}
	if strings.Count(out, "textDocument/hover") != 2 {
		t.Fatalf("expected begin and end of the request span:\n%s", out)
	}
}

func TestErrorsPassEveryLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelError, FormatNDJSON)
	Begin(tr, ScopeServer, "initialize", 0).End("")
	Error(tr, ScopeFeature, "hover", errors.New("boom"))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the error event, got %q", buf.String())
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("invalid NDJSON: %v", err)
	}
	if ev["kind"] != "error" || ev["detail"] != "boom" {
		t.Fatalf("unexpected event %v", ev)
	}
}

func TestContextPropagatesParent(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	ctx := WithTracer(context.Background(), tr)
	outer, ctx := BeginCtx(ctx, ScopeRequest, "outer")
	inner, _ := BeginCtx(ctx, ScopeFeature, "inner")
	inner.End("")
	outer.End("")
	if !strings.Contains(buf.String(), `"parent_id":`) {
		t.Fatalf("inner span must carry its parent:\n%s", buf.String())
	}
	if FromContext(context.Background()) != Nop {
		t.Fatalf("missing tracer must be Nop")
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "request", "detail", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("phase"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}
