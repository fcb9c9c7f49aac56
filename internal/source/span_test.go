package source

import "testing"

func TestNewSpanNormalizes(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		expected   Span
	}{
		{name: "ordered", start: 2, end: 5, expected: Span{Start: 2, End: 5}},
		{name: "reversed", start: 5, end: 2, expected: Span{Start: 2, End: 5}},
		{name: "negative", start: -3, end: 4, expected: Span{Start: 0, End: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewSpan(tt.start, tt.end); got != tt.expected {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSpanContainsIncludesEnd(t *testing.T) {
	s := NewSpan(4, 8)
	for _, off := range []int{4, 6, 8} {
		if !s.Contains(off) {
			t.Fatalf("expected %d inside %v", off, s)
		}
	}
	if s.Contains(3) || s.Contains(9) {
		t.Fatalf("unexpected containment for %v", s)
	}
}

func TestLineSpanStopsBeforeCRLF(t *testing.T) {
	text := "  name: A\r\n  prompt: x\n"
	got := LineSpan(text, 2)
	if text[got.Start:got.End] != "name: A" {
		t.Fatalf("unexpected line span %q", text[got.Start:got.End])
	}
}

func TestFileSetLoadCaches(t *testing.T) {
	reads := 0
	fs := NewFileSetWithReader(func(string) ([]byte, error) {
		reads++
		return []byte("a\nb"), nil
	})
	f, err := fs.Load("/tmp/x.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := fs.Load("/tmp/x.yaml"); err != nil {
		t.Fatalf("load again: %v", err)
	}
	if reads != 1 {
		t.Fatalf("expected a single read, got %d", reads)
	}
	r := f.Range(NewSpan(2, 3))
	if r.Start != (Position{Line: 1, Character: 0}) || r.End != (Position{Line: 1, Character: 1}) {
		t.Fatalf("unexpected range %+v", r)
	}
}
