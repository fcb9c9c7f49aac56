package source

import (
	"strings"
	"testing"
)

func TestOffsetToPositionBasic(t *testing.T) {
	text := "ab\ncd\r\nef"
	cases := []struct {
		offset int
		want   Position
	}{
		{0, Position{0, 0}},
		{2, Position{0, 2}},
		{3, Position{1, 0}},
		{5, Position{1, 2}},
		{6, Position{1, 3}},
		{7, Position{2, 0}},
		{9, Position{2, 2}},
		{100, Position{2, 2}},
		{-4, Position{0, 0}},
	}
	for _, tc := range cases {
		if got := OffsetToPosition(text, tc.offset); got != tc.want {
			t.Fatalf("offset %d: expected %+v, got %+v", tc.offset, tc.want, got)
		}
	}
}

func TestPositionToOffsetClamps(t *testing.T) {
	text := "ab\r\ncd"
	if got := PositionToOffset(text, Position{Line: 0, Character: 10}); got != 3 {
		t.Fatalf("expected clamp to line break at 3, got %d", got)
	}
	if got := PositionToOffset(text, Position{Line: 5, Character: 0}); got != len(text) {
		t.Fatalf("expected end of text, got %d", got)
	}
	if got := PositionToOffset(text, Position{Line: -1, Character: 0}); got != 0 {
		t.Fatalf("expected 0 for negative line, got %d", got)
	}
}

func TestPositionRoundTrip(t *testing.T) {
	texts := map[string]string{
		"lf":    "---\ninterlocutor:\n  name: Bram\n---\nhello :ask[Bram]\n\nbye\n",
		"crlf":  "---\r\ninterlocutor:\r\n  name: Bram\r\n---\r\nhello :ask[Bram]\r\n\r\nbye\r\n",
		"mixed": "one\r\ntwo\nthree\r\n\nfour",
		"wide":  "é🙂\r\nx🙂y\n",
		"cr":    "a\rb\r\n\r",
	}
	for name, text := range texts {
		idx := NewLineIndex(text)
		for o := 0; o <= len(text); o++ {
			pos := OffsetToPosition(text, o)
			back := PositionToOffset(text, pos)
			if again := OffsetToPosition(text, back); again != pos {
				t.Fatalf("%s: offset %d -> %+v -> %d -> %+v", name, o, pos, back, again)
			}
			if got := idx.Position(o); got != pos {
				t.Fatalf("%s: index position for %d = %+v, scan = %+v", name, o, got, pos)
			}
			if got := idx.Offset(pos); got != back {
				t.Fatalf("%s: index offset for %+v = %d, scan = %d", name, pos, got, back)
			}
		}
	}
}

func TestPositionRoundTripExactOnRuneBoundaries(t *testing.T) {
	text := strings.Repeat("line 🙂\r\n", 4) + "tail\n"
	for o := 0; o <= len(text); o++ {
		if o < len(text) && text[o]&0xC0 == 0x80 {
			continue
		}
		if got := PositionToOffset(text, OffsetToPosition(text, o)); got != o {
			t.Fatalf("offset %d round-tripped to %d", o, got)
		}
	}
}

func TestUTF16Columns(t *testing.T) {
	text := "🙂x"
	if got := OffsetToPosition(text, len("🙂")); got.Character != 2 {
		t.Fatalf("expected surrogate pair to count as 2 units, got %d", got.Character)
	}
	if got := PositionToOffset(text, Position{Line: 0, Character: 1}); got != 0 {
		t.Fatalf("expected mid-pair character to stay on rune start, got %d", got)
	}
}
