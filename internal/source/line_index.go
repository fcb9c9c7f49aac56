package source

import "sort"

// LineIndex caches line starts so repeated conversions over the same text
// avoid rescanning from the beginning. Results match OffsetToPosition and
// PositionToOffset exactly.
type LineIndex struct {
	text   string
	starts []int
}

// NewLineIndex builds an index over text.
func NewLineIndex(text string) *LineIndex {
	starts := make([]int, 1, 16)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, starts: starts}
}

// Text returns the indexed text.
func (l *LineIndex) Text() string {
	return l.text
}

// LineCount returns the number of lines; an empty text has one line.
func (l *LineIndex) LineCount() int {
	return len(l.starts)
}

// LineStart returns the offset of the first byte of line, clamped.
func (l *LineIndex) LineStart(line int) int {
	if line <= 0 {
		return 0
	}
	if line >= len(l.starts) {
		return len(l.text)
	}
	return l.starts[line]
}

// LineEnd returns the offset of the '\n' ending line (or len(text)).
func (l *LineIndex) LineEnd(line int) int {
	if line < 0 {
		return 0
	}
	if line+1 >= len(l.starts) {
		return len(l.text)
	}
	return l.starts[line+1] - 1
}

// Position converts an offset into a position.
func (l *LineIndex) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(l.text) {
		offset = len(l.text)
	}
	line := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line, Character: countUnits(l.text, l.starts[line], offset)}
}

// Offset converts a position into an offset.
func (l *LineIndex) Offset(pos Position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	if pos.Line >= len(l.starts) {
		return len(l.text)
	}
	start := l.starts[pos.Line]
	return advanceUnits(l.text, start, l.LineEnd(pos.Line), pos.Character)
}

// Range converts a span into a pair of positions.
func (l *LineIndex) Range(span Span) Range {
	return Range{
		Start: l.Position(int(span.Start)),
		End:   l.Position(int(span.End)),
	}
}
