package source

import "unicode/utf8"

// Position is a zero-based line/character pair. Character counts UTF-16
// code units, which is what LSP clients send by default.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Less reports whether p comes before other.
func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}

// OffsetToPosition converts a byte offset into a position. A "\r\n" pair is
// a single line break; a lone '\r' is an ordinary character. Offsets past
// the end of text clamp to the end, and a rune cut by offset is not counted.
func OffsetToPosition(text string, offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	var pos Position
	for i := 0; i < offset; {
		c := text[i]
		if c == '\n' {
			pos.Line++
			pos.Character = 0
			i++
			continue
		}
		if c == '\r' && i+1 < offset && text[i+1] == '\n' {
			pos.Line++
			pos.Character = 0
			i += 2
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if i+size > offset {
			break
		}
		pos.Character += utf16Len(r)
		i += size
	}
	return pos
}

// PositionToOffset is the inverse of OffsetToPosition. A character past the
// end of its line clamps to the line break; a line past the end of text
// yields len(text).
func PositionToOffset(text string, pos Position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	i := 0
	for line := 0; line < pos.Line; line++ {
		next := indexNewline(text, i)
		if next < 0 {
			return len(text)
		}
		i = next + 1
	}
	return advanceUnits(text, i, lineEnd(text, i), pos.Character)
}

// advanceUnits walks forward from start until want UTF-16 units have been
// consumed or end is reached, never splitting a rune.
func advanceUnits(text string, start, end, want int) int {
	units := 0
	i := start
	for i < end && units < want {
		r, size := utf8.DecodeRuneInString(text[i:end])
		need := utf16Len(r)
		if units+need > want {
			break
		}
		units += need
		i += size
	}
	return i
}

// countUnits returns the number of UTF-16 units in text[start:end], skipping
// a trailing partial rune.
func countUnits(text string, start, end int) int {
	units := 0
	for i := start; i < end; {
		r, size := utf8.DecodeRuneInString(text[i:])
		if i+size > end {
			break
		}
		units += utf16Len(r)
		i += size
	}
	return units
}

func utf16Len(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

func indexNewline(text string, from int) int {
	for i := from; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}
	return -1
}

// lineEnd returns the offset of the '\n' terminating the line that starts at
// from, or len(text).
func lineEnd(text string, from int) int {
	if idx := indexNewline(text, from); idx >= 0 {
		return idx
	}
	return len(text)
}
