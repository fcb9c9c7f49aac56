package source

import (
	"fmt"

	"fortio.org/safecast"
)

const maxUint32 = ^uint32(0)

// Span is a half-open byte range [Start, End).
type Span struct {
	Start uint32
	End   uint32
}

// Range is a half-open position range.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// NewSpan builds a span from int offsets, clamping negatives to zero and
// swapping reversed bounds.
func NewSpan(start, end int) Span {
	if end < start {
		start, end = end, start
	}
	return Span{Start: toUint32(start), End: toUint32(end)}
}

func toUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

// Contains reports whether offset lies within the span. The end offset is
// included so a cursor placed right after a token still hits it.
func (s Span) Contains(offset int) bool {
	return offset >= int(s.Start) && offset <= int(s.End)
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Shift moves the span right by n bytes.
func (s Span) Shift(n int) Span {
	return NewSpan(int(s.Start)+n, int(s.End)+n)
}

// LineSpan returns the span from offset to the end of its line, excluding
// the line terminator.
func LineSpan(text string, offset int) Span {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	end := lineEnd(text, offset)
	if end > offset && text[end-1] == '\r' {
		end--
	}
	return NewSpan(offset, end)
}
