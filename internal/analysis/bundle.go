// Package analysis turns one scan of a document into a flat, offset-addressed
// index that every editor feature queries instead of re-walking the parse.
package analysis

import (
	"sort"
	"strings"

	"lectic/internal/markdown"
)

// BlockKind tells whose turn a body region belongs to.
type BlockKind uint8

const (
	BlockUser BlockKind = iota
	BlockAssistant
)

func (k BlockKind) String() string {
	if k == BlockAssistant {
		return "assistant"
	}
	return "user"
}

// Span is an absolute byte range.
type Span struct {
	Start int
	End   int
}

// Contains reports whether off lies within the span, end inclusive.
func (s Span) Contains(off int) bool {
	return off >= s.Start && off <= s.End
}

// DirectiveSpan locates a text directive and its bracket contents.
// AbsStart <= InnerStart <= InnerEnd <= AbsEnd.
type DirectiveSpan struct {
	Key        string
	AbsStart   int
	AbsEnd     int
	InnerStart int
	InnerEnd   int
}

// Inner returns the bracket contents.
func (d DirectiveSpan) Inner(text string) string {
	return text[d.InnerStart:d.InnerEnd]
}

// LinkSpan locates a link node and its destination.
type LinkSpan struct {
	AbsStart int
	AbsEnd   int
	URLStart int
	URLEnd   int
}

// URL returns the destination text.
func (l LinkSpan) URL(text string) string {
	return text[l.URLStart:l.URLEnd]
}

// BlockSpan is one conversational turn.
type BlockSpan struct {
	Kind     BlockKind
	AbsStart int
	AbsEnd   int
	Name     string
}

// Bundle is immutable once built; a new text version gets a new bundle.
type Bundle struct {
	HeaderOffset           int
	Directives             []DirectiveSpan
	Links                  []LinkSpan
	Blocks                 []BlockSpan
	ToolCallBlocks         []Span
	InlineAttachmentBlocks []Span
}

const (
	toolCallTag         = "tool-call"
	inlineAttachmentTag = "inline-attachment"
)

// Build indexes doc. It performs no validation.
func Build(doc *markdown.Document, text string) *Bundle {
	b := &Bundle{HeaderOffset: doc.Body}
	for _, n := range doc.Nodes {
		switch n.Kind {
		case markdown.KindTextDirective:
			b.Directives = append(b.Directives, directiveSpan(text, n))
		case markdown.KindLink:
			b.Links = append(b.Links, linkSpan(text, n))
		case markdown.KindHTMLBlock:
			raw := text[n.Start:n.End]
			switch {
			case n.Name == toolCallTag && strings.Contains(raw, "</"+toolCallTag+">"):
				b.ToolCallBlocks = append(b.ToolCallBlocks, Span{n.Start, n.End})
			case n.Name == inlineAttachmentTag && strings.Contains(raw, "</"+inlineAttachmentTag+">"):
				b.InlineAttachmentBlocks = append(b.InlineAttachmentBlocks, Span{n.Start, n.End})
			}
		}
	}
	b.Blocks = buildBlocks(doc, len(text))
	return b
}

func directiveSpan(text string, n markdown.Node) DirectiveSpan {
	d := DirectiveSpan{
		Key:        strings.ToLower(n.Name),
		AbsStart:   n.Start,
		AbsEnd:     n.End,
		InnerStart: n.End,
		InnerEnd:   n.End,
	}
	raw := text[n.Start:n.End]
	open := strings.IndexByte(raw, '[')
	if open < 0 {
		return d
	}
	depth := 0
	for i := open; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				d.InnerStart = n.Start + open + 1
				d.InnerEnd = n.Start + i
				return d
			}
		}
	}
	d.InnerStart = n.Start + open + 1
	return d
}

func linkSpan(text string, n markdown.Node) LinkSpan {
	start, end := resolveURL(text[n.Start:n.End])
	return LinkSpan{
		AbsStart: n.Start,
		AbsEnd:   n.End,
		URLStart: n.Start + start,
		URLEnd:   n.Start + end,
	}
}

// resolveURL finds the destination inside a link node's raw text: the
// contents of "<...>" or "(...)", falling back to the run of non-whitespace
// after "(" when no closing delimiter exists.
func resolveURL(raw string) (int, int) {
	if strings.HasPrefix(raw, "<") {
		if gt := strings.IndexByte(raw, '>'); gt > 0 {
			return 1, gt
		}
		return 1, len(raw)
	}
	if idx := strings.Index(raw, "]("); idx >= 0 {
		p := skipSpaces(raw, idx+2)
		if p < len(raw) && raw[p] == '<' {
			if gt := strings.IndexByte(raw[p+1:], '>'); gt >= 0 {
				return p + 1, p + 1 + gt
			}
		}
		if closeIdx := matchParen(raw, idx+1); closeIdx >= 0 {
			end := p
			for end < closeIdx && !isSpace(raw[end]) {
				end++
			}
			return p, end
		}
		return p, nonSpaceRun(raw, p)
	}
	if idx := strings.Index(raw, "]:"); idx >= 0 {
		p := skipSpaces(raw, idx+2)
		return p, nonSpaceRun(raw, p)
	}
	return 0, len(raw)
}

func matchParen(raw string, open int) int {
	depth := 0
	for i := open; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func nonSpaceRun(s string, i int) int {
	for i < len(s) && !isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// buildBlocks splits the body into turns: each top-level container is an
// assistant block and every stretch between them is a user block.
func buildBlocks(doc *markdown.Document, textLen int) []BlockSpan {
	var blocks []BlockSpan
	cursor := doc.Body
	for _, n := range doc.Nodes {
		if n.Kind != markdown.KindContainer || n.Depth != 0 || n.Start < cursor {
			continue
		}
		if n.Start > cursor {
			blocks = append(blocks, BlockSpan{Kind: BlockUser, AbsStart: cursor, AbsEnd: n.Start})
		}
		blocks = append(blocks, BlockSpan{Kind: BlockAssistant, AbsStart: n.Start, AbsEnd: n.End, Name: n.Name})
		cursor = n.End
	}
	if cursor < textLen {
		blocks = append(blocks, BlockSpan{Kind: BlockUser, AbsStart: cursor, AbsEnd: textLen})
	}
	return blocks
}

// DirectiveAt returns the innermost directive containing off.
func (b *Bundle) DirectiveAt(off int) (DirectiveSpan, bool) {
	var (
		best  DirectiveSpan
		found bool
	)
	for _, d := range b.Directives {
		if d.AbsStart > off {
			break
		}
		if off <= d.AbsEnd && (!found || d.AbsEnd-d.AbsStart < best.AbsEnd-best.AbsStart) {
			best = d
			found = true
		}
	}
	return best, found
}

// LinkAt returns the link containing off.
func (b *Bundle) LinkAt(off int) (LinkSpan, bool) {
	i := sort.Search(len(b.Links), func(i int) bool { return b.Links[i].AbsEnd >= off })
	if i < len(b.Links) && b.Links[i].AbsStart <= off {
		return b.Links[i], true
	}
	return LinkSpan{}, false
}

// BlockAt returns the turn containing off. Block ends are exclusive except
// for the final block, which also owns the end of the document.
func (b *Bundle) BlockAt(off int) (BlockSpan, bool) {
	i := sort.Search(len(b.Blocks), func(i int) bool { return b.Blocks[i].AbsEnd > off })
	if i < len(b.Blocks) && b.Blocks[i].AbsStart <= off {
		return b.Blocks[i], true
	}
	if n := len(b.Blocks); n > 0 && off == b.Blocks[n-1].AbsEnd {
		return b.Blocks[n-1], true
	}
	return BlockSpan{}, false
}

// InsideAssistant reports whether off falls in an assistant turn.
func (b *Bundle) InsideAssistant(off int) bool {
	block, ok := b.BlockAt(off)
	return ok && block.Kind == BlockAssistant
}

// ToolCallAt returns the tool-call block containing off.
func (b *Bundle) ToolCallAt(off int) (Span, bool) {
	return spanAt(b.ToolCallBlocks, off)
}

// AttachmentAt returns the inline-attachment block containing off.
func (b *Bundle) AttachmentAt(off int) (Span, bool) {
	return spanAt(b.InlineAttachmentBlocks, off)
}

func spanAt(spans []Span, off int) (Span, bool) {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].End > off })
	if i < len(spans) && spans[i].Start <= off {
		return spans[i], true
	}
	return Span{}, false
}
