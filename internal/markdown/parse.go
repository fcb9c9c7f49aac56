package markdown

import (
	"sort"
	"strings"
)

type fenceState struct {
	active bool
	char   byte
	length int
	start  int
}

type htmlState struct {
	active bool
	tag    string
	start  int
}

type openContainer struct {
	name   string
	colons int
	start  int
}

type scanner struct {
	text        string
	nodes       []Node
	stack       []openContainer
	fence       fenceState
	html        htmlState
	para        int
	paraEnd     int
	indented    int
	indentedEnd int
}

// Parse scans text. It never fails; malformed constructs are left as plain
// text.
func Parse(text string) *Document {
	doc := &Document{Text: text}
	doc.Header = scanHeader(text)
	if doc.Header.Present {
		doc.Body = doc.Header.End
	}
	s := &scanner{text: text, para: -1, indented: -1}
	s.scanBlocks(doc.Body)
	sort.SliceStable(s.nodes, func(i, j int) bool {
		return s.nodes[i].Start < s.nodes[j].Start
	})
	doc.Nodes = s.nodes
	return doc
}

func scanHeader(text string) Header {
	end, next := lineBounds(text, 0)
	if strings.TrimRight(text[:end], " \t") != "---" || next == end {
		return Header{}
	}
	h := Header{Present: true, ContentStart: next}
	for pos := next; pos < len(text); {
		lineStart := pos
		lineEnd, lineNext := lineBounds(text, pos)
		pos = lineNext
		switch strings.TrimRight(text[lineStart:lineEnd], " \t") {
		case "---", "...":
			h.Closed = true
			h.ContentEnd = lineStart
			h.End = lineNext
			return h
		}
	}
	h.ContentEnd = len(text)
	h.End = len(text)
	return h
}

func (s *scanner) scanBlocks(from int) {
	text := s.text
	for pos := from; pos < len(text); {
		start := pos
		end, next := lineBounds(text, pos)
		line := text[start:end]
		pos = next

		if s.fence.active {
			if closesFence(line, s.fence) {
				s.emit(KindFencedCode, "", s.fence.start, next)
				s.fence = fenceState{}
			}
			continue
		}
		if s.html.active {
			if isBlank(line) {
				s.endHTML(start)
				continue
			}
			if strings.Contains(line, "</"+s.html.tag+">") {
				s.endHTML(next)
			}
			continue
		}

		blank := isBlank(line)
		if s.indented >= 0 {
			if blank {
				continue
			}
			if indentWidth(line) >= 4 {
				s.indentedEnd = next
				continue
			}
			s.emit(KindIndentedCode, "", s.indented, s.indentedEnd)
			s.indented = -1
		}
		if blank {
			s.flushParagraph()
			continue
		}
		if s.para < 0 && indentWidth(line) >= 4 {
			s.indented = start
			s.indentedEnd = next
			continue
		}

		trimmed := strings.TrimLeft(line, " ")
		indent := len(line) - len(trimmed)
		if indent <= 3 {
			if f, ok := openFence(trimmed); ok {
				s.flushParagraph()
				f.start = start
				s.fence = f
				continue
			}
		}
		if indent == 0 && strings.HasPrefix(line, ":::") {
			s.flushParagraph()
			s.container(line, start, next)
			continue
		}
		if indent == 0 && s.para < 0 {
			if tag := htmlTagName(line); tag != "" {
				s.html = htmlState{active: true, tag: tag, start: start}
				if strings.Contains(line, "</"+tag+">") {
					s.endHTML(next)
				}
				continue
			}
		}
		if s.para < 0 {
			s.para = start
		}
		s.paraEnd = end
	}

	s.flushParagraph()
	if s.fence.active {
		s.emit(KindFencedCode, "", s.fence.start, len(text))
	}
	if s.html.active {
		s.endHTML(len(text))
	}
	if s.indented >= 0 {
		s.emit(KindIndentedCode, "", s.indented, s.indentedEnd)
	}
	for len(s.stack) > 0 {
		top := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		s.nodes = append(s.nodes, Node{Kind: KindContainer, Name: top.name, Start: top.start, End: len(text), Depth: len(s.stack)})
	}
}

// container handles a line starting with ":::". A name opens a container,
// a bare fence closes the innermost one if it has at least as many colons.
func (s *scanner) container(line string, start, next int) {
	colons := 0
	for colons < len(line) && line[colons] == ':' {
		colons++
	}
	name := strings.TrimSpace(line[colons:])
	name = strings.TrimSpace(strings.TrimRight(name, ":"))
	if name != "" {
		s.stack = append(s.stack, openContainer{name: name, colons: colons, start: start})
		return
	}
	if len(s.stack) == 0 {
		return
	}
	top := s.stack[len(s.stack)-1]
	if colons < top.colons {
		return
	}
	s.stack = s.stack[:len(s.stack)-1]
	s.nodes = append(s.nodes, Node{Kind: KindContainer, Name: top.name, Start: top.start, End: next, Depth: len(s.stack)})
}

func (s *scanner) endHTML(end int) {
	s.emit(KindHTMLBlock, s.html.tag, s.html.start, end)
	s.html = htmlState{}
}

func (s *scanner) flushParagraph() {
	if s.para < 0 {
		return
	}
	s.scanInline(s.para, s.paraEnd)
	s.para = -1
}

func (s *scanner) emit(kind Kind, name string, start, end int) {
	s.nodes = append(s.nodes, Node{Kind: kind, Name: name, Start: start, End: end})
}

// lineBounds returns the end of the line content (before "\n" or "\r\n")
// and the start of the next line.
func lineBounds(text string, pos int) (end, next int) {
	idx := strings.IndexByte(text[pos:], '\n')
	if idx < 0 {
		end = len(text)
		next = len(text)
	} else {
		end = pos + idx
		next = end + 1
	}
	if end > pos && text[end-1] == '\r' {
		end--
	}
	return end, next
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func indentWidth(line string) int {
	width := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			width++
		case '\t':
			width += 4 - width%4
		default:
			return width
		}
	}
	return width
}

func openFence(trimmed string) (fenceState, bool) {
	if len(trimmed) < 3 || (trimmed[0] != '`' && trimmed[0] != '~') {
		return fenceState{}, false
	}
	c := trimmed[0]
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return fenceState{}, false
	}
	if c == '`' && strings.ContainsRune(trimmed[n:], '`') {
		return fenceState{}, false
	}
	return fenceState{active: true, char: c, length: n}, true
}

func closesFence(line string, f fenceState) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == f.char {
		n++
	}
	return n >= f.length && isBlank(trimmed[n:])
}

// htmlTagName returns the tag name when line opens a literal HTML block.
func htmlTagName(line string) string {
	if len(line) < 2 || line[0] != '<' || !isASCIILetter(line[1]) {
		return ""
	}
	i := 1
	for i < len(line) && (isASCIILetter(line[i]) || isDigit(line[i]) || line[i] == '-') {
		i++
	}
	if i < len(line) && line[i] != '>' && line[i] != ' ' && line[i] != '\t' && line[i] != '/' {
		return ""
	}
	return strings.ToLower(line[1:i])
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
