package markdown

// scanInline reports text directives and links in text[start:end].
func (s *scanner) scanInline(start, end int) {
	text := s.text
	for i := start; i < end; {
		c := text[i]
		switch {
		case c == '\\':
			i += 2
		case c == '`':
			i = skipCodeSpan(text, i, end)
		case c == ':':
			if next, ok := s.directive(i, start, end); ok {
				i = next
				continue
			}
			i++
		case c == '[' || (c == '!' && i+1 < end && text[i+1] == '['):
			if next, ok := s.link(i, start, end); ok {
				i = next
				continue
			}
			i++
		case c == '<':
			if next, ok := s.autolink(i, end); ok {
				i = next
				continue
			}
			i++
		default:
			i++
		}
	}
}

// directive recognizes :name[content]{attrs} at i. Bracket content is
// scanned again so nested directives are reported too.
func (s *scanner) directive(i, start, end int) (int, bool) {
	text := s.text
	if i > start {
		prev := text[i-1]
		if prev == ':' || isASCIILetter(prev) || isDigit(prev) {
			return 0, false
		}
	}
	j := i + 1
	if j >= end || !isASCIILetter(text[j]) {
		return 0, false
	}
	for j < end && (isASCIILetter(text[j]) || isDigit(text[j]) || text[j] == '_' || text[j] == '-') {
		j++
	}
	if j >= end || text[j] != '[' {
		return 0, false
	}
	closeIdx := matchBracket(text, j, end, '[', ']')
	if closeIdx < 0 {
		return 0, false
	}
	nodeEnd := closeIdx + 1
	if nodeEnd < end && text[nodeEnd] == '{' {
		if attrs := matchBracket(text, nodeEnd, end, '{', '}'); attrs >= 0 {
			nodeEnd = attrs + 1
		}
	}
	s.emit(KindTextDirective, text[i+1:j], i, nodeEnd)
	s.scanInline(j+1, closeIdx)
	return nodeEnd, true
}

// link recognizes inline links, images and reference definitions at i.
func (s *scanner) link(i, start, end int) (int, bool) {
	text := s.text
	open := i
	if text[i] == '!' {
		open++
	}
	closeIdx := matchBracket(text, open, end, '[', ']')
	if closeIdx < 0 || closeIdx+1 >= end {
		return 0, false
	}
	switch text[closeIdx+1] {
	case '(':
		paren := matchDestination(text, closeIdx+1, end)
		if paren < 0 {
			return 0, false
		}
		s.emit(KindLink, "", i, paren+1)
		return paren + 1, true
	case ':':
		if open != i || (i != start && text[i-1] != '\n') {
			return 0, false
		}
		p := closeIdx + 2
		for p < end && (text[p] == ' ' || text[p] == '\t') {
			p++
		}
		q := p
		for q < end && !isSpace(text[q]) {
			q++
		}
		if q == p {
			return 0, false
		}
		s.emit(KindLink, "", i, q)
		return q, true
	}
	return 0, false
}

// autolink recognizes <scheme:rest> at i.
func (s *scanner) autolink(i, end int) (int, bool) {
	text := s.text
	j := i + 1
	if j >= end || !isASCIILetter(text[j]) {
		return 0, false
	}
	for j < end && (isASCIILetter(text[j]) || isDigit(text[j]) || text[j] == '+' || text[j] == '.' || text[j] == '-') {
		j++
	}
	if j >= end || text[j] != ':' || j-i-1 < 2 {
		return 0, false
	}
	for k := j + 1; k < end; k++ {
		switch text[k] {
		case '>':
			s.emit(KindLink, "", i, k+1)
			return k + 1, true
		case '<', ' ', '\t', '\n', '\r':
			return 0, false
		}
	}
	return 0, false
}

// matchBracket returns the index of the bracket closing the one at open,
// honoring nesting and backslash escapes, or -1.
func matchBracket(text string, open, end int, left, right byte) int {
	depth := 0
	for k := open; k < end; k++ {
		switch text[k] {
		case '\\':
			k++
		case left:
			depth++
		case right:
			depth--
			if depth == 0 {
				return k
			}
		}
	}
	return -1
}

// matchDestination returns the index of the ')' ending a link destination
// that starts with '(' at open.
func matchDestination(text string, open, end int) int {
	p := open + 1
	for p < end && (text[p] == ' ' || text[p] == '\t') {
		p++
	}
	if p < end && text[p] == '<' {
		gt := -1
		for q := p + 1; q < end && gt < 0; q++ {
			switch text[q] {
			case '\\':
				q++
			case '>':
				gt = q
			case '\n':
				return -1
			}
		}
		if gt < 0 {
			return -1
		}
		for q := gt + 1; q < end; q++ {
			if text[q] == ')' {
				return q
			}
		}
		return -1
	}
	return matchBracket(text, open, end, '(', ')')
}

func skipCodeSpan(text string, i, end int) int {
	n := 0
	for i+n < end && text[i+n] == '`' {
		n++
	}
	for k := i + n; k < end; {
		if text[k] != '`' {
			k++
			continue
		}
		m := 0
		for k+m < end && text[k+m] == '`' {
			m++
		}
		if m == n {
			return k + m
		}
		k += m
	}
	return i + n
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
