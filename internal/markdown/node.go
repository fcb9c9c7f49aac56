package markdown

// Kind classifies a scanned node.
type Kind uint8

const (
	KindTextDirective Kind = iota + 1 // :name[content]{attrs}
	KindLink                          // [text](dest), <scheme:...>, [label]: dest
	KindContainer                     // :::Name ... :::
	KindHTMLBlock                     // literal block starting with <tag at column 0
	KindFencedCode                    // ``` or ~~~
	KindIndentedCode                  // four-space indented code
)

func (k Kind) String() string {
	switch k {
	case KindTextDirective:
		return "directive"
	case KindLink:
		return "link"
	case KindContainer:
		return "container"
	case KindHTMLBlock:
		return "html"
	case KindFencedCode:
		return "fenced-code"
	case KindIndentedCode:
		return "indented-code"
	default:
		return "unknown"
	}
}

// Node is one scanned construct. Start and End are absolute byte offsets.
type Node struct {
	Kind  Kind
	Name  string // directive name, container name or HTML tag name
	Start int
	End   int
	Depth int // container nesting depth, 0 for top level
}

// Header is the YAML front matter delimited by "---" and "---" or "...".
type Header struct {
	Present      bool
	Closed       bool
	Start        int
	End          int // first byte after the closing delimiter line
	ContentStart int
	ContentEnd   int
}

// Content returns the YAML between the delimiters.
func (h Header) Content(text string) string {
	if !h.Present {
		return ""
	}
	return text[h.ContentStart:h.ContentEnd]
}

// Document is the scan result for one text.
type Document struct {
	Text   string
	Header Header
	Body   int // offset where the markdown body starts
	Nodes  []Node
}

// NodesOf returns the nodes of one kind in document order.
func (d *Document) NodesOf(kind Kind) []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}
