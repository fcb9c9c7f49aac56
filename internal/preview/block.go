package preview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ContinuationMarker prefixes wrapped payload lines inside blocks.
const ContinuationMarker = "┆"

var (
	openTagRe  = regexp.MustCompile(`^<(tool-call|inline-attachment)\b([^>]*)>`)
	attrRe     = regexp.MustCompile(`([\w-]+)\s*=\s*"([^"]*)"`)
	commandRe  = regexp.MustCompile(`(?s)<command\b[^>]*>(.*?)</command>`)
	argumentRe = regexp.MustCompile(`(?s)<argument\b([^>]*)>(.*?)</argument>`)
	resultRe   = regexp.MustCompile(`(?s)<result\b([^>]*)>(.*?)</result>`)
	contentRe  = regexp.MustCompile(`(?s)<content\b([^>]*)>(.*?)</content>`)
)

// Section is one typed payload of a block.
type Section struct {
	Heading string
	Type    string
	Body    string
}

// Parsed is the structure recovered from a block's raw text.
type Parsed struct {
	Tag      string
	Attrs    map[string]string
	Command  string
	Sections []Section
}

// ParseBlock reads a tool-call or inline-attachment block. ok is false when
// raw does not start with one of those tags.
func ParseBlock(raw string) (Parsed, bool) {
	raw = strings.TrimLeft(raw, " \t\r\n")
	m := openTagRe.FindStringSubmatch(raw)
	if m == nil {
		return Parsed{}, false
	}
	p := Parsed{Tag: m[1], Attrs: attrs(m[2])}
	if cm := commandRe.FindStringSubmatch(raw); cm != nil {
		p.Command = Unwrap(cm[1])
	}
	for _, am := range argumentRe.FindAllStringSubmatch(raw, -1) {
		a := attrs(am[1])
		p.Sections = append(p.Sections, Section{
			Heading: fmt.Sprintf("Argument `%s`", a["name"]),
			Type:    a["type"],
			Body:    Unwrap(am[2]),
		})
	}
	for _, rm := range resultRe.FindAllStringSubmatch(raw, -1) {
		a := attrs(rm[1])
		p.Sections = append(p.Sections, Section{Heading: "Result", Type: a["type"], Body: Unwrap(rm[2])})
	}
	for _, cm := range contentRe.FindAllStringSubmatch(raw, -1) {
		a := attrs(cm[1])
		p.Sections = append(p.Sections, Section{Heading: "Content", Type: a["type"], Body: Unwrap(cm[2])})
	}
	return p, true
}

func attrs(s string) map[string]string {
	out := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(s, -1) {
		out[m[1]] = m[2]
	}
	return out
}

// Unwrap strips the continuation marker from payload lines and trims the
// blank lines around the payload.
func Unwrap(payload string) string {
	lines := strings.Split(strings.ReplaceAll(payload, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, ContinuationMarker)
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// Block renders the hover for a tool-call or inline-attachment block, or
// "" when raw is neither.
func Block(raw string) string {
	p, ok := ParseBlock(raw)
	if !ok {
		return ""
	}
	var b strings.Builder
	switch p.Tag {
	case "tool-call":
		fmt.Fprintf(&b, "### Tool call `%s`", p.Attrs["with"])
	default:
		b.WriteString("### Inline attachment")
		if kind := p.Attrs["kind"]; kind != "" {
			fmt.Fprintf(&b, " (%s)", kind)
		}
	}
	if p.Command != "" {
		b.WriteString("\n\n**Command**\n\n")
		b.WriteString(Fence(p.Command, "bash"))
	}
	for _, s := range p.Sections {
		b.WriteString("\n\n**")
		b.WriteString(s.Heading)
		b.WriteString("**")
		if s.Type != "" {
			fmt.Fprintf(&b, " (%s)", s.Type)
		}
		b.WriteString("\n\n")
		b.WriteString(renderBody(s))
	}
	return b.String()
}

func renderBody(s Section) string {
	switch {
	case isJSON(s.Type):
		var out bytes.Buffer
		if err := json.Indent(&out, []byte(strings.TrimSpace(s.Body)), "", "  "); err == nil {
			return Fence(out.String(), "json")
		}
		return Fence(s.Body, "json")
	case isText(s.Type):
		if s.Body == "" {
			return "(empty)"
		}
		return Fence(s.Body, "")
	default:
		return "(not previewable)"
	}
}

func isJSON(t string) bool {
	t = strings.ToLower(t)
	return t == "json" || strings.HasSuffix(t, "/json") || strings.HasSuffix(t, "+json")
}

// isText accepts an absent type, the "text" shorthand and text/* media types.
func isText(t string) bool {
	t = strings.ToLower(strings.TrimSpace(t))
	return t == "" || t == "text" || strings.HasPrefix(t, "text/")
}
