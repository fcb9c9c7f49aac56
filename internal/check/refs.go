package check

import (
	"fmt"
	"path"
	"strings"

	"lectic/internal/diag"
	"lectic/internal/source"
)

// IsSpeakerDirective reports whether key switches or borrows a speaker.
func IsSpeakerDirective(key string) bool {
	return key == "ask" || key == "aside"
}

// references flags :ask/:aside naming no known interlocutor. Occurrences in
// an assistant's turn are literal text and are skipped.
func (c *checker) references() {
	for _, d := range c.bundle.Directives {
		if !IsSpeakerDirective(d.Key) || c.bundle.InsideAssistant(d.AbsStart) {
			continue
		}
		name := strings.TrimSpace(d.Inner(c.text))
		if c.spec.Interlocutor(name) != nil {
			continue
		}
		diag.ReportError(c.rep, diag.RefUnknownInterlocutor, source.NewSpan(d.InnerStart, d.InnerEnd),
			fmt.Sprintf("Unknown interlocutor in :ask/:aside: %s", name)).Emit()
	}
}

// links warns about file:// URLs with relative paths.
func (c *checker) links() {
	for _, l := range c.bundle.Links {
		url := l.URL(c.text)
		if !IsRelativeFileURL(url) {
			continue
		}
		span := source.NewSpan(l.URLStart, l.URLEnd)
		b := diag.ReportWarning(c.rep, diag.LnkRelativeFileURL, span,
			"Relative paths are not allowed in file:// URLs")
		if fixed, ok := AbsoluteFileURL(url); ok {
			b.WithFix("Use $PWD-relative file URL", diag.FixEdit{Span: span, NewText: fixed})
		}
		b.Emit()
	}
}

const fileScheme = "file://"

// IsRelativeFileURL reports a file:// URL whose path is neither absolute
// nor anchored at $PWD.
func IsRelativeFileURL(url string) bool {
	if !strings.HasPrefix(url, fileScheme) {
		return false
	}
	p := url[len(fileScheme):]
	return !strings.HasPrefix(p, "/") && !referencesPWD(p)
}

// IsRelativePath reports a bare relative path reference, e.g. "notes/a.md".
func IsRelativePath(url string) bool {
	if url == "" || strings.HasPrefix(url, "/") || strings.HasPrefix(url, "#") || referencesPWD(url) {
		return false
	}
	if hasScheme(url) {
		return false
	}
	return !strings.HasPrefix(url, "~")
}

// AbsoluteFileURL rewrites a relative file:// URL or a bare relative path
// to file://$PWD/<path>.
func AbsoluteFileURL(url string) (string, bool) {
	var p string
	switch {
	case IsRelativeFileURL(url):
		p = url[len(fileScheme):]
	case IsRelativePath(url):
		p = url
	default:
		return "", false
	}
	clean := path.Clean(p)
	if clean == "." {
		return fileScheme + "$PWD", true
	}
	return fileScheme + "$PWD/" + clean, true
}

func referencesPWD(p string) bool {
	return strings.HasPrefix(p, "$PWD") || strings.HasPrefix(p, "${PWD}")
}

// hasScheme reports an RFC 3986 scheme prefix such as "https:".
func hasScheme(url string) bool {
	for i := 0; i < len(url); i++ {
		ch := url[i]
		switch {
		case ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z':
		case i > 0 && (ch >= '0' && ch <= '9' || ch == '+' || ch == '-' || ch == '.'):
		case ch == ':' && i > 0:
			return true
		default:
			return false
		}
	}
	return false
}
