package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"lectic/internal/diag"
	"lectic/internal/source"
)

var (
	gutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	caretStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	pathStyle   = lipgloss.NewStyle().Bold(true)
)

type painter struct {
	enabled bool
	sev     map[diag.Severity]*color.Color
}

func newPainter(enabled bool) painter {
	p := painter{enabled: enabled, sev: map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevInfo:    color.New(color.FgCyan),
	}}
	for _, c := range p.sev {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p painter) style(s lipgloss.Style, text string) string {
	if !p.enabled {
		return text
	}
	return s.Render(text)
}

func (p painter) severity(sev diag.Severity) string {
	if c, ok := p.sev[sev]; ok {
		return c.Sprint(sev.String())
	}
	return sev.String()
}

// Pretty prints every report as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the offending line, a caret underline and, when enabled, the
// notes and fixes.
func Pretty(w io.Writer, reports []Report, opts PrettyOpts) error {
	p := newPainter(opts.Color)
	for _, r := range reports {
		lines := source.NewLineIndex(r.Text)
		path := formatPath(r.Path, opts.PathMode, opts.BaseDir)
		for _, d := range r.Diagnostics {
			if err := prettyOne(w, p, path, lines, d, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

func prettyOne(w io.Writer, p painter, path string, lines *source.LineIndex, d diag.Diagnostic, opts PrettyOpts) error {
	line, col := lineCol(lines, int(d.Primary.Start))
	if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.style(pathStyle, fmt.Sprintf("%s:%d:%d", path, line, col)),
		p.severity(d.Severity), d.Code.ID(), d.Message); err != nil {
		return err
	}
	if err := snippet(w, p, lines, d.Primary); err != nil {
		return err
	}
	if opts.ShowNotes {
		for _, note := range d.Notes {
			nl, nc := lineCol(lines, int(note.Span.Start))
			if _, err := fmt.Fprintf(w, "  %s %s (%d:%d)\n", p.style(noteStyle, "= note:"), note.Msg, nl, nc); err != nil {
				return err
			}
		}
	}
	if opts.ShowFixes {
		for _, fix := range d.Fixes {
			if _, err := fmt.Fprintf(w, "  %s %s\n", p.style(noteStyle, "= fix:"), fix.Title); err != nil {
				return err
			}
		}
	}
	return nil
}

// snippet prints the first line of span with a caret underline measured in
// terminal cells.
func snippet(w io.Writer, p painter, lines *source.LineIndex, span source.Span) error {
	text := lines.Text()
	start := min(int(span.Start), len(text))
	line := lines.Position(start).Line
	lineStart := lines.LineStart(line)
	lineEnd := lines.LineEnd(line)
	content := strings.TrimRight(text[lineStart:lineEnd], "\r\n")
	end := min(max(int(span.End), start), lineStart+len(content))

	number := fmt.Sprintf("%d", line+1)
	pad := strings.Repeat(" ", len(number))
	offset := runewidth.StringWidth(strings.ReplaceAll(text[lineStart:start], "\t", "    "))
	width := max(1, runewidth.StringWidth(text[start:max(start, end)]))
	underline := "^" + strings.Repeat("~", width-1)

	_, err := fmt.Fprintf(w, " %s %s %s\n %s %s %s%s\n",
		p.style(gutterStyle, number), p.style(gutterStyle, "|"), strings.ReplaceAll(content, "\t", "    "),
		pad, p.style(gutterStyle, "|"), strings.Repeat(" ", offset), p.style(caretStyle, underline))
	return err
}
