package diagfmt

import (
	"encoding/json"
	"io"
	"unicode/utf8"

	"lectic/internal/diag"
	"lectic/internal/source"
)

// LocationJSON is a span with 1-based line and rune column.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type FixEditJSON struct {
	Location LocationJSON `json:"location"`
	NewText  string       `json:"new_text"`
	OldText  string       `json:"old_text,omitempty"`
}

type FixJSON struct {
	Title       string        `json:"title"`
	IsPreferred bool          `json:"is_preferred,omitempty"`
	Edits       []FixEditJSON `json:"edits,omitempty"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title,omitempty"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
}

// lineCol returns the 1-based line and rune column of offset.
func lineCol(lines *source.LineIndex, offset int) (int, int) {
	text := lines.Text()
	offset = max(0, min(offset, len(text)))
	line := lines.Position(offset).Line
	start := lines.LineStart(line)
	return line + 1, utf8.RuneCountInString(text[start:offset]) + 1
}

func makeLocation(path string, lines *source.LineIndex, span source.Span) LocationJSON {
	loc := LocationJSON{File: path, StartByte: span.Start, EndByte: span.End}
	loc.StartLine, loc.StartCol = lineCol(lines, int(span.Start))
	loc.EndLine, loc.EndCol = lineCol(lines, int(span.End))
	return loc
}

func sliceText(text string, span source.Span) string {
	start, end := int(span.Start), int(span.End)
	if start > end || end > len(text) {
		return ""
	}
	return text[start:end]
}

// BuildDiagnosticsOutput forms the JSON structure without serializing it.
func BuildDiagnosticsOutput(reports []Report, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	for _, r := range reports {
		lines := source.NewLineIndex(r.Text)
		path := formatPath(r.Path, opts.PathMode, opts.BaseDir)
		for _, d := range r.Diagnostics {
			if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
				break
			}
			dj := DiagnosticJSON{
				Severity: d.Severity.String(),
				Code:     d.Code.ID(),
				Title:    d.Code.Title(),
				Message:  d.Message,
				Location: makeLocation(path, lines, d.Primary),
			}
			if opts.IncludeNotes {
				for _, note := range d.Notes {
					dj.Notes = append(dj.Notes, NoteJSON{Message: note.Msg, Location: makeLocation(path, lines, note.Span)})
				}
			}
			if opts.IncludeFixes {
				for _, fix := range d.Fixes {
					fj := FixJSON{Title: fix.Title, IsPreferred: fix.Preferred}
					for _, edit := range fix.Edits {
						fj.Edits = append(fj.Edits, FixEditJSON{
							Location: makeLocation(path, lines, edit.Span),
							NewText:  edit.NewText,
							OldText:  sliceText(r.Text, edit.Span),
						})
					}
					dj.Fixes = append(dj.Fixes, fj)
				}
			}
			switch d.Severity {
			case diag.SevError:
				out.Errors++
			case diag.SevWarning:
				out.Warnings++
			}
			out.Diagnostics = append(out.Diagnostics, dj)
		}
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes the reports as one indented JSON document.
func JSON(w io.Writer, reports []Report, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(reports, opts))
}
