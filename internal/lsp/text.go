package lsp

import "lectic/internal/source"

// applyChanges replays content changes in order. A change without a range
// replaces the whole text.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start := source.PositionToOffset(text, change.Range.Start)
		end := source.PositionToOffset(text, change.Range.End)
		if end < start {
			end = start
		}
		text = text[:start] + change.Text + text[end:]
	}
	return text
}
