// Package macro indexes macro definitions and expands invocations in text.
package macro

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"lectic/internal/analysis"
	"lectic/internal/config"
	"lectic/internal/markdown"
)

// MaxDepth bounds nested expansion so cycles terminate.
const MaxDepth = 8

const argPlaceholder = "{{ARG}}"

var (
	ErrUnknownMacro   = errors.New("unknown macro")
	ErrExpansionDepth = errors.New("macro expansion too deep")
)

// Index maps folded macro names to definitions. Later definitions win.
type Index struct {
	byKey map[string]*config.Macro
	order []string
}

// NewIndex indexes macros in declaration order.
func NewIndex(macros []*config.Macro) *Index {
	idx := &Index{byKey: make(map[string]*config.Macro, len(macros))}
	for _, m := range macros {
		if m == nil || m.Name == "" {
			continue
		}
		key := config.MacroKey(m.Name)
		if _, seen := idx.byKey[key]; !seen {
			idx.order = append(idx.order, key)
		}
		idx.byKey[key] = m
	}
	return idx
}

// Lookup finds a macro by name, ignoring case.
func (idx *Index) Lookup(name string) (*config.Macro, bool) {
	if idx == nil {
		return nil, false
	}
	m, ok := idx.byKey[config.MacroKey(strings.TrimSpace(name))]
	return m, ok
}

// Names lists macro names in first-declaration order.
func (idx *Index) Names() []string {
	if idx == nil {
		return nil
	}
	out := make([]string, 0, len(idx.order))
	for _, k := range idx.order {
		out = append(out, idx.byKey[k].Name)
	}
	return out
}

// Invocation resolves a directive to the macro it invokes and the argument
// it passes. :macro[name] passes no argument.
func (idx *Index) Invocation(key, inner string) (*config.Macro, string, bool) {
	if key == "macro" {
		m, ok := idx.Lookup(inner)
		return m, "", ok
	}
	if analysis.IsBuiltin(key) {
		return nil, "", false
	}
	m, ok := idx.Lookup(key)
	return m, inner, ok
}

// Expand replaces every macro invocation in text with its expansion,
// recursively. Directives that are not macros are kept, with invocations
// inside their brackets expanded.
func (idx *Index) Expand(text string) (string, error) {
	return idx.expand(text, 0)
}

// ExpandDirective expands a single invocation, as found at key/inner.
func (idx *Index) ExpandDirective(key, inner string) (string, error) {
	m, arg, ok := idx.Invocation(key, inner)
	if !ok {
		if key == "macro" {
			return "", fmt.Errorf("%w: %s", ErrUnknownMacro, strings.TrimSpace(inner))
		}
		return "", fmt.Errorf("%w: %s", ErrUnknownMacro, key)
	}
	return idx.apply(m, arg, 1)
}

func (idx *Index) apply(m *config.Macro, arg string, depth int) (string, error) {
	if depth > MaxDepth {
		return "", fmt.Errorf("%w: %s", ErrExpansionDepth, m.Name)
	}
	body := strings.ReplaceAll(m.Expansion, argPlaceholder, arg)
	return idx.expand(body, depth)
}

func (idx *Index) expand(text string, depth int) (string, error) {
	spans := directives(text)
	if len(spans) == 0 {
		return text, nil
	}
	var b strings.Builder
	last := 0
	for _, d := range spans {
		inner := text[d.InnerStart:d.InnerEnd]
		var repl string
		if m, arg, ok := idx.Invocation(d.Key, inner); ok {
			out, err := idx.apply(m, arg, depth+1)
			if err != nil {
				return "", err
			}
			repl = out
		} else if d.Key == "macro" {
			return "", fmt.Errorf("%w: %s", ErrUnknownMacro, strings.TrimSpace(inner))
		} else {
			expanded, err := idx.expand(inner, depth)
			if err != nil {
				return "", err
			}
			repl = text[d.AbsStart:d.InnerStart] + expanded + text[d.InnerEnd:d.AbsEnd]
		}
		b.WriteString(text[last:d.AbsStart])
		b.WriteString(repl)
		last = d.AbsEnd
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// directives finds the outermost directives of a snippet. A leading newline
// keeps a snippet starting with "---" from being read as a header.
func directives(text string) []analysis.DirectiveSpan {
	padded := "\n" + text
	b := analysis.Build(markdown.Parse(padded), padded)
	out := analysis.Outermost(b.Directives)
	for i := range out {
		out[i].AbsStart--
		out[i].AbsEnd--
		out[i].InnerStart--
		out[i].InnerEnd--
	}
	return out
}

// Preview returns the raw expansion of name cut to limit runes, with
// backticks escaped for markdown rendering.
func (idx *Index) Preview(name string, limit int) (string, bool) {
	m, ok := idx.Lookup(name)
	if !ok {
		return "", false
	}
	text := m.Expansion
	truncated := false
	if limit > 0 && utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		text = string(runes[:limit])
		truncated = true
	}
	text = strings.ReplaceAll(text, "`", "\\`")
	if truncated {
		text += "…"
	}
	return text, true
}
