package config

import (
	"golang.org/x/text/cases"

	"lectic/internal/source"
)

type field uint8

const (
	fieldPrompt field = 1 << iota
	fieldProvider
	fieldModel
	fieldTools
	fieldHooks
)

// Interlocutor is one conversational agent as declared in a single source,
// or, inside a Spec, as merged across sources.
type Interlocutor struct {
	Name      string
	Prompt    string
	HasPrompt bool
	Provider  string
	Model     string
	Tools     []Tool
	Hooks     *Hooks

	Source       Source
	PromptSource Source
	NameSpan     source.Span
	ModelSpan    source.Span

	set field
}

// Declares reports whether the interlocutor set the given key itself rather
// than inheriting it.
func (it *Interlocutor) Declares(key string) bool {
	switch key {
	case "prompt":
		return it.set&fieldPrompt != 0
	case "provider":
		return it.set&fieldProvider != 0
	case "model":
		return it.set&fieldModel != 0
	case "tools":
		return it.set&fieldTools != 0
	case "hooks":
		return it.set&fieldHooks != 0
	}
	return false
}

// Tool is one entry of a tools list. Kind is the entry's leading key:
// "agent", "kit", or whatever tool type the entry names.
type Tool struct {
	Kind       string
	Target     string
	Span       source.Span
	TargetSpan source.Span
}

// Hooks is the raw shape of a hooks field.
type Hooks struct {
	IsSequence bool
	Span       source.Span
	Items      []Hook
}

// Hook is one hooks entry.
type Hook struct {
	Span  source.Span
	On    []HookEvent
	HasDo bool
}

// HookEvent is one value of a hook's "on" field.
type HookEvent struct {
	Name string
	Span source.Span
}

// Macro is a named expansion template.
type Macro struct {
	Name      string
	Expansion string
	Source    Source
	NameSpan  source.Span
}

// Kit is a named, reusable bundle of tools.
type Kit struct {
	Name     string
	Tools    []Tool
	Source   Source
	NameSpan source.Span
}

// Spec is the merged, effective specification. Names are unique: a later
// source's entry replaces an earlier one with the same name.
type Spec struct {
	Interlocutors []*Interlocutor
	Macros        []*Macro
	Kits          []*Kit
}

// Interlocutor returns the effective interlocutor called name.
func (s *Spec) Interlocutor(name string) *Interlocutor {
	if s == nil {
		return nil
	}
	for _, it := range s.Interlocutors {
		if it.Name == name {
			return it
		}
	}
	return nil
}

// InterlocutorNames lists effective interlocutor names in declaration order.
func (s *Spec) InterlocutorNames() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Interlocutors))
	for _, it := range s.Interlocutors {
		out = append(out, it.Name)
	}
	return out
}

// Kit returns the effective kit called name.
func (s *Spec) Kit(name string) *Kit {
	if s == nil {
		return nil
	}
	for _, k := range s.Kits {
		if k.Name == name {
			return k
		}
	}
	return nil
}

// Macro returns the effective macro called name, compared case-insensitively.
func (s *Spec) Macro(name string) *Macro {
	if s == nil {
		return nil
	}
	key := MacroKey(name)
	for _, m := range s.Macros {
		if MacroKey(m.Name) == key {
			return m
		}
	}
	return nil
}

// MacroKey normalizes a macro name for case-insensitive lookup. A Caser
// keeps state, so each call gets its own.
func MacroKey(name string) string {
	return cases.Fold().String(name)
}
