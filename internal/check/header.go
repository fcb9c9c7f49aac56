package check

import (
	"fmt"
	"strings"

	"lectic/internal/config"
	"lectic/internal/diag"
	"lectic/internal/models"
)

// HookEvents are the lifecycle events a hook may listen on.
var HookEvents = []string{
	"user_message",
	"assistant_message",
	"error",
	"tool_use_pre",
	"tool_use_post",
	"run_start",
	"run_end",
}

func (c *checker) headerPresence() {
	if c.doc.Header.Present && len(c.spec.Interlocutors) > 0 {
		return
	}
	diag.ReportError(c.rep, diag.HdrMissing, c.headerSpan(),
		"YAML Header is missing or does not define an interlocutor").Emit()
}

func (c *checker) headerSyntax() {
	if c.header.Err == nil {
		return
	}
	diag.ReportError(c.rep, diag.HdrSyntax, c.header.ErrSpan,
		fmt.Sprintf("Invalid YAML in header: %s", strings.TrimPrefix(c.header.Err.Error(), "yaml: "))).Emit()
}

// duplicates flags names declared more than once in the header itself.
// A header entry overriding an outer layer's entry is not a duplicate.
func (c *checker) duplicates() {
	byName := make(map[string][]*config.Interlocutor)
	var order []string
	for _, it := range c.header.Interlocutors {
		if it.Name == "" {
			continue
		}
		if _, ok := byName[it.Name]; !ok {
			order = append(order, it.Name)
		}
		byName[it.Name] = append(byName[it.Name], it)
	}
	for _, name := range order {
		group := byName[name]
		if len(group) < 2 {
			continue
		}
		for i, it := range group {
			b := diag.ReportError(c.rep, diag.HdrDuplicateName, it.NameSpan,
				fmt.Sprintf("Duplicate interlocutor name: %s", name))
			for j, other := range group {
				if j != i {
					b.WithNote(other.NameSpan, "also declared here")
				}
			}
			b.Emit()
		}
	}

	macros := make(map[string][]*config.Macro)
	var macroOrder []string
	for _, m := range c.header.Macros {
		key := config.MacroKey(m.Name)
		if _, ok := macros[key]; !ok {
			macroOrder = append(macroOrder, key)
		}
		macros[key] = append(macros[key], m)
	}
	for _, key := range macroOrder {
		group := macros[key]
		if len(group) < 2 {
			continue
		}
		for i, m := range group {
			b := diag.ReportError(c.rep, diag.HdrDuplicateMacro, m.NameSpan,
				fmt.Sprintf("Duplicate macro name: %s", m.Name))
			for j, other := range group {
				if j != i {
					b.WithNote(other.NameSpan, "also declared here")
				}
			}
			b.Emit()
		}
	}
}

// prompts flags header interlocutors left without a prompt by every layer.
func (c *checker) prompts() {
	for _, it := range c.header.Interlocutors {
		if it.Name == "" {
			continue
		}
		if merged := c.spec.Interlocutor(it.Name); merged != nil && merged.HasPrompt {
			continue
		}
		diag.ReportError(c.rep, diag.HdrMissingPrompt, it.NameSpan,
			fmt.Sprintf("Interlocutor %s needs a prompt", it.Name)).Emit()
	}
}

// toolTargets checks agent and kit references in header tool lists.
func (c *checker) toolTargets() {
	check := func(tools []config.Tool) {
		for _, tool := range tools {
			switch tool.Kind {
			case "agent":
				if c.spec.Interlocutor(tool.Target) == nil {
					diag.ReportError(c.rep, diag.RefUnknownAgent, tool.Span,
						fmt.Sprintf("Agent tool references unknown interlocutor: %s", tool.Target)).Emit()
				}
			case "kit":
				if c.spec.Kit(tool.Target) == nil {
					diag.ReportError(c.rep, diag.RefUnknownKit, tool.Span,
						fmt.Sprintf("Unknown kit: %s", tool.Target)).Emit()
				}
			}
		}
	}
	for _, it := range c.header.Interlocutors {
		check(it.Tools)
	}
	for _, k := range c.header.Kits {
		check(k.Tools)
	}
}

func (c *checker) hooks() {
	if c.header.Hooks != nil {
		c.hookList(c.header.Hooks)
	}
	for _, it := range c.header.Interlocutors {
		if it.Hooks != nil {
			c.hookList(it.Hooks)
		}
	}
}

func (c *checker) hookList(h *config.Hooks) {
	if !h.IsSequence {
		diag.ReportError(c.rep, diag.HdrHooksNotList, h.Span, "hooks must be a list").Emit()
		return
	}
	for _, item := range h.Items {
		if !item.HasDo {
			diag.ReportError(c.rep, diag.HdrHookMissingDo, item.Span, "Hook is missing a 'do' field").Emit()
		}
		for _, ev := range item.On {
			if isHookEvent(ev.Name) {
				continue
			}
			diag.ReportError(c.rep, diag.HdrHookUnknownOn, ev.Span,
				fmt.Sprintf("Unknown hook event %q; expected one of: %s", ev.Name, strings.Join(HookEvents, ", "))).Emit()
		}
	}
}

func isHookEvent(name string) bool {
	for _, ev := range HookEvents {
		if ev == name {
			return true
		}
	}
	return false
}

func (c *checker) models(lookup ModelLookup) {
	for _, it := range c.header.Interlocutors {
		if !it.Declares("model") || it.Model == "" {
			continue
		}
		provider := effectiveProvider(c.spec, it)
		if provider == "" {
			continue
		}
		names, state := lookup.Lookup(provider)
		if state != models.StateLoaded || len(names) == 0 {
			continue
		}
		if containsString(names, it.Model) {
			continue
		}
		diag.ReportWarning(c.rep, diag.MdlUnknownModel, it.ModelSpan,
			fmt.Sprintf("Unknown model for %s: %s", provider, it.Model)).Emit()
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
