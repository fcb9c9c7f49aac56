package config

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"lectic/internal/source"
)

// ErrNotMapping is recorded for sources whose top level is not a mapping.
var ErrNotMapping = errors.New("configuration must be a YAML mapping")

// Layer is the normalized content of one source. Spans are absolute byte
// offsets into the file the source was read from; for a header layer that
// is the document.
type Layer struct {
	Source        Source
	Interlocutors []*Interlocutor
	Macros        []*Macro
	Kits          []*Kit
	Hooks         *Hooks
	// InterlocutorSpan covers the "interlocutor"/"interlocutors" key when present.
	InterlocutorSpan source.Span
	HasInterlocutor  bool

	Err     error
	ErrSpan source.Span
}

// Empty reports whether the layer declares nothing.
func (l *Layer) Empty() bool {
	return len(l.Interlocutors) == 0 && len(l.Macros) == 0 && len(l.Kits) == 0 && l.Hooks == nil
}

type layerParser struct {
	text  string
	base  int
	lines *source.LineIndex
	src   Source
}

// ParseLayer decodes one YAML source. base is the absolute offset of text
// inside its file. A malformed source yields a layer with Err set and no
// entities.
func ParseLayer(src Source, text string, base int) *Layer {
	layer := &Layer{Source: src}
	if strings.TrimSpace(text) == "" {
		return layer
	}
	p := &layerParser{text: text, base: base, lines: source.NewLineIndex(text), src: src}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		layer.Err = err
		layer.ErrSpan = p.errorSpan(err)
		return layer
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return layer
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		layer.Err = ErrNotMapping
		layer.ErrSpan = p.lineSpan(root)
		return layer
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "interlocutor":
			layer.HasInterlocutor = true
			layer.InterlocutorSpan = p.lineSpan(key)
			if value.Kind == yaml.MappingNode {
				layer.Interlocutors = append(layer.Interlocutors, p.interlocutor(value))
			}
		case "interlocutors":
			layer.HasInterlocutor = true
			layer.InterlocutorSpan = p.lineSpan(key)
			if value.Kind == yaml.SequenceNode {
				for _, item := range value.Content {
					if item.Kind == yaml.MappingNode {
						layer.Interlocutors = append(layer.Interlocutors, p.interlocutor(item))
					}
				}
			}
		case "macros":
			if value.Kind == yaml.SequenceNode {
				for _, item := range value.Content {
					if m := p.macro(item); m != nil {
						layer.Macros = append(layer.Macros, m)
					}
				}
			}
		case "kits":
			if value.Kind == yaml.SequenceNode {
				for _, item := range value.Content {
					if k := p.kit(item); k != nil {
						layer.Kits = append(layer.Kits, k)
					}
				}
			}
		case "hooks":
			layer.Hooks = p.hooks(value)
		}
	}
	return layer
}

func (p *layerParser) interlocutor(node *yaml.Node) *Interlocutor {
	it := &Interlocutor{Source: p.src, NameSpan: p.lineSpan(node)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "name":
			it.Name = strings.TrimSpace(scalar(value))
			it.NameSpan = p.lineSpan(key)
		case "prompt":
			it.set |= fieldPrompt
			it.Prompt = scalar(value)
			it.HasPrompt = value.Kind != yaml.ScalarNode || strings.TrimSpace(value.Value) != ""
			if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
				it.HasPrompt = false
			}
			if it.HasPrompt {
				it.PromptSource = p.src
			}
		case "provider":
			it.set |= fieldProvider
			it.Provider = strings.TrimSpace(scalar(value))
		case "model":
			it.set |= fieldModel
			it.Model = strings.TrimSpace(scalar(value))
			it.ModelSpan = p.lineSpan(key)
		case "tools":
			it.set |= fieldTools
			it.Tools = p.tools(value)
		case "hooks":
			it.set |= fieldHooks
			it.Hooks = p.hooks(value)
		}
	}
	return it
}

func (p *layerParser) macro(node *yaml.Node) *Macro {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	m := &Macro{Source: p.src, NameSpan: p.lineSpan(node)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "name":
			m.Name = strings.TrimSpace(scalar(value))
			m.NameSpan = p.lineSpan(key)
		case "expansion":
			m.Expansion = scalar(value)
		}
	}
	if m.Name == "" {
		return nil
	}
	return m
}

func (p *layerParser) kit(node *yaml.Node) *Kit {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	k := &Kit{Source: p.src, NameSpan: p.lineSpan(node)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "name":
			k.Name = strings.TrimSpace(scalar(value))
			k.NameSpan = p.lineSpan(key)
		case "tools":
			k.Tools = p.tools(value)
		}
	}
	if k.Name == "" {
		return nil
	}
	return k
}

func (p *layerParser) tools(node *yaml.Node) []Tool {
	if node.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]Tool, 0, len(node.Content))
	for _, item := range node.Content {
		tool := Tool{Span: p.lineSpan(item)}
		switch item.Kind {
		case yaml.MappingNode:
			if len(item.Content) < 2 {
				continue
			}
			kindIdx := 0
			for i := 0; i+1 < len(item.Content); i += 2 {
				if k := item.Content[i].Value; k == "agent" || k == "kit" {
					kindIdx = i
					break
				}
			}
			key, value := item.Content[kindIdx], item.Content[kindIdx+1]
			tool.Kind = key.Value
			tool.Target = strings.TrimSpace(scalar(value))
			tool.Span = p.lineSpan(key)
			tool.TargetSpan = p.valueSpan(value)
		case yaml.ScalarNode:
			tool.Kind = item.Value
		default:
			continue
		}
		out = append(out, tool)
	}
	return out
}

func (p *layerParser) hooks(node *yaml.Node) *Hooks {
	h := &Hooks{IsSequence: node.Kind == yaml.SequenceNode, Span: p.lineSpan(node)}
	if !h.IsSequence {
		return h
	}
	for _, item := range node.Content {
		hook := Hook{Span: p.lineSpan(item)}
		if item.Kind == yaml.MappingNode {
			for i := 0; i+1 < len(item.Content); i += 2 {
				key, value := item.Content[i], item.Content[i+1]
				switch key.Value {
				case "do":
					hook.HasDo = true
				case "on":
					hook.On = append(hook.On, p.hookEvents(value)...)
				}
			}
		}
		h.Items = append(h.Items, hook)
	}
	return h
}

func (p *layerParser) hookEvents(node *yaml.Node) []HookEvent {
	switch node.Kind {
	case yaml.ScalarNode:
		return []HookEvent{{Name: strings.TrimSpace(node.Value), Span: p.valueSpan(node)}}
	case yaml.SequenceNode:
		out := make([]HookEvent, 0, len(node.Content))
		for _, item := range node.Content {
			out = append(out, HookEvent{Name: strings.TrimSpace(scalar(item)), Span: p.valueSpan(item)})
		}
		return out
	}
	return []HookEvent{{Span: p.lineSpan(node)}}
}

func scalar(node *yaml.Node) string {
	if node == nil || node.Kind != yaml.ScalarNode {
		return ""
	}
	return node.Value
}

// offset converts a node's 1-based line and rune column into a local byte
// offset.
func (p *layerParser) offset(node *yaml.Node) int {
	if node.Line <= 0 {
		return 0
	}
	i := p.lines.LineStart(node.Line - 1)
	for col := 1; col < node.Column && i < len(p.text); col++ {
		if p.text[i] == '\n' {
			break
		}
		_, size := utf8.DecodeRuneInString(p.text[i:])
		i += size
	}
	return i
}

// lineSpan covers the node's line from the node to the end of that line.
func (p *layerParser) lineSpan(node *yaml.Node) source.Span {
	return source.LineSpan(p.text, p.offset(node)).Shift(p.base)
}

// valueSpan covers a scalar's text, including quotes.
func (p *layerParser) valueSpan(node *yaml.Node) source.Span {
	start := p.offset(node)
	if node.Kind != yaml.ScalarNode {
		return source.LineSpan(p.text, start).Shift(p.base)
	}
	end := start + len(node.Value)
	if node.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		end += 2
	}
	line := source.LineSpan(p.text, start)
	if end > int(line.End) {
		end = int(line.End)
	}
	return source.NewSpan(start+p.base, end+p.base)
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

// errorSpan points at the line named in a YAML error, or the first line.
func (p *layerParser) errorSpan(err error) source.Span {
	line := 1
	if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
		if n, convErr := strconv.Atoi(m[1]); convErr == nil && n > 0 {
			line = n
		}
	}
	start := p.lines.LineStart(line - 1)
	return source.LineSpan(p.text, start).Shift(p.base)
}
