package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"lectic/internal/source"
)

// EntityKind names the declarations definition lookup can find.
type EntityKind uint8

const (
	EntityInterlocutor EntityKind = iota
	EntityMacro
	EntityKit
)

// SourceError is a source that could not be read or parsed.
type SourceError struct {
	Source Source
	Err    error
	Span   source.Span
}

// Resolution is the detailed result of resolving a chain.
type Resolution struct {
	Spec *Spec
	// Layers are ordered from lowest to highest precedence and include
	// broken sources with Err set.
	Layers []*Layer
	Header *Layer
	// Sources lists every source that contributed, in precedence order.
	Sources []Source
	// Paths lists the files actually read.
	Paths  []string
	Files  *source.FileSet
	Errors []SourceError
}

// Location is where an entity was declared.
type Location struct {
	Source Source
	Span   source.Span
}

// Find returns the declaration of name, searching the most specific layer
// first. Macro names compare case-insensitively.
func (r *Resolution) Find(kind EntityKind, name string) (Location, bool) {
	if r == nil {
		return Location{}, false
	}
	for i := len(r.Layers) - 1; i >= 0; i-- {
		layer := r.Layers[i]
		switch kind {
		case EntityInterlocutor:
			for _, it := range layer.Interlocutors {
				if it.Name == name {
					return Location{Source: it.Source, Span: it.NameSpan}, true
				}
			}
		case EntityKit:
			for _, k := range layer.Kits {
				if k.Name == name {
					return Location{Source: k.Source, Span: k.NameSpan}, true
				}
			}
		case EntityMacro:
			key := MacroKey(name)
			for _, m := range layer.Macros {
				if MacroKey(m.Name) == key {
					return Location{Source: m.Source, Span: m.NameSpan}, true
				}
			}
		}
	}
	return Location{}, false
}

// Resolver discovers and reads configuration files.
type Resolver struct {
	// SystemPath is the system config file; empty disables it.
	SystemPath string
	ReadFile   func(string) ([]byte, error)
	// Stop, when closed, cuts workspace discovery short.
	Stop <-chan struct{}
}

// NewResolver returns a resolver using the environment's system config
// location and the real filesystem.
func NewResolver() *Resolver {
	return &Resolver{SystemPath: SystemConfigPath(nil), ReadFile: os.ReadFile}
}

// Resolve returns only the merged specification.
func (r *Resolver) Resolve(docDir, headerText string, headerOffset int) *Spec {
	return r.ResolveDetailed(docDir, "", headerText, headerOffset).Spec
}

// ResolveDetailed resolves system, workspace and header layers. docPath is
// recorded as the header's source path. Broken sources are skipped and
// reported in Errors.
func (r *Resolver) ResolveDetailed(docDir, docPath, headerText string, headerOffset int) *Resolution {
	res := r.Chain(docDir)
	header := ParseLayer(Source{Path: docPath, Kind: SourceHeader}, headerText, headerOffset)
	res.Header = header
	res.add(header)
	res.Spec = Merge(res.Layers...)
	return res
}

// Chain resolves the file-backed layers for dir: the system config and the
// nearest workspace lectic.yaml.
func (r *Resolver) Chain(dir string) *Resolution {
	res := &Resolution{Files: source.NewFileSetWithReader(r.readFile())}
	if r.SystemPath != "" {
		res.load(Source{Path: r.SystemPath, Kind: SourceSystem})
	}
	if dir != "" {
		path, ok, err := FindWorkspaceConfig(dir, r.Stop)
		if err == nil && ok && !samePath(path, r.SystemPath) {
			res.load(Source{Path: path, Kind: SourceWorkspace})
		}
	}
	res.Spec = Merge(res.Layers...)
	return res
}

func (r *Resolver) readFile() func(string) ([]byte, error) {
	if r.ReadFile != nil {
		return r.ReadFile
	}
	return os.ReadFile
}

func (res *Resolution) load(src Source) {
	f, err := res.Files.Load(src.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			res.Errors = append(res.Errors, SourceError{Source: src, Err: err})
		}
		return
	}
	res.Paths = append(res.Paths, f.Path)
	res.add(ParseLayer(Source{Path: f.Path, Kind: src.Kind}, f.Text, 0))
}

func (res *Resolution) add(layer *Layer) {
	res.Layers = append(res.Layers, layer)
	if layer.Err != nil {
		res.Errors = append(res.Errors, SourceError{Source: layer.Source, Err: layer.Err, Span: layer.ErrSpan})
		return
	}
	res.Sources = append(res.Sources, layer.Source)
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	ca, errA := filepath.Abs(a)
	cb, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return filepath.Clean(ca) == filepath.Clean(cb)
}
