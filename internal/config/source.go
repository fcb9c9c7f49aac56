// Package config resolves the lectic configuration chain: the system config
// file, the nearest workspace lectic.yaml and the document's own header,
// merged in that order into one effective specification. Every entity keeps
// the source it was declared in.
package config

import "fmt"

// SourceKind orders sources from lowest to highest precedence.
type SourceKind uint8

const (
	SourceSystem SourceKind = iota
	SourceWorkspace
	SourceHeader
)

func (k SourceKind) String() string {
	switch k {
	case SourceSystem:
		return "system"
	case SourceWorkspace:
		return "workspace"
	case SourceHeader:
		return "header"
	default:
		return "unknown"
	}
}

// Source records where a fragment of the specification came from. Path is
// empty for the header of an unsaved document.
type Source struct {
	Path string
	Kind SourceKind
}

func (s Source) String() string {
	if s.Path == "" {
		return s.Kind.String()
	}
	return fmt.Sprintf("%s (%s)", s.Kind, s.Path)
}
