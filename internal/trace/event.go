package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	// KindError is emitted at every level except off.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeServer  Scope = iota + 1 // lifecycle: initialize, shutdown, settings
	ScopeRequest                  // one handled JSON-RPC message
	ScopeFeature                  // analysis, resolution, diagnostics, hover...
	ScopeIO                       // file reads, globbing, model fetches
)

func (s Scope) String() string {
	switch s {
	case ScopeServer:
		return "server"
	case ScopeRequest:
		return "request"
	case ScopeFeature:
		return "feature"
	case ScopeIO:
		return "io"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	Name     string // e.g. "textDocument/hover", "resolve"
	Detail   string
	Extra    map[string]string
}
