package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff     Level = iota // no tracing
	LevelError                // failures only
	LevelRequest              // server lifecycle and one span per message
	LevelDetail               // feature steps inside a request
	LevelDebug                // everything, including IO
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelRequest:
		return "request"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "request":
		return LevelRequest, nil
	case "detail":
		return LevelDetail, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|request|detail|debug)", s)
	}
}

// ShouldEmit reports whether a non-error event of scope passes this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelRequest:
		return scope <= ScopeRequest
	case LevelDetail:
		return scope <= ScopeFeature
	case LevelDebug:
		return true
	}
	return false
}
