package lsp

import (
	"runtime/debug"

	"lectic/internal/trace"
)

// safely runs one feature computation. A panic is logged and the feature
// answers with its zero value, which the client receives as null.
func safely[T any](s *Server, name string, fn func() T) (result T) {
	span := trace.Begin(s.tracer, trace.ScopeFeature, name, 0)
	defer func() {
		if r := recover(); r != nil {
			s.logf("%s failed: %v\n%s", name, r, debug.Stack())
			span.End("panic")
			var zero T
			result = zero
			return
		}
		span.End("")
	}()
	return fn()
}
