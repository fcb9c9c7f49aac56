// Package trace records what the language server does with each message.
//
// Tracing is off unless the lsp command is started with --trace. Events go to
// a stream (stderr or a file) as text or NDJSON:
//
//	lectic lsp --trace=/tmp/lectic.ndjson --trace-level=detail
//
// Levels, from quietest to loudest: off, error (failures only), request (one
// span per handled message), detail (analysis, resolution and feature
// steps), debug (file reads and model fetches as well).
//
// A span brackets one operation:
//
//	span := trace.Begin(t, trace.ScopeRequest, "textDocument/hover", 0)
//	defer span.End("")
package trace
