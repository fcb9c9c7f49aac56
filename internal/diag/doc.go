// Package diag defines the diagnostic model shared by the checker, the
// language server and the check command.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error, with a fixed LSP mapping.
//   - Code: compact numeric identifier with a stable "LEC" string form.
//   - Message: human oriented text; keep it short and actionable.
//   - Primary: the absolute byte span in the checked document.
//   - Notes: optional secondary spans, e.g. the other occurrence of a
//     duplicate name.
//   - Fixes: optional text edits that resolve the finding.
//
// Spans are byte offsets; converting them to editor positions is the
// caller's job, since only the caller knows which text they index.
//
// # Emitting diagnostics
//
// Producers write through a Reporter. ReportError / ReportWarning return a
// ReportBuilder that chains WithNote and WithFix before Emit. BagReporter
// collects into a Bag, which enforces a limit and supports sorting and
// deduplication.
package diag
