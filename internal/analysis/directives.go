package analysis

// Builtin directive keys and their hover documentation.
var builtinDocs = map[string]string{
	"ask":             "`:ask[Name]` switches the conversation to interlocutor *Name* for the rest of the document.",
	"aside":           "`:aside[Name]` lets interlocutor *Name* answer the current message only, then returns to the previous speaker.",
	"cmd":             "`:cmd[command]` runs a shell command and inserts its output into the message.",
	"reset":           "`:reset[]` clears the conversation context; earlier messages are not sent to the model.",
	"macro":           "`:macro[name]` expands the named macro in place.",
	"merge_yaml":      "`:merge_yaml[yaml]` merges YAML into the header configuration from this point on.",
	"temp_merge_yaml": "`:temp_merge_yaml[yaml]` merges YAML into the header configuration for the current message only.",
	"attach":          "`:attach[text]` adds text to the conversation as an attachment.",
	"env":             "`:env[NAME]` inserts the value of an environment variable.",
}

// IsBuiltin reports whether key is a built-in directive.
func IsBuiltin(key string) bool {
	_, ok := builtinDocs[key]
	return ok
}

// BuiltinDoc returns the hover documentation for a built-in directive.
func BuiltinDoc(key string) (string, bool) {
	doc, ok := builtinDocs[key]
	return doc, ok
}

// Outermost drops directives nested inside an earlier one.
func Outermost(ds []DirectiveSpan) []DirectiveSpan {
	out := make([]DirectiveSpan, 0, len(ds))
	end := -1
	for _, d := range ds {
		if d.AbsStart < end {
			continue
		}
		out = append(out, d)
		end = d.AbsEnd
	}
	return out
}
