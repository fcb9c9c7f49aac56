package config

import (
	"fmt"
	"os"
	"strings"
)

// providerKeys is the order in which API keys pick a default provider.
var providerKeys = []struct {
	provider string
	env      string
}{
	{"anthropic", "ANTHROPIC_API_KEY"},
	{"gemini", "GEMINI_API_KEY"},
	{"openai", "OPENAI_API_KEY"},
	{"openrouter", "OPENROUTER_API_KEY"},
}

// ProviderKeyEnv returns the API key variable for provider, or "".
func ProviderKeyEnv(provider string) string {
	for _, p := range providerKeys {
		if p.provider == provider {
			return p.env
		}
	}
	return ""
}

// DefaultProvider returns the first provider whose API key is set.
func DefaultProvider(lookup LookupEnv) (string, bool) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, p := range providerKeys {
		if v, ok := lookup(p.env); ok && strings.TrimSpace(v) != "" {
			return p.provider, true
		}
	}
	return "", false
}

// MinimalHeader renders the smallest header that defines an interlocutor.
// An empty provider leaves the choice to the runtime.
func MinimalHeader(provider string) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("interlocutor:\n")
	b.WriteString("  name: Assistant\n")
	b.WriteString("  prompt: You are a helpful assistant.\n")
	if provider != "" {
		fmt.Fprintf(&b, "  provider: %s\n", provider)
	}
	b.WriteString("---\n")
	return b.String()
}
