package models

import (
	"strings"

	"lectic/internal/config"
)

// DefaultFetchers returns a fetcher for every provider whose API key is set.
func DefaultFetchers(lookup config.LookupEnv) map[string]Fetcher {
	out := make(map[string]Fetcher)
	key := func(provider string) string {
		env := config.ProviderKeyEnv(provider)
		if env == "" || lookup == nil {
			return ""
		}
		v, _ := lookup(env)
		return strings.TrimSpace(v)
	}
	if k := key("anthropic"); k != "" {
		out["anthropic"] = NewAnthropicFetcher("", k)
	}
	if k := key("openai"); k != "" {
		out["openai"] = NewOpenAIFetcher("", k)
	}
	if k := key("openrouter"); k != "" {
		out["openrouter"] = NewOpenAIFetcher(OpenRouterBaseURL, k)
	}
	if k := key("gemini"); k != "" {
		out["gemini"] = &GeminiFetcher{APIKey: k}
	}
	return out
}
