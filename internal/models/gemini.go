package models

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

// GeminiFetcher lists models through the Gemini API client.
type GeminiFetcher struct {
	APIKey  string
	BaseURL string
}

func (f *GeminiFetcher) Models(ctx context.Context) ([]string, error) {
	if f.APIKey == "" {
		return nil, ErrMissingKey
	}
	cfg := &genai.ClientConfig{APIKey: f.APIKey, Backend: genai.BackendGeminiAPI}
	if f.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: f.BaseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var names []string
	for m, err := range cli.Models.All(ctx) {
		if err != nil {
			return nil, err
		}
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}
