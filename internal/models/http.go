package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"
)

const (
	AnthropicBaseURL  = "https://api.anthropic.com"
	OpenAIBaseURL     = "https://api.openai.com"
	OpenRouterBaseURL = "https://openrouter.ai/api"

	anthropicVersion = "2023-06-01"
	requestTimeout   = 15 * time.Second
)

type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
	HasMore bool   `json:"has_more"`
	LastID  string `json:"last_id"`
}

// HTTPFetcher lists models from an endpoint answering GET /v1/models with a
// {"data": [{"id": ...}]} body, as Anthropic, OpenAI and OpenRouter do.
type HTTPFetcher struct {
	BaseURL string
	Headers map[string]string
	// Paginate follows Anthropic's has_more/last_id cursor.
	Paginate bool
	Client   *resty.Client
}

// NewAnthropicFetcher authenticates with the x-api-key header.
func NewAnthropicFetcher(baseURL, apiKey string) *HTTPFetcher {
	if baseURL == "" {
		baseURL = AnthropicBaseURL
	}
	return &HTTPFetcher{
		BaseURL: baseURL,
		Headers: map[string]string{
			"x-api-key":         apiKey,
			"anthropic-version": anthropicVersion,
		},
		Paginate: true,
	}
}

// NewOpenAIFetcher authenticates with a bearer token. OpenRouter speaks the
// same protocol under a different base URL.
func NewOpenAIFetcher(baseURL, apiKey string) *HTTPFetcher {
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}
	return &HTTPFetcher{
		BaseURL: baseURL,
		Headers: map[string]string{"Authorization": "Bearer " + apiKey},
	}
}

func (f *HTTPFetcher) Models(ctx context.Context) ([]string, error) {
	client := f.Client
	if client == nil {
		client = resty.New().SetTimeout(requestTimeout)
		defer client.Close()
	}
	var names []string
	after := ""
	for {
		var list modelList
		req := client.R().
			SetContext(ctx).
			SetHeaders(f.Headers).
			SetResult(&list)
		if f.Paginate {
			req.SetQueryParam("limit", "1000")
			if after != "" {
				req.SetQueryParam("after_id", after)
			}
		}
		res, err := req.Get(strings.TrimRight(f.BaseURL, "/") + "/v1/models")
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			return nil, fmt.Errorf("GET /v1/models: %s", res.Status())
		}
		for _, m := range list.Data {
			names = append(names, m.ID)
		}
		if !f.Paginate || !list.HasMore || list.LastID == "" || list.LastID == after {
			return names, nil
		}
		after = list.LastID
	}
}
