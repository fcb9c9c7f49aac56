package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicFetcherPaginates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("x-api-key") != "k" || r.Header.Get("anthropic-version") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		body := map[string]any{"data": []map[string]string{{"id": "claude-a"}}, "has_more": true, "last_id": "claude-a"}
		if r.URL.Query().Get("after_id") == "claude-a" {
			body = map[string]any{"data": []map[string]string{{"id": "claude-b"}}, "has_more": false}
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	names, err := NewAnthropicFetcher(srv.URL, "k").Models(context.Background())
	if err != nil {
		t.Fatalf("Models: %v", err)
	}
	if len(names) != 2 || names[0] != "claude-a" || names[1] != "claude-b" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestOpenAIFetcherReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"gpt-4o"}]}`))
	}))
	defer srv.Close()

	if _, err := NewOpenAIFetcher(srv.URL, "bad").Models(context.Background()); err == nil {
		t.Fatalf("expected an error for 401")
	}
	names, err := NewOpenAIFetcher(srv.URL, "good").Models(context.Background())
	if err != nil || len(names) != 1 || names[0] != "gpt-4o" {
		t.Fatalf("unexpected result %v %v", names, err)
	}
}

func TestDefaultFetchersFollowKeys(t *testing.T) {
	env := map[string]string{"ANTHROPIC_API_KEY": "a", "GEMINI_API_KEY": " "}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }
	got := DefaultFetchers(lookup)
	if _, ok := got["anthropic"]; !ok || len(got) != 1 {
		t.Fatalf("unexpected fetchers %v", got)
	}
}
