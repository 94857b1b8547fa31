package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ProductJudge/internal/config"
	"ProductJudge/internal/domain"
)

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	got := BuildQuery(domain.Request{URL: "https://www.shop.example.com/p/1", Keywords: []string{"acme", "x2 headphones"}})
	want := "acme x2 headphones shop.example.com review pros cons"
	if got != want {
		t.Fatalf("BuildQuery = %q, want %q", got, want)
	}
}

func TestTavilyFetch(t *testing.T) {
	t.Parallel()

	var got searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tvly-test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{
		  "query": "acme review",
		  "answer": "",
		  "results": [
		    {"title": "Acme X2 review", "url": "https://reviews.example.com/x2", "content": "Great sound, weak hinge.", "score": 0.9},
		    {"title": "Empty", "url": "https://empty.example.com", "content": "  ", "score": 0.1},
		    {"title": "Forum", "url": "https://forum.example.com/t/1", "content": "short", "raw_content": "Battery lasts two days.", "score": 0.5}
		  ]
		}`))
	}))
	defer server.Close()

	client := NewTavilyClient(config.SearchConfig{Endpoint: server.URL, APIKey: "tvly-test", MaxResults: 3, Depth: "basic"}, nil)
	content, err := client.Fetch(context.Background(), domain.Request{URL: "https://acme.example.com/x2", Keywords: []string{"acme"}})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if got.MaxResults != 3 || got.SearchDepth != "basic" || !strings.HasPrefix(got.Query, "acme acme.example.com") {
		t.Fatalf("unexpected request payload %+v", got)
	}
	if !strings.Contains(content.Text, "Great sound, weak hinge.") || !strings.Contains(content.Text, "Battery lasts two days.") {
		t.Fatalf("unexpected text: %s", content.Text)
	}
	if strings.Contains(content.Text, "Empty") || strings.Contains(content.Text, "short") {
		t.Fatalf("empty results and replaced snippets should be skipped: %s", content.Text)
	}
	if content.Source != "search" {
		t.Fatalf("unexpected source %q", content.Source)
	}
}

func TestTavilyFetchErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewTavilyClient(config.SearchConfig{Endpoint: server.URL, APIKey: "bad"}, nil)
	_, err := client.Fetch(context.Background(), domain.Request{URL: "https://a.example.com", Keywords: []string{"a"}})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 error, got %v", err)
	}

	_, err = NewTavilyClient(config.SearchConfig{}, nil).Fetch(context.Background(), domain.Request{})
	if err == nil {
		t.Fatalf("expected misconfiguration error")
	}
}
