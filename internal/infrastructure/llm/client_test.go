package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ProductJudge/internal/config"
	"ProductJudge/internal/domain"
)

func TestOpenAIClientComplete(t *testing.T) {
	t.Parallel()

	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer groq-key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
		  "id": "chatcmpl-1",
		  "object": "chat.completion",
		  "created": 1700000000,
		  "model": "llama-3.3-70b-versatile",
		  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"arguments\":[]}"}}]
		}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("groq", "groq-key", server.URL+"/", "llama-3.3-70b-versatile")
	if client.Name() != "groq/llama-3.3-70b-versatile" {
		t.Fatalf("unexpected name %s", client.Name())
	}

	reply, err := client.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if reply != `{"arguments":[]}` {
		t.Fatalf("unexpected reply %q", reply)
	}
	if body["model"] != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected request body %v", body)
	}
}

func TestAnthropicClientComplete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
		  "id": "msg_1",
		  "type": "message",
		  "role": "assistant",
		  "model": "claude-3-5-haiku-latest",
		  "content": [{"type": "text", "text": "hello "}, {"type": "text", "text": "there"}],
		  "stop_reason": "end_turn",
		  "usage": {"input_tokens": 3, "output_tokens": 2}
		}`))
	}))
	defer server.Close()

	reply, err := NewAnthropicClient("key", server.URL+"/", "claude-3-5-haiku-latest").Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if reply != "hello there" {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestNewChatClient(t *testing.T) {
	t.Parallel()

	client, closeFn, err := NewChatClient(context.Background(), config.ReasoningConfig{Provider: config.ProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("NewChatClient error: %v", err)
	}
	if client.Name() != "openai/gpt-4o-mini" || closeFn() != nil {
		t.Fatalf("unexpected client %s", client.Name())
	}

	if _, _, err := NewChatClient(context.Background(), config.ReasoningConfig{Provider: "mystery"}); !errors.Is(err, domain.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
