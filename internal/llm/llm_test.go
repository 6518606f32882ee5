package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(Config{Provider: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewOpenRouterDefaults(t *testing.T) {
	model, err := New(Config{Provider: "openrouter", APIKey: "k"})
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	if model.Provider() != "openrouter" {
		t.Errorf("unexpected provider %q", model.Provider())
	}
	if model.Model() != "meta-llama/llama-3.2-3b-instruct:free" {
		t.Errorf("unexpected default model %q", model.Model())
	}
}

func TestNewClaude(t *testing.T) {
	model, err := New(Config{Provider: "claude", APIKey: "k"})
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	if model.Provider() != "claude" {
		t.Errorf("unexpected provider %q", model.Provider())
	}
}

func TestKnownProvidersCoverCompatibleMap(t *testing.T) {
	known := KnownProviders()
	set := make(map[string]bool, len(known))
	for _, p := range known {
		set[p] = true
	}
	for p := range openAICompatibleProviders {
		if !set[p] {
			t.Errorf("provider %q missing from KnownProviders", p)
		}
	}
	if !set["claude"] || !set["ollama"] {
		t.Error("built-in providers missing from KnownProviders")
	}
}

func TestOpenAICompatibleChat(t *testing.T) {
	var gotAuth string
	var gotReq openaiRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	defer srv.Close()

	model := newOpenAICompatible("openai", "secret", srv.URL, "gpt-4o-mini")

	content, err := model.Chat(context.Background(), "be brief", []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if content != "hello" {
		t.Errorf("unexpected content %q", content)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}

	// system prompt prepended as a system-role message
	if len(gotReq.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != "be brief" {
		t.Errorf("system message not first: %+v", gotReq.Messages[0])
	}
	if gotReq.Model != "gpt-4o-mini" {
		t.Errorf("unexpected model %q", gotReq.Model)
	}
}

func TestOpenAICompatibleChatHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	model := newOpenAICompatible("openai", "k", srv.URL, "m")

	_, err := model.Chat(context.Background(), "", []Message{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status in error, got %q", err)
	}
}

func TestOpenAICompatibleChatAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model not found"}}`))
	}))
	defer srv.Close()

	model := newOpenAICompatible("openai", "k", srv.URL, "m")

	_, err := model.Chat(context.Background(), "", []Message{{Role: "user", Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Errorf("expected api error message, got %v", err)
	}
}

func TestOpenAICompatibleChatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	model := newOpenAICompatible("openai", "k", srv.URL, "m")

	if _, err := model.Chat(context.Background(), "", []Message{{Role: "user", Content: "hi"}}); err == nil {
		t.Error("expected error for empty choices")
	}
}
