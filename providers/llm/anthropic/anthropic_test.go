package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paintedrobot/opsrelay/providers/llm"
)

func TestNew(t *testing.T) {
	provider := New()
	if provider == nil {
		t.Fatal("New() returned nil")
	}
	if provider.baseURL != defaultBaseURL {
		t.Errorf("expected baseURL %q, got %q", defaultBaseURL, provider.baseURL)
	}
}

func TestWithAPIKey(t *testing.T) {
	provider := New().WithAPIKey("test-key")
	if provider.apiKey != "test-key" {
		t.Errorf("expected apiKey %q, got %q", "test-key", provider.apiKey)
	}
}

func TestGenerate_Basic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.URL.Path; got != messagesEndpoint {
			t.Errorf("expected path %q, got %q", messagesEndpoint, got)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("missing or incorrect x-api-key header: %s", got)
		}
		if got := r.Header.Get("anthropic-version"); got != anthropicVersion {
			t.Errorf("missing or incorrect anthropic-version header: %s", got)
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.MaxTokens != 10000 {
			t.Errorf("expected max_tokens 10000, got %d", req.MaxTokens)
		}
		if req.Temperature == nil || *req.Temperature != 0.3 {
			t.Errorf("expected temperature 0.3, got %v", req.Temperature)
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
			t.Fatalf("expected one user message with two content blocks, got %+v", req.Messages)
		}
		if req.Messages[0].Content[1].Text != "INPUT_DATA_JSON:\n{}" {
			t.Errorf("unexpected second block: %q", req.Messages[0].Content[1].Text)
		}

		resp := anthropicResponse{
			ID:         "msg_01",
			Model:      "claude-sonnet-4-20250514",
			StopReason: "end_turn",
			Content: []anthropicContentBlock{
				{Type: "text", Text: `{"date": `},
				{Type: "text", Text: `"2025-01-01"}`},
			},
			Usage: anthropicUsage{InputTokens: 12, OutputTokens: 6},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)

	response, err := provider.Generate(context.Background(), llm.Request{
		Model:       "claude-sonnet-4-20250514",
		Prompt:      []string{"instructions", "INPUT_DATA_JSON:\n{}"},
		MaxTokens:   10000,
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// Text blocks must be concatenated in order.
	if response.Text != `{"date": "2025-01-01"}` {
		t.Errorf("unexpected text: %q", response.Text)
	}
	if response.Usage == nil || response.Usage.TotalTokens != 18 {
		t.Errorf("unexpected usage: %+v", response.Usage)
	}
}

func TestGenerate_MissingKey(t *testing.T) {
	provider := New().WithAPIKey("")
	if _, err := provider.Generate(context.Background(), llm.Request{Model: "m", Prompt: []string{"p"}}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestGenerate_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicResponse{ID: "msg_02", Content: nil})
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)
	_, err := provider.Generate(context.Background(), llm.Request{Model: "m", Prompt: []string{"p"}})
	if err == nil || !strings.Contains(err.Error(), "empty content") {
		t.Fatalf("expected empty content error, got %v", err)
	}
}

func TestGenerate_HTTPErrorCarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type": "error", "error": {"message": "max_tokens required"}}`))
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)
	_, err := provider.Generate(context.Background(), llm.Request{Model: "m", Prompt: []string{"p"}})
	if err == nil || !strings.Contains(err.Error(), "max_tokens required") {
		t.Fatalf("expected upstream body in error, got %v", err)
	}
}

func TestRequestToAnthropic_DefaultMaxTokens(t *testing.T) {
	req := requestToAnthropic(llm.Request{Model: "m", Prompt: []string{"p"}})
	if req.MaxTokens != defaultMaxTokens {
		t.Errorf("expected default max_tokens %d, got %d", defaultMaxTokens, req.MaxTokens)
	}
	if req.Temperature != nil {
		t.Errorf("zero temperature must be omitted, got %v", *req.Temperature)
	}
}
