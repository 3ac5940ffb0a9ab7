package gemini

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

func TestGenerate_Basic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("missing or incorrect x-goog-api-key header: %s", got)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("unexpected Authorization header: %s", got)
		}

		var req generateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 {
			t.Fatalf("expected a single user content with one part, got %+v", req.Contents)
		}
		if req.SystemInstruction == nil || len(req.SystemInstruction.Parts) != 1 {
			t.Error("expected a system instruction")
		}

		resp := generateContentResponse{
			ResponseID: "resp-1",
			Candidates: []candidate{{
				Content: &content{
					Role:  "model",
					Parts: []part{{Text: `{"company_name": `}, {Text: `"Acme"}`}},
				},
				FinishReason: "STOP",
			}},
			UsageMetadata: &usageMetadata{
				PromptTokenCount:     10,
				CandidatesTokenCount: 8,
				TotalTokenCount:      18,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)

	response, err := provider.Generate(context.Background(), llm.Request{
		Model:  "gemini-2.5-flash",
		System: "You are a research assistant.",
		Prompt: []string{"Research the company."},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if response.Text != `{"company_name": "Acme"}` {
		t.Errorf("unexpected text: %q", response.Text)
	}
	if response.FinishReason != "stop" {
		t.Errorf("expected finish_reason 'stop', got %q", response.FinishReason)
	}
	if response.Usage == nil || response.Usage.TotalTokens != 18 {
		t.Errorf("unexpected usage: %+v", response.Usage)
	}
	if response.Model != "gemini-2.5-flash" {
		t.Errorf("unexpected model: %q", response.Model)
	}
}

func TestGenerate_WithGoogleSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		hasGoogleSearch := false
		for _, tool := range req.Tools {
			if tool.GoogleSearch != nil {
				hasGoogleSearch = true
			}
		}
		if !hasGoogleSearch {
			t.Error("expected google_search tool in request")
		}

		json.NewEncoder(w).Encode(generateContentResponse{
			Candidates: []candidate{{Content: &content{Parts: []part{{Text: "{}"}}}}},
		})
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)
	if _, err := provider.Generate(context.Background(), llm.Request{Prompt: []string{"p"}, WebSearch: true}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
}

func TestGenerate_MissingKey(t *testing.T) {
	provider := New().WithAPIKey("")
	if _, err := provider.Generate(context.Background(), llm.Request{Prompt: []string{"p"}}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestGenerate_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateContentResponse{})
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)
	response, err := provider.Generate(context.Background(), llm.Request{Prompt: []string{"p"}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	// Responses with no candidates keep empty text; the caller decides how to
	// surface that.
	if response.Text != "" {
		t.Errorf("expected empty text, got %q", response.Text)
	}
}
