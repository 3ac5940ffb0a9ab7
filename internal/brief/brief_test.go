package brief

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/paintedrobot/opsrelay/core/client"
	"github.com/paintedrobot/opsrelay/providers/llm"
)

// scriptedProvider returns one canned response (or error) per Generate call.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     []llm.Request
}

func (p *scriptedProvider) Generate(_ context.Context, request llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := len(p.calls)
	p.calls = append(p.calls, request)
	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}
	if i >= len(p.responses) {
		return nil, errors.New("scripted provider: no response left")
	}
	return &llm.Response{Model: request.Model, Text: p.responses[i]}, nil
}

func newTestService(t *testing.T, provider *scriptedProvider) *Service {
	t.Helper()
	s := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.newClient = func(string) (*client.Client, error) {
		return client.New(provider)
	}
	return s
}

// callbackRecorder captures the body of the delivered webhook.
func callbackRecorder(t *testing.T) (*httptest.Server, func() map[string]any) {
	t.Helper()
	var (
		mu   sync.Mutex
		body map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("callback body is not JSON: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	return srv, func() map[string]any {
		mu.Lock()
		defer mu.Unlock()
		return body
	}
}

func TestRunDeliversSuccessResult(t *testing.T) {
	provider := &scriptedProvider{
		responses: []string{
			// First call: the structured summary, fenced like models do.
			"```json\n{\"date\": \"2026-08-28\", \"overall_summary\": {\"headline\": \"Busy day\"}}\n```",
			// Second call: the HTML rendition.
			`{"html_daily_brief": "<h2>Daily Brief</h2><p><strong>Busy day</strong></p>"}`,
		},
	}
	srv, received := callbackRecorder(t)
	defer srv.Close()

	s := newTestService(t, provider)
	s.Run(Job{
		ID:          "job-1",
		Payload:     map[string]any{"date": "2026-08-28", "users": []any{}},
		APIKey:      "key",
		CallbackURL: srv.URL,
	})

	body := received()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("callback body %v missing data envelope", body)
	}
	if data["status"] != "ok" || data["date"] != "2026-08-28" {
		t.Errorf("result = %v", data)
	}

	output, ok := data["output"].(map[string]any)
	if !ok {
		t.Fatalf("result %v missing output object", data)
	}
	if _, ok := output["overall_summary"]; !ok {
		t.Errorf("output %v missing summary fields", output)
	}
	html, _ := output["html_daily_brief"].(string)
	if !strings.Contains(html, "<h2>Daily Brief</h2>") {
		t.Errorf("html_daily_brief = %q", html)
	}
	text, _ := output["text_daily_brief"].(string)
	if !strings.Contains(text, "Daily Brief") || strings.Contains(text, "<h2>") {
		t.Errorf("text_daily_brief = %q", text)
	}

	if len(provider.calls) != 2 {
		t.Fatalf("provider called %d times, want 2", len(provider.calls))
	}
	if provider.calls[0].MaxTokens != summaryMaxTokens || provider.calls[1].MaxTokens != htmlMaxTokens {
		t.Errorf("max tokens = %d, %d", provider.calls[0].MaxTokens, provider.calls[1].MaxTokens)
	}
	if !strings.Contains(provider.calls[1].Prompt[1], "SUMMARY_JSON") {
		t.Errorf("second call should embed the summary, got %q", provider.calls[1].Prompt[1])
	}
}

func TestRunMissingHTMLFieldFallsBackToEmpty(t *testing.T) {
	provider := &scriptedProvider{
		responses: []string{
			`{"date": "2026-08-28"}`,
			`{"something_else": true}`,
		},
	}
	srv, received := callbackRecorder(t)
	defer srv.Close()

	s := newTestService(t, provider)
	s.Run(Job{ID: "job-2", Payload: map[string]any{"date": "2026-08-28"}, CallbackURL: srv.URL})

	data := received()["data"].(map[string]any)
	output := data["output"].(map[string]any)
	if html, ok := output["html_daily_brief"].(string); !ok || html != "" {
		t.Errorf("html_daily_brief = %v, want empty string", output["html_daily_brief"])
	}
	if _, ok := output["text_daily_brief"]; ok {
		t.Error("text_daily_brief should be absent when there is no HTML")
	}
}

func TestRunUnparseableModelOutput(t *testing.T) {
	provider := &scriptedProvider{
		responses: []string{"I could not produce the summary today, sorry."},
	}
	srv, received := callbackRecorder(t)
	defer srv.Close()

	s := newTestService(t, provider)
	s.Run(Job{ID: "job-3", Payload: map[string]any{"date": "2026-08-28"}, CallbackURL: srv.URL})

	data := received()["data"].(map[string]any)
	if data["status"] != "error" {
		t.Fatalf("status = %v, want error", data["status"])
	}
	if data["message"] != "Model output was not valid JSON object" {
		t.Errorf("message = %v", data["message"])
	}
	// Malformed output is undiagnosable without the original text.
	if data["raw_output"] != provider.responses[0] {
		t.Errorf("raw_output = %v, want the full completion", data["raw_output"])
	}
}

func TestRunUnparseableHTMLStageOutput(t *testing.T) {
	provider := &scriptedProvider{
		responses: []string{
			`{"date": "2026-08-28"}`,
			"here is your brief: <h2>Daily Brief</h2>", // prose, no JSON object
		},
	}
	srv, received := callbackRecorder(t)
	defer srv.Close()

	s := newTestService(t, provider)
	s.Run(Job{ID: "job-3b", Payload: map[string]any{"date": "2026-08-28"}, CallbackURL: srv.URL})

	data := received()["data"].(map[string]any)
	if data["status"] != "error" || data["message"] != "Model output was not valid JSON object" {
		t.Fatalf("result = %v", data)
	}
	if data["raw_output"] != provider.responses[1] {
		t.Errorf("raw_output = %v, want the second-stage completion", data["raw_output"])
	}
}

func TestRunProviderFailure(t *testing.T) {
	provider := &scriptedProvider{
		errs: []error{errors.New("non-2xx status 529: overloaded")},
	}
	srv, received := callbackRecorder(t)
	defer srv.Close()

	s := newTestService(t, provider)
	s.Run(Job{ID: "job-4", Payload: map[string]any{"date": "2026-08-28"}, CallbackURL: srv.URL})

	data := received()["data"].(map[string]any)
	if data["status"] != "error" || data["message"] != "Anthropic API request failed" {
		t.Errorf("result = %v", data)
	}
	details, _ := data["details"].(string)
	if !strings.Contains(details, "529") {
		t.Errorf("details = %q should carry the upstream failure", details)
	}
}

func TestRunSurvivesDeadCallback(t *testing.T) {
	provider := &scriptedProvider{
		responses: []string{`{"date": "d"}`, `{"html_daily_brief": ""}`},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuses connections

	s := newTestService(t, provider)
	// Must not panic or block.
	s.Run(Job{ID: "job-5", Payload: map[string]any{"date": "d"}, CallbackURL: srv.URL})
}

func TestTransform(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    map[string]any
	}{
		{
			name: "priorities object becomes value list",
			payload: map[string]any{
				"date": "2026-08-28",
				"users": []any{
					map[string]any{
						"user":        "Ana",
						"total_hours": 7.5,
						"projects": []any{
							map[string]any{
								"project": "Website",
								"priorities": map[string]any{
									"p2": map[string]any{"name": "Launch"},
									"p1": map[string]any{"name": "Fix nav"},
								},
							},
						},
					},
				},
			},
			want: map[string]any{
				"date":       "2026-08-28",
				"priorities": []any{},
				"errors":     map[string]any{},
				"users": []any{
					map[string]any{
						"user":            "Ana",
						"total_hours":     7.5,
						"morning_hours":   nil,
						"afternoon_hours": nil,
						"blocks":          []any{},
						"projects": []any{
							map[string]any{
								"project":           "Website",
								"total_block_hours": nil,
								"priorities": []any{
									map[string]any{"name": "Fix nav"},
									map[string]any{"name": "Launch"},
								},
								"unprioritized_tasks": []any{},
							},
						},
					},
				},
			},
		},
		{
			name: "priority list kept as-is",
			payload: map[string]any{
				"users": []any{
					map[string]any{
						"user": "Bo",
						"projects": []any{
							map[string]any{"project": "App", "priorities": []any{"a", "b"}},
						},
					},
				},
			},
			want: map[string]any{
				"date":       nil,
				"priorities": []any{},
				"errors":     map[string]any{},
				"users": []any{
					map[string]any{
						"user":            "Bo",
						"total_hours":     nil,
						"morning_hours":   nil,
						"afternoon_hours": nil,
						"blocks":          []any{},
						"projects": []any{
							map[string]any{
								"project":             "App",
								"total_block_hours":   nil,
								"priorities":          []any{"a", "b"},
								"unprioritized_tasks": []any{},
							},
						},
					},
				},
			},
		},
		{
			name:    "empty payload",
			payload: map[string]any{},
			want: map[string]any{
				"date":       nil,
				"priorities": []any{},
				"errors":     map[string]any{},
				"users":      []any{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transform(tt.payload)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Transform() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNormalizePrioritiesJunk(t *testing.T) {
	for _, v := range []any{nil, "text", 42.0, true} {
		if got := normalizePriorities(v); len(got) != 0 {
			t.Errorf("normalizePriorities(%v) = %v, want empty", v, got)
		}
	}
}

func TestTextBrief(t *testing.T) {
	if got := TextBrief("   "); got != "" {
		t.Errorf("blank input = %q, want empty", got)
	}
	got := TextBrief("<h2>Main Priorities</h2><ul><li>Ship the <strong>release</strong></li></ul>")
	if !strings.Contains(got, "Main Priorities") || !strings.Contains(got, "release") {
		t.Errorf("TextBrief = %q", got)
	}
	if strings.Contains(got, "<") {
		t.Errorf("TextBrief left HTML tags in %q", got)
	}
}
