package gemini

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/paintedrobot/opsrelay/internal/utils"
	"github.com/paintedrobot/opsrelay/providers/llm"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"
)

// GeminiProvider implements the [llm.Provider] interface for Google's Gemini API.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a new Gemini provider instance with default values from environment.
// Environment variables:
//   - GEMINI_API_KEY: API key for authentication
//   - GEMINI_API_BASE_URL: Base URL for API (optional, defaults to Google's API)
func New() *GeminiProvider {
	baseURL := os.Getenv("GEMINI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &GeminiProvider{
		apiKey:  os.Getenv("GEMINI_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider.
func (p *GeminiProvider) WithAPIKey(apiKey string) *GeminiProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API.
func (p *GeminiProvider) WithBaseURL(baseURL string) *GeminiProvider {
	p.baseURL = baseURL
	return p
}

// WithHTTPClient sets a custom HTTP client.
func (p *GeminiProvider) WithHTTPClient(httpClient *http.Client) *GeminiProvider {
	p.client = httpClient
	return p
}

// Generate implements the [llm.Provider] interface. It sends a generateContent
// request to the Gemini API and returns the response. When request.WebSearch
// is set, the built-in Google Search grounding tool is attached so the model
// can research on the public web.
func (p *GeminiProvider) Generate(ctx context.Context, request llm.Request) (*llm.Response, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("missing Gemini API key")
	}

	model := request.Model
	if model == "" {
		model = defaultModel
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, model)

	// Gemini authenticates through the x-goog-api-key header.
	httpResponse, resp, err := utils.DoPostSync[generateContentResponse](
		ctx,
		p.client,
		url,
		requestToGemini(request),
		utils.HeaderOption{Key: "x-goog-api-key", Value: p.apiKey},
	)
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, fmt.Errorf("empty response from Gemini API: %s", httpResponse.Status)
	}

	result := geminiToGeneric(*resp)
	result.Model = model // Ensure model is set even if not in response

	return result, nil
}

// requestToGemini converts an llm.Request into the generateContent wire
// format. Prompt parts map onto parts of a single user content entry.
func requestToGemini(request llm.Request) generateContentRequest {
	parts := make([]part, 0, len(request.Prompt))
	for _, text := range request.Prompt {
		parts = append(parts, part{Text: text})
	}

	req := generateContentRequest{
		Contents: []content{{Parts: parts}},
	}

	if request.System != "" {
		req.SystemInstruction = &systemInstruction{
			Parts: []part{{Text: request.System}},
		}
	}

	if request.WebSearch {
		req.Tools = []tool{{GoogleSearch: &googleSearchTool{}}}
	}

	if request.Temperature > 0 || request.MaxTokens > 0 {
		cfg := &generationConfig{}
		if request.Temperature > 0 {
			temp := request.Temperature
			cfg.Temperature = &temp
		}
		if request.MaxTokens > 0 {
			maxTokens := request.MaxTokens
			cfg.MaxOutputTokens = &maxTokens
		}
		req.GenerationConfig = cfg
	}

	return req
}

// geminiToGeneric maps a generateContent response to the provider-agnostic
// format. Only the first candidate is used; its text parts are concatenated
// in order. A response with no candidates yields empty text, which the caller
// surfaces through the extractor's empty-output error.
func geminiToGeneric(resp generateContentResponse) *llm.Response {
	result := &llm.Response{ID: resp.ResponseID}

	if len(resp.Candidates) > 0 {
		first := resp.Candidates[0]
		result.FinishReason = strings.ToLower(first.FinishReason)

		if first.Content != nil {
			var text strings.Builder
			for _, p := range first.Content.Parts {
				text.WriteString(p.Text)
			}
			result.Text = text.String()
		}
	}

	if resp.UsageMetadata != nil {
		result.Usage = &llm.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	return result
}
