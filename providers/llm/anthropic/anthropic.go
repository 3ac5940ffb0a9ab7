package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/paintedrobot/opsrelay/internal/utils"
	"github.com/paintedrobot/opsrelay/providers/llm"
)

const (
	// defaultBaseURL is the canonical base URL for Anthropic's Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// anthropicVersion is the required anthropic-version header value.
	// Anthropic uses this to version-lock response formats independently of the URL.
	anthropicVersion = "2023-06-01"
)

// AnthropicProvider implements [llm.Provider] for Anthropic's Messages API.
// Use [New] to construct a ready-to-use instance.
type AnthropicProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New returns an [AnthropicProvider] initialized from environment variables.
// It reads ANTHROPIC_KEY for authentication and ANTHROPIC_API_BASE_URL for the
// endpoint base (defaulting to https://api.anthropic.com/v1 when unset). Use
// [AnthropicProvider.WithAPIKey] and [AnthropicProvider.WithBaseURL] to
// override these values after construction.
func New() *AnthropicProvider {
	baseURL := os.Getenv("ANTHROPIC_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &AnthropicProvider{
		apiKey:  os.Getenv("ANTHROPIC_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key used for authenticating requests and returns the
// provider so calls can be chained. It overrides the value read from ANTHROPIC_KEY.
func (p *AnthropicProvider) WithAPIKey(apiKey string) *AnthropicProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the API base URL and returns the provider so calls can
// be chained. Use this when targeting a proxy or local testing endpoint.
func (p *AnthropicProvider) WithBaseURL(baseURL string) *AnthropicProvider {
	p.baseURL = baseURL
	return p
}

// WithHTTPClient replaces the default [http.Client] used for API calls and
// returns the provider so calls can be chained. Useful for injecting custom
// connection timeouts or test doubles.
func (p *AnthropicProvider) WithHTTPClient(httpClient *http.Client) *AnthropicProvider {
	p.client = httpClient
	return p
}

// Generate implements [llm.Provider] by sending a synchronous request to
// Anthropic's Messages API and returning the completion mapped to the generic
// [llm.Response] format. It returns an error when the API key is unset, the
// HTTP request fails, or the response carries no text content.
func (p *AnthropicProvider) Generate(ctx context.Context, request llm.Request) (*llm.Response, error) {
	// Guard against missing credentials before making a network call.
	if p.apiKey == "" {
		return nil, fmt.Errorf("missing Anthropic API key")
	}

	url := p.baseURL + messagesEndpoint

	// x-api-key carries the credential (Anthropic does not use Bearer tokens)
	// and anthropic-version pins the wire format.
	httpResponse, resp, err := utils.DoPostSync[anthropicResponse](
		ctx,
		p.client,
		url,
		requestToAnthropic(request),
		utils.HeaderOption{Key: "x-api-key", Value: p.apiKey},
		utils.HeaderOption{Key: "anthropic-version", Value: anthropicVersion},
	)
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, fmt.Errorf("empty response from Anthropic API: %s", httpResponse.Status)
	}

	result := anthropicToGeneric(*resp)

	// Anthropic echoes the model name in the response; fall back to the
	// request model so callers always have a non-empty Model field.
	if result.Model == "" {
		result.Model = request.Model
	}

	if result.Text == "" {
		return nil, fmt.Errorf("Anthropic API returned empty content")
	}

	return result, nil
}
