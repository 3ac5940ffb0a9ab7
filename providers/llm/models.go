package llm

/*
	##### PROVIDER INPUT #####
*/

// Request represents a single text-generation request.
type Request struct {
	Model       string   `json:"model,omitempty"`        // Model name or identifier
	System      string   `json:"system,omitempty"`       // Optional system instruction
	Prompt      []string `json:"prompt"`                 // User prompt text parts, sent as separate content blocks in order
	MaxTokens   int      `json:"max_tokens,omitempty"`   // Optional cap on the completion length
	Temperature float64  `json:"temperature,omitempty"`  // Sampling temperature; zero means provider default
	WebSearch   bool     `json:"web_search,omitempty"`   // Enable the provider's web-search grounding tool when supported
}

/*
	##### PROVIDER OUTPUT #####
*/

// Usage reports token accounting for a completed request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// Response represents the completion returned by a provider. Text is the
// concatenation of all textual content blocks in the vendor response; callers
// that expect structured output run it through core/extract.
type Response struct {
	ID           string `json:"id,omitempty"`
	Model        string `json:"model"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}
