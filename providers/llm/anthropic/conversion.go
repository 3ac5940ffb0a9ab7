package anthropic

import (
	"strings"

	"github.com/paintedrobot/opsrelay/providers/llm"
)

// defaultMaxTokens is applied when the request does not cap the completion;
// Anthropic rejects requests without max_tokens.
const defaultMaxTokens = 4096

// requestToAnthropic converts an llm.Request into the Messages API wire
// format. Each prompt part becomes its own text content block on a single
// user message, which keeps long instruction text and embedded data payloads
// separate on the wire.
func requestToAnthropic(request llm.Request) anthropicRequest {
	blocks := make([]anthropicContentBlock, 0, len(request.Prompt))
	for _, part := range request.Prompt {
		blocks = append(blocks, anthropicContentBlock{Type: "text", Text: part})
	}

	req := anthropicRequest{
		Model:     request.Model,
		System:    request.System,
		MaxTokens: request.MaxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: blocks},
		},
	}

	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}

	if request.Temperature > 0 {
		temp := request.Temperature
		req.Temperature = &temp
	}

	return req
}

// anthropicToGeneric maps a Messages API response to the provider-agnostic
// format, concatenating all text content blocks in order.
func anthropicToGeneric(resp anthropicResponse) *llm.Response {
	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &llm.Response{
		ID:           resp.ID,
		Model:        resp.Model,
		Text:         text.String(),
		FinishReason: resp.StopReason,
		Usage: &llm.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}
}
