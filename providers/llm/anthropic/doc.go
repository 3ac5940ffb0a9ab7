// Package anthropic implements llm.Provider against Anthropic's Messages API
// using its raw REST wire format.
package anthropic
