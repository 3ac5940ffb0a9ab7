// Package llm defines the provider-agnostic request/response model for text
// generation and the Provider interface implemented by the vendor-specific
// subpackages (anthropic, gemini). Handlers build a Request, pick a provider
// for the credentials they were given, and read the completion text off the
// Response; everything vendor-specific stays behind the interface.
package llm
