package llm

import "context"

// Provider is implemented by every text-generation backend. Generate sends a
// single synchronous request and returns the completion; the context carries
// the caller's deadline and cancellation.
//
// Implementations are cheap value-like structs configured with chained
// WithAPIKey / WithBaseURL / WithHTTPClient calls, so a fresh instance per
// request is the normal usage pattern when credentials arrive with the
// payload.
type Provider interface {
	Generate(ctx context.Context, request Request) (*Response, error)
}
