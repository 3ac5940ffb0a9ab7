package client

import (
	"context"
	"fmt"

	"github.com/paintedrobot/opsrelay/providers/llm"
)

// SendFunc is the function signature wrapped by middlewares: one synchronous
// generation call against the underlying provider.
type SendFunc func(ctx context.Context, request llm.Request) (*llm.Response, error)

// Middleware wraps a SendFunc with additional behavior. Middlewares are
// applied so the first one passed to [New] is the outermost layer.
type Middleware func(next SendFunc) SendFunc

// Client executes generation requests through the configured middleware chain.
type Client struct {
	provider llm.Provider
	send     SendFunc
}

// Option configures a Client during construction.
type Option func(*Client)

// WithMiddleware appends middlewares to the chain. It may be passed multiple
// times; all middlewares accumulate in order.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(c *Client) {
		next := c.send
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		c.send = next
	}
}

// New returns a Client that sends requests to provider through the middleware
// chain assembled from opts. It returns an error when provider is nil.
func New(provider llm.Provider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider must not be nil")
	}

	c := &Client{
		provider: provider,
		send:     provider.Generate,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Generate runs a single generation request through the middleware chain.
func (c *Client) Generate(ctx context.Context, request llm.Request) (*llm.Response, error) {
	return c.send(ctx, request)
}
