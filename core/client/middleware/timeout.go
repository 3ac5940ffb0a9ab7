package middleware

import (
	"context"
	"time"

	"github.com/paintedrobot/opsrelay/core/client"
	"github.com/paintedrobot/opsrelay/providers/llm"
)

// NewTimeoutMiddleware creates a middleware that enforces a per-attempt
// deadline on provider calls via context.WithTimeout.
//
// Place it inside the retry middleware so each retry attempt gets a fresh
// deadline. If the caller supplies a context that already has a shorter
// deadline, that shorter deadline wins as per normal context semantics.
func NewTimeoutMiddleware(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request llm.Request) (*llm.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}
}
