// Package middleware provides ready-made client middlewares: retry with
// exponential backoff, per-request timeouts, and structured request/response
// logging.
package middleware
