// Package client wraps an llm.Provider with a composable middleware chain.
// Middlewares wrap the provider call the way http.Handler middlewares wrap a
// handler: retry, timeout, and logging live in the middleware subpackage and
// each one only sees the generic SendFunc signature.
package client
