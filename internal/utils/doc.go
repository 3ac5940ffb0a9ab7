// Package utils contains small shared helpers for HTTP plumbing and string
// formatting used across the service. Nothing here is domain-specific.
package utils
