// Package parse decodes JSON text into typed Go values with a tolerance for
// the almost-JSON that third-party APIs sometimes emit. A strict
// json.Unmarshal is attempted first; on failure the input is run through
// jsonrepair and decoded again.
package parse
