package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	// DialTimeout is the maximum time to wait for a TCP connection.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the maximum time to wait for the TLS handshake.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout bounds the wait for response headers only; upstream
	// LLM calls stream their body for minutes, so the overall deadline comes
	// from the request context, not the transport.
	ResponseHeaderTimeout = 5 * time.Minute
	// IdleConnTimeout is how long an idle connection is kept for reuse.
	IdleConnTimeout = 90 * time.Second
)

// HeaderOption is an extra HTTP header applied to an outgoing request.
// Vendor APIs authenticate through non-standard headers (x-api-key,
// x-goog-api-key), so callers pass them explicitly instead of a Bearer token.
type HeaderOption struct {
	Key   string
	Value string
}

// NewHTTPClient returns an *http.Client with explicit connection-phase
// timeouts. connectTimeout bounds TCP dialing (and, when zero, defaults to
// [DialTimeout]); the total request lifetime is left to the caller's context
// so long-running completions are not cut off by a transport-level deadline.
func NewHTTPClient(connectTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = DialTimeout
	}

	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   connectTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			IdleConnTimeout:       IdleConnTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			ForceAttemptHTTP2:     true,
		},
	}
}

// DoPostSync performs a synchronous HTTP POST with a JSON body and decodes the
// JSON response into OutputStruct.
//
// Error handling strategy:
//   - Context errors (timeout, cancellation) are propagated immediately.
//   - Connection failures and non-2xx statuses return an error that includes
//     the response body, since vendor APIs put the diagnosis there.
//   - JSON decode errors include a truncated response preview for debugging.
//
// The response body is always closed; close errors are logged rather than
// overriding the primary error.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, body any, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}

	return doJSON[OutputStruct](client, req, url)
}

// DoGetSync performs a synchronous HTTP GET and decodes the JSON response into
// OutputStruct. Semantics match [DoPostSync].
func DoGetSync[OutputStruct any](ctx context.Context, client *http.Client, url string, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}

	return doJSON[OutputStruct](client, req, url)
}

func doJSON[OutputStruct any](client *http.Client, req *http.Request, url string) (*http.Response, *OutputStruct, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return res, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr.Error(), "url", url)
		}
	}(res.Body)

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return res, nil, fmt.Errorf("error reading response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, nil, fmt.Errorf("non-2xx status %d: %s", res.StatusCode, string(respBody))
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return res, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s", res.StatusCode, err, TruncateString(string(respBody), 500))
	}

	return res, &resStruct, nil
}
