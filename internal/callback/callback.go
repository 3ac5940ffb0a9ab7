// Package callback delivers finished background results to a caller-supplied
// webhook URL. Delivery failures are returned to the caller, which logs and
// discards them; a dead webhook never fails the job that produced the result.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paintedrobot/opsrelay/internal/utils"
)

// deliverTimeout bounds a single webhook POST.
const deliverTimeout = 60 * time.Second

type payload struct {
	Data any `json:"data"`
}

// Deliver POSTs {"data": body} to url as JSON. A non-2xx response from the
// receiver is an error. The receiver's response body is ignored: webhooks
// commonly answer with an empty body.
func Deliver(ctx context.Context, client *http.Client, url string, body any) error {
	jsonBody, err := json.Marshal(payload{Data: body})
	if err != nil {
		return fmt.Errorf("error marshaling callback payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, deliverTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("error creating callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("callback delivery to %s failed: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		preview, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("callback to %s returned status %d: %s", url, res.StatusCode, utils.TruncateString(string(preview), 200))
	}
	return nil
}
