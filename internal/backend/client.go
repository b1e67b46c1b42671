package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RequestError preserves the upstream status and body so a failed
// generation call can be diagnosed without re-issuing it.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("backend request failed: status %d: %s", e.Status, e.Body)
}

// postJSON issues one POST with a bounded timeout and returns the raw
// response body. Calls are never retried: a timeout or non-2xx answer is a
// request-level failure for the caller to report, cancellation is letting
// the timeout fire.
func postJSON(ctx context.Context, client *http.Client, url string, timeout time.Duration, headers map[string]string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
