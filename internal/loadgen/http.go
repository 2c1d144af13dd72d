package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const headerRequestID = "X-Request-ID"

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// send posts req and decodes the JSON answer. The echoed request id must
// match the one sent.
func (c *HTTPClient) send(ctx context.Context, req Request) (int, map[string]any, error) {
	u := c.baseURL + req.Endpoint + "?" + req.Params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set(headerRequestID, req.ID)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode body: %w", err)
	}
	if got := resp.Header.Get(headerRequestID); got != req.ID {
		return resp.StatusCode, body, fmt.Errorf("request id not echoed: sent %s got %q", req.ID, got)
	}
	return resp.StatusCode, body, nil
}

// ready polls /readyz once.
func (c *HTTPClient) ready(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/readyz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service not ready: status %d", resp.StatusCode)
	}
	return nil
}
