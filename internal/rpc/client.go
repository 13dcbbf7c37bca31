package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks JSON-RPC to a single endpoint. It never retries; falling over
// to another endpoint is the job of Fallback.
type Client struct {
	name       string
	url        string
	httpClient *http.Client
}

func NewClient(name, url string, timeout time.Duration) *Client {
	return &Client{
		name:       name,
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return c.name }

func (c *Client) URL() string { return c.url }

// Call executes one JSON-RPC request and returns the raw result member
// together with the round-trip latency.
func (c *Client) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, time.Duration, error) {
	if params == nil {
		params = []interface{}{}
	}

	body, err := json.Marshal(Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode request: %w", err)
	}

	start := time.Now()
	resp, err := c.doRequest(ctx, body)
	latency := time.Since(start)
	if err != nil {
		return nil, latency, err
	}

	return resp.Result, latency, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	// A truthy result is returned whatever the status code.
	ok := httpResp.StatusCode >= 200 && httpResp.StatusCode <= 299

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		if !ok {
			return nil, &HTTPError{StatusCode: httpResp.StatusCode}
		}
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	if !ok && (resp.Error != nil || !isTruthy(resp.Result)) {
		return nil, &HTTPError{StatusCode: httpResp.StatusCode}
	}

	if resp.Error != nil {
		return nil, resp.Error
	}

	return &resp, nil
}
