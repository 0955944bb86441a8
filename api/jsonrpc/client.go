package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/atomic"
)

// Client calls methods on a JSON-RPC 2.0 HTTP endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	nextID     atomic.Uint64
}

// NewClient creates a client for the endpoint at url. If httpClient is nil a
// pooled client is used.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}
	return &Client{url: url, httpClient: httpClient}
}

// Call invokes method with params and decodes the result into result, which
// may be nil. An error response is returned as *Error.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	encodedParams, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}

	req := Request{
		JSONRPC: Version,
		ID:      json.RawMessage(strconv.FormatUint(c.nextID.Inc(), 10)),
		Method:  method,
		Params:  encodedParams,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", c.url, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}
