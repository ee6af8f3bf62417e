package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// httpTransport is a minimal JSON-RPC 2.0 caller satisfying
// rpcclient.Transport. The wire transport is explicitly out of this
// repo's core scope (spec §1's boundary list names only the four RPC
// methods the facade must expose); this is the thinnest shim that
// satisfies that boundary without pulling in a full node client.
type httpTransport struct {
	url        string
	httpClient *http.Client
}

func newHTTPTransport(url string) *httpTransport {
	return &httpTransport{url: url, httpClient: &http.Client{}}
}

type jsonrpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type jsonrpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *jsonrpcError   `json:"error"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *jsonrpcError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

func (t *httpTransport) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	reqBody := jsonrpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: args}
	buf, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("transport: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transport: %s: %w", method, err)
	}
	defer resp.Body.Close()

	var out jsonrpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("transport: decode response for %s: %w", method, err)
	}
	if out.Error != nil {
		return out.Error
	}
	if result == nil || len(out.Result) == 0 {
		return nil
	}
	return json.Unmarshal(out.Result, result)
}
