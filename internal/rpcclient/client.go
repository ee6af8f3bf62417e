// Package rpcclient is the RPC Facade (spec §4.2): five typed operations
// over an EVM JSON-RPC endpoint, each wrapped by the retry executor and
// emitting one request/latency/error sample to telemetry. The wire
// transport itself is an external collaborator, injected as a Transport —
// this package never dials a socket directly.
package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lgingerich/evm-indexer/internal/retry"
	"github.com/lgingerich/evm-indexer/internal/telemetry"
)

// Transport is the boundary collaborator: a JSON-RPC 2.0 caller. Any client
// satisfying this (including go-ethereum's *rpc.Client) may be plugged in.
type Transport interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Client is the RPC Facade.
type Client struct {
	t        Transport
	retryCfg retry.Config
	metrics  *telemetry.Recorder
}

func New(t Transport, metrics *telemetry.Recorder) *Client {
	return &Client{t: t, retryCfg: retry.Default, metrics: metrics}
}

func (c *Client) call(ctx context.Context, method string, out interface{}, args ...interface{}) error {
	start := time.Now()
	_, err := retry.Do(ctx, c.retryCfg, method, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.t.CallContext(ctx, out, method, args...)
	})
	c.metrics.ObserveRPC(method, time.Since(start), err)
	return err
}

// GetChainId returns the connected chain's id via eth_chainId.
func (c *Client) GetChainId(ctx context.Context) (uint64, error) {
	var hex string
	if err := c.call(ctx, "eth_chainId", &hex); err != nil {
		return 0, err
	}
	return parseHexUint(hex)
}

// GetLatestBlockNumber returns the current chain tip via eth_blockNumber.
func (c *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	var hex string
	if err := c.call(ctx, "eth_blockNumber", &hex); err != nil {
		return 0, err
	}
	return parseHexUint(hex)
}

// GetBlockByNumber fetches header+full transactions for block n. It fails
// on an empty response (no block hash) and when any entry of Transactions
// is not a full transaction object with a hash (e.g. the server returned
// only hashes). The block's uncles list is not inspected.
func (c *Client) GetBlockByNumber(ctx context.Context, n uint64) (*RawBlock, error) {
	var block RawBlock
	tag := "0x" + strconv.FormatUint(n, 16)
	if err := c.call(ctx, "eth_getBlockByNumber", &block, tag, true); err != nil {
		return nil, err
	}
	if block.Hash == "" {
		return nil, fmt.Errorf("eth_getBlockByNumber(%d): empty response", n)
	}
	for i, raw := range block.Transactions {
		var probe struct {
			Hash string `json:"hash"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil || probe.Hash == "" {
			return nil, fmt.Errorf("eth_getBlockByNumber(%d): transaction %d is not a full object (server likely ignored full=true)", n, i)
		}
	}
	return &block, nil
}

// GetBlockReceipts fetches all receipts for a block via
// eth_getBlockReceipts.
func (c *Client) GetBlockReceipts(ctx context.Context, n uint64) ([]RawReceipt, error) {
	var receipts []RawReceipt
	tag := "0x" + strconv.FormatUint(n, 16)
	if err := c.call(ctx, "eth_getBlockReceipts", &receipts, tag); err != nil {
		return nil, err
	}
	return receipts, nil
}

// ErrTraceTooLarge is the sentinel recognized from a server error
// containing "-32008": the trace is too large and must be skipped rather
// than failing the whole block.
var ErrTraceTooLarge = fmt.Errorf("trace response too large (-32008)")

// debugTraceTransaction fetches a single call-trace with a 60s tracer
// timeout, onlyTopCall=false. A -32008 error is translated to
// ErrTraceTooLarge (non-fatal, caller skips); any other error is retried
// by the executor then surfaced.
func (c *Client) debugTraceTransaction(ctx context.Context, txHash string) (*RawCallFrame, error) {
	var frame RawCallFrame
	opts := map[string]interface{}{
		"tracer": "callTracer",
		"tracerConfig": map[string]interface{}{
			"onlyTopCall": false,
		},
		"timeout": "60s",
	}

	start := time.Now()
	_, err := retry.Do(ctx, c.retryCfg, "debug_traceTransaction", func(ctx context.Context) (struct{}, error) {
		callErr := c.t.CallContext(ctx, &frame, "debug_traceTransaction", txHash, opts)
		if callErr != nil && strings.Contains(callErr.Error(), "-32008") {
			// Non-retryable: caller skips this tx's trace.
			return struct{}{}, retry.Terminal(ErrTraceTooLarge)
		}
		return struct{}{}, callErr
	})
	c.metrics.ObserveRPC("debug_traceTransaction", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return &frame, nil
}

func parseHexUint(s string) (uint64, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return 0, fmt.Errorf("empty hex value")
	}
	return strconv.ParseUint(s, 16, 64)
}
