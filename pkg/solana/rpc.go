package solana

import (
	"context"
	"encoding/base64"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/mangobot/gomango/pkg/httpx"
	"github.com/mangobot/gomango/pkg/ratelimit"
)

// CommitmentProcessed is the commitment level used for every read. Book
// snapshots are best-effort by design; waiting for finality buys nothing here.
const CommitmentProcessed = "processed"

// Public cluster endpoints cap clients at roughly this many requests per
// ten-second window; staying under it beats getting 429s.
const (
	rpcBurst          = 40
	rpcRequestsPerSec = 4
)

// RPCClient reads account state from a cluster's JSON-RPC endpoint.
type RPCClient struct {
	http       *httpx.Client
	limiter    *ratelimit.TokenBucket
	commitment string
	nextID     atomic.Uint64
}

// NewRPCClient builds a client against the cluster URL.
func NewRPCClient(clusterURL string) *RPCClient {
	return &RPCClient{
		http:       httpx.NewClient(clusterURL),
		limiter:    ratelimit.NewTokenBucket(rpcBurst, rpcRequestsPerSec),
		commitment: CommitmentProcessed,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type accountInfoResponse struct {
	Result struct {
		Value *struct {
			Data []string `json:"data"` // [payload, encoding]
		} `json:"value"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

// FetchAccount returns the raw data of one account. A missing account or an
// account without data yields a nil slice, not an error.
func (c *RPCClient) FetchAccount(ctx context.Context, key PublicKey) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rpc rate limit")
	}
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  "getAccountInfo",
		Params: []any{
			key.String(),
			map[string]string{"encoding": "base64", "commitment": c.commitment},
		},
	}
	var resp accountInfoResponse
	if err := c.http.PostJSON(ctx, "/", req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, errors.Errorf("getAccountInfo %s: rpc %d: %s", key, resp.Error.Code, resp.Error.Message)
	}
	if resp.Result.Value == nil || len(resp.Result.Value.Data) == 0 || resp.Result.Value.Data[0] == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(resp.Result.Value.Data[0])
	if err != nil {
		return nil, errors.Wrapf(err, "decode account %s data", key)
	}
	return data, nil
}
