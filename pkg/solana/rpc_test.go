package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rpcServer(t *testing.T, respond func(method string, params []any) any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			Params []any  `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(respond(req.Method, req.Params)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchAccountDecodesData(t *testing.T) {
	payload := []byte("book bytes")
	srv := rpcServer(t, func(method string, params []any) any {
		assert.Equal(t, "getAccountInfo", method)
		return map[string]any{
			"jsonrpc": "2.0",
			"result": map[string]any{
				"value": map[string]any{
					"data": []string{base64.StdEncoding.EncodeToString(payload), "base64"},
				},
			},
		}
	})

	client := NewRPCClient(srv.URL)
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	data, err := client.FetchAccount(context.Background(), kp.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFetchAccountMissingAccount(t *testing.T) {
	srv := rpcServer(t, func(method string, params []any) any {
		return map[string]any{
			"jsonrpc": "2.0",
			"result":  map[string]any{"value": nil},
		}
	})

	client := NewRPCClient(srv.URL)
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	data, err := client.FetchAccount(context.Background(), kp.PublicKey())
	require.NoError(t, err, "a missing account is not an error")
	assert.Nil(t, data)
}

func TestFetchAccountRPCError(t *testing.T) {
	srv := rpcServer(t, func(method string, params []any) any {
		return map[string]any{
			"jsonrpc": "2.0",
			"error":   map[string]any{"code": -32602, "message": "invalid params"},
		}
	})

	client := NewRPCClient(srv.URL)
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	_, err = client.FetchAccount(context.Background(), kp.PublicKey())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid params")
}

func TestFetchAccountUsesProcessedCommitment(t *testing.T) {
	var gotCommitment string
	srv := rpcServer(t, func(method string, params []any) any {
		if len(params) == 2 {
			if opts, ok := params[1].(map[string]any); ok {
				gotCommitment, _ = opts["commitment"].(string)
			}
		}
		return map[string]any{"jsonrpc": "2.0", "result": map[string]any{"value": nil}}
	})

	client := NewRPCClient(srv.URL)
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	_, err = client.FetchAccount(context.Background(), kp.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, CommitmentProcessed, gotCommitment)
}
