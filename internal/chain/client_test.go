// internal/chain/client_test.go
package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// rpcServer fakes the handful of JSON-RPC methods the client tests exercise.
// status is the reported confirmation status; empty means the signature is
// still unknown.
func rpcServer(t *testing.T, hits *atomic.Int64, height uint64, status string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		var req struct {
			ID     any    `json:"id"`
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
			return
		}

		var result any
		switch req.Method {
		case "getBalance":
			result = map[string]any{
				"context": map[string]any{"slot": 1},
				"value":   uint64(10_000_000_000),
			}
		case "getBlockHeight":
			result = height
		case "getSignatureStatuses":
			value := []any{nil}
			if status != "" {
				value = []any{map[string]any{
					"slot":               1,
					"confirmations":      1,
					"confirmationStatus": status,
				}}
			}
			result = map[string]any{
				"context": map[string]any{"slot": 1},
				"value":   value,
			}
		default:
			t.Errorf("unexpected method %s", req.Method)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
}

func TestRequestsRotateAcrossEndpoints(t *testing.T) {
	var first, second atomic.Int64
	s1 := rpcServer(t, &first, 1, "")
	defer s1.Close()
	s2 := rpcServer(t, &second, 1, "")
	defer s2.Close()

	client := NewClient([]string{s1.URL, s2.URL}, "", zap.NewNop())

	ctx := context.Background()
	pubkey := solana.NewWallet().PublicKey()
	for i := 0; i < 4; i++ {
		balance, err := client.GetBalance(ctx, pubkey)
		require.NoError(t, err)
		assert.Equal(t, uint64(10_000_000_000), balance)
	}

	assert.Equal(t, int64(2), first.Load())
	assert.Equal(t, int64(2), second.Load())
}

func TestWaitForConfirmationConfirmed(t *testing.T) {
	server := rpcServer(t, nil, 1, "confirmed")
	defer server.Close()

	client := NewClient([]string{server.URL}, "", zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, client.WaitForConfirmation(ctx, solana.Signature{}, 1_000))
}

func TestWaitForConfirmationBoundedByBlockhashExpiry(t *testing.T) {
	// The signature never lands and the chain height is already past the
	// blockhash's last valid height, so the wait must end, not spin.
	server := rpcServer(t, nil, 101, "")
	defer server.Close()

	client := NewClient([]string{server.URL}, "", zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := client.WaitForConfirmation(ctx, solana.Signature{}, 100)
	assert.ErrorIs(t, err, ErrBlockhashExpired)
}
