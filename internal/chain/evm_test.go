package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// rpcHandler answers one JSON-RPC method given its raw params.
type rpcHandler func(params []json.RawMessage) (interface{}, *RPCError)

// rpcServer creates a JSON-RPC test server dispatching on method name.
// Unknown methods answer -32601. Every request is recorded.
type rpcServer struct {
	*httptest.Server
	mu    sync.Mutex
	calls map[string]int
}

func newRPCServer(t *testing.T, handlers map[string]rpcHandler) *rpcServer {
	t.Helper()
	s := &rpcServer{calls: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int               `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.calls[req.Method]++
		s.mu.Unlock()

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		h, ok := handlers[req.Method]
		if !ok {
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		} else if result, rpcErr := h(req.Params); rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *rpcServer) count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// rpcMock answers each method with a fixed result.
func rpcMock(t *testing.T, responses map[string]interface{}) *rpcServer {
	t.Helper()
	handlers := make(map[string]rpcHandler, len(responses))
	for method, result := range responses {
		result := result
		handlers[method] = func([]json.RawMessage) (interface{}, *RPCError) { return result, nil }
	}
	return newRPCServer(t, handlers)
}

func firstParam(params []json.RawMessage) string {
	if len(params) == 0 {
		return ""
	}
	var s string
	json.Unmarshal(params[0], &s) //nolint:errcheck
	return s
}

// ---------------------------------------------------------------------------
// EVMClient: simple getters
// ---------------------------------------------------------------------------

func TestChainID(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_chainId": "0xaa36a7"})
	id, err := NewEVMClient(srv.URL).ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(11155111), id)
}

func TestBlockNumber(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x100"})
	n, err := NewEVMClient(srv.URL).BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(256), n)
}

func TestGetBalance(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getBalance": "0xde0b6b3a7640000"})
	bal, err := NewEVMClient(srv.URL).GetBalance(context.Background(), "0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", bal.String())
}

func TestCallContractReturnsBytes(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_call": "0x0000000000000000000000000000000000000000000000000000000000000012",
	})
	out, err := NewEVMClient(srv.URL).CallContract(context.Background(), "", "0x0000000000000000000000000000000000000001", []byte{0x31, 0x3c, 0xe5, 0x67})
	require.NoError(t, err)
	require.Len(t, out, 32)
	assert.Equal(t, byte(0x12), out[31])
}

func TestRPCErrorIsTyped(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{
		"eth_call": func([]json.RawMessage) (interface{}, *RPCError) {
			return nil, &RPCError{Code: 3, Message: "execution reverted: ERC20: transfer amount exceeds balance"}
		},
	})
	_, err := NewEVMClient(srv.URL).CallContract(context.Background(), "", "0x0000000000000000000000000000000000000001", nil)
	require.Error(t, err)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, 3, rpcErr.Code)
	assert.Contains(t, err.Error(), "execution reverted")
	// JSON-RPC errors are not retried.
	assert.Equal(t, 1, srv.count("eth_call"))
}

func TestTransportErrorIsRetried(t *testing.T) {
	srv := rpcMock(t, nil)
	url := srv.URL
	srv.Close()

	_, err := NewEVMClient(url, WithRetries(1)).BlockNumber(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RPC request failed")
}

func TestBadJSONIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte(`{not valid json`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).BlockNumber(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errDecode)
	assert.Equal(t, 1, calls)
}

func TestNonceTags(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{
		"eth_getTransactionCount": func(params []json.RawMessage) (interface{}, *RPCError) {
			var tag string
			json.Unmarshal(params[1], &tag) //nolint:errcheck
			if tag == "pending" {
				return "0x7", nil
			}
			return "0x5", nil
		},
	})
	c := NewEVMClient(srv.URL)
	addr := common.HexToAddress("0x0000000000000000000000000000000000000001")

	n, err := c.Nonce(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)

	p, err := c.PendingNonce(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), p)
}

func TestSendRawTransaction(t *testing.T) {
	hash := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	var got string
	srv := newRPCServer(t, map[string]rpcHandler{
		"eth_sendRawTransaction": func(params []json.RawMessage) (interface{}, *RPCError) {
			got = firstParam(params)
			return hash, nil
		},
	})
	h, err := NewEVMClient(srv.URL).SendRawTransaction(context.Background(), []byte{0x02, 0xf8})
	require.NoError(t, err)
	assert.Equal(t, hash, h.Hex())
	assert.Equal(t, "0x02f8", got)
}

// ---------------------------------------------------------------------------
// EVMClient: transactions and receipts
// ---------------------------------------------------------------------------

func TestTransactionByHashPendingAndNotFound(t *testing.T) {
	known := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	srv := newRPCServer(t, map[string]rpcHandler{
		"eth_getTransactionByHash": func(params []json.RawMessage) (interface{}, *RPCError) {
			if firstParam(params) != known {
				return nil, nil
			}
			return txJSON(known, senderAddr, tokenAddr, "0x0", transferInput, 5, nil), nil
		},
	})
	c := NewEVMClient(srv.URL)

	tx, err := c.TransactionByHash(context.Background(), common.HexToHash(known))
	require.NoError(t, err)
	assert.True(t, tx.Pending())
	assert.Equal(t, uint64(5), tx.Nonce)
	assert.Equal(t, common.HexToAddress(senderAddr), tx.From)
	assert.Equal(t, 0, tx.Value.Sign())

	_, err = c.TransactionByHash(context.Background(), common.HexToHash("0x01"))
	assert.ErrorIs(t, err, ErrTxNotFound)
}

func TestTransactionReceiptSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":            "0x1",
			"blockNumber":       "0x100",
			"gasUsed":           "0x5208",
			"effectiveGasPrice": "0x3b9aca00",
			"contractAddress":   nil,
		},
	})
	hash := common.HexToHash("0xabc")
	receipt, err := NewEVMClient(srv.URL).TransactionReceipt(context.Background(), hash)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.True(t, receipt.Succeeded())
	assert.Equal(t, uint64(256), receipt.BlockNumber)
	assert.Equal(t, uint64(21000), receipt.GasUsed)
	assert.Equal(t, "1000000000", receipt.EffectiveGasPrice.String())
	assert.Equal(t, hash, receipt.Hash)
}

func TestTransactionReceiptPending(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	receipt, err := NewEVMClient(srv.URL).TransactionReceipt(context.Background(), common.HexToHash("0x1"))
	require.NoError(t, err)
	assert.Nil(t, receipt, "pending tx should return nil receipt")
}

func TestBlockTransactions(t *testing.T) {
	bn := uint64(20)
	srv := rpcMock(t, map[string]interface{}{
		"eth_getBlockByNumber": map[string]interface{}{
			"transactions": []interface{}{
				txJSON(hashB, senderAddr, senderAddr, "0x0", "0x", 5, &bn),
			},
		},
	})
	txs, err := NewEVMClient(srv.URL).BlockTransactions(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.False(t, txs[0].Pending())
	assert.Equal(t, uint64(20), *txs[0].BlockNumber)
}

func TestPing(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x2a"})
	latency, block, err := NewEVMClient(srv.URL).Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), block)
	assert.Greater(t, int64(latency), int64(0))
}

// ---------------------------------------------------------------------------
// Formatting helpers
// ---------------------------------------------------------------------------

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		raw      string
		decimals int
		want     string
	}{
		{"1500000000000000000", 18, "1.5"},
		{"1000000000000000000", 18, "1"},
		{"0", 18, "0"},
		{"1", 18, "0.000000000000000001"},
		{"123456", 6, "0.123456"},
		{"42", 0, "42"},
		{"-2500000", 6, "-2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			raw, _ := new(big.Int).SetString(tt.raw, 10)
			assert.Equal(t, tt.want, FormatUnits(raw, tt.decimals))
		})
	}
	assert.Equal(t, "0", FormatUnits(nil, 18))
}

func TestFormatFixed(t *testing.T) {
	raw, _ := new(big.Int).SetString("1234500000000000000", 10)
	assert.Equal(t, "1.2345", FormatFixed(raw, 18, 4))
	assert.Equal(t, "0", FormatFixed(big.NewInt(0), 18, 4))
	assert.Equal(t, "0", FormatFixed(nil, 18, 4))
}
