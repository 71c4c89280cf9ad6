package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
)

// ErrTxNotFound is returned when a node does not know a transaction hash.
var ErrTxNotFound = errors.New("transaction not found")

// EVMClient is a minimal JSON-RPC client for EVM chains.
type EVMClient struct {
	url     string
	client  *http.Client
	retries uint64
}

// ClientOption configures an EVMClient.
type ClientOption func(*EVMClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *EVMClient) { c.client = h }
}

// WithRetries sets how many times a request is retried after a transport
// failure. JSON-RPC errors are never retried.
func WithRetries(n uint64) ClientOption {
	return func(c *EVMClient) { c.retries = n }
}

// NewEVMClient creates a new EVM JSON-RPC client pointed at url.
func NewEVMClient(url string, opts ...ClientOption) *EVMClient {
	c := &EVMClient{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		retries: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint this client talks to.
func (c *EVMClient) URL() string { return c.url }

// Transaction holds the fields of a transaction needed for tracking and
// replacement detection.
type Transaction struct {
	Hash        common.Hash
	From        common.Address
	To          *common.Address // nil for contract creation
	Value       *big.Int
	Input       []byte
	Nonce       uint64
	Gas         uint64
	GasPrice    *big.Int
	BlockNumber *uint64 // nil while pending
}

// Pending reports whether the transaction has not been included yet.
func (t *Transaction) Pending() bool { return t.BlockNumber == nil }

// TxReceipt holds the on-chain receipt of a mined transaction.
type TxReceipt struct {
	Hash              common.Hash
	Status            uint64 // 1 = success, 0 = reverted
	BlockNumber       uint64
	GasUsed           uint64
	EffectiveGasPrice *big.Int
	ContractAddress   string // non-empty when a contract was deployed
}

// Succeeded reports whether the receipt status is 1.
func (r *TxReceipt) Succeeded() bool { return r.Status == 1 }

// ChainID returns the chain's ID.
func (c *EVMClient) ChainID(ctx context.Context) (int64, error) {
	var id hexutil.Big
	if err := c.call(ctx, &id, "eth_chainId"); err != nil {
		return 0, err
	}
	return id.ToInt().Int64(), nil
}

// BlockNumber returns the latest block number.
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	var n hexutil.Uint64
	if err := c.call(ctx, &n, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// GetBalance returns the native balance in wei.
func (c *EVMClient) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	var bal hexutil.Big
	if err := c.call(ctx, &bal, "eth_getBalance", address, "latest"); err != nil {
		return nil, err
	}
	return bal.ToInt(), nil
}

// CallContract runs eth_call against "latest" and returns the raw return data.
// from may be empty.
func (c *EVMClient) CallContract(ctx context.Context, from, to string, data []byte) ([]byte, error) {
	params := map[string]string{
		"to":   to,
		"data": hexutil.Encode(data),
	}
	if from != "" {
		params["from"] = from
	}
	var out hexutil.Bytes
	if err := c.call(ctx, &out, "eth_call", params, "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// EstimateGas estimates gas for a call.
func (c *EVMClient) EstimateGas(ctx context.Context, from, to string, data []byte, value *big.Int) (uint64, error) {
	params := map[string]string{
		"from": from,
		"to":   to,
	}
	if len(data) > 0 {
		params["data"] = hexutil.Encode(data)
	}
	if value != nil && value.Sign() > 0 {
		params["value"] = hexutil.EncodeBig(value)
	}
	var gas hexutil.Uint64
	if err := c.call(ctx, &gas, "eth_estimateGas", params, "latest"); err != nil {
		return 0, err
	}
	return uint64(gas), nil
}

// GasPrice returns the current legacy gas price.
func (c *EVMClient) GasPrice(ctx context.Context) (*big.Int, error) {
	var gp hexutil.Big
	if err := c.call(ctx, &gp, "eth_gasPrice"); err != nil {
		return nil, err
	}
	return gp.ToInt(), nil
}

// MaxPriorityFee returns the node's suggested EIP-1559 tip.
func (c *EVMClient) MaxPriorityFee(ctx context.Context) (*big.Int, error) {
	var tip hexutil.Big
	if err := c.call(ctx, &tip, "eth_maxPriorityFeePerGas"); err != nil {
		return nil, err
	}
	return tip.ToInt(), nil
}

// Nonce returns the transaction count for address at "latest".
func (c *EVMClient) Nonce(ctx context.Context, address common.Address) (uint64, error) {
	return c.nonceAt(ctx, address, "latest")
}

// PendingNonce returns the transaction count including queued transactions.
func (c *EVMClient) PendingNonce(ctx context.Context, address common.Address) (uint64, error) {
	return c.nonceAt(ctx, address, "pending")
}

func (c *EVMClient) nonceAt(ctx context.Context, address common.Address, tag string) (uint64, error) {
	var n hexutil.Uint64
	if err := c.call(ctx, &n, "eth_getTransactionCount", address.Hex(), tag); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// SendRawTransaction broadcasts a signed transaction and returns its hash.
// It is never retried.
func (c *EVMClient) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	var hash common.Hash
	if err := c.callOnce(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(raw)); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// TransactionByHash returns a transaction by hash, or ErrTxNotFound.
func (c *EVMClient) TransactionByHash(ctx context.Context, hash common.Hash) (*Transaction, error) {
	var rt *rpcTx
	if err := c.call(ctx, &rt, "eth_getTransactionByHash", hash.Hex()); err != nil {
		return nil, err
	}
	if rt == nil {
		return nil, fmt.Errorf("%w: %s", ErrTxNotFound, hash.Hex())
	}
	return rt.toTx(), nil
}

// TransactionReceipt fetches the receipt for hash.
// Returns nil, nil if the transaction is still pending or unknown.
func (c *EVMClient) TransactionReceipt(ctx context.Context, hash common.Hash) (*TxReceipt, error) {
	var r *rpcReceipt
	if err := c.call(ctx, &r, "eth_getTransactionReceipt", hash.Hex()); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}
	receipt := &TxReceipt{
		Hash:            hash,
		Status:          uint64(r.Status),
		BlockNumber:     uint64(r.BlockNumber),
		GasUsed:         uint64(r.GasUsed),
		ContractAddress: r.ContractAddress,
	}
	if r.EffectiveGasPrice != nil {
		receipt.EffectiveGasPrice = r.EffectiveGasPrice.ToInt()
	}
	return receipt, nil
}

// BlockTransactions returns the full transactions of block num.
func (c *EVMClient) BlockTransactions(ctx context.Context, num uint64) ([]*Transaction, error) {
	var block *struct {
		Transactions []*rpcTx `json:"transactions"`
	}
	if err := c.call(ctx, &block, "eth_getBlockByNumber", hexutil.EncodeUint64(num), true); err != nil {
		return nil, err
	}
	if block == nil {
		return nil, nil
	}
	txs := make([]*Transaction, 0, len(block.Transactions))
	for _, rt := range block.Transactions {
		if rt != nil {
			txs = append(txs, rt.toTx())
		}
	}
	return txs, nil
}

// Ping tests the RPC endpoint and returns latency + block number.
func (c *EVMClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	var n hexutil.Uint64
	err = c.callOnce(ctx, &n, "eth_blockNumber")
	return time.Since(start), uint64(n), err
}

// --- wire types ---

type rpcTx struct {
	Hash        common.Hash     `json:"hash"`
	From        common.Address  `json:"from"`
	To          *common.Address `json:"to"`
	Value       *hexutil.Big    `json:"value"`
	Input       hexutil.Bytes   `json:"input"`
	Nonce       hexutil.Uint64  `json:"nonce"`
	Gas         hexutil.Uint64  `json:"gas"`
	GasPrice    *hexutil.Big    `json:"gasPrice"`
	BlockNumber *hexutil.Uint64 `json:"blockNumber"`
}

func (rt *rpcTx) toTx() *Transaction {
	tx := &Transaction{
		Hash:  rt.Hash,
		From:  rt.From,
		To:    rt.To,
		Value: new(big.Int),
		Input: rt.Input,
		Nonce: uint64(rt.Nonce),
		Gas:   uint64(rt.Gas),
	}
	if rt.Value != nil {
		tx.Value = rt.Value.ToInt()
	}
	if rt.GasPrice != nil {
		tx.GasPrice = rt.GasPrice.ToInt()
	}
	if rt.BlockNumber != nil {
		bn := uint64(*rt.BlockNumber)
		tx.BlockNumber = &bn
	}
	return tx
}

type rpcReceipt struct {
	Status            hexutil.Uint64 `json:"status"`
	BlockNumber       hexutil.Uint64 `json:"blockNumber"`
	GasUsed           hexutil.Uint64 `json:"gasUsed"`
	EffectiveGasPrice *hexutil.Big   `json:"effectiveGasPrice"`
	ContractAddress   string         `json:"contractAddress"`
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is an error object returned by the node. Data carries revert
// payloads for eth_call / eth_estimateGas when the node provides them.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a request, retrying transport failures with backoff.
func (c *EVMClient) call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	b := backoff.WithContext(
		backoff.WithMaxRetries(newRetryBackoff(), c.retries),
		ctx,
	)
	return backoff.Retry(func() error {
		err := c.callOnce(ctx, result, method, params...)
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) || errors.Is(err, errDecode) {
			return backoff.Permanent(err)
		}
		if err != nil {
			log.Debug("RPC request failed", "method", method, "url", c.url, "err", err)
		}
		return err
	}, b)
}

var errDecode = errors.New("decoding RPC response")

func newRetryBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second
	return b
}

func (c *EVMClient) callOnce(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("%w: %v", errDecode, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result == nil || len(rpcResp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("%w: %s: %v", errDecode, method, err)
	}
	return nil
}

// --- math helpers ---

// FormatUnits renders raw as a decimal string with the given number of
// fractional digits, trimming trailing zeros ("1.5", "0", "12").
func FormatUnits(raw *big.Int, decimals int) string {
	if raw == nil {
		return "0"
	}
	if decimals <= 0 {
		return raw.String()
	}
	neg := raw.Sign() < 0
	abs := new(big.Int).Abs(raw)
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, div, new(big.Int))
	fracStr := frac.String()
	if len(fracStr) < decimals {
		fracStr = strings.Repeat("0", decimals-len(fracStr)) + fracStr
	}
	fracStr = strings.TrimRight(fracStr, "0")
	out := whole.String()
	if fracStr != "" {
		out += "." + fracStr
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FormatFixed renders raw with exactly places fractional digits, rounded.
func FormatFixed(raw *big.Int, decimals, places int) string {
	if raw == nil || raw.Sign() == 0 {
		return "0"
	}
	f := new(big.Float).SetPrec(256).SetInt(raw)
	f.Quo(f, new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)))
	return f.Text('f', places)
}
