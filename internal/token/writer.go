package token

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

// fallbackTransferGas is used when the node cannot estimate for reasons other
// than a revert or missing funds.
const fallbackTransferGas = 100_000

// Backend is the chain client surface needed to build and broadcast a
// transaction.
type Backend interface {
	PendingNonce(ctx context.Context, address common.Address) (uint64, error)
	EstimateGas(ctx context.Context, from, to string, data []byte, value *big.Int) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	MaxPriorityFee(ctx context.Context) (*big.Int, error)
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
}

// TxSigner signs transactions on behalf of one account.
type TxSigner interface {
	SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error)
	Address() common.Address
}

// TransferRequest is a single ERC20 transfer.
type TransferRequest struct {
	Token  common.Address
	To     common.Address
	Amount *big.Int
}

// Writer submits signed ERC20 transfers. It makes exactly one broadcast
// attempt per call and never retries.
type Writer struct {
	backend Backend
	signer  TxSigner
	chainID *big.Int
}

// NewWriter creates a Writer for chainID.
func NewWriter(backend Backend, signer TxSigner, chainID int64) *Writer {
	return &Writer{
		backend: backend,
		signer:  signer,
		chainID: big.NewInt(chainID),
	}
}

// ChainID returns the chain transactions are signed for.
func (w *Writer) ChainID() int64 { return w.chainID.Int64() }

// Transfer signs and broadcasts transfer(to, amount) on the token contract
// and returns the transaction hash reported by the node.
func (w *Writer) Transfer(ctx context.Context, req TransferRequest) (common.Hash, error) {
	data, err := ERC20.Pack("transfer", req.To, req.Amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding transfer: %w", err)
	}
	from := w.signer.Address()

	gas, err := w.backend.EstimateGas(ctx, from.Hex(), req.Token.Hex(), data, nil)
	if err != nil {
		classified := web3err.Classify(err)
		switch classified.Kind {
		case web3err.ExecutionReverted, web3err.InsufficientFunds:
			return common.Hash{}, classified
		}
		log.Warn("Gas estimation failed, using fallback", "gas", fallbackTransferGas, "err", err)
		gas = fallbackTransferGas
	}

	gasPrice, err := w.backend.GasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting gas price: %w", err)
	}
	tip, err := w.backend.MaxPriorityFee(ctx)
	if err != nil {
		log.Debug("eth_maxPriorityFeePerGas unavailable", "err", err)
		tip = new(big.Int).Set(gasPrice)
	}
	feeCap := new(big.Int).Mul(gasPrice, big.NewInt(2))
	if feeCap.Cmp(tip) < 0 {
		feeCap.Set(tip)
	}

	nonce, err := w.backend.PendingNonce(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}

	tok := req.Token
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   w.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &tok,
		Value:     big.NewInt(0),
		Data:      data,
	})

	raw, err := w.signer.SignTx(tx, w.chainID)
	if err != nil {
		return common.Hash{}, web3err.Classify(fmt.Errorf("signing transaction: %w", err))
	}

	hash, err := w.backend.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, web3err.Classify(err)
	}
	log.Info("Transfer submitted", "hash", hash, "token", req.Token, "to", req.To, "nonce", nonce)
	return hash, nil
}
