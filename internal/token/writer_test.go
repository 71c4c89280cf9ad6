package token

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

type fakeBackend struct {
	estimate    uint64
	estimateErr error
	gasPrice    *big.Int
	tip         *big.Int
	tipErr      error
	nonce       uint64
	sendErr     error

	sent  [][]byte
	sends int
}

func (b *fakeBackend) PendingNonce(context.Context, common.Address) (uint64, error) {
	return b.nonce, nil
}

func (b *fakeBackend) EstimateGas(context.Context, string, string, []byte, *big.Int) (uint64, error) {
	return b.estimate, b.estimateErr
}

func (b *fakeBackend) GasPrice(context.Context) (*big.Int, error) { return b.gasPrice, nil }

func (b *fakeBackend) MaxPriorityFee(context.Context) (*big.Int, error) { return b.tip, b.tipErr }

func (b *fakeBackend) SendRawTransaction(_ context.Context, raw []byte) (common.Hash, error) {
	b.sends++
	if b.sendErr != nil {
		return common.Hash{}, b.sendErr
	}
	b.sent = append(b.sent, raw)
	return common.BytesToHash([]byte{0xaa}), nil
}

// fakeSigner returns the unsigned encoding so tests can inspect the tx.
type fakeSigner struct {
	err    error
	signed *types.Transaction
}

func (s *fakeSigner) SignTx(tx *types.Transaction, _ *big.Int) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.signed = tx
	return tx.MarshalBinary()
}

func (s *fakeSigner) Address() common.Address { return holder }

func newBackend() *fakeBackend {
	return &fakeBackend{estimate: 52000, gasPrice: big.NewInt(1_000_000_000), tip: big.NewInt(100_000_000), nonce: 5}
}

func transferReq() TransferRequest {
	return TransferRequest{
		Token:  demoToken,
		To:     common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Amount: big.NewInt(1_500_000_000_000_000_000),
	}
}

func TestTransferBuildsDynamicFeeTx(t *testing.T) {
	b := newBackend()
	s := &fakeSigner{}
	w := NewWriter(b, s, 11155111)

	hash, err := w.Transfer(context.Background(), transferReq())
	require.NoError(t, err)
	assert.Equal(t, common.BytesToHash([]byte{0xaa}), hash)
	require.Len(t, b.sent, 1)

	tx := s.signed
	require.NotNil(t, tx)
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, int64(11155111), tx.ChainId().Int64())
	assert.Equal(t, uint64(5), tx.Nonce())
	assert.Equal(t, uint64(52000), tx.Gas())
	assert.Equal(t, demoToken, *tx.To())
	assert.Equal(t, 0, tx.Value().Sign())
	assert.Equal(t, "100000000", tx.GasTipCap().String())
	assert.Equal(t, "2000000000", tx.GasFeeCap().String())

	args, err := ERC20.Methods["transfer"].Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, transferReq().To, args[0])
	assert.Equal(t, transferReq().Amount, args[1])
	assert.Equal(t, "a9059cbb", common.Bytes2Hex(tx.Data()[:4]))
}

func TestTransferTipFallsBackToGasPrice(t *testing.T) {
	b := newBackend()
	b.tipErr = errors.New("method not found")
	s := &fakeSigner{}

	_, err := NewWriter(b, s, 59141).Transfer(context.Background(), transferReq())
	require.NoError(t, err)
	assert.Equal(t, b.gasPrice.String(), s.signed.GasTipCap().String())
}

func TestTransferEstimateFallback(t *testing.T) {
	b := newBackend()
	b.estimateErr = errors.New("gateway timeout")
	s := &fakeSigner{}

	_, err := NewWriter(b, s, 11155111).Transfer(context.Background(), transferReq())
	require.NoError(t, err)
	assert.Equal(t, uint64(fallbackTransferGas), s.signed.Gas())
}

func TestTransferEstimateRevertStops(t *testing.T) {
	b := newBackend()
	b.estimateErr = &chain.RPCError{Code: 3, Message: "execution reverted: ERC20: transfer amount exceeds balance"}

	_, err := NewWriter(b, &fakeSigner{}, 11155111).Transfer(context.Background(), transferReq())
	require.Error(t, err)
	assert.Equal(t, web3err.ExecutionReverted, web3err.KindOf(err))
	assert.Zero(t, b.sends, "nothing is broadcast after a failed estimate")
}

func TestTransferSignRejected(t *testing.T) {
	b := newBackend()
	_, err := NewWriter(b, &fakeSigner{err: errors.New("user denied transaction signature")}, 11155111).
		Transfer(context.Background(), transferReq())
	require.Error(t, err)
	assert.Equal(t, web3err.UserRejected, web3err.KindOf(err))
	assert.Zero(t, b.sends)
}

func TestTransferBroadcastOnceNoRetry(t *testing.T) {
	b := newBackend()
	b.sendErr = &chain.RPCError{Code: -32000, Message: "insufficient funds for gas * price + value"}

	_, err := NewWriter(b, &fakeSigner{}, 11155111).Transfer(context.Background(), transferReq())
	require.Error(t, err)
	assert.Equal(t, web3err.InsufficientFunds, web3err.KindOf(err))
	assert.Equal(t, 1, b.sends)
}
