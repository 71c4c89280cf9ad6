package token

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

// Caller is the eth_call subset of a chain client.
type Caller interface {
	CallContract(ctx context.Context, from, to string, data []byte) ([]byte, error)
}

// Reader calls read-only ERC20 functions. Failures are classified as
// ExecutionReverted, DecodeFailed or Unknown.
type Reader struct {
	client Caller
}

// NewReader creates a Reader.
func NewReader(client Caller) *Reader {
	return &Reader{client: client}
}

// BalanceOf returns owner's raw token balance.
func (r *Reader) BalanceOf(ctx context.Context, tok, owner common.Address) (*big.Int, error) {
	out, err := r.call(ctx, tok, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	bal, ok := out.(*big.Int)
	if !ok {
		return nil, decodeErr("balanceOf", out)
	}
	return bal, nil
}

// Decimals returns the token's decimals().
func (r *Reader) Decimals(ctx context.Context, tok common.Address) (uint8, error) {
	out, err := r.call(ctx, tok, "decimals")
	if err != nil {
		return 0, err
	}
	dec, ok := out.(uint8)
	if !ok {
		return 0, decodeErr("decimals", out)
	}
	return dec, nil
}

// Symbol returns the token's symbol().
func (r *Reader) Symbol(ctx context.Context, tok common.Address) (string, error) {
	out, err := r.call(ctx, tok, "symbol")
	if err != nil {
		return "", err
	}
	sym, ok := out.(string)
	if !ok {
		return "", decodeErr("symbol", out)
	}
	return sym, nil
}

// Balance is the result of a balance read, optionally with token metadata.
type Balance struct {
	Token    common.Address
	Owner    common.Address
	Raw      *big.Int
	Symbol   string
	Decimals uint8
	HasMeta  bool
}

// Formatted renders the balance using the token's decimals. Without
// metadata it falls back to the raw integer.
func (b *Balance) Formatted() string {
	if !b.HasMeta {
		return b.Raw.String()
	}
	return chain.FormatUnits(b.Raw, int(b.Decimals))
}

// ReadBalance reads balanceOf and, when withMeta is set, decimals and symbol
// concurrently. A failing symbol() is tolerated; the other two are not.
func (r *Reader) ReadBalance(ctx context.Context, tok, owner common.Address, withMeta bool) (*Balance, error) {
	b := &Balance{Token: tok, Owner: owner}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := r.BalanceOf(gctx, tok, owner)
		b.Raw = raw
		return err
	})
	if withMeta {
		g.Go(func() error {
			dec, err := r.Decimals(gctx, tok)
			b.Decimals = dec
			return err
		})
		g.Go(func() error {
			sym, err := r.Symbol(gctx, tok)
			if err != nil {
				log.Debug("Token symbol unavailable", "token", tok, "err", err)
				return nil
			}
			b.Symbol = sym
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	b.HasMeta = withMeta
	return b, nil
}

func (r *Reader) call(ctx context.Context, tok common.Address, method string, args ...interface{}) (interface{}, error) {
	data, err := ERC20.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	ret, err := r.client.CallContract(ctx, "", tok.Hex(), data)
	if err != nil {
		return nil, web3err.Classify(fmt.Errorf("%s: %w", method, err))
	}
	if len(ret) == 0 {
		// Calls to an address without code succeed with empty output.
		return nil, web3err.New(web3err.DecodeFailed, fmt.Sprintf("%s: empty return data from %s", method, tok.Hex()))
	}
	vals, err := ERC20.Unpack(method, ret)
	if err != nil {
		return nil, web3err.Wrap(web3err.DecodeFailed, fmt.Errorf("%s: %w", method, err))
	}
	if len(vals) != 1 {
		return nil, web3err.New(web3err.DecodeFailed, fmt.Sprintf("%s: expected 1 value, got %d", method, len(vals)))
	}
	return vals[0], nil
}

func decodeErr(method string, got interface{}) error {
	return web3err.New(web3err.DecodeFailed, fmt.Sprintf("%s: unexpected result type %T", method, got))
}
