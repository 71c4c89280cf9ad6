package web3err

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// namedErr mimics a wallet error that carries a name, like UserRejectedRequestError.
type namedErr struct{ name, msg string }

func (e namedErr) Error() string { return e.msg }
func (e namedErr) Name() string  { return e.name }

func TestClassifyByMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want Kind
	}{
		{"User rejected the request.", UserRejected},
		{"MetaMask Tx Signature: User denied transaction signature.", UserRejected},
		{"open /home/u/.w3mvp/keys/alice: permission denied", Unknown},
		{"insufficient funds for gas * price + value", InsufficientFunds},
		{"execution reverted: ERC20: transfer amount exceeds balance", ExecutionReverted},
		{"could not decode result data", DecodeFailed},
		{"abi: cannot marshal in to go type", DecodeFailed},
		{"wallet_switchEthereumChain is not supported", UnsupportedByWallet},
		{"invalid address", InvalidAddress},
		{"transaction not found", NotFound},
		{"nonce too low", Unknown},
		{"", Unknown},
	}
	for _, tc := range tests {
		t.Run(tc.msg, func(t *testing.T) {
			e := Classify(errors.New(tc.msg))
			require.NotNil(t, e)
			assert.Equal(t, tc.want, e.Kind)
			assert.Equal(t, tc.msg, e.Msg)
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	// A rejection that mentions a revert is still a rejection.
	assert.Equal(t, UserRejected, KindOf(errors.New("user rejected: would revert")))
	// Missing funds beats the revert wording some nodes add.
	assert.Equal(t, InsufficientFunds, KindOf(errors.New("execution reverted: insufficient funds")))
}

func TestClassifyByName(t *testing.T) {
	err := namedErr{name: "UserRejectedRequestError", msg: "something happened"}
	assert.Equal(t, UserRejected, KindOf(err))
	assert.Equal(t, UserRejected, KindOf(fmt.Errorf("wrapped: %w", err)))
}

func TestClassifyKeepsClassifiedErrors(t *testing.T) {
	orig := New(InvalidAmount, "must be greater than 0")
	wrapped := fmt.Errorf("validating: %w", orig)

	got := Classify(wrapped)
	assert.Same(t, orig, got)
	assert.Equal(t, InvalidAmount, KindOf(wrapped))
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
	assert.Equal(t, Unknown, KindOf(nil))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(NotFound, nil))

	cause := errors.New("boom")
	e := Wrap(ExecutionReverted, cause)
	assert.Equal(t, ExecutionReverted, e.Kind)
	assert.ErrorIs(t, e, cause)
	assert.Equal(t, "boom", e.Error())
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("submit: %w", New(UserRejected, "user rejected the transaction"))
	assert.ErrorIs(t, err, New(UserRejected, ""))
	assert.NotErrorIs(t, err, New(InsufficientFunds, ""))
	assert.NotErrorIs(t, err, New(UserRejected, "a different message"))
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "msg", New(Unknown, "msg").Error())
	assert.Equal(t, "cause", (&Error{Kind: NotFound, Err: errors.New("cause")}).Error())
	assert.Equal(t, "NotFound", (&Error{Kind: NotFound}).Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "ExecutionReverted", ExecutionReverted.String())
	assert.Equal(t, "ReplacementCancelled", ReplacementCancelled.String())
	assert.Equal(t, "Unknown", Kind(99).String())
}
