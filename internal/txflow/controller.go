package txflow

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/Mohsinsiddi/w3mvp/internal/token"
	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

// ErrSubmissionInFlight is returned by Submit while a previous submission on
// the same form is still waiting for the wallet.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// MsgAmountInvalid is shown for amounts that are not decimal numbers.
const MsgAmountInvalid = "Amount is not a valid number."

// TransferWriter is the contract-write capability bound to one chain.
type TransferWriter interface {
	Transfer(ctx context.Context, req token.TransferRequest) (common.Hash, error)
	ChainID() int64
}

// ChainChecker reports whether a chain ID is one the app supports.
type ChainChecker interface {
	Supported(chainID int64) bool
}

// Controller turns a validated transfer into exactly one write call and
// records the outcome on its form.
type Controller struct {
	form   *Form
	writer TransferWriter
	chains ChainChecker
}

// NewController creates a controller submitting through writer.
func NewController(form *Form, writer TransferWriter, chains ChainChecker) *Controller {
	return &Controller{form: form, writer: writer, chains: chains}
}

// Submit validates recipient and amount against the loaded token, then calls
// the writer once. Precondition failures never reach the writer. Every
// outcome, success or failure, is also left on the form as a notice. On
// success the returned tracker is pending on the submitted hash.
func (c *Controller) Submit(ctx context.Context, recipient, amount string) (*Tracker, error) {
	if !c.form.begin() {
		return nil, ErrSubmissionInFlight
	}

	req, chainID, failure := c.preconditions(recipient, amount)
	if failure != nil {
		c.form.finish(ErrorNotice(failure.Msg), nil)
		return nil, failure
	}

	hash, err := c.writer.Transfer(ctx, req)
	if err != nil {
		classified := web3err.Classify(err)
		log.Debug("Transfer failed", "kind", classified.Kind, "err", err)
		c.form.finish(ErrorNotice(web3err.HumanizeWrite(classified)), nil)
		return nil, classified
	}

	t := NewTracker(hash, chainID)
	c.form.finish(SuccessNotice(MsgSubmitted), t)
	return t, nil
}

// preconditions checks, in order: loaded token, recipient, amount, chain.
// The returned error's Msg is the notice text.
func (c *Controller) preconditions(recipient, amount string) (token.TransferRequest, int64, *web3err.Error) {
	tok, ok := c.form.Token()
	if !ok {
		return token.TransferRequest{}, 0, web3err.New(web3err.InvalidAddress, MsgLoadTokenFirst)
	}
	to, err := token.ValidateAddress(recipient)
	if err != nil {
		return token.TransferRequest{}, 0, web3err.New(web3err.InvalidAddress, MsgRecipientInvalid)
	}
	amt, err := token.ParseAmount(amount)
	if err != nil {
		msg := MsgAmountInvalid
		if errors.Is(err, token.ErrNonPositive) {
			msg = MsgAmountNotPositive
		}
		return token.TransferRequest{}, 0, web3err.New(web3err.InvalidAmount, msg)
	}
	chainID := c.writer.ChainID()
	if c.chains == nil || !c.chains.Supported(chainID) {
		return token.TransferRequest{}, 0, web3err.New(web3err.Unknown, MsgUnsupportedNetwork)
	}
	return token.TransferRequest{
		Token:  tok.Address,
		To:     to.Address,
		Amount: new(big.Int).Set(amt),
	}, chainID, nil
}
