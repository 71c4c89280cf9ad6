package chain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

// ReplacementReason tags why a pending transaction was superseded.
type ReplacementReason string

const (
	ReasonReplaced  ReplacementReason = "replaced"
	ReasonRepriced  ReplacementReason = "repriced"
	ReasonCancelled ReplacementReason = "cancelled"
)

// Replacement describes a pending transaction superseded by another one
// occupying the same sender/nonce slot.
type Replacement struct {
	Reason      ReplacementReason
	Transaction *Transaction // the transaction that was replaced
	Replacement *Transaction // the transaction that took its slot
}

// WaitParams configures a single Wait call.
type WaitParams struct {
	Hash    common.Hash
	ChainID int64
	// Confirmations is the number of blocks (including the inclusion block)
	// required before the receipt is reported. Zero means one.
	Confirmations uint64
	// OnReplaced is called from the polling goroutine each time the tracked
	// transaction is superseded. Waiting continues on the replacement.
	OnReplaced func(Replacement)
}

// ErrReverted is returned (wrapped as ExecutionReverted) when the tracked
// transaction settles with status 0.
var ErrReverted = errors.New("transaction reverted")

var errStillPending = errors.New("still pending")

// Watcher polls a node until a transaction settles, following replacements.
type Watcher struct {
	client        *EVMClient
	interval      time.Duration
	scanDepth     uint64
	notFoundLimit int
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithPollInterval sets the delay between polls.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.interval = d }
}

// WithScanDepth bounds how many recent blocks are scanned when looking for
// a replacement transaction.
func WithScanDepth(n uint64) WatcherOption {
	return func(w *Watcher) { w.scanDepth = n }
}

// WithNotFoundLimit sets how many consecutive polls may find neither the
// transaction nor its receipt before Wait gives up. Only applies while the
// transaction has never been seen. Zero disables the limit.
func WithNotFoundLimit(n int) WatcherOption {
	return func(w *Watcher) { w.notFoundLimit = n }
}

// NewWatcher creates a settlement watcher.
func NewWatcher(client *EVMClient, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		client:        client,
		interval:      4 * time.Second,
		scanDepth:     64,
		notFoundLimit: 60,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Wait blocks until p.Hash (or whatever replaced it) is included with the
// requested number of confirmations, the context is done, or the
// transaction cannot be found. A reverted receipt is returned together with
// an ExecutionReverted error.
func (w *Watcher) Wait(ctx context.Context, p WaitParams) (*TxReceipt, error) {
	if p.Confirmations == 0 {
		p.Confirmations = 1
	}
	st := &waitState{hash: p.Hash}
	logger := log.New("chain", p.ChainID)

	var receipt *TxReceipt
	op := func() error {
		r, err := w.poll(ctx, p, st)
		if r != nil {
			receipt = r
		}
		if err != nil {
			if errors.Is(err, errStillPending) {
				return err
			}
			var classified *web3err.Error
			if errors.As(err, &classified) {
				return backoff.Permanent(err)
			}
			// Transport or node hiccup: keep polling.
			logger.Debug("Receipt poll failed", "hash", st.hash, "err", err)
			return err
		}
		return nil
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(w.interval), ctx)
	if err := backoff.Retry(op, b); err != nil {
		if errors.Is(err, ErrReverted) {
			return receipt, err
		}
		return nil, err
	}
	logger.Info("Transaction confirmed", "hash", receipt.Hash, "block", receipt.BlockNumber)
	return receipt, nil
}

type waitState struct {
	hash      common.Hash
	tx        *Transaction // last known body of the tracked transaction
	seenBlock uint64       // chain head when tx was first observed
	misses    int
}

func (w *Watcher) poll(ctx context.Context, p WaitParams, st *waitState) (*TxReceipt, error) {
	r, err := w.client.TransactionReceipt(ctx, st.hash)
	if err != nil {
		return nil, err
	}
	if r != nil {
		st.misses = 0
		head, err := w.client.BlockNumber(ctx)
		if err != nil {
			return nil, err
		}
		if head+1 < r.BlockNumber+p.Confirmations {
			return nil, errStillPending
		}
		if !r.Succeeded() {
			return r, web3err.Wrap(web3err.ExecutionReverted, fmt.Errorf("%w (hash: %s)", ErrReverted, st.hash.Hex()))
		}
		return r, nil
	}

	tx, err := w.client.TransactionByHash(ctx, st.hash)
	if err == nil {
		st.misses = 0
		if st.tx == nil {
			if head, herr := w.client.BlockNumber(ctx); herr == nil {
				st.seenBlock = head
			}
		}
		st.tx = tx
		return nil, errStillPending
	}
	if !errors.Is(err, ErrTxNotFound) {
		return nil, err
	}

	if st.tx != nil {
		repl, err := w.findReplacement(ctx, st)
		if err != nil {
			return nil, err
		}
		if repl != nil {
			log.Info("Transaction replaced", "old", st.hash, "new", repl.Replacement.Hash, "reason", repl.Reason)
			if p.OnReplaced != nil {
				p.OnReplaced(*repl)
			}
			st.hash = repl.Replacement.Hash
			st.tx = repl.Replacement
			st.misses = 0
			return nil, errStillPending
		}
	}

	// A body seen earlier means the transfer is live until its nonce slot
	// is filled, so only never-seen hashes count toward the limit.
	if st.tx != nil {
		return nil, errStillPending
	}
	st.misses++
	if w.notFoundLimit > 0 && st.misses >= w.notFoundLimit {
		return nil, web3err.Wrap(web3err.NotFound, fmt.Errorf("%w: %s", ErrTxNotFound, st.hash.Hex()))
	}
	return nil, errStillPending
}

// findReplacement looks for another transaction from the same sender with
// the same nonce. It only scans once the sender's confirmed nonce has moved
// past the tracked transaction.
func (w *Watcher) findReplacement(ctx context.Context, st *waitState) (*Replacement, error) {
	old := st.tx
	nonce, err := w.client.Nonce(ctx, old.From)
	if err != nil {
		return nil, err
	}
	if nonce <= old.Nonce {
		return nil, nil
	}

	head, err := w.client.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}
	var floor uint64
	if head > w.scanDepth {
		floor = head - w.scanDepth
	}
	if st.seenBlock > floor && st.seenBlock <= head {
		floor = st.seenBlock
	}

	for n := head; ; n-- {
		txs, err := w.client.BlockTransactions(ctx, n)
		if err != nil {
			return nil, err
		}
		for _, tx := range txs {
			if tx.From == old.From && tx.Nonce == old.Nonce && tx.Hash != old.Hash {
				return &Replacement{
					Reason:      classifyReplacement(old, tx),
					Transaction: old,
					Replacement: tx,
				}, nil
			}
		}
		if n == floor || n == 0 {
			break
		}
	}
	return nil, nil
}

// classifyReplacement decides why old was superseded by repl: same call at a
// new price is a reprice, a zero-value self-send is a cancellation, anything
// else is a replacement.
func classifyReplacement(old, repl *Transaction) ReplacementReason {
	sameTo := (old.To == nil && repl.To == nil) ||
		(old.To != nil && repl.To != nil && *old.To == *repl.To)
	if sameTo && old.Value.Cmp(repl.Value) == 0 && bytes.Equal(old.Input, repl.Input) {
		return ReasonRepriced
	}
	if repl.To != nil && *repl.To == repl.From && repl.Value.Sign() == 0 {
		return ReasonCancelled
	}
	return ReasonReplaced
}
