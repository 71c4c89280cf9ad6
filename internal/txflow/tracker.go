package txflow

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

// ReasonNone marks a record that was never replaced.
const ReasonNone chain.ReplacementReason = ""

// Record is one submitted transfer.
type Record struct {
	// Hash is the identifier currently being tracked.
	Hash common.Hash
	// OriginalHash is set on the first replacement and never changes after.
	OriginalHash common.Hash
	ChainID      int64
	Reason       chain.ReplacementReason
}

// Replaced reports whether the tracked hash differs from the submitted one.
func (r Record) Replaced() bool {
	return r.OriginalHash != (common.Hash{}) && r.OriginalHash != r.Hash
}

// Submitted returns the hash first reported at submission time.
func (r Record) Submitted() common.Hash {
	if r.OriginalHash != (common.Hash{}) {
		return r.OriginalHash
	}
	return r.Hash
}

// Status is the derived lifecycle state of a record.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "idle"
}

// Terminal reports whether s is success or error.
func (s Status) Terminal() bool { return s == StatusSuccess || s == StatusError }

// Snapshot is a consistent copy of a tracker's state.
type Snapshot struct {
	Record  Record
	Status  Status
	Err     error
	Receipt *chain.TxReceipt
}

// Tracker follows one submitted transaction through replacements to
// settlement. It is safe for concurrent use: replacement and settlement
// signals arrive from the watcher goroutine while the UI reads snapshots.
type Tracker struct {
	mu         sync.Mutex
	rec        Record
	status     Status
	err        error
	receipt    *chain.TxReceipt
	superseded map[common.Hash]bool
	onChange   func(Snapshot)
}

// NewTracker starts tracking hash on chainID in the pending state.
func NewTracker(hash common.Hash, chainID int64) *Tracker {
	return &Tracker{
		rec:        Record{Hash: hash, ChainID: chainID},
		status:     StatusPending,
		superseded: make(map[common.Hash]bool),
	}
}

// OnChange registers fn to be called with a fresh snapshot after every
// accepted mutation. fn runs on the goroutine that caused the change.
func (t *Tracker) OnChange(fn func(Snapshot)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Record returns a copy of the tracked record.
func (t *Tracker) Record() Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rec
}

// Status returns the derived lifecycle status.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Replace records that old was superseded by replacement for reason. It
// returns false and changes nothing when the event is a duplicate
// (replacement is already current) or stale (old is no longer current, or
// replacement was itself superseded earlier). An accepted replacement puts
// the tracker back into pending: the replacement notice is authoritative
// over any settlement seen for the old hash.
func (t *Tracker) Replace(old, replacement common.Hash, reason chain.ReplacementReason) bool {
	t.mu.Lock()
	switch {
	case replacement == t.rec.Hash:
		t.mu.Unlock()
		return false
	case t.superseded[replacement], old != (common.Hash{}) && old != t.rec.Hash:
		log.Debug("Ignoring stale replacement", "old", old, "new", replacement, "current", t.rec.Hash)
		t.mu.Unlock()
		return false
	}

	if t.rec.OriginalHash == (common.Hash{}) {
		t.rec.OriginalHash = t.rec.Hash
	}
	t.superseded[t.rec.Hash] = true
	t.rec.Hash = replacement
	t.rec.Reason = reason
	t.status = StatusPending
	t.err = nil
	t.receipt = nil
	return t.commit()
}

// Settle records the outcome reported for hash. Outcomes for any hash other
// than the current one are ignored, as is a second outcome for the same
// hash. A successful receipt for a cancellation replacement settles as an
// error of kind ReplacementCancelled.
func (t *Tracker) Settle(hash common.Hash, receipt *chain.TxReceipt, err error) bool {
	t.mu.Lock()
	if hash != t.rec.Hash || t.status.Terminal() {
		log.Debug("Ignoring stale settlement", "hash", hash, "current", t.rec.Hash, "status", t.status)
		t.mu.Unlock()
		return false
	}

	t.receipt = receipt
	switch {
	case err != nil:
		t.status = StatusError
		t.err = err
	case receipt == nil:
		t.status = StatusError
		t.err = web3err.New(web3err.NotFound, "transaction not found")
	case !receipt.Succeeded():
		t.status = StatusError
		t.err = web3err.Wrap(web3err.ExecutionReverted, chain.ErrReverted)
	case t.rec.Reason == chain.ReasonCancelled:
		t.status = StatusError
		t.err = web3err.New(web3err.ReplacementCancelled, "transaction was cancelled by a replacement")
	default:
		t.status = StatusSuccess
		t.err = nil
	}
	return t.commit()
}

// commit must be called with t.mu held; it releases the lock before
// notifying the change listener.
func (t *Tracker) commit() bool {
	snap := t.snapshotLocked()
	fn := t.onChange
	t.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
	return true
}

func (t *Tracker) snapshotLocked() Snapshot {
	return Snapshot{Record: t.rec, Status: t.status, Err: t.err, Receipt: t.receipt}
}

// Waiter is the settlement-watch capability.
type Waiter interface {
	Wait(ctx context.Context, p chain.WaitParams) (*chain.TxReceipt, error)
}

// Watch runs w against the tracked hash until it settles or ctx is done,
// feeding replacements and the final outcome into t. When ctx ends first
// the tracker stays pending and ctx's error is returned.
func (t *Tracker) Watch(ctx context.Context, w Waiter, confirmations uint64) (Snapshot, error) {
	rec := t.Record()
	receipt, err := w.Wait(ctx, chain.WaitParams{
		Hash:          rec.Hash,
		ChainID:       rec.ChainID,
		Confirmations: confirmations,
		OnReplaced: func(r chain.Replacement) {
			t.Replace(r.Transaction.Hash, r.Replacement.Hash, r.Reason)
		},
	})
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return t.Snapshot(), err
	}

	hash := t.Record().Hash
	if receipt != nil {
		hash = receipt.Hash
	}
	t.Settle(hash, receipt, err)
	return t.Snapshot(), nil
}
