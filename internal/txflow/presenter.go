package txflow

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

// Presenter labels and messages.
const (
	LabelPending = "Pending"
	LabelSuccess = "Success"
	LabelError   = "Error"

	MsgConfirmed = "Confirmed on-chain."
	MsgWaiting   = "Waiting for confirmation…"
	MsgCancelled = "Transaction was cancelled (replaced by a cancellation transaction)."

	HintIndexing = "If the explorer shows “not found”, wait ~30–60s for indexing."
)

// View is everything needed to render a tracked transfer.
type View struct {
	Visible         bool
	Status          Status
	Label           string
	Message         string
	Hash            common.Hash
	OriginalHash    common.Hash // zero unless the transfer was replaced
	ReplacementText string
	Links           []chain.ExplorerLink
	Hint            string
}

// Present maps a tracker snapshot to a View. An idle snapshot yields an
// invisible zero View.
func Present(s Snapshot) View {
	if s.Status == StatusIdle {
		return View{}
	}
	v := View{
		Visible: true,
		Status:  s.Status,
		Hash:    s.Record.Hash,
		Links:   chain.TxExplorerLinks(s.Record.ChainID, s.Record.Hash.Hex()),
	}
	if s.Record.Replaced() {
		v.OriginalHash = s.Record.OriginalHash
		v.ReplacementText = ReplacementText(s.Record.Reason)
	}

	switch s.Status {
	case StatusPending:
		v.Label = LabelPending
		v.Message = MsgWaiting
		v.Hint = HintIndexing
	case StatusSuccess:
		v.Label = LabelSuccess
		v.Message = MsgConfirmed
	default:
		v.Label = LabelError
		if web3err.KindOf(s.Err) == web3err.ReplacementCancelled {
			v.Message = MsgCancelled
		} else {
			v.Message = web3err.HumanizeReceipt(s.Err)
		}
	}
	return v
}

// ReplacementText describes why a transfer was superseded.
func ReplacementText(r chain.ReplacementReason) string {
	switch r {
	case chain.ReasonRepriced:
		return "Sped up (repriced)"
	case chain.ReasonCancelled:
		return "Cancelled (replaced)"
	case chain.ReasonReplaced:
		return "Replaced"
	}
	return ""
}
