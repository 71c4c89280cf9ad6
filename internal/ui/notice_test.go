package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
	"github.com/Mohsinsiddi/w3mvp/internal/txflow"
)

func TestNoticeRendering(t *testing.T) {
	ok := Notice(txflow.SuccessNotice("Transaction submitted."))
	assert.Contains(t, ok, "✓")
	assert.Contains(t, ok, "Transaction submitted.")

	bad := Notice(txflow.ErrorNotice("Recipient address is invalid."))
	assert.Contains(t, bad, "✗")
	assert.Contains(t, bad, "Recipient address is invalid.")
}

func TestTxPanelHidden(t *testing.T) {
	assert.Empty(t, TxPanel(txflow.View{}))
}

func TestTxPanelReplacement(t *testing.T) {
	tr := txflow.NewTracker(trackedHash, 59141)
	repl := trackedHash
	repl[0] = 0xbb
	tr.Replace(trackedHash, repl, chain.ReasonRepriced)

	out := TxPanel(txflow.Present(tr.Snapshot()))
	assert.Contains(t, out, "Sped up (repriced)")
	assert.Contains(t, out, trackedHash.Hex(), "original hash is shown")
	assert.Contains(t, out, repl.Hex())
	assert.Contains(t, out, "LineaScan (Sepolia)")
	assert.Contains(t, out, "Linea Explorer (Sepolia)")
	assert.Contains(t, out, "wait ~30–60s for indexing")
}

func TestTxPanelNoReplacementLine(t *testing.T) {
	out := TxPanel(txflow.Present(txflow.NewTracker(trackedHash, 11155111).Snapshot()))
	assert.False(t, strings.Contains(out, "Original:"))
}
