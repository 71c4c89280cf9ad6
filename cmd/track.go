package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
	"github.com/Mohsinsiddi/w3mvp/internal/txflow"
	"github.com/Mohsinsiddi/w3mvp/internal/ui"
)

var (
	trackPlain bool
	trackOpen  bool
)

var reTxHash = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

var trackCmd = &cobra.Command{
	Use:   "track <hash>",
	Short: "Follow a submitted transaction until it settles",
	Long: `Watch a transaction on the selected network. Speed-ups and
cancellations are followed to the replacing transaction; the status shows
the original hash and why it was replaced.

Press o to open the explorer page, q to stop watching.

Examples:
  w3mvp track 0x5c50…e8f1
  w3mvp track 0x5c50…e8f1 --network linea-sepolia --plain`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !reTxHash.MatchString(args[0]) {
			fmt.Fprintln(out, ui.Err("Invalid transaction hash: expected 0x followed by 64 hex digits."))
			return nil
		}

		reg := chain.NewRegistry()
		c, err := selectedNetwork(reg)
		if err != nil {
			return err
		}
		client, err := dial(cmd.Context(), c)
		if err != nil {
			return err
		}
		id, err := client.ChainID(cmd.Context())
		if err != nil {
			return fmt.Errorf("querying chain id: %w", err)
		}
		if id != c.ChainID || !reg.Supported(id) {
			fmt.Fprintln(out, ui.Err(msgWrongNetwork))
			fmt.Fprintln(out, ui.Hint(fmt.Sprintf("%s serves chain %d", client.URL(), id)))
			return nil
		}

		return trackTransfer(cmd, client, txflow.NewTracker(common.HexToHash(args[0]), id))
	},
}

// trackTransfer watches tr until it settles, the track timeout passes or the
// user stops watching. Only the last two leave it pending.
func trackTransfer(cmd *cobra.Command, client *chain.EVMClient, tr *txflow.Tracker) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	if d := cfg.TrackFor(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	if trackOpen {
		openExplorer(out, tr.Snapshot())
	}

	w := chain.NewWatcher(client, chain.WithPollInterval(cfg.PollEvery()))
	watch := func(ctx context.Context) (txflow.Snapshot, error) {
		return tr.Watch(ctx, w, cfg.Confirmations)
	}

	var (
		snap txflow.Snapshot
		err  error
	)
	if trackPlain {
		fmt.Fprintln(out, ui.TxPanel(txflow.Present(tr.Snapshot())))
		tr.OnChange(func(s txflow.Snapshot) {
			fmt.Fprintln(out, ui.TxPanel(txflow.Present(s)))
		})
		snap, err = watch(ctx)
		tr.OnChange(nil)
	} else {
		snap, err = ui.RunTrack(ctx, tr, watch)
	}

	log.Debug("Tracking ended", "hash", snap.Record.Hash, "status", snap.Status, "err", err)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		if trackPlain || errors.Is(err, context.Canceled) {
			fmt.Fprintln(out, ui.Warn("Stopped watching; the transaction may still confirm."))
			fmt.Fprintln(out, ui.Hint("Resume with: w3mvp track "+snap.Record.Hash.Hex()))
		}
		return nil
	}
	return err
}

func openExplorer(out io.Writer, s txflow.Snapshot) {
	links := txflow.Present(s).Links
	if len(links) == 0 {
		fmt.Fprintln(out, ui.Warn("No explorer for this network."))
		return
	}
	if err := ui.OpenURL(links[0].URL); err != nil {
		fmt.Fprintln(out, ui.Warn("Could not open browser: "+err.Error()))
		return
	}
	fmt.Fprintln(out, ui.Info("Opened "+links[0].Name))
}

func init() {
	trackCmd.Flags().BoolVar(&trackPlain, "plain", false, "print status changes as lines instead of the live view")
	trackCmd.Flags().BoolVar(&trackOpen, "open", false, "open the explorer page before watching")
}
