package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mvp/internal/config"
	"github.com/Mohsinsiddi/w3mvp/internal/token"
	"github.com/Mohsinsiddi/w3mvp/internal/txflow"
	"github.com/Mohsinsiddi/w3mvp/internal/ui"
	"github.com/Mohsinsiddi/w3mvp/internal/wallet"
)

var (
	transferTo      string
	transferAmount  string
	transferDemo    bool
	transferYes     bool
	transferNoTrack bool
)

var transferCmd = &cobra.Command{
	Use:   "transfer [token]",
	Short: "Send an ERC20 transfer and follow it until it settles",
	Long: `Call transfer(to, amount) on an ERC20 token from the connected wallet.
The amount is a decimal with up to 18 fractional digits. The transfer is
signed only after you approve the prompt, broadcast once, then followed
through speed-ups and cancellations until it confirms or fails.

Examples:
  w3mvp transfer --demo --to 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 --amount 1.5
  w3mvp transfer 0x0972…0304 --to 0x7099…79C8 --amount 2 --yes --no-track`,
	Args: cobra.MaximumNArgs(1),
	RunE: guarded(func(cmd *cobra.Command, args []string, w3 *web3) error {
		out := cmd.OutOrStdout()
		w := w3.session.Wallet
		if !w.CanSign() {
			fmt.Fprintln(out, ui.Err(fmt.Sprintf("Wallet %q is watch-only. Add a signing wallet with `w3mvp wallet add <name> --key <private-key>`.", w.Name)))
			return nil
		}

		f := txflow.NewForm()
		if transferDemo || len(args) == 1 {
			addr, ok := loadToken(out, f, args, transferDemo, w3.session.Chain.DemoToken)
			if !ok {
				return nil
			}
			warnChecksum(out, addr)
		}

		var confirm wallet.ConfirmFunc = ui.Confirm
		if transferYes {
			confirm = nil
		}
		signer := &wallet.ApprovingSigner{Signer: wallet.NewSigner(w, w3.mgr.Keystore()), Confirm: confirm}
		writer := token.NewWriter(w3.client, signer, w3.session.ChainID)

		ctx, cancel := context.WithTimeout(cmd.Context(), config.SubmitTimeout)
		tr, err := txflow.NewController(f, writer, w3.reg).Submit(ctx, transferTo, transferAmount)
		cancel()
		if n, ok := f.Notice(); ok {
			fmt.Fprintln(out, ui.Notice(n))
		}
		if err != nil {
			return nil
		}

		if transferNoTrack {
			fmt.Fprintln(out, ui.TxPanel(txflow.Present(tr.Snapshot())))
			fmt.Fprintln(out, ui.Hint("Follow it with: w3mvp track "+tr.Record().Hash.Hex()))
			return nil
		}
		return trackTransfer(cmd, w3.client, tr)
	}),
}

func init() {
	transferCmd.Flags().StringVar(&transferTo, "to", "", "recipient address")
	transferCmd.Flags().StringVar(&transferAmount, "amount", "", "amount in whole tokens, e.g. 1.5")
	transferCmd.Flags().BoolVar(&transferDemo, "demo", false, "use the demo token of the current network")
	transferCmd.Flags().BoolVarP(&transferYes, "yes", "y", false, "sign without the approval prompt")
	transferCmd.Flags().BoolVar(&transferNoTrack, "no-track", false, "print the hash and exit after broadcasting")
	transferCmd.Flags().BoolVar(&trackPlain, "plain", false, "print status changes as lines instead of the live view")
	transferCmd.Flags().BoolVar(&trackOpen, "open", false, "open the explorer page once submitted")
}
