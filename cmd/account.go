package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
	"github.com/Mohsinsiddi/w3mvp/internal/config"
	"github.com/Mohsinsiddi/w3mvp/internal/ui"
	"github.com/Mohsinsiddi/w3mvp/internal/wallet"
	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

var connectCmd = &cobra.Command{
	Use:   "connect [wallet]",
	Short: "Connect a wallet on the selected network",
	Long: `Connect a wallet and remember it, with the network, for later commands.

Without an argument the --wallet flag or the default wallet is used.

Examples:
  w3mvp connect
  w3mvp connect alice --network linea-sepolia`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			walletFlag = args[0]
		}
		w3, err := connectWeb3(cmd.Context(), cmd.OutOrStdout())
		if err != nil {
			return silenceGuard(err)
		}
		st := wallet.SessionState{Wallet: w3.session.Wallet.Name, Network: w3.session.Chain.Name}
		if err := wallet.SaveSession(cfg.Dir(), st); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Connected %s on %s", ui.Addr(ui.TruncateAddr(w3.session.Address.Hex())), w3.session.Chain.DisplayName)))
		return printAccount(cmd.Context(), cmd, w3)
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the connected wallet and network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wallet.ClearSession(cfg.Dir()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Disconnected."))
		return nil
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show the connected account, network and native balance",
	Args:  cobra.NoArgs,
	RunE: guarded(func(cmd *cobra.Command, args []string, w3 *web3) error {
		return printAccount(cmd.Context(), cmd, w3)
	}),
}

func printAccount(ctx context.Context, cmd *cobra.Command, w3 *web3) error {
	s := w3.session
	ctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()

	var balance string
	if bal, err := w3.client.GetBalance(ctx, s.Address.Hex()); err == nil {
		balance = ui.Val(chain.FormatFixed(bal, 18, 4)) + " " + s.Chain.NativeCurrency
	} else {
		balance = ui.Err(web3err.HumanizeRead(err))
	}

	kind := "watch-only"
	if s.Wallet.CanSign() {
		kind = "signing"
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Account", [][2]string{
		{"Wallet", s.Wallet.Name + ui.Meta(" ("+kind+")")},
		{"Address", ui.Addr(ui.TruncateAddr(s.Address.Hex()))},
		{"Full address", s.Address.Hex()},
		{"Network", ui.ChainName(s.Chain.String())},
		{"Balance", balance},
	}))
	return nil
}
