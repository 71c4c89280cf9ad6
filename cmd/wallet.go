package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mvp/internal/token"
	"github.com/Mohsinsiddi/w3mvp/internal/ui"
	"github.com/Mohsinsiddi/w3mvp/internal/wallet"
)

var (
	walletKeyFlag string
	walletYes     bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
	Long: `Wallets are either watch-only (an address) or signing (a private key kept
in the OS keychain, or an encrypted file under the config dir when no
keychain is available). Set W3MVP_KEY to override the stored key.`,
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a watch-only wallet by address, or a signing wallet with --key.

Examples:
  w3mvp wallet add watcher 0x70997970C51812dc3A010C7d01b50e0d17dc79C8
  w3mvp wallet add alice --key 0xac09…ff80`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		name := args[0]
		mgr := newWalletManager()

		if walletKeyFlag != "" {
			if err := mgr.AddWithKey(name, walletKeyFlag); err != nil {
				return err
			}
			w, err := mgr.Get(name)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
		} else {
			if len(args) < 2 {
				return fmt.Errorf("address required for watch-only wallet\n  Usage: w3mvp wallet add <name> <address>\n  Or for signing: w3mvp wallet add <name> --key <private-key>")
			}
			addr, err := token.ValidateAddress(args[1])
			if err != nil {
				fmt.Fprintln(out, ui.Err("Address is invalid."))
				return nil
			}
			warnChecksum(out, addr)
			if err := mgr.Add(name, &wallet.Wallet{
				Name:    name,
				Address: addr.Hex(),
				Type:    wallet.TypeWatchOnly,
			}); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(addr.Hex()))))
		}
		fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Connect it with: w3mvp connect %s", name)))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		wallets := newWalletManager().List()

		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("No wallets configured yet."))
			fmt.Fprintln(out, ui.Hint("Add one with: w3mvp wallet add myWallet 0xYourAddress"))
			return nil
		}

		connected := wallet.LoadSession(cfg.Dir()).Wallet
		t := ui.NewTable(
			ui.Column{Title: "Name", Width: 16},
			ui.Column{Title: "Address", Width: 42, Style: ui.Styled(ui.StyleAddress)},
			ui.Column{Title: "Type", Width: 10, Style: walletTypeStyle},
			ui.Column{Title: "Default", Width: 7, Style: ui.Styled(ui.StyleSuccess)},
		)
		for _, w := range wallets {
			row := []string{w.Name, w.Address, walletTypeLabel(w.Type), ""}
			if w.IsDefault {
				row[3] = "✓"
			}
			if w.Name == connected {
				t.AddCurrentRow(row...)
			} else {
				t.AddRow(row...)
			}
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		name := args[0]
		if !walletYes && !ui.Confirm(fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Fprintln(out, ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}
		if st := wallet.LoadSession(cfg.Dir()); st.Wallet == name {
			if err := wallet.ClearSession(cfg.Dir()); err != nil {
				return err
			}
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := newWalletManager().SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		fmt.Fprintln(out, ui.Hint("Used whenever no wallet is connected and --wallet is not given."))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for a signing wallet (stored in the OS keychain)")
	walletRemoveCmd.Flags().BoolVarP(&walletYes, "yes", "y", false, "skip the confirmation prompt")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd)
}

// walletTypeLabel converts an internal wallet type to a user-friendly label.
func walletTypeLabel(t string) string {
	if t == wallet.TypeSigning {
		return "signing"
	}
	return "watch-only"
}

// walletTypeStyle highlights wallets that can sign.
func walletTypeStyle(label string) lipgloss.Style {
	if label == "signing" {
		return ui.StyleSuccess
	}
	return ui.StyleMeta
}
