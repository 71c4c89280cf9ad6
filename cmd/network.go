package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
	"github.com/Mohsinsiddi/w3mvp/internal/ui"
	"github.com/Mohsinsiddi/w3mvp/internal/wallet"
	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

// Network notices.
const (
	msgNetworkSwitched = "Network switched."
	msgUnsupportedNet  = "Wrong network (unsupported)"
)

var networkYes bool

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Show the current network and the supported ones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		reg := chain.NewRegistry()

		current := msgUnsupportedNet
		var currentID int64
		if c, err := selectedNetwork(reg); err == nil {
			current = c.String()
			currentID = c.ChainID
		}
		fmt.Fprintln(out, ui.KeyValueBlock("Network", [][2]string{
			{"Current", ui.ChainName(current)},
		}))

		t := ui.NewTable(
			ui.Column{Title: "Name", Width: 16, Style: ui.Styled(ui.StyleChain)},
			ui.Column{Title: "Display", Width: 16},
			ui.Column{Title: "Chain ID", Width: 10, Style: ui.Styled(ui.StyleMeta)},
			ui.Column{Title: "Currency", Width: 8},
		)
		for _, c := range reg.All() {
			row := []string{c.Name, c.DisplayName, strconv.FormatInt(c.ChainID, 10), c.NativeCurrency}
			if c.ChainID == currentID {
				t.AddCurrentRow(row...)
			} else {
				t.AddRow(row...)
			}
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Hint("Switch with: w3mvp network switch <name>"))
		return nil
	},
}

var networkSwitchCmd = &cobra.Command{
	Use:   "switch [name]",
	Short: "Switch the connected wallet to another network",
	Long: `Switch the connected session to another supported network.

Without a name an interactive picker is shown. The switch must be approved
unless --yes is given.

Examples:
  w3mvp network switch linea-sepolia
  w3mvp network switch sepolia --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		reg := chain.NewRegistry()

		w, err := selectedWallet(newWalletManager())
		if errors.Is(err, wallet.ErrNoWallet) {
			fmt.Fprintln(out, ui.Err(msgNotConnected))
			return nil
		}
		if err != nil {
			return err
		}

		s := &wallet.Session{Wallet: w, Address: w.Account(), Connected: true}
		if c, err := selectedNetwork(reg); err == nil {
			s.Chain, s.ChainID = c, c.ChainID
		}

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			items := make([]ui.PickerItem, 0, len(reg.All()))
			for _, c := range reg.All() {
				items = append(items, ui.PickerItem{Label: c.DisplayName, SubLabel: strconv.FormatInt(c.ChainID, 10), Value: c.Name})
			}
			current := ""
			if s.Chain != nil {
				current = s.Chain.Name
			}
			if name, err = ui.PickItem("Switch network", items, current); err != nil {
				return err
			}
			if name == "" {
				return nil
			}
		}

		// An unknown name is a target the wallet cannot switch to.
		target, _ := reg.GetByName(name)
		confirm := ui.Confirm
		if networkYes {
			confirm = nil
		}
		if err := s.SwitchChain(target, confirm); err != nil {
			fmt.Fprintln(out, ui.Err(web3err.HumanizeSwitch(err)))
			return nil
		}

		st := wallet.LoadSession(cfg.Dir())
		st.Wallet, st.Network = w.Name, s.Chain.Name
		if err := wallet.SaveSession(cfg.Dir(), st); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		fmt.Fprintln(out, ui.Success(msgNetworkSwitched)+" "+ui.ChainName(s.Chain.String()))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default network in config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q: run `w3mvp network` to see supported networks", args[0])
		}
		cfg.DefaultNetwork = c.Name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default network set to %s", ui.ChainName(c.DisplayName))))
		return nil
	},
}

func init() {
	networkSwitchCmd.Flags().BoolVarP(&networkYes, "yes", "y", false, "approve the switch without prompting")
	networkCmd.AddCommand(networkSwitchCmd, networkUseCmd)
}
