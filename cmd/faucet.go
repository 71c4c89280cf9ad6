package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
	"github.com/Mohsinsiddi/w3mvp/internal/ui"
)

var faucetOpen bool

var faucetCmd = &cobra.Command{
	Use:   "faucet [network]",
	Short: "Show testnet faucet links",
	Long: `Display the faucet for a supported network, or for all of them.

Examples:
  w3mvp faucet                       # list all faucets
  w3mvp faucet linea-sepolia --open  # open the Linea Sepolia faucet`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		if len(args) == 1 {
			c, err := reg.GetByName(args[0])
			if err != nil {
				return fmt.Errorf("unknown network %q: run `w3mvp network` to see supported networks", args[0])
			}
			return showFaucet(cmd, c)
		}
		return listFaucets(cmd, reg)
	},
}

func showFaucet(cmd *cobra.Command, c *chain.Chain) error {
	out := cmd.OutOrStdout()
	if c.FaucetURL == "" {
		fmt.Fprintln(out, ui.Warn("No faucet known for "+c.DisplayName+"."))
		return nil
	}

	fmt.Fprintln(out, ui.KeyValueBlock(c.DisplayName+" faucet", [][2]string{
		{"Faucet", ui.Addr(c.FaucetURL)},
		{"Currency", c.NativeCurrency},
		{"Chain ID", fmt.Sprintf("%d", c.ChainID)},
	}))

	if !faucetOpen {
		fmt.Fprintln(out, ui.Hint("Add --open to launch it in your browser."))
		return nil
	}
	if err := ui.OpenURL(c.FaucetURL); err != nil {
		fmt.Fprintln(out, ui.Warn("Could not open browser: "+err.Error()))
		return nil
	}
	fmt.Fprintln(out, ui.Meta("Opening in browser…"))
	return nil
}

func listFaucets(cmd *cobra.Command, reg *chain.Registry) error {
	t := ui.NewTable(
		ui.Column{Title: "Network", Width: 16, Style: ui.Styled(ui.StyleChain)},
		ui.Column{Title: "Currency", Width: 10},
		ui.Column{Title: "Faucet URL", Width: 44, Style: ui.Styled(ui.StyleAddress), Empty: "(none)"},
	)
	for _, c := range reg.All() {
		t.AddRow(c.Name, c.NativeCurrency, c.FaucetURL)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, t.Render())
	fmt.Fprintln(out, ui.Info("Run `w3mvp faucet <network> --open` to launch a faucet in your browser."))
	return nil
}

func init() {
	faucetCmd.Flags().BoolVar(&faucetOpen, "open", false, "open the faucet URL in your default browser")
}
