package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mvp/internal/config"
	"github.com/Mohsinsiddi/w3mvp/internal/token"
	"github.com/Mohsinsiddi/w3mvp/internal/txflow"
	"github.com/Mohsinsiddi/w3mvp/internal/ui"
	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

var (
	readDemo   bool
	readFormat bool
)

var readCmd = &cobra.Command{
	Use:   "read [token]",
	Short: "Read the connected account's ERC20 balance",
	Long: `Call balanceOf(account) on an ERC20 token. With --format the token's
decimals() and symbol() are read too and the balance is shown formatted.

Examples:
  w3mvp read 0x09720b03264A7278299d74465e4D94E203040304
  w3mvp read --demo --format`,
	Args: cobra.MaximumNArgs(1),
	RunE: guarded(func(cmd *cobra.Command, args []string, w3 *web3) error {
		out := cmd.OutOrStdout()

		addr, ok := loadToken(out, txflow.NewForm(), args, readDemo, w3.session.Chain.DemoToken)
		if !ok {
			return nil
		}
		warnChecksum(out, addr)

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()

		sp := ui.NewSpinner("Reading balance…").Start()
		bal, err := token.NewReader(w3.client).ReadBalance(ctx, addr.Address, w3.session.Address, readFormat)
		sp.Stop()
		if err != nil {
			fmt.Fprintln(out, ui.Err(web3err.HumanizeRead(err)))
			return nil
		}

		pairs := [][2]string{
			{"Token", ui.Addr(addr.Hex())},
			{"Account", ui.Addr(w3.session.Address.Hex())},
			{"Raw balance", bal.Raw.String()},
		}
		if bal.HasMeta {
			formatted := bal.Formatted()
			if bal.Symbol != "" {
				formatted += " " + bal.Symbol
			}
			pairs = append(pairs,
				[2]string{"Decimals", fmt.Sprintf("%d", bal.Decimals)},
				[2]string{"Balance", ui.Val(formatted)},
			)
		}
		fmt.Fprintln(out, ui.KeyValueBlock("ERC20 Balance", pairs))
		return nil
	}),
}

// loadToken loads the token address from args or, with demo, the network's
// demo token into f. Invalid input is reported as a notice.
func loadToken(out io.Writer, f *txflow.Form, args []string, demo bool, demoToken string) (token.Address, bool) {
	var (
		addr token.Address
		ok   bool
	)
	switch {
	case demo:
		addr, ok = f.LoadDemoToken(demoToken)
	case len(args) == 1:
		addr, ok = f.LoadToken(args[0])
	default:
		f.SetNotice(txflow.ErrorNotice(txflow.MsgLoadTokenFirst))
	}
	if n, has := f.Notice(); has {
		fmt.Fprintln(out, ui.Notice(n))
	}
	return addr, ok
}

func warnChecksum(out io.Writer, a token.Address) {
	if !a.ChecksumOK {
		fmt.Fprintln(out, ui.Warn("Address checksum does not match; using "+a.Hex()))
	}
}

func init() {
	readCmd.Flags().BoolVar(&readDemo, "demo", false, "use the demo token of the current network")
	readCmd.Flags().BoolVar(&readFormat, "format", false, "also read decimals() and symbol() and format the balance")
}
