package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mvp/internal/token"
	"github.com/Mohsinsiddi/w3mvp/internal/ui"
)

var checksumCmd = &cobra.Command{
	Use:   "checksum <address>",
	Short: "Validate an address and show its EIP-55 checksum form",
	Long: `Check that an address is 0x followed by 40 hex digits and print its
EIP-55 checksummed form. Mixed-case input is also checked against its
checksum.

Examples:
  w3mvp checksum 0xd8da6bf26964af9d7eed9e03e53415d37aa96045
  w3mvp checksum 0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		input := strings.TrimSpace(args[0])

		addr, err := token.ValidateAddress(input)
		if err != nil {
			fmt.Fprintln(out, ui.Err("Address is invalid: expected 0x followed by 40 hex digits."))
			return nil
		}
		fmt.Fprintln(out, ui.KeyValueBlock("EIP-55 Checksum", [][2]string{
			{"Input", input},
			{"Checksummed", ui.Addr(addr.Hex())},
			{"Valid", checksumVerdict(input, addr)},
		}))
		return nil
	},
}

func checksumVerdict(input string, addr token.Address) string {
	switch {
	case !addr.ChecksumOK:
		return ui.Err("checksum mismatch")
	case input == addr.Hex():
		return ui.Success("address is correctly checksummed")
	}
	return ui.Warn("valid address but not checksummed")
}
