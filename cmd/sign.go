package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mvp/internal/ui"
	"github.com/Mohsinsiddi/w3mvp/internal/wallet"
	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

// Signing notices.
const (
	msgSigned       = "Signed successfully."
	msgEmptyMessage = "Message cannot be empty."
)

var (
	verifySig     string
	verifyAddress string
)

var signCmd = &cobra.Command{
	Use:   "sign [message]",
	Short: "Sign a message with EIP-191 (personal_sign), no gas",
	Long: `Sign a plaintext message with the connected wallet using EIP-191
personal_sign. Without an argument a demo sign-in message is signed.

Examples:
  w3mvp sign
  w3mvp sign "login nonce: 12345" --wallet alice`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		message := wallet.DemoMessage
		if len(args) == 1 {
			message = args[0]
		}

		mgr := newWalletManager()
		w, err := selectedWallet(mgr)
		if errors.Is(err, wallet.ErrNoWallet) {
			fmt.Fprintln(out, ui.Err(msgNotConnected))
			return nil
		}
		if err != nil {
			return err
		}

		sig, err := wallet.SignMessage(w, mgr.Keystore(), []byte(message))
		switch {
		case errors.Is(err, wallet.ErrEmptyMessage):
			fmt.Fprintln(out, ui.Err(msgEmptyMessage))
			return nil
		case err != nil:
			fmt.Fprintln(out, ui.Err(web3err.HumanizeSign(err)))
			return nil
		}

		sigHex := hexutil.Encode(sig)
		fmt.Fprintln(out, ui.Success(msgSigned))
		fmt.Fprintln(out, ui.KeyValueBlock("Message Signed", [][2]string{
			{"Signer", ui.Addr(w.Address)},
			{"Message", message},
			{"Signature", sigHex},
		}))
		fmt.Fprintln(out, ui.Hint("Verify: w3mvp verify \""+message+"\" --sig "+sigHex+" --address "+w.Address))
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <message>",
	Short: "Verify an EIP-191 signed message",
	Long: `Recover the signer of an EIP-191 personal_sign signature and compare it
to the expected address, if given.

Examples:
  w3mvp verify "hello world" --sig 0x... --address 0x...
  w3mvp verify "hello world" --sig 0x...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := args[0]

		if verifySig == "" {
			return fmt.Errorf("--sig is required: provide the hex signature")
		}
		sigBytes, err := hexutil.Decode(verifySig)
		if err != nil {
			return fmt.Errorf("invalid signature hex: %w", err)
		}

		recovered, err := wallet.VerifyMessage([]byte(message), sigBytes)
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		pairs := [][2]string{
			{"Message", message},
			{"Recovered Signer", ui.Addr(recovered.Hex())},
		}
		if verifyAddress != "" {
			if strings.EqualFold(recovered.Hex(), verifyAddress) && common.IsHexAddress(verifyAddress) {
				pairs = append(pairs, [2]string{"Match", ui.Success("signature is valid, signer matches")})
			} else {
				pairs = append(pairs, [2]string{"Expected", ui.Addr(verifyAddress)})
				pairs = append(pairs, [2]string{"Match", ui.Err("signature does NOT match expected address")})
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Signature Verification", pairs))
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifySig, "sig", "", "hex signature to verify (required)")
	verifyCmd.Flags().StringVar(&verifyAddress, "address", "", "expected signer address (optional)")
}
