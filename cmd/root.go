package cmd

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mvp/internal/config"
	"github.com/Mohsinsiddi/w3mvp/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3mvp/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	networkFlag string
	walletFlag  string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3mvp",
	Short: "Web3 frontend MVP in your terminal",
	Long: ui.Banner(Version) + `
Connect a wallet, check the account and network, sign a message, read an
ERC20 balance and send an ERC20 transfer, then follow it until it is
confirmed, sped up, cancelled or reverted.

Supported networks: Sepolia and Linea Sepolia.

Configuration lives in ~/.w3mvp (override with --config or W3MVP_CONFIG_DIR).
RPC endpoints can be added per chain with W3MVP_RPC_<CHAIN>, also read from a
.env file in the config dir or the working directory.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verbose)
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return cfg.LoadEnv()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		os.Exit(1)
	}
}

// setupLogging routes library logs to stderr: info by default, debug with
// --verbose.
func setupLogging(debug bool) {
	lvl := log.LevelInfo
	if debug {
		lvl = log.LevelDebug
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, lvl, true)))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $W3MVP_CONFIG_DIR or ~/.w3mvp)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "network to use (default: connected network, then config)")
	rootCmd.PersistentFlags().StringVarP(&walletFlag, "wallet", "w", "", "wallet to use (default: connected wallet, then default wallet)")

	// Register all sub-commands.
	rootCmd.AddCommand(
		connectCmd,
		disconnectCmd,
		accountCmd,
		networkCmd,
		walletCmd,
		signCmd,
		verifyCmd,
		readCmd,
		transferCmd,
		trackCmd,
		checksumCmd,
		faucetCmd,
	)
}
