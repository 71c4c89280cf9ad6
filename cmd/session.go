package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
	"github.com/Mohsinsiddi/w3mvp/internal/config"
	"github.com/Mohsinsiddi/w3mvp/internal/rpc"
	"github.com/Mohsinsiddi/w3mvp/internal/ui"
	"github.com/Mohsinsiddi/w3mvp/internal/wallet"
)

// Guard notices.
const (
	msgNotConnected = "Not connected. Run `w3mvp connect` or add a wallet with `w3mvp wallet add`."
	msgWrongNetwork = "Wrong network. Run `w3mvp network switch` to pick a supported one."
)

// errGuarded stops a command after a guard notice was printed. It is not a
// failure of the command itself.
var errGuarded = errors.New("guarded")

// silenceGuard maps errGuarded to a clean exit.
func silenceGuard(err error) error {
	if errors.Is(err, errGuarded) {
		return nil
	}
	return err
}

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(cfg.KeysDir())),
	)
}

// selectedNetwork resolves --network, then the connected network, then the
// configured default.
func selectedNetwork(reg *chain.Registry) (*chain.Chain, error) {
	name := networkFlag
	if name == "" {
		name = wallet.LoadSession(cfg.Dir()).Network
	}
	if name == "" {
		name = cfg.DefaultNetwork
	}
	c, err := reg.GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown network %q: run `w3mvp network` to see supported networks", name)
	}
	return c, nil
}

// selectedWallet resolves --wallet, then the connected wallet, then the
// configured and finally the marked default wallet. ErrNoWallet means
// nothing is connected.
func selectedWallet(mgr *wallet.Manager) (*wallet.Wallet, error) {
	name := walletFlag
	if name == "" {
		name = wallet.LoadSession(cfg.Dir()).Wallet
	}
	if name == "" {
		name = cfg.DefaultWallet
	}
	return mgr.Resolve(name)
}

// dial selects an RPC endpoint for c using the configured algorithm. URLs
// pinned in the environment replace every other candidate.
func dial(ctx context.Context, c *chain.Chain) (*chain.EVMClient, error) {
	ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	if pinned := config.EnvRPCs(c.Name); len(pinned) > 0 {
		return rpc.DialURLs(ctx, c.DisplayName, pinned, cfg.RPCAlgorithm)
	}
	return rpc.Dial(ctx, c, cfg.GetRPCs(c.Name), cfg.RPCAlgorithm)
}

// web3 is everything a command that talks to the chain needs.
type web3 struct {
	reg     *chain.Registry
	mgr     *wallet.Manager
	session *wallet.Session
	client  *chain.EVMClient
}

// connectWeb3 resolves wallet and network and connects. When no wallet is
// available or the endpoint serves an unsupported chain it prints the guard
// notice and returns errGuarded.
func connectWeb3(ctx context.Context, out io.Writer) (*web3, error) {
	reg := chain.NewRegistry()
	mgr := newWalletManager()

	w, err := selectedWallet(mgr)
	if errors.Is(err, wallet.ErrNoWallet) {
		fmt.Fprintln(out, ui.Err(msgNotConnected))
		return nil, errGuarded
	}
	if err != nil {
		return nil, err
	}

	c, err := selectedNetwork(reg)
	if err != nil {
		return nil, err
	}
	client, err := dial(ctx, c)
	if err != nil {
		return nil, err
	}
	s, err := wallet.Connect(ctx, w, client, reg)
	if err != nil {
		return nil, err
	}
	if !s.Supported() {
		fmt.Fprintln(out, ui.Err(msgWrongNetwork))
		fmt.Fprintln(out, ui.Hint(fmt.Sprintf("%s serves chain %d", client.URL(), s.ChainID)))
		return nil, errGuarded
	}
	return &web3{reg: reg, mgr: mgr, session: s, client: client}, nil
}

// guarded wraps a RunE that needs a connected session.
func guarded(run func(cmd *cobra.Command, args []string, w3 *web3) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		w3, err := connectWeb3(cmd.Context(), cmd.OutOrStdout())
		if err != nil {
			return silenceGuard(err)
		}
		return run(cmd, args, w3)
	}
}
