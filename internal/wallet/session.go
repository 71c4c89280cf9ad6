package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

// ChainIDReader reports the chain an RPC endpoint serves.
type ChainIDReader interface {
	ChainID(ctx context.Context) (int64, error)
}

// Session is the connected-wallet view the rest of the app reads from.
type Session struct {
	Wallet    *Wallet
	Address   common.Address
	Connected bool
	ChainID   int64
	// Chain is nil when ChainID is not a supported network.
	Chain *chain.Chain
}

// Connect binds w to the chain served by client. An unsupported chain ID is
// not an error: the session is connected with a nil Chain.
func Connect(ctx context.Context, w *Wallet, client ChainIDReader, registry *chain.Registry) (*Session, error) {
	if w == nil {
		return &Session{}, nil
	}
	id, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying chain id: %w", err)
	}
	s := &Session{
		Wallet:    w,
		Address:   w.Account(),
		Connected: true,
		ChainID:   id,
	}
	if c, err := registry.GetByChainID(id); err == nil {
		s.Chain = c
	} else {
		log.Warn("Connected to unsupported chain", "chainID", id)
	}
	return s, nil
}

// Supported reports whether the session is on a known network.
func (s *Session) Supported() bool { return s.Chain != nil }

// ConfirmFunc asks the user to approve a prompt.
type ConfirmFunc func(prompt string) bool

// SwitchChain moves the session to target after the user approves. It fails
// with UserRejected when the prompt is declined and UnsupportedByWallet when
// the target has no RPC endpoint to switch to.
func (s *Session) SwitchChain(target *chain.Chain, confirm ConfirmFunc) error {
	if target == nil || len(target.RPCs) == 0 {
		return web3err.New(web3err.UnsupportedByWallet, "network switching not supported for this chain")
	}
	if s.Chain != nil && s.Chain.ChainID == target.ChainID {
		return nil
	}
	if confirm != nil && !confirm(fmt.Sprintf("Switch to %s?", target.DisplayName)) {
		return web3err.New(web3err.UserRejected, "user rejected the request")
	}
	s.Chain = target
	s.ChainID = target.ChainID
	return nil
}

// --- persisted connection ---

// SessionState is what survives between invocations: the connected wallet
// and the network it was last switched to.
type SessionState struct {
	Wallet  string `json:"wallet,omitempty"`
	Network string `json:"network,omitempty"`
}

// sessionFilePath returns the session file inside dir.
func sessionFilePath(dir string) string {
	return filepath.Join(dir, "session.json")
}

// LoadSession reads the persisted session. A missing or unreadable file
// yields an empty state.
func LoadSession(dir string) SessionState {
	var st SessionState
	data, err := os.ReadFile(sessionFilePath(dir))
	if err != nil {
		return st
	}
	if err := json.Unmarshal(data, &st); err != nil {
		log.Debug("Ignoring corrupt session file", "err", err)
		return SessionState{}
	}
	return st
}

// SaveSession writes the session with owner-only permissions.
func SaveSession(dir string, st SessionState) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(sessionFilePath(dir), data, 0o600)
}

// ClearSession disconnects by deleting the session file.
func ClearSession(dir string) error {
	err := os.Remove(sessionFilePath(dir))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
