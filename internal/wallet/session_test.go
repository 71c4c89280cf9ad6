package wallet

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

type fixedChainID struct {
	id  int64
	err error
}

func (f fixedChainID) ChainID(context.Context) (int64, error) { return f.id, f.err }

func watchWallet() *Wallet {
	return &Wallet{Name: "me", Address: testSignerAddr, Type: TypeWatchOnly}
}

// ---------------------------------------------------------------------------
// Connect
// ---------------------------------------------------------------------------

func TestConnectSupportedChain(t *testing.T) {
	s, err := Connect(context.Background(), watchWallet(), fixedChainID{id: 11155111}, chain.NewRegistry())
	require.NoError(t, err)
	assert.True(t, s.Connected)
	assert.True(t, s.Supported())
	assert.Equal(t, "sepolia", s.Chain.Name)
	assert.Equal(t, testSignerAddr, s.Address.Hex())
}

func TestConnectUnsupportedChain(t *testing.T) {
	s, err := Connect(context.Background(), watchWallet(), fixedChainID{id: 1}, chain.NewRegistry())
	require.NoError(t, err)
	assert.True(t, s.Connected)
	assert.False(t, s.Supported())
	assert.Nil(t, s.Chain)
	assert.Equal(t, int64(1), s.ChainID)
}

func TestConnectWithoutWallet(t *testing.T) {
	s, err := Connect(context.Background(), nil, fixedChainID{id: 1}, chain.NewRegistry())
	require.NoError(t, err)
	assert.False(t, s.Connected)
}

func TestConnectRPCFailure(t *testing.T) {
	_, err := Connect(context.Background(), watchWallet(), fixedChainID{err: errors.New("dial tcp: refused")}, chain.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying chain id")
}

// ---------------------------------------------------------------------------
// SwitchChain
// ---------------------------------------------------------------------------

func connectedTo(t *testing.T, id int64) *Session {
	t.Helper()
	s, err := Connect(context.Background(), watchWallet(), fixedChainID{id: id}, chain.NewRegistry())
	require.NoError(t, err)
	return s
}

func TestSwitchChainApproved(t *testing.T) {
	s := connectedTo(t, 11155111)
	linea, err := chain.NewRegistry().GetByName("linea-sepolia")
	require.NoError(t, err)

	var prompt string
	err = s.SwitchChain(linea, func(p string) bool { prompt = p; return true })
	require.NoError(t, err)
	assert.Equal(t, int64(59141), s.ChainID)
	assert.Equal(t, "linea-sepolia", s.Chain.Name)
	assert.Contains(t, prompt, linea.DisplayName)
}

func TestSwitchChainRejected(t *testing.T) {
	s := connectedTo(t, 11155111)
	linea, _ := chain.NewRegistry().GetByName("linea-sepolia")

	err := s.SwitchChain(linea, func(string) bool { return false })
	require.Error(t, err)
	assert.Equal(t, web3err.UserRejected, web3err.KindOf(err))
	assert.Equal(t, "Request was rejected in your wallet.", web3err.HumanizeSwitch(err))
	assert.Equal(t, int64(11155111), s.ChainID, "rejected switch leaves the session untouched")
}

func TestSwitchChainUnsupported(t *testing.T) {
	s := connectedTo(t, 11155111)

	err := s.SwitchChain(&chain.Chain{Name: "nowhere", ChainID: 4242}, func(string) bool { return true })
	require.Error(t, err)
	assert.Equal(t, web3err.UnsupportedByWallet, web3err.KindOf(err))
	assert.Contains(t, web3err.HumanizeSwitch(err), "does not support switching networks")

	err = s.SwitchChain(nil, nil)
	assert.Equal(t, web3err.UnsupportedByWallet, web3err.KindOf(err))
}

func TestSwitchChainSameChainIsNoop(t *testing.T) {
	s := connectedTo(t, 11155111)
	sepolia, _ := chain.NewRegistry().GetByName("sepolia")

	asked := false
	require.NoError(t, s.SwitchChain(sepolia, func(string) bool { asked = true; return false }))
	assert.False(t, asked)
}

func TestSwitchChainFromUnsupported(t *testing.T) {
	s := connectedTo(t, 1)
	sepolia, _ := chain.NewRegistry().GetByName("sepolia")

	require.NoError(t, s.SwitchChain(sepolia, func(string) bool { return true }))
	assert.True(t, s.Supported())
}

// ---------------------------------------------------------------------------
// Persisted session
// ---------------------------------------------------------------------------

func TestLoadSessionMissing(t *testing.T) {
	assert.Equal(t, SessionState{}, LoadSession(t.TempDir()))
}

func TestSaveAndLoadSession(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveSession(dir, SessionState{Wallet: "me", Network: "linea-sepolia"}))

	st := LoadSession(dir)
	assert.Equal(t, "me", st.Wallet)
	assert.Equal(t, "linea-sepolia", st.Network)
}

func TestSaveSessionPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")
	require.NoError(t, SaveSession(dir, SessionState{Wallet: "me"}))

	info, err := os.Stat(sessionFilePath(dir))
	require.NoError(t, err)
	if info.Mode().Perm() != 0 { // Unix only
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestLoadSessionCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(sessionFilePath(dir), []byte("{nope"), 0o600))
	assert.Equal(t, SessionState{}, LoadSession(dir))
}

func TestClearSession(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveSession(dir, SessionState{Wallet: "me"}))
	require.NoError(t, ClearSession(dir))
	assert.Equal(t, SessionState{}, LoadSession(dir))

	assert.NoError(t, ClearSession(dir), "clearing twice is not an error")
}
