package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

// Signer signs EVM transactions for a signing wallet.
type Signer struct {
	wallet *Wallet
	ks     KeystoreBackend
}

// NewSigner creates a signer for the given wallet.
func NewSigner(w *Wallet, ks KeystoreBackend) *Signer {
	return &Signer{wallet: w, ks: ks}
}

// SignTx signs an EVM transaction and returns the raw signed bytes.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	privKey, err := privateKey(s.wallet, s.ks)
	if err != nil {
		return nil, err
	}

	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), privKey)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshaling signed tx: %w", err)
	}

	return raw, nil
}

// Address returns the wallet's address.
func (s *Signer) Address() common.Address {
	return s.wallet.Account()
}

// ApprovingSigner asks for approval before every signature, the way a
// browser wallet pops up a confirmation. A declined prompt is a UserRejected
// error.
type ApprovingSigner struct {
	*Signer
	Confirm ConfirmFunc
}

// SignTx asks Confirm, then signs.
func (a *ApprovingSigner) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	if a.Confirm != nil && !a.Confirm(DescribeTx(tx)) {
		return nil, web3err.New(web3err.UserRejected, "user rejected the transaction")
	}
	return a.Signer.SignTx(tx, chainID)
}

// DescribeTx renders the approval prompt for tx.
func DescribeTx(tx *types.Transaction) string {
	to := "contract creation"
	if tx.To() != nil {
		to = tx.To().Hex()
	}
	return fmt.Sprintf("Sign %s to %s (nonce %d, gas %d, max fee %s gwei)?",
		chain.DecodeMethod(hexutil.Encode(tx.Data())), to, tx.Nonce(), tx.Gas(),
		chain.FormatFixed(tx.GasFeeCap(), 9, 2))
}

// privateKey loads w's key and checks it still derives w's address.
func privateKey(w *Wallet, ks KeystoreBackend) (*ecdsa.PrivateKey, error) {
	if !w.CanSign() {
		return nil, fmt.Errorf("wallet %q is watch-only and cannot sign", w.Name)
	}

	hexKey, err := ks.Retrieve(w.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}

	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	if got := crypto.PubkeyToAddress(privKey.PublicKey); got != w.Account() {
		return nil, fmt.Errorf("stored key for %q derives %s, not %s", w.Name, got.Hex(), w.Address)
	}
	return privKey, nil
}
