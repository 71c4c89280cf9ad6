package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DemoMessage is the default sign-in message.
const DemoMessage = "Web3 Frontend MVP — sign-in demo (no gas)."

// ErrEmptyMessage is returned when asked to sign a blank message.
var ErrEmptyMessage = errors.New("message cannot be empty")

// SignMessage signs a message using EIP-191 (personal_sign).
// The message is prefixed with "\x19Ethereum Signed Message:\n<len>" before hashing.
// Returns a 65-byte signature (R || S || V) with V in {27, 28}.
func SignMessage(w *Wallet, ks KeystoreBackend, message []byte) ([]byte, error) {
	if strings.TrimSpace(string(message)) == "" {
		return nil, ErrEmptyMessage
	}

	privKey, err := privateKey(w, ks)
	if err != nil {
		return nil, err
	}

	sig, err := crypto.Sign(accounts.TextHash(message), privKey)
	if err != nil {
		return nil, fmt.Errorf("signing message: %w", err)
	}

	// Adjust V from 0/1 to 27/28 for Ethereum compatibility.
	sig[crypto.RecoveryIDOffset] += 27

	return sig, nil
}

// VerifyMessage recovers the signer address from an EIP-191 signature.
// Both 0/1 and 27/28 recovery ids are accepted.
func VerifyMessage(message, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: expected %d bytes, got %d", crypto.SignatureLength, len(sig))
	}

	recoverSig := make([]byte, crypto.SignatureLength)
	copy(recoverSig, sig)
	if recoverSig[crypto.RecoveryIDOffset] >= 27 {
		recoverSig[crypto.RecoveryIDOffset] -= 27
	}

	pubKey, err := crypto.SigToPub(accounts.TextHash(message), recoverSig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering signer: %w", err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}
