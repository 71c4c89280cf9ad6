package token

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"

	"github.com/Mohsinsiddi/w3mvp/internal/web3err"
)

// Decimals is the fixed-point precision assumed for user-entered amounts.
const Decimals = 18

var reAddress = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ErrNonPositive is the cause of an InvalidAmount error for zero or
// negative input, as opposed to input that is not a number at all.
var ErrNonPositive = errors.New("must be greater than 0")

// Address is a syntactically valid EVM address.
type Address struct {
	common.Address
	// ChecksumOK is false when the input was mixed-case and did not match its
	// EIP-55 checksum. Such input is still accepted.
	ChecksumOK bool
}

// ValidateAddress checks that s is "0x" followed by exactly 40 hex digits.
func ValidateAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !reAddress.MatchString(s) {
		return Address{}, web3err.New(web3err.InvalidAddress, fmt.Sprintf("invalid address: %q", s))
	}
	return Address{
		Address:    common.HexToAddress(s),
		ChecksumOK: checksumMatches(s[2:]),
	}, nil
}

// IsAddress reports whether s would pass ValidateAddress.
func IsAddress(s string) bool {
	return reAddress.MatchString(strings.TrimSpace(s))
}

// ParseAmount converts a positive decimal string into an integer with
// Decimals fractional digits: "1.5" becomes 1500000000000000000.
func ParseAmount(s string) (*big.Int, error) {
	return ParseUnits(s, Decimals)
}

// ParseUnits converts a positive decimal string into an integer with the
// given number of fractional digits. More fractional digits than decimals is
// rejected rather than rounded.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	invalid := func(reason string) error {
		return web3err.New(web3err.InvalidAmount, fmt.Sprintf("invalid amount %q: %s", s, reason))
	}
	nonPositive := &web3err.Error{
		Kind: web3err.InvalidAmount,
		Msg:  fmt.Sprintf("invalid amount %q: %v", s, ErrNonPositive),
		Err:  ErrNonPositive,
	}
	if s == "" {
		return nil, invalid("empty")
	}
	if rest, neg := strings.CutPrefix(s, "-"); neg && !strings.HasPrefix(rest, "-") {
		if _, err := ParseUnits(rest, decimals); err == nil || errors.Is(err, ErrNonPositive) {
			return nil, nonPositive
		}
		return nil, invalid("not a number")
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if hasDot && frac == "" && whole == "" {
		return nil, invalid("not a number")
	}
	if !isDigits(whole) || !isDigits(frac) {
		return nil, invalid("not a number")
	}
	if len(frac) > decimals {
		return nil, invalid(fmt.Sprintf("more than %d decimal places", decimals))
	}

	digits := strings.TrimLeft(whole+frac+strings.Repeat("0", decimals-len(frac)), "0")
	if digits == "" {
		return nil, nonPositive
	}
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, invalid("not a number")
	}
	return n, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Transfer is a validated ERC20 transfer request.
type Transfer struct {
	Token     Address
	Recipient Address
	Amount    *big.Int
}

// ValidateTransfer validates all three user inputs of a transfer. The first
// failing input determines the error.
func ValidateTransfer(tokenAddr, recipient, amount string) (Transfer, error) {
	tok, err := ValidateAddress(tokenAddr)
	if err != nil {
		return Transfer{}, err
	}
	to, err := ValidateAddress(recipient)
	if err != nil {
		return Transfer{}, err
	}
	amt, err := ParseAmount(amount)
	if err != nil {
		return Transfer{}, err
	}
	return Transfer{Token: tok, Recipient: to, Amount: amt}, nil
}

// ToChecksum returns the EIP-55 form of a 40 hex digit address body.
func ToChecksum(body string) string {
	lower := strings.ToLower(strings.TrimPrefix(body, "0x"))

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	hash := hex.EncodeToString(h.Sum(nil))

	var out strings.Builder
	out.WriteString("0x")
	for i, c := range lower {
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			out.WriteByte(byte(c - 32))
		} else {
			out.WriteByte(byte(c))
		}
	}
	return out.String()
}

// checksumMatches reports whether body carries a valid EIP-55 checksum.
// Single-case input carries no checksum and always matches.
func checksumMatches(body string) bool {
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return "0x"+body == ToChecksum(body)
}
