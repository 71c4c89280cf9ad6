package web3err

import "regexp"

// Generic fallbacks, one per flow.
const (
	FallbackGeneric = "Something went wrong. Please try again."
	FallbackWrite   = "Transaction failed. Please try again."
	FallbackRead    = "Read failed. Please try again."
	FallbackSign    = "Signing failed. Please try again."
	FallbackSwitch  = "Switch failed. Please try again."
)

// Humanize renders any error for display.
func Humanize(err error) string {
	if err == nil {
		return FallbackGeneric
	}
	e := Classify(err)
	switch e.Kind {
	case UserRejected:
		return "User rejected the request in the wallet."
	case ExecutionReverted:
		return "Transaction reverted. Please check inputs and try again."
	case InsufficientFunds:
		return "Insufficient funds to pay for gas."
	}
	return orDefault(e.Msg, FallbackGeneric)
}

// HumanizeWrite renders a contract-write (submission) failure.
func HumanizeWrite(err error) string {
	if err == nil {
		return FallbackWrite
	}
	e := Classify(err)
	switch e.Kind {
	case UserRejected:
		return "User rejected the transaction in the wallet."
	case InsufficientFunds:
		return "Insufficient funds to pay for gas."
	case ExecutionReverted:
		return "Transaction reverted. Check token, amount, and recipient."
	case InvalidAddress:
		return "Invalid address."
	}
	return orDefault(e.Msg, FallbackWrite)
}

// HumanizeRead renders a contract-read failure.
func HumanizeRead(err error) string {
	if err == nil {
		return FallbackRead
	}
	e := Classify(err)
	switch e.Kind {
	case ExecutionReverted:
		return "Contract call reverted. Check token address and network."
	case DecodeFailed:
		return "This address may not be an ERC20 contract (ABI decode failed)."
	}
	return orDefault(e.Msg, FallbackRead)
}

// HumanizeSign renders a message-signing failure.
func HumanizeSign(err error) string {
	if err == nil {
		return FallbackSign
	}
	e := Classify(err)
	if e.Kind == UserRejected {
		return "User rejected signature."
	}
	return orDefault(e.Msg, FallbackSign)
}

// HumanizeSwitch renders a chain-switch failure.
func HumanizeSwitch(err error) string {
	if err == nil {
		return FallbackSwitch
	}
	e := Classify(err)
	switch e.Kind {
	case UserRejected:
		return "Request was rejected in your wallet."
	case UnsupportedByWallet:
		return "Your wallet does not support switching networks automatically. Please switch manually in your wallet."
	}
	return orDefault(e.Msg, FallbackSwitch)
}

var reNotFoundReceipt = regexp.MustCompile(`(?i)not found`)

// HumanizeReceipt renders a settlement failure reported while watching a
// transaction.
func HumanizeReceipt(err error) string {
	if err == nil {
		return FallbackWrite
	}
	e := Classify(err)
	switch {
	case e.Kind == ExecutionReverted:
		return "Transaction reverted on-chain."
	case e.Kind == ReplacementCancelled:
		return "Transaction was cancelled (replaced by a cancellation transaction)."
	case e.Kind == NotFound || reNotFoundReceipt.MatchString(e.Msg):
		return "Transaction not found yet. Explorer may be lagging."
	}
	return orDefault(e.Msg, FallbackWrite)
}

func orDefault(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}
