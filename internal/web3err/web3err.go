// Package web3err classifies failures reported by wallets, RPC nodes and
// local validation into a small taxonomy and turns them into short,
// human-readable notices.
package web3err

import (
	"errors"
	"regexp"
	"strings"
)

// Kind is a coarse failure class.
type Kind int

const (
	Unknown Kind = iota
	InvalidAddress
	InvalidAmount
	UserRejected
	InsufficientFunds
	ExecutionReverted
	DecodeFailed
	UnsupportedByWallet
	ReplacementCancelled
	NotFound
)

var kindNames = map[Kind]string{
	Unknown:              "Unknown",
	InvalidAddress:       "InvalidAddress",
	InvalidAmount:        "InvalidAmount",
	UserRejected:         "UserRejected",
	InsufficientFunds:    "InsufficientFunds",
	ExecutionReverted:    "ExecutionReverted",
	DecodeFailed:         "DecodeFailed",
	UnsupportedByWallet:  "UnsupportedByWallet",
	ReplacementCancelled: "ReplacementCancelled",
	NotFound:             "NotFound",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Error is a classified failure. Msg is the raw message as reported by the
// collaborator that failed; Err is the underlying cause, if any.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// New returns a classified error with a raw message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap classifies err under kind, keeping err as the cause.
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: err.Error(), Err: err}
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind alone: errors.Is(err, web3err.New(UserRejected, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of err, classifying unclassified errors by text.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	return Classify(err).Kind
}

var (
	reRejected     = regexp.MustCompile(`(?i)rejected|user denied`)
	reReverted     = regexp.MustCompile(`(?i)revert`)
	reInsufficient = regexp.MustCompile(`(?i)insufficient funds`)
	reDecode       = regexp.MustCompile(`(?i)could not decode|abi: |unmarshal|improperly formatted output|no contract code`)
	reUnsupported  = regexp.MustCompile(`(?i)not supported|does not support`)
	reNotFound     = regexp.MustCompile(`(?i)not found`)
	reInvalidAddr  = regexp.MustCompile(`(?i)invalid address`)
)

// Classify maps err onto the taxonomy. An error that is already an *Error
// (anywhere in its chain) is returned as is; everything else is matched on
// its message. Matching is best-effort: the wording belongs to the node or
// wallet that produced the error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	msg := err.Error()
	kind := Unknown
	switch {
	case strings.Contains(strings.ToLower(typeName(err)), "userrejected") || reRejected.MatchString(msg):
		kind = UserRejected
	case reInsufficient.MatchString(msg):
		kind = InsufficientFunds
	case reReverted.MatchString(msg):
		kind = ExecutionReverted
	case reDecode.MatchString(msg):
		kind = DecodeFailed
	case reUnsupported.MatchString(msg):
		kind = UnsupportedByWallet
	case reInvalidAddr.MatchString(msg):
		kind = InvalidAddress
	case reNotFound.MatchString(msg):
		kind = NotFound
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// namer is implemented by errors that carry a wallet-style error name.
type namer interface{ Name() string }

func typeName(err error) string {
	var n namer
	if errors.As(err, &n) {
		return n.Name()
	}
	return ""
}
