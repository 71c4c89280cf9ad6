package txflow

import (
	"sync"

	"github.com/Mohsinsiddi/w3mvp/internal/token"
)

// Notice messages shared by the write flow.
const (
	MsgLoadTokenFirst     = "Load a token address first."
	MsgRecipientInvalid   = "Recipient address is invalid."
	MsgAmountNotPositive  = "Amount must be greater than 0."
	MsgUnsupportedNetwork = "Unsupported network."
	MsgSubmitted          = "Transaction submitted."
	MsgInvalidToken       = "Invalid token address."
	MsgNoDemoToken        = "No demo token configured for the current network."
)

// NoticeKind tags a notice.
type NoticeKind int

const (
	NoticeError NoticeKind = iota
	NoticeSuccess
)

func (k NoticeKind) String() string {
	if k == NoticeSuccess {
		return "success"
	}
	return "error"
}

// Notice is the single transient message shown after a user action.
type Notice struct {
	Kind NoticeKind
	Text string
}

// ErrorNotice builds an error notice.
func ErrorNotice(text string) Notice { return Notice{Kind: NoticeError, Text: text} }

// SuccessNotice builds a success notice.
func SuccessNotice(text string) Notice { return Notice{Kind: NoticeSuccess, Text: text} }

// Form owns all per-submission state: the loaded token, the current notice,
// the in-flight flag and the tracked transfer. Every user action that could
// invalidate that state resets it first.
type Form struct {
	mu       sync.Mutex
	token    *token.Address
	notice   *Notice
	awaiting bool
	tracker  *Tracker
}

// NewForm returns an empty form.
func NewForm() *Form { return &Form{} }

// LoadToken validates addr and makes it the token to transfer. Any previous
// notice and tracked record are discarded whether or not addr is valid.
func (f *Form) LoadToken(addr string) (token.Address, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
	a, err := token.ValidateAddress(addr)
	if err != nil {
		f.token = nil
		f.setNoticeLocked(ErrorNotice(MsgInvalidToken))
		return token.Address{}, false
	}
	f.token = &a
	return a, true
}

// LoadDemoToken loads the demo token for the current network, if any.
func (f *Form) LoadDemoToken(demo string) (token.Address, bool) {
	if demo == "" {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.resetLocked()
		f.setNoticeLocked(ErrorNotice(MsgNoDemoToken))
		return token.Address{}, false
	}
	return f.LoadToken(demo)
}

// Token returns the loaded token, if any.
func (f *Form) Token() (token.Address, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == nil {
		return token.Address{}, false
	}
	return *f.token, true
}

// Clear unloads the token and discards notice and record.
func (f *Form) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = nil
	f.resetLocked()
}

// Notice returns the current notice, if any.
func (f *Form) Notice() (Notice, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notice == nil {
		return Notice{}, false
	}
	return *f.notice, true
}

// SetNotice replaces the current notice.
func (f *Form) SetNotice(n Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setNoticeLocked(n)
}

// Tracker returns the tracker of the current submission, or nil.
func (f *Form) Tracker() *Tracker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tracker
}

// Awaiting reports whether a submission is waiting on the wallet.
func (f *Form) Awaiting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.awaiting
}

// begin marks a submission in flight after resetting prior state. It fails
// if another submission is already in flight.
func (f *Form) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.awaiting {
		return false
	}
	f.resetLocked()
	f.awaiting = true
	return true
}

func (f *Form) finish(n Notice, t *Tracker) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.awaiting = false
	f.setNoticeLocked(n)
	f.tracker = t
}

func (f *Form) resetLocked() {
	f.notice = nil
	f.tracker = nil
}

func (f *Form) setNoticeLocked(n Notice) {
	f.notice = &n
}
