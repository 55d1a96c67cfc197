package models

// AccountState is the terminal classification of one account for one run.
type AccountState string

const (
	StateNormal      AccountState = "normal"
	StateBanned      AccountState = "banned"
	StateLoginFailed AccountState = "login_failed"
	StateError       AccountState = "error"
)

// Terminal reports whether the state is authoritative from the panel's side
// and must not be retried.
func (s AccountState) Terminal() bool {
	return s == StateNormal || s == StateBanned || s == StateLoginFailed
}

// AccountOutcome is the per-account result of a run.
type AccountOutcome struct {
	Account Account
	State   AccountState
	// Detail is a human-readable diagnostic: ban reason, account validity,
	// login error text, or the transport/classification failure.
	Detail string
	// Attempts is the number of login attempts actually made.
	Attempts int
}

// RunSummary aggregates outcomes of a full run, in account order.
type RunSummary struct {
	Outcomes []AccountOutcome
}

func (s *RunSummary) Append(o AccountOutcome) {
	s.Outcomes = append(s.Outcomes, o)
}

// Count returns the number of outcomes with the given state.
func (s *RunSummary) Count(state AccountState) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.State == state {
			n++
		}
	}
	return n
}

// ExitCode is 0 only when every account resolved to normal.
func (s *RunSummary) ExitCode() int {
	for _, o := range s.Outcomes {
		if o.State != StateNormal {
			return 1
		}
	}
	return 0
}
