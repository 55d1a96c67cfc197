package models

// FailureKind categorizes a transport-level login failure.
type FailureKind string

const (
	FailureTimeout    FailureKind = "timeout"
	FailureConnection FailureKind = "connection_error"
	FailureOther      FailureKind = "other"
)

// PanelResponse is the raw outcome of a completed HTTP login exchange.
type PanelResponse struct {
	StatusCode int
	Body       string
	// FinalURL is the URL after redirects were followed.
	FinalURL string
}

// TransportFailure describes a login attempt that never produced a
// classifiable response.
type TransportFailure struct {
	Kind   FailureKind
	Detail string
}

// LoginAttempt holds the result of a single HTTP login exchange: either a
// response or a transport failure, never both.
type LoginAttempt struct {
	Response *PanelResponse
	Failure  *TransportFailure
}

func (l *LoginAttempt) Failed() bool {
	return l.Failure != nil
}
