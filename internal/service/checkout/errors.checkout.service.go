package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotOpen   = errors.New("checkout session is not open")
	ErrSessionNotFound  = errors.New("checkout session not found")
	ErrAlreadyOpen      = errors.New("checkout session already open")
	ErrTermsNotAccepted = errors.New("promise terms have not been accepted")
	ErrFlowNotReady     = errors.New("otp flow has not been started")
	ErrResendDisabled   = errors.New("resend is temporarily disabled")
	ErrInvalidDuration  = errors.New("invalid settlement duration")
	ErrReceiptNotFound  = errors.New("settlement receipt not found")
)

// ErrorKind classifies backend-call failures for display and reporting.
type ErrorKind string

const (
	KeyStatusLookupFailed ErrorKind = "key_status_lookup_failed"
	OtpRejected           ErrorKind = "otp_rejected"
	SettlementRejected    ErrorKind = "settlement_rejected"
	TransportError        ErrorKind = "transport_error"
)

// FlowError carries a normalized, displayable backend failure. It is stored
// on the session and returned to the caller; it never reaches the host as a
// panic.
type FlowError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *FlowError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("checkout flow error: %s", e.Kind)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}
