// Package core defines the domain types shared by the sshd transport
// and the middleware chain: the Session façade, the event and session
// kind unions, the authentication configuration, the Handler and
// Middleware contracts, and the error taxonomy that Session I/O and
// the sshd Server return.
package core

import "errors"

// Code classifies a DomainError into one of the categories a caller
// can usefully branch on.
type Code int

const (
	// CodeTransport covers failures reported by the underlying SSH
	// transport (golang.org/x/crypto/ssh): channel writes, signals,
	// window changes, and the like.
	CodeTransport Code = iota
	// CodeKeyMaterial covers host key loading, parsing, or derivation
	// failures.
	CodeKeyMaterial
	// CodeIO covers local filesystem or network I/O failures not
	// already wrapped by CodeTransport (banner files, host key files).
	CodeIO
	// CodeProtocol covers SSH requests that arrive in a state the
	// channel state machine does not expect (e.g. exec before the
	// channel is open).
	CodeProtocol
	// CodeConfig covers misconfigured servers: missing bind address,
	// missing host keys, missing app handler.
	CodeConfig
	// CodeNumeric covers integer conversions between the transport's
	// wire types and Go's native types (e.g. window sizes).
	CodeNumeric
)

func (c Code) String() string {
	switch c {
	case CodeTransport:
		return "transport"
	case CodeKeyMaterial:
		return "key_material"
	case CodeIO:
		return "io"
	case CodeProtocol:
		return "protocol"
	case CodeConfig:
		return "config"
	case CodeNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// DomainError unifies the error taxonomy of this module. Session
// writes and finalization and the sshd Server's configuration,
// listen/accept and host-key/banner file failures return a
// *DomainError. Session.IntoChannel and the hostkey and config
// packages return plain errors (wrapped with fmt.Errorf) that carry
// no DomainError.
type DomainError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Code.String() + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Code.String() + ": " + e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewError constructs a DomainError with no wrapped cause.
func NewError(code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WrapError constructs a DomainError wrapping cause.
func WrapError(code Code, message string, cause error) *DomainError {
	return &DomainError{Code: code, Message: message, Cause: cause}
}

// Sentinel errors for common configuration and protocol failures.
// Callers should use errors.Is against these rather than comparing
// DomainError.Message strings.
var (
	ErrNoChannel       = NewError(CodeProtocol, "no channel available for this request")
	ErrNoBindAddress   = NewError(CodeConfig, "no bind address specified")
	ErrNoHostKeys      = NewError(CodeConfig, "no host keys specified")
	ErrNoHandler       = NewError(CodeConfig, "no app handler specified")
	ErrSessionFinished = NewError(CodeProtocol, "session has already exited")
)

// Is allows errors.Is(err, ErrNoChannel) style comparisons to match
// any DomainError with the same code and message, not just the exact
// sentinel pointer.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

var _ error = (*DomainError)(nil)

// IsDomainError uses errors.As to recover the DomainError from a
// wrapped chain.
func IsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}
