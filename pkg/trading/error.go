package trading

import "github.com/pkg/errors"

// ErrorKind classifies every failure reported by the bridge and the merge engine
type ErrorKind uint8

const (
	ErrorUnknown ErrorKind = iota
	ErrorConnectionTimeout
	ErrorConnectionFailed
	ErrorOperationTimeout
	ErrorOperationFailed
	ErrorFieldApplyFailed
	ErrorInvalidArgument
)

func (e ErrorKind) Error() string {
	return errorMapping[e]
}

var errorMapping = map[ErrorKind]string{
	ErrorUnknown:           "unknown",
	ErrorConnectionTimeout: errorConnectionTimeout,
	ErrorConnectionFailed:  errorConnectionFailed,
	ErrorOperationTimeout:  errorOperationTimeout,
	ErrorOperationFailed:   errorOperationFailed,
	ErrorFieldApplyFailed:  errorFieldApplyFailed,
	ErrorInvalidArgument:   errorInvalidArgument,
}

const (
	errorConnectionTimeout = "connectionTimeout"
	errorConnectionFailed  = "connectionFailed"
	errorOperationTimeout  = "operationTimeout"
	errorOperationFailed   = "operationFailed"
	errorFieldApplyFailed  = "fieldApplyFailed"
	errorInvalidArgument   = "invalidArgument"
)

// SessionError is a bridge failure. Err is the carried cause for the
// *Failed kinds and nil for timeouts.
type SessionError struct {
	Kind ErrorKind
	Err  error
}

func (e *SessionError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *SessionError) Cause() error {
	return e.Err
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Is matches the error kind, so errors.Is(err, ErrorOperationTimeout) works
func (e *SessionError) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	return ok && kind == e.Kind
}

func newSessionError(kind ErrorKind, cause error) *SessionError {
	return &SessionError{Kind: kind, Err: cause}
}

// ErrorKindOf returns the kind of a bridge or merge failure
func ErrorKindOf(err error) ErrorKind {
	if err == nil {
		return ErrorUnknown
	}
	var sessionErr *SessionError
	if errors.As(err, &sessionErr) {
		return sessionErr.Kind
	}
	var kinded interface{ ErrorKind() ErrorKind }
	if errors.As(err, &kinded) {
		return kinded.ErrorKind()
	}
	var kind ErrorKind
	if errors.As(err, &kind) {
		return kind
	}
	return ErrorUnknown
}

func invalidArgument(message string) error {
	return errors.WithMessage(ErrorInvalidArgument, message)
}
