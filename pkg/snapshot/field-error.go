package snapshot

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"gitlab.heather.loc/helios/venuelink/pkg/trading"
)

var fieldFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "snapshot_field_apply_failure_count",
	Help: "field changes which could not be applied",
}, []string{"message", "field"})

func init() {
	prometheus.MustRegister(fieldFailures)
}

// FieldError is a change that could not be applied. The batch it belongs to
// stops at this field, fields applied before it stay.
type FieldError struct {
	Message trading.MessageType
	Field   string
	Err     error
}

func (e *FieldError) Error() string {
	return "fail apply " + e.Message.String() + " field " + e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Cause() error {
	return e.Err
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Is matches trading.ErrorFieldApplyFailed
func (e *FieldError) Is(target error) bool {
	kind, ok := target.(trading.ErrorKind)
	return ok && kind == trading.ErrorFieldApplyFailed
}

func (e *FieldError) ErrorKind() trading.ErrorKind {
	return trading.ErrorFieldApplyFailed
}

func newFieldError(message trading.MessageType, field string, cause error) *FieldError {
	fieldFailures.WithLabelValues(message.String(), field).Inc()
	return &FieldError{Message: message, Field: field, Err: cause}
}

func invalidArgument(message string) error {
	return errors.WithMessage(trading.ErrorInvalidArgument, message)
}
