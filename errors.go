package redcached

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/redcached/internal/wire"
)

var (
	// ErrWrongType matches every *WrongTypeError.
	ErrWrongType = errors.New("redcached: operation against a key holding the wrong kind of value")
	// ErrNotANumber matches every *NotANumberError.
	ErrNotANumber = errors.New("redcached: value is not a number or out of range")
	// ErrOperationFailed matches every *OperationError.
	ErrOperationFailed = errors.New("redcached: operation failed")
	ErrInvalidKey      = errors.New("redcached: key must not be empty")
	// ErrConflict is wrapped by the *OperationError returned when strict mode
	// keeps losing compare-and-set races.
	ErrConflict = errors.New("redcached: too many concurrent modifications")
)

// WrongTypeError reports a key whose stored type differs from the one the
// operation works on. Err is set when the stored bytes could not be decoded.
type WrongTypeError struct {
	Key  string
	Want Type
	Got  Type
	Err  error
}

func (e *WrongTypeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("redcached: key %q: cannot decode stored value as %s: %v", e.Key, e.Want, e.Err)
	}
	return fmt.Sprintf("redcached: key %q holds %s, operation needs %s", e.Key, e.Got, e.Want)
}

func (e *WrongTypeError) Is(target error) bool { return target == ErrWrongType }
func (e *WrongTypeError) Unwrap() error        { return e.Err }

// NotANumberError reports an increment whose target or delta is not of the
// required numeric kind. Field is empty for whole-key counters.
type NotANumberError struct {
	Key    string
	Field  string
	Reason string
}

func (e *NotANumberError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("redcached: key %q field %q: %s", e.Key, e.Field, e.Reason)
	}
	return fmt.Sprintf("redcached: key %q: %s", e.Key, e.Reason)
}

func (e *NotANumberError) Is(target error) bool { return target == ErrNotANumber }

// OperationError reports a write the backend did not accept. Err is the
// provider error, or nil when the provider refused the write (ok=false).
type OperationError struct {
	Op  string
	Key string
	Err error
}

func (e *OperationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("redcached: %s %q failed: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("redcached: %s %q failed: write rejected by provider", e.Op, e.Key)
}

func (e *OperationError) Is(target error) bool { return target == ErrOperationFailed }
func (e *OperationError) Unwrap() error        { return e.Err }

func notInteger(key, field string) error {
	return &NotANumberError{Key: key, Field: field, Reason: "value is not an integer or out of range"}
}

func notFloat(key, field string) error {
	return &NotANumberError{Key: key, Field: field, Reason: "value is not a valid float"}
}

// ErrCorrupt matches stored bytes that carry the envelope magic but do not
// decode. It is wrapped by the error Type returns and by *WrongTypeError.Err.
var ErrCorrupt = wire.ErrCorrupt
