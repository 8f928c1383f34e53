package mediatime

import "github.com/pkg/errors"

// ErrInvalidValue is the root cause of every error returned by this
// package: malformed strings, non-positive rates, negative lengths,
// splits outside a range, unions of non-contiguous ranges and
// iteration over a range unbounded on the traversal side. Callers can
// test for it with errors.Is regardless of the wrapping message.
//
// Numeric overflow and underflow are not errors; they saturate.
var ErrInvalidValue = errors.New("invalid value")

func invalidValue(msg string) error {
	return errors.Wrap(ErrInvalidValue, msg)
}

func invalidValuef(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidValue, format, args...)
}
