// Package encoding provides the generic APIs and errors shared by the
// parquet value and level codecs implemented in its sub-packages.
package encoding

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSupported is an error returned when an encoding does not support
	// the type of values being encoded or decoded.
	//
	// This error may be wrapped with type information, applications must use
	// errors.Is rather than equality comparisons to test the error values
	// returned by encoders and decoders.
	ErrNotSupported = errors.New("encoding not supported")

	// ErrInvalidArgument is an error returned when encoding or decoding is
	// attempted with arguments that the codec cannot honour, such as an
	// out-of-range bit width or a negative value length.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Errorf constructs an error prefixed with the encoding name.
func Errorf(encoding string, msg string, args ...interface{}) error {
	return fmt.Errorf(encoding+": "+msg, args...)
}
