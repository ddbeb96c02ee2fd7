package component

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports an argument that cannot be coerced to its attribute's kind.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound reports a single-row lookup that did not match exactly one row.
	ErrNotFound = errors.New("component state not found")
	// ErrMissingColumn reports a schema attribute with no matching table column.
	ErrMissingColumn = errors.New("missing column")
	// ErrNullValue reports a NULL stored in an attribute column.
	ErrNullValue = errors.New("unexpected NULL value")
)

// DecodeError tags a row decoding failure with the offending attribute.
type DecodeError struct {
	Attribute string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode attribute %s: %v", e.Attribute, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// InvalidArgumentError wraps ErrInvalidArgument with the argument name and cause.
func InvalidArgumentError(name string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w %q", ErrInvalidArgument, name)
	}
	return fmt.Errorf("%w %q: %v", ErrInvalidArgument, name, cause)
}
