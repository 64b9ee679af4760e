package vector

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the single error kind reported for bad vector input.
// Match it with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError describes which precondition a call violated.
type ArgumentError struct {
	Op     string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Op == "" {
		return "vector: " + e.Reason
	}
	return fmt.Sprintf("vector: %s: %s", e.Op, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

// opDot is the Op reported by every dot product entry point, worked or not.
const opDot = "dot product"

func errNull(op string) error {
	return &ArgumentError{Op: op, Reason: "vectors cannot be null"}
}

func errLength(op string, a, b int) error {
	return &ArgumentError{
		Op:     op,
		Reason: fmt.Sprintf("vectors must have the same length: got %d and %d", a, b),
	}
}

func checkPair(op string, a, b int, aNil, bNil bool) error {
	if aNil || bNil {
		return errNull(op)
	}
	if a != b {
		return errLength(op, a, b)
	}
	return nil
}
