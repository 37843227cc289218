package vecmath

import "errors"

// Common vector-math errors
var (
	// ErrDegenerateVector is returned when an operation requires a non-zero
	// vector but the input's L2 norm is (numerically) zero.
	ErrDegenerateVector = errors.New("vecmath: degenerate zero-norm vector")

	// ErrNotFinite is returned when a computation produced NaN or Inf.
	// Surfaces numerical instability instead of letting it propagate silently.
	ErrNotFinite = errors.New("vecmath: non-finite value")

	// ErrShapeMismatch is returned when operand dimensions disagree.
	ErrShapeMismatch = errors.New("vecmath: operand shapes do not match")
)

// IsDegenerateVector checks if the error is a zero-norm vector error.
func IsDegenerateVector(err error) bool {
	return errors.Is(err, ErrDegenerateVector)
}

// IsNotFinite checks if the error reports a non-finite value.
func IsNotFinite(err error) bool {
	return errors.Is(err, ErrNotFinite)
}
