package generator

import "errors"

// Common generator errors
var (
	// ErrEmptyInput is returned when the folder contains no recognized
	// image files, or when an interrupt fired before any batch completed.
	ErrEmptyInput = errors.New("generator: no images to embed")
)

// IsEmptyInput checks if the error reports an empty image set.
func IsEmptyInput(err error) bool {
	return errors.Is(err, ErrEmptyInput)
}
