package encoder

import "errors"

// Common encoder errors
var (
	// ErrModelUnavailable is returned when the encoder or its tokenizer
	// cannot be loaded, or when no loader has been configured.
	ErrModelUnavailable = errors.New("encoder: model unavailable")
)

// IsModelUnavailable checks if the error reports a missing or unloadable model.
func IsModelUnavailable(err error) bool {
	return errors.Is(err, ErrModelUnavailable)
}
