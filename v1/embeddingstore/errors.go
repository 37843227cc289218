package embeddingstore

import "errors"

// Common store errors
var (
	// ErrNotFound is returned when no embedding exists under the requested
	// name, or when the sentinel "none" is resolved.
	ErrNotFound = errors.New("embeddingstore: embedding not found")

	// ErrInvalidName is returned for names that cannot form a storage key
	// (empty, the sentinel, or containing path separators).
	ErrInvalidName = errors.New("embeddingstore: invalid embedding name")

	// ErrCorruptVector is returned when a persisted file's size is not a
	// whole number of float32 values.
	ErrCorruptVector = errors.New("embeddingstore: corrupt vector payload")
)

// IsNotFound checks if the error is an unknown-name error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
