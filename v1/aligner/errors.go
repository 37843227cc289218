package aligner

import "errors"

// Common aligner errors
var (
	// ErrEmptyBatch is returned when optimization is requested with no
	// tokens to align.
	ErrEmptyBatch = errors.New("aligner: empty token batch")

	// ErrNoTarget is returned when Align is called without a target
	// embedding.
	ErrNoTarget = errors.New("aligner: no target embedding")
)

// IsEmptyBatch checks if the error reports an empty token batch.
func IsEmptyBatch(err error) bool {
	return errors.Is(err, ErrEmptyBatch)
}
