// Package vecmath implements the embedding-space vector operations shared by
// the aesthetic-gradient pipeline: L2 normalization, spherical and linear
// interpolation, cosine similarity, and batch averaging.
//
// # Overview
//
// All operations work on plain float32 slices in the encoder's embedding
// space. Three shapes appear throughout the library:
//
//   - Vector: a single embedding of dimension D
//   - Batch: [batch, D], one row per prompt or image
//   - Conditioning: [batch, seq, D], the host pipeline's prompt conditioning
//
// Accumulation happens in float64 to keep long sums stable, results are
// returned as float32 to match the encoder's native width.
//
// # Spherical interpolation
//
// Slerp interpolates along the great-circle arc between two vectors:
//
//	out := vecmath.Slerp(low, high, 0.3)
//
// The interpolation angle is computed from the normalized rows, but the raw
// (possibly unnormalized) rows are combined, so magnitude information in the
// inputs is preserved. Rows whose angle has a numerically vanishing sine
// (parallel or antiparallel vectors) fall back to linear interpolation for
// that row rather than dividing by ~0.
//
// # Error handling
//
// Degenerate inputs surface as sentinel errors rather than NaN results:
// ErrDegenerateVector for zero-norm normalization, ErrNotFinite when a
// computation produced NaN or Inf, ErrShapeMismatch when operand shapes
// disagree. Callers are expected to treat ErrNotFinite as numerical
// instability in the surrounding optimization, not as a recoverable state.
package vecmath
