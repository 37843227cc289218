// Package aligner implements the per-request text-alignment engine: a short
// gradient-based optimization that pulls a prompt's text embedding toward a
// target aesthetic embedding.
//
// # Overview
//
// Align clones the encoder's text tower into a disposable working copy,
// attaches an Adam optimizer to the clone's parameters, and for a bounded
// number of steps maximizes the mean cosine similarity between the clone's
// normalized text embeddings and a fixed target vector. The target is never
// updated; only the clone's parameters move, and the clone is released on
// every exit path, so the shared base model cannot be mutated by a request.
//
// After the loop, one final forward pass extracts the per-position hidden
// states actually used for conditioning. StopAtLayers selects the extraction
// point: 1 means the last hidden state, k > 1 means the k-th-from-last
// layer's output followed by the tower's trailing layer normalization.
//
// # Rotation
//
// When rotation text is configured, its embedding shifts the optimization
// target before the loop: with a negative rotation the secondary vector is
// first replaced by normalize(target - secondary), then the target becomes
// slerp(target, secondary, angle). An empty rotation text leaves the stored
// embedding as the target.
//
// # Chunking
//
// Token rows longer than the tower's fixed window are split into fixed-length
// chunks. The optimization treats every chunk as its own row; the final
// hidden states are reassembled by concatenating each row's chunk outputs
// along the sequence axis in original order, so the returned conditioning
// matches the host's shape.
//
// # Failure modes
//
// ErrEmptyBatch when steps were requested with no tokens;
// encoder.ErrModelUnavailable when no tower can be cloned;
// vecmath.ErrNotFinite when the optimization produced NaN/Inf (including
// degenerate zero embeddings during normalization).
package aligner
