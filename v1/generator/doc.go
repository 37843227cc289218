// Package generator distills a folder of reference images into a single
// named aesthetic embedding.
//
// # Overview
//
// Generate enumerates the image files of a folder, pushes them through the
// vision encoder in batches, averages the per-image feature vectors, and
// persists the result in the embedding store under the requested name:
//
//	msg, err := gen.Generate(ctx, "style", "/data/refs", 8, flag)
//
// The returned message is human-readable and names the save location; the
// host surfaces it to the user.
//
// # Cancellation
//
// Generation is long-running, so it polls a host-provided InterruptFlag
// before each batch (between batches only, never mid-batch). An interrupt is
// not an error: the embedding is averaged from the batches completed so far
// and persisted normally, with the message noting the smaller sample. Only an
// interrupt before the first batch completes fails, since there is nothing to
// average.
//
// Note that interruption makes the result order-sensitive: the mean itself is
// order-independent, but a partial mean covers whichever files enumerate
// first. This is a known sensitivity, not something the generator corrects.
//
// # Accepted files
//
// Files are recognized by extension: png, jpg, jpeg, gif, tiff, webp
// (case-insensitive). A folder with no recognized files fails with
// ErrEmptyInput. Decoding is the vision encoder's concern; the generator
// hands it raw file bytes.
package generator
