// Package encoder defines the vision-language encoder capability consumed by
// the aesthetic-gradient pipeline, and a Provider that owns the process-wide
// encoder instance.
//
// # Overview
//
// The library never implements the pretrained encoder itself; the host
// application supplies one through a LoadFunc. A Capability bundles the three
// facets the pipeline needs:
//
//   - VisionEncoder: batches of encoded image bytes to embedding vectors
//   - TextTower: single-text encoding (used for rotation text) plus the
//     tower's fixed token window and output dimension
//   - Cloneable: producing an independently-optimizable working copy of the
//     text tower for per-request gradient alignment
//
// # Trainable clones
//
// CloneTextTower returns a TrainableTextTower whose parameters are private
// copies. The split of responsibilities during optimization is:
//
//   - the clone implements Forward (tokens to pooled, projected embeddings)
//     and Backward (gradient of the loss w.r.t. those outputs, propagated
//     into Parameter.Grad)
//   - the caller computes the loss gradient and steps the parameters
//
// A clone must never share parameter storage with its base tower: optimizing
// one request's clone cannot leak into another request or into the shared
// model. Release must be called on every exit path; it frees any accelerator
// or native resources the clone holds.
//
// # The Provider
//
// Provider is the explicitly-owned, lazily-initialized singleton for the
// shared base encoder. Acquire(ctx, modelID) loads the capability on first
// use and reloads only when the requested model identity differs from the
// currently loaded one. Model switching is a precondition check, not a side
// effect. Concurrent first loads are deduplicated with singleflight, and the
// stale capability is released after a switch.
//
//	provider := encoder.NewProvider(hostLoadFunc)
//	cap, err := provider.Acquire(ctx, "openai/clip-vit-large-patch14")
//	if errors.Is(err, encoder.ErrModelUnavailable) { ... }
//
// # Reference implementation
//
// The lineartower subpackage contains a small, dependency-free Capability
// with a real differentiable text tower. It backs the library's tests and is
// usable for local development without a model runtime.
package encoder
