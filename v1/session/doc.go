// Package session holds the per-generation-request state of the
// aesthetic-gradient pipeline and exposes the single transform the host
// calls per prompt batch.
//
// # Request lifecycle
//
// The host configures a Session once per generation request and then calls
// Apply for each prompt batch of that request:
//
//	if err := sess.SetParams(ctx, session.Params{
//		Weight:        0.9,
//		Steps:         5,
//		LearningRate:  1e-4,
//		EmbeddingName: "style",
//		UseSlerp:      true,
//	}); err != nil { ... }
//
//	adjusted, err := sess.Apply(ctx, conditioning, tokens)
//
// Apply aligns the prompt's text embedding toward the configured aesthetic
// embedding and blends the result back into the host's baseline conditioning
// with slerp or lerp at the configured weight. The returned tensor always has
// the host's shape.
//
// # Fast path
//
// One guarded decision at the top of Apply short-circuits to the unchanged
// input: when the session is skipped, when Steps, LearningRate, or Weight is
// zero, or when no embedding is selected. SetSkip lets the host force the
// fast path for specific sub-passes (unconditional guidance branches) without
// disturbing the rest of the configuration.
//
// # Embedding loading
//
// The configured embedding is loaded lazily and re-loaded only when the
// configured name changes; the loaded vector is unit-normalized once at load
// time. A failed SetParams (unknown name) leaves the previous configuration
// in place.
//
// A Session is request-scoped state and is not safe for concurrent use.
package session
