// Package embeddingstore persists named aesthetic embeddings and serves them
// back to generation sessions.
//
// # Overview
//
// A store is a flat name-to-vector mapping. Vectors are written by the
// generator (one averaged embedding per reference image set) and read by
// sessions configuring a request. Two implementations share the Store
// contract:
//
//   - FSStore: one <name>.emb file per embedding in a local directory
//   - ObjectStore: the same layout under a key prefix in a MinIO/S3 bucket,
//     for sharing embeddings across hosts
//
// # Persisted format
//
// An embedding file is the raw little-endian float32 values of a single
// [1, D] tensor. There is no header or version field; compatibility is
// positional: the dimension must match the active encoder's output width.
// Vectors are stored as produced (not normalized); normalization happens at
// load time in the consumer.
//
// # Listing semantics
//
// Names() always returns the sentinel "none" first, then the stored names in
// alphabetical order. "none" never resolves; sessions use it to mean "no
// embedding selected". The in-memory index reflects the last Refresh (or the
// last Register, which refreshes implicitly); staleness in between is
// acceptable and resolved by calling Refresh. Refresh rebuilds the index
// wholesale and swaps it in atomically, so a concurrent reader sees either
// the old snapshot or the new one, never a partial index.
//
// # Dependency Injection (Fx)
//
// The fx module provides the filesystem store as the default Store:
//
//	app := fx.New(
//		embeddingstore.FXModule,
//		fx.Invoke(func(store embeddingstore.Store) { ... }),
//	)
package embeddingstore
