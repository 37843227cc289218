package embeddingstore

import "go.uber.org/fx"

// FXModule wires the embedding store into Fx.
//
// It provides:
//   - Config     (NewConfig)
//   - *FSStore   (NewFSStore)
//   - Store      (the FSStore, as the default Store implementation)
//
// Hosts that want the MinIO-backed store instead can provide
// *ObjectStore themselves via NewObjectConfig and NewObjectStore and
// annotate it as the Store.
var FXModule = fx.Module("embeddingstore",
	fx.Provide(
		NewConfig,
		NewFSStore,
		func(s *FSStore) Store { return s },
	),
)
