package embeddingstore

import (
	"context"

	"github.com/stablecanvas/aesthetic/v1/vecmath"
)

// SentinelNone is the reserved name meaning "no embedding selected". It is
// always listed first and never resolves to a vector.
const SentinelNone = "none"

// Store is the named-embedding persistence contract.
type Store interface {
	// Names returns the known embedding names: SentinelNone first, the rest
	// alphabetical. Reflects the index as of the last Refresh.
	Names() []string

	// Resolve loads the vector stored under name.
	// Returns ErrNotFound for unknown names and for SentinelNone.
	Resolve(ctx context.Context, name string) (vecmath.Vector, error)

	// Register persists vec under name, silently overwriting an existing
	// entry, and refreshes the index. Returns the storage location.
	Register(ctx context.Context, name string, vec vecmath.Vector) (string, error)

	// Refresh rescans the backing storage and atomically swaps in the
	// rebuilt index.
	Refresh(ctx context.Context) error
}
