package embeddingstore

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/stablecanvas/aesthetic/v1/vecmath"
)

// Extension is the file/object suffix for persisted embeddings.
const Extension = ".emb"

// EncodeVector serializes a vector as raw little-endian float32 values.
// No header, no version; compatibility is positional.
func EncodeVector(v vecmath.Vector) []byte {
	out := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(x))
	}
	return out
}

// DecodeVector deserializes an embedding payload.
// Returns ErrCorruptVector if the payload is empty or not a whole number of
// float32 values.
func DecodeVector(data []byte) (vecmath.Vector, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("%d bytes: %w", len(data), ErrCorruptVector)
	}
	out := make(vecmath.Vector, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return out, nil
}

// validateName rejects names that cannot form a storage key.
func validateName(name string) error {
	if name == "" || name == SentinelNone {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%q contains a path separator: %w", name, ErrInvalidName)
	}
	return nil
}
