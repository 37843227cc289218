package vecmath

// Vector is a single dense embedding in the encoder's shared space.
type Vector = []float32

// Batch is a set of embeddings, shape [batch, D].
type Batch = []Vector

// Conditioning is a host-owned prompt-conditioning tensor, shape
// [batch, seq, D]. The library only ever reads a Conditioning and returns a
// same-shaped transformed copy; it never mutates one in place.
type Conditioning = [][]Vector

// CloneConditioning returns a deep copy of c. Used by callers that need to
// hand a Conditioning across an ownership boundary.
func CloneConditioning(c Conditioning) Conditioning {
	out := make(Conditioning, len(c))
	for i, seq := range c {
		out[i] = make([]Vector, len(seq))
		for j, row := range seq {
			v := make(Vector, len(row))
			copy(v, row)
			out[i][j] = v
		}
	}
	return out
}
